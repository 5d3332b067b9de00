package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/samber/lo"
)

// Entry is a configured manifest document.
type Entry struct {
	ID    string
	Title string
	Desc  string
	Web   string
	PDF   string
}

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("read pdf %s: %v", path, r)
		}
	}()
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// Documents resolves entries into manifest documents. PDF paths are
// relative to siteDir; a readable PDF contributes its page count, a missing
// or unreadable one leaves it unset.
func Documents(entries []Entry, siteDir string, log *slog.Logger) []Document {
	if log == nil {
		log = slog.Default()
	}
	return lo.Map(entries, func(e Entry, _ int) Document {
		doc := Document{ID: e.ID, Title: e.Title, Desc: e.Desc, Web: e.Web, PDF: e.PDF}
		if e.PDF == "" {
			return doc
		}
		path := filepath.Join(siteDir, filepath.FromSlash(e.PDF))
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			log.Debug("manifest pdf not present", "doc", e.ID, "path", path)
			return doc
		}
		pages, err := PageCount(path)
		if err != nil {
			log.Warn("manifest pdf unreadable", "doc", e.ID, "path", path, "error", err)
			return doc
		}
		doc.Pages = pages
		return doc
	})
}
