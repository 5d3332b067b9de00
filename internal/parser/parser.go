package parser

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/texsite/internal/doctree"
	"golang.org/x/text/unicode/norm"
)

// ErrMissingSource is returned when a required source file does not exist.
var ErrMissingSource = errors.New("missing source")

// Parser converts raw document bytes into a built Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this tool can handle.
var SupportedExtensions = map[string]bool{
	".tex": true,
}

// ForFile returns the appropriate parser for a filename. Verbatim includes
// resolve against the file's directory.
func ForFile(filename string, log *slog.Logger) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".tex":
		return &TexParser{Includes: DirResolver(filepath.Dir(filename)), Log: log}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// TexParser handles command-markup sources.
type TexParser struct {
	Includes IncludeResolver
	Log      *slog.Logger
}

func (p *TexParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return p.ParseString(norm.NFC.String(string(src)), title), nil
}

// ParseString runs the full front end over already-loaded source text.
func (p *TexParser) ParseString(src, title string) *doctree.Document {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	tokens := NewScanner(p.Includes, log).Scan(PrepareBody(src))
	return NewBuilder(log).Build(title, tokens)
}

// ReadSource loads a UTF-8 source file in NFC form. A file that does not
// exist yields an error wrapping ErrMissingSource.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrMissingSource, path)
	}
	if err != nil {
		return "", fmt.Errorf("read source %s: %w", path, err)
	}
	return norm.NFC.String(string(data)), nil
}

// ParseFile reads and parses one source file.
func ParseFile(path string, log *slog.Logger) (*doctree.Document, error) {
	p, err := ForFile(path, log)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()
	return p.Parse(f, path)
}
