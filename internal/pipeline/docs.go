package pipeline

import (
	"context"
	"fmt"

	"github.com/dgallion1/texsite/internal/config"
	"github.com/dgallion1/texsite/internal/parser"
	"github.com/dgallion1/texsite/internal/render"
)

// PageResult describes one written (or unchanged) reader page.
type PageResult struct {
	ID       string
	Path     string
	Headings int
	Written  bool
}

// DocsResult summarizes a docs build.
type DocsResult struct {
	Pages []PageResult
}

// Headings totals the headings over all pages.
func (r DocsResult) Headings() int {
	total := 0
	for _, p := range r.Pages {
		total += p.Headings
	}
	return total
}

// Docs builds one reader page per configured document, or only the one
// with id only when it is non-empty. Pages come back in configuration order.
func (b *Builder) Docs(ctx context.Context, only string) (DocsResult, error) {
	docs := b.cfg.Documents
	if only != "" {
		d, ok := b.cfg.Document(only)
		if !ok {
			return DocsResult{}, fmt.Errorf("unknown document %q", only)
		}
		docs = []config.DocumentConfig{d}
	}

	pages, err := fanOut(ctx, len(docs), b.cfg.WorkerCount, func(_ context.Context, i int) (PageResult, error) {
		return b.buildPage(docs[i])
	})
	if err != nil {
		return DocsResult{}, err
	}
	return DocsResult{Pages: pages}, nil
}

func (b *Builder) buildPage(d config.DocumentConfig) (PageResult, error) {
	log := b.log.With("doc_id", d.ID)
	srcPath := b.cfg.SourcePath(d.Source)

	doc, err := parser.ParseFile(srcPath, log)
	if err != nil {
		log.Error("document source unavailable", "path", srcPath, "error", err)
		return PageResult{}, fmt.Errorf("document %s: %w", d.ID, err)
	}
	if d.Title != "" {
		doc.Title = d.Title
	}
	title := doc.Title

	frags, err := render.Document(doc)
	if err != nil {
		return PageResult{}, fmt.Errorf("render %s: %w", d.ID, err)
	}
	page, err := render.NewPageRenderer().Render(render.Page{
		Title:     title,
		Intro:     d.Intro,
		Fragments: frags,
	})
	if err != nil {
		return PageResult{}, fmt.Errorf("render %s: %w", d.ID, err)
	}

	out := b.cfg.ReaderPath(d)
	written, err := WriteIfChanged(out, page, log)
	if err != nil {
		return PageResult{}, err
	}
	log.Info("document built", "blocks", len(doc.Blocks), "headings", doc.HeadingCount())
	return PageResult{ID: d.ID, Path: out, Headings: doc.HeadingCount(), Written: written}, nil
}
