package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/dgallion1/texsite/internal/parser"
)

func TestDocs(t *testing.T) {
	cfg := testConfig(t)
	b := NewBuilder(cfg, quietLogger())

	res, err := b.Docs(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Pages) != 2 || res.Pages[0].ID != "doc-1" || res.Pages[1].ID != "doc-2" {
		t.Fatalf("expected pages in config order, got %+v", res.Pages)
	}
	if res.Pages[0].Headings != 2 || res.Pages[1].Headings != 2 {
		t.Errorf("unexpected heading counts %+v", res.Pages)
	}
	if res.Headings() != 4 {
		t.Errorf("expected 4 headings in total, got %d", res.Headings())
	}

	page, err := os.ReadFile(cfg.ReaderPath(cfg.Documents[0]))
	if err != nil {
		t.Fatal(err)
	}
	html := string(page)
	for _, want := range []string{
		`<title>手册 · 在线文稿</title>`,
		`<strong>重点</strong>`,
		`id="概述"`,
		`href="#细节"`,
		`curl -X POST /send`,
		`../assets/reader.css`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}

	again, err := b.Docs(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error on rebuild: %v", err)
	}
	for _, p := range again.Pages {
		if p.Written {
			t.Errorf("expected %s to be unchanged on rebuild", p.ID)
		}
	}
}

func TestDocs_Only(t *testing.T) {
	cfg := testConfig(t)
	b := NewBuilder(cfg, quietLogger())

	res, err := b.Docs(context.Background(), "doc-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Pages) != 1 || res.Pages[0].ID != "doc-2" {
		t.Errorf("expected only doc-2, got %+v", res.Pages)
	}
	if _, err := os.Stat(cfg.ReaderPath(cfg.Documents[0])); !os.IsNotExist(err) {
		t.Error("expected doc-1 not to be written")
	}

	if _, err := b.Docs(context.Background(), "doc-9"); err == nil {
		t.Error("expected error for unknown document")
	}
}

func TestDocs_MissingSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Documents[1].Source = "absent.tex"

	_, err := NewBuilder(cfg, quietLogger()).Docs(context.Background(), "")
	if !errors.Is(err, parser.ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
}
