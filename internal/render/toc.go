package render

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/texsite/internal/doctree"
)

// TOCLabel is the accessible name and heading of the navigation block.
const (
	TOCLabel   = "文档目录"
	TOCHeading = "目录"
)

// TOCNode builds the navigation tree for entries, or nil when there are none.
func TOCNode(entries []doctree.TocEntry) *html.Node {
	if len(entries) == 0 {
		return nil
	}
	nav := element(atom.Nav, class("doc-toc"), attr("aria-label", TOCLabel))
	nav.AppendChild(textElement(atom.H2, TOCHeading))
	list := element(atom.Ol)
	for _, e := range entries {
		li := element(atom.Li, class("lv-"+strconv.Itoa(e.Level)))
		li.AppendChild(textElement(atom.A, e.Title, attr("href", "#"+e.Anchor)))
		list.AppendChild(li)
	}
	nav.AppendChild(list)
	return nav
}

// TOC renders the navigation block, or "" when there are no entries.
func TOC(entries []doctree.TocEntry) (string, error) {
	nav := TOCNode(entries)
	if nav == nil {
		return "", nil
	}
	out, err := renderNode(nav)
	if err != nil {
		return "", fmt.Errorf("render toc: %w", err)
	}
	return out, nil
}
