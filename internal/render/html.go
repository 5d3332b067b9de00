// Package render turns built documents into HTML reader pages.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/texsite/internal/doctree"
)

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textElement(a atom.Atom, text string, attrs ...html.Attribute) *html.Node {
	n := element(a, attrs...)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func class(val string) html.Attribute {
	return attr("class", val)
}

// Nodes converts blocks to detached HTML element trees, one per block.
func Nodes(blocks []*doctree.Block) []*html.Node {
	nodes := make([]*html.Node, 0, len(blocks))
	for _, b := range blocks {
		if n := blockNode(b); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func blockNode(b *doctree.Block) *html.Node {
	switch b.Kind {
	case doctree.BlockHeading:
		level := min(max(b.Level, 1), len(headingAtoms))
		return textElement(headingAtoms[level-1], b.Text, attr("id", b.Anchor))

	case doctree.BlockParagraph:
		return textElement(atom.P, b.Text)

	case doctree.BlockList:
		list := element(atom.Ul)
		if b.Ordered {
			list = element(atom.Ol)
		}
		for _, item := range b.Items {
			list.AppendChild(textElement(atom.Li, item))
		}
		return list

	case doctree.BlockCallout:
		aside := element(atom.Aside, class("callout"))
		for _, child := range Nodes(b.Children) {
			aside.AppendChild(child)
		}
		return aside

	case doctree.BlockPreformatted:
		return textElement(atom.Pre, b.Text)

	case doctree.BlockTableItem:
		return textElement(atom.P, b.Text, class("table-item"))

	case doctree.BlockTableRow:
		row := element(atom.Div, class("table-row"))
		row.AppendChild(textElement(atom.P, b.Key, class("table-key")))
		row.AppendChild(textElement(atom.P, b.Value, class("table-value")))
		return row
	}
	return nil
}

// Body renders the document blocks as an HTML fragment, one block per line.
func Body(doc *doctree.Document) (string, error) {
	var buf bytes.Buffer
	for i, n := range Nodes(doc.Blocks) {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render block %d: %w", i, err)
		}
	}
	return buf.String(), nil
}

// Fragments is the rendered form of one document.
type Fragments struct {
	Body     string
	TOC      string
	Headings int
}

// Document renders the body and table of contents of doc.
func Document(doc *doctree.Document) (Fragments, error) {
	body, err := Body(doc)
	if err != nil {
		return Fragments{}, err
	}
	toc, err := TOC(doc.TOC)
	if err != nil {
		return Fragments{}, err
	}
	return Fragments{Body: body, TOC: toc, Headings: len(doc.TOC)}, nil
}

// renderNode serializes a single node tree.
func renderNode(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}
