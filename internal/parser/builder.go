package parser

import (
	"log/slog"
	"strings"

	"github.com/dgallion1/texsite/internal/doctree"
)

var headingLevels = map[string]int{
	"chapter":    1,
	"section":    2,
	"subsection": 3,
}

var calloutEnvs = map[string]bool{
	"keybox":  true,
	"riskbox": true,
}

// Commands that end the current paragraph without producing content.
var breakCommands = map[string]bool{
	"par": true, "clearpage": true, "newpage": true, "vfill": true,
	"centering": true, "tableofcontents": true, "vspace": true,
	"maketitle": true, "bigskip": true, "medskip": true, "smallskip": true,
}

// Commands dropped together with their arguments.
var droppedCommands = map[string]bool{
	"hypersetup": true,
}

var tableRuleCommands = map[string]bool{
	"toprule": true, "midrule": true, "bottomrule": true, "hline": true,
	"endhead": true, "endfirsthead": true, "endfoot": true, "endlastfoot": true,
}

// TableCellJoiner separates the value cells of a table row.
const TableCellJoiner = "；"

// Builder turns a token stream into a Document.
type Builder struct {
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// Build assembles tokens into blocks and the heading index. Scopes left open
// when the tokens run out are closed.
func (b *Builder) Build(title string, tokens []doctree.Token) *doctree.Document {
	doc := &doctree.Document{Title: title}
	anchors := NewAnchorSet()

	var callouts []*doctree.Block
	var paragraph []string
	var listOpen, listOrdered bool
	var items []string
	var line strings.Builder
	lineIsItem := false

	emit := func(blk *doctree.Block) {
		if n := len(callouts); n > 0 {
			callouts[n-1].Children = append(callouts[n-1].Children, blk)
			return
		}
		doc.Blocks = append(doc.Blocks, blk)
	}

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		text := Normalize(strings.Join(paragraph, " "))
		paragraph = nil
		if text != "" {
			emit(&doctree.Block{Kind: doctree.BlockParagraph, Text: text})
		}
	}

	flushList := func() {
		if !listOpen {
			items = nil
			return
		}
		var cleaned []string
		for _, item := range items {
			if t := Normalize(item); t != "" {
				cleaned = append(cleaned, t)
			}
		}
		if len(cleaned) > 0 {
			emit(&doctree.Block{Kind: doctree.BlockList, Ordered: listOrdered, Items: cleaned})
		}
		listOpen = false
		items = nil
	}

	flushAll := func() {
		flushParagraph()
		flushList()
	}

	// endLine files the buffered line as an item, a continuation of the last
	// item, a blank line, or paragraph text.
	endLine := func() {
		raw := line.String()
		line.Reset()
		if lineIsItem {
			lineIsItem = false
			if !listOpen {
				listOpen, listOrdered, items = true, false, nil
			}
			if t := Normalize(raw); t != "" {
				items = append(items, t)
			}
			return
		}
		stripped := strings.TrimSpace(raw)
		if stripped == "" {
			if !listOpen {
				flushAll()
			}
			return
		}
		if listOpen && len(items) > 0 {
			if c := Normalize(stripped); c != "" {
				items[len(items)-1] += " " + c
			}
			return
		}
		paragraph = append(paragraph, stripped)
	}

	blockBreak := func() {
		endLine()
		if !listOpen {
			flushAll()
		}
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Kind {
		case doctree.TokenText:
			text := tok.Text
			if lineIsItem && line.Len() == 0 {
				text = strings.TrimLeft(text, " \t\r\n")
			}
			parts := strings.Split(text, "\n")
			for k, part := range parts {
				line.WriteString(part)
				if k < len(parts)-1 {
					endLine()
				}
			}

		case doctree.TokenMath:
			line.WriteString("$" + tok.Text + "$")

		case doctree.TokenCellSep:
			line.WriteString("&")

		case doctree.TokenRowEnd:
			endLine()

		case doctree.TokenComment:

		case doctree.TokenVerbatim:
			endLine()
			flushAll()
			emit(&doctree.Block{Kind: doctree.BlockPreformatted, Text: tok.Text})

		case doctree.TokenCommand:
			switch {
			case headingLevels[tok.Name] > 0:
				endLine()
				flushAll()
				text := Normalize(tok.Arg(0))
				if text == "" {
					continue
				}
				level := headingLevels[tok.Name]
				anchor := anchors.Next(text)
				doc.TOC = append(doc.TOC, doctree.TocEntry{Level: level, Title: text, Anchor: anchor})
				emit(&doctree.Block{Kind: doctree.BlockHeading, Level: level, Text: text, Anchor: anchor})
			case tok.Name == "item":
				endLine()
				flushParagraph()
				lineIsItem = true
				if tok.Optional != "" {
					line.WriteString(tok.Optional + " ")
				}
			case breakCommands[tok.Name]:
				blockBreak()
			case droppedCommands[tok.Name]:
			default:
				line.WriteString(tok.Raw)
			}

		case doctree.TokenBeginEnv:
			switch {
			case tok.Name == "itemize" || tok.Name == "enumerate":
				endLine()
				flushAll()
				listOpen, listOrdered, items = true, tok.Name == "enumerate", nil
			case calloutEnvs[tok.Name]:
				endLine()
				flushAll()
				box := &doctree.Block{Kind: doctree.BlockCallout}
				emit(box)
				callouts = append(callouts, box)
			case tok.Name == "longtable":
				endLine()
				flushAll()
				end := findEnvEnd(tokens, i+1, "longtable")
				for _, blk := range tableBlocks(tokens[i+1 : end]) {
					emit(blk)
				}
				i = end
			default:
				blockBreak()
			}

		case doctree.TokenEndEnv:
			switch {
			case tok.Name == "itemize" || tok.Name == "enumerate":
				endLine()
				flushAll()
			case calloutEnvs[tok.Name]:
				endLine()
				flushAll()
				if n := len(callouts); n > 0 {
					callouts = callouts[:n-1]
				}
			default:
				blockBreak()
			}
		}
	}

	endLine()
	flushAll()
	if len(callouts) > 0 {
		b.log.Warn("closing unterminated callouts", "doc", title, "open", len(callouts))
	}

	b.log.Debug("document built", "doc", title, "blocks", len(doc.Blocks), "headings", len(doc.TOC))
	return doc
}

// findEnvEnd returns the index of the token ending env at or after from, or
// len(tokens) when it is never closed.
func findEnvEnd(tokens []doctree.Token, from int, env string) int {
	for k := from; k < len(tokens); k++ {
		if tokens[k].Kind == doctree.TokenEndEnv && tokens[k].Name == env {
			return k
		}
	}
	return len(tokens)
}

// tableBlocks splits a table body into rows and cells. Rows with a single
// non-empty cell become table items; wider rows become key/value rows.
func tableBlocks(tokens []doctree.Token) []*doctree.Block {
	var blocks []*doctree.Block
	var cells []string
	var cell strings.Builder

	endRow := func() {
		cells = append(cells, cell.String())
		cell.Reset()
		var kept []string
		for _, c := range cells {
			if t := Normalize(c); t != "" {
				kept = append(kept, t)
			}
		}
		cells = nil
		switch len(kept) {
		case 0:
		case 1:
			blocks = append(blocks, &doctree.Block{Kind: doctree.BlockTableItem, Text: kept[0]})
		default:
			blocks = append(blocks, &doctree.Block{
				Kind:  doctree.BlockTableRow,
				Key:   kept[0],
				Value: strings.Join(kept[1:], TableCellJoiner),
			})
		}
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case doctree.TokenCellSep:
			cells = append(cells, cell.String())
			cell.Reset()
		case doctree.TokenRowEnd:
			endRow()
		case doctree.TokenText:
			cell.WriteString(tok.Text)
		case doctree.TokenMath:
			cell.WriteString("$" + tok.Text + "$")
		case doctree.TokenVerbatim:
			cell.WriteString(" " + tok.Text + " ")
		case doctree.TokenCommand:
			if tableRuleCommands[tok.Name] || droppedCommands[tok.Name] {
				continue
			}
			if tok.Name == "item" || breakCommands[tok.Name] {
				cell.WriteString(" ")
				continue
			}
			cell.WriteString(tok.Raw)
		case doctree.TokenBeginEnv, doctree.TokenEndEnv:
			cell.WriteString(" ")
		}
	}
	endRow()
	return blocks
}
