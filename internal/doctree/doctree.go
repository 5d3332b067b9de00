package doctree

// TokenKind identifies what a scanned Token represents.
type TokenKind int

const (
	TokenText      TokenKind = iota // Literal run; Text is the raw source slice
	TokenCommand                    // \name[opt]{arg}...
	TokenBeginEnv                   // \begin{name}{arg}...
	TokenEndEnv                     // \end{name}
	TokenComment                    // % to end of line
	TokenMath                       // $...$ or \[...\]; Text is the inner expression
	TokenRowEnd                     // \\
	TokenCellSep                    // unescaped &
	TokenVerbatim                   // resolved include or verbatim environment body
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "Text"
	case TokenCommand:
		return "Command"
	case TokenBeginEnv:
		return "BeginEnv"
	case TokenEndEnv:
		return "EndEnv"
	case TokenComment:
		return "Comment"
	case TokenMath:
		return "Math"
	case TokenRowEnd:
		return "RowEnd"
	case TokenCellSep:
		return "CellSep"
	case TokenVerbatim:
		return "Verbatim"
	}
	return "Unknown"
}

// Token is one lexical unit of a markup source, in source order.
type Token struct {
	Kind     TokenKind
	Name     string   // Command or environment name, star stripped
	Starred  bool     // \name* form
	Optional string   // Content of a leading [..] argument, if any
	Args     []string // Brace arguments, outer braces removed
	Text     string   // Literal text, math body, or verbatim content
	Raw      string   // Exact source slice the token was scanned from
}

// Arg returns the i-th brace argument or "".
func (t Token) Arg(i int) string {
	if i < 0 || i >= len(t.Args) {
		return ""
	}
	return t.Args[i]
}

// BlockKind identifies the shape of a Block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockList
	BlockCallout
	BlockPreformatted
	BlockTableItem
	BlockTableRow
)

func (k BlockKind) String() string {
	switch k {
	case BlockHeading:
		return "Heading"
	case BlockParagraph:
		return "Paragraph"
	case BlockList:
		return "List"
	case BlockCallout:
		return "Callout"
	case BlockPreformatted:
		return "Preformatted"
	case BlockTableItem:
		return "TableItem"
	case BlockTableRow:
		return "TableRow"
	}
	return "Unknown"
}

// Block is a structural unit of a built document.
type Block struct {
	Kind BlockKind

	Level  int    // Heading level 1-3
	Anchor string // Heading anchor id
	Text   string // Heading, paragraph, table item text; raw text for preformatted

	Ordered bool     // List
	Items   []string // List items

	Key   string // Table row key cell
	Value string // Table row remaining cells

	Children []*Block // Callout contents
}

// TocEntry is one navigation entry produced for a heading.
type TocEntry struct {
	Level  int
	Title  string
	Anchor string
}

// Document is the built form of one markup source.
type Document struct {
	Title  string
	Blocks []*Block
	TOC    []TocEntry
}

// HeadingCount returns how many headings made it into the TOC.
func (d *Document) HeadingCount() int {
	return len(d.TOC)
}
