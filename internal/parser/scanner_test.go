package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/texsite/internal/doctree"
)

func TestScan_NestedBraceArgument(t *testing.T) {
	tokens := NewScanner(nil, nil).Scan(`\cmd{a{b}c}`)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	tok := tokens[0]
	if tok.Kind != doctree.TokenCommand || tok.Name != "cmd" {
		t.Fatalf("expected command cmd, got %s %q", tok.Kind, tok.Name)
	}
	if tok.Arg(0) != "a{b}c" {
		t.Errorf("expected arg %q, got %q", "a{b}c", tok.Arg(0))
	}
}

func TestScan_RawRoundTrip(t *testing.T) {
	src := "\\section*{标题} 文本 $x^2$ 100\\% 与 a & b \\\\ \n% 注释\n\\begin{keybox}要点\\end{keybox}"
	tokens := NewScanner(nil, nil).Scan(src)
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Raw)
	}
	if sb.String() != src {
		t.Errorf("raw concatenation mismatch:\n got %q\nwant %q", sb.String(), src)
	}
}

func TestScan_TokenKinds(t *testing.T) {
	src := `\section*{附录}a $x$ b & c \\ d % note`
	tokens := NewScanner(nil, nil).Scan(src)

	want := []doctree.TokenKind{
		doctree.TokenCommand,
		doctree.TokenText,
		doctree.TokenMath,
		doctree.TokenText,
		doctree.TokenCellSep,
		doctree.TokenText,
		doctree.TokenRowEnd,
		doctree.TokenText,
		doctree.TokenComment,
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(tokens), tokens)
	}
	for i, k := range want {
		if tokens[i].Kind != k {
			t.Errorf("token %d: expected %s, got %s", i, k, tokens[i].Kind)
		}
	}
	if !tokens[0].Starred {
		t.Error("expected starred section")
	}
	if tokens[2].Text != "x" {
		t.Errorf("expected math text %q, got %q", "x", tokens[2].Text)
	}
}

func TestScan_EscapedPercentIsText(t *testing.T) {
	tokens := NewScanner(nil, nil).Scan(`费率 5\% 起`)
	if len(tokens) != 1 || tokens[0].Kind != doctree.TokenText {
		t.Fatalf("expected a single text token, got %+v", tokens)
	}
}

func TestScan_UnclosedMathIsLiteral(t *testing.T) {
	tokens := NewScanner(nil, nil).Scan(`价格 $5 起`)
	for _, tok := range tokens {
		if tok.Kind == doctree.TokenMath {
			t.Fatalf("unexpected math token %+v", tok)
		}
	}
}

func TestScan_Verbatim(t *testing.T) {
	src := "\\begin{verbatim}\nPOST /send\n  {\"to\": 1}\n\\end{verbatim}after"
	tokens := NewScanner(nil, nil).Scan(src)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Kind != doctree.TokenVerbatim {
		t.Fatalf("expected verbatim, got %s", tokens[0].Kind)
	}
	if tokens[0].Text != "POST /send\n  {\"to\": 1}" {
		t.Errorf("unexpected verbatim body %q", tokens[0].Text)
	}
}

func TestScan_VerbatimInput(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sample.txt"), []byte("line one\nline two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"present", `\VerbatimInput{sample.txt}`, "line one\nline two"},
		{"missing", `\VerbatimInput{missing.txt}`, MissingIncludePrefix + "missing.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := NewScanner(DirResolver(dir), nil).Scan(tt.src)
			if len(tokens) != 1 || tokens[0].Kind != doctree.TokenVerbatim {
				t.Fatalf("expected one verbatim token, got %+v", tokens)
			}
			if tokens[0].Text != tt.want {
				t.Errorf("expected %q, got %q", tt.want, tokens[0].Text)
			}
		})
	}
}

func TestMatchBrace(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{`{abc}`, 4},
		{`{a{b}c}`, 6},
		{`{a\}b}`, 5},
		{`{a{b}`, -1},
		{`abc`, -1},
	}
	for _, tt := range tests {
		if got := MatchBrace(tt.src, 0); got != tt.want {
			t.Errorf("MatchBrace(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestStripComments(t *testing.T) {
	in := "keep % drop\n100\\% stays\n% whole line\nend"
	want := "keep \n100\\% stays\n\nend"
	if got := StripComments(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractBody(t *testing.T) {
	in := "\\documentclass{book}\n\\title{x}\n\\begin{document}\nbody\n\\end{document}\n"
	if got := ExtractBody(in); got != "\nbody\n" {
		t.Errorf("got %q", got)
	}
	if got := ExtractBody("no markers"); got != "no markers" {
		t.Errorf("expected input unchanged, got %q", got)
	}
}
