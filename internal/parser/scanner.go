package parser

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/texsite/internal/doctree"
)

// MissingIncludePrefix starts the placeholder text substituted for an
// include whose target file cannot be read.
const MissingIncludePrefix = "引用文件缺失："

// IncludeResolver loads the plain text of a verbatim include directive.
type IncludeResolver interface {
	ReadInclude(path string) (string, error)
}

// DirResolver resolves include paths relative to a directory.
type DirResolver string

func (d DirResolver) ReadInclude(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(string(d), path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Environments whose bodies are captured raw instead of tokenized.
var verbatimEnvs = map[string]bool{
	"verbatim":   true,
	"Verbatim":   true,
	"lstlisting": true,
}

// Commands that never take brace arguments. Anything else greedily takes
// the brace groups directly following its name.
var zeroArgCommands = map[string]bool{
	"item": true, "par": true, "centering": true, "clearpage": true,
	"newpage": true, "vfill": true, "hfill": true, "tableofcontents": true,
	"hline": true, "toprule": true, "midrule": true, "bottomrule": true,
	"noindent": true, "selectfont": true, "maketitle": true, "newline": true,
	"linebreak": true, "today": true, "quad": true, "qquad": true,
	"bigskip": true, "medskip": true, "smallskip": true, "endhead": true,
	"endfirsthead": true, "endfoot": true, "endlastfoot": true,
}

// Scanner lexes markup text into tokens.
type Scanner struct {
	includes IncludeResolver
	log      *slog.Logger
}

// NewScanner returns a scanner resolving verbatim includes through r.
// A nil resolver turns every include into a missing-include placeholder.
func NewScanner(r IncludeResolver, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{includes: r, log: log}
}

// Scan tokenizes src. Concatenating the Raw field of the result yields src,
// except for a dangling trailing backslash which is dropped.
func (s *Scanner) Scan(src string) []doctree.Token {
	var tokens []doctree.Token
	textStart := 0

	flush := func(end int) {
		if end > textStart {
			tokens = append(tokens, doctree.Token{
				Kind: doctree.TokenText,
				Text: src[textStart:end],
				Raw:  src[textStart:end],
			})
		}
	}

	i := 0
	for i < len(src) {
		switch src[i] {
		case '\\':
			if i+1 >= len(src) {
				flush(i)
				i++
				textStart = i
				continue
			}
			next := src[i+1]
			switch {
			case next == '\\':
				flush(i)
				end := i + 2
				if end < len(src) && src[end] == '*' {
					end++
				}
				if _, after, ok := readOptional(src, end); ok {
					end = after
				}
				tokens = append(tokens, doctree.Token{Kind: doctree.TokenRowEnd, Raw: src[i:end]})
				i = end
				textStart = i
			case isLetter(next):
				flush(i)
				tok, end := s.scanCommand(src, i)
				tokens = append(tokens, tok)
				i = end
				textStart = i
			case next == '[':
				closeIdx := strings.Index(src[i+2:], `\]`)
				if closeIdx < 0 {
					i += 2
					continue
				}
				flush(i)
				end := i + 2 + closeIdx + 2
				tokens = append(tokens, doctree.Token{
					Kind: doctree.TokenMath,
					Text: src[i+2 : i+2+closeIdx],
					Raw:  src[i:end],
				})
				i = end
				textStart = i
			default:
				// Escaped symbol stays in the literal run.
				_, size := utf8.DecodeRuneInString(src[i+1:])
				i += 1 + size
			}
		case '%':
			flush(i)
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src)
			} else {
				end += i
			}
			tokens = append(tokens, doctree.Token{
				Kind: doctree.TokenComment,
				Text: src[i+1 : end],
				Raw:  src[i:end],
			})
			i = end
			textStart = i
		case '$':
			delim := "$"
			if i+1 < len(src) && src[i+1] == '$' {
				delim = "$$"
			}
			closeIdx := findUnescaped(src, i+len(delim), delim)
			if closeIdx < 0 {
				i += len(delim)
				continue
			}
			flush(i)
			end := closeIdx + len(delim)
			tokens = append(tokens, doctree.Token{
				Kind: doctree.TokenMath,
				Text: src[i+len(delim) : closeIdx],
				Raw:  src[i:end],
			})
			i = end
			textStart = i
		case '&':
			flush(i)
			tokens = append(tokens, doctree.Token{Kind: doctree.TokenCellSep, Raw: "&"})
			i++
			textStart = i
		default:
			i++
		}
	}
	flush(len(src))
	return tokens
}

// scanCommand scans a backslash-letter sequence starting at i.
func (s *Scanner) scanCommand(src string, i int) (doctree.Token, int) {
	j := i + 1
	for j < len(src) && isLetter(src[j]) {
		j++
	}
	name := src[i+1 : j]
	tok := doctree.Token{Kind: doctree.TokenCommand, Name: name}
	if j < len(src) && src[j] == '*' {
		tok.Starred = true
		j++
	}

	switch name {
	case "begin", "end":
		k := skipSpaces(src, j)
		envName, after, ok := ReadGroup(src, k)
		if !ok {
			tok.Raw = src[i:j]
			return tok, j
		}
		envName = strings.TrimSpace(envName)
		if name == "end" {
			return doctree.Token{Kind: doctree.TokenEndEnv, Name: envName, Raw: src[i:after]}, after
		}
		if verbatimEnvs[envName] {
			return s.captureVerbatim(src, i, after, envName)
		}
		env := doctree.Token{Kind: doctree.TokenBeginEnv, Name: envName}
		after = readArgs(src, after, &env)
		env.Raw = src[i:after]
		return env, after
	}

	switch {
	case name == "VerbatimInput":
		j = readArgs(src, j, &tok)
		tok.Raw = src[i:j]
		return s.resolveInclude(tok), j
	case name == "item":
		if opt, after, ok := readOptional(src, j); ok {
			tok.Optional = opt
			j = after
		}
	case !zeroArgCommands[name]:
		j = readArgs(src, j, &tok)
	}
	tok.Raw = src[i:j]
	return tok, j
}

func (s *Scanner) captureVerbatim(src string, start, bodyStart int, envName string) (doctree.Token, int) {
	endMarker := `\end{` + envName + `}`
	rel := strings.Index(src[bodyStart:], endMarker)
	bodyEnd, after := len(src), len(src)
	if rel >= 0 {
		bodyEnd = bodyStart + rel
		after = bodyEnd + len(endMarker)
	}
	body := strings.TrimPrefix(src[bodyStart:bodyEnd], "\n")
	body = strings.TrimRight(body, " \t\r\n")
	return doctree.Token{
		Kind: doctree.TokenVerbatim,
		Name: envName,
		Text: body,
		Raw:  src[start:after],
	}, after
}

func (s *Scanner) resolveInclude(tok doctree.Token) doctree.Token {
	path := strings.TrimSpace(tok.Arg(0))
	out := doctree.Token{Kind: doctree.TokenVerbatim, Name: "VerbatimInput", Raw: tok.Raw, Args: tok.Args}
	if s.includes == nil {
		out.Text = MissingIncludePrefix + path
		return out
	}
	content, err := s.includes.ReadInclude(path)
	if err != nil {
		s.log.Warn("verbatim include missing", "path", path, "error", err)
		out.Text = MissingIncludePrefix + path
		return out
	}
	out.Text = strings.TrimRight(content, " \t\r\n")
	return out
}

// readArgs consumes an optional [..] argument followed by every brace group
// that directly follows, storing them on tok. Returns the index after them.
func readArgs(src string, j int, tok *doctree.Token) int {
	if opt, after, ok := readOptional(src, j); ok {
		tok.Optional = opt
		j = after
	}
	for j < len(src) && src[j] == '{' {
		arg, after, ok := ReadGroup(src, j)
		if !ok {
			break
		}
		tok.Args = append(tok.Args, arg)
		j = after
	}
	return j
}

// ReadGroup reads the brace group opening at src[i]. It returns the content
// without the outer braces and the index just past the closing brace.
// Nesting is tracked with an explicit depth counter; escaped braces do not
// count. ok is false when src[i] is not '{' or the group never closes.
func ReadGroup(src string, i int) (content string, next int, ok bool) {
	closeIdx := MatchBrace(src, i)
	if closeIdx < 0 {
		return "", i, false
	}
	return src[i+1 : closeIdx], closeIdx + 1, true
}

// MatchBrace returns the index of the brace closing the one at src[open],
// or -1.
func MatchBrace(src string, open int) int {
	if open < 0 || open >= len(src) || src[open] != '{' {
		return -1
	}
	depth := 0
	for k := open; k < len(src); k++ {
		switch src[k] {
		case '\\':
			k++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return k
			}
		}
	}
	return -1
}

// readOptional reads a [..] argument at src[i], skipping over brace groups
// so that a ']' inside braces does not close it.
func readOptional(src string, i int) (string, int, bool) {
	if i >= len(src) || src[i] != '[' {
		return "", i, false
	}
	for k := i + 1; k < len(src); k++ {
		switch src[k] {
		case '\\':
			k++
		case '{':
			closeIdx := MatchBrace(src, k)
			if closeIdx < 0 {
				return "", i, false
			}
			k = closeIdx
		case ']':
			return src[i+1 : k], k + 1, true
		case '\n':
			if k+1 < len(src) && src[k+1] == '\n' {
				return "", i, false
			}
		}
	}
	return "", i, false
}

// findUnescaped returns the index of the first delim at or after from that
// is not preceded by an odd number of backslashes, or -1.
func findUnescaped(src string, from int, delim string) int {
	for k := from; k <= len(src)-len(delim); k++ {
		if src[k] == '\\' {
			k++
			continue
		}
		if strings.HasPrefix(src[k:], delim) {
			return k
		}
	}
	return -1
}

// StripComments removes every unescaped '%' and the rest of its line.
func StripComments(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, line := range strings.SplitAfter(text, "\n") {
		if idx := findUnescaped(line, 0, "%"); idx >= 0 {
			sb.WriteString(line[:idx])
			if strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
			continue
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// ExtractBody returns the text between \begin{document} and \end{document}
// when both are present in that order, otherwise text unchanged.
func ExtractBody(text string) string {
	const begin, end = `\begin{document}`, `\end{document}`
	b := strings.Index(text, begin)
	e := strings.LastIndex(text, end)
	if b >= 0 && e >= 0 && b+len(begin) <= e {
		return text[b+len(begin) : e]
	}
	return text
}

// PrepareBody applies the caller-side preparation the scanner expects.
func PrepareBody(text string) string {
	return StripComments(ExtractBody(text))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func skipSpaces(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i
}
