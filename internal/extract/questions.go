package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/texsite/internal/parser"
)

var (
	entryMarkerRe  = regexp.MustCompile(`\\textbf\{\s*(\d+)\s*\.\s*\}`)
	optionMarkerRe = regexp.MustCompile(`\\textbf\{\s*([A-D])\s*\.\s*\}`)
	choiceAnswerRe = regexp.MustCompile(`^[A-D]+$`)
)

// row is one numbered entry of a question bank table.
type row struct {
	Number   string
	Question string // raw text between the entry marker and the first cell separator
	Rest     string // raw text after the separator, up to the row terminator
}

// scanRows finds the numbered entries of window. A row runs from its entry
// marker to the first top-level row terminator after its first top-level '&',
// so entry markers inside a cell stay part of that cell. A row that reaches a
// terminator before any '&', or has no terminator at all, is malformed.
func scanRows(window string) (rows []row, malformed int) {
	pos := 0
	for pos < len(window) {
		loc := entryMarkerRe.FindStringSubmatchIndex(window[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[1]
		number := window[pos+loc[2] : pos+loc[3]]
		body := window[start:]
		sep, term := splitRow(body)
		switch {
		case term < 0:
			malformed++
			pos = start
		case sep < 0:
			malformed++
			pos = start + term + 2
		default:
			rows = append(rows, row{
				Number:   number,
				Question: body[:sep],
				Rest:     body[sep+1 : term],
			})
			pos = start + term + 2
		}
	}
	return rows, malformed
}

// splitRow returns the offset of the first top-level '&' in body and of the
// first top-level row terminator. A terminator ahead of any '&' is returned
// with sep -1; either is -1 when absent.
func splitRow(body string) (sep, term int) {
	sep = -1
	depth := 0
	for k := 0; k < len(body); k++ {
		switch body[k] {
		case '\\':
			if depth == 0 && k+1 < len(body) && body[k+1] == '\\' {
				return sep, k
			}
			k++
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '&':
			if depth == 0 && sep < 0 {
				sep = k
			}
		}
	}
	return sep, -1
}

// splitCells splits s on top-level unescaped '&'.
func splitCells(s string) []string {
	var cells []string
	depth, last := 0, 0
	for k := 0; k < len(s); k++ {
		switch s[k] {
		case '\\':
			k++
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '&':
			if depth == 0 {
				cells = append(cells, s[last:k])
				last = k + 1
			}
		}
	}
	return append(cells, s[last:])
}

// commandArg returns the first brace argument of the first \name in s.
func commandArg(s, name string) (string, bool) {
	marker := `\` + name + `{`
	idx := strings.Index(s, marker)
	if idx < 0 {
		return "", false
	}
	arg, _, ok := parser.ReadGroup(s, idx+len(marker)-1)
	return arg, ok
}

// splitOptions cuts the lettered options out of a choice question. Without
// an A marker the whole text is the stem. Missing letters stay empty.
func splitOptions(q string) (stem string, options []string) {
	options = make([]string, 4)
	locs := optionMarkerRe.FindAllStringSubmatchIndex(q, -1)
	first := -1
	for i, l := range locs {
		if q[l[2]] == 'A' {
			first = i
			break
		}
	}
	if first < 0 {
		return q, options
	}

	var filled [4]bool
	for i := first; i < len(locs); i++ {
		l := locs[i]
		idx := int(q[l[2]] - 'A')
		if filled[idx] {
			continue
		}
		filled[idx] = true
		end := len(q)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		options[idx] = parser.Normalize(q[l[1]:end])
	}
	return q[:locs[first][0]], options
}

// choiceFields reads the answer letters and explanation of a choice row.
// The labelled \ansline/\expline form is preferred; otherwise the cells after
// the question are taken as answer and explanation.
func choiceFields(rest string) (answer, explanation string) {
	if a, ok := commandArg(rest, "ansline"); ok {
		answer = parser.Normalize(a)
		if x, ok := commandArg(rest, "expline"); ok {
			explanation = parser.Normalize(x)
		}
	} else {
		cells := splitCells(rest)
		answer = parser.Normalize(cells[0])
		explanation = joinCells(cells[1:])
	}
	return strings.Join(strings.Fields(answer), ""), explanation
}

// joinCells normalizes cells back into one text, keeping the cell separator.
func joinCells(cells []string) string {
	return parser.Normalize(strings.Join(cells, " & "))
}

func questionID(prefix, number string) string {
	return fmt.Sprintf("%s-%s", prefix, number)
}

// Choices extracts single or multiple answer questions from window.
func (e *Extractor) Choices(window, source, idPrefix string, multi bool) []Question {
	kind := KindSingle
	if multi {
		kind = KindMultiple
	}
	rows, malformed := scanRows(window)
	tally := Tally{Rows: len(rows) + malformed, Malformed: malformed}

	var out []Question
	for _, r := range rows {
		rawStem, options := splitOptions(r.Question)
		stem := parser.Normalize(rawStem)
		if stem == "" {
			tally.Skipped++
			continue
		}
		answer, explanation := choiceFields(r.Rest)
		if !choiceAnswerRe.MatchString(answer) {
			e.log.Debug("choice row without answer letters", "source", source, "number", r.Number, "answer", answer)
			tally.Malformed++
			continue
		}
		// Options count toward tags so keywords named only in an option still classify the question.
		tags := e.classifier.Tags(parser.Normalize(r.Question) + " " + explanation)
		out = append(out, Question{
			ID:          questionID(idPrefix, r.Number),
			Source:      source,
			Kind:        kind,
			Stem:        stem,
			Options:     options,
			Answer:      answer,
			Explanation: explanation,
			Tags:        tags,
		})
	}
	e.finish(source, kind, tally, len(out))
	return out
}

// TrueFalse extracts judgement questions. The answer is AnswerTrue when the
// answer cell starts with it and AnswerFalse otherwise; the full cell text is
// kept as the explanation.
func (e *Extractor) TrueFalse(window, source, idPrefix string) []Question {
	rows, malformed := scanRows(window)
	tally := Tally{Rows: len(rows) + malformed, Malformed: malformed}

	var out []Question
	for _, r := range rows {
		stem := parser.Normalize(r.Question)
		if stem == "" {
			tally.Skipped++
			continue
		}
		text := joinCells(splitCells(r.Rest))
		answer := AnswerFalse
		if strings.HasPrefix(text, AnswerTrue) {
			answer = AnswerTrue
		}
		out = append(out, Question{
			ID:          questionID(idPrefix, r.Number),
			Source:      source,
			Kind:        KindTrueFalse,
			Stem:        stem,
			Options:     []string{AnswerTrue, AnswerFalse},
			Answer:      answer,
			Explanation: text,
			Tags:        e.classifier.Tags(stem + " " + text),
		})
	}
	e.finish(source, KindTrueFalse, tally, len(out))
	return out
}

// Short extracts open questions. Repeated entry numbers are kept and their
// ids disambiguated with -2, -3, ...
func (e *Extractor) Short(window, source, idPrefix string) []Question {
	return e.openQuestions(window, source, idPrefix, KindShort, true)
}

// Flash extracts flash cards. Entry numbers are taken as unique.
func (e *Extractor) Flash(window, source, idPrefix string) []Question {
	return e.openQuestions(window, source, idPrefix, KindFlash, false)
}

func (e *Extractor) openQuestions(window, source, idPrefix string, kind QuestionKind, disambiguate bool) []Question {
	rows, malformed := scanRows(window)
	tally := Tally{Rows: len(rows) + malformed, Malformed: malformed}
	seen := make(map[string]int)

	var out []Question
	for _, r := range rows {
		stem := parser.Normalize(r.Question)
		if stem == "" {
			tally.Skipped++
			continue
		}
		explanation := joinCells(splitCells(r.Rest))
		id := questionID(idPrefix, r.Number)
		if disambiguate {
			seen[r.Number]++
			if n := seen[r.Number]; n > 1 {
				id = fmt.Sprintf("%s-%d", id, n)
			}
		}
		out = append(out, Question{
			ID:          id,
			Source:      source,
			Kind:        kind,
			Stem:        stem,
			Options:     []string{},
			Explanation: explanation,
			Tags:        e.classifier.Tags(stem + " " + explanation),
		})
	}
	e.finish(source, kind, tally, len(out))
	return out
}

func (e *Extractor) finish(source string, kind QuestionKind, tally Tally, emitted int) {
	tally.Emitted = emitted
	e.stats.Add(source, kind, tally)
	e.log.Debug("section extracted",
		"source", source,
		"kind", kind,
		"rows", tally.Rows,
		"emitted", tally.Emitted,
		"malformed", tally.Malformed,
		"skipped", tally.Skipped,
	)
}
