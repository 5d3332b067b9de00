package extract

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// ValidateQuestion checks a question for validity. Returns true if valid.
// Nil options are replaced with an empty slice.
func ValidateQuestion(q *Question) bool {
	if q == nil {
		return false
	}
	if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Stem) == "" {
		return false
	}
	if !q.Kind.Valid() {
		return false
	}
	if len(q.Options) > 4 {
		return false
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	return len(q.Tags) > 0
}

// ValidateKnowledge checks a knowledge item for validity.
func ValidateKnowledge(k *Knowledge) bool {
	if k == nil {
		return false
	}
	if strings.TrimSpace(k.ID) == "" || strings.TrimSpace(k.Content) == "" {
		return false
	}
	return len(k.Tags) > 0
}

// FilterQuestions returns the valid questions of qs, in order.
func FilterQuestions(qs []Question) []Question {
	out := make([]Question, 0, len(qs))
	for i := range qs {
		q := qs[i]
		if ValidateQuestion(&q) {
			out = append(out, q)
		}
	}
	return out
}

// FilterKnowledge returns the valid knowledge items of ks, in order.
func FilterKnowledge(ks []Knowledge) []Knowledge {
	return lo.Filter(ks, func(k Knowledge, _ int) bool {
		return ValidateKnowledge(&k)
	})
}

// DuplicateIDs returns each id that occurs more than once, in first-seen order.
func DuplicateIDs(ids []string) []string {
	return lo.FindDuplicates(ids)
}

// Slugify converts a string to an identifier slug. Letters, digits and
// underscores of any script are kept; every other run becomes a single '-'.
// The result is capped at 64 runes and falls back to "item".
func Slugify(s string) string {
	var sb strings.Builder
	pendingDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	runes := []rune(sb.String())
	if len(runes) == 0 {
		return "item"
	}
	if len(runes) > 64 {
		runes = runes[:64]
	}
	return string(runes)
}
