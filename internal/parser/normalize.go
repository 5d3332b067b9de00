package parser

import (
	"regexp"
	"strings"
)

var (
	parRe = regexp.MustCompile(`\\par([^a-zA-Z]|$)`)

	// One level of wrapper; applied until nothing changes so nesting unwraps
	// from the inside out.
	wrapperRe = regexp.MustCompile(`\\(textbf|mystrong|texttt|ansbadge|emph|underline|textit|coverline|ansline|expline)\{([^{}]*)\}`)

	displayMathRe = regexp.MustCompile(`\$\$([^$]+)\$\$`)
	inlineMathRe  = regexp.MustCompile(`\$([^$]+)\$`)
	macroRe       = regexp.MustCompile(`\\([a-zA-Z]+)`)

	sizedRe    = regexp.MustCompile(`\\vspace\*?\{[^{}]*\}|\\fontsize\{[^{}]*\}\{[^{}]*\}|\\color\{[^{}]*\}`)
	residualRe = regexp.MustCompile(`\\[a-zA-Z]+\*?(?:\[[^\]]*\])?`)
)

// Label wrappers are rewritten with a prefix instead of being unwrapped.
var wrapperLabels = map[string]string{
	"ansline": "答案：",
	"expline": "解释：",
}

var mathMacros = map[string]string{
	"leq":        "≤",
	"le":         "≤",
	"geq":        "≥",
	"ge":         "≥",
	"Rightarrow": "⇒",
	"rightarrow": "→",
	"to":         "→",
	"leftarrow":  "←",
	"times":      "×",
	"neq":        "≠",
	"approx":     "≈",
}

// Normalize turns a span of markup into plain, whitespace-collapsed text.
// It is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = decodeEscapes(s)
	s = parRe.ReplaceAllString(s, " $1")

	for {
		next := wrapperRe.ReplaceAllStringFunc(s, unwrap)
		if next == s {
			break
		}
		s = next
	}

	s = displayMathRe.ReplaceAllStringFunc(s, func(m string) string {
		return " " + cleanMath(m[2:len(m)-2]) + " "
	})
	s = inlineMathRe.ReplaceAllStringFunc(s, func(m string) string {
		return cleanMath(m[1 : len(m)-1])
	})
	s = strings.ReplaceAll(s, "$", "")

	s = sizedRe.ReplaceAllString(s, " ")
	s = residualRe.ReplaceAllString(s, " ")

	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return collapseSpace(s)
}

func unwrap(m string) string {
	sub := wrapperRe.FindStringSubmatch(m)
	return wrapperLabels[sub[1]] + sub[2]
}

func cleanMath(expr string) string {
	expr = macroRe.ReplaceAllStringFunc(expr, func(m string) string {
		return mathMacros[m[1:]]
	})
	expr = strings.NewReplacer("{", "", "}", "").Replace(expr)
	return collapseSpace(expr)
}

// decodeEscapes rewrites escaped punctuation, forced spaces and ties. A
// backslash followed by a letter is left for command handling.
func decodeEscapes(s string) string {
	if !strings.ContainsAny(s, `\~`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '~' {
			sb.WriteByte(' ')
			continue
		}
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		next := s[i+1]
		switch next {
		case '\\', ',', ';', ':', '!', ' ', '\t', '\n', '\r', '~':
			sb.WriteByte(' ')
		case '%', '#', '_', '&':
			sb.WriteByte(next)
		case '$':
			sb.WriteString("＄")
		case '{', '}':
		default:
			sb.WriteByte(c)
			continue
		}
		i++
	}
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
