package parser

import (
	"strconv"
	"strings"
)

// AnchorSet hands out heading anchor ids that are unique within one
// document.
type AnchorSet struct {
	used map[string]bool
}

func NewAnchorSet() *AnchorSet {
	return &AnchorSet{used: make(map[string]bool)}
}

// Next slugifies title and disambiguates it with -2, -3, ... on collision.
func (a *AnchorSet) Next(title string) string {
	base := anchorSlug(title)
	slug := base
	for n := 2; a.used[slug]; n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	a.used[slug] = true
	return slug
}

// anchorSlug keeps ASCII letters, digits and CJK ideographs; every other run
// becomes a single '-'.
func anchorSlug(title string) string {
	var sb strings.Builder
	pendingDash := false
	for _, r := range title {
		if isAnchorRune(r) {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	slug := strings.ToLower(sb.String())
	if slug == "" {
		return "section"
	}
	return slug
}

func isAnchorRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		(r >= 0x4e00 && r <= 0x9fff)
}
