package extract

import (
	"regexp"
	"unicode/utf8"

	"github.com/dgallion1/texsite/internal/parser"
)

// DefaultKnowledgeMinLength is the shortest section content, in characters,
// kept as a knowledge item.
const DefaultKnowledgeMinLength = 20

var (
	chapterCmdRe  = regexp.MustCompile(`\\chapter\*?\{`)
	sectionCmdRe  = regexp.MustCompile(`\\section\*?\{`)
	longtableRe   = regexp.MustCompile(`(?s)\\begin\{longtable\}.*?\\end\{longtable\}`)
	titlepageRe   = regexp.MustCompile(`(?s)\\begin\{titlepage\}.*?\\end\{titlepage\}`)
	envBoundaryRe = regexp.MustCompile(`\\(?:begin|end)\{[^{}]*\}`)
	itemMarkerRe  = regexp.MustCompile(`\\item\b\s*`)
)

type heading struct {
	title string
	start int // offset of the command
	body  int // offset just past its title argument
}

func findHeadings(re *regexp.Regexp, src string) []heading {
	var out []heading
	for _, loc := range re.FindAllStringIndex(src, -1) {
		title, next, ok := parser.ReadGroup(src, loc[1]-1)
		if !ok {
			continue
		}
		out = append(out, heading{title: parser.Normalize(title), start: loc[0], body: next})
	}
	return out
}

// knowledgeText flattens a section body to prose. Tables and title pages are
// removed wholesale and list items become "- " lines.
func knowledgeText(seg string) string {
	seg = longtableRe.ReplaceAllString(seg, "")
	seg = titlepageRe.ReplaceAllString(seg, "")
	seg = envBoundaryRe.ReplaceAllString(seg, " ")
	seg = itemMarkerRe.ReplaceAllString(seg, " - ")
	return parser.Normalize(seg)
}

// Knowledge walks the chapter and section commands of src and returns one
// item per section whose content has at least minLength characters. Items
// sharing an id collapse to the last one, at the position of the first.
func (e *Extractor) Knowledge(src string, minLength int) []Knowledge {
	if minLength <= 0 {
		minLength = DefaultKnowledgeMinLength
	}

	var items []Knowledge
	short := 0
	chapters := findHeadings(chapterCmdRe, src)
	for i, ch := range chapters {
		end := len(src)
		if i+1 < len(chapters) {
			end = chapters[i+1].start
		}
		if end < ch.body {
			continue
		}
		chSeg := src[ch.body:end]

		sections := findHeadings(sectionCmdRe, chSeg)
		for j, sec := range sections {
			sEnd := len(chSeg)
			if j+1 < len(sections) {
				sEnd = sections[j+1].start
			}
			if sEnd < sec.body {
				continue
			}
			content := knowledgeText(chSeg[sec.body:sEnd])
			if utf8.RuneCountInString(content) < minLength {
				short++
				continue
			}
			items = append(items, Knowledge{
				ID:      Slugify(ch.title + "-" + sec.title),
				Chapter: ch.title,
				Title:   sec.title,
				Content: content,
				Tags:    e.classifier.Tags(sec.title + " " + content),
			})
		}
	}

	out := dedupLast(items)
	e.log.Debug("knowledge extracted",
		"chapters", len(chapters),
		"items", len(out),
		"collapsed", len(items)-len(out),
		"too_short", short,
	)
	return out
}

// dedupLast keeps one item per id: the content of the last occurrence at the
// position of the first.
func dedupLast(items []Knowledge) []Knowledge {
	index := make(map[string]int, len(items))
	out := make([]Knowledge, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.ID]; ok {
			out[i] = it
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
