package extract

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ErrMissingSectionLabel is returned when an expected section heading is not
// present in the question bank.
var ErrMissingSectionLabel = errors.New("missing section label")

// Segment slices src into one window per label. Each window starts at the
// chapter command whose title begins with the label and runs to the next
// label's position, or the end of src. Windows are cut in source order
// regardless of the order of labels.
func Segment(src string, labels []string) (map[string]string, error) {
	type start struct {
		label string
		pos   int
	}
	starts := make([]start, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if seen[label] {
			continue
		}
		seen[label] = true
		re := regexp.MustCompile(`\\chapter\*?\{\s*` + regexp.QuoteMeta(label))
		loc := re.FindStringIndex(src)
		if loc == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingSectionLabel, label)
		}
		starts = append(starts, start{label: label, pos: loc[0]})
	}

	sort.SliceStable(starts, func(i, j int) bool { return starts[i].pos < starts[j].pos })

	windows := make(map[string]string, len(starts))
	for i, s := range starts {
		end := len(src)
		for _, next := range starts[i+1:] {
			if next.pos > s.pos {
				end = next.pos
				break
			}
		}
		windows[s.label] = src[s.pos:end]
	}
	return windows, nil
}
