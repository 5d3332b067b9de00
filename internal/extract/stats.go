package extract

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Tally counts how the rows of one window were handled.
type Tally struct {
	Rows      int `json:"rows"`
	Emitted   int `json:"emitted"`
	Malformed int `json:"malformed"`
	Skipped   int `json:"skipped"`
}

// SourceStats is the accumulated tally for one question source.
type SourceStats struct {
	Source string       `json:"source"`
	Kind   QuestionKind `json:"kind"`
	Tally
	UpdatedAt time.Time `json:"updated_at"`
}

// StatsSnapshot is a point-in-time view of all sources.
type StatsSnapshot struct {
	Sources []SourceStats `json:"sources"`
	Totals  Tally         `json:"totals"`
}

// RowStats accumulates per-source row tallies across concurrent extractions.
type RowStats struct {
	mu       sync.Mutex
	bySource map[string]*SourceStats
}

func NewRowStats() *RowStats {
	return &RowStats{bySource: make(map[string]*SourceStats)}
}

func (s *RowStats) Add(source string, kind QuestionKind, t Tally) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.bySource[source]
	if !ok {
		st = &SourceStats{Source: source, Kind: kind}
		s.bySource[source] = st
	}
	st.Rows += t.Rows
	st.Emitted += t.Emitted
	st.Malformed += t.Malformed
	st.Skipped += t.Skipped
	st.UpdatedAt = now
}

// Snapshot returns the per-source tallies sorted by source, with totals.
func (s *RowStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources := lo.Map(lo.Values(s.bySource), func(st *SourceStats, _ int) SourceStats {
		return *st
	})
	sort.Slice(sources, func(i, j int) bool { return sources[i].Source < sources[j].Source })

	var totals Tally
	for _, st := range sources {
		totals.Rows += st.Rows
		totals.Emitted += st.Emitted
		totals.Malformed += st.Malformed
		totals.Skipped += st.Skipped
	}
	if sources == nil {
		sources = []SourceStats{}
	}
	return StatsSnapshot{Sources: sources, Totals: totals}
}

// Reset clears all tallies.
func (s *RowStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySource = make(map[string]*SourceStats)
}
