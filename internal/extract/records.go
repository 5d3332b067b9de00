package extract

import (
	"log/slog"
)

// QuestionKind is the quiz type of a question record.
type QuestionKind string

const (
	KindSingle    QuestionKind = "single"
	KindMultiple  QuestionKind = "multiple"
	KindTrueFalse QuestionKind = "truefalse"
	KindShort     QuestionKind = "short"
	KindFlash     QuestionKind = "flash"
)

// Valid reports whether k names a known question kind.
func (k QuestionKind) Valid() bool {
	switch k {
	case KindSingle, KindMultiple, KindTrueFalse, KindShort, KindFlash:
		return true
	}
	return false
}

// Judgement answers for true/false questions.
const (
	AnswerTrue  = "对"
	AnswerFalse = "错"
)

// Question is one quiz record extracted from a question bank row.
type Question struct {
	ID          string       `json:"id"`
	Source      string       `json:"source"`
	Kind        QuestionKind `json:"qtype"`
	Stem        string       `json:"stem"`
	Options     []string     `json:"options"`
	Answer      string       `json:"answer"`
	Explanation string       `json:"explanation"`
	Tags        []string     `json:"tags"`
}

// Knowledge is one titled content block from the knowledge base.
type Knowledge struct {
	ID      string   `json:"id"`
	Chapter string   `json:"chapter"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Section binds a question bank label to the extractor that reads it.
type Section struct {
	Label    string       `mapstructure:"label" json:"label"`
	Kind     QuestionKind `mapstructure:"kind" json:"kind"`
	IDPrefix string       `mapstructure:"id_prefix" json:"id_prefix,omitempty"`
}

// Prefix returns the id prefix, defaulting to the label.
func (s Section) Prefix() string {
	if s.IDPrefix != "" {
		return s.IDPrefix
	}
	return s.Label
}

// Extractor turns markup windows into records. It is safe for concurrent
// use; the classifier is immutable and stats are mutex guarded.
type Extractor struct {
	classifier *Classifier
	stats      *RowStats
	log        *slog.Logger
}

// New returns an extractor tagging records with c. stats may be nil.
func New(c *Classifier, stats *RowStats, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	if stats == nil {
		stats = NewRowStats()
	}
	return &Extractor{classifier: c, stats: stats, log: log}
}

// Stats returns the row counters shared by this extractor.
func (e *Extractor) Stats() *RowStats {
	return e.stats
}

// Section dispatches window to the extractor bound to sec.Kind.
func (e *Extractor) Section(window string, sec Section) []Question {
	switch sec.Kind {
	case KindSingle:
		return e.Choices(window, sec.Label, sec.Prefix(), false)
	case KindMultiple:
		return e.Choices(window, sec.Label, sec.Prefix(), true)
	case KindTrueFalse:
		return e.TrueFalse(window, sec.Label, sec.Prefix())
	case KindShort:
		return e.Short(window, sec.Label, sec.Prefix())
	case KindFlash:
		return e.Flash(window, sec.Label, sec.Prefix())
	}
	e.log.Warn("unknown question kind", "label", sec.Label, "kind", sec.Kind)
	return nil
}
