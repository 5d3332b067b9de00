// Package dataset assembles and serializes the site data file.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/texsite/internal/extract"
)

// Meta summarizes a data set.
type Meta struct {
	Title          string `json:"title"`
	Version        string `json:"version"`
	KnowledgeCount int    `json:"knowledge_count"`
	QuestionCount  int    `json:"question_count"`
}

// Document is a manifest entry pointing at a reader page and its download.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
	Web   string `json:"web"`
	PDF   string `json:"pdf"`
	Pages int    `json:"pages,omitempty"`
}

// DataSet is the consolidated payload consumed by the quiz front end.
type DataSet struct {
	Meta      Meta                `json:"meta"`
	Documents []Document          `json:"documents"`
	Knowledge []extract.Knowledge `json:"knowledge"`
	Questions []extract.Question  `json:"questions"`
}

// New builds a data set whose counts always match its collections. Nil
// collections are replaced with empty ones so they serialize as [].
func New(title, version string, docs []Document, knowledge []extract.Knowledge, questions []extract.Question) *DataSet {
	if docs == nil {
		docs = []Document{}
	}
	if knowledge == nil {
		knowledge = []extract.Knowledge{}
	}
	if questions == nil {
		questions = []extract.Question{}
	}
	return &DataSet{
		Meta: Meta{
			Title:          title,
			Version:        version,
			KnowledgeCount: len(knowledge),
			QuestionCount:  len(questions),
		},
		Documents: docs,
		Knowledge: knowledge,
		Questions: questions,
	}
}

// Check verifies the meta counts against the collections.
func (d *DataSet) Check() error {
	if d.Meta.KnowledgeCount != len(d.Knowledge) {
		return fmt.Errorf("knowledge_count %d does not match %d items", d.Meta.KnowledgeCount, len(d.Knowledge))
	}
	if d.Meta.QuestionCount != len(d.Questions) {
		return fmt.Errorf("question_count %d does not match %d items", d.Meta.QuestionCount, len(d.Questions))
	}
	return nil
}

// Encode writes d as two-space indented JSON with non-ASCII and HTML
// characters left unescaped.
func (d *DataSet) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Marshal returns the encoded form of d.
func (d *DataSet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode data set: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads a data set and checks its counts.
func Decode(r io.Reader) (*DataSet, error) {
	var d DataSet
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode data set: %w", err)
	}
	if err := d.Check(); err != nil {
		return nil, err
	}
	return &d, nil
}
