package dataset

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dgallion1/texsite/internal/extract"
)

func sampleSet() *DataSet {
	return New("企业短信学习站", "web-v1.0",
		[]Document{{ID: "doc-1", Title: "手册", Desc: "主线", Web: "readers/doc-1.html", PDF: "files/doc-1.pdf"}},
		[]extract.Knowledge{{ID: "计费-长短信", Chapter: "计费", Title: "长短信", Content: "按 67 字拆分 <b>", Tags: []string{"计费结算"}}},
		[]extract.Question{
			{ID: "A卷-1", Source: "A卷", Kind: extract.KindSingle, Stem: "题", Options: []string{"a", "b", "", ""}, Answer: "A", Tags: []string{"综合"}},
			{ID: "E-1", Source: "E卷", Kind: extract.KindFlash, Stem: "卡", Options: []string{}, Tags: []string{"综合"}},
		},
	)
}

func TestNew_CountsMatch(t *testing.T) {
	d := sampleSet()
	if d.Meta.KnowledgeCount != 1 || d.Meta.QuestionCount != 2 {
		t.Errorf("unexpected meta %+v", d.Meta)
	}
	if err := d.Check(); err != nil {
		t.Errorf("unexpected check error: %v", err)
	}

	empty := New("t", "v", nil, nil, nil)
	if empty.Documents == nil || empty.Knowledge == nil || empty.Questions == nil {
		t.Error("expected nil collections to be replaced")
	}
}

func TestCheck_Mismatch(t *testing.T) {
	d := sampleSet()
	d.Questions = d.Questions[:1]
	if err := d.Check(); err == nil {
		t.Error("expected count mismatch error")
	}
}

func TestMarshal_Format(t *testing.T) {
	out, err := sampleSet().Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		"{\n  \"meta\": {\n    \"title\": \"企业短信学习站\"",
		`"knowledge_count": 1`,
		`"question_count": 2`,
		`"qtype": "single"`,
		`"content": "按 67 字拆分 <b>"`,
		`"options": []`,
		`"web": "readers/doc-1.html"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(s, `\u`) {
		t.Error("expected no unicode escapes")
	}
	if strings.Contains(s, `"pages"`) {
		t.Error("expected zero pages to be omitted")
	}
	if strings.Contains(s, "null") {
		t.Error("expected no null values")
	}
}

func TestDecode_RoundTripCounts(t *testing.T) {
	out, err := sampleSet().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	d, err := Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Meta.QuestionCount != len(d.Questions) || d.Meta.KnowledgeCount != len(d.Knowledge) {
		t.Errorf("counts do not match collections: %+v", d.Meta)
	}
}

func TestDecode_RejectsBadCounts(t *testing.T) {
	d := sampleSet()
	d.Meta.QuestionCount = 7
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(bytes.NewReader(raw)); err == nil {
		t.Error("expected decode to reject mismatched counts")
	}
}
