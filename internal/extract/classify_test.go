package extract

import (
	"strings"
	"testing"
)

func TestClassifier_Tags(t *testing.T) {
	c := NewClassifier(DefaultTopics(), DefaultFallbackTopic)
	tests := []struct {
		text string
		want []string
	}{
		{"长短信按67字计费", []string{"计费结算"}},
		{"nothing relevant", []string{"综合"}},
		{"sender id 需要回填", []string{"国际短信"}},
		{"签名 计费", []string{"计费结算", "签名码号"}},
		{"", []string{"综合"}},
	}
	for _, tt := range tests {
		got := c.Tags(tt.text)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("Tags(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestClassifier_CustomTable(t *testing.T) {
	c := NewClassifier([]Topic{{Name: "网络", Keywords: []string{"TCP", ""}}}, "其他")
	if got := c.Tags("tcp handshake"); len(got) != 1 || got[0] != "网络" {
		t.Errorf("unexpected tags %v", got)
	}
	if got := c.Tags("udp"); len(got) != 1 || got[0] != "其他" {
		t.Errorf("expected fallback, got %v", got)
	}
	if c.Fallback() != "其他" {
		t.Errorf("unexpected fallback %q", c.Fallback())
	}
}

func TestClassifier_DefaultFallback(t *testing.T) {
	c := NewClassifier(nil, "")
	if got := c.Tags("anything"); len(got) != 1 || got[0] != DefaultFallbackTopic {
		t.Errorf("unexpected tags %v", got)
	}
}
