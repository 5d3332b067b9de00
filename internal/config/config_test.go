package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/texsite/internal/extract"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "texsite.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.SiteTitle != "企业短信学习站" || cfg.Version != "web-v1.0" {
		t.Errorf("unexpected site identity %q %q", cfg.SiteTitle, cfg.Version)
	}
	if len(cfg.Documents) != 3 || len(cfg.Bank.Sections) != 6 || len(cfg.Topics) != 7 {
		t.Errorf("unexpected defaults: %d docs, %d sections, %d topics",
			len(cfg.Documents), len(cfg.Bank.Sections), len(cfg.Topics))
	}
	if cfg.Knowledge.MinLength != 20 || cfg.FallbackTopic != "综合" {
		t.Errorf("unexpected knowledge defaults %+v %q", cfg.Knowledge, cfg.FallbackTopic)
	}
	if cfg.JobTTL != time.Hour || cfg.WorkerCount != 4 {
		t.Errorf("unexpected runtime defaults %v %d", cfg.JobTTL, cfg.WorkerCount)
	}
	if got := strings.Join(cfg.Labels(), ","); got != "A卷,B卷,C卷,D卷,E卷,F卷" {
		t.Errorf("unexpected labels %q", got)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
source_dir: src
site_dir: site
site_title: 测试站
worker_count: 2
job_ttl: 30m
documents:
  - id: guide
    title: 指南
    source: guide.tex
    output: guide.html
    manifest: true
    intro: "**简介**"
bank:
  source: bank.tex
  sections:
    - label: 甲卷
      kind: single
    - label: 乙卷
      kind: flash
      id_prefix: Y
knowledge:
  source: kb.tex
  min_length: 5
topics:
  - name: 网络
    keywords: [TCP, UDP]
fallback_topic: 其他
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if cfg.SiteTitle != "测试站" || cfg.WorkerCount != 2 || cfg.JobTTL != 30*time.Minute {
		t.Errorf("unexpected scalars %+v", cfg)
	}
	if len(cfg.Documents) != 1 || !cfg.Documents[0].Manifest || cfg.Documents[0].Intro != "**简介**" {
		t.Errorf("unexpected documents %+v", cfg.Documents)
	}
	if len(cfg.Bank.Sections) != 2 || cfg.Bank.Sections[1].Kind != extract.KindFlash || cfg.Bank.Sections[1].Prefix() != "Y" {
		t.Errorf("unexpected sections %+v", cfg.Bank.Sections)
	}
	if cfg.Knowledge.MinLength != 5 || len(cfg.Topics) != 1 || cfg.FallbackTopic != "其他" {
		t.Errorf("unexpected knowledge/topics %+v %+v", cfg.Knowledge, cfg.Topics)
	}
	if cfg.Version != "web-v1.0" {
		t.Errorf("expected default version, got %q", cfg.Version)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TEXSITE_PORT", "9999")
	t.Setenv("TEXSITE_KNOWLEDGE_MIN_LENGTH", "42")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("expected port from env, got %q", cfg.Port)
	}
	if cfg.Knowledge.MinLength != 42 {
		t.Errorf("expected min_length from env, got %d", cfg.Knowledge.MinLength)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no source dir", func(c *Config) { c.SourceDir = "" }},
		{"no site dir", func(c *Config) { c.SiteDir = "" }},
		{"duplicate document", func(c *Config) { c.Documents = append(c.Documents, c.Documents[0]) }},
		{"document without output", func(c *Config) { c.Documents = []DocumentConfig{{ID: "x", Source: "x.tex"}} }},
		{"unsupported document source", func(c *Config) { c.Documents = []DocumentConfig{{ID: "x", Source: "x.md", Output: "x.html"}} }},
		{"unsupported bank source", func(c *Config) { c.Bank.Source = "bank.docx" }},
		{"no bank source", func(c *Config) { c.Bank.Source = "" }},
		{"duplicate label", func(c *Config) {
			c.Bank.Sections = []extract.Section{{Label: "A", Kind: extract.KindSingle}, {Label: "A", Kind: extract.KindShort}}
		}},
		{"unknown kind", func(c *Config) { c.Bank.Sections = []extract.Section{{Label: "A", Kind: "essay"}} }},
		{"empty topic", func(c *Config) { c.Topics = []extract.Topic{{Name: "x"}} }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			c.Documents = append([]DocumentConfig(nil), base.Documents...)
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPaths(t *testing.T) {
	c := Config{SourceDir: "src", SiteDir: "site", ReadersDir: "readers", DataFile: "assets/data.json"}
	d := DocumentConfig{ID: "doc-1", Output: "doc-1.html"}
	if got := c.ReaderPath(d); got != filepath.Join("site", "readers", "doc-1.html") {
		t.Errorf("unexpected reader path %q", got)
	}
	if got := c.WebPath(d); got != "readers/doc-1.html" {
		t.Errorf("unexpected web path %q", got)
	}
	if got := c.DataPath(); got != filepath.Join("site", "assets", "data.json") {
		t.Errorf("unexpected data path %q", got)
	}
	if got := c.SourcePath("a.tex"); got != filepath.Join("src", "a.tex") {
		t.Errorf("unexpected source path %q", got)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	Config{LogFormat: "json", LogLevel: "debug"}.Logger(&buf).Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected json output, got %q", buf.String())
	}

	buf.Reset()
	Config{LogLevel: "warn"}.Logger(&buf).Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn, got %q", buf.String())
	}
}
