package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dgallion1/texsite/internal/extract"
	"github.com/dgallion1/texsite/internal/parser"
)

// Config is the full build and server configuration.
type Config struct {
	// Paths
	SourceDir  string `mapstructure:"source_dir"`
	SiteDir    string `mapstructure:"site_dir"`
	ReadersDir string `mapstructure:"readers_dir"` // relative to SiteDir
	DataFile   string `mapstructure:"data_file"`   // relative to SiteDir
	SQLitePath string `mapstructure:"sqlite_path"` // empty disables the export

	// Site
	SiteTitle string `mapstructure:"site_title"`
	Version   string `mapstructure:"version"`

	Documents []DocumentConfig `mapstructure:"documents"`
	Bank      BankConfig       `mapstructure:"bank"`
	Knowledge KnowledgeConfig  `mapstructure:"knowledge"`

	// Topic table
	Topics        []extract.Topic `mapstructure:"topics"`
	FallbackTopic string          `mapstructure:"fallback_topic"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	// Server
	Port   string `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DocumentConfig describes one reader page.
type DocumentConfig struct {
	ID       string `mapstructure:"id"`
	Title    string `mapstructure:"title"`
	Desc     string `mapstructure:"desc"`
	Source   string `mapstructure:"source"` // relative to SourceDir
	Output   string `mapstructure:"output"` // relative to ReadersDir
	PDF      string `mapstructure:"pdf"`    // relative to SiteDir
	Intro    string `mapstructure:"intro"`  // Markdown
	Manifest bool   `mapstructure:"manifest"`
}

// BankConfig describes the question bank source.
type BankConfig struct {
	Source   string            `mapstructure:"source"`
	Sections []extract.Section `mapstructure:"sections"`
}

// KnowledgeConfig describes the knowledge base source.
type KnowledgeConfig struct {
	Source    string `mapstructure:"source"`
	MinLength int    `mapstructure:"min_length"`
}

// DefaultDocuments returns the reader pages built when none are configured.
func DefaultDocuments() []DocumentConfig {
	return []DocumentConfig{
		{
			ID:       "doc-1",
			Title:    "企业短信培训学习手册（专业文稿版）",
			Desc:     "完整学习主线，适合系统阅读与阶段复习。",
			Source:   "original_complete.tex",
			Output:   "doc-1.html",
			PDF:      "files/01-企业短信培训学习手册-专业文稿版.pdf",
			Manifest: true,
		},
		{
			ID:     "doc-2",
			Title:  "全知识点（结构化）",
			Source: "knowledge_points_full.tex",
			Output: "doc-2.html",
		},
		{
			ID:       "doc-3",
			Title:    "题库（学习测评版）",
			Desc:     "覆盖单选、多选、判断、场景、闪卡与扩展消息类型专题。",
			Source:   "practice_with_brain_science.tex",
			Output:   "doc-3.html",
			PDF:      "files/03-企业短信培训题库-学习测评版.pdf",
			Manifest: true,
		},
	}
}

// DefaultSections returns the question bank layout used when none is configured.
func DefaultSections() []extract.Section {
	return []extract.Section{
		{Label: "A卷", Kind: extract.KindSingle},
		{Label: "B卷", Kind: extract.KindMultiple},
		{Label: "C卷", Kind: extract.KindTrueFalse, IDPrefix: "C"},
		{Label: "D卷", Kind: extract.KindShort},
		{Label: "E卷", Kind: extract.KindFlash, IDPrefix: "E"},
		{Label: "F卷", Kind: extract.KindSingle},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source_dir", "output/src")
	v.SetDefault("site_dir", "docs")
	v.SetDefault("readers_dir", "readers")
	v.SetDefault("data_file", "assets/data.json")
	v.SetDefault("sqlite_path", "")
	v.SetDefault("site_title", "企业短信学习站")
	v.SetDefault("version", "web-v1.0")
	v.SetDefault("bank.source", "practice_with_brain_science.tex")
	v.SetDefault("knowledge.source", "knowledge_points_full.tex")
	v.SetDefault("knowledge.min_length", extract.DefaultKnowledgeMinLength)
	v.SetDefault("fallback_topic", extract.DefaultFallbackTopic)
	v.SetDefault("worker_count", 4)
	v.SetDefault("max_queue_size", 16)
	v.SetDefault("job_ttl", time.Hour)
	v.SetDefault("port", "8090")
	v.SetDefault("api_key", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads configuration from a .env file, an optional YAML file and
// TEXSITE_* environment variables, in increasing precedence. With an empty
// file, texsite.yaml is looked up in . and ./config and may be absent.
func Load(file string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("texsite")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	v.SetEnvPrefix("TEXSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if len(cfg.Documents) == 0 {
		cfg.Documents = DefaultDocuments()
	}
	if len(cfg.Bank.Sections) == 0 {
		cfg.Bank.Sections = DefaultSections()
	}
	if len(cfg.Topics) == 0 {
		cfg.Topics = extract.DefaultTopics()
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.Knowledge.MinLength <= 0 {
		cfg.Knowledge.MinLength = extract.DefaultKnowledgeMinLength
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}

	return cfg, nil
}

// Validate rejects configurations no build can run with.
func (c Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.SiteDir == "" {
		return fmt.Errorf("site_dir is required")
	}
	if c.DataFile == "" {
		return fmt.Errorf("data_file is required")
	}

	ids := make(map[string]bool, len(c.Documents))
	for i, d := range c.Documents {
		if d.ID == "" || d.Source == "" || d.Output == "" {
			return fmt.Errorf("documents[%d]: id, source and output are required", i)
		}
		if !parser.IsSupportedExtension(d.Source) {
			return fmt.Errorf("documents[%d]: unsupported source %q", i, d.Source)
		}
		if ids[d.ID] {
			return fmt.Errorf("documents[%d]: duplicate id %q", i, d.ID)
		}
		ids[d.ID] = true
	}

	if c.Bank.Source == "" {
		return fmt.Errorf("bank.source is required")
	}
	if !parser.IsSupportedExtension(c.Bank.Source) {
		return fmt.Errorf("bank.source: unsupported source %q", c.Bank.Source)
	}
	labels := make(map[string]bool, len(c.Bank.Sections))
	for i, s := range c.Bank.Sections {
		if s.Label == "" {
			return fmt.Errorf("bank.sections[%d]: label is required", i)
		}
		if labels[s.Label] {
			return fmt.Errorf("bank.sections[%d]: duplicate label %q", i, s.Label)
		}
		labels[s.Label] = true
		if !s.Kind.Valid() {
			return fmt.Errorf("bank.sections[%d]: unknown kind %q", i, s.Kind)
		}
	}

	if c.Knowledge.Source == "" {
		return fmt.Errorf("knowledge.source is required")
	}
	for i, t := range c.Topics {
		if t.Name == "" || len(t.Keywords) == 0 {
			return fmt.Errorf("topics[%d]: name and keywords are required", i)
		}
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SourcePath resolves a source file name against SourceDir.
func (c Config) SourcePath(name string) string {
	return filepath.Join(c.SourceDir, name)
}

// ReaderPath is the file a document's page is written to.
func (c Config) ReaderPath(d DocumentConfig) string {
	return filepath.Join(c.SiteDir, c.ReadersDir, d.Output)
}

// WebPath is a document's page path relative to the site root, slash separated.
func (c Config) WebPath(d DocumentConfig) string {
	return path.Join(filepath.ToSlash(c.ReadersDir), d.Output)
}

// DataPath is the file the data set is written to.
func (c Config) DataPath() string {
	return filepath.Join(c.SiteDir, c.DataFile)
}

// Labels returns the configured question bank labels in order.
func (c Config) Labels() []string {
	labels := make([]string, len(c.Bank.Sections))
	for i, s := range c.Bank.Sections {
		labels[i] = s.Label
	}
	return labels
}

// Document returns the configured document with id.
func (c Config) Document(id string) (DocumentConfig, bool) {
	for _, d := range c.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return DocumentConfig{}, false
}
