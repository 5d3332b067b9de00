package pipeline

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/texsite/internal/config"
	"github.com/dgallion1/texsite/internal/extract"
)

const bankSource = `\documentclass{ctexbook}
\begin{document}
% \chapter{C卷 已删除}
\chapter{A卷 单选题}
\begin{longtable}{ll}
\textbf{1.} 长短信如何计费？\par\textbf{A.} 按 67 字拆分\par\textbf{B.} 按字节 & \ansline{A}\par\expline{超过 70 字按 67 字拆分} \\
\end{longtable}
\chapter{C卷 判断题}
\textbf{1.} 签名无需报备。 & 错，签名需要三网报备 \\
\end{document}
`

const knowledgeSource = `\chapter{计费规则}
\section{长短信}
长短信按 67 字拆分为多条计费，超过部分按条累加计费。
`

const manualSource = `\begin{document}
\chapter{概述}
正文段落。
\section{细节}
\VerbatimInput{snippet.txt}
\end{document}
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// testConfig lays out a small source tree under a temp dir.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "bank.tex"), bankSource)
	writeFile(t, filepath.Join(src, "kb.tex"), knowledgeSource)
	writeFile(t, filepath.Join(src, "manual.tex"), manualSource)
	writeFile(t, filepath.Join(src, "snippet.txt"), "curl -X POST /send\n")

	return config.Config{
		SourceDir:  src,
		SiteDir:    filepath.Join(root, "site"),
		ReadersDir: "readers",
		DataFile:   "assets/data.json",
		SiteTitle:  "测试站",
		Version:    "test",
		Documents: []config.DocumentConfig{
			{ID: "doc-1", Title: "手册", Desc: "主线", Source: "manual.tex", Output: "doc-1.html", PDF: "files/a.pdf", Intro: "**重点**", Manifest: true},
			{ID: "doc-2", Title: "题库", Source: "bank.tex", Output: "doc-2.html"},
		},
		Bank: config.BankConfig{
			Source: "bank.tex",
			Sections: []extract.Section{
				{Label: "A卷", Kind: extract.KindSingle},
				{Label: "C卷", Kind: extract.KindTrueFalse, IDPrefix: "C"},
			},
		},
		Knowledge:     config.KnowledgeConfig{Source: "kb.tex", MinLength: extract.DefaultKnowledgeMinLength},
		Topics:        extract.DefaultTopics(),
		FallbackTopic: extract.DefaultFallbackTopic,
		WorkerCount:   2,
		MaxQueueSize:  2,
		JobTTL:        time.Hour,
	}
}
