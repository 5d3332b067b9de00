package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Defaults for the page chrome of reader pages.
const (
	DefaultStylesheet = "../assets/reader.css"
	DefaultBackLink   = "../index.html"
)

// Page holds the inputs of one reader page.
type Page struct {
	Title      string
	Intro      string // Markdown, optional
	Fragments  Fragments
	Stylesheet string
	BackLink   string
}

type pageData struct {
	Title      string
	Intro      template.HTML
	TOC        template.HTML
	Body       template.HTML
	Stylesheet string
	BackLink   string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="zh-CN">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>{{.Title}} · 在线文稿</title>
    <link rel="preconnect" href="https://fonts.googleapis.com" />
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin />
    <link href="https://fonts.googleapis.com/css2?family=Noto+Sans+SC:wght@400;500;700;900&display=swap" rel="stylesheet" />
    <link rel="stylesheet" href="{{.Stylesheet}}" />
  </head>
  <body>
    <a class="skip-link" href="#docMain">跳到正文</a>
    <a class="back-float" href="{{.BackLink}}" target="_top" rel="noopener">返回学习站</a>
    <main class="reader-shell" id="docMain">
      <header class="doc-header">
        <p class="kicker">在线文稿</p>
        <h1>{{.Title}}</h1>
        <a class="back-link" href="{{.BackLink}}" target="_top" rel="noopener">返回学习站</a>
{{- if .Intro}}
        <div class="doc-intro">{{.Intro}}</div>
{{- end}}
      </header>
{{- if .TOC}}
      {{.TOC}}
{{- end}}
      <article class="doc-content">
{{.Body}}
      </article>
    </main>
  </body>
</html>
`))

// PageRenderer renders reader pages. Markdown intros go through goldmark
// without raw HTML passthrough.
type PageRenderer struct {
	md goldmark.Markdown
}

func NewPageRenderer() *PageRenderer {
	return &PageRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
		),
	}
}

// Intro converts a Markdown intro to HTML.
func (r *PageRenderer) Intro(markdown string) (template.HTML, error) {
	if markdown == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert intro: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Render produces the complete HTML page.
func (r *PageRenderer) Render(p Page) ([]byte, error) {
	intro, err := r.Intro(p.Intro)
	if err != nil {
		return nil, err
	}
	data := pageData{
		Title:      p.Title,
		Intro:      intro,
		TOC:        template.HTML(p.Fragments.TOC),
		Body:       template.HTML(p.Fragments.Body),
		Stylesheet: p.Stylesheet,
		BackLink:   p.BackLink,
	}
	if data.Stylesheet == "" {
		data.Stylesheet = DefaultStylesheet
	}
	if data.BackLink == "" {
		data.BackLink = DefaultBackLink
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute page template: %w", err)
	}
	return buf.Bytes(), nil
}
