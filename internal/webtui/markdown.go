package webtui

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Raw HTML in the source is dropped (no html.WithUnsafe). Headings get ids
// so the docs outline can link to sections.
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// section is one "## " heading of a docs page.
type section struct {
	ID    string
	Title string
}

// renderDoc renders src to HTML and returns its second-level headings in order.
func renderDoc(src string) (template.HTML, []section) {
	source := []byte(strings.TrimSpace(src))
	if len(source) == 0 {
		return "", nil
	}
	doc := markdownRenderer.Parser().Parse(text.NewReader(source))

	var outline []section
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		if h.Level == 2 {
			id, _ := h.AttributeString("id")
			b, _ := id.([]byte)
			title := strings.ReplaceAll(string(h.Lines().Value(source)), "`", "")
			outline = append(outline, section{ID: string(b), Title: strings.TrimSpace(title)})
		}
		return ast.WalkSkipChildren, nil
	})

	var b bytes.Buffer
	if err := markdownRenderer.Renderer().Render(&b, source, doc); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(string(source)) + "</pre>"), nil
	}
	return template.HTML(b.String()), outline
}
