package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// MarkdownRenderer converts article bodies to HTML with GitHub-flavored
// extensions and heading anchors.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &MarkdownRenderer{md: md}
}

// Section is a top-level heading of an article, linkable by its anchor ID.
type Section struct {
	Level int
	ID    string
	Title string
}

type MarkdownResult struct {
	HTML []byte
	// Sections lists the document's top-level headings in order.
	Sections []Section
}

func (r *MarkdownRenderer) Render(src []byte) (MarkdownResult, error) {
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, fmt.Errorf("render markdown: %w", err)
	}
	return MarkdownResult{HTML: buf.Bytes(), Sections: sections(doc, src)}, nil
}

// sections skips headings nested in quotes or lists and headings without an ID.
func sections(doc ast.Node, src []byte) []Section {
	var out []Section
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		attr, ok := h.AttributeString("id")
		if !ok {
			continue
		}
		id, ok := attr.([]byte)
		if !ok || len(id) == 0 {
			continue
		}
		var title bytes.Buffer
		inlineText(&title, h, src)
		out = append(out, Section{Level: h.Level, ID: string(id), Title: title.String()})
	}
	return out
}

func inlineText(w *bytes.Buffer, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			w.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				w.WriteByte(' ')
			}
		case *ast.String:
			w.Write(t.Value)
		default:
			inlineText(w, c, src)
		}
	}
}
