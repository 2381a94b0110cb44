// Package render converts post bodies to HTML and plain-text excerpts.
package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// MoreSeparator marks the end of the excerpt inside a body.
const MoreSeparator = "<!--more-->"

// Markdown renders GitHub flavored Markdown.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a renderer with GFM, heading ids and hard wraps.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// HTML renders body. The excerpt separator is removed from the output.
func (m *Markdown) HTML(body string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return strings.ReplaceAll(buf.String(), MoreSeparator, ""), nil
}

var (
	linkRe   = regexp.MustCompile(`(\[!\[.*?\]\(.*?\)\])|(!?\[(.*?)\]\(.*?\))`)
	markRe   = regexp.MustCompile("(?m)[*#>`~]|^\\s*-\\s")
	spacesRe = regexp.MustCompile(`\s+`)
)

// Excerpt returns up to length runes of plain text taken from the part of
// body before the separator.
func Excerpt(body string, length int) string {
	if before, _, ok := strings.Cut(body, MoreSeparator); ok {
		body = before
	}
	text := linkRe.ReplaceAllString(body, "$3")
	text = markRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))

	runes := []rune(text)
	if length > 0 && len(runes) > length {
		return strings.TrimSpace(string(runes[:length])) + "..."
	}
	return text
}
