// Package parser splits a post file into its frontmatter metadata and Markdown body.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/starford/presswork/internal/models"
)

// Result holds the output of parsing a post file.
type Result struct {
	Meta models.Metadata
	Body string
	// Heading is the first H1 of the body, used when the title is missing.
	Heading string
	// HasFrontmatter is false when the file carries no frontmatter block at all.
	HasFrontmatter bool
}

// Parse decodes the YAML frontmatter of data into Metadata and returns the
// remaining Markdown body. Malformed frontmatter is an error; a file without
// frontmatter parses with zero Metadata and the full content as body.
func Parse(data []byte) (*Result, error) {
	var meta models.Metadata
	rest, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("parser: frontmatter: %w", err)
	}

	body := strings.TrimLeft(string(rest), "\r\n")
	return &Result{
		Meta:           normalize(meta),
		Body:           body,
		Heading:        firstHeading(body),
		HasFrontmatter: hasDelimiter(data),
	}, nil
}

// normalize trims free-text fields and drops empty tags.
func normalize(m models.Metadata) models.Metadata {
	m.Date = strings.TrimSpace(m.Date)
	m.Title = strings.TrimSpace(m.Title)
	m.Subtitle = strings.TrimSpace(m.Subtitle)
	m.Intro = strings.TrimSpace(m.Intro)
	m.Cover = strings.TrimSpace(m.Cover)
	m.Visibility = models.Visibility(strings.TrimSpace(string(m.Visibility)))

	tags := make([]models.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		if s := strings.TrimSpace(string(t)); s != "" {
			tags = append(tags, models.Tag(s))
		}
	}
	m.Tags = tags

	extra := make([]string, 0, len(m.TagsExtra))
	for _, t := range m.TagsExtra {
		if s := strings.TrimSpace(t); s != "" {
			extra = append(extra, s)
		}
	}
	m.TagsExtra = extra
	return m
}

// hasDelimiter reports whether data opens with a YAML frontmatter fence.
func hasDelimiter(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\r\n\t "), []byte("---"))
}

// firstHeading returns the text of the first "# " line, or empty string.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
