// Package models defines the domain types for Presswork.
package models

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing Metadata.Date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Metadata is the frontmatter block of a post.
type Metadata struct {
	Date        string     `yaml:"date" json:"date"`
	Title       string     `yaml:"title" json:"title"`
	Subtitle    string     `yaml:"subtitle" json:"subtitle,omitempty"`
	Tags        []Tag      `yaml:"tags" json:"tags"`
	TagsExtra   []string   `yaml:"tags_extra" json:"tags_extra"`
	Intro       string     `yaml:"intro" json:"intro"`
	Cover       string     `yaml:"cover" json:"cover,omitempty"`
	CoverWidth  int        `yaml:"cover_width" json:"cover_width,omitempty"`
	CoverHeight int        `yaml:"cover_height" json:"cover_height,omitempty"`
	Visibility  Visibility `yaml:"visibility" json:"visibility"`
}

// FullTitle returns the title qualified by the subtitle, if any.
func (m Metadata) FullTitle() string {
	if m.Subtitle == "" {
		return m.Title
	}
	return m.Title + ": " + m.Subtitle
}

// PublishedAt parses Date. Unparseable or empty dates yield the zero time.
func (m Metadata) PublishedAt() time.Time {
	t, _ := ParseDate(m.Date)
	return t
}

// PrimaryTag returns the first tag, which carries the post's category.
func (m Metadata) PrimaryTag() (Tag, bool) {
	if len(m.Tags) == 0 {
		return "", false
	}
	return m.Tags[0], true
}

// Keywords returns the display names of dictionary tags followed by the
// free-text extra tags. Tags missing from the dictionary are kept verbatim.
func (m Metadata) Keywords(dict Dictionary) []string {
	out := make([]string, 0, len(m.Tags)+len(m.TagsExtra))
	for _, t := range m.Tags {
		if td, ok := dict.Lookup(t); ok {
			out = append(out, td.Name)
			continue
		}
		out = append(out, string(t))
	}
	return append(out, m.TagsExtra...)
}

// ParseDate parses a calendar date using the supported layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Post is one authored content item.
type Post struct {
	ID       string   `json:"id"`
	Path     string   `json:"path"`
	Meta     Metadata `json:"meta"`
	Body     string   `json:"-"`
	Checksum string   `json:"checksum"`
}

// HasTag reports whether the post carries tag, ignoring case.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Meta.Tags {
		if strings.EqualFold(string(t), tag) {
			return true
		}
	}
	return false
}

// FileInfo is a lightweight description of a content file.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
