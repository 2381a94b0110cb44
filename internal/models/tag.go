package models

import "strings"

// Tag is an identifier from the tag dictionary.
type Tag string

// Known tags.
const (
	TagCSS        Tag = "css"
	TagHTML       Tag = "html"
	TagJavaScript Tag = "javascript"
	TagTypeScript Tag = "typescript"
	TagReact      Tag = "react"
	TagUI         Tag = "ui"
	TagTesting    Tag = "testing"
	TagLearning   Tag = "learning"
	TagEntropy    Tag = "entropy"
	TagThoughts   Tag = "thoughts"
)

// KnownTags lists every declared tag. DefaultDictionary must cover all of them.
var KnownTags = []Tag{
	TagCSS,
	TagHTML,
	TagJavaScript,
	TagTypeScript,
	TagReact,
	TagUI,
	TagTesting,
	TagLearning,
	TagEntropy,
	TagThoughts,
}

// Contrast tells whether text on top of a tag color is rendered light or dark.
type Contrast string

// Contrast values.
const (
	ContrastLight Contrast = "light"
	ContrastDark  Contrast = "dark"
)

// TagDetails is the display record of a dictionary entry.
type TagDetails struct {
	Name        string   `yaml:"name" json:"name"`
	Color       string   `yaml:"color" json:"color"`
	Contrast    Contrast `yaml:"contrast" json:"contrast"`
	Description string   `yaml:"description" json:"description"`
}

// Dictionary maps tag identifiers to their display records.
type Dictionary map[Tag]TagDetails

// Has reports whether tag is a dictionary entry.
func (d Dictionary) Has(tag Tag) bool {
	_, ok := d[tag]
	return ok
}

// Lookup returns the entry for tag.
func (d Dictionary) Lookup(tag Tag) (TagDetails, bool) {
	td, ok := d[tag]
	return td, ok
}

// Resolve finds the dictionary identifier matching s case-insensitively.
func (d Dictionary) Resolve(s string) (Tag, bool) {
	if d.Has(Tag(s)) {
		return Tag(s), true
	}
	for tag := range d {
		if strings.EqualFold(string(tag), s) {
			return tag, true
		}
	}
	return "", false
}

// DefaultDictionary returns a fresh copy of the built-in tag dictionary.
func DefaultDictionary() Dictionary {
	return Dictionary{
		TagCSS: {
			Name:        "CSS",
			Color:       "#2965f1",
			Contrast:    ContrastLight,
			Description: "Styling the web at scale: methodologies, tooling, layouts, and the long history of maintainable CSS.",
		},
		TagHTML: {
			Name:        "HTML",
			Color:       "#e44d26",
			Contrast:    ContrastLight,
			Description: "Markup semantics and the document structure underneath every interface.",
		},
		TagJavaScript: {
			Name:        "JavaScript",
			Color:       "#f7df1e",
			Contrast:    ContrastDark,
			Description: "The language of the web, its ecosystem, and its quirks.",
		},
		TagTypeScript: {
			Name:        "TypeScript",
			Color:       "#3178c6",
			Contrast:    ContrastLight,
			Description: "Static types for JavaScript codebases, from narrowing to type-safe styling.",
		},
		TagReact: {
			Name:        "React",
			Color:       "#61dafb",
			Contrast:    ContrastDark,
			Description: "Components, rendering, and structuring React applications.",
		},
		TagUI: {
			Name:        "UI",
			Color:       "#9b59b6",
			Contrast:    ContrastLight,
			Description: "Building user interfaces: components, layout, and design systems.",
		},
		TagTesting: {
			Name:        "Testing",
			Color:       "#27ae60",
			Contrast:    ContrastLight,
			Description: "Why, what, and how to test front-end code.",
		},
		TagLearning: {
			Name:        "Learning",
			Color:       "#f39c12",
			Contrast:    ContrastDark,
			Description: "Notes on learning, teaching, and growing as a developer.",
		},
		TagEntropy: {
			Name:        "Entropy",
			Color:       "#34495e",
			Contrast:    ContrastLight,
			Description: "Fighting software entropy: documentation, tech debt, and shared knowledge.",
		},
		TagThoughts: {
			Name:        "Thoughts",
			Color:       "#95a5a6",
			Contrast:    ContrastDark,
			Description: "Opinions and loosely structured reflections.",
		},
	}
}
