package feed

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Format is a syndication document format.
type Format string

// Supported formats.
const (
	FormatAtom Format = "atom"
	FormatRSS  Format = "rss"
	FormatJSON Format = "json"
)

// FileName is the name of the document inside the output directory.
func (f Format) FileName() string {
	switch f {
	case FormatRSS:
		return "feed.xml"
	case FormatJSON:
		return "feed.json"
	default:
		return "atom.xml"
	}
}

// ContentType is the media type served for the document.
func (f Format) ContentType() string {
	switch f {
	case FormatRSS:
		return "application/rss+xml"
	case FormatJSON:
		return "application/feed+json"
	default:
		return "application/atom+xml"
	}
}

// Config describes the feed identity and output.
type Config struct {
	Origin             string
	Title              string
	Description        string
	Language           string
	AuthorName         string
	AuthorEmail        string
	CopyrightStartYear int
	OutputDir          string
	Formats            []Format
	Minify             bool
	FullContent        bool
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Origin, validation.Required, is.URL),
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.AuthorName, validation.Required),
		validation.Field(&c.AuthorEmail, is.EmailFormat),
		validation.Field(&c.CopyrightStartYear, validation.Min(0)),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.Formats, validation.Each(validation.In(FormatAtom, FormatRSS, FormatJSON))),
	)
}

func (c Config) origin() string {
	return strings.TrimRight(c.Origin, "/")
}

// Copyright renders the copyright line for the given year.
func (c Config) Copyright(year int) string {
	if c.CopyrightStartYear <= 0 || c.CopyrightStartYear >= year {
		return fmt.Sprintf("© %d %s", year, c.AuthorName)
	}
	return fmt.Sprintf("© %d-%d %s", c.CopyrightStartYear, year, c.AuthorName)
}
