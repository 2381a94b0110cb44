// Package series models multi-part posts gated by a published boundary.
package series

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/presswork/internal/apperr"
	"github.com/starford/presswork/internal/checksum"
	"github.com/starford/presswork/internal/models"
	"github.com/starford/presswork/internal/storage"
)

// FileName is the name of the file defining a series inside its directory.
const FileName = "series.yaml"

// PartSpec is one entry of the parts list in series.yaml.
type PartSpec struct {
	ID       int    `yaml:"id"`
	Path     string `yaml:"path"`
	Subtitle string `yaml:"subtitle"`
}

// Definition is the decoded series.yaml.
type Definition struct {
	Title             string     `yaml:"title"`
	Description       string     `yaml:"description"`
	LastPublishedPart int        `yaml:"last_published_part"`
	Parts             []PartSpec `yaml:"parts"`
}

// Validate implements config-style validation of the definition.
func (d Definition) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.Parts, validation.Required, validation.By(contiguousParts)),
		validation.Field(&d.LastPublishedPart, validation.Min(0), validation.Max(max(len(d.Parts)-1, 0))),
	)
}

func contiguousParts(value interface{}) error {
	parts, _ := value.([]PartSpec)
	seen := make(map[string]bool, len(parts))
	for i, p := range parts {
		if p.ID != i {
			return fmt.Errorf("part ids must be contiguous from 0, found %d at position %d", p.ID, i)
		}
		if p.Path != "" && (path.Clean(p.Path) != p.Path || strings.HasPrefix(p.Path, "..") || path.IsAbs(p.Path)) {
			return fmt.Errorf("part %d: invalid path %q", p.ID, p.Path)
		}
		if seen[p.Path] {
			return fmt.Errorf("part %d: duplicate path %q", p.ID, p.Path)
		}
		seen[p.Path] = true
	}
	if len(parts) > 0 && parts[0].Path != "" {
		return errors.New("part 0 must use the series directory (empty path)")
	}
	return nil
}

// Parse decodes and validates a series definition.
func Parse(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", apperr.ErrInvalidSeries, err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", apperr.ErrInvalidSeries, err)
	}
	return def, nil
}

// Part is one resolved installment of a series.
type Part struct {
	ID     int             `json:"id"`
	Path   string          `json:"path"`
	PostID string          `json:"post_id"`
	Meta   models.Metadata `json:"meta"`
}

// Lookup returns the post with the given id regardless of its visibility.
type Lookup func(id string) (models.Post, bool)

// Resolve builds a navigator for the series defined in dir (relative to the
// content root). Part metadata is the part post's metadata merged onto part 0;
// a subtitle from the definition wins over the post's.
func Resolve(dir string, def Definition, lookup Lookup) *Navigator {
	dir = strings.Trim(path.Clean("/"+dir), "/")

	var base models.Metadata
	if p, ok := lookup(dir); ok {
		base = p.Meta
	}

	parts := make([]Part, len(def.Parts))
	for i, spec := range def.Parts {
		postID := dir
		if spec.Path != "" {
			postID = path.Join(dir, spec.Path)
		}

		meta := base
		if i > 0 {
			if p, ok := lookup(postID); ok {
				meta = merge(base, p.Meta)
			}
		}
		if spec.Subtitle != "" {
			meta.Subtitle = spec.Subtitle
		}
		if meta.Subtitle == "" {
			meta.Subtitle = "Part " + strconv.Itoa(spec.ID)
		}

		parts[i] = Part{ID: spec.ID, Path: spec.Path, PostID: postID, Meta: meta}
	}

	return &Navigator{
		dir:      dir,
		title:    def.Title,
		desc:     def.Description,
		boundary: def.LastPublishedPart,
		baseURL:  "/blog/" + dir,
		parts:    parts,
	}
}

func merge(base, over models.Metadata) models.Metadata {
	out := base
	if over.Date != "" {
		out.Date = over.Date
	}
	if over.Title != "" {
		out.Title = over.Title
	}
	if over.Subtitle != "" {
		out.Subtitle = over.Subtitle
	}
	if len(over.Tags) > 0 {
		out.Tags = over.Tags
	}
	if len(over.TagsExtra) > 0 {
		out.TagsExtra = over.TagsExtra
	}
	if over.Intro != "" {
		out.Intro = over.Intro
	}
	if over.Cover != "" {
		out.Cover = over.Cover
		out.CoverWidth = over.CoverWidth
		out.CoverHeight = over.CoverHeight
	}
	if over.Visibility != "" {
		out.Visibility = over.Visibility
	}
	return out
}

// Problem is an invalid series definition.
type Problem struct {
	Path string
	Err  error
}

func (p *Problem) Error() string { return fmt.Sprintf("series %s: %v", p.Path, p.Err) }

func (p *Problem) Unwrap() error { return p.Err }

// LoadAll finds every series definition under the provider root. Invalid
// definitions are reported as problems and skipped.
func LoadAll(ctx context.Context, provider storage.Provider, lookup Lookup) ([]*Navigator, []*Problem, error) {
	files, err := provider.List("", ".yaml")
	if err != nil {
		return nil, nil, fmt.Errorf("series: list: %w", err)
	}

	var navs []*Navigator
	var problems []*Problem
	for _, f := range files {
		if path.Base(f.Path) != FileName {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		data, err := provider.Read(f.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("series: read %s: %w", f.Path, err)
		}
		def, err := Parse(data)
		if err != nil {
			problems = append(problems, &Problem{Path: f.Path, Err: err})
			continue
		}
		nav := Resolve(path.Dir(f.Path), def, lookup)
		nav.checksum = checksum.Sum(data)
		navs = append(navs, nav)
	}
	return navs, problems, nil
}
