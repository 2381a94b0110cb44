package blog

import (
	"strings"

	"github.com/starford/presswork/internal/models"
)

// AllTags returns the distinct dictionary tags used by published posts, in
// the order they are first encountered.
func (b *Blog) AllTags() []models.Tag {
	seen := make(map[models.Tag]bool)
	var out []models.Tag
	for _, p := range b.published {
		for _, t := range p.Meta.Tags {
			if seen[t] || !b.opts.Tags.Has(t) {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// PostsByTag returns the published posts carrying tag, compared without
// regard to case. Free-text extra tags are not considered.
func (b *Blog) PostsByTag(tag string) []models.Post {
	tag = strings.TrimSpace(tag)
	out := []models.Post{}
	if tag == "" {
		return out
	}
	for _, p := range b.published {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// TagDetails resolves tag case-insensitively against the dictionary.
func (b *Blog) TagDetails(tag string) (models.Tag, models.TagDetails, bool) {
	id, ok := b.opts.Tags.Resolve(strings.TrimSpace(tag))
	if !ok {
		return "", models.TagDetails{}, false
	}
	td, _ := b.opts.Tags.Lookup(id)
	return id, td, true
}
