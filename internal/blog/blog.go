// Package blog derives the public views of a post collection: the listing,
// the archive, the feed selection, tag views and pages.
package blog

import (
	"fmt"

	"github.com/starford/presswork/internal/apperr"
	"github.com/starford/presswork/internal/models"
)

// DefaultPageSize is the number of posts per listing page.
const DefaultPageSize = 25

// Options configure a Blog.
type Options struct {
	// Development makes drafts listed and reachable.
	Development bool
	// PageSize is the listing page size; values below 1 use DefaultPageSize.
	PageSize int
	// Tags is the tag dictionary; nil uses models.DefaultDictionary.
	Tags models.Dictionary
}

// Blog is an immutable classification of one post collection.
type Blog struct {
	opts      Options
	all       []models.Post
	byID      map[string]int
	published []models.Post
	archived  []models.Post
	feed      []models.Post
}

// New classifies posts. The input slice is copied and never modified.
func New(posts []models.Post, opts Options) *Blog {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Tags == nil {
		opts.Tags = models.DefaultDictionary()
	}

	all := make([]models.Post, len(posts))
	copy(all, posts)

	b := &Blog{opts: opts, all: all, byID: make(map[string]int, len(all))}
	for i, p := range all {
		b.byID[p.ID] = i

		v := p.Meta.Visibility
		if v.Listed(opts.Development) {
			b.published = append(b.published, p)
		}
		if v == models.VisibilityArchived {
			b.archived = append(b.archived, p)
		}
		if v.InFeed() {
			b.feed = append(b.feed, p)
		}
	}

	Sort(b.published)
	Sort(b.archived)
	Sort(b.feed)
	return b
}

// Options returns the options the blog was built with.
func (b *Blog) Options() Options { return b.opts }

// Tags returns the tag dictionary in use.
func (b *Blog) Tags() models.Dictionary { return b.opts.Tags }

// PublishedPosts returns public posts, plus drafts in development, newest first.
func (b *Blog) PublishedPosts() []models.Post { return clone(b.published) }

// ArchivedPosts returns archived posts, newest first.
func (b *Blog) ArchivedPosts() []models.Post { return clone(b.archived) }

// FeedPosts returns public and unlisted posts, newest first.
func (b *Blog) FeedPosts() []models.Post { return clone(b.feed) }

// AllPosts returns every post in enumeration order regardless of visibility.
func (b *Blog) AllPosts() []models.Post { return clone(b.all) }

// Post returns the post with the given id if it can be opened directly.
func (b *Blog) Post(id string) (models.Post, error) {
	i, ok := b.byID[id]
	if !ok {
		return models.Post{}, fmt.Errorf("blog: post %q: %w", id, apperr.ErrNotFound)
	}
	p := b.all[i]
	if !p.Meta.Visibility.Linkable(b.opts.Development) {
		return models.Post{}, fmt.Errorf("blog: post %q: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

func clone(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)
	return out
}
