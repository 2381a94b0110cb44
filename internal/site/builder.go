// Package site orchestrates a build: load content, classify it, resolve
// series, write feeds and refresh the search index.
package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/presswork/internal/blog"
	"github.com/starford/presswork/internal/checksum"
	"github.com/starford/presswork/internal/content"
	"github.com/starford/presswork/internal/feed"
	"github.com/starford/presswork/internal/index"
	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/models"
	"github.com/starford/presswork/internal/series"
	"github.com/starford/presswork/internal/storage"
)

// ErrStrict is returned when strict mode rejects a build with authoring errors.
var ErrStrict = errors.New("site: authoring errors in strict mode")

// Options configure what a build produces.
type Options struct {
	Development bool
	Strict      bool
	PageSize    int
	Tags        models.Dictionary
}

// Option configures a Builder.
type Option func(*Builder)

// WithFeed enables feed generation.
func WithFeed(g *feed.Generator) Option {
	return func(b *Builder) { b.feed = g }
}

// WithIndex enables search index synchronisation.
func WithIndex(db index.PostIndex) Option {
	return func(b *Builder) { b.index = db }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// Builder produces immutable snapshots of the site.
type Builder struct {
	provider storage.Provider
	opts     Options
	feed     *feed.Generator
	index    index.PostIndex
	logger   logger.Logger
}

// NewBuilder creates a Builder reading from provider.
func NewBuilder(provider storage.Provider, opts Options, options ...Option) *Builder {
	b := &Builder{provider: provider, opts: opts, logger: logger.Nop()}
	for _, o := range options {
		o(b)
	}
	return b
}

// Snapshot is the result of one build. It is never mutated after Build
// returns.
type Snapshot struct {
	Blog     *blog.Blog
	Series   []*series.Navigator
	Problems []error
	Changes  index.Changes
	Feeds    []string
	BuiltAt  time.Time
	Version  string
}

// FindSeries returns the series defined in dir.
func (s *Snapshot) FindSeries(dir string) (*series.Navigator, bool) {
	for _, n := range s.Series {
		if n.Dir() == dir {
			return n, true
		}
	}
	return nil, false
}

// SeriesOf returns the series and part a post belongs to.
func (s *Snapshot) SeriesOf(postID string) (*series.Navigator, series.Part, bool) {
	for _, n := range s.Series {
		if p, ok := n.Contains(postID); ok {
			return n, p, true
		}
	}
	return nil, series.Part{}, false
}

// Build runs one full build.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	loaded, err := content.NewStore(b.provider, b.logger).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("site: load: %w", err)
	}

	byID := make(map[string]models.Post, len(loaded.Posts))
	for _, p := range loaded.Posts {
		byID[p.ID] = p
	}
	navs, seriesProblems, err := series.LoadAll(ctx, b.provider, func(id string) (models.Post, bool) {
		p, ok := byID[id]
		return p, ok
	})
	if err != nil {
		return nil, fmt.Errorf("site: series: %w", err)
	}

	var problems []error
	for _, p := range loaded.Problems {
		problems = append(problems, p)
	}
	for _, p := range seriesProblems {
		b.logger.Warn("site: invalid series", logger.String("path", p.Path), logger.Error(p.Err))
		problems = append(problems, p)
	}
	if b.opts.Strict && len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrStrict, errors.Join(problems...))
	}

	snap := &Snapshot{
		Blog: blog.New(loaded.Posts, blog.Options{
			Development: b.opts.Development,
			PageSize:    b.opts.PageSize,
			Tags:        b.opts.Tags,
		}),
		Series:   navs,
		Problems: problems,
		BuiltAt:  start,
		Version:  version(loaded.Posts, navs),
	}

	// The snapshot is immutable from here on; derived outputs run in parallel.
	g, gctx := errgroup.WithContext(ctx)
	if b.feed != nil {
		g.Go(func() error {
			written, err := b.feed.Generate(gctx, snap.Blog.FeedPosts(), snap.Blog.Tags())
			snap.Feeds = written
			return err
		})
	}
	if b.index != nil {
		g.Go(func() error {
			ch, err := index.Sync(b.index, snap.Blog.AllPosts(), b.logger)
			snap.Changes = ch
			if err != nil {
				return fmt.Errorf("site: index: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.Info("site: built",
		logger.Int("posts", len(loaded.Posts)),
		logger.Int("published", len(snap.Blog.PublishedPosts())),
		logger.Int("series", len(navs)),
		logger.Int("problems", len(problems)),
		logger.Duration("took", time.Since(start)))
	return snap, nil
}

// version digests every post and series definition; it changes whenever
// any of them does.
func version(posts []models.Post, navs []*series.Navigator) string {
	sums := make([]string, 0, 2*(len(posts)+len(navs)))
	for _, p := range posts {
		sums = append(sums, p.ID, p.Checksum)
	}
	for _, n := range navs {
		sums = append(sums, n.Dir()+"/"+series.FileName, n.Checksum())
	}
	return checksum.Combine(sums...)
}
