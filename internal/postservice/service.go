// Package postservice answers read queries against the current site snapshot
// and the search index.
package postservice

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/starford/presswork/internal/apperr"
	"github.com/starford/presswork/internal/blog"
	"github.com/starford/presswork/internal/checksum"
	"github.com/starford/presswork/internal/index"
	"github.com/starford/presswork/internal/models"
	"github.com/starford/presswork/internal/render"
	"github.com/starford/presswork/internal/series"
	"github.com/starford/presswork/internal/site"
)

// PostSummary is a lightweight post representation used in listings.
type PostSummary struct {
	ID         string            `json:"id"`
	URL        string            `json:"url"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle,omitempty"`
	Date       string            `json:"date"`
	Tags       []models.Tag      `json:"tags"`
	TagsExtra  []string          `json:"tags_extra"`
	Intro      string            `json:"intro"`
	Cover      string            `json:"cover,omitempty"`
	Visibility models.Visibility `json:"visibility"`
}

// SeriesRef places a post inside its series.
type SeriesRef struct {
	Dir   string            `json:"dir"`
	Title string            `json:"title"`
	Part  int               `json:"part"`
	TOC   []series.TOCEntry `json:"toc"`
}

// PostDetail is the full representation of a post.
type PostDetail struct {
	PostSummary
	Path     string     `json:"path"`
	Keywords []string   `json:"keywords"`
	Body     string     `json:"body"`
	HTML     string     `json:"html"`
	Checksum string     `json:"checksum"`
	Version  string     `json:"version"`
	Series   *SeriesRef `json:"series,omitempty"`
}

// Page is one listing page.
type Page struct {
	Number   int           `json:"number"`
	Total    int           `json:"total"`
	Path     string        `json:"path"`
	PrevPath string        `json:"prev_path,omitempty"`
	NextPath string        `json:"next_path,omitempty"`
	Posts    []PostSummary `json:"posts"`
	Version  string        `json:"version"`
}

// TagSummary is one tag with its display record and usage count.
type TagSummary struct {
	Tag     models.Tag        `json:"tag"`
	Details models.TagDetails `json:"details"`
	Count   int               `json:"count"`
}

// TagPage is the listing of one tag.
type TagPage struct {
	Tag     string             `json:"tag"`
	Details *models.TagDetails `json:"details,omitempty"`
	Posts   []PostSummary      `json:"posts"`
}

// SeriesSummary describes one series.
type SeriesSummary struct {
	Dir         string `json:"dir"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Boundary    int    `json:"last_published_part"`
	Parts       int    `json:"parts"`
}

// SeriesTOC is the table of contents of one series.
type SeriesTOC struct {
	SeriesSummary
	Entries []series.TOCEntry `json:"entries"`
}

// SnapshotSource provides the current site snapshot.
type SnapshotSource interface {
	Snapshot() *site.Snapshot
}

// Service coordinates snapshot and index reads.
type Service struct {
	src      SnapshotSource
	db       index.PostIndex
	renderer *render.Markdown
}

// NewService creates a new post service. db may be nil, in which case search
// scans the snapshot.
func NewService(src SnapshotSource, db index.PostIndex) *Service {
	return &Service{src: src, db: db, renderer: render.NewMarkdown()}
}

func (s *Service) snapshot() (*site.Snapshot, error) {
	snap := s.src.Snapshot()
	if snap == nil {
		return nil, apperr.ErrNotReady
	}
	return snap, nil
}

// ListPage returns one page of the main listing. Out of range pages are empty.
func (s *Service) ListPage(_ context.Context, page int) (*Page, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	info := snap.Blog.Page(page)
	out := &Page{
		Number:  info.Number,
		Total:   info.Total,
		Path:    blog.PagePath(info.Number),
		Posts:   summaries(info.Posts),
		Version: snap.Version,
	}
	if info.HasPrev {
		out.PrevPath = blog.PagePath(info.PrevPage)
	}
	if info.HasNext {
		out.NextPath = blog.PagePath(info.NextPage)
	}
	return out, nil
}

// Archive returns archived posts, newest first.
func (s *Service) Archive(_ context.Context) ([]PostSummary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return summaries(snap.Blog.ArchivedPosts()), nil
}

// GetPost returns a post that can be opened directly.
func (s *Service) GetPost(_ context.Context, id string) (*PostDetail, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	p, err := snap.Blog.Post(strings.Trim(id, "/"))
	if err != nil {
		return nil, err
	}
	html, err := s.renderer.HTML(p.Body)
	if err != nil {
		return nil, fmt.Errorf("postservice: render %s: %w", p.ID, err)
	}

	d := &PostDetail{
		PostSummary: summary(p),
		Path:        p.Path,
		Keywords:    nonNilSlice(p.Meta.Keywords(snap.Blog.Tags())),
		Body:        p.Body,
		HTML:        html,
		Checksum:    p.Checksum,
		Version:     p.Checksum,
	}
	if nav, part, ok := snap.SeriesOf(p.ID); ok {
		d.Series = &SeriesRef{Dir: nav.Dir(), Title: nav.Title(), Part: part.ID, TOC: nav.TOC(part.ID)}
		// The TOC depends on series.yaml and on the other parts.
		d.Version = checksum.Combine(p.Checksum, snap.Version)
	}
	return d, nil
}

// Tags returns the tags used by published posts with their usage counts.
func (s *Service) Tags(_ context.Context) ([]TagSummary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	dict := snap.Blog.Tags()
	tags := snap.Blog.AllTags()
	out := make([]TagSummary, 0, len(tags))
	for _, t := range tags {
		td, _ := dict.Lookup(t)
		out = append(out, TagSummary{Tag: t, Details: td, Count: len(snap.Blog.PostsByTag(string(t)))})
	}
	return out, nil
}

// Tag returns the published posts carrying tag. Unknown tags yield an empty
// listing.
func (s *Service) Tag(_ context.Context, tag string) (*TagPage, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := &TagPage{Tag: tag, Posts: summaries(snap.Blog.PostsByTag(tag))}
	if id, td, ok := snap.Blog.TagDetails(tag); ok {
		out.Tag = string(id)
		out.Details = &td
	}
	return out, nil
}

// SeriesList returns every series ordered by directory.
func (s *Service) SeriesList(_ context.Context) ([]SeriesSummary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]SeriesSummary, 0, len(snap.Series))
	for _, n := range snap.Series {
		out = append(out, seriesSummary(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dir < out[j].Dir })
	return out, nil
}

// SeriesTOC returns the table of contents of the series in dir with current
// marked. A current value outside the series marks nothing.
func (s *Service) SeriesTOC(_ context.Context, dir string, current int) (*SeriesTOC, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	nav, ok := snap.FindSeries(strings.Trim(dir, "/"))
	if !ok {
		return nil, fmt.Errorf("postservice: series %q: %w", dir, apperr.ErrNotFound)
	}
	return &SeriesTOC{SeriesSummary: seriesSummary(nav), Entries: nav.TOC(current)}, nil
}

// Search finds listed posts matching query.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	visible := []models.Visibility{models.VisibilityPublic}
	if snap.Blog.Options().Development {
		visible = append(visible, models.VisibilityDraft)
	}
	if s.db != nil {
		res, err := s.db.Search(query, limit, visible)
		if err != nil {
			return nil, err
		}
		return nonNilSlice(res), nil
	}
	return scan(snap.Blog.PublishedPosts(), query, limit), nil
}

// scan is the index-less search over listed posts.
func scan(posts []models.Post, query string, limit int) []index.SearchResult {
	q := strings.ToLower(query)
	out := []index.SearchResult{}
	for _, p := range posts {
		if len(out) == limit {
			break
		}
		hay := strings.ToLower(p.Meta.FullTitle() + "\n" + p.Meta.Intro + "\n" + p.Body)
		if !strings.Contains(hay, q) {
			continue
		}
		out = append(out, index.SearchResult{
			ID:         p.ID,
			Title:      p.Meta.FullTitle(),
			Date:       p.Meta.Date,
			Visibility: p.Meta.Visibility,
			Snippet:    render.Excerpt(p.Body, 200),
		})
	}
	return out
}

func seriesSummary(n *series.Navigator) SeriesSummary {
	return SeriesSummary{
		Dir:         n.Dir(),
		Title:       n.Title(),
		Description: n.Description(),
		Boundary:    n.Boundary(),
		Parts:       len(n.Parts()),
	}
}

func summary(p models.Post) PostSummary {
	return PostSummary{
		ID:         p.ID,
		URL:        "/blog/" + p.ID,
		Title:      p.Meta.Title,
		Subtitle:   p.Meta.Subtitle,
		Date:       p.Meta.Date,
		Tags:       nonNilSlice(p.Meta.Tags),
		TagsExtra:  nonNilSlice(p.Meta.TagsExtra),
		Intro:      p.Meta.Intro,
		Cover:      p.Meta.Cover,
		Visibility: p.Meta.Visibility,
	}
}

func summaries(posts []models.Post) []PostSummary {
	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = summary(p)
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
