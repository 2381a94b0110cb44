// Package feed generates syndication documents for feed-eligible posts.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
	mxml "github.com/tdewolff/minify/v2/xml"

	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/models"
	"github.com/starford/presswork/internal/render"
	"github.com/starford/presswork/internal/storage"
)

// excerptLength bounds the description generated for posts without an intro.
const excerptLength = 280

// unknownDate stands in for unparseable post dates, which also sort last.
var unknownDate = time.Unix(0, 0).UTC()

// atomFeed carries xml:lang, which feeds.AtomFeed lacks.
type atomFeed struct {
	*feeds.AtomFeed
	Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
}

func (a *atomFeed) FeedXml() interface{} { return a }

// jsonFeed carries the JSON Feed 1.1 language field.
type jsonFeed struct {
	*feeds.JSONFeed
	Language string `json:"language,omitempty"`
}

const jsonFeedVersion = "https://jsonfeed.org/version/1.1"

// Renderer turns a post body into HTML.
type Renderer interface {
	HTML(body string) (string, error)
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the build time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRenderer sets the renderer used for full-content entries.
func WithRenderer(r Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// Generator builds and writes feed documents.
type Generator struct {
	cfg      Config
	now      func() time.Time
	renderer Renderer
	logger   logger.Logger
	minifier *minify.M
}

// New creates a Generator. An empty format list selects Atom.
func New(cfg Config, opts ...Option) *Generator {
	if len(cfg.Formats) == 0 {
		cfg.Formats = []Format{FormatAtom}
	}
	g := &Generator{
		cfg:    cfg,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	if cfg.FullContent && g.renderer == nil {
		g.renderer = render.NewMarkdown()
	}
	if cfg.Minify {
		g.minifier = minify.New()
		g.minifier.AddFunc("text/xml", mxml.Minify)
		g.minifier.AddFunc("application/json", mjson.Minify)
	}
	return g
}

// ID returns the stable identifier of the feed, derived from the origin.
func (g *Generator) ID() string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(g.cfg.origin())).String()
}

// PostURL returns the absolute URL of a post.
func (g *Generator) PostURL(id string) string {
	return g.cfg.origin() + "/blog/" + id
}

// Build assembles the feed model. posts must already be the feed selection in
// display order.
func (g *Generator) Build(posts []models.Post) (*feeds.Feed, error) {
	now := g.now()
	author := &feeds.Author{Name: g.cfg.AuthorName, Email: g.cfg.AuthorEmail}

	f := &feeds.Feed{
		Id:          g.ID(),
		Title:       g.cfg.Title,
		Link:        &feeds.Link{Href: g.cfg.origin() + "/blog"},
		Description: g.cfg.Description,
		Author:      author,
		Updated:     now,
		Copyright:   g.cfg.Copyright(now.Year()),
		Items:       make([]*feeds.Item, 0, len(posts)),
	}

	for _, p := range posts {
		item, err := g.item(p, author)
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, item)
	}
	return f, nil
}

func (g *Generator) item(p models.Post, author *feeds.Author) (*feeds.Item, error) {
	link := g.PostURL(p.ID)
	published := p.Meta.PublishedAt()
	if published.IsZero() {
		g.logger.Warn("feed: unparseable date, using epoch",
			logger.String("post_id", p.ID), logger.String("date", p.Meta.Date))
		published = unknownDate
	}

	desc := p.Meta.Intro
	if desc == "" {
		desc = render.Excerpt(p.Body, excerptLength)
	}

	item := &feeds.Item{
		Id:          link,
		Title:       p.Meta.FullTitle(),
		Link:        &feeds.Link{Href: link},
		Description: desc,
		Author:      author,
		Created:     published,
		Updated:     published,
	}

	if p.Meta.Cover != "" {
		item.Enclosure = &feeds.Enclosure{
			Url:    g.absolute(p.ID, p.Meta.Cover),
			Length: "0",
			Type:   coverType(p.Meta.Cover),
		}
	}

	if g.cfg.FullContent {
		html, err := g.renderer.HTML(p.Body)
		if err != nil {
			return nil, fmt.Errorf("feed: render %s: %w", p.ID, err)
		}
		item.Content = html
	}
	return item, nil
}

// absolute resolves a cover reference against the post URL.
func (g *Generator) absolute(id, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "/") {
		return g.cfg.origin() + ref
	}
	return g.cfg.origin() + path.Join("/blog", id, ref)
}

func coverType(ref string) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(ref))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Encode serializes f in the given format.
func (g *Generator) Encode(f *feeds.Feed, format Format, keywords func(i int) []string) ([]byte, error) {
	var (
		out       string
		err       error
		mediaType = "text/xml"
	)
	switch format {
	case FormatAtom:
		atom := (&feeds.Atom{Feed: f}).AtomFeed()
		atom.Id = g.ID()
		out, err = feeds.ToXML(&atomFeed{AtomFeed: atom, Lang: g.cfg.Language})
	case FormatRSS:
		rss := (&feeds.Rss{Feed: f}).RssFeed()
		rss.Language = g.cfg.Language
		if keywords != nil {
			for i, it := range rss.Items {
				it.Category = strings.Join(keywords(i), ", ")
			}
		}
		out, err = feeds.ToXML(rss)
	case FormatJSON:
		mediaType = "application/json"
		jf := (&feeds.JSON{Feed: f}).JSONFeed()
		jf.Version = jsonFeedVersion
		var raw []byte
		raw, err = json.MarshalIndent(jsonFeed{JSONFeed: jf, Language: g.cfg.Language}, "", "  ")
		out = string(raw)
	default:
		return nil, fmt.Errorf("feed: unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("feed: encode %s: %w", format, err)
	}

	data := []byte(out)
	if g.minifier != nil {
		data, err = g.minifier.Bytes(mediaType, data)
		if err != nil {
			return nil, fmt.Errorf("feed: minify %s: %w", format, err)
		}
	}
	return data, nil
}

// Generate writes one document per configured format into the output
// directory and returns the written paths.
func (g *Generator) Generate(ctx context.Context, posts []models.Post, dict models.Dictionary) ([]string, error) {
	f, err := g.Build(posts)
	if err != nil {
		return nil, err
	}
	keywords := func(i int) []string { return posts[i].Meta.Keywords(dict) }

	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("feed: create output dir: %w", err)
	}
	out, err := storage.NewFS(g.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}

	written := make([]string, 0, len(g.cfg.Formats))
	for _, format := range g.cfg.Formats {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		data, err := g.Encode(f, format, keywords)
		if err != nil {
			return written, err
		}
		if err := out.Write(format.FileName(), data); err != nil {
			return written, fmt.Errorf("feed: write %s: %w", format, err)
		}
		p := filepath.Join(out.Root(), format.FileName())
		written = append(written, p)
		g.logger.Info("feed: written",
			logger.String("format", string(format)),
			logger.String("path", p),
			logger.Int("entries", len(f.Items)))
	}
	return written, nil
}
