package internal

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/presswork/internal/blog"
	"github.com/starford/presswork/internal/feed"
	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/models"
	"github.com/starford/presswork/internal/site"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Blog    BlogConfig        `yaml:"blog"`
	Site    SiteConfig        `yaml:"site"`
	Feed    FeedConfig        `yaml:"feed"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Tags    TagsConfig        `yaml:"tags"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Blog.Validate(); err != nil {
		return fmt.Errorf("blog: %w", err)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if err := c.Tags.Validate(); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return c.Auth.Validate()
}

// FeedConfig returns the feed generator configuration.
func (c *Config) FeedConfig() feed.Config {
	formats := make([]feed.Format, 0, len(c.Feed.Formats))
	for _, f := range c.Feed.Formats {
		formats = append(formats, feed.Format(f))
	}
	return feed.Config{
		Origin:             c.Site.Origin,
		Title:              c.Site.Title,
		Description:        c.Site.Description,
		Language:           c.Site.Language,
		AuthorName:         c.Site.Author.Name,
		AuthorEmail:        c.Site.Author.Email,
		CopyrightStartYear: c.Site.CopyrightStartYear,
		OutputDir:          c.Feed.OutputDir,
		Formats:            formats,
		Minify:             c.Feed.Minify,
		FullContent:        c.Feed.FullContent,
	}
}

// SiteOptions returns the build options.
func (c *Config) SiteOptions() site.Options {
	return site.Options{
		Development: c.Content.Development,
		Strict:      c.Content.Strict,
		PageSize:    c.Blog.PageSize,
		Tags:        c.Tags.Dictionary(),
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  string     `yaml:"log_level"`
	PrettyLog bool       `yaml:"pretty_log"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// ContentConfig points at the content tree and controls how authoring
// errors are treated.
type ContentConfig struct {
	Path        string        `yaml:"path"`
	Strict      bool          `yaml:"strict"`
	Development bool          `yaml:"development"`
	Debounce    time.Duration `yaml:"debounce"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// BlogConfig holds listing configuration.
type BlogConfig struct {
	PageSize int `yaml:"page_size"`
}

// Validate validates the blog configuration.
func (c *BlogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
	)
}

// AuthorConfig identifies the site author.
type AuthorConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// SiteConfig holds the public identity of the site.
type SiteConfig struct {
	Origin             string       `yaml:"origin"`
	Title              string       `yaml:"title"`
	Description        string       `yaml:"description"`
	Language           string       `yaml:"language"`
	Author             AuthorConfig `yaml:"author"`
	CopyrightStartYear int          `yaml:"copyright_start_year"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Origin, validation.Required, is.URL),
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.CopyrightStartYear, validation.Min(0)),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Author,
		validation.Field(&c.Author.Name, validation.Required),
		validation.Field(&c.Author.Email, is.EmailFormat),
	)
}

// FeedConfig holds feed output configuration.
type FeedConfig struct {
	OutputDir   string   `yaml:"output_dir"`
	Formats     []string `yaml:"formats"`
	Minify      bool     `yaml:"minify"`
	FullContent bool     `yaml:"full_content"`
}

// Validate validates the feed configuration.
func (c *FeedConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.Formats, validation.Required, validation.Each(
			validation.In(string(feed.FormatAtom), string(feed.FormatRSS), string(feed.FormatJSON)),
		)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the preview API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local preview.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TagsConfig overrides or extends the built-in tag dictionary.
type TagsConfig map[models.Tag]models.TagDetails

// Validate checks every configured tag entry.
func (c TagsConfig) Validate() error {
	for tag, td := range c {
		err := validation.ValidateStruct(&td,
			validation.Field(&td.Name, validation.Required),
			validation.Field(&td.Color, validation.Required),
			validation.Field(&td.Contrast, validation.Required, validation.In(models.ContrastLight, models.ContrastDark)),
		)
		if err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
	}
	return nil
}

// Dictionary merges the configured entries over the built-in dictionary.
func (c TagsConfig) Dictionary() models.Dictionary {
	dict := models.DefaultDictionary()
	for tag, td := range c {
		dict[tag] = td
	}
	return dict
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: "info",
			HTTP: HTTPConfig{
				Port:            8080,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		Content: ContentConfig{
			Path:     "./content",
			Debounce: site.DefaultDebounce,
		},
		Blog: BlogConfig{
			PageSize: blog.DefaultPageSize,
		},
		Site: SiteConfig{
			Origin:      "https://andreipfeiffer.dev",
			Title:       "Andrei Pfeiffer",
			Description: "Articles about CSS, JavaScript, TypeScript, React, UI development, and testing.",
			Language:    "en",
			Author: AuthorConfig{
				Name: "Andrei Pfeiffer",
			},
			CopyrightStartYear: 2020,
		},
		Feed: FeedConfig{
			OutputDir: "./public/rss",
			Formats:   []string{string(feed.FormatAtom)},
		},
		SQLite: SQLiteConfig{
			Path: "./presswork.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
