package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/presswork/internal/feed"
	"github.com/starford/presswork/internal/models"
	pkgconfig "github.com/starford/presswork/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfig_InvalidOrigin(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Site.Origin = "not a url"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected origin validation error")
	}
	if !strings.HasPrefix(err.Error(), "site:") {
		t.Errorf("error = %v, want site: prefix", err)
	}
}

func TestConfig_PageSizeMustBePositive(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Blog.PageSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("page size 0 should fail")
	}
}

func TestConfig_UnknownFeedFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Feed.Formats = []string{"atom", "gopher"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown feed format should fail")
	}
}

func TestConfig_UnknownLogLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogLevel = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown log level should fail")
	}
}

func TestTagsConfig_InvalidContrast(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Tags = TagsConfig{
		"go": {Name: "Go", Color: "#00add8", Contrast: "medium"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid contrast should fail")
	}
	if !strings.Contains(err.Error(), "go:") {
		t.Errorf("error should name the tag: %v", err)
	}
}

func TestTagsConfig_DictionaryMergesOverDefaults(t *testing.T) {
	tags := TagsConfig{
		"go":          {Name: "Go", Color: "#00add8", Contrast: models.ContrastDark},
		models.TagCSS: {Name: "Cascading Style Sheets", Color: "#000000", Contrast: models.ContrastLight},
	}
	dict := tags.Dictionary()

	if td, ok := dict.Lookup("go"); !ok || td.Name != "Go" {
		t.Errorf("go entry = %+v, %v", td, ok)
	}
	if td, _ := dict.Lookup(models.TagCSS); td.Name != "Cascading Style Sheets" {
		t.Errorf("css override not applied: %+v", td)
	}
	for _, tag := range models.KnownTags {
		if !dict.Has(tag) {
			t.Errorf("default tag %q missing", tag)
		}
	}
}

func TestConfig_FeedConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Feed.Formats = []string{"atom", "json"}
	cfg.Site.Author.Email = "me@example.com"

	fc := cfg.FeedConfig()
	if fc.Origin != cfg.Site.Origin || fc.AuthorName != cfg.Site.Author.Name || fc.AuthorEmail != "me@example.com" {
		t.Errorf("identity not copied: %+v", fc)
	}
	if len(fc.Formats) != 2 || fc.Formats[0] != feed.FormatAtom || fc.Formats[1] != feed.FormatJSON {
		t.Errorf("formats = %v", fc.Formats)
	}
	if err := fc.Validate(); err != nil {
		t.Errorf("derived feed config invalid: %v", err)
	}
}

func TestConfig_SiteOptions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Content.Strict = true
	cfg.Content.Development = true
	cfg.Blog.PageSize = 10

	opts := cfg.SiteOptions()
	if !opts.Strict || !opts.Development || opts.PageSize != 10 {
		t.Errorf("options = %+v", opts)
	}
	if !opts.Tags.Has(models.TagCSS) {
		t.Error("options should carry the default dictionary")
	}
}

func TestConfig_LoadYAMLWithEnv(t *testing.T) {
	t.Setenv("PRESSWORK_TEST_ORIGIN", "https://blog.example.com")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  log_level: debug
content:
  path: ./posts
  strict: true
blog:
  page_size: 5
site:
  origin: ${PRESSWORK_TEST_ORIGIN}
  title: Example
  author:
    name: Jane Doe
feed:
  formats: [atom, rss]
tags:
  go:
    name: Go
    color: "#00add8"
    contrast: dark
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Site.Origin != "https://blog.example.com" {
		t.Errorf("origin = %q", cfg.Site.Origin)
	}
	if cfg.Content.Path != "./posts" || !cfg.Content.Strict || cfg.Blog.PageSize != 5 {
		t.Errorf("content/blog = %+v %+v", cfg.Content, cfg.Blog)
	}
	if cfg.App.HTTP.Port != 8080 {
		t.Errorf("unset port should keep default, got %d", cfg.App.HTTP.Port)
	}
	if cfg.Feed.OutputDir != "./public/rss" {
		t.Errorf("unset output dir should keep default, got %q", cfg.Feed.OutputDir)
	}
	if !cfg.SiteOptions().Tags.Has("go") {
		t.Error("configured tag missing from dictionary")
	}
}
