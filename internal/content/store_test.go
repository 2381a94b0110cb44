package content

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/presswork/internal/apperr"
	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/models"
	"github.com/starford/presswork/internal/testutil"
)

func TestPostID(t *testing.T) {
	cases := map[string]string{
		"hello.md":                     "hello",
		"css/history/index.md":         "css/history",
		"css/history/part1-origins.md": "css/history/part1-origins",
		"/leading.md":                  "leading",
		"index.md":                     "",
	}
	for in, want := range cases {
		if got := PostID(in); got != want {
			t.Errorf("PostID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoad_ParsesPosts(t *testing.T) {
	_, store := testutil.TestContent(t, map[string]string{
		"b.md":       testutil.Post("Bravo", "2021-02-01", "public", "css"),
		"a/index.md": testutil.Post("Alpha", "2021-01-01", "unlisted"),
	})

	snap, err := NewStore(store, logger.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", snap.Err())
	}
	if len(snap.Posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(snap.Posts))
	}
	// Lexical order of the provider.
	if snap.Posts[0].ID != "a" || snap.Posts[1].ID != "b" {
		t.Errorf("ids = %q, %q", snap.Posts[0].ID, snap.Posts[1].ID)
	}
	if snap.Posts[1].Meta.Tags[0] != models.TagCSS {
		t.Errorf("tags = %v", snap.Posts[1].Meta.Tags)
	}
	if snap.Posts[0].Checksum == "" {
		t.Error("checksum not set")
	}
}

func TestLoad_InvalidVisibilityBecomesPrivate(t *testing.T) {
	_, store := testutil.TestContent(t, map[string]string{
		"oops.md": testutil.Post("Oops", "2021-01-01", "secret"),
		"none.md": "---\ntitle: None\ndate: 2021-01-01\n---\nbody\n",
	})

	snap, err := NewStore(store, logger.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Problems) != 2 {
		t.Fatalf("problems = %d, want 2", len(snap.Problems))
	}
	for _, p := range snap.Posts {
		if p.Meta.Visibility != models.VisibilityPrivate {
			t.Errorf("%s visibility = %q, want private", p.ID, p.Meta.Visibility)
		}
	}
	var ae *AuthoringError
	if !errors.As(snap.Err(), &ae) {
		t.Fatal("expected AuthoringError in joined error")
	}
	if !errors.Is(ae, apperr.ErrInvalidMetadata) {
		t.Errorf("expected ErrInvalidMetadata, got %v", ae)
	}
}

func TestDecode_TitleFallback(t *testing.T) {
	post, problem := Decode("notes/my-first_post.md", []byte("---\ndate: 2021-01-01\nvisibility: public\n---\nno heading\n"))
	if problem == nil {
		t.Fatal("expected authoring error for missing title")
	}
	if post.Meta.Title != "My First Post" {
		t.Errorf("title = %q, want %q", post.Meta.Title, "My First Post")
	}

	post, _ = Decode("x.md", []byte("---\ndate: 2021-01-01\nvisibility: public\n---\n# From Heading\n"))
	if post.Meta.Title != "From Heading" {
		t.Errorf("title = %q, want %q", post.Meta.Title, "From Heading")
	}
}

func TestDecode_MalformedFrontmatter(t *testing.T) {
	post, problem := Decode("bad.md", []byte("---\ntitle: [unterminated\n---\nbody\n"))
	if problem == nil {
		t.Fatal("expected authoring error")
	}
	if post.Meta.Visibility != models.VisibilityPrivate {
		t.Errorf("visibility = %q, want private", post.Meta.Visibility)
	}
	if post.ID != "bad" {
		t.Errorf("id = %q", post.ID)
	}
}

func TestDecode_UnparseableDateIsReported(t *testing.T) {
	post, problem := Decode("d.md", []byte(testutil.Post("D", "someday", "public")))
	if problem == nil {
		t.Fatal("expected authoring error for bad date")
	}
	if post.Meta.Visibility != models.VisibilityPublic {
		t.Errorf("visibility = %q, want public", post.Meta.Visibility)
	}
	if !post.Meta.PublishedAt().IsZero() {
		t.Error("expected zero publication time")
	}
}

func TestLoad_DuplicateID(t *testing.T) {
	_, store := testutil.TestContent(t, map[string]string{
		"a.md":       testutil.Post("A1", "2021-01-01", "public"),
		"a/index.md": testutil.Post("A2", "2021-01-01", "public"),
	})
	snap, err := NewStore(store, logger.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Posts) != 1 || len(snap.Problems) != 1 {
		t.Fatalf("posts=%d problems=%d, want 1 and 1", len(snap.Posts), len(snap.Problems))
	}
}

func TestLoad_RootIndexIsReported(t *testing.T) {
	_, store := testutil.TestContent(t, map[string]string{
		"index.md": testutil.Post("Home", "2021-01-01", "public"),
		"a.md":     testutil.Post("A", "2021-01-01", "public"),
	})
	snap, err := NewStore(store, logger.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Posts) != 1 || snap.Posts[0].ID != "a" {
		t.Fatalf("posts = %+v, want only a", snap.Posts)
	}
	if len(snap.Problems) != 1 || snap.Problems[0].Path != "index.md" {
		t.Fatalf("problems = %v", snap.Problems)
	}
	if !errors.Is(snap.Problems[0], apperr.ErrInvalidMetadata) {
		t.Errorf("problem = %v, want ErrInvalidMetadata", snap.Problems[0])
	}
}
