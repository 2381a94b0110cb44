package index

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/presswork/internal/apperr"
	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "presswork-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPost(id, checksum string, v models.Visibility, body string) models.Post {
	return models.Post{
		ID:       id,
		Path:     id + ".md",
		Checksum: checksum,
		Body:     body,
		Meta: models.Metadata{
			Title:      "Title " + id,
			Date:       "2023-01-01",
			Visibility: v,
			Tags:       []models.Tag{models.TagCSS},
		},
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`).Scan(&count); err != nil {
		t.Fatalf("posts table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := PostRow{
		ID:         "hello",
		Title:      "Hello World",
		Checksum:   "abc123",
		Visibility: models.VisibilityPublic,
		Tags:       []string{"css", "bem"},
		UpdatedAt:  time.Now(),
	}
	if err := db.UpsertPost(row, "This is a hello world post."); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}
	cs, err := db.GetChecksum("hello")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}

	got, err := db.GetPost("hello")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Visibility != models.VisibilityPublic || len(got.Tags) != 2 {
		t.Errorf("GetPost = %+v", got)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetPost("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeletePost(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(PostRow{ID: "del", Checksum: "x", Tags: []string{}, UpdatedAt: time.Now()}, "body")

	if err := db.DeletePost("del"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	cs, _ := db.GetChecksum("del")
	if cs != "" {
		t.Errorf("deleted post still has checksum %q", cs)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(PostRow{ID: "s", Title: "Search Me", Checksum: "1", Visibility: models.VisibilityPublic, Tags: []string{}, UpdatedAt: time.Now()}, "uniqueword appears here")

	results, err := db.Search("uniqueword", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "s" {
		t.Errorf("search results = %+v, want 1 hit for s", results)
	}
}

func TestSearch_VisibilityFilter(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPost(RowFromPost(testPost("pub", "1", models.VisibilityPublic, "")), "shared needle")
	_ = db.UpsertPost(RowFromPost(testPost("pri", "2", models.VisibilityPrivate, "")), "shared needle")

	results, err := db.Search("needle", 10, []models.Visibility{models.VisibilityPublic})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "pub" {
		t.Errorf("results = %+v, want only pub", results)
	}
}

func TestSync_ChecksumDriven(t *testing.T) {
	db := testDB(t)
	log := logger.Nop()

	posts := []models.Post{
		testPost("a", "1", models.VisibilityPublic, "alpha"),
		testPost("b", "1", models.VisibilityPublic, "bravo"),
	}
	ch, err := Sync(db, posts, log)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(ch.Created) != 2 || len(ch.Updated) != 0 || len(ch.Deleted) != 0 {
		t.Fatalf("first sync changes = %+v", ch)
	}

	ch, _ = Sync(db, posts, log)
	if !ch.Empty() {
		t.Errorf("unchanged sync reported %+v", ch)
	}

	posts = []models.Post{testPost("a", "2", models.VisibilityPublic, "alpha v2")}
	ch, _ = Sync(db, posts, log)
	if len(ch.Updated) != 1 || ch.Updated[0] != "a" {
		t.Errorf("updated = %v", ch.Updated)
	}
	if len(ch.Deleted) != 1 || ch.Deleted[0] != "b" {
		t.Errorf("deleted = %v", ch.Deleted)
	}
	if cs, _ := db.GetChecksum("b"); cs != "" {
		t.Error("stale post still indexed")
	}
}
