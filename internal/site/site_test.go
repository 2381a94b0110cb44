package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/presswork/internal/feed"
	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/testutil"
)

const seriesYAML = `title: Scalable CSS
last_published_part: 1
parts:
  - { id: 0, path: "", subtitle: Introduction }
  - { id: 1, path: part1-issues }
  - { id: 2, path: part2-practices, subtitle: "Part 2: Good practices" }
`

func testFiles() map[string]string {
	return map[string]string{
		"hello.md":                           testutil.Post("Hello", "2023-01-01", "public", "css"),
		"hidden.md":                          testutil.Post("Hidden", "2023-06-01", "unlisted"),
		"wip.md":                             testutil.Post("Wip", "2023-12-01", "draft"),
		"old.md":                             testutil.Post("Old", "2019-01-01", "archived"),
		"scalable-css/series.yaml":           seriesYAML,
		"scalable-css/index.md":              testutil.Post("Scalable CSS", "2021-01-01", "public", "css"),
		"scalable-css/part1-issues/index.md": testutil.Post("Scalable CSS", "2021-02-01", "public", "css"),
	}
}

func TestBuild_Snapshot(t *testing.T) {
	_, store := testutil.TestContent(t, testFiles())
	out := filepath.Join(t.TempDir(), "rss")
	gen := feed.New(feed.Config{
		Origin: "https://example.dev", Title: "Blog", AuthorName: "Me", OutputDir: out,
	})
	db := testutil.TestDB(t)

	b := NewBuilder(store, Options{PageSize: 2}, WithFeed(gen), WithIndex(db), WithLogger(logger.Nop()))
	snap, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := len(snap.Blog.PublishedPosts()); got != 3 {
		t.Errorf("published = %d, want 3", got)
	}
	if snap.Blog.TotalPages() != 2 {
		t.Errorf("TotalPages = %d, want 2", snap.Blog.TotalPages())
	}
	if len(snap.Problems) != 0 {
		t.Errorf("problems = %v", snap.Problems)
	}
	if len(snap.Feeds) != 1 {
		t.Fatalf("feeds = %v", snap.Feeds)
	}
	if _, err := os.Stat(filepath.Join(out, "atom.xml")); err != nil {
		t.Errorf("atom.xml not written: %v", err)
	}
	if len(snap.Changes.Created) != 6 {
		t.Errorf("indexed = %v, want 6 posts", snap.Changes.Created)
	}

	nav, ok := snap.FindSeries("scalable-css")
	if !ok {
		t.Fatal("series not loaded")
	}
	if l, _ := nav.Link(1); l.Href != "/blog/scalable-css/part1-issues" {
		t.Errorf("part 1 href = %q", l.Href)
	}
	if _, part, ok := snap.SeriesOf("scalable-css/part1-issues"); !ok || part.ID != 1 {
		t.Errorf("SeriesOf = %+v, %v", part, ok)
	}
}

func TestBuild_StrictRejectsAuthoringErrors(t *testing.T) {
	files := testFiles()
	files["broken.md"] = testutil.Post("Broken", "2023-01-01", "sekret")
	_, store := testutil.TestContent(t, files)

	if _, err := NewBuilder(store, Options{}).Build(context.Background()); err != nil {
		t.Fatalf("lenient build failed: %v", err)
	}
	_, err := NewBuilder(store, Options{Strict: true}).Build(context.Background())
	if !errors.Is(err, ErrStrict) {
		t.Fatalf("strict build err = %v, want ErrStrict", err)
	}
}

func TestBuild_FeedWriteFailure(t *testing.T) {
	_, store := testutil.TestContent(t, testFiles())
	blocker := filepath.Join(t.TempDir(), "rss")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	gen := feed.New(feed.Config{Origin: "https://example.dev", Title: "Blog", AuthorName: "Me", OutputDir: blocker})

	if _, err := NewBuilder(store, Options{}, WithFeed(gen)).Build(context.Background()); err == nil {
		t.Fatal("expected feed failure to propagate")
	}
}

func TestService_KeepsSnapshotOnFailure(t *testing.T) {
	dir, store := testutil.TestContent(t, testFiles())
	svc := NewService(NewBuilder(store, Options{Strict: true}), logger.Nop())

	if svc.Ready() {
		t.Fatal("ready before first build")
	}
	first, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	var failures atomic.Int32
	svc.OnFailed(func(error) { failures.Add(1) })

	if err := os.WriteFile(filepath.Join(dir, "bad.md"), []byte(testutil.Post("Bad", "2023-01-01", "nope")), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Rebuild(context.Background()); err == nil {
		t.Fatal("expected strict rebuild to fail")
	}
	if svc.Snapshot() != first {
		t.Error("failed rebuild replaced the snapshot")
	}
	if failures.Load() != 1 {
		t.Errorf("failure callbacks = %d, want 1", failures.Load())
	}
}

func TestWatch_TriggersRebuild(t *testing.T) {
	dir, _ := testutil.TestContent(t, testFiles())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var triggers atomic.Int32
	go Watch(ctx, dir, 50*time.Millisecond, logger.Nop(), func() { triggers.Add(1) })
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "new.md"), []byte(testutil.Post("New", "2024-01-01", "public")), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && triggers.Load() == 0 {
		time.Sleep(20 * time.Millisecond)
	}
	if triggers.Load() == 0 {
		t.Fatal("watcher did not trigger")
	}
}

func TestWatch_NewDirWatched(t *testing.T) {
	dir, _ := testutil.TestContent(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var triggers atomic.Int32
	go Watch(ctx, dir, 50*time.Millisecond, logger.Nop(), func() { triggers.Add(1) })
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(dir, "series-dir")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(200 * time.Millisecond)
	before := triggers.Load()

	_ = os.WriteFile(filepath.Join(sub, "series.yaml"), []byte(seriesYAML), 0o644)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && triggers.Load() == before {
		time.Sleep(20 * time.Millisecond)
	}
	if triggers.Load() == before {
		t.Fatal("change in new directory did not trigger")
	}
}

func TestBuild_VersionTracksContent(t *testing.T) {
	dir, store := testutil.TestContent(t, testFiles())
	b := NewBuilder(store, Options{}, WithLogger(logger.Nop()))

	first, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	again, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first.Version == "" || first.Version != again.Version {
		t.Fatalf("unchanged content: %q vs %q", first.Version, again.Version)
	}

	edited := testutil.Post("Hello again", "2023-01-01", "public", "css")
	if err := os.WriteFile(filepath.Join(dir, "hello.md"), []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if changed.Version == first.Version {
		t.Error("version should change when a post changes")
	}
}

func TestBuild_VersionTracksSeriesDefinition(t *testing.T) {
	dir, store := testutil.TestContent(t, testFiles())
	b := NewBuilder(store, Options{}, WithLogger(logger.Nop()))

	first, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	raised := strings.Replace(seriesYAML, "last_published_part: 1", "last_published_part: 2", 1)
	if err := os.WriteFile(filepath.Join(dir, "scalable-css", "series.yaml"), []byte(raised), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if changed.Version == first.Version {
		t.Error("version should change when series.yaml does")
	}
}
