// Package testutil provides shared test helpers for content trees and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/presswork/internal/index"
	"github.com/starford/presswork/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "presswork-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content directory populated with files
// (relative path to content) and returns it with a storage.Provider.
func TestContent(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	for rel, body := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Post renders a post file with the given frontmatter fields.
func Post(title, date, visibility string, tags ...string) string {
	s := "---\ntitle: " + title + "\ndate: " + date + "\nvisibility: " + visibility + "\n"
	if len(tags) > 0 {
		s += "tags:\n"
		for _, tag := range tags {
			s += "  - " + tag + "\n"
		}
	}
	s += "intro: Intro of " + title + "\n---\n\n# " + title + "\n\nBody of " + title + ".\n"
	return s
}
