package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/presswork/internal/apperr"
	"github.com/starford/presswork/internal/models"
)

// PostRow represents a row in the posts table.
type PostRow struct {
	ID         string
	Path       string
	Title      string
	Date       string
	Visibility models.Visibility
	Tags       []string
	Checksum   string
	UpdatedAt  time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Date       string            `json:"date"`
	Visibility models.Visibility `json:"visibility"`
	Snippet    string            `json:"snippet"`
}

// RowFromPost maps a post to its index row.
func RowFromPost(p models.Post) PostRow {
	tags := make([]string, 0, len(p.Meta.Tags)+len(p.Meta.TagsExtra))
	for _, t := range p.Meta.Tags {
		tags = append(tags, string(t))
	}
	tags = append(tags, p.Meta.TagsExtra...)
	return PostRow{
		ID:         p.ID,
		Path:       p.Path,
		Title:      p.Meta.FullTitle(),
		Date:       p.Meta.Date,
		Visibility: p.Meta.Visibility,
		Tags:       tags,
		Checksum:   p.Checksum,
		UpdatedAt:  time.Now().UTC(),
	}
}

// UpsertPost inserts or replaces a post and its FTS entry within a transaction.
func (db *DB) UpsertPost(p PostRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(p.Tags)

	// Body is kept on the row for the LIKE fallback.
	_, err = tx.Exec(`
		INSERT INTO posts (id, path, title, date, visibility, tags, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path       = excluded.path,
			title      = excluded.title,
			date       = excluded.date,
			visibility = excluded.visibility,
			tags       = excluded.tags,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, p.ID, p.Path, p.Title, p.Date, string(p.Visibility), string(tagsJSON), p.Checksum, body, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	// No-op when the FTS5 tag is absent.
	if err := ftsUpsert(tx, p.ID, p.Title, body, p.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeletePost removes a post and its FTS entry.
func (db *DB) DeletePost(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete post: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a post, or empty string if not found.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM posts WHERE id = ?`, id).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetPost returns the indexed row for id.
func (db *DB) GetPost(id string) (*PostRow, error) {
	var (
		r        PostRow
		vis      string
		tagsJSON string
	)
	err := db.conn.QueryRow(`
		SELECT id, path, title, date, visibility, tags, checksum, updated_at
		FROM posts WHERE id = ?
	`, id).Scan(&r.ID, &r.Path, &r.Title, &r.Date, &vis, &tagsJSON, &r.Checksum, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: post %q: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get post: %w", err)
	}
	r.Visibility = models.Visibility(vis)
	_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
	return &r, nil
}

// AllChecksums returns id → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// visibilityFilter renders an IN clause over column for the given states.
// An empty list matches every post.
func visibilityFilter(column string, visibilities []models.Visibility) (string, []any) {
	if len(visibilities) == 0 {
		return "1 = 1", nil
	}
	marks := make([]string, len(visibilities))
	args := make([]any, len(visibilities))
	for i, v := range visibilities {
		marks[i] = "?"
		args[i] = string(v)
	}
	return column + " IN (" + strings.Join(marks, ", ") + ")", args
}
