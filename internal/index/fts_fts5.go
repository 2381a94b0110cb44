//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/presswork/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts5(
			id UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, title, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM posts_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO posts_fts (id, title, body, tags) VALUES (?, ?, ?, ?)`,
		id, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM posts_fts WHERE id = ?`, id)
}

// Search performs an FTS5 full-text search restricted to the given
// visibility states and returns matching results with snippets.
func (db *DB) Search(query string, limit int, visibilities []models.Visibility) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	filter, filterArgs := visibilityFilter("p.visibility", visibilities)

	args := append([]any{query}, filterArgs...)
	args = append(args, limit)
	rows, err := db.conn.Query(`
		SELECT f.id,
		       f.title,
		       p.date,
		       p.visibility,
		       snippet(posts_fts, 2, '<b>', '</b>', '...', 64)
		FROM posts_fts f
		JOIN posts p ON p.id = f.id
		WHERE posts_fts MATCH ? AND `+filter+`
		ORDER BY rank
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var vis string
		if err := rows.Scan(&r.ID, &r.Title, &r.Date, &vis, &r.Snippet); err != nil {
			return nil, err
		}
		r.Visibility = models.Visibility(vis)
		out = append(out, r)
	}
	return out, rows.Err()
}
