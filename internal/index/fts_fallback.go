//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/presswork/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE fallback on the posts.body column.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string, _ []string) error {
	// Body is already stored in the posts table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
// Hits are restricted to the given visibility states.
func (db *DB) Search(query string, limit int, visibilities []models.Visibility) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	filter, filterArgs := visibilityFilter("visibility", visibilities)

	args := append([]any{like, like, like}, filterArgs...)
	args = append(args, limit)
	rows, err := db.conn.Query(`
		SELECT id, title, date, visibility, substr(body, 1, 200)
		FROM posts
		WHERE (title LIKE ? OR body LIKE ? OR tags LIKE ?) AND `+filter+`
		ORDER BY date DESC, id ASC
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
