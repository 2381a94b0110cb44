package index

import "github.com/starford/presswork/internal/models"

// PostIndex defines the interface for post indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PostIndex interface {
	UpsertPost(p PostRow, body string) error
	DeletePost(id string) error
	GetChecksum(id string) (string, error)
	GetPost(id string) (*PostRow, error)
	Search(query string, limit int, visibilities []models.Visibility) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies PostIndex at compile time.
var _ PostIndex = (*DB)(nil)
