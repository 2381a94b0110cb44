// Package content enumerates post files from a storage provider and turns them
// into immutable models.Post values.
package content

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/presswork/internal/apperr"
	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/models"
	"github.com/starford/presswork/internal/parser"
	"github.com/starford/presswork/internal/storage"
)

// AuthoringError reports a problem with one post's metadata.
type AuthoringError struct {
	ID   string
	Path string
	Err  error
}

func (e *AuthoringError) Error() string {
	return fmt.Sprintf("post %s (%s): %v", e.ID, e.Path, e.Err)
}

func (e *AuthoringError) Unwrap() error { return e.Err }

// Snapshot is the result of one enumeration of the content source.
type Snapshot struct {
	Posts    []models.Post
	Problems []*AuthoringError
}

// Err joins every authoring problem, or returns nil when there are none.
func (s *Snapshot) Err() error {
	if len(s.Problems) == 0 {
		return nil
	}
	errs := make([]error, len(s.Problems))
	for i, p := range s.Problems {
		errs[i] = p
	}
	return errors.Join(errs...)
}

// Store reads posts from a storage provider.
type Store struct {
	provider storage.Provider
	logger   logger.Logger
}

// NewStore creates a Store.
func NewStore(provider storage.Provider, log logger.Logger) *Store {
	return &Store{provider: provider, logger: log}
}

// Load enumerates every post once. Enumeration order is the provider's
// lexical path order. Read failures abort the load; metadata problems are
// collected in the snapshot and the post is kept with conservative fallbacks.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	files, err := s.provider.List("")
	if err != nil {
		return nil, fmt.Errorf("content: list: %w", err)
	}

	snap := &Snapshot{Posts: make([]models.Post, 0, len(files))}
	seen := make(map[string]string, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := s.provider.Read(f.Path)
		if err != nil {
			return nil, fmt.Errorf("content: read %s: %w", f.Path, err)
		}

		post, problem := Decode(f.Path, data)
		post.Checksum = f.Checksum

		if post.ID == "" {
			// A root index.md would publish at the bare /blog/ prefix.
			problem = &AuthoringError{
				Path: f.Path,
				Err:  fmt.Errorf("%w: root index.md has no post id", apperr.ErrInvalidMetadata),
			}
			s.report(problem)
			snap.Problems = append(snap.Problems, problem)
			continue
		}

		if prev, dup := seen[post.ID]; dup {
			// Two files resolving to the same id (a/b.md and a/b/index.md).
			problem = &AuthoringError{
				ID:   post.ID,
				Path: f.Path,
				Err:  fmt.Errorf("%w: duplicate id, already defined by %s", apperr.ErrInvalidMetadata, prev),
			}
			s.report(problem)
			snap.Problems = append(snap.Problems, problem)
			continue
		}
		seen[post.ID] = f.Path

		if problem != nil {
			s.report(problem)
			snap.Problems = append(snap.Problems, problem)
		}
		snap.Posts = append(snap.Posts, post)
	}

	s.logger.Debug("content: loaded",
		logger.Int("posts", len(snap.Posts)),
		logger.Int("problems", len(snap.Problems)))
	return snap, nil
}

func (s *Store) report(p *AuthoringError) {
	s.logger.Warn("content: authoring error",
		logger.String("post_id", p.ID),
		logger.String("path", p.Path),
		logger.Error(p.Err))
}

// Decode parses one post file. The returned post is always usable: invalid
// or missing visibility becomes private and a missing title falls back to the
// first heading or a title derived from the id.
func Decode(filePath string, data []byte) (models.Post, *AuthoringError) {
	id := PostID(filePath)
	post := models.Post{ID: id, Path: filePath}

	res, err := parser.Parse(data)
	if err != nil {
		post.Meta = models.Metadata{
			Title:      fallbackTitle(id, ""),
			Visibility: models.VisibilityPrivate,
		}
		return post, &AuthoringError{ID: id, Path: filePath, Err: fmt.Errorf("%w: %v", apperr.ErrInvalidMetadata, err)}
	}

	post.Meta = res.Meta
	post.Body = res.Body

	var problem *AuthoringError
	if verr := ValidateMetadata(res.Meta); verr != nil {
		problem = &AuthoringError{ID: id, Path: filePath, Err: fmt.Errorf("%w: %v", apperr.ErrInvalidMetadata, verr)}
	}

	if !post.Meta.Visibility.Valid() {
		post.Meta.Visibility = models.VisibilityPrivate
	}
	if post.Meta.Title == "" {
		post.Meta.Title = fallbackTitle(id, res.Heading)
	}
	return post, problem
}

// PostID derives the stable identifier of a post from its path relative to
// the content root: "a/b/index.md" and "a/b.md" both map to "a/b".
func PostID(filePath string) string {
	p := strings.TrimPrefix(path.Clean(strings.ReplaceAll(filePath, "\\", "/")), "/")
	p = strings.TrimSuffix(p, ".md")
	if p == "index" {
		return ""
	}
	return strings.TrimSuffix(p, "/index")
}

var titleCaser = cases.Title(language.English)

func fallbackTitle(id, heading string) string {
	if heading != "" {
		return heading
	}
	base := path.Base(id)
	if base == "." || base == "/" || base == "" {
		return "Untitled"
	}
	return titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(base))
}
