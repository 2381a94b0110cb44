package index

import (
	"sort"

	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/models"
)

// Changes lists the post ids touched by a Sync.
type Changes struct {
	Created []string
	Updated []string
	Deleted []string
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Created) == 0 && len(c.Updated) == 0 && len(c.Deleted) == 0
}

// Sync brings the index up to date with posts:
//   - new/changed posts are upserted
//   - posts no longer present are deleted
//
// Posts whose checksum is unchanged are skipped.
func Sync(db PostIndex, posts []models.Post, log logger.Logger) (Changes, error) {
	var ch Changes

	checksums, err := db.AllChecksums()
	if err != nil {
		return ch, err
	}

	present := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		present[p.ID] = struct{}{}

		old, indexed := checksums[p.ID]
		if indexed && old == p.Checksum {
			continue
		}
		if err := db.UpsertPost(RowFromPost(p), p.Body); err != nil {
			log.Warn("sync: index failed", logger.String("post_id", p.ID), logger.Error(err))
			continue
		}
		if indexed {
			ch.Updated = append(ch.Updated, p.ID)
		} else {
			ch.Created = append(ch.Created, p.ID)
		}
		log.Debug("sync: indexed", logger.String("post_id", p.ID))
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := present[id]; ok {
			continue
		}
		if err := db.DeletePost(id); err != nil {
			log.Warn("sync: delete failed", logger.String("post_id", id), logger.Error(err))
			continue
		}
		ch.Deleted = append(ch.Deleted, id)
		log.Debug("sync: removed stale", logger.String("post_id", id))
	}
	sort.Strings(ch.Deleted)

	return ch, nil
}
