package blog

import (
	"sort"

	"github.com/starford/presswork/internal/models"
)

// Sort orders posts by publication date, newest first. Posts with the same
// date are ordered by id. Unparseable dates sort after every valid date.
func Sort(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		ti, tj := posts[i].Meta.PublishedAt(), posts[j].Meta.PublishedAt()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return posts[i].ID < posts[j].ID
	})
}
