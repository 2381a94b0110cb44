package blog

import (
	"strconv"

	"github.com/starford/presswork/internal/models"
)

// PageInfo describes one listing page.
type PageInfo struct {
	Number   int           `json:"number"`
	Total    int           `json:"total"`
	HasPrev  bool          `json:"has_prev"`
	HasNext  bool          `json:"has_next"`
	PrevPage int           `json:"prev_page,omitempty"`
	NextPage int           `json:"next_page,omitempty"`
	Posts    []models.Post `json:"posts"`
}

// TotalPages is the number of listing pages; zero when nothing is published.
func (b *Blog) TotalPages() int {
	n := len(b.published)
	return (n + b.opts.PageSize - 1) / b.opts.PageSize
}

// PostsForPage returns the posts of the 1-based page. Out of range pages are
// empty.
func (b *Blog) PostsForPage(page int) []models.Post {
	if page < 1 || page > b.TotalPages() {
		return []models.Post{}
	}
	start := (page - 1) * b.opts.PageSize
	end := min(start+b.opts.PageSize, len(b.published))
	return clone(b.published[start:end])
}

// Page returns the posts of page with its navigation state.
func (b *Blog) Page(page int) PageInfo {
	total := b.TotalPages()
	info := PageInfo{
		Number: page,
		Total:  total,
		Posts:  b.PostsForPage(page),
	}
	if page > 1 && page <= total {
		info.HasPrev = true
		info.PrevPage = page - 1
	}
	if page >= 1 && page < total {
		info.HasNext = true
		info.NextPage = page + 1
	}
	return info
}

// PagePath returns the URL path of a listing page.
func PagePath(page int) string {
	if page <= 1 {
		return "/blog"
	}
	return "/blog/page/" + strconv.Itoa(page)
}

// StaticPagePaths lists the paths of every page after the first.
func (b *Blog) StaticPagePaths() []string {
	total := b.TotalPages()
	out := make([]string, 0, max(total-1, 0))
	for p := 2; p <= total; p++ {
		out = append(out, PagePath(p))
	}
	return out
}
