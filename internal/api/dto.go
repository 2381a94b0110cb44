package api

import (
	"github.com/starford/presswork/internal/index"
	"github.com/starford/presswork/internal/postservice"
)

// PostSummary is a listing item (aliased from the domain layer).
type PostSummary = postservice.PostSummary

// PostDetail is the full post response type (aliased from the domain layer).
type PostDetail = postservice.PostDetail

// PageResponse is one listing page.
type PageResponse = postservice.Page

// TagPageResponse is the listing of one tag.
type TagPageResponse = postservice.TagPage

// SeriesTOCResponse is a series table of contents.
type SeriesTOCResponse = postservice.SeriesTOC

// ArchiveResponse wraps archived posts.
type ArchiveResponse struct {
	Posts []PostSummary `json:"posts" validate:"required"`
}

// TagsResponse wraps the tag list.
type TagsResponse struct {
	Tags []postservice.TagSummary `json:"tags" validate:"required"`
}

// SeriesListResponse wraps the series list.
type SeriesListResponse struct {
	Series []postservice.SeriesSummary `json:"series" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
