package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/presswork/internal/apperr"
	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/postservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *postservice.Service
	logger logger.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service, log logger.Logger) *Handler {
	return &Handler{svc: svc, logger: log}
}

// wildcard extracts the trailing path of the route. Encoded slashes
// (css%2Fhistory) are accepted.
func wildcard(r *http.Request) string {
	raw := strings.Trim(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// fail maps a service error to a response.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrNotReady):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("site not built yet"))
	default:
		h.logger.Error(op+" failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		One page of the main listing
//	@Tags			posts
//	@Produce		json
//	@Param			page	query		int		false	"1-based page number"
//	@Success		200		{object}	PageResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("page must be an integer"))
			return
		}
		page = n
	}
	res, err := h.svc.ListPage(r.Context(), page)
	if err != nil {
		h.fail(w, "list posts", err)
		return
	}
	if notModified(w, r, res.Version+"-"+strconv.Itoa(res.Number)) {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Archive handles GET /api/posts/archive.
//
//	@Summary		Archived posts
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	ArchiveResponse
//	@Security		BearerAuth
//	@Router			/posts/archive [get]
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Archive(r.Context())
	if err != nil {
		h.fail(w, "archive", err)
		return
	}
	writeJSON(w, http.StatusOK, ArchiveResponse{Posts: posts})
}

// GetPost handles GET /api/posts/*.
//
//	@Summary		Get a single post by id
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		string	true	"Post id"
//	@Success		200	{object}	PostDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{id} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := wildcard(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	post, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.fail(w, "get post", err)
		return
	}
	if notModified(w, r, post.Version) {
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ListTags handles GET /api/tags.
//
//	@Summary		Tags used by published posts
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		h.fail(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// GetTag handles GET /api/tags/{tag}.
//
//	@Summary		Published posts carrying a tag (case-insensitive)
//	@Tags			tags
//	@Produce		json
//	@Param			tag	path		string	true	"Tag"
//	@Success		200	{object}	TagPageResponse
//	@Security		BearerAuth
//	@Router			/tags/{tag} [get]
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Tag(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		h.fail(w, "get tag", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListSeries handles GET /api/series.
//
//	@Summary		Every series
//	@Tags			series
//	@Produce		json
//	@Success		200	{object}	SeriesListResponse
//	@Security		BearerAuth
//	@Router			/series [get]
func (h *Handler) ListSeries(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.SeriesList(r.Context())
	if err != nil {
		h.fail(w, "list series", err)
		return
	}
	writeJSON(w, http.StatusOK, SeriesListResponse{Series: list})
}

// SeriesTOC handles GET /api/series/*.
//
//	@Summary		Table of contents of a series
//	@Tags			series
//	@Produce		json
//	@Param			dir		path		string	true	"Series directory"
//	@Param			current	query		int		false	"Part to mark as current"
//	@Success		200		{object}	SeriesTOCResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/series/{dir} [get]
func (h *Handler) SeriesTOC(w http.ResponseWriter, r *http.Request) {
	current := -1
	if raw := r.URL.Query().Get("current"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("current must be an integer"))
			return
		}
		current = n
	}
	toc, err := h.svc.SeriesTOC(r.Context(), wildcard(r), current)
	if err != nil {
		h.fail(w, "series toc", err)
		return
	}
	writeJSON(w, http.StatusOK, toc)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across listed posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		h.fail(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
