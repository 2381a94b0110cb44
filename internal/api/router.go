package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/presswork/internal/logger"
	"github.com/starford/presswork/internal/postservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *postservice.Service, log logger.Logger, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, log)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/posts", h.ListPosts)
	r.Get("/posts/archive", h.Archive)
	r.Get("/posts/*", h.GetPost)

	r.Get("/tags", h.ListTags)
	r.Get("/tags/{tag}", h.GetTag)

	r.Get("/series", h.ListSeries)
	r.Get("/series/*", h.SeriesTOC)

	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
