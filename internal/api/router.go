package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/taskparser/internal/query"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// defaults supplies the tags and expressions used when a request omits them.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *query.Service, defaults query.Request, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, defaults)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/tasks", h.ListTasks)
	r.Get("/worklogs", h.ListWorklogs)
	r.Get("/files", h.ListFiles)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
