package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ReadyFunc reports whether the server can currently serve requests.
type ReadyFunc func() error

// NewRouter creates a chi router exposing the MCP endpoint at /mcp and the
// unauthenticated health probes.
// authEnabled controls whether Bearer token auth is enforced on /mcp.
func NewRouter(mcpHandler http.Handler, ready ReadyFunc, authEnabled bool, token string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, statusBody("ok"))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, errorBody(err.Error()))
				return
			}
		}
		writeJSON(w, http.StatusOK, statusBody("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))
		r.Handle("/mcp", mcpHandler)
	})

	return r
}
