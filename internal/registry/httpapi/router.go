package httpapi

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quay/cargo-registry/internal/registry/regerr"
)

// NewRouter builds the HTTP handler for the registry's Cargo-protocol
// surface (spec.md §4.6), wrapped in a per-request logger.
func NewRouter(s *Server, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("PUT /api/v1/crates/new", s.handlePublish)
	mux.HandleFunc("DELETE /api/v1/crates/{name}/{version}/yank", s.handleYank)
	mux.HandleFunc("PUT /api/v1/crates/{name}/{version}/unyank", s.handleUnyank)
	mux.HandleFunc("GET /api/v1/crates/{name}/{version}/download", s.handleDownload)
	mux.HandleFunc("GET /api/v1/crates/{name}/owners", s.handleListOwners)
	mux.HandleFunc("PUT /api/v1/crates/{name}/owners", s.handleAddOwners)
	mux.HandleFunc("DELETE /api/v1/crates/{name}/owners", s.handleRemoveOwners)
	mux.HandleFunc("GET /api/v1/crates/", s.handleSearch)

	return withLogging(mux, logger)
}

func withLogging(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		l := logger.With().Str("request_id", reqID).Logger()
		ctx := l.WithContext(r.Context())

		l.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request start")
		r = r.WithContext(ctx)
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				writeError(w, r, regerr.New("httpapi.recover", regerr.Internal, fmt.Errorf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
