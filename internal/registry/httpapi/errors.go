package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quay/cargo-registry/internal/registry/regerr"
)

// writeError serializes err into the error envelope from spec.md §6: one
// {"detail": …} entry per link in the cause chain, outermost first. The
// status comes from the outermost regerr.Kind found in the chain; everything
// else maps to 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")

	resp := errorResponse{}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		resp.Errors = append(resp.Errors, errorDetail{Detail: cur.Error()})
	}

	status := regerr.Status(err)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
