package web

import (
	"errors"
	"net/http"

	"github.com/asterfield/stocksnap/internal/archive"
	"github.com/asterfield/stocksnap/internal/core"
	"github.com/asterfield/stocksnap/internal/logging"
)

// errorResponse is the JSON shape for all error replies.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError logs the technical error with request context and maps it to
// a status code and stable machine-readable code for the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	logging.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err,
	)

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

// classify maps core and archive errors onto HTTP semantics.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrMissingInput):
		return http.StatusBadRequest, "missing_input"
	case errors.Is(err, core.ErrNotFound), errors.Is(err, archive.ErrObjectNotFound):
		return http.StatusNotFound, "not_found"
	case core.IsReferentialViolation(err):
		return http.StatusConflict, "referential_violation"
	case core.IsConnectionFailure(err):
		return http.StatusServiceUnavailable, "connection_failure"
	}

	var ingErr *core.IngestError
	if errors.As(err, &ingErr) && ingErr.Phase == core.PhaseArchiving {
		return http.StatusBadGateway, "archive_failure"
	}

	return http.StatusInternalServerError, "internal"
}
