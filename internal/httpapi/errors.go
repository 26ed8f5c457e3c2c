package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cleepadm/internal/advisory"
	"cleepadm/internal/manager"
	"cleepadm/internal/rendering"
	"cleepadm/internal/rpc"
	"cleepadm/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps well-known service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case errors.Is(err, rendering.ErrIneligiblePair), manager.IsInvalidSetting(err):
		return http.StatusBadRequest
	case manager.IsNotFound(err), errors.Is(err, advisory.ErrUnknownHandle):
		return http.StatusNotFound
	case rpc.IsCommandError(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case rpc.IsTransportError(err), errors.Is(err, manager.ErrNotRunning):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps err, writes it and logs the request outcome.
func writeError(w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	// client went away or server is shutting down: nothing to answer
	if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
		return
	}
	status := statusFor(err)
	if status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout {
		IncrementUpstreamError(http.StatusText(status))
	}
	logRequest(r, status, start, err)
	writeJSONError(w, status, err.Error())
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
