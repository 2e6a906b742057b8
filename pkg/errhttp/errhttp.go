// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/pkg/telemetry"
	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Unrecognized errors become 500 with a generic message and are reported to Sentry.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToStatus(err)
	body := errorBody{Error: err.Error()}

	var dup *inventorydomain.DuplicateError
	if errors.As(err, &dup) {
		body.Field = dup.Field
	}
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		telemetry.CaptureError(r.Context(), err, "method", r.Method, "route", r.URL.Path)
		body.Error = http.StatusText(status)
	}
	httpx.JSON(w, status, body)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, inventorydomain.ErrItemNotFound),
		errors.Is(err, inventorydomain.ErrTransactionNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, inventorydomain.ErrDuplicate),
		errors.Is(err, inventorydomain.ErrStaleState):
		return http.StatusConflict // 409
	case errors.Is(err, inventorydomain.ErrValidation):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, inventorydomain.ErrAuthorization):
		return http.StatusForbidden // 403
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrRoleNotFound):
		return http.StatusUnauthorized // 401
	case errors.Is(err, inventorydomain.ErrTransport):
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
