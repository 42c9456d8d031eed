package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nerrad567/gray-logic-authcore/internal/auth"
	"github.com/nerrad567/gray-logic-authcore/internal/user"
)

// Error represents a structured error response.
type Error struct {
	Status  int               `json:"status"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Common error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorised"
	ErrCodeForbidden       = "forbidden"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodeValidation      = "validation_error"
	ErrCodeMethodNotAllow  = "method_not_allowed"
	ErrCodePayloadTooLarge = "payload_too_large"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps a domain error onto its HTTP status. Anything it
// does not recognise is logged and hidden behind a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *user.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, Error{
			Status:  http.StatusBadRequest,
			Code:    ErrCodeValidation,
			Message: "validation failed",
			Fields:  verr.Fields,
		})
	case errors.Is(err, auth.ErrUnauthorized):
		writeUnauthorized(w, unauthorizedMessage(err))
	case errors.Is(err, auth.ErrForbidden):
		writeForbidden(w, "insufficient permissions")
	case errors.Is(err, user.ErrUsernameExists):
		writeError(w, http.StatusConflict, ErrCodeConflict, "username already exists")
	case errors.Is(err, user.ErrNotFound):
		writeNotFound(w, "user not found")
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
			"error", err,
		)
		writeInternalError(w, "internal server error")
	}
}

// unauthorizedMessage returns the public text for an Unauthorized error.
// Parser detail wrapped inside ErrTokenInvalid is not exposed.
func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrAccountDisabled):
		return auth.ErrAccountDisabled.Error()
	case errors.Is(err, auth.ErrTokenInvalid):
		return auth.ErrTokenInvalid.Error()
	default:
		return auth.ErrInvalidCredentials.Error()
	}
}

// decodeJSON reads the request body into v, writing a 400 or 413 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
	case errors.Is(err, io.EOF):
		writeBadRequest(w, "request body is required")
	default:
		writeBadRequest(w, "invalid JSON body")
	}
	return false
}
