package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for the remote API failure classes. Callers match with
// errors.Is; the wrapped text carries the server-provided message when one
// was sent.
var (
	// ErrUnauthorized maps any 401-class response. Surfacing it anywhere
	// invalidates the credential (the session store handles the clearing).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict maps 409: the remote state changed concurrently, e.g.
	// the book is already rented by someone else.
	ErrConflict = errors.New("conflict")

	// ErrForbidden maps 403: the credential is valid but lacks the role
	// for the operation. Unlike ErrUnauthorized it does not clear the
	// session.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound maps 404.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest maps 400/422: the server rejected the payload.
	ErrBadRequest = errors.New("rejected by server")

	// ErrUnavailable covers transport failures, timeouts and 5xx.
	ErrUnavailable = errors.New("server unavailable")
)

// errorBody is the backend's error envelope: {"error": "..."} with
// {"message": "..."} as a legacy fallback.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// serverMessage extracts the human-readable error text from a non-2xx body,
// or "" when the body carries none.
func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Error != "" {
		return eb.Error
	}
	return eb.Message
}

// mapStatus converts a non-2xx response into a sentinel-wrapped error.
func mapStatus(status int, body []byte) error {
	var sentinel error
	switch {
	case status == 401:
		sentinel = ErrUnauthorized
	case status == 403:
		sentinel = ErrForbidden
	case status == 404:
		sentinel = ErrNotFound
	case status == 409:
		sentinel = ErrConflict
	case status == 400 || status == 422:
		sentinel = ErrBadRequest
	case status >= 500:
		sentinel = ErrUnavailable
	default:
		sentinel = ErrBadRequest
	}
	if msg := serverMessage(body); msg != "" {
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	return fmt.Errorf("%w: http %d", sentinel, status)
}
