package api

import "errors"

// Domain error taxonomy. Repositories and services wrap these with %w so
// handlers can translate them to status codes with errors.Is.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("invalid request payload")
	ErrInternal        = errors.New("internal error")
)

// Response is a generic API response for simple success or error messages.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
