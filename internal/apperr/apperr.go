// Package apperr carries the error taxonomy surfaced to API clients. Every
// operational failure becomes an *Error with an HTTP status; anything else is
// treated as an unexpected server error by the top-level error handler.
package apperr

import "github.com/gofiber/fiber/v2"

type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// Type buckets the error the way clients see it in the error envelope.
func (e *Error) Type() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "client error"
	}
	return "server error"
}

func New(statusCode int, message string) *Error {
	return &Error{StatusCode: statusCode, Message: message}
}

func Validation(message string) *Error {
	return New(fiber.StatusBadRequest, message)
}

func Forbidden(message string) *Error {
	return New(fiber.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(fiber.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(fiber.StatusConflict, message)
}
