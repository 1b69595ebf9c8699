// Package apperr carries the failure shape the lifecycle engine reports:
// an HTTP-style status code, a human-readable message and a stable
// machine-readable code the request layer can branch on.
package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error is the application error returned by services.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"error"`
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with an explicit status code.
func New(status int, message, code string) *Error {
	return &Error{StatusCode: status, Code: code, Message: message}
}

// NotFound creates a 404 error.
func NotFound(message, code string) *Error {
	return New(fiber.StatusNotFound, message, code)
}

// Conflict creates a 409 error (operation not legal in current state).
func Conflict(message, code string) *Error {
	return New(fiber.StatusConflict, message, code)
}

// Unprocessable creates a 422 error (validation failure).
func Unprocessable(message, code string) *Error {
	return New(fiber.StatusUnprocessableEntity, message, code)
}

// BadRequest creates a 400 error.
func BadRequest(message, code string) *Error {
	return New(fiber.StatusBadRequest, message, code)
}

// Handler is the central Fiber error handler. Application errors keep their
// status and code; anything else becomes an opaque 500.
func Handler(c *fiber.Ctx, err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return c.Status(appErr.StatusCode).JSON(fiber.Map{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}
