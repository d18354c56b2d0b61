package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/aretw0/notebench/pkg/core"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes and client-facing messages.
// Infrastructure details never reach the client.
func statusFor(err error, fallback string) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.Is(err, core.ErrInvalidID):
		return fiber.StatusBadRequest, "Invalid ID format"
	case errors.Is(err, core.ErrNotFound):
		return fiber.StatusNotFound, "Note not found"
	case errors.Is(err, core.ErrBadRequest):
		return fiber.StatusBadRequest, err.Error()
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	default:
		return fiber.StatusInternalServerError, fallback
	}
}

func writeError(c *fiber.Ctx, err error, fallback string) error {
	code, msg := statusFor(err, fallback)
	return c.Status(code).JSON(ErrorResponse{Error: msg})
}

// errorHandler renders errors that escape a handler, including fiber's own
// (unknown route, method not allowed, recovered panics).
func errorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err, "Internal server error")
}
