// common.go
//
// Shared transport-edge plumbing for all handlers.

package handlers

import (
	"errors"
	"time"

	"github.com/estately/estately/internal/types"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error through the typed taxonomy. Services
// return tagged failures; this is the only place they become HTTP
// statuses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := string(types.CodeInternal)

	var appErr *types.AppError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &appErr):
		code = types.HTTPStatus(appErr.Code)
		message = appErr.Message
		errorType = string(appErr.Code)
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
