// error.go
//
// Typed failure taxonomy for the estately data service.

package types

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Code identifies a recoverable failure class. Every service-level
// failure is one of these; anything else is wrapped as CodeInternal.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeNotAuthorized     Code = "NOT_AUTHORIZED"
	CodeInvalidCredential Code = "INVALID_CREDENTIAL"
	CodeConflict          Code = "CONFLICT"
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeInternal          Code = "INTERNAL"
)

// AppError is the tagged failure returned by all services. The transport
// layer maps Code to an HTTP status; services never see status codes.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Constructors

func NotFound(msg string) error {
	return &AppError{Code: CodeNotFound, Message: msg}
}

func NotAuthorized(msg string) error {
	return &AppError{Code: CodeNotAuthorized, Message: msg}
}

func InvalidCredential(msg string) error {
	return &AppError{Code: CodeInvalidCredential, Message: msg}
}

func Conflict(msg string) error {
	return &AppError{Code: CodeConflict, Message: msg}
}

func InvalidInput(msg string) error {
	return &AppError{Code: CodeInvalidInput, Message: msg}
}

func Internal(msg string, cause error) error {
	return &AppError{Code: CodeInternal, Message: msg, Cause: cause}
}

// CodeOf extracts the failure class from an error chain.
// Unclassified errors report as CodeInternal.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps a failure class to the HTTP status the transport
// layer responds with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeNotAuthorized:
		return fiber.StatusForbidden
	case CodeInvalidCredential:
		return fiber.StatusUnauthorized
	case CodeConflict:
		return fiber.StatusConflict
	case CodeInvalidInput:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
