package types_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/estately/estately/internal/types"
	"github.com/gofiber/fiber/v2"
)

func TestCodeOf(t *testing.T) {
	if got := types.CodeOf(types.NotFound("gone")); got != types.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", got)
	}

	// Wrapping must not hide the classification.
	wrapped := fmt.Errorf("while deleting: %w", types.NotAuthorized("denied"))
	if got := types.CodeOf(wrapped); got != types.CodeNotAuthorized {
		t.Errorf("expected NOT_AUTHORIZED through wrap, got %s", got)
	}

	if got := types.CodeOf(errors.New("plain")); got != types.CodeInternal {
		t.Errorf("unclassified error should report INTERNAL, got %s", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[types.Code]int{
		types.CodeNotFound:          fiber.StatusNotFound,
		types.CodeNotAuthorized:     fiber.StatusForbidden,
		types.CodeInvalidCredential: fiber.StatusUnauthorized,
		types.CodeConflict:          fiber.StatusConflict,
		types.CodeInvalidInput:      fiber.StatusBadRequest,
		types.CodeInternal:          fiber.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := types.HTTPStatus(code); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := types.Internal("storage failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected the cause to survive wrapping")
	}
}
