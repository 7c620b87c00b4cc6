package services

import (
	"strings"

	"github.com/estately/estately/internal/types"
)

// storeFailure classifies an unexpected store-level error. Commit-time
// serialization and lock failures surface as Conflict so callers know a
// retry may succeed; everything else is opaque Internal.
func storeFailure(msg string, err error) error {
	if err == nil {
		return nil
	}

	text := strings.ToLower(err.Error())
	if strings.Contains(text, "deadlock") ||
		strings.Contains(text, "could not serialize") ||
		strings.Contains(text, "database is locked") ||
		strings.Contains(text, "lock wait timeout") {
		return types.Conflict(msg)
	}

	return types.Internal(msg, err)
}
