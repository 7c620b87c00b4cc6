// guard.go
//
// Authorization checks. Both checks are evaluated inside the caller's
// transaction so privilege cannot change between check and mutation.

package services

import (
	"errors"

	"github.com/estately/estately/internal/models"
	"github.com/estately/estately/internal/types"
	"gorm.io/gorm"
)

// RequireOwner allows the operation iff the actor is the resource owner.
// Exact string equality; an empty actor id is always denied.
func RequireOwner(actorID, resourceOwnerID string) error {
	if actorID == "" || actorID != resourceOwnerID {
		return types.NotAuthorized("not the resource owner")
	}
	return nil
}

// RequireElevated allows the operation iff the actor's user record
// carries the administrative flag. A missing record is a denial, not a
// fault. Read-only; runs against the transaction handle it is given.
func RequireElevated(tx *gorm.DB, actorID string) error {
	if actorID == "" {
		return types.NotAuthorized("administrative privilege required")
	}

	var user models.User
	if err := tx.Select("id", "is_admin").Where("id = ?", actorID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotAuthorized("administrative privilege required")
		}
		return types.Internal("failed to load actor record", err)
	}

	if !user.IsAdmin {
		return types.NotAuthorized("administrative privilege required")
	}
	return nil
}
