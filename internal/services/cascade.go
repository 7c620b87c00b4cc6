// cascade.go
//
// Cascading deletion for users and posts. Every entry point runs as one
// transaction: the dependency closure and the root are removed together
// or not at all, so no orphaned PostDetail or SavedPost row can survive
// a partial failure. Authorization is checked inside the same
// transaction as the mutation it guards.

package services

import (
	"errors"

	"github.com/estately/estately/internal/models"
	"github.com/estately/estately/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeleteUserCascade removes targetUserID and everything transitively
// dependent on it: the user's posts, those posts' details, and every
// saved-post row referencing the user or any of those posts. Requires
// an elevated actor. Returns the removed user's prior snapshot.
//
// Safe to retry: a rolled-back run leaves no trace, and a retry
// re-evaluates existence and authorization from scratch.
func DeleteUserCascade(db *gorm.DB, actorID, targetUserID string) (*models.User, error) {
	var removed models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := RequireElevated(tx, actorID); err != nil {
			return err
		}

		// Lock the root row and take the snapshot before any mutation.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", targetUserID).
			First(&removed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("user not found")
			}
			return storeFailure("failed to load user", err)
		}

		var postIDs []string
		if err := tx.Model(&models.Post{}).
			Where("user_id = ?", targetUserID).
			Pluck("id", &postIDs).Error; err != nil {
			return storeFailure("failed to collect owned posts", err)
		}

		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).
				Delete(&models.PostDetail{}).Error; err != nil {
				return storeFailure("failed to delete post details", err)
			}
		}

		// One statement for the union: rows saved BY the user or saving
		// one of the user's posts. Two passes could double-process rows
		// matching both predicates.
		savedScope := tx.Where("user_id = ?", targetUserID)
		if len(postIDs) > 0 {
			savedScope = savedScope.Or("post_id IN ?", postIDs)
		}
		if err := savedScope.Delete(&models.SavedPost{}).Error; err != nil {
			return storeFailure("failed to delete saved posts", err)
		}

		if err := tx.Where("user_id = ?", targetUserID).
			Delete(&models.Post{}).Error; err != nil {
			return storeFailure("failed to delete posts", err)
		}

		result := tx.Where("id = ?", targetUserID).Delete(&models.User{})
		if result.Error != nil {
			return storeFailure("failed to delete user", result.Error)
		}
		if result.RowsAffected == 0 {
			// Root vanished despite the lock; abort the whole cascade.
			return types.Conflict("user deleted concurrently")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &removed, nil
}

// DeletePostCascade removes a post together with its detail row and all
// saved-post rows referencing it. Only the post's owner may delete it.
func DeletePostCascade(db *gorm.DB, actorID, targetPostID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", targetPostID).
			First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("post not found")
			}
			return storeFailure("failed to load post", err)
		}

		if err := RequireOwner(actorID, post.UserID); err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", targetPostID).
			Delete(&models.PostDetail{}).Error; err != nil {
			return storeFailure("failed to delete post detail", err)
		}

		if err := tx.Where("post_id = ?", targetPostID).
			Delete(&models.SavedPost{}).Error; err != nil {
			return storeFailure("failed to delete saved posts", err)
		}

		result := tx.Delete(&post)
		if result.Error != nil {
			return storeFailure("failed to delete post", result.Error)
		}
		if result.RowsAffected == 0 {
			return types.Conflict("post deleted concurrently")
		}

		return nil
	})
}
