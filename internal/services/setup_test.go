package services_test

import (
	"testing"

	"github.com/estately/estately/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing. The pool
// is pinned to one connection so every query sees the same store.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostDetail{},
		&models.SavedPost{},
		&models.Chat{},
		&models.Message{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
		IsAdmin:      admin,
	}
	require.NoError(t, db.Create(user).Error, "failed to create user %s", username)
	return user
}

// createPost creates a post together with its detail row, the same shape
// the creation service produces.
func createPost(t *testing.T, db *gorm.DB, ownerID, title string) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:   ownerID,
		Title:    title,
		Price:    1200,
		City:     "springfield",
		Type:     "rent",
		Property: "apartment",
	}
	require.NoError(t, db.Create(post).Error, "failed to create post %s", title)

	detail := &models.PostDetail{
		PostID:      post.ID,
		Description: "a place to live",
	}
	require.NoError(t, db.Create(detail).Error, "failed to create detail for %s", title)
	post.Detail = detail

	return post
}

func savePost(t *testing.T, db *gorm.DB, userID, postID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.SavedPost{UserID: userID, PostID: postID}).Error)
}

func createChat(t *testing.T, db *gorm.DB, user1ID, user2ID string) *models.Chat {
	t.Helper()

	chat := &models.Chat{User1ID: user1ID, User2ID: user2ID}
	require.NoError(t, db.Create(chat).Error, "failed to create chat")
	return chat
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
