package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account. IsAdmin grants elevated privilege for
// operations beyond ownership scope (user cascade deletion).
type User struct {
	ID           string `gorm:"type:char(36);primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Avatar       string `gorm:"size:512" json:"avatar"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// SavedPost marks that a user bookmarked a post. The (user, post) pair
// is unique; existence of the row is the whole fact.
type SavedPost struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string `gorm:"type:char(36);not null;index;uniqueIndex:idx_user_post_save" json:"userId"`
	PostID    string `gorm:"type:char(36);not null;index;uniqueIndex:idx_user_post_save" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the table name for SavedPost
func (SavedPost) TableName() string {
	return "saved_posts"
}
