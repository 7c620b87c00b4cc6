// post.go
//
// Listing models. A Post always owns exactly one PostDetail, created in
// the same transaction and removed only through the cascade service.

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post represents a listing. UserID is the owner and is immutable after
// creation; only the owner may update or delete the post.
type Post struct {
	ID        string         `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string         `gorm:"type:char(36);not null;index" json:"userId"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Price     uint64         `gorm:"not null;default:0" json:"price"`
	Images    datatypes.JSON `gorm:"type:json" json:"images"`
	Address   string         `gorm:"size:255" json:"address"`
	City      string         `gorm:"size:255;index" json:"city"`
	Bedroom   int            `json:"bedroom"`
	Bathroom  int            `json:"bathroom"`
	Latitude  string         `gorm:"size:64" json:"latitude"`
	Longitude string         `gorm:"size:64" json:"longitude"`
	Type      string         `gorm:"size:32;index" json:"type"`     // buy | rent
	Property  string         `gorm:"size:32;index" json:"property"` // apartment | house | condo | land
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`

	Detail *PostDetail `gorm:"foreignKey:PostID" json:"postDetail,omitempty"`
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostDetail holds the long-form fields of a listing, 1:1 with Post.
// It must never outlive its owning post.
type PostDetail struct {
	ID          string `gorm:"type:char(36);primaryKey" json:"id"`
	PostID      string `gorm:"type:char(36);uniqueIndex;not null" json:"postId"`
	Description string `gorm:"type:text" json:"desc"`
	Utilities   string `gorm:"size:255" json:"utilities"`
	Pet         string `gorm:"size:255" json:"pet"`
	Income      string `gorm:"size:255" json:"income"`
	Size        int    `json:"size"`
	School      int    `json:"school"`
	Bus         int    `json:"bus"`
	Restaurant  int    `json:"restaurant"`
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (d *PostDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for PostDetail
func (PostDetail) TableName() string {
	return "post_details"
}
