// chat.go
//
// Two-party chat models. The participant pair is fixed at creation; the
// seen set only ever grows and is mutated solely by MarkChatSeen.

package models

import (
	"time"

	"github.com/estately/estately/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat is a conversation between exactly two users. SeenIDs is a subset
// of the participant pair at all times.
type Chat struct {
	ID            string          `gorm:"type:char(36);primaryKey" json:"id"`
	User1ID       string          `gorm:"type:char(36);not null;index" json:"user1Id"`
	User2ID       string          `gorm:"type:char(36);not null;index" json:"user2Id"`
	SeenIDs       types.StringSet `gorm:"not null" json:"seenBy"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastMessageAt *time.Time      `json:"lastMessageAt,omitempty"`

	Messages []Message `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.SeenIDs == nil {
		c.SeenIDs = types.StringSet{}
	}
	return nil
}

// ParticipantIDs returns the fixed participant pair.
func (c *Chat) ParticipantIDs() []string {
	return []string{c.User1ID, c.User2ID}
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Chat) HasParticipant(userID string) bool {
	return userID != "" && (userID == c.User1ID || userID == c.User2ID)
}

// ReceiverID returns the other participant relative to userID. For a
// self-chat both sides are the caller.
func (c *Chat) ReceiverID(userID string) string {
	if c.User1ID != userID {
		return c.User1ID
	}
	return c.User2ID
}

// Message is an append-only chat entry, immutable once created.
type Message struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	ChatID    string    `gorm:"type:char(36);not null;index" json:"chatId"`
	SenderID  string    `gorm:"type:char(36);not null" json:"senderId"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate assigns a uuid primary key when none was provided.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
