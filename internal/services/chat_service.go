// chat_service.go
//
// Chat lifecycle and the seen-set merge. The participant pair is fixed
// when the chat is created; SeenIDs only grows, and only through
// MarkChatSeen.

package services

import (
	"errors"
	"time"

	"github.com/estately/estately/internal/models"
	"github.com/estately/estately/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatSummary decorates a chat with the other participant for listings.
type ChatSummary struct {
	models.Chat
	Receiver *Profile `json:"receiver,omitempty"`
}

// Profile is the public projection of a user.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// CreateChat creates a conversation between the actor and receiverID.
// Both participants must exist; the pair cannot change afterward.
func CreateChat(db *gorm.DB, actorID, receiverID string) (*models.Chat, error) {
	if receiverID == "" {
		return nil, types.InvalidInput("receiverId is required")
	}

	var chat models.Chat
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", receiverID).Count(&count).Error; err != nil {
			return storeFailure("failed to look up receiver", err)
		}
		if count == 0 {
			return types.NotFound("receiver not found")
		}

		chat = models.Chat{
			User1ID: actorID,
			User2ID: receiverID,
			SeenIDs: types.StringSet{},
		}
		if err := tx.Create(&chat).Error; err != nil {
			return storeFailure("failed to create chat", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &chat, nil
}

// ListChats returns the actor's chats, each decorated with the receiver.
func ListChats(db *gorm.DB, actorID string) ([]ChatSummary, error) {
	var chats []models.Chat
	if err := db.Where("user1_id = ? OR user2_id = ?", actorID, actorID).
		Order("created_at DESC").
		Find(&chats).Error; err != nil {
		return nil, storeFailure("failed to list chats", err)
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := ChatSummary{Chat: chat}

		receiverID := chat.ReceiverID(actorID)
		if receiverID == actorID {
			// Chat with oneself; no second profile to load.
			summary.Receiver = &Profile{ID: actorID, Username: "You"}
		} else {
			var receiver models.User
			if err := db.Select("id", "username", "avatar").
				Where("id = ?", receiverID).
				First(&receiver).Error; err == nil {
				summary.Receiver = &Profile{
					ID:       receiver.ID,
					Username: receiver.Username,
					Avatar:   receiver.Avatar,
				}
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// GetChat loads a chat with its messages in creation order and marks it
// seen by the actor. Only participants may read a chat.
func GetChat(db *gorm.DB, chatID, actorID string) (*models.Chat, error) {
	chat, err := MarkChatSeen(db, chatID, actorID)
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Messages", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("messages.created_at ASC")
	}).Where("id = ?", chatID).First(chat).Error; err != nil {
		return nil, storeFailure("failed to load chat messages", err)
	}

	return chat, nil
}

// MarkChatSeen merges the actor into the chat's seen set. The merge is a
// row-locked read-union-write inside one transaction: concurrent callers
// serialize on the row lock, so neither update is lost, and the union
// never duplicates an id. Calling it twice is the same as calling it
// once. Non-participants are denied.
func MarkChatSeen(db *gorm.DB, chatID, actorID string) (*models.Chat, error) {
	var chat models.Chat

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", chatID).
			First(&chat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("chat not found")
			}
			return storeFailure("failed to load chat", err)
		}

		if !chat.HasParticipant(actorID) {
			return types.NotAuthorized("not a chat participant")
		}

		if chat.SeenIDs.Has(actorID) {
			return nil
		}

		seen := chat.SeenIDs.Union(actorID)
		if err := tx.Model(&chat).Update("seen_ids", seen).Error; err != nil {
			return storeFailure("failed to update seen set", err)
		}
		chat.SeenIDs = seen

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &chat, nil
}

// AddMessage appends a message to a chat. Only participants may write.
// The seen set is left untouched; it belongs to MarkChatSeen.
func AddMessage(db *gorm.DB, chatID, actorID, text string) (*models.Message, error) {
	if text == "" {
		return nil, types.InvalidInput("message text is required")
	}

	var message models.Message
	err := db.Transaction(func(tx *gorm.DB) error {
		var chat models.Chat
		if err := tx.Where("id = ?", chatID).First(&chat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("chat not found")
			}
			return storeFailure("failed to load chat", err)
		}

		if !chat.HasParticipant(actorID) {
			return types.NotAuthorized("not a chat participant")
		}

		message = models.Message{
			ChatID:   chatID,
			SenderID: actorID,
			Text:     text,
		}
		if err := tx.Create(&message).Error; err != nil {
			return storeFailure("failed to create message", err)
		}

		now := time.Now()
		if err := tx.Model(&chat).Update("last_message_at", &now).Error; err != nil {
			return storeFailure("failed to update chat activity", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &message, nil
}
