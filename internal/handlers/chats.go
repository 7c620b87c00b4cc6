package handlers

import (
	"github.com/estately/estately/internal/middleware"
	"github.com/estately/estately/internal/services"
	"github.com/estately/estately/internal/types"
	"github.com/estately/estately/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ChatHandler handles chat routes; all of them require an authenticated actor.
type ChatHandler struct {
	DB *gorm.DB
}

// ListChats handles GET /api/chats
// @Summary List the caller's chats
// @Tags Chats
// @Produce json
// @Success 200 {array} services.ChatSummary
// @Security CookieAuth
// @Router /chats [get]
func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	chats, err := services.ListChats(h.DB, middleware.ActorID(c))
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, chats, fiber.StatusOK)
}

// GetChat handles GET /api/chats/:id
// @Summary Get a chat with its messages
// @Description Loads messages in creation order and marks the chat seen by the caller
// @Tags Chats
// @Produce json
// @Param id path string true "Chat ID"
// @Success 200 {object} models.Chat
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /chats/{id} [get]
func (h *ChatHandler) GetChat(c *fiber.Ctx) error {
	chat, err := services.GetChat(h.DB, c.Params("id"), middleware.ActorID(c))
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, chat, fiber.StatusOK)
}

// CreateChat handles POST /api/chats
// @Summary Start a chat
// @Tags Chats
// @Accept json
// @Produce json
// @Param body body object true "receiverId"
// @Success 201 {object} models.Chat
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /chats [post]
func (h *ChatHandler) CreateChat(c *fiber.Ctx) error {
	var body struct {
		ReceiverID string `json:"receiverId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidInput("invalid request body")
	}

	chat, err := services.CreateChat(h.DB, middleware.ActorID(c), body.ReceiverID)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, chat, fiber.StatusCreated)
}

// ReadChat handles PUT /api/chats/:id/read
// @Summary Mark a chat seen
// @Description Merge the caller into the chat's seen set; idempotent
// @Tags Chats
// @Produce json
// @Param id path string true "Chat ID"
// @Success 200 {object} models.Chat
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /chats/{id}/read [put]
func (h *ChatHandler) ReadChat(c *fiber.Ctx) error {
	chat, err := services.MarkChatSeen(h.DB, c.Params("id"), middleware.ActorID(c))
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, chat, fiber.StatusOK)
}

// AddMessage handles POST /api/chats/:id/messages
// @Summary Append a message
// @Tags Chats
// @Accept json
// @Produce json
// @Param id path string true "Chat ID"
// @Param body body object true "text"
// @Success 201 {object} models.Message
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /chats/{id}/messages [post]
func (h *ChatHandler) AddMessage(c *fiber.Ctx) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidInput("invalid request body")
	}

	message, err := services.AddMessage(h.DB, c.Params("id"), middleware.ActorID(c), body.Text)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, message, fiber.StatusCreated)
}
