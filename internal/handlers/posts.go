// posts.go
//
// Listing routes. GetPost resolves the credential exactly once and then
// branches; one response path per request.

package handlers

import (
	"strconv"

	"github.com/estately/estately/internal/auth"
	"github.com/estately/estately/internal/middleware"
	"github.com/estately/estately/internal/services"
	"github.com/estately/estately/internal/types"
	"github.com/estately/estately/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PostHandler handles listing routes
type PostHandler struct {
	DB   *gorm.DB
	Auth *auth.Manager
}

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description List posts with optional filters
// @Tags Posts
// @Produce json
// @Param city query string false "City filter"
// @Param type query string false "buy or rent"
// @Param property query string false "Property kind"
// @Param bedroom query int false "Exact bedroom count"
// @Param minPrice query int false "Minimum price"
// @Param maxPrice query int false "Maximum price"
// @Success 200 {array} models.Post
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /posts [get]
func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	filter := services.PostFilter{
		City:     c.Query("city"),
		Type:     c.Query("type"),
		Property: c.Query("property"),
	}

	if raw := c.Query("bedroom"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return types.InvalidInput("bedroom must be an integer")
		}
		filter.Bedroom = &n
	}
	if raw := c.Query("minPrice"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return types.InvalidInput("minPrice must be an integer")
		}
		filter.MinPrice = &n
	}
	if raw := c.Query("maxPrice"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return types.InvalidInput("maxPrice must be an integer")
		}
		filter.MaxPrice = &n
	}

	posts, err := services.ListPosts(h.DB, filter)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, posts, fiber.StatusOK)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Description Get a post with detail, owner profile and viewer-relative saved state
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} services.PostView
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	post, err := services.GetPost(h.DB, c.Params("id"))
	if err != nil {
		return err
	}

	view, err := services.AttachViewerContext(h.DB, h.Auth, post, middleware.TokenFromRequest(c))
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, view, fiber.StatusOK)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Create a post and its detail, owned by the caller
// @Tags Posts
// @Accept json
// @Produce json
// @Param body body services.CreatePostInput true "Post to create"
// @Success 201 {object} models.Post
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var input services.CreatePostInput
	if err := c.BodyParser(&input); err != nil {
		return types.InvalidInput("invalid request body")
	}

	post, err := services.CreatePost(h.DB, middleware.ActorID(c), input)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, post, fiber.StatusCreated)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Description Partially update a post the caller owns; absent fields stay untouched
// @Tags Posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param body body services.PostUpdate true "Fields to update"
// @Success 200 {object} models.Post
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	var update services.PostUpdate
	if err := c.BodyParser(&update); err != nil {
		return types.InvalidInput("invalid request body")
	}

	post, err := services.UpdatePost(h.DB, middleware.ActorID(c), c.Params("id"), update)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, post, fiber.StatusOK)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Description Delete a post the caller owns, with its detail and saved-post rows
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	if err := services.DeletePostCascade(h.DB, middleware.ActorID(c), c.Params("id")); err != nil {
		return err
	}

	return utils.MessageResponse(c, "Post deleted", nil)
}

// SavePost handles POST /api/posts/:id/save
// @Summary Toggle a bookmark
// @Description Toggle the caller's saved mark on a post
// @Tags Posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /posts/{id}/save [post]
func (h *PostHandler) SavePost(c *fiber.Ctx) error {
	saved, err := services.ToggleSavedPost(h.DB, middleware.ActorID(c), c.Params("id"))
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{"isSaved": saved}, fiber.StatusOK)
}
