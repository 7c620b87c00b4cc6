package handlers

import (
	"github.com/estately/estately/internal/middleware"
	"github.com/estately/estately/internal/services"
	"github.com/estately/estately/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminHandler handles administrative routes
type AdminHandler struct {
	DB *gorm.DB
}

// DeleteUser handles DELETE /api/admin/users/:userId
// @Summary Delete a user and everything dependent on it
// @Description Removes the user's posts, their details, every saved-post row referencing the user or those posts, and the user itself, atomically. Requires an administrative actor.
// @Tags Admin
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/users/{userId} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	removed, err := services.DeleteUserCascade(h.DB, middleware.ActorID(c), c.Params("userId"))
	if err != nil {
		return err
	}

	return utils.MessageResponse(c, "User deleted successfully", removed)
}
