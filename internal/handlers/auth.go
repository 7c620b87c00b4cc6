package handlers

import (
	"time"

	"github.com/estately/estately/internal/auth"
	"github.com/estately/estately/internal/services"
	"github.com/estately/estately/internal/types"
	"github.com/estately/estately/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	DB           *gorm.DB
	Auth         *auth.Manager
	CookieExpiry time.Duration
}

func (h *AuthHandler) setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(h.CookieExpiry),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Register handles POST /api/auth/register
// @Summary Register an account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account to create"
// @Success 201 {object} services.AuthResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return types.InvalidInput("invalid request body")
	}

	result, err := services.Register(h.DB, h.Auth, input)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, result.Token)

	return utils.SuccessResponse(c, result, fiber.StatusCreated)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body object true "username and password"
// @Success 200 {object} services.AuthResult
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return types.InvalidInput("invalid request body")
	}

	result, err := services.Login(h.DB, h.Auth, body.Username, body.Password)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, result.Token)

	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return utils.MessageResponse(c, "Logged out", nil)
}
