// auth_service.go
//
// Account registration and login. Issues the bearer tokens the identity
// resolver verifies.

package services

import (
	"errors"
	"strings"

	"github.com/estately/estately/internal/auth"
	"github.com/estately/estately/internal/models"
	"github.com/estately/estately/internal/types"
	"gorm.io/gorm"
)

// RegisterInput is the registration request body.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Avatar   string `json:"avatar"`
}

// AuthResult pairs an account with its freshly minted token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register validates the input, hashes the password and creates the
// account, returning a signed token.
func Register(db *gorm.DB, mgr *auth.Manager, input RegisterInput) (*AuthResult, error) {
	if err := validate.Struct(input); err != nil {
		return nil, types.InvalidInput(err.Error())
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, types.Internal("failed to hash password", err)
	}

	user := models.User{
		Username:     strings.ToLower(input.Username),
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		Avatar:       input.Avatar,
	}
	if err := db.Create(&user).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") ||
			strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return nil, types.Conflict("username or email already taken")
		}
		return nil, storeFailure("failed to create user", err)
	}

	token, err := mgr.Generate(user.ID)
	if err != nil {
		return nil, types.Internal("failed to generate token", err)
	}

	return &AuthResult{User: &user, Token: token}, nil
}

// Login verifies the password and issues a token. Lookup and compare
// failures produce the same error to avoid user enumeration.
func Login(db *gorm.DB, mgr *auth.Manager, username, password string) (*AuthResult, error) {
	var user models.User
	if err := db.Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.InvalidCredential("invalid username or password")
		}
		return nil, storeFailure("failed to look up user", err)
	}

	if !auth.ComparePassword(password, user.PasswordHash) {
		return nil, types.InvalidCredential("invalid username or password")
	}

	token, err := mgr.Generate(user.ID)
	if err != nil {
		return nil, types.Internal("failed to generate token", err)
	}

	return &AuthResult{User: &user, Token: token}, nil
}
