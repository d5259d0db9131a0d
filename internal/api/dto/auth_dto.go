package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID    string      `json:"userId"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// NewAuthResponse renders a session.
func NewAuthResponse(session *service.Session) AuthResponse {
	return AuthResponse{
		UserID:    session.User.ID,
		Name:      session.User.Name,
		Email:     session.User.Email,
		Role:      session.User.Role,
		Token:     session.Token.Value,
		ExpiresAt: session.Token.ExpiresAt,
	}
}
