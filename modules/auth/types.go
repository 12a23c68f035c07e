package auth

import (
	"context"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	User   *domain.User      `json:"user,omitempty"`
	Tokens *domain.TokenPair `json:"tokens,omitempty"`
	Error  *apperr.Error     `json:"error,omitempty"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool          `json:"valid"`
	UserID string        `json:"user_id,omitempty"`
	Error  *apperr.Error `json:"error,omitempty"`
}

// AuthPort defines the interface other modules use for authentication.
type AuthPort interface {
	IdentityResolver
	Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error)
}
