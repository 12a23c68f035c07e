package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/user"
	"github.com/vishu1803/Collaborative-task-manager/modules/user"
)

const (
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

// IdentityResolver turns a bearer credential into a user id.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (string, error)
}

// AuthService handles registration, login and token resolution.
type AuthService struct {
	repo   *CredentialRepository
	hasher *PasswordHasher
	jwt    *JWTManager
}

var _ IdentityResolver = (*AuthService)(nil)

// NewAuthService creates a new AuthService.
func NewAuthService(repo *CredentialRepository, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
	}
}

// Register creates an account and returns it with an access token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, *domain.TokenPair, error) {
	name = strings.TrimSpace(name)
	email = user.NormalizeEmail(email)

	if err := user.ValidateName(name); err != nil {
		return nil, nil, err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, apperr.InvalidInput("Please provide a valid email")
	}
	if len(password) < minPasswordLength {
		return nil, nil, apperr.InvalidInput("Password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return nil, nil, apperr.InvalidInput("Password cannot exceed %d characters", maxPasswordLength)
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, nil, apperr.Internal("failed to check email existence: %v", err)
	}
	if exists {
		return nil, nil, apperr.Conflict("User with this email already exists")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, apperr.Internal("failed to hash password: %v", err)
	}

	now := time.Now()
	u := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, nil, apperr.Conflict("User with this email already exists")
		}
		return nil, nil, apperr.Internal("failed to create user: %v", err)
	}

	tokens, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

// Login checks credentials and returns the account with an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	u, err := s.repo.FindByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, apperr.Unauthenticated("Invalid email or password")
		}
		return nil, nil, apperr.Internal("failed to find user: %v", err)
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, nil, apperr.Unauthenticated("Invalid email or password")
	}

	tokens, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

// Resolve verifies an access token and returns the user id it names.
// Tokens of deleted accounts are rejected.
func (s *AuthService) Resolve(ctx context.Context, credential string) (string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", apperr.Unauthenticated("Authentication token required")
	}

	claims, err := s.jwt.ValidateAccessToken(credential)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return "", apperr.Unauthenticated("Token has expired")
		}
		return "", apperr.Unauthenticated("Invalid token")
	}

	ok, err := s.repo.Exists(ctx, claims.UserID)
	if err != nil {
		return "", apperr.Internal("failed to look up user: %v", err)
	}
	if !ok {
		return "", apperr.Unauthenticated("User not found")
	}
	return claims.UserID, nil
}

func (s *AuthService) issue(u *domain.User) (*domain.TokenPair, error) {
	token, err := s.jwt.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, apperr.Internal("failed to generate access token: %v", err)
	}
	return &domain.TokenPair{
		AccessToken: token,
		ExpiresIn:   s.jwt.AccessTokenDuration(),
		TokenType:   "Bearer",
	}, nil
}
