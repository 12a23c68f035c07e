package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"

	"github.com/vishu1803/Collaborative-task-manager/config"
	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
)

// AuthModule provides registration, login and token validation services.
type AuthModule struct {
	service *AuthService
	logger  types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(db *gorm.DB, cfg config.Config, logger types.Logger) *AuthModule {
	jwtManager := NewJWTManager(JWTConfig{
		SecretKey:           cfg.JWTSecretKey,
		AccessTokenDuration: cfg.AccessTokenTTL,
		Issuer:              cfg.JWTIssuer,
	})
	return &AuthModule{
		service: NewAuthService(NewCredentialRepository(db), NewPasswordHasher(cfg.BcryptCost), jwtManager),
		logger:  logger.WithModule("auth"),
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start initializes the auth module.
func (m *AuthModule) Start(_ context.Context) error {
	m.logger.Info("Module started")
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"register",
		json.Unmarshal,
		json.Marshal,
		m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"login",
		json.Unmarshal,
		json.Marshal,
		m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"validate-token",
		json.Unmarshal,
		json.Marshal,
		m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	m.logger.Info("Registered services", "services", "register, login, validate-token")
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (SessionResponse, error) {
	u, tokens, err := m.service.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			m.logger.Error("Registration failed", "error", err)
		}
		return SessionResponse{Error: apperr.From(err)}, nil
	}
	m.logger.Info("User registered", "user_id", u.ID)
	return SessionResponse{User: u, Tokens: tokens}, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (SessionResponse, error) {
	u, tokens, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return SessionResponse{Error: apperr.From(err)}, nil
	}
	return SessionResponse{User: u, Tokens: tokens}, nil
}

// handleValidateToken returns failures in the response, not as an error.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	userID, err := m.service.Resolve(ctx, req.Token)
	if err != nil {
		return ValidateTokenResponse{Valid: false, Error: apperr.From(err)}, nil
	}
	return ValidateTokenResponse{Valid: true, UserID: userID}, nil
}
