package auth

import (
	"context"
	"encoding/json"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
)

// authAdapter wraps ServiceContainer for type-safe cross-module communication.
type authAdapter struct {
	container mono.ServiceContainer
}

// NewAuthAdapter creates an AuthPort backed by the auth module's services.
func NewAuthAdapter(container mono.ServiceContainer) AuthPort {
	if container == nil {
		panic("auth adapter requires non-nil ServiceContainer")
	}
	return &authAdapter{container: container}
}

// Register creates an account via the register service.
func (a *authAdapter) Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {
	var resp SessionResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "register", json.Marshal, json.Unmarshal, req, &resp); err != nil {
		return nil, apperr.Internal("register service call failed: %v", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &resp, nil
}

// Login authenticates via the login service.
func (a *authAdapter) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	var resp SessionResponse
	if err := helper.CallRequestReplyService(ctx, a.container, "login", json.Marshal, json.Unmarshal, req, &resp); err != nil {
		return nil, apperr.Internal("login service call failed: %v", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return &resp, nil
}

// Resolve validates a token via the validate-token service.
func (a *authAdapter) Resolve(ctx context.Context, credential string) (string, error) {
	var resp ValidateTokenResponse
	req := ValidateTokenRequest{Token: credential}
	if err := helper.CallRequestReplyService(ctx, a.container, "validate-token", json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return "", apperr.Internal("validate-token service call failed: %v", err)
	}
	if resp.Error != nil {
		return "", resp.Error
	}
	if !resp.Valid || resp.UserID == "" {
		return "", apperr.Unauthenticated("Invalid token")
	}
	return resp.UserID, nil
}
