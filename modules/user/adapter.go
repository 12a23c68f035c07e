package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// userAdapter wraps ServiceContainer for type-safe cross-module communication.
type userAdapter struct {
	container mono.ServiceContainer
}

// NewUserAdapter creates a UserPort backed by the user module's services.
func NewUserAdapter(container mono.ServiceContainer) UserPort {
	if container == nil {
		panic("user adapter requires non-nil ServiceContainer")
	}
	return &userAdapter{container: container}
}

func (a *userAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return apperr.Internal("%s service call failed: %v", service, err)
	}
	return nil
}

// GetUser retrieves a user via the get-user service.
func (a *userAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var resp GetUserResponse
	if err := a.call(ctx, "get-user", &GetUserRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.User == nil {
		return nil, apperr.Internal("get-user returned no user")
	}
	return resp.User, nil
}

// GetUsers resolves summaries via the get-users service.
func (a *userAdapter) GetUsers(ctx context.Context, userIDs []string) ([]domain.Summary, error) {
	var resp UsersResponse
	if err := a.call(ctx, "get-users", &GetUsersRequest{UserIDs: userIDs}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Users, nil
}

// ListUsers lists users via the list-users service.
func (a *userAdapter) ListUsers(ctx context.Context, requesterID string, includeMe bool) ([]domain.Summary, error) {
	var resp UsersResponse
	req := ListUsersRequest{RequesterID: requesterID, IncludeMe: includeMe}
	if err := a.call(ctx, "list-users", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Users, nil
}

// SearchUsers searches users via the search-users service.
func (a *userAdapter) SearchUsers(ctx context.Context, requesterID, term string, includeMe bool) ([]domain.Summary, error) {
	var resp UsersResponse
	req := SearchUsersRequest{RequesterID: requesterID, Term: term, IncludeMe: includeMe}
	if err := a.call(ctx, "search-users", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Users, nil
}

// UpdateProfile edits a profile via the update-profile service.
func (a *userAdapter) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*domain.User, error) {
	var resp GetUserResponse
	if err := a.call(ctx, "update-profile", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.User, nil
}

// DeleteUser deletes an account via the delete-user service.
func (a *userAdapter) DeleteUser(ctx context.Context, requesterID, userID string) error {
	var resp DeleteUserResponse
	req := DeleteUserRequest{RequesterID: requesterID, UserID: userID}
	if err := a.call(ctx, "delete-user", &req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if !resp.Deleted {
		return fmt.Errorf("user not deleted: %s", userID)
	}
	return nil
}
