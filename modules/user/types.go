package user

import (
	"context"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// GetUserRequest is the request for get-user.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse carries the user or a typed error.
type GetUserResponse struct {
	User  *domain.User  `json:"user,omitempty"`
	Error *apperr.Error `json:"error,omitempty"`
}

// GetUsersRequest is the request for get-users.
type GetUsersRequest struct {
	UserIDs []string `json:"user_ids"`
}

// UsersResponse carries a list of summaries or a typed error.
type UsersResponse struct {
	Users []domain.Summary `json:"users"`
	Error *apperr.Error    `json:"error,omitempty"`
}

// ListUsersRequest is the request for list-users.
type ListUsersRequest struct {
	RequesterID string `json:"requester_id"`
	IncludeMe   bool   `json:"include_me"`
}

// SearchUsersRequest is the request for search-users.
type SearchUsersRequest struct {
	RequesterID string `json:"requester_id"`
	Term        string `json:"term"`
	IncludeMe   bool   `json:"include_me"`
}

// UpdateProfileRequest is the request for update-profile.
type UpdateProfileRequest struct {
	UserID string  `json:"user_id"`
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
}

// DeleteUserRequest is the request for delete-user.
type DeleteUserRequest struct {
	RequesterID string `json:"requester_id"`
	UserID      string `json:"user_id"`
}

// DeleteUserResponse reports the outcome of delete-user.
type DeleteUserResponse struct {
	Deleted bool          `json:"deleted"`
	Error   *apperr.Error `json:"error,omitempty"`
}

// UserPort defines the interface other modules use to reach the user directory.
type UserPort interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUsers(ctx context.Context, userIDs []string) ([]domain.Summary, error)
	ListUsers(ctx context.Context, requesterID string, includeMe bool) ([]domain.Summary, error)
	SearchUsers(ctx context.Context, requesterID, term string, includeMe bool) ([]domain.Summary, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, requesterID, userID string) error
}
