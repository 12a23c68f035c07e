package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	"github.com/vishu1803/Collaborative-task-manager/storage"
)

// UserModule provides user directory and profile services.
type UserModule struct {
	db      *gorm.DB
	service *Service
	logger  types.Logger
}

var _ mono.Module = (*UserModule)(nil)
var _ mono.ServiceProviderModule = (*UserModule)(nil)
var _ mono.HealthCheckableModule = (*UserModule)(nil)

func NewModule(db *gorm.DB, logger types.Logger) *UserModule {
	return &UserModule{
		db:      db,
		service: NewService(NewRepository(db)),
		logger:  logger.WithModule("user"),
	}
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name     string
		register func() error
	}{
		{"get-user", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-user", json.Unmarshal, json.Marshal, m.getUser)
		}},
		{"get-users", func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-users", json.Unmarshal, json.Marshal, m.getUsers)
		}},
		{"list-users", func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-users", json.Unmarshal, json.Marshal, m.listUsers)
		}},
		{"search-users", func() error {
			return helper.RegisterTypedRequestReplyService(container, "search-users", json.Unmarshal, json.Marshal, m.searchUsers)
		}},
		{"update-profile", func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-profile", json.Unmarshal, json.Marshal, m.updateProfile)
		}},
		{"delete-user", func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-user", json.Unmarshal, json.Marshal, m.deleteUser)
		}},
	}

	for _, s := range services {
		if err := s.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", s.name, err)
		}
	}

	m.logger.Info("Registered services", "services", "get-user, get-users, list-users, search-users, update-profile, delete-user")
	return nil
}

func (m *UserModule) getUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	u, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{Error: apperr.From(err)}, nil
	}
	return GetUserResponse{User: u}, nil
}

func (m *UserModule) getUsers(ctx context.Context, req GetUsersRequest, _ *mono.Msg) (UsersResponse, error) {
	users, err := m.service.Summaries(ctx, req.UserIDs)
	if err != nil {
		return UsersResponse{Error: apperr.From(err)}, nil
	}
	return UsersResponse{Users: users}, nil
}

func (m *UserModule) listUsers(ctx context.Context, req ListUsersRequest, _ *mono.Msg) (UsersResponse, error) {
	users, err := m.service.ListUsers(ctx, req.RequesterID, req.IncludeMe)
	if err != nil {
		return UsersResponse{Error: apperr.From(err)}, nil
	}
	return UsersResponse{Users: users}, nil
}

func (m *UserModule) searchUsers(ctx context.Context, req SearchUsersRequest, _ *mono.Msg) (UsersResponse, error) {
	users, err := m.service.Search(ctx, req.RequesterID, req.Term, req.IncludeMe)
	if err != nil {
		return UsersResponse{Error: apperr.From(err)}, nil
	}
	return UsersResponse{Users: users}, nil
}

func (m *UserModule) updateProfile(ctx context.Context, req UpdateProfileRequest, _ *mono.Msg) (GetUserResponse, error) {
	u, err := m.service.UpdateProfile(ctx, req.UserID, req.Name, req.Email)
	if err != nil {
		return GetUserResponse{Error: apperr.From(err)}, nil
	}
	m.logger.Info("Profile updated", "user_id", u.ID)
	return GetUserResponse{User: u}, nil
}

func (m *UserModule) deleteUser(ctx context.Context, req DeleteUserRequest, _ *mono.Msg) (DeleteUserResponse, error) {
	if err := m.service.Delete(ctx, req.RequesterID, req.UserID); err != nil {
		return DeleteUserResponse{Error: apperr.From(err)}, nil
	}
	m.logger.Info("User deleted", "user_id", req.UserID)
	return DeleteUserResponse{Deleted: true}, nil
}

func (m *UserModule) Start(_ context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not set")
	}
	m.logger.Info("Module started")
	return nil
}

func (m *UserModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

func (m *UserModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}
