package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/user"
)

const (
	minSearchLength = 2
	maxSearchLength = 50
	searchLimit     = 20
	minNameLength   = 2
	maxNameLength   = 50
)

// Service holds user directory and profile rules.
type Service struct {
	repo *Repository
}

// NewService creates a new Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.InvalidInput("User ID is required")
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Failed to retrieve user")
	}
	return u, nil
}

// Summaries resolves ids to summaries. Unknown ids are left out.
func (s *Service) Summaries(ctx context.Context, ids []string) ([]domain.Summary, error) {
	users, err := s.repo.FindByIDs(ctx, dedup(ids))
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve users")
	}
	return summaries(users), nil
}

// ListUsers returns every user except the requester unless includeMe is set.
func (s *Service) ListUsers(ctx context.Context, requesterID string, includeMe bool) ([]domain.Summary, error) {
	exclude := requesterID
	if includeMe {
		exclude = ""
	}
	users, err := s.repo.List(ctx, exclude)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve users")
	}
	return summaries(users), nil
}

// Search finds users by name or email.
func (s *Service) Search(ctx context.Context, requesterID, term string, includeMe bool) ([]domain.Summary, error) {
	term = strings.TrimSpace(term)
	n := utf8.RuneCountInString(term)
	if n < minSearchLength {
		return nil, apperr.InvalidInput("Search term must be at least %d characters", minSearchLength)
	}
	if n > maxSearchLength {
		return nil, apperr.InvalidInput("Search term cannot exceed %d characters", maxSearchLength)
	}

	exclude := requesterID
	if includeMe {
		exclude = ""
	}
	users, err := s.repo.Search(ctx, term, exclude, searchLimit)
	if err != nil {
		return nil, apperr.Internal("Failed to search users")
	}
	return summaries(users), nil
}

// UpdateProfile changes name and/or email. Nil pointers leave a field as is.
func (s *Service) UpdateProfile(ctx context.Context, id string, name, email *string) (*domain.User, error) {
	fields := make(map[string]any)

	if name != nil {
		n := strings.TrimSpace(*name)
		if err := ValidateName(n); err != nil {
			return nil, err
		}
		fields["name"] = n
	}

	if email != nil {
		e := NormalizeEmail(*email)
		if _, err := mail.ParseAddress(e); err != nil {
			return nil, apperr.InvalidInput("Please provide a valid email")
		}
		taken, err := s.repo.EmailTaken(ctx, e, id)
		if err != nil {
			return nil, apperr.Internal("Failed to update profile")
		}
		if taken {
			return nil, apperr.InvalidInput("Email is already taken")
		}
		fields["email"] = e
	}

	if err := s.repo.UpdateProfile(ctx, id, fields); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.InvalidInput("Email is already taken")
		}
		return nil, mapRepoError(err, "Failed to update profile")
	}
	return s.GetUser(ctx, id)
}

// Delete removes the requester's own account. Accounts still referenced by
// tasks cannot be deleted.
func (s *Service) Delete(ctx context.Context, requesterID, targetID string) error {
	if requesterID != targetID {
		return apperr.Forbidden("You can only delete your own account")
	}
	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return mapRepoError(err, "Failed to delete user")
	}

	refs, err := s.repo.CountTaskReferences(ctx, targetID)
	if err != nil {
		return apperr.Internal("Failed to delete user")
	}
	if refs > 0 {
		return apperr.InvalidInput("Cannot delete user with existing tasks. Please reassign or delete tasks first.")
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return mapRepoError(err, "Failed to delete user")
	}
	return nil
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minNameLength {
		return apperr.InvalidInput("Name must be at least %d characters", minNameLength)
	}
	if n > maxNameLength {
		return apperr.InvalidInput("Name cannot exceed %d characters", maxNameLength)
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func mapRepoError(err error, msg string) error {
	if errors.Is(err, ErrUserNotFound) {
		return apperr.NotFound("User not found")
	}
	return apperr.Internal("%s", msg)
}

func summaries(users []domain.User) []domain.Summary {
	out := make([]domain.Summary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
