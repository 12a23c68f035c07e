package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vishu1803/Collaborative-task-manager/domain/task"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/user"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when another account already uses the email.
	ErrEmailTaken = errors.New("email already taken")
)

// Repository handles user persistence using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID finds a user by ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// FindByIDs returns the users among ids that exist, in no particular order.
func (r *Repository) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	return users, nil
}

// EmailTaken reports whether a user other than exceptID owns email.
func (r *Repository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// UpdateProfile writes name and/or email.
func (r *Repository) UpdateProfile(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountTaskReferences counts tasks that name the user as creator or assignee.
func (r *Repository) CountTaskReferences(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&task.Task{}).
		Where("creator_id = ? OR assigned_to_id = ?", id, id).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count task references: %w", err)
	}
	return count, nil
}

// Delete removes a user by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns all users ordered by name, optionally excluding one.
func (r *Repository) List(ctx context.Context, excludeID string) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var users []domain.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Search matches term case-insensitively against name and email.
func (r *Repository) Search(ctx context.Context, term, excludeID string, limit int) ([]domain.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	q := r.db.WithContext(ctx).
		Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')", pattern, pattern).
		Order("name ASC").
		Limit(limit)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var users []domain.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
