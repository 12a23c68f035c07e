package task

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/vishu1803/Collaborative-task-manager/domain/task"
)

// GormStore is the SQLite-backed Store.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a new GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetTask retrieves a task by its ID.
func (s *GormStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// CreateTask saves a new task.
func (s *GormStore) CreateTask(ctx context.Context, t *domain.Task) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpdateTask writes the given columns of one task.
func (s *GormStore) UpdateTask(ctx context.Context, id string, fields map[string]any) error {
	result := s.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Updates(fields)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteTask hard-deletes a task.
func (s *GormStore) DeleteTask(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// CountTasks counts tasks matching f.
func (s *GormStore) CountTasks(ctx context.Context, f Filter) (int64, error) {
	var count int64
	if err := s.where(ctx, f).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// ListTasks returns a window of tasks matching f.
func (s *GormStore) ListTasks(ctx context.Context, f Filter, sort []SortKey, skip, limit int) ([]domain.Task, error) {
	q := s.where(ctx, f)
	for _, k := range sort {
		q = q.Order(orderExpr(k))
	}
	// Stable paging when sort keys tie.
	q = q.Order("id ASC")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var tasks []domain.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

type groupCount struct {
	Grp   string
	Total int64
}

// AggregateTaskCounts counts matching tasks per value of key.
func (s *GormStore) AggregateTaskCounts(ctx context.Context, f Filter, key GroupKey) (map[string]int64, error) {
	var col string
	switch key {
	case GroupByStatus:
		col = "status"
	case GroupByPriority:
		col = "priority"
	default:
		return nil, fmt.Errorf("unsupported group key %q", key)
	}

	var rows []groupCount
	err := s.where(ctx, f).
		Select(col + " AS grp, COUNT(*) AS total").
		Group(col).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tasks: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Grp] = r.Total
	}
	return out, nil
}

func (s *GormStore) where(ctx context.Context, f Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&domain.Task{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ExcludeStatus != "" {
		q = q.Where("status <> ?", f.ExcludeStatus)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.AssigneeID != "" {
		q = q.Where("assigned_to_id = ?", f.AssigneeID)
	}
	if f.CreatorID != "" {
		q = q.Where("creator_id = ?", f.CreatorID)
	}
	if f.ParticipantID != "" {
		q = q.Where("(creator_id = ? OR assigned_to_id = ?)", f.ParticipantID, f.ParticipantID)
	}
	if !f.DueBefore.IsZero() {
		q = q.Where("due_date < ?", f.DueBefore)
	}
	return q
}

// orderExpr builds an ORDER BY term. Priority and status sort by rank.
func orderExpr(k SortKey) string {
	dir := " ASC"
	if k.Desc {
		dir = " DESC"
	}
	switch k.Field {
	case domain.SortUpdatedAt:
		return "updated_at" + dir
	case domain.SortDueDate:
		return "due_date" + dir
	case domain.SortTitle:
		return "title" + dir
	case domain.SortPriority:
		return rankExpr("priority", priorityNames()) + dir
	case domain.SortStatus:
		return rankExpr("status", statusNames()) + dir
	default:
		return "created_at" + dir
	}
}

func rankExpr(col string, values []string) string {
	expr := "CASE " + col
	for i, v := range values {
		expr += fmt.Sprintf(" WHEN '%s' THEN %d", v, i+1)
	}
	return expr + " ELSE 0 END"
}

func priorityNames() []string {
	out := make([]string, len(domain.Priorities))
	for i, p := range domain.Priorities {
		out[i] = string(p)
	}
	return out
}

func statusNames() []string {
	out := make([]string, len(domain.Statuses))
	for i, s := range domain.Statuses {
		out[i] = string(s)
	}
	return out
}
