package task

import (
	"time"

	"github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Priorities lists every priority in ascending rank.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Rank orders priorities LOW < MEDIUM < HIGH < URGENT. Unknown values rank 0.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if v == p {
			return i + 1
		}
	}
	return 0
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

// Status is a task's place in the workflow.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusCompleted  Status = "COMPLETED"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusCompleted}

// Rank orders statuses TODO < IN_PROGRESS < REVIEW < COMPLETED. Unknown values rank 0.
func (s Status) Rank() int {
	for i, v := range Statuses {
		if v == s {
			return i + 1
		}
	}
	return 0
}

func (s Status) Valid() bool { return s.Rank() > 0 }

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
)

// Task is a unit of work owned by a creator and carried out by an assignee.
type Task struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	Title       string    `gorm:"not null;type:text" json:"title"`
	Description string    `gorm:"not null;type:text" json:"description"`
	DueDate     time.Time `gorm:"not null;index" json:"dueDate"`
	Priority    Priority  `gorm:"not null;type:text;index" json:"priority"`
	Status      Status    `gorm:"not null;type:text;index" json:"status"`
	CreatorID   string    `gorm:"not null;type:text;index" json:"creatorId"`
	AssigneeID  string    `gorm:"column:assigned_to_id;not null;type:text;index" json:"assignedToId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Creator  *user.Summary `gorm:"-" json:"creator,omitempty"`
	Assignee *user.Summary `gorm:"-" json:"assignedTo,omitempty"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// Involves reports whether userID is the task's creator or assignee.
func (t *Task) Involves(userID string) bool {
	return t.CreatorID == userID || t.AssigneeID == userID
}

// Ref is the minimal snapshot kept for a task that no longer exists.
type Ref struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (t *Task) Ref() Ref {
	return Ref{ID: t.ID, Title: t.Title}
}

// Scope selects which of a user's tasks to return.
type Scope string

const (
	ScopeAssigned Scope = "assigned"
	ScopeCreated  Scope = "created"
	ScopeAll      Scope = "all"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeAssigned, ScopeCreated, ScopeAll:
		return true
	}
	return false
}
