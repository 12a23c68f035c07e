package task

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
)

// NewTask is the input for creating a task.
type NewTask struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Priority    Priority  `json:"priority"`
	// Status is accepted for compatibility and ignored: new tasks always start as TODO.
	Status     Status `json:"status,omitempty"`
	AssigneeID string `json:"assignedToId"`
}

// Normalize trims text fields and fills the default priority.
func (n *NewTask) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	n.Description = strings.TrimSpace(n.Description)
	n.AssigneeID = strings.TrimSpace(n.AssigneeID)
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
}

// Validate checks field constraints. now is used for the due date check.
func (n *NewTask) Validate(now time.Time) error {
	if err := validateTitle(n.Title); err != nil {
		return err
	}
	if err := validateDescription(n.Description); err != nil {
		return err
	}
	if n.DueDate.IsZero() {
		return apperr.InvalidInput("Due date is required")
	}
	if !n.DueDate.After(now) {
		return apperr.InvalidInput("Due date must be a valid future date")
	}
	if !n.Priority.Valid() {
		return apperr.InvalidInput("Invalid priority: %s", n.Priority)
	}
	if n.AssigneeID == "" {
		return apperr.InvalidInput("Assigned user ID is required")
	}
	return nil
}

// Patch is a partial update. Omitted fields are left untouched.
type Patch struct {
	Title       Optional[string]    `json:"title,omitzero"`
	Description Optional[string]    `json:"description,omitzero"`
	DueDate     Optional[time.Time] `json:"dueDate,omitzero"`
	Priority    Optional[Priority]  `json:"priority,omitzero"`
	Status      Optional[Status]    `json:"status,omitzero"`
	AssigneeID  Optional[string]    `json:"assignedToId,omitzero"`
}

// Empty reports whether no field was supplied.
func (p *Patch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.DueDate.Set &&
		!p.Priority.Set && !p.Status.Set && !p.AssigneeID.Set
}

// Validate rejects explicit nulls and malformed values.
func (p *Patch) Validate() error {
	if p.Title.Set {
		if p.Title.Null {
			return apperr.InvalidInput("Title cannot be null")
		}
		p.Title.Value = strings.TrimSpace(p.Title.Value)
		if err := validateTitle(p.Title.Value); err != nil {
			return err
		}
	}
	if p.Description.Set {
		if p.Description.Null {
			return apperr.InvalidInput("Description cannot be null")
		}
		p.Description.Value = strings.TrimSpace(p.Description.Value)
		if err := validateDescription(p.Description.Value); err != nil {
			return err
		}
	}
	if p.DueDate.Set {
		if p.DueDate.Null || p.DueDate.Value.IsZero() {
			return apperr.InvalidInput("Due date must be a valid date")
		}
	}
	if p.Priority.Set {
		if p.Priority.Null || !p.Priority.Value.Valid() {
			return apperr.InvalidInput("Invalid priority")
		}
	}
	if p.Status.Set {
		if p.Status.Null || !p.Status.Value.Valid() {
			return apperr.InvalidInput("Invalid status")
		}
	}
	if p.AssigneeID.Set {
		if p.AssigneeID.Null {
			return apperr.InvalidInput("Assigned user ID cannot be null")
		}
		p.AssigneeID.Value = strings.TrimSpace(p.AssigneeID.Value)
		if p.AssigneeID.Value == "" {
			return apperr.InvalidInput("Assigned user ID is required")
		}
	}
	return nil
}

// Fields returns the store column updates for the supplied fields.
func (p *Patch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Title.Present() {
		fields["title"] = p.Title.Value
	}
	if p.Description.Present() {
		fields["description"] = p.Description.Value
	}
	if p.DueDate.Present() {
		fields["due_date"] = p.DueDate.Value
	}
	if p.Priority.Present() {
		fields["priority"] = p.Priority.Value
	}
	if p.Status.Present() {
		fields["status"] = p.Status.Value
	}
	if p.AssigneeID.Present() {
		fields["assigned_to_id"] = p.AssigneeID.Value
	}
	return fields
}

func validateTitle(title string) error {
	if title == "" {
		return apperr.InvalidInput("Title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperr.InvalidInput("Title cannot exceed %d characters", MaxTitleLength)
	}
	return nil
}

func validateDescription(desc string) error {
	if desc == "" {
		return apperr.InvalidInput("Description is required")
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return apperr.InvalidInput("Description cannot exceed %d characters", MaxDescriptionLength)
	}
	return nil
}
