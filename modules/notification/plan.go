package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/vishu1803/Collaborative-task-manager/domain/task"
	"github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// Kind is the notification type carried in the payload.
type Kind string

const (
	KindCreated         Kind = "created"
	KindUpdated         Kind = "updated"
	KindDeleted         Kind = "deleted"
	KindAssigned        Kind = "assigned"
	KindStatusChanged   Kind = "status_changed"
	KindPriorityChanged Kind = "priority_changed"
)

// Socket event names.
const (
	EventTaskCreated         = "task:created"
	EventTaskUpdated         = "task:updated"
	EventTaskDeleted         = "task:deleted"
	EventTaskAssigned        = "task:assigned"
	EventTaskStatusChanged   = "task:status_changed"
	EventTaskPriorityChanged = "task:priority_changed"
	EventNotification        = "notification"
)

// Notification is the payload delivered to clients. Task is the full task,
// or a task.Ref once the task is gone.
type Notification struct {
	Type      Kind       `json:"type"`
	Task      any        `json:"task"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
	Actor     user.Actor `json:"actor"`
}

// Dispatch sends one notification under each of Events to every recipient.
type Dispatch struct {
	Recipients   []string
	Events       []string
	Notification Notification
}

// Mutation is a task change as seen by the notifier. Before is nil for a
// creation and After is nil for a deletion.
type Mutation struct {
	Before *task.Task
	After  *task.Task
	Actor  user.Actor
	At     time.Time
}

// Recipients returns the distinct users a notification of kind goes to.
func Recipients(kind Kind, before, after *task.Task) []string {
	switch kind {
	case KindCreated:
		if after == nil {
			return nil
		}
		return dedup(after.AssigneeID)
	case KindDeleted:
		if before == nil {
			return nil
		}
		return dedup(before.AssigneeID)
	case KindAssigned:
		if before == nil || after == nil {
			return nil
		}
		return dedup(before.AssigneeID, after.AssigneeID)
	case KindUpdated, KindStatusChanged, KindPriorityChanged:
		t := after
		if t == nil {
			t = before
		}
		if t == nil {
			return nil
		}
		return dedup(t.CreatorID, t.AssigneeID)
	}
	return nil
}

// Plan works out who hears about m and under which events.
func Plan(m Mutation) []Dispatch {
	switch {
	case m.Before == nil && m.After != nil:
		return planCreated(m)
	case m.Before != nil && m.After == nil:
		return planDeleted(m)
	case m.Before != nil && m.After != nil:
		return planUpdated(m)
	}
	return nil
}

func planCreated(m Mutation) []Dispatch {
	n := m.notification(KindCreated, *m.After,
		fmt.Sprintf("%s created a new task: %q", m.Actor.Name, m.After.Title))
	return []Dispatch{{
		Recipients:   Recipients(KindCreated, nil, m.After),
		Events:       []string{EventTaskCreated, EventTaskAssigned, EventNotification},
		Notification: n,
	}}
}

func planDeleted(m Mutation) []Dispatch {
	n := m.notification(KindDeleted, m.Before.Ref(),
		fmt.Sprintf("%s deleted task: %q", m.Actor.Name, m.Before.Title))
	return []Dispatch{{
		Recipients:   Recipients(KindDeleted, m.Before, nil),
		Events:       []string{EventTaskDeleted, EventNotification},
		Notification: n,
	}}
}

func planUpdated(m Mutation) []Dispatch {
	before, after := m.Before, m.After
	var out []Dispatch

	if before.Status != after.Status {
		out = append(out, Dispatch{
			Recipients: Recipients(KindStatusChanged, before, after),
			Events:     []string{EventTaskStatusChanged, EventNotification},
			Notification: m.notification(KindStatusChanged, *after,
				fmt.Sprintf("%s changed status of %q from %s to %s", m.Actor.Name, after.Title, before.Status, after.Status)),
		})
	}

	if before.Priority != after.Priority {
		out = append(out, Dispatch{
			Recipients: Recipients(KindPriorityChanged, before, after),
			Events:     []string{EventTaskPriorityChanged, EventNotification},
			Notification: m.notification(KindPriorityChanged, *after,
				fmt.Sprintf("%s changed priority of %q from %s to %s", m.Actor.Name, after.Title, before.Priority, after.Priority)),
		})
	}

	if before.AssigneeID != after.AssigneeID {
		n := m.notification(KindAssigned, *after,
			fmt.Sprintf("%s reassigned task: %q", m.Actor.Name, after.Title))
		if before.AssigneeID != "" {
			out = append(out, Dispatch{
				Recipients:   dedup(before.AssigneeID),
				Events:       []string{EventTaskUpdated},
				Notification: n,
			})
		}
		out = append(out, Dispatch{
			Recipients:   dedup(after.AssigneeID),
			Events:       []string{EventTaskAssigned, EventNotification},
			Notification: n,
		})
		return out
	}

	if changes := fieldChanges(before, after); len(changes) > 0 {
		out = append(out, Dispatch{
			Recipients: Recipients(KindUpdated, before, after),
			Events:     []string{EventTaskUpdated, EventNotification},
			Notification: m.notification(KindUpdated, *after,
				fmt.Sprintf("%s updated task: %q (%s)", m.Actor.Name, after.Title, strings.Join(changes, ", "))),
		})
	}
	return out
}

// fieldChanges lists the plain fields that differ.
func fieldChanges(before, after *task.Task) []string {
	var changes []string
	if before.Title != after.Title {
		changes = append(changes, "title")
	}
	if before.Description != after.Description {
		changes = append(changes, "description")
	}
	if !before.DueDate.Equal(after.DueDate) {
		changes = append(changes, "due date")
	}
	return changes
}

func (m Mutation) notification(kind Kind, t any, msg string) Notification {
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}
	return Notification{
		Type:      kind,
		Task:      t,
		Message:   msg,
		Timestamp: at.UTC(),
		Actor:     m.Actor,
	}
}

// dedup drops empty and repeated ids, keeping first-seen order.
func dedup(ids ...string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
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
