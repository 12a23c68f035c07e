package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"

	"github.com/vishu1803/Collaborative-task-manager/domain/task"
	"github.com/vishu1803/Collaborative-task-manager/domain/user"
)

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	Task      task.Task  `json:"task"`
	Actor     user.Actor `json:"actor"`
	Timestamp time.Time  `json:"timestamp"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent carries the task before and after an accepted update.
type TaskUpdatedEvent struct {
	Before    task.Task  `json:"before"`
	After     task.Task  `json:"after"`
	Actor     user.Actor `json:"actor"`
	Timestamp time.Time  `json:"timestamp"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskDeletedEvent carries the last state of a deleted task.
type TaskDeletedEvent struct {
	Task      task.Task  `json:"task"`
	Actor     user.Actor `json:"actor"`
	Timestamp time.Time  `json:"timestamp"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
