package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishu1803/Collaborative-task-manager/domain/task"
	"github.com/vishu1803/Collaborative-task-manager/domain/user"
)

var (
	actor = user.Actor{ID: "creator", Name: "Casey"}
	at    = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func sampleTask() task.Task {
	return task.Task{
		ID:          "t1",
		Title:       "Ship release",
		Description: "cut the tag",
		DueDate:     at.Add(24 * time.Hour),
		Priority:    task.PriorityMedium,
		Status:      task.StatusTodo,
		CreatorID:   "creator",
		AssigneeID:  "assignee",
	}
}

func TestRecipients(t *testing.T) {
	base := sampleTask()
	self := base
	self.AssigneeID = base.CreatorID
	moved := base
	moved.AssigneeID = "newcomer"

	tests := []struct {
		name   string
		kind   Kind
		before *task.Task
		after  *task.Task
		want   []string
	}{
		{"created goes to assignee", KindCreated, nil, &base, []string{"assignee"}},
		{"deleted goes to assignee", KindDeleted, &base, nil, []string{"assignee"}},
		{"updated goes to both", KindUpdated, &base, &base, []string{"creator", "assignee"}},
		{"status change dedups self-assigned", KindStatusChanged, &self, &self, []string{"creator"}},
		{"priority change", KindPriorityChanged, &base, &base, []string{"creator", "assignee"}},
		{"assigned covers old and new", KindAssigned, &base, &moved, []string{"assignee", "newcomer"}},
		{"unknown kind", Kind("archived"), &base, &base, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recipients(tt.kind, tt.before, tt.after))
		})
	}
}

func TestPlan_Created(t *testing.T) {
	created := sampleTask()
	plan := Plan(Mutation{After: &created, Actor: actor, At: at})

	require.Len(t, plan, 1)
	d := plan[0]
	assert.Equal(t, []string{"assignee"}, d.Recipients)
	assert.Equal(t, []string{EventTaskCreated, EventTaskAssigned, EventNotification}, d.Events)
	assert.Equal(t, KindCreated, d.Notification.Type)
	assert.Equal(t, `Casey created a new task: "Ship release"`, d.Notification.Message)
	assert.Equal(t, at, d.Notification.Timestamp)
	assert.Equal(t, actor, d.Notification.Actor)
}

func TestPlan_Deleted(t *testing.T) {
	gone := sampleTask()
	plan := Plan(Mutation{Before: &gone, Actor: actor, At: at})

	require.Len(t, plan, 1)
	assert.Equal(t, []string{"assignee"}, plan[0].Recipients)
	assert.Equal(t, []string{EventTaskDeleted, EventNotification}, plan[0].Events)
	assert.Equal(t, task.Ref{ID: "t1", Title: "Ship release"}, plan[0].Notification.Task)
}

func TestPlan_FieldUpdate(t *testing.T) {
	before := sampleTask()
	after := before
	after.Title = "Ship release 2"
	after.DueDate = before.DueDate.Add(time.Hour)

	plan := Plan(Mutation{Before: &before, After: &after, Actor: actor, At: at})
	require.Len(t, plan, 1)
	assert.Equal(t, KindUpdated, plan[0].Notification.Type)
	assert.Equal(t, []string{"creator", "assignee"}, plan[0].Recipients)
	assert.Equal(t, []string{EventTaskUpdated, EventNotification}, plan[0].Events)
	assert.Equal(t, `Casey updated task: "Ship release 2" (title, due date)`, plan[0].Notification.Message)
}

func TestPlan_StatusChangeSelfAssigned(t *testing.T) {
	before := sampleTask()
	before.AssigneeID = before.CreatorID
	after := before
	after.Status = task.StatusCompleted

	plan := Plan(Mutation{Before: &before, After: &after, Actor: actor, At: at})
	require.Len(t, plan, 1)
	assert.Equal(t, []string{"creator"}, plan[0].Recipients)
	assert.Equal(t, KindStatusChanged, plan[0].Notification.Type)
	assert.Contains(t, plan[0].Notification.Message, "from TODO to COMPLETED")
}

func TestPlan_PriorityAndStatusTogether(t *testing.T) {
	before := sampleTask()
	after := before
	after.Status = task.StatusInProgress
	after.Priority = task.PriorityUrgent

	plan := Plan(Mutation{Before: &before, After: &after, Actor: actor, At: at})
	require.Len(t, plan, 2)
	assert.Equal(t, KindStatusChanged, plan[0].Notification.Type)
	assert.Equal(t, KindPriorityChanged, plan[1].Notification.Type)
	assert.Contains(t, plan[1].Notification.Message, "from MEDIUM to URGENT")
}

func TestPlan_Reassignment(t *testing.T) {
	before := sampleTask()
	after := before
	after.AssigneeID = "newcomer"
	after.Title = "Renamed too"

	plan := Plan(Mutation{Before: &before, After: &after, Actor: actor, At: at})
	require.Len(t, plan, 2, "reassignment replaces the generic update")

	assert.Equal(t, []string{"assignee"}, plan[0].Recipients)
	assert.Equal(t, []string{EventTaskUpdated}, plan[0].Events)
	assert.Equal(t, []string{"newcomer"}, plan[1].Recipients)
	assert.Equal(t, []string{EventTaskAssigned, EventNotification}, plan[1].Events)
	assert.Equal(t, KindAssigned, plan[1].Notification.Type)

	for _, d := range plan {
		assert.NotContains(t, d.Recipients, "creator")
	}
}

func TestPlan_NoChange(t *testing.T) {
	before := sampleTask()
	after := before
	assert.Empty(t, Plan(Mutation{Before: &before, After: &after, Actor: actor}))
	assert.Empty(t, Plan(Mutation{}))
}
