package task

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
)

func TestPatch_UnmarshalDistinguishesOmittedFromNull(t *testing.T) {
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"New","assignedToId":null}`), &p))

	assert.True(t, p.Title.Present())
	assert.Equal(t, "New", p.Title.Value)

	assert.True(t, p.AssigneeID.Set)
	assert.True(t, p.AssigneeID.Null)

	assert.False(t, p.Description.Set)
	assert.False(t, p.Status.Set)
	assert.False(t, p.Empty())
}

func TestPatch_ValidateRejectsExplicitNull(t *testing.T) {
	p := Patch{Status: Null[Status]()}
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestPatch_Validate(t *testing.T) {
	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{"empty", Patch{}, false},
		{"title ok", Patch{Title: Some("  Fix bug  ")}, false},
		{"title blank", Patch{Title: Some("   ")}, true},
		{"title too long", Patch{Title: Some(strings.Repeat("a", 101))}, true},
		{"description too long", Patch{Description: Some(strings.Repeat("a", 1001))}, true},
		{"bad status", Patch{Status: Some(Status("DONE"))}, true},
		{"bad priority", Patch{Priority: Some(Priority("CRITICAL"))}, true},
		{"completed to todo", Patch{Status: Some(StatusTodo)}, false},
		{"zero due date", Patch{DueDate: Some(time.Time{})}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPatch_Fields(t *testing.T) {
	p := Patch{
		Title:      Some("Renamed"),
		Status:     Some(StatusReview),
		AssigneeID: Some("user-b"),
	}
	require.NoError(t, p.Validate())

	fields := p.Fields()
	assert.Equal(t, map[string]any{
		"title":          "Renamed",
		"status":         StatusReview,
		"assigned_to_id": "user-b",
	}, fields)
}

func TestNewTask_Validate(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	valid := NewTask{
		Title:       "Write docs",
		Description: "Document the API",
		DueDate:     now.Add(24 * time.Hour),
		Priority:    PriorityHigh,
		AssigneeID:  "user-b",
	}
	require.NoError(t, valid.Validate(now))

	past := valid
	past.DueDate = now.Add(-time.Hour)
	assert.Error(t, past.Validate(now))

	noAssignee := valid
	noAssignee.AssigneeID = ""
	assert.Error(t, noAssignee.Validate(now))

	defaulted := NewTask{Title: " t ", Description: " d "}
	defaulted.Normalize()
	assert.Equal(t, PriorityMedium, defaulted.Priority)
	assert.Equal(t, "t", defaulted.Title)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name              string
		page, size        int
		total             int64
		wantPages         int
		wantNext, wantPrv bool
	}{
		{"first of three", 1, 2, 5, 3, true, false},
		{"middle", 2, 2, 5, 3, true, true},
		{"last", 3, 2, 5, 3, false, true},
		{"empty", 1, 10, 0, 0, false, false},
		{"exact", 2, 5, 10, 2, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.size, tt.total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.wantPrv, p.HasPrev)
		})
	}
}

func TestQuery_Normalize(t *testing.T) {
	q := Query{Page: -3, PageSize: 500, SortBy: "bogus", SortOrder: "sideways"}
	q.Normalize()

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageSize, q.PageSize)
	assert.Equal(t, SortCreatedAt, q.SortBy)
	assert.Equal(t, SortDesc, q.SortOrder)

	q = Query{Page: 3, PageSize: 0, SortBy: SortPriority, SortOrder: SortAsc}
	q.Normalize()
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Equal(t, 20, q.Offset())
	assert.Equal(t, SortPriority, q.SortBy)
	assert.Equal(t, SortAsc, q.SortOrder)
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, CompletionRate(0, 0))
	assert.Equal(t, 100, CompletionRate(1, 1))
	assert.Equal(t, 33, CompletionRate(1, 3))
	assert.Equal(t, 67, CompletionRate(2, 3))
}

func TestRanks(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityUrgent.Rank())
	assert.Less(t, StatusTodo.Rank(), StatusCompleted.Rank())
	assert.False(t, Priority("nope").Valid())
	assert.True(t, ScopeAll.Valid())
	assert.False(t, Scope("mine").Valid())
}
