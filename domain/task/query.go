package task

import (
	"math"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortField names a sortable task attribute.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortDueDate   SortField = "dueDate"
	SortTitle     SortField = "title"
	SortPriority  SortField = "priority"
	SortStatus    SortField = "status"
)

func (f SortField) Valid() bool {
	switch f {
	case SortCreatedAt, SortUpdatedAt, SortDueDate, SortTitle, SortPriority, SortStatus:
		return true
	}
	return false
}

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query selects a page of tasks.
type Query struct {
	Page       int       `json:"page"`
	PageSize   int       `json:"limit"`
	SortBy     SortField `json:"sortBy,omitempty"`
	SortOrder  SortOrder `json:"sortOrder,omitempty"`
	Status     Status    `json:"status,omitempty"`
	Priority   Priority  `json:"priority,omitempty"`
	AssigneeID string    `json:"assignedToId,omitempty"`
	CreatorID  string    `json:"creatorId,omitempty"`
	Overdue    bool      `json:"overdue,omitempty"`
}

// Normalize coerces paging values into range and fills sort defaults.
func (q *Query) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if !q.SortBy.Valid() {
		q.SortBy = SortCreatedAt
	}
	if q.SortOrder != SortAsc {
		q.SortOrder = SortDesc
	}
}

// Offset is the number of rows skipped for the current page.
func (q *Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewPagination computes page metadata. An empty result has zero pages.
func NewPagination(page, pageSize int, total int64) Pagination {
	totalPages := 0
	if total > 0 && pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return Pagination{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// Page is one page of tasks.
type Page struct {
	Items      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}
