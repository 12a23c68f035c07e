package task

import "math"

// StatusCounts holds a count per status.
type StatusCounts struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"inProgress"`
	Review     int64 `json:"review"`
	Completed  int64 `json:"completed"`
}

// PriorityCounts holds a count per priority.
type PriorityCounts struct {
	Low    int64 `json:"low"`
	Medium int64 `json:"medium"`
	High   int64 `json:"high"`
	Urgent int64 `json:"urgent"`
}

// Stats summarises a set of tasks.
type Stats struct {
	Total          int64          `json:"total"`
	ByStatus       StatusCounts   `json:"byStatus"`
	Overdue        int64          `json:"overdue"`
	CompletionRate int            `json:"completionRate"`
	PriorityCounts PriorityCounts `json:"priorityCounts"`
}

// UserStats summarises one user's involvement.
type UserStats struct {
	TotalCreated   int64 `json:"totalCreated"`
	TotalAssigned  int64 `json:"totalAssigned"`
	Completed      int64 `json:"completedTasks"`
	Overdue        int64 `json:"overdueTasks"`
	CompletionRate int   `json:"completionRate"`
}

// CompletionRate returns round(completed/total*100), or 0 for an empty set.
func CompletionRate(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// StatusCountsFrom folds grouped counts keyed by status.
func StatusCountsFrom(counts map[string]int64) StatusCounts {
	return StatusCounts{
		Todo:       counts[string(StatusTodo)],
		InProgress: counts[string(StatusInProgress)],
		Review:     counts[string(StatusReview)],
		Completed:  counts[string(StatusCompleted)],
	}
}

// PriorityCountsFrom folds grouped counts keyed by priority.
func PriorityCountsFrom(counts map[string]int64) PriorityCounts {
	return PriorityCounts{
		Low:    counts[string(PriorityLow)],
		Medium: counts[string(PriorityMedium)],
		High:   counts[string(PriorityHigh)],
		Urgent: counts[string(PriorityUrgent)],
	}
}
