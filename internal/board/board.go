// Package board holds the pure projections from a task list to the kanban
// view: category filtering, lane partitioning and display lookups.
package board

import (
	"strings"
	"time"

	"github.com/mark3labs/taskdeck/internal/api"
)

// Filter returns the tasks whose category equals category, in their
// original order. A nil selector returns every task.
func Filter(tasks []api.Task, category *int64) []api.Task {
	if category == nil {
		out := make([]api.Task, len(tasks))
		copy(out, tasks)
		return out
	}
	out := make([]api.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.CategoryID != nil && *t.CategoryID == *category {
			out = append(out, t)
		}
	}
	return out
}

// Lanes is the four-column partition of a task list.
type Lanes struct {
	Pending    []api.Task
	InProgress []api.Task
	Review     []api.Task
	Completed  []api.Task
}

// Partition places each task in the lane matching its status. Tasks with
// any other status appear in no lane. Relative order is preserved.
func Partition(tasks []api.Task) Lanes {
	var l Lanes
	for _, t := range tasks {
		switch t.Status {
		case api.StatusPending:
			l.Pending = append(l.Pending, t)
		case api.StatusInProgress:
			l.InProgress = append(l.InProgress, t)
		case api.StatusReview:
			l.Review = append(l.Review, t)
		case api.StatusCompleted:
			l.Completed = append(l.Completed, t)
		}
	}
	return l
}

// Lane returns the tasks for a lane status.
func (l Lanes) Lane(s api.Status) []api.Task {
	switch s {
	case api.StatusPending:
		return l.Pending
	case api.StatusInProgress:
		return l.InProgress
	case api.StatusReview:
		return l.Review
	case api.StatusCompleted:
		return l.Completed
	}
	return nil
}

// Len is the number of laned tasks.
func (l Lanes) Len() int {
	return len(l.Pending) + len(l.InProgress) + len(l.Review) + len(l.Completed)
}

// Unlaned returns the tasks Partition excludes, in order.
func Unlaned(tasks []api.Task) []api.Task {
	var out []api.Task
	for _, t := range tasks {
		if !t.Status.Valid() {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the task with the given id.
func Find(tasks []api.Task, id int64) (api.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return api.Task{}, false
}

// Priority levels, ordered.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// ParsePriority maps the free-form field onto a level. Unknown values are
// treated as medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "medium"
	}
}

// IsOverdue reports whether an unfinished task is past its deadline.
func IsOverdue(t api.Task, now time.Time) bool {
	if t.Deadline == nil || t.Status == api.StatusCompleted {
		return false
	}
	return t.Deadline.Before(now)
}
