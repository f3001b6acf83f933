package testfixtures

import (
	"time"

	"github.com/mark3labs/taskdeck/internal/api"
)

// Fixed test values.
const (
	FixedUsername = "alice"
	FixedPassword = "secret"
	WorkCategory  = int64(1)
	HomeCategory  = int64(2)
)

var (
	FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

// Categories returns two categories.
func Categories() []api.Category {
	return []api.Category{
		{ID: WorkCategory, Name: "Work", Color: "blue"},
		{ID: HomeCategory, Name: "Home", Color: "green"},
	}
}

// Tasks returns one task per lane, a second pending task in another
// category and one task whose status has no lane.
func Tasks() []api.Task {
	return []api.Task{
		{ID: 1, Title: "Write report", Status: api.StatusPending, CategoryID: ptr(WorkCategory), Priority: "high", CreatedAt: FixedTime},
		{ID: 2, Title: "Buy groceries", Status: api.StatusPending, CategoryID: ptr(HomeCategory), Priority: "low", CreatedAt: FixedTime},
		{ID: 3, Title: "Fix login bug", Status: api.StatusInProgress, CategoryID: ptr(WorkCategory), Priority: "medium", Description: ptr("Repro with **expired** cookie."), CreatedAt: FixedTime},
		{ID: 4, Title: "Review PR", Status: api.StatusReview, CategoryID: ptr(WorkCategory), Priority: "medium", Deadline: ptr(FixedTime.Add(-24 * time.Hour)), CreatedAt: FixedTime},
		{ID: 5, Title: "Ship v1", Status: api.StatusCompleted, Priority: "medium", CreatedAt: FixedTime},
		{ID: 6, Title: "Blocked on vendor", Status: api.Status("blocked"), CategoryID: ptr(WorkCategory), CreatedAt: FixedTime},
	}
}

// User returns the fixed test user.
func User() *api.User {
	return &api.User{ID: 1, Username: FixedUsername, Name: ptr("Alice")}
}
