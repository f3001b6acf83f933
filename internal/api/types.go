// Package api is the client side of the task tracker's HTTP contract.
package api

import (
	"strconv"
	"time"
)

// Status is a task's workflow state. Values outside the four lanes are
// legal data and are carried through untouched.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusCompleted  Status = "completed"
)

// Statuses lists the lane statuses in board order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusReview, StatusCompleted}

// Valid reports whether s is one of the four lane statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label is the human heading for the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusReview:
		return "Review"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Task is a unit of work owned by the session user.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	CategoryID  *int64     `json:"categoryId"`
	Deadline    *time.Time `json:"deadline"`
	Priority    string     `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Key is the task id as used in drag payloads.
func (t Task) Key() string {
	return strconv.FormatInt(t.ID, 10)
}

// Category groups tasks under a named colour.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// User is the authenticated session principal.
type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Name     *string `json:"name"`
}

// DisplayName prefers the full name over the username.
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Username
}

// Credentials are passed through to /api/login and never stored.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the /api/register payload.
type Registration struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// TaskPatch is a partial update; nil fields are not sent.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	CategoryID  *int64     `json:"categoryId,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
}

// NewTask is the creation payload.
type NewTask struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      Status     `json:"status"`
	CategoryID  *int64     `json:"categoryId,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    string     `json:"priority,omitempty"`
}
