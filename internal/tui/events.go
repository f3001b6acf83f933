package tui

import (
	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/journal"
	"github.com/mark3labs/taskdeck/internal/mutation"
)

// SessionReadyMsg is sent once the first session fetch has resolved.
type SessionReadyMsg struct{}

// UserChangedMsg is sent when the session user changes.
type UserChangedMsg struct {
	User *api.User
}

// CacheChangedMsg is sent when a cached collection swaps its snapshot.
type CacheChangedMsg struct {
	Key string
}

// NoticeMsg carries a pipeline notice to the toast.
type NoticeMsg struct {
	Notice mutation.Notice
}

// BoardLoadedMsg is sent after the first task and category loads.
type BoardLoadedMsg struct {
	Err error
}

// AuthResultMsg is the result of a login or register submit.
type AuthResultMsg struct {
	User *api.User
	Err  error
}

// LogoutResultMsg is the result of a logout.
type LogoutResultMsg struct {
	Err error
}

// MutationDoneMsg is sent when a pipeline call returns. Failures have
// already been reported through a notice.
type MutationDoneMsg struct {
	Kind mutation.Kind
	Err  error
}

// RefreshDoneMsg is the result of a manual refresh.
type RefreshDoneMsg struct {
	Err error
}

// HistoryLoadedMsg carries recent journal activity for the sidebar.
type HistoryLoadedMsg struct {
	Recent []*journal.Mutation
	Err    error
}

// DescriptionEditedMsg is sent when the external editor exits.
type DescriptionEditedMsg struct {
	TaskID int64
	Text   string
	Err    error
}

// CreateTaskMsg is sent by the new-task modal on submit.
type CreateTaskMsg struct {
	Task api.NewTask
}
