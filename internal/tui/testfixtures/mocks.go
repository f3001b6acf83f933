package testfixtures

import (
	"context"
	"sync"

	"github.com/mark3labs/taskdeck/internal/api"
)

// FakeRemote is an in-memory task server. It satisfies the session,
// task cache and mutation remotes so a full client stack can run without
// HTTP.
type FakeRemote struct {
	mu sync.Mutex

	user       *api.User
	password   string
	loggedIn   bool
	tasks      []api.Task
	categories []api.Category
	nextID     int64

	// Errors to return from the matching calls.
	CurrentUserError error
	ListError        error
	UpdateError      error

	// Counters and last inputs for verification.
	ListTasksCalls int
	UpdateCalls    int
	LastPatchID    int64
	LastPatch      api.TaskPatch
	Created        []api.NewTask
	Deleted        []int64
}

// NewFakeRemote creates a server knowing User() with Tasks() and
// Categories(). loggedIn sets whether a session already exists.
func NewFakeRemote(loggedIn bool) *FakeRemote {
	return &FakeRemote{
		user:       User(),
		password:   FixedPassword,
		loggedIn:   loggedIn,
		tasks:      Tasks(),
		categories: Categories(),
		nextID:     100,
	}
}

// CurrentUser returns the user or api.ErrUnauthenticated.
func (f *FakeRemote) CurrentUser(ctx context.Context) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CurrentUserError != nil {
		return nil, f.CurrentUserError
	}
	if !f.loggedIn {
		return nil, api.ErrUnauthenticated
	}
	u := *f.user
	return &u, nil
}

// Login checks the fixed credentials.
func (f *FakeRemote) Login(ctx context.Context, creds api.Credentials) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if creds.Username != f.user.Username || creds.Password != f.password {
		return nil, &api.StatusError{Code: 401, Message: "Invalid username or password"}
	}
	f.loggedIn = true
	u := *f.user
	return &u, nil
}

// Register replaces the known user.
func (f *FakeRemote) Register(ctx context.Context, reg api.Registration) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reg.Username == f.user.Username {
		return nil, &api.StatusError{Code: 400, Message: "Username already exists"}
	}
	f.user = &api.User{ID: f.user.ID + 1, Username: reg.Username, Name: reg.Name, Email: reg.Email}
	f.password = reg.Password
	f.loggedIn = true
	u := *f.user
	return &u, nil
}

// Logout ends the session.
func (f *FakeRemote) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = false
	return nil
}

// ListTasks returns a copy of the tasks.
func (f *FakeRemote) ListTasks(ctx context.Context) ([]api.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListTasksCalls++
	if f.ListError != nil {
		return nil, f.ListError
	}
	return append([]api.Task(nil), f.tasks...), nil
}

// ListCategories returns a copy of the categories.
func (f *FakeRemote) ListCategories(ctx context.Context) ([]api.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListError != nil {
		return nil, f.ListError
	}
	return append([]api.Category(nil), f.categories...), nil
}

// CreateTask appends a task.
func (f *FakeRemote) CreateTask(ctx context.Context, in api.NewTask) (*api.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Created = append(f.Created, in)
	f.nextID++
	t := api.Task{
		ID:          f.nextID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		CategoryID:  in.CategoryID,
		Deadline:    in.Deadline,
		Priority:    in.Priority,
		CreatedAt:   FixedTime,
	}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

// UpdateTask applies the set fields of patch.
func (f *FakeRemote) UpdateTask(ctx context.Context, id int64, patch api.TaskPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	f.LastPatchID = id
	f.LastPatch = patch
	if f.UpdateError != nil {
		return f.UpdateError
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.CategoryID != nil {
			t.CategoryID = patch.CategoryID
		}
		if patch.Deadline != nil {
			t.Deadline = patch.Deadline
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		return nil
	}
	return &api.StatusError{Code: 404, Message: "Task not found"}
}

// DeleteTask removes a task.
func (f *FakeRemote) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			f.Deleted = append(f.Deleted, id)
			return nil
		}
	}
	return &api.StatusError{Code: 404, Message: "Task not found"}
}

// Task returns the server's copy of a task.
func (f *FakeRemote) Task(id int64) (api.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return api.Task{}, false
}

// LoggedIn reports whether a session exists.
func (f *FakeRemote) LoggedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggedIn
}
