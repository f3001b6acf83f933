package journal

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/logger"
	"github.com/mark3labs/taskdeck/internal/mutation"
)

// Publisher is the write side of Store.
type Publisher interface {
	Publish(ctx context.Context, e Entry) error
}

// Recorder journals pipeline transitions under the current user's scope.
// Until a user is known nothing is written.
type Recorder struct {
	pub     Publisher
	host    string
	timeout time.Duration

	mu    sync.Mutex
	scope string
}

// NewRecorder creates a recorder for the API host.
func NewRecorder(pub Publisher, host string) *Recorder {
	return &Recorder{pub: pub, host: host, timeout: 2 * time.Second}
}

// Scope returns the scope entries are written under.
func (r *Recorder) Scope() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scope
}

// SetUser switches scope and journals the login or logout.
func (r *Recorder) SetUser(u *api.User) {
	r.mu.Lock()
	prev := r.scope
	if u != nil {
		r.scope = Scope(r.host, u.Username)
	}
	scope := r.scope
	r.mu.Unlock()

	switch {
	case u != nil && scope != prev:
		r.publish(Entry{Scope: scope, Type: TypeSession, Action: ActionLogin, Data: u.Username})
	case u == nil && prev != "":
		r.publish(Entry{Scope: prev, Type: TypeSession, Action: ActionLogout})
		r.mu.Lock()
		r.scope = ""
		r.mu.Unlock()
	}
}

// Record implements mutation.Recorder.
func (r *Recorder) Record(p mutation.Pending) {
	scope := r.Scope()
	if scope == "" {
		return
	}

	e := Entry{
		ID:     p.ID,
		Scope:  scope,
		Type:   TypeMutation,
		Action: action(p.Phase),
		Kind:   string(p.Kind),
		TaskID: p.TaskID,
	}
	if p.Phase == mutation.PhaseInFlight {
		e.Timestamp = p.IssuedAt
		if p.Input != nil {
			if data, err := sonic.MarshalString(p.Input); err == nil {
				e.Input = data
			}
		}
	}
	if p.Err != nil {
		e.Error = p.Err.Error()
	}
	r.publish(e)
}

func (r *Recorder) publish(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.pub.Publish(ctx, e); err != nil {
		logger.Warn("journal: %v", err)
	}
}

func action(p mutation.Phase) string {
	switch p {
	case mutation.PhaseSucceeded:
		return ActionSucceeded
	case mutation.PhaseFailed:
		return ActionFailed
	case mutation.PhaseSuperseded:
		return ActionSuperseded
	default:
		return ActionIssued
	}
}
