package journal

import "time"

// Entry types and actions.
const (
	TypeMutation = "mutation"
	TypeSession  = "session"

	ActionIssued     = "issued"
	ActionSucceeded  = "succeeded"
	ActionFailed     = "failed"
	ActionSuperseded = "superseded"

	ActionLogin  = "login"
	ActionLogout = "logout"
)

// Mutation is a reduced view of one mutation's lifecycle.
type Mutation struct {
	ID        string
	Kind      string
	TaskID    int64
	Input     string
	Outcome   string
	Error     string
	IssuedAt  time.Time
	SettledAt time.Time
}

// Settled reports whether the mutation reached a final outcome.
func (m *Mutation) Settled() bool {
	return m.Outcome != "" && m.Outcome != ActionIssued
}

// SessionEvent is a login or logout.
type SessionEvent struct {
	Action string
	User   string
	At     time.Time
}

// History is the state rebuilt from a scope's entries.
type History struct {
	Scope     string
	Mutations []*Mutation
	Sessions  []SessionEvent

	byID map[string]*Mutation
}

// NewHistory returns an empty history.
func NewHistory(scope string) *History {
	return &History{Scope: scope, byID: make(map[string]*Mutation)}
}

// Apply folds one entry into the history.
func (h *History) Apply(e Entry) {
	switch e.Type {
	case TypeMutation:
		h.applyMutation(e)
	case TypeSession:
		h.Sessions = append(h.Sessions, SessionEvent{Action: e.Action, User: e.Data, At: e.Timestamp})
	}
}

func (h *History) applyMutation(e Entry) {
	m, ok := h.byID[e.ID]
	if !ok {
		m = &Mutation{ID: e.ID, Kind: e.Kind, TaskID: e.TaskID, IssuedAt: e.Timestamp}
		h.byID[e.ID] = m
		h.Mutations = append(h.Mutations, m)
	}
	switch e.Action {
	case ActionIssued:
		m.Input = e.Input
		m.IssuedAt = e.Timestamp
		if m.Outcome == "" {
			m.Outcome = ActionIssued
		}
	case ActionSucceeded, ActionFailed, ActionSuperseded:
		m.Outcome = e.Action
		m.Error = e.Error
		m.SettledAt = e.Timestamp
	}
}

// Recent returns up to n mutations, newest first.
func (h *History) Recent(n int) []*Mutation {
	out := make([]*Mutation, 0, n)
	for i := len(h.Mutations) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.Mutations[i])
	}
	return out
}

// Failed returns the mutations that ended in failure.
func (h *History) Failed() []*Mutation {
	var out []*Mutation
	for _, m := range h.Mutations {
		if m.Outcome == ActionFailed {
			out = append(out, m)
		}
	}
	return out
}
