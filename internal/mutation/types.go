package mutation

import (
	"fmt"
	"time"
)

// Kind is the sort of change a mutation makes.
type Kind string

const (
	KindStatus Kind = "status"
	KindEdit   Kind = "edit"
	KindCreate Kind = "create"
	KindDelete Kind = "delete"
)

// Phase is where a mutation is in its lifecycle.
type Phase string

const (
	PhaseInFlight   Phase = "in-flight"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
	PhaseSuperseded Phase = "superseded"
)

// Pending is one mutation as tracked by the pipeline.
type Pending struct {
	ID       string
	Key      string
	Kind     Kind
	TaskID   int64
	Input    any
	Phase    Phase
	Err      error
	IssuedAt time.Time
}

// Level distinguishes success and failure notices.
type Level int

const (
	LevelSuccess Level = iota
	LevelFailure
)

// Notice is a user-facing result of a mutation.
type Notice struct {
	Level   Level
	Title   string
	Message string
	Kind    Kind
	TaskID  int64
}

// Notifier receives notices. Implementations must not block.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a func to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Recorder persists lifecycle transitions. Failures are the recorder's
// problem; the pipeline never waits on them for correctness.
type Recorder interface {
	Record(p Pending)
}

// Recorders fans transitions out to each recorder in order.
type Recorders []Recorder

func (rs Recorders) Record(p Pending) {
	for _, r := range rs {
		r.Record(p)
	}
}

// MutationError is a rejected or failed mutation. The cache was not
// touched.
type MutationError struct {
	Kind   Kind
	TaskID int64
	Err    error
}

func (e *MutationError) Error() string {
	if e.TaskID == 0 {
		return fmt.Sprintf("%s task: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s task %d: %v", e.Kind, e.TaskID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
