// Package dragdrop models a single card drag gesture as an explicit state
// machine. A gesture produces at most one Drop.
//
// A Machine is not safe for concurrent use; it is driven from the UI loop.
package dragdrop

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/taskdeck/internal/api"
)

// State is the gesture state.
type State int

const (
	Idle State = iota
	Dragging
	OverLane
	OverNothing
	Dropped
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case OverLane:
		return "over-lane"
	case OverNothing:
		return "over-nothing"
	case Dropped:
		return "dropped"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Active reports whether a gesture is in progress.
func (s State) Active() bool {
	return s == Dragging || s == OverLane || s == OverNothing
}

type event int

const (
	evStart event = iota
	evEnter
	evLeave
	evRelease
	evCancel
)

// transitions lists the allowed moves. Anything absent is ignored.
var transitions = map[State]map[event]State{
	Idle: {
		evStart: Dragging,
	},
	Dragging: {
		evEnter:   OverLane,
		evRelease: Cancelled,
		evCancel:  Cancelled,
	},
	OverLane: {
		evEnter:   OverLane,
		evLeave:   OverNothing,
		evRelease: Dropped,
		evCancel:  Cancelled,
	},
	OverNothing: {
		evEnter:   OverLane,
		evRelease: Cancelled,
		evCancel:  Cancelled,
	},
}

// Drop is the status change request a successful gesture produces.
type Drop struct {
	TaskID int64
	Status api.Status
}

// Outcome describes how a gesture ended. Drop is nil unless State is
// Dropped with a parseable payload.
type Outcome struct {
	State State
	Drop  *Drop
}

// Machine tracks one gesture at a time.
type Machine struct {
	state   State
	payload string
	current api.Status
	targets map[api.Status]bool
}

// New returns an idle machine.
func New() *Machine {
	return &Machine{targets: make(map[api.Status]bool)}
}

// State returns the current gesture state.
func (m *Machine) State() State { return m.state }

// Payload returns the payload fixed at Start.
func (m *Machine) Payload() string { return m.payload }

// Current returns the lane under the pointer, if any.
func (m *Machine) Current() (api.Status, bool) {
	if m.state != OverLane {
		return "", false
	}
	return m.current, true
}

// IsTarget reports whether lane is highlighted as the drop target.
func (m *Machine) IsTarget(lane api.Status) bool {
	return m.targets[lane]
}

func (m *Machine) fire(ev event) (State, bool) {
	next, ok := transitions[m.state][ev]
	if !ok {
		return m.state, false
	}
	m.state = next
	return next, true
}

// Start begins a gesture carrying payload. Only valid when idle.
func (m *Machine) Start(payload string) error {
	if _, ok := m.fire(evStart); !ok {
		return fmt.Errorf("drag already in progress (%s)", m.state)
	}
	m.payload = payload
	return nil
}

// Enter marks lane as the current drop target.
func (m *Machine) Enter(lane api.Status) {
	if _, ok := m.fire(evEnter); !ok {
		return
	}
	for k := range m.targets {
		m.targets[k] = false
	}
	m.targets[lane] = true
	m.current = lane
}

// Leave clears lane's target flag.
func (m *Machine) Leave(lane api.Status) {
	if !m.state.Active() {
		return
	}
	m.targets[lane] = false
	if m.state == OverLane && m.current == lane {
		m.fire(evLeave)
		m.current = ""
	}
}

// Release ends the gesture. Over a lane it yields a Drop, unless the
// payload is missing or not a task id. The machine returns to Idle.
func (m *Machine) Release() Outcome {
	lane := m.current
	payload := m.payload
	end, ok := m.fire(evRelease)
	if !ok {
		return Outcome{State: m.state}
	}
	out := Outcome{State: end}
	if end == Dropped {
		if id, err := ParsePayload(payload); err == nil {
			out.Drop = &Drop{TaskID: id, Status: lane}
		}
	}
	m.reset()
	return out
}

// Cancel abandons the gesture without a drop.
func (m *Machine) Cancel() Outcome {
	end, ok := m.fire(evCancel)
	if !ok {
		return Outcome{State: m.state}
	}
	m.reset()
	return Outcome{State: end}
}

func (m *Machine) reset() {
	m.state = Idle
	m.payload = ""
	m.current = ""
	for k := range m.targets {
		delete(m.targets, k)
	}
}

// ParsePayload decodes a drag payload into a task id.
func ParsePayload(payload string) (int64, error) {
	s := strings.TrimSpace(payload)
	if s == "" {
		return 0, fmt.Errorf("empty payload")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: %w", payload, err)
	}
	return id, nil
}
