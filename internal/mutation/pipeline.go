// Package mutation sends task changes to the server and keeps the task
// cache in step with the result.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/logger"
	"github.com/mark3labs/taskdeck/internal/taskcache"
	"github.com/rs/xid"
)

// Remote is the server side of task mutations.
type Remote interface {
	CreateTask(ctx context.Context, in api.NewTask) (*api.Task, error)
	UpdateTask(ctx context.Context, id int64, patch api.TaskPatch) error
	DeleteTask(ctx context.Context, id int64) error
}

// Invalidator refetches a cache key.
type Invalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// Pipeline issues mutations one task at a time, invalidates the task cache
// on success and surfaces every outcome as a Notice.
type Pipeline struct {
	remote   Remote
	cache    Invalidator
	notifier Notifier
	recorder Recorder
	now      func() time.Time

	mu      sync.Mutex
	lanes   map[int64]*lane
	pending map[string]*Pending
}

// lane orders the mutations of one task. tail is closed when the most
// recently issued mutation finishes; active holds the generations that
// will still reach the server.
type lane struct {
	gen    uint64
	tail   chan struct{}
	active map[uint64]struct{}
	// dirty is set when a superseded success skipped its invalidation.
	dirty bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithNotifier sets where notices go.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithRecorder journals every lifecycle transition.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// New creates a pipeline.
func New(remote Remote, cache Invalidator, opts ...Option) *Pipeline {
	p := &Pipeline{
		remote:  remote,
		cache:   cache,
		now:     time.Now,
		lanes:   make(map[int64]*lane),
		pending: make(map[string]*Pending),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pending returns the mutations currently in flight, oldest first.
func (p *Pipeline) Pending() []Pending {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Pending, 0, len(p.pending))
	for _, m := range p.pending {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out
}

// UpdateTaskStatus moves a task to another lane.
func (p *Pipeline) UpdateTaskStatus(ctx context.Context, id int64, status api.Status) error {
	patch := api.TaskPatch{Status: &status}
	return p.run(ctx, KindStatus, id, patch, func(ctx context.Context) error {
		return p.remote.UpdateTask(ctx, id, patch)
	}, fmt.Sprintf("Moved to %s", status.Label()))
}

// UpdateTask applies an arbitrary partial edit.
func (p *Pipeline) UpdateTask(ctx context.Context, id int64, patch api.TaskPatch) error {
	return p.run(ctx, KindEdit, id, patch, func(ctx context.Context) error {
		return p.remote.UpdateTask(ctx, id, patch)
	}, "Task updated")
}

// DeleteTask removes a task.
func (p *Pipeline) DeleteTask(ctx context.Context, id int64) error {
	return p.run(ctx, KindDelete, id, nil, func(ctx context.Context) error {
		return p.remote.DeleteTask(ctx, id)
	}, "Task deleted")
}

// CreateTask adds a task. It has no id yet, so it is not ordered against
// other mutations.
func (p *Pipeline) CreateTask(ctx context.Context, in api.NewTask) (*api.Task, error) {
	var created *api.Task
	err := p.run(ctx, KindCreate, 0, in, func(ctx context.Context) error {
		t, err := p.remote.CreateTask(ctx, in)
		created = t
		return err
	}, fmt.Sprintf("Created %q", in.Title))
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (p *Pipeline) run(ctx context.Context, kind Kind, id int64, input any, send func(context.Context) error, success string) error {
	m := &Pending{
		ID:       xid.New().String(),
		Key:      taskcache.KeyTasks,
		Kind:     kind,
		TaskID:   id,
		Input:    input,
		Phase:    PhaseInFlight,
		IssuedAt: p.now(),
	}

	// Join the per-task chain and expose the pending entry
	gen, prev, done := p.enqueue(id)
	p.track(m)

	// Wait for the previous mutation of this task

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			// Keep the chain intact for later mutations of this task.
			go func() { <-prev; close(done) }()
			if p.abandon(id, gen) {
				go func() {
					_ = p.cache.Invalidate(context.WithoutCancel(ctx), taskcache.KeyTasks)
				}()
			}
			p.settle(m, PhaseFailed, ctx.Err())
			return p.fail(m, ctx.Err())
		}
	}

	// Issue the request, then release our slot in the chain
	err := send(ctx)
	superseded, flush := p.release(id, gen, err == nil)
	close(done)

	if err != nil {
		p.settle(m, PhaseFailed, err)
		if flush {
			// An earlier success of this task is not in the cache yet.
			if ierr := p.cache.Invalidate(ctx, taskcache.KeyTasks); ierr != nil {
				logger.Warn("mutation %s: refresh after failure: %v", m.ID, ierr)
			}
		}
		return p.fail(m, err)
	}

	if superseded {
		// A newer mutation of this task will refresh the cache itself.
		p.settle(m, PhaseSuperseded, nil)
		logger.Debug("mutation %s: superseded, skipping invalidation", m.ID)
		return nil
	}

	// Latest mutation of this task, refresh the cache
	p.settle(m, PhaseSucceeded, nil)
	if err := p.cache.Invalidate(ctx, taskcache.KeyTasks); err != nil {
		logger.Warn("mutation %s: refresh after %s failed: %v", m.ID, kind, err)
		var fe *taskcache.CacheFetchError
		if errors.As(err, &fe) {
			p.notify(Notice{Level: LevelFailure, Title: "Refresh failed", Message: fe.Err.Error(), Kind: kind, TaskID: id})
		}
	}
	p.notify(Notice{Level: LevelSuccess, Title: "Success", Message: success, Kind: kind, TaskID: id})
	return nil
}

func (p *Pipeline) fail(m *Pending, err error) error {
	merr := &MutationError{Kind: m.Kind, TaskID: m.TaskID, Err: err}
	logger.Warn("mutation %s failed: %v", m.ID, merr)
	p.notify(Notice{Level: LevelFailure, Title: "Error", Message: err.Error(), Kind: m.Kind, TaskID: m.TaskID})
	return merr
}

// enqueue assigns the next generation for task id and returns the channel
// to wait on before sending.
func (p *Pipeline) enqueue(id int64) (gen uint64, prev, done chan struct{}) {
	done = make(chan struct{})
	if id == 0 {
		return 0, nil, done
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.lanes[id]
	if !ok {
		l = &lane{active: make(map[uint64]struct{})}
		p.lanes[id] = l
	}
	l.gen++
	l.active[l.gen] = struct{}{}
	prev = l.tail
	l.tail = done
	return l.gen, prev, done
}

// release reports whether a newer mutation of task id is still going to
// reach the server after gen, and whether a failed latest mutation must
// refresh the cache on behalf of earlier superseded successes.
func (p *Pipeline) release(id int64, gen uint64, ok bool) (superseded, flush bool) {
	if id == 0 {
		return false, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	l := p.lanes[id]
	delete(l.active, gen)
	for g := range l.active {
		if g > gen {
			superseded = true
			break
		}
	}
	switch {
	case superseded && ok:
		l.dirty = true
	case !superseded:
		flush = l.dirty && !ok
		l.dirty = false
	}
	if len(l.active) == 0 {
		delete(p.lanes, id)
	}
	return superseded, flush
}

// abandon drops a generation that gave up before sending. It reports
// whether that leaves an earlier superseded success unrefreshed.
func (p *Pipeline) abandon(id int64, gen uint64) (flush bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.lanes[id]
	if !ok {
		return false
	}
	delete(l.active, gen)
	if len(l.active) == 0 {
		flush = l.dirty
		delete(p.lanes, id)
	}
	return flush
}

func (p *Pipeline) track(m *Pending) {
	p.mu.Lock()
	p.pending[m.ID] = m
	p.mu.Unlock()
	p.record(*m)
}

func (p *Pipeline) settle(m *Pending, phase Phase, err error) {
	p.mu.Lock()
	m.Phase = phase
	m.Err = err
	delete(p.pending, m.ID)
	snapshot := *m
	p.mu.Unlock()
	p.record(snapshot)
}

func (p *Pipeline) notify(n Notice) {
	if p.notifier != nil {
		p.notifier.Notify(n)
	}
}

func (p *Pipeline) record(m Pending) {
	if p.recorder != nil {
		p.recorder.Record(m)
	}
}
