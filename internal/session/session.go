// Package session caches the authenticated user and mediates login,
// logout and registration against the remote session API.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/logger"
	"golang.org/x/sync/singleflight"
)

// Op names a session operation for pending-state tracking.
type Op string

const (
	OpRefresh  Op = "refresh"
	OpLogin    Op = "login"
	OpLogout   Op = "logout"
	OpRegister Op = "register"
)

// Remote is the server side of the session.
type Remote interface {
	CurrentUser(ctx context.Context) (*api.User, error)
	Login(ctx context.Context, creds api.Credentials) (*api.User, error)
	Register(ctx context.Context, reg api.Registration) (*api.User, error)
	Logout(ctx context.Context) error
}

// Clearer is a cache whose contents belong to the current identity.
type Clearer interface {
	Clear()
}

// PendingState is the progress of one kind of operation.
type PendingState struct {
	InFlight bool
	Err      error
}

// Cache holds at most one user. Writes happen only through Refresh, Login,
// Register and Logout.
type Cache struct {
	remote     Remote
	dependents []Clearer

	flight singleflight.Group
	// identity serializes login/register/logout against each other
	identity sync.Mutex

	mu        sync.Mutex
	user      *api.User
	epoch     uint64
	resolved  bool
	ready     chan struct{}
	pending   map[Op]*pendingOp
	listeners map[int]func(*api.User)
	nextID    int
}

type pendingOp struct {
	count int
	err   error
}

// New creates a cache. dependents are cleared whenever the identity ends.
func New(remote Remote, dependents ...Clearer) *Cache {
	return &Cache{
		remote:     remote,
		dependents: dependents,
		ready:      make(chan struct{}),
		pending:    make(map[Op]*pendingOp),
		listeners:  make(map[int]func(*api.User)),
	}
}

// Start issues the automatic refresh. Ready is closed once it settles.
func (c *Cache) Start(ctx context.Context) {
	go func() {
		if _, err := c.Refresh(ctx); err != nil {
			logger.Warn("initial session refresh: %v", err)
		}
	}()
}

// Ready is closed when the first refresh has settled.
func (c *Cache) Ready() <-chan struct{} {
	return c.ready
}

// Resolved reports whether the cached value can be trusted yet.
func (c *Cache) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// CurrentUser returns a copy of the cached user. It never blocks on I/O.
func (c *Cache) CurrentUser() (*api.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, false
	}
	u := *c.user
	return &u, true
}

// Pending reports whether op is in flight and its last error.
func (c *Cache) Pending(op Op) PendingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[op]
	if !ok {
		return PendingState{}
	}
	return PendingState{InFlight: p.count > 0, Err: p.err}
}

// Subscribe registers fn to receive the user after every change (nil when
// logged out). The returned func detaches it.
func (c *Cache) Subscribe(fn func(*api.User)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Refresh asks the server who is logged in. Concurrent calls share one
// request. A 401 resolves to no user without error.
func (c *Cache) Refresh(ctx context.Context) (*api.User, error) {
	ch := c.flight.DoChan(string(OpRefresh), func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		u, _ := res.Val.(*api.User)
		return u, nil
	}
}

func (c *Cache) refresh(ctx context.Context) (*api.User, error) {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()
	c.begin(OpRefresh)

	u, err := c.remote.CurrentUser(ctx)
	if errors.Is(err, api.ErrUnauthenticated) {
		u, err = nil, nil
	}
	if err != nil {
		err = &SessionFetchError{Err: err}
		c.end(OpRefresh, err)
		c.settle()
		return nil, err
	}
	c.end(OpRefresh, nil)

	c.mu.Lock()
	if epoch != c.epoch {
		// Identity changed while the request was in flight.
		cur := c.user
		c.mu.Unlock()
		c.settle()
		logger.Debug("session: discarding refresh from epoch %d", epoch)
		return copyUser(cur), nil
	}
	prev := c.user
	c.user = copyUser(u)
	c.mu.Unlock()
	c.settle()

	if prev != nil && (u == nil || prev.ID != u.ID) {
		c.clearDependents()
	}
	if !sameUser(prev, u) {
		c.notify()
	}
	return copyUser(u), nil
}

// Login establishes a session for creds.
func (c *Cache) Login(ctx context.Context, creds api.Credentials) (*api.User, error) {
	return c.establish(ctx, OpLogin, func(ctx context.Context) (*api.User, error) {
		return c.remote.Login(ctx, creds)
	})
}

// Register creates an account and establishes its session.
func (c *Cache) Register(ctx context.Context, reg api.Registration) (*api.User, error) {
	return c.establish(ctx, OpRegister, func(ctx context.Context) (*api.User, error) {
		return c.remote.Register(ctx, reg)
	})
}

func (c *Cache) establish(ctx context.Context, op Op, call func(context.Context) (*api.User, error)) (*api.User, error) {
	c.identity.Lock()
	defer c.identity.Unlock()

	c.begin(op)
	u, err := call(ctx)
	if err != nil {
		authErr := &AuthError{Op: op, Message: serverMessage(err), Err: err}
		c.end(op, authErr)
		return nil, authErr
	}
	c.end(op, nil)

	c.mu.Lock()
	prev := c.user
	c.epoch++
	c.user = copyUser(u)
	c.mu.Unlock()
	c.settle()

	if prev != nil && prev.ID != u.ID {
		c.clearDependents()
	}
	c.notify()
	logger.Info("session: %s as %s", op, u.Username)
	return copyUser(u), nil
}

// Logout ends the session. On success the user and every identity-bound
// cache are cleared. On failure nothing changes.
func (c *Cache) Logout(ctx context.Context) error {
	c.identity.Lock()
	defer c.identity.Unlock()

	// Any refresh already in flight belongs to the old identity.
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()

	c.begin(OpLogout)
	if err := c.remote.Logout(ctx); err != nil {
		c.end(OpLogout, err)
		return err
	}
	c.end(OpLogout, nil)

	c.mu.Lock()
	c.user = nil
	// Refreshes issued while the logout was in flight saw the first bump.
	c.epoch++
	c.mu.Unlock()

	c.clearDependents()
	c.notify()
	logger.Info("session: logged out")
	return nil
}

func (c *Cache) clearDependents() {
	for _, d := range c.dependents {
		d.Clear()
	}
}

func (c *Cache) begin(op Op) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[op]
	if !ok {
		p = &pendingOp{}
		c.pending[op] = p
	}
	p.count++
}

func (c *Cache) end(op Op, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pending[op]
	p.count--
	p.err = err
}

func (c *Cache) settle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resolved {
		c.resolved = true
		close(c.ready)
	}
}

func (c *Cache) notify() {
	c.mu.Lock()
	u := copyUser(c.user)
	fns := make([]func(*api.User), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(copyUser(u))
	}
}

func serverMessage(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}

func copyUser(u *api.User) *api.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

func sameUser(a, b *api.User) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID && a.Username == b.Username &&
		optEqual(a.Email, b.Email) && optEqual(a.Name, b.Name)
}

func optEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
