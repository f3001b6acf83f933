package taskcache

import (
	"context"
	"fmt"

	"github.com/mark3labs/taskdeck/internal/api"
	"golang.org/x/sync/errgroup"
)

// Resource keys.
const (
	KeyTasks      = "tasks"
	KeyCategories = "categories"
)

// Source is the remote side of the collection.
type Source interface {
	ListTasks(ctx context.Context) ([]api.Task, error)
	ListCategories(ctx context.Context) ([]api.Category, error)
}

type invalidator interface {
	Key() string
	Invalidate(ctx context.Context) error
	Clear()
	Subscribe(fn func()) func()
	Fetching() bool
}

// Collection groups the task and category resources.
type Collection struct {
	Tasks      *Resource[api.Task]
	Categories *Resource[api.Category]

	byKey map[string]invalidator
}

// NewCollection builds both resources over src.
func NewCollection(src Source) *Collection {
	c := &Collection{
		Tasks:      NewResource(KeyTasks, src.ListTasks),
		Categories: NewResource(KeyCategories, src.ListCategories),
	}
	c.byKey = map[string]invalidator{
		KeyTasks:      c.Tasks,
		KeyCategories: c.Categories,
	}
	return c
}

// Invalidate refetches the resource named key.
func (c *Collection) Invalidate(ctx context.Context, key string) error {
	r, ok := c.byKey[key]
	if !ok {
		return fmt.Errorf("unknown cache key %q", key)
	}
	return r.Invalidate(ctx)
}

// InvalidateAll refetches every resource concurrently.
func (c *Collection) InvalidateAll(ctx context.Context) error {
	var g errgroup.Group
	for _, r := range c.byKey {
		g.Go(func() error { return r.Invalidate(ctx) })
	}
	return g.Wait()
}

// Clear drops every snapshot. Called when the session identity changes.
func (c *Collection) Clear() {
	for _, r := range c.byKey {
		r.Clear()
	}
}

// Fetching reports whether any resource has a fetch in flight.
func (c *Collection) Fetching() bool {
	for _, r := range c.byKey {
		if r.Fetching() {
			return true
		}
	}
	return false
}

// Subscribe registers fn for changes to any resource; fn receives the key.
func (c *Collection) Subscribe(fn func(key string)) func() {
	unsubs := make([]func(), 0, len(c.byKey))
	for key, r := range c.byKey {
		unsubs = append(unsubs, r.Subscribe(func() { fn(key) }))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
