package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"todo-backend/internal/tasks"
)

var (
	ErrEmptyText     = errors.New("text is required")
	ErrEmptyCategory = errors.New("category is required")
	ErrUnknownTask   = errors.New("unknown task")
)

// Group is the tasks of one category.
type Group struct {
	Category string
	Tasks    []tasks.Task
}

// Snapshot is an immutable view of the collection. Never modify the slices
// it hands out.
type Snapshot struct {
	tasks  []tasks.Task
	groups []Group
}

func newSnapshot(all []tasks.Task) *Snapshot {
	own := append([]tasks.Task(nil), all...)
	return &Snapshot{tasks: own, groups: groupByCategory(own)}
}

func (s *Snapshot) Tasks() []tasks.Task { return s.tasks }

// Groups returns tasks grouped by category, categories in first-seen order.
func (s *Snapshot) Groups() []Group { return s.groups }

func (s *Snapshot) Categories() []string {
	out := make([]string, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.Category
	}
	return out
}

func (s *Snapshot) Find(id string) (tasks.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return tasks.Task{}, false
}

func groupByCategory(all []tasks.Task) []Group {
	var groups []Group
	index := map[string]int{}
	for _, t := range all {
		i, ok := index[t.Category]
		if !ok {
			i = len(groups)
			index[t.Category] = i
			groups = append(groups, Group{Category: t.Category})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}

// Cache is the client's single source of truth for the collection. Every
// mutation goes to the server and is followed by a re-fetch that swaps in a
// new Snapshot.
type Cache struct {
	api  *Client
	snap atomic.Pointer[Snapshot]
}

func NewCache(api *Client) *Cache {
	c := &Cache{api: api}
	c.snap.Store(newSnapshot(nil))
	return c
}

func (c *Cache) Snapshot() *Snapshot { return c.snap.Load() }

func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	all, err := c.api.List(ctx)
	if err != nil {
		return c.Snapshot(), err
	}
	s := newSnapshot(all)
	c.snap.Store(s)
	return s, nil
}

// Add validates like the UI does: text and category must be non-blank and
// an empty priority means low.
func (c *Cache) Add(ctx context.Context, text, category string, priority tasks.Priority) (tasks.Task, error) {
	if strings.TrimSpace(text) == "" {
		return tasks.Task{}, ErrEmptyText
	}
	if strings.TrimSpace(category) == "" {
		return tasks.Task{}, ErrEmptyCategory
	}
	if priority == "" {
		priority = tasks.PriorityLow
	}

	t, err := c.api.Create(ctx, text, category, priority)
	if err != nil {
		return tasks.Task{}, err
	}
	_, err = c.Refresh(ctx)
	return t, err
}

// Toggle flips the completed flag of a task known to the current snapshot.
func (c *Cache) Toggle(ctx context.Context, id string) (*tasks.Task, error) {
	cur, ok := c.Snapshot().Find(id)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownTask, id)
	}
	return c.SetCompleted(ctx, id, !cur.Completed)
}

func (c *Cache) SetCompleted(ctx context.Context, id string, completed bool) (*tasks.Task, error) {
	t, err := c.api.SetCompleted(ctx, id, completed)
	if err != nil {
		return nil, err
	}
	_, err = c.Refresh(ctx)
	return t, err
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, id); err != nil {
		return err
	}
	_, err := c.Refresh(ctx)
	return err
}

func (c *Cache) DeleteCategory(ctx context.Context, category string) error {
	if err := c.api.DeleteCategory(ctx, category); err != nil {
		return err
	}
	_, err := c.Refresh(ctx)
	return err
}
