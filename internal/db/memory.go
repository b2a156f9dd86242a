package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"todo-backend/internal/tasks"
)

// Memory keeps tasks in process. Order of FindAll is insertion order.
//
// The *Err fields let tests make individual operations fail.
type Memory struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]tasks.Task

	InsertErr   error
	FindErr     error
	UpdateErr   error
	DeleteErr   error
	CategoryErr error
	PingErr     error
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[string]tasks.Task)}
}

func (m *Memory) Insert(ctx context.Context, nt tasks.NewTask) (tasks.Task, error) {
	if m.InsertErr != nil {
		return tasks.Task{}, m.InsertErr
	}
	t := tasks.Task{
		ID:       uuid.NewString(),
		Text:     nt.Text,
		Category: nt.Category,
		Priority: nt.Priority,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[t.ID] = t
	m.order = append(m.order, t.ID)
	return t, nil
}

func (m *Memory) FindAll(ctx context.Context) ([]tasks.Task, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]tasks.Task, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.byID[id])
	}
	return result, nil
}

func (m *Memory) UpdateByID(ctx context.Context, id string, p tasks.Patch) (*tasks.Task, error) {
	if err := validUUID(id); err != nil {
		return nil, err
	}
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	m.byID[id] = t
	return &t, nil
}

func (m *Memory) DeleteByID(ctx context.Context, id string) error {
	if err := validUUID(id); err != nil {
		return err
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return nil
	}
	delete(m.byID, id)
	m.order = removeID(m.order, id)
	return nil
}

func (m *Memory) DeleteByCategory(ctx context.Context, category string) (int64, error) {
	if m.CategoryErr != nil {
		return 0, m.CategoryErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	kept := m.order[:0]
	for _, id := range m.order {
		if m.byID[id].Category == category {
			delete(m.byID, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return n, nil
}

func (m *Memory) Ping(ctx context.Context) error { return m.PingErr }

func (m *Memory) Close() error { return nil }

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// validUUID is the id check shared by the backends that assign UUIDs. Only
// the canonical lowercase form is accepted, since that is what gets stored.
func validUUID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return fmt.Errorf("%w: %q", tasks.ErrInvalidID, id)
	}
	return nil
}
