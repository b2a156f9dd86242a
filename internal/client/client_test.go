package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"todo-backend/internal/db"
	"todo-backend/internal/tasks"
)

func newTestAPI(t *testing.T) (*Client, *db.Memory) {
	t.Helper()
	store := db.NewMemory()
	mux := http.NewServeMux()
	tasks.New(store, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client()), store
}

func TestClient_RoundTrip(t *testing.T) {
	api, _ := newTestAPI(t)
	ctx := context.Background()

	created, err := api.Create(ctx, "Buy milk", "Errands", tasks.PriorityHigh)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Completed {
		t.Fatalf("unexpected task %+v", created)
	}

	updated, err := api.SetCompleted(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if updated == nil || !updated.Completed {
		t.Fatalf("expected completed task, got %+v", updated)
	}

	all, err := api.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0] != *updated {
		t.Errorf("expected [%+v], got %+v", *updated, all)
	}

	if err := api.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if all, _ := api.List(ctx); len(all) != 0 {
		t.Errorf("expected empty list, got %+v", all)
	}
}

func TestClient_SetCompletedUnknown(t *testing.T) {
	api, _ := newTestAPI(t)
	got, err := api.SetCompleted(context.Background(), "3f0c3a4e-8a4b-4e2f-9d7e-0c6f1d2b9a11", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil task, got %+v", got)
	}
}

func TestClient_APIError(t *testing.T) {
	api, store := newTestAPI(t)
	ctx := context.Background()

	err := api.Delete(ctx, "not-an-id")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message == "" {
		t.Errorf("unexpected api error %+v", apiErr)
	}

	store.FindErr = errors.New("disk on fire")
	_, err = api.List(ctx)
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 APIError, got %v", err)
	}
}

func TestCache_AddValidates(t *testing.T) {
	api, store := newTestAPI(t)
	cache := NewCache(api)
	ctx := context.Background()

	if _, err := cache.Add(ctx, "   ", "Errands", ""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
	if _, err := cache.Add(ctx, "Buy milk", "\t", ""); !errors.Is(err, ErrEmptyCategory) {
		t.Errorf("expected ErrEmptyCategory, got %v", err)
	}
	if all, _ := store.FindAll(ctx); len(all) != 0 {
		t.Errorf("expected nothing sent to the server, got %+v", all)
	}

	task, err := cache.Add(ctx, "Buy milk", "Errands", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.Priority != tasks.PriorityLow {
		t.Errorf("expected low priority, got %q", task.Priority)
	}
	if _, ok := cache.Snapshot().Find(task.ID); !ok {
		t.Error("expected snapshot to contain the new task")
	}
}

func TestCache_GroupsInFirstSeenOrder(t *testing.T) {
	api, _ := newTestAPI(t)
	cache := NewCache(api)
	ctx := context.Background()

	for _, in := range [][2]string{
		{"Post office", "Errands"},
		{"Call mom", "Family"},
		{"Buy milk", "Errands"},
	} {
		if _, err := cache.Add(ctx, in[0], in[1], tasks.PriorityMedium); err != nil {
			t.Fatalf("add %s: %v", in[0], err)
		}
	}

	groups := cache.Snapshot().Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Category != "Errands" || len(groups[0].Tasks) != 2 {
		t.Errorf("unexpected first group %+v", groups[0])
	}
	if groups[0].Tasks[1].Text != "Buy milk" {
		t.Errorf("expected insertion order within group, got %+v", groups[0].Tasks)
	}
	if cats := cache.Snapshot().Categories(); len(cats) != 2 || cats[1] != "Family" {
		t.Errorf("unexpected categories %v", cats)
	}
}

func TestCache_ToggleAndDelete(t *testing.T) {
	api, _ := newTestAPI(t)
	cache := NewCache(api)
	ctx := context.Background()

	task, err := cache.Add(ctx, "Buy milk", "Errands", tasks.PriorityHigh)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	before := cache.Snapshot()
	if _, err := cache.Toggle(ctx, task.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got, _ := cache.Snapshot().Find(task.ID); !got.Completed {
		t.Error("expected task completed after toggle")
	}
	if got, _ := before.Find(task.ID); got.Completed {
		t.Error("expected old snapshot to stay unchanged")
	}

	if _, err := cache.Toggle(ctx, task.ID); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if got, _ := cache.Snapshot().Find(task.ID); got != task {
		t.Errorf("expected round trip to %+v, got %+v", task, got)
	}

	if _, err := cache.Toggle(ctx, "missing"); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}

	if _, err := cache.Add(ctx, "Call mom", "Family", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cache.DeleteCategory(ctx, "Errands"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if cats := cache.Snapshot().Categories(); len(cats) != 1 || cats[0] != "Family" {
		t.Errorf("expected only Family left, got %v", cats)
	}
}

func TestCache_RefreshKeepsSnapshotOnError(t *testing.T) {
	api, store := newTestAPI(t)
	cache := NewCache(api)
	ctx := context.Background()

	if _, err := cache.Add(ctx, "Buy milk", "Errands", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	store.FindErr = errors.New("down")
	snap, err := cache.Refresh(ctx)
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if len(snap.Tasks()) != 1 {
		t.Errorf("expected previous snapshot, got %+v", snap.Tasks())
	}
}
