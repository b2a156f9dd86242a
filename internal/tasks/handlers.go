package tasks

import (
	"net/http"

	"todo-backend/internal/analytics"
)

type TaskHandler struct {
	Store  Store
	Events analytics.Recorder

	// StrictPriority rejects priorities other than low/medium/high on create.
	StrictPriority bool
}

func New(store Store, events analytics.Recorder) *TaskHandler {
	if events == nil {
		events = analytics.Nop{}
	}
	return &TaskHandler{
		Store:  store,
		Events: events,
	}
}

// Register mounts the /todos routes on mux.
func (h *TaskHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /todos", h.List)
	mux.HandleFunc("POST /todos", h.Create)
	mux.HandleFunc("PATCH /todos/{id}", h.UpdateCompletion)
	mux.HandleFunc("DELETE /todos/{id}", h.Delete)
	mux.HandleFunc("DELETE /todos/category/{category}", h.DeleteCategory)
}
