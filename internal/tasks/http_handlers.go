package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"todo-backend/internal/analytics"
)

const maxBodyBytes = 1 << 20

// -------------------------------
// HANDLERS
// -------------------------------

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.FindAll(r.Context())
	if err != nil {
		log.Printf("[ERROR] list todos: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch todos")
		return
	}
	if all == nil {
		all = []Task{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body CreateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Text == nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if body.Category == nil {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	priority := body.Priority
	if priority == "" {
		priority = PriorityLow
	}
	if h.StrictPriority && !priority.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid priority %q: want low, medium or high", priority))
		return
	}

	t, err := h.Store.Insert(r.Context(), NewTask{
		Text:     *body.Text,
		Category: *body.Category,
		Priority: priority,
	})
	if err != nil {
		log.Printf("[WARN] create todo failed: %v", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analytics.Log(r.Context(), h.Events, analytics.FromRequest(r), "task_created", map[string]any{
		"task_id":  t.ID,
		"text_len": len(strings.TrimSpace(t.Text)),
		"priority": t.Priority,
	})

	writeJSON(w, http.StatusCreated, t)
}

// UpdateCompletion answers 200 with a null body when the id is unknown.
func (h *TaskHandler) UpdateCompletion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body UpdateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.Store.UpdateByID(r.Context(), id, Patch{Completed: body.Completed})
	if err != nil {
		if !errors.Is(err, ErrInvalidID) {
			log.Printf("[WARN] update todo id=%s failed: %v", id, err)
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if t == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	if body.Completed != nil {
		name := "task_uncompleted"
		if *body.Completed {
			name = "task_completed"
		}
		analytics.Log(r.Context(), h.Events, analytics.FromRequest(r), name, map[string]any{
			"task_id":  t.ID,
			"priority": t.Priority,
		})
	}

	writeJSON(w, http.StatusOK, t)
}

// Delete answers 204 whether or not the id existed.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.Store.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, ErrInvalidID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[ERROR] delete todo id=%s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete todo")
		return
	}

	analytics.Log(r.Context(), h.Events, analytics.FromRequest(r), "task_deleted", map[string]any{
		"task_id": id,
	})

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCategory removes every todo in the category, matched exactly.
func (h *TaskHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	n, err := h.Store.DeleteByCategory(r.Context(), category)
	if err != nil {
		log.Printf("[ERROR] delete category: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	analytics.Log(r.Context(), h.Events, analytics.FromRequest(r), "category_deleted", map[string]any{
		"deleted": n,
	})

	w.WriteHeader(http.StatusNoContent)
}

// -------------------------------
// helpers
// -------------------------------

// decodeJSON treats an empty body as an empty object. Anything after the
// first JSON value is rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid json: unexpected data after body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}
