package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorehub/internal/workspace"
)

type AssigneeHandler struct {
	base
}

func NewAssigneeHandler(reg *workspace.Registry, logger *slog.Logger) *AssigneeHandler {
	return &AssigneeHandler{base{registry: reg, logger: logger}}
}

func (h *AssigneeHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ws.Store().Snapshot().Assignees))
}

func (h *AssigneeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := ws.Mutations.AddAssignee(r.Context(), req.Name)
	if err != nil {
		writeMutationError(w, ws, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AssigneeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if err := ws.Mutations.RenameAssignee(r.Context(), id, req.Name); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	ws.Interaction.Forget(id)
	for _, a := range ws.Store().Snapshot().Assignees {
		if a.ID == id {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes the assignee and its references from chores and categories.
func (h *AssigneeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := ws.Mutations.DeleteAssignee(r.Context(), id); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	ws.Interaction.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}
