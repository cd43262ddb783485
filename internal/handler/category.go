package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorehub/internal/model"
	"github.com/dukerupert/chorehub/internal/workspace"
)

type CategoryHandler struct {
	base
}

func NewCategoryHandler(reg *workspace.Registry, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{base{registry: reg, logger: logger}}
}

type categoryRequest struct {
	Name             string   `json:"name"`
	DefaultAssignees []string `json:"defaultAssignees"`
}

func findCategory(ws *workspace.Workspace, id string) (model.Category, bool) {
	for _, c := range ws.Store().Snapshot().Categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(ws.Store().Snapshot().Categories))
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := ws.Mutations.AddCategory(r.Context(), req.Name, req.DefaultAssignees)
	if err != nil {
		writeMutationError(w, ws, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if err := ws.Mutations.RenameCategory(r.Context(), id, req.Name); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	ws.Interaction.Forget(id)
	c, _ := findCategory(ws, id)
	writeJSON(w, http.StatusOK, c)
}

// Delete removes the category; its chores become uncategorized.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := ws.Mutations.DeleteCategory(r.Context(), id); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	ws.Interaction.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) ToggleDefault(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := ws.Mutations.ToggleCategoryDefault(r.Context(), id, r.PathValue("assigneeId")); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	c, _ := findCategory(ws, id)
	writeJSON(w, http.StatusOK, c)
}

// ToggleOpen flips the local accordion state. It never reaches the remote
// store.
func (h *CategoryHandler) ToggleOpen(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	open, err := ws.Store().ToggleOpen(r.PathValue("id"))
	if err != nil {
		writeMutationError(w, ws, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isOpen": open})
}
