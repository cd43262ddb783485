package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorehub/internal/chore"
	"github.com/dukerupert/chorehub/internal/mutation"
	"github.com/dukerupert/chorehub/internal/workspace"
)

type ChoreHandler struct {
	base
}

func NewChoreHandler(reg *workspace.Registry, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{base{registry: reg, logger: logger}}
}

// annotated returns the chore with its effective assignees, if still loaded.
func annotated(ws *workspace.Workspace, id string) (chore.ChoreWithAssignees, bool) {
	snap := ws.Store().Snapshot()
	for _, c := range chore.Annotate(snap.Chores, snap.Categories) {
		if c.ID == id {
			return c, true
		}
	}
	return chore.ChoreWithAssignees{}, false
}

func (h *ChoreHandler) writeChore(w http.ResponseWriter, ws *workspace.Workspace, status int, id string) {
	c, ok := annotated(ws, id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, c)
}

// List returns chores with effective assignees, optionally filtered by
// ?assignee=ID against the effective set.
func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	snap := ws.Store().Snapshot()
	if assignee := r.URL.Query().Get("assignee"); assignee != "" {
		writeJSON(w, http.StatusOK, chore.ForAssignee(snap.Chores, snap.Categories, assignee))
		return
	}
	writeJSON(w, http.StatusOK, chore.Annotate(snap.Chores, snap.Categories))
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req mutation.NewChore
	if !decode(w, r, &req) {
		return
	}
	c, err := ws.Mutations.AddChore(r.Context(), req)
	if err != nil {
		writeMutationError(w, ws, err)
		return
	}
	h.writeChore(w, ws, http.StatusCreated, c.ID)
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if err := ws.Mutations.RenameChore(r.Context(), id, req.Title); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	ws.Interaction.Forget(id)
	h.writeChore(w, ws, http.StatusOK, id)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := ws.Mutations.DeleteChore(r.Context(), id); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	ws.Interaction.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChoreHandler) ToggleCompleted(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, err := ws.Mutations.ToggleChoreCompleted(r.Context(), id); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	h.writeChore(w, ws, http.StatusOK, id)
}

func (h *ChoreHandler) ToggleAssignee(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := ws.Mutations.ToggleChoreAssignee(r.Context(), id, r.PathValue("assigneeId")); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	h.writeChore(w, ws, http.StatusOK, id)
}

// SetCategory accepts {"categoryId": null} to uncategorize.
func (h *ChoreHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req struct {
		CategoryID *string `json:"categoryId"`
	}
	if !decode(w, r, &req) {
		return
	}
	id := r.PathValue("id")
	if err := ws.Mutations.SetChoreCategory(r.Context(), id, req.CategoryID); err != nil {
		writeMutationError(w, ws, err)
		return
	}
	h.writeChore(w, ws, http.StatusOK, id)
}
