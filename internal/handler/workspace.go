package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorehub/internal/chore"
	"github.com/dukerupert/chorehub/internal/entity"
	"github.com/dukerupert/chorehub/internal/interaction"
	"github.com/dukerupert/chorehub/internal/model"
	"github.com/dukerupert/chorehub/internal/session"
	"github.com/dukerupert/chorehub/internal/workspace"
)

type WorkspaceHandler struct {
	base
}

func NewWorkspaceHandler(reg *workspace.Registry, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{base{registry: reg, logger: logger}}
}

type stateResponse struct {
	Session     session.Session            `json:"session"`
	Assignees   []model.Assignee           `json:"assignees"`
	Categories  []model.Category           `json:"categories"`
	Chores      []chore.ChoreWithAssignees `json:"chores"`
	Interaction *interaction.Holder        `json:"interaction"`
	Error       string                     `json:"error,omitempty"`
}

func stateOf(ws *workspace.Workspace) stateResponse {
	snap := ws.Store().Snapshot()
	return stateResponse{
		Session:     ws.Session,
		Assignees:   nonNil(snap.Assignees),
		Categories:  nonNil(snap.Categories),
		Chores:      chore.Annotate(snap.Chores, snap.Categories),
		Interaction: ws.Interaction,
		Error:       ws.Mutations.Banner(),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// State returns the whole workspace with effective assignees per chore.
func (h *WorkspaceHandler) State(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(ws))
}

// Reload re-reads the household from the remote store.
func (h *WorkspaceHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if err := ws.Mutations.Reload(r.Context(), ws.Session.DisplayName); err != nil {
		h.logger.Error("reload failed", "household", ws.Session.HouseholdCode, "error", err)
		writeMutationError(w, ws, err)
		return
	}
	writeJSON(w, http.StatusOK, stateOf(ws))
}

func (h *WorkspaceHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.Mutations.DismissBanner()
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkspaceHandler) Repair(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	report, err := ws.Mutations.Repair(r.Context())
	if err != nil {
		h.logger.Error("repair failed", "household", ws.Session.HouseholdCode, "error", err)
		writeMutationError(w, ws, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *WorkspaceHandler) GetInteraction(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ws.Interaction)
}

func (h *WorkspaceHandler) SetInteraction(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var req struct {
		Mode   interaction.Mode `json:"mode"`
		Target string           `json:"target"`
	}
	if !decode(w, r, &req) {
		return
	}
	st, err := interaction.Parse(req.Mode, req.Target)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "target"})
		return
	}
	if t := interaction.Target(st); t != "" && !exists(ws.Store().Snapshot(), t) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "interaction target not found"})
		return
	}
	switch st := st.(type) {
	case interaction.Editing:
		err = ws.Interaction.BeginEdit(st.Target)
	case interaction.SelectingAssignee:
		err = ws.Interaction.BeginSelect(st.Target)
	default:
		ws.Interaction.Cancel()
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "target"})
		return
	}
	writeJSON(w, http.StatusOK, ws.Interaction)
}

func (h *WorkspaceHandler) CancelInteraction(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.Interaction.Cancel()
	writeJSON(w, http.StatusOK, ws.Interaction)
}

func exists(snap entity.Snapshot, id string) bool {
	for _, a := range snap.Assignees {
		if a.ID == id {
			return true
		}
	}
	for _, c := range snap.Categories {
		if c.ID == id {
			return true
		}
	}
	for _, c := range snap.Chores {
		if c.ID == id {
			return true
		}
	}
	return false
}
