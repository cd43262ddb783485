package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/chorehub/internal/model"
	"github.com/dukerupert/chorehub/internal/session"
	"github.com/dukerupert/chorehub/internal/workspace"
)

type SessionHandler struct {
	joiner    *session.Joiner
	persister *session.Persister
	registry  *workspace.Registry
	logger    *slog.Logger
}

func NewSessionHandler(j *session.Joiner, p *session.Persister, reg *workspace.Registry, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{joiner: j, persister: p, registry: reg, logger: logger}
}

type joinRequest struct {
	DisplayName   string `json:"displayName"`
	HouseholdCode string `json:"householdCode"`
}

// Join accepts JSON or a form post with displayName and householdCode.
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if !decode(w, r, &req) {
			return
		}
	} else {
		limitBody(w, r)
		req.DisplayName = r.FormValue("displayName")
		req.HouseholdCode = r.FormValue("householdCode")
	}

	s, err := h.joiner.Join(r.Context(), req.DisplayName, req.HouseholdCode)
	if err != nil {
		var ve *model.ValidationError
		var ae *model.AuthError
		switch {
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Message, "field": ve.Field})
		case errors.As(err, &ae):
			h.logger.Error("join failed", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Could not join the household. Please try again."})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	if prev, ok := h.persister.Load(r); ok {
		h.registry.Evict(prev.IdentityID)
	}
	if err := h.persister.Save(w, s); err != nil {
		h.logger.Error("failed to write session cookies", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save session"})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Logout clears the session cookies and drops the workspace. Nothing is
// invalidated remotely.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.persister.Load(r); ok {
		h.registry.Evict(s.IdentityID)
	}
	h.persister.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// Me returns the restored session.
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}
	writeJSON(w, http.StatusOK, s)
}
