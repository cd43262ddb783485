package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/chorehub/internal/model"
	"github.com/dukerupert/chorehub/internal/mutation"
	"github.com/dukerupert/chorehub/internal/session"
	"github.com/dukerupert/chorehub/internal/workspace"
)

// base resolves the signed-in workspace for protected handlers.
type base struct {
	registry *workspace.Registry
	logger   *slog.Logger
}

func (b base) workspace(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return nil, false
	}
	ws, err := b.registry.Get(r.Context(), s)
	if err != nil {
		b.logger.Error("failed to load workspace", "household", s.HouseholdCode, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": mutation.FailureMessage("load household")})
		return nil, false
	}
	return ws, true
}

// writeMutationError maps coordinator errors onto responses. Validation
// errors carry the offending field for inline display; remote errors carry
// the workspace banner.
func writeMutationError(w http.ResponseWriter, ws *workspace.Workspace, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		status := http.StatusBadRequest
		if ve.Duplicate {
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case model.IsRemote(err):
		msg := ws.Mutations.Banner()
		if msg == "" {
			msg = "The household could not be updated. Please try again."
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": msg})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// maxBodyBytes caps every request body read by a handler.
const maxBodyBytes = 64 << 10

func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	limitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}

type nameRequest struct {
	Name string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
