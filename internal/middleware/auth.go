package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/chorehub/internal/session"
)

// RequireSession restores the session from its cookies and stores it in the
// request context. A missing or partial cookie set is treated as signed out.
// HTMX-aware: returns an HX-Redirect header to the join page for HTMX requests.
func RequireSession(p *session.Persister) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := p.Load(r)
			if !ok {
				if hasAnyCookie(r) {
					p.Clear(w)
				}
				rejectSignedOut(w, r)
				return
			}

			annotate(r.Context(), s.HouseholdCode)
			ctx := session.WithSession(r.Context(), s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasAnyCookie(r *http.Request) bool {
	for _, name := range []string{session.CookieIdentity, session.CookieName, session.CookieHousehold} {
		if _, err := r.Cookie(name); err == nil {
			return true
		}
	}
	return false
}

func rejectSignedOut(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "not signed in"})
}
