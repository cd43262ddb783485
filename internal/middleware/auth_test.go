package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/chorehub/internal/session"
)

func newPersister(t *testing.T) *session.Persister {
	t.Helper()
	p, err := session.NewPersister("", false)
	if err != nil {
		t.Fatalf("new persister: %v", err)
	}
	return p
}

func signedInCookies(t *testing.T, p *session.Persister, s session.Session) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := p.Save(rec, s); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return rec.Result().Cookies()
}

func TestRequireSessionNoCookie(t *testing.T) {
	handler := RequireSession(newPersister(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/state", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookies should be cleared when none were sent")
	}
}

func TestRequireSessionPartialCookiesCleared(t *testing.T) {
	p := newPersister(t)
	cookies := signedInCookies(t, p, session.Session{IdentityID: "p1", DisplayName: "Alex", HouseholdCode: "home"})

	handler := RequireSession(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/state", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if n := len(rec.Result().Cookies()); n != 3 {
		t.Errorf("expired %d cookies, want 3", n)
	}
}

func TestRequireSessionValid(t *testing.T) {
	p := newPersister(t)
	want := session.Session{IdentityID: "p1", DisplayName: "Alex", HouseholdCode: "home"}

	var got session.Session
	handler := RequireSession(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		if !ok {
			t.Fatal("expected session in request context")
		}
		got = s
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/state", nil)
	for _, c := range signedInCookies(t, p, want) {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != want {
		t.Errorf("session = %+v, want %+v", got, want)
	}
}

func TestRequireSessionHTMXRedirect(t *testing.T) {
	handler := RequireSession(newPersister(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/state", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if hxRedirect := rec.Header().Get("HX-Redirect"); hxRedirect != "/" {
		t.Errorf("HX-Redirect = %q, want %q", hxRedirect, "/")
	}
}

func TestRequestLoggerIncludesHousehold(t *testing.T) {
	p := newPersister(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	inner := RequireSession(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	handler := RequestLogger(logger)(inner)

	req := httptest.NewRequest("GET", "/api/state", nil)
	for _, c := range signedInCookies(t, p, session.Session{IdentityID: "p1", DisplayName: "Alex", HouseholdCode: "home-2026"}) {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	for _, want := range []string{"level=WARN", "status=418", "bytes=15", "household=home-2026", "path=/api/state"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}
