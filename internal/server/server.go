package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/chorehub/internal/handler"
	"github.com/dukerupert/chorehub/internal/metrics"
	"github.com/dukerupert/chorehub/internal/middleware"
	"github.com/dukerupert/chorehub/internal/remote"
	"github.com/dukerupert/chorehub/internal/session"
	"github.com/dukerupert/chorehub/internal/workspace"
)

type Config struct {
	// JoinRateLimit is the number of joins allowed per client IP per minute.
	JoinRateLimit int
}

type Server struct {
	registry    *workspace.Registry
	persister   *session.Persister
	sessionH    *handler.SessionHandler
	workspaceH  *handler.WorkspaceHandler
	assigneeH   *handler.AssigneeHandler
	categoryH   *handler.CategoryHandler
	choreH      *handler.ChoreHandler
	rateLimiter *middleware.RateLimiter
	cfg         Config
	logger      *slog.Logger
}

func New(adapter *remote.Adapter, persister *session.Persister, cfg Config, logger *slog.Logger) *Server {
	if cfg.JoinRateLimit <= 0 {
		cfg.JoinRateLimit = 10
	}
	registry := workspace.NewRegistry(adapter, logger)
	joiner := session.NewJoiner(adapter, logger)
	httpLogger := logger.With("component", "handler")

	return &Server{
		registry:    registry,
		persister:   persister,
		sessionH:    handler.NewSessionHandler(joiner, persister, registry, httpLogger),
		workspaceH:  handler.NewWorkspaceHandler(registry, httpLogger),
		assigneeH:   handler.NewAssigneeHandler(registry, httpLogger),
		categoryH:   handler.NewCategoryHandler(registry, httpLogger),
		choreH:      handler.NewChoreHandler(registry, httpLogger),
		rateLimiter: middleware.NewRateLimiter(),
		cfg:         cfg,
		logger:      logger,
	}
}

// Registry returns the workspace registry for idle cleanup.
func (s *Server) Registry() *workspace.Registry {
	return s.registry
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no session required)
	outerMux.HandleFunc("POST /join", s.rateLimitedHandler(s.sessionH.Join))
	outerMux.HandleFunc("POST /logout", s.sessionH.Logout)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", metrics.Handler())

	// Protected routes, wrapped with RequireSession
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	outerMux.Handle("/api/", middleware.RequireSession(s.persister)(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, s.cfg.JoinRateLimit, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Session and workspace
	mux.HandleFunc("GET /api/session", s.sessionH.Me)
	mux.HandleFunc("GET /api/state", s.workspaceH.State)
	mux.HandleFunc("POST /api/reload", s.workspaceH.Reload)
	mux.HandleFunc("DELETE /api/error", s.workspaceH.DismissError)
	mux.HandleFunc("POST /api/repair", s.workspaceH.Repair)

	// Interaction state
	mux.HandleFunc("GET /api/interaction", s.workspaceH.GetInteraction)
	mux.HandleFunc("POST /api/interaction", s.workspaceH.SetInteraction)
	mux.HandleFunc("DELETE /api/interaction", s.workspaceH.CancelInteraction)

	// Assignees
	mux.HandleFunc("GET /api/assignees", s.assigneeH.List)
	mux.HandleFunc("POST /api/assignees", s.assigneeH.Create)
	mux.HandleFunc("PUT /api/assignees/{id}", s.assigneeH.Update)
	mux.HandleFunc("DELETE /api/assignees/{id}", s.assigneeH.Delete)

	// Categories
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("POST /api/categories", s.categoryH.Create)
	mux.HandleFunc("PUT /api/categories/{id}", s.categoryH.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", s.categoryH.Delete)
	mux.HandleFunc("POST /api/categories/{id}/defaults/{assigneeId}", s.categoryH.ToggleDefault)
	mux.HandleFunc("POST /api/categories/{id}/toggle-open", s.categoryH.ToggleOpen)

	// Chores
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("PUT /api/chores/{id}", s.choreH.Update)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)
	mux.HandleFunc("POST /api/chores/{id}/toggle-completed", s.choreH.ToggleCompleted)
	mux.HandleFunc("POST /api/chores/{id}/assignees/{assigneeId}", s.choreH.ToggleAssignee)
	mux.HandleFunc("PUT /api/chores/{id}/category", s.choreH.SetCategory)
}
