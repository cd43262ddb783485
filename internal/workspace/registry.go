// Package workspace keeps one loaded household workspace per signed-in
// identity.
package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dukerupert/chorehub/internal/entity"
	"github.com/dukerupert/chorehub/internal/interaction"
	"github.com/dukerupert/chorehub/internal/metrics"
	"github.com/dukerupert/chorehub/internal/mutation"
	"github.com/dukerupert/chorehub/internal/session"
)

// Workspace is the server-held state of one browser session.
type Workspace struct {
	Session     session.Session
	Mutations   *mutation.Coordinator
	Interaction *interaction.Holder

	mu       sync.Mutex
	lastUsed time.Time
}

func (w *Workspace) Store() *entity.Store { return w.Mutations.Store() }

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastUsed = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

type Registry struct {
	remote mutation.Remote
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
	loads singleflight.Group
}

func NewRegistry(remote mutation.Remote, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		remote: remote,
		logger: logger.With("component", "workspace"),
		now:    time.Now,
		items:  make(map[string]*Workspace),
	}
}

// Get returns the workspace for s, loading the household on first use.
// Concurrent first requests for one identity share a single load.
func (r *Registry) Get(ctx context.Context, s session.Session) (*Workspace, error) {
	if w := r.lookup(s); w != nil {
		return w, nil
	}
	v, err, _ := r.loads.Do(s.IdentityID, func() (any, error) {
		if w := r.lookup(s); w != nil {
			return w, nil
		}
		return r.load(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workspace), nil
}

func (r *Registry) lookup(s session.Session) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[s.IdentityID]
	if !ok {
		return nil
	}
	if w.Session != s {
		delete(r.items, s.IdentityID)
		metrics.SetWorkspaces(len(r.items))
		return nil
	}
	w.touch(r.now())
	return w
}

func (r *Registry) load(ctx context.Context, s session.Session) (*Workspace, error) {
	store := entity.New(s.HouseholdCode)
	coord := mutation.New(store, r.remote, r.logger)
	if err := coord.Reload(context.WithoutCancel(ctx), s.DisplayName); err != nil {
		return nil, err
	}
	w := &Workspace{Session: s, Mutations: coord, Interaction: &interaction.Holder{}}
	w.touch(r.now())

	r.mu.Lock()
	r.items[s.IdentityID] = w
	n := len(r.items)
	r.mu.Unlock()
	metrics.SetWorkspaces(n)

	r.logger.Info("workspace loaded", "household", s.HouseholdCode, "identity", s.IdentityID)
	return w, nil
}

// Evict drops the workspace of an identity, as on sign-out.
func (r *Registry) Evict(identityID string) {
	r.mu.Lock()
	delete(r.items, identityID)
	n := len(r.items)
	r.mu.Unlock()
	metrics.SetWorkspaces(n)
}

// EvictIdle drops workspaces unused for longer than maxIdle and returns how
// many were dropped.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, w := range r.items {
		if w.idleSince().Before(cutoff) {
			delete(r.items, id)
			n++
		}
	}
	metrics.SetWorkspaces(len(r.items))
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
