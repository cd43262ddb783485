// Package mutation applies household changes optimistically and reverts them
// when the remote store rejects the change.
package mutation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dukerupert/chorehub/internal/entity"
	"github.com/dukerupert/chorehub/internal/metrics"
	"github.com/dukerupert/chorehub/internal/model"
)

// Remote is the part of the persistence adapter the coordinator calls.
type Remote interface {
	entity.Source
	CreateCategory(ctx context.Context, c model.Category) (model.Category, error)
	CreateChore(ctx context.Context, c model.Chore) (model.Chore, error)
	Update(ctx context.Context, kind model.Kind, id string, p model.Patch) error
	Delete(ctx context.Context, kind model.Kind, id string) error
}

// Coordinator serializes the mutations of one workspace. Readers of the
// entity store see the optimistic state while a remote call is in flight.
type Coordinator struct {
	store  *entity.Store
	remote Remote
	logger *slog.Logger

	mu    sync.Mutex
	group singleflight.Group

	bannerMu sync.RWMutex
	banner   string
}

func New(store *entity.Store, remote Remote, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:  store,
		remote: remote,
		logger: logger.With("component", "mutation", "household", store.HouseholdID()),
	}
}

func (c *Coordinator) Store() *entity.Store { return c.store }

// Banner returns the message of the last failed mutation, or "".
func (c *Coordinator) Banner() string {
	c.bannerMu.RLock()
	defer c.bannerMu.RUnlock()
	return c.banner
}

func (c *Coordinator) DismissBanner() {
	c.setBanner("")
}

func (c *Coordinator) setBanner(msg string) {
	c.bannerMu.Lock()
	c.banner = msg
	c.bannerMu.Unlock()
}

// FailureMessage is the banner text shown when action fails remotely.
func FailureMessage(action string) string {
	return fmt.Sprintf("Failed to %s. Please try again.", action)
}

// Reload replaces the workspace with the remote state. It waits for any
// mutation in flight.
func (c *Coordinator) Reload(ctx context.Context, displayName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Load(ctx, c.remote, displayName); err != nil {
		c.setBanner(FailureMessage("load household"))
		return err
	}
	return nil
}

// op is one user action. apply validates and edits the working copy; commit
// issues the remote call(s) and returns the value handed back to callers.
type op struct {
	action string
	// key coalesces concurrent duplicates; empty disables coalescing.
	key    string
	apply  func(d *entity.Snapshot) error
	commit func(ctx context.Context) (any, error)
}

func (c *Coordinator) run(ctx context.Context, o op) (any, error) {
	if o.key == "" {
		return c.do(ctx, o)
	}
	v, err, shared := c.group.Do(o.key, func() (any, error) {
		return c.do(ctx, o)
	})
	if shared {
		c.logger.Debug("coalesced duplicate mutation", "action", o.action, "key", o.key)
	}
	return v, err
}

func (c *Coordinator) do(ctx context.Context, o op) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.store.Snapshot()
	if err := c.store.Mutate(o.apply); err != nil {
		metrics.ObserveMutation(o.action, err)
		return nil, err
	}

	// Once issued, the remote call outlives the request that started it.
	v, err := o.commit(context.WithoutCancel(ctx))
	metrics.ObserveMutation(o.action, err)
	if err != nil {
		c.store.Revert(before)
		metrics.ObserveRollback(o.action)
		c.setBanner(FailureMessage(o.action))
		c.logger.Error("mutation reverted", "action", o.action, "error", err)
		return nil, err
	}
	return v, nil
}

func pendingID() string {
	return "pending-" + uuid.NewString()
}

func key(parts ...string) string {
	return strings.Join(parts, "\x00")
}

func normalizeName(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", model.Invalid(field, field+" is required")
	}
	return s, nil
}

func notFound(kind model.Kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, model.ErrNotFound)
}

func findAssignee(d *entity.Snapshot, id string) int {
	for i, a := range d.Assignees {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func findCategory(d *entity.Snapshot, id string) int {
	for i, c := range d.Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func findChore(d *entity.Snapshot, id string) int {
	for i, c := range d.Chores {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// toggle adds id to list when absent and removes it when present.
func toggle(list []string, id string) []string {
	out := make([]string, 0, len(list)+1)
	found := false
	for _, v := range list {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

func without(list []string, id string) ([]string, bool) {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out, len(out) != len(list)
}

// assigneeIDs validates ids against the loaded assignees and drops repeats.
func assigneeIDs(d *entity.Snapshot, field string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if findAssignee(d, id) < 0 {
			return nil, model.Invalid(field, fmt.Sprintf("unknown assignee %q", id))
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
