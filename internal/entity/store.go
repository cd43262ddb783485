// Package entity holds the in-memory copy of one household's assignees,
// categories and chores.
package entity

import (
	"context"
	"fmt"
	"sync"

	"github.com/dukerupert/chorehub/internal/model"
)

// Snapshot is a value copy of the three collections.
type Snapshot struct {
	Assignees  []model.Assignee `json:"assignees"`
	Categories []model.Category `json:"categories"`
	Chores     []model.Chore    `json:"chores"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Assignees:  make([]model.Assignee, len(s.Assignees)),
		Categories: make([]model.Category, 0, len(s.Categories)),
		Chores:     make([]model.Chore, 0, len(s.Chores)),
	}
	copy(out.Assignees, s.Assignees)
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, c.Clone())
	}
	for _, c := range s.Chores {
		out.Chores = append(out.Chores, c.Clone())
	}
	return out
}

// Source reads a household from the remote store.
type Source interface {
	ListAssignees(ctx context.Context, householdID string) ([]model.Assignee, error)
	ListCategories(ctx context.Context, householdID string) ([]model.Category, error)
	ListChores(ctx context.Context, householdID string) ([]model.Chore, error)
	CreateAssignee(ctx context.Context, a model.Assignee) (model.Assignee, error)
}

// Store is safe for concurrent readers. It performs no validation; callers
// keep the collections consistent.
type Store struct {
	householdID string

	mu   sync.RWMutex
	data Snapshot
}

func New(householdID string) *Store {
	return &Store{householdID: householdID}
}

func (s *Store) HouseholdID() string { return s.householdID }

// Snapshot returns a deep copy of the current collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Restore replaces all collections with snap.
func (s *Store) Restore(snap Snapshot) {
	snap = snap.Clone()
	s.mu.Lock()
	s.data = snap
	s.mu.Unlock()
}

// Revert restores snap but keeps the current open state of categories.
func (s *Store) Revert(snap Snapshot) {
	snap = snap.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	keepOpen(s.data.Categories, snap.Categories)
	s.data = snap
}

// Mutate applies fn to a copy of the collections and swaps the result in.
// When fn returns an error the copy is discarded.
func (s *Store) Mutate(fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// ReplaceAssignees swaps in a copy of list.
func (s *Store) ReplaceAssignees(list []model.Assignee) {
	s.Mutate(func(d *Snapshot) error {
		d.Assignees = Snapshot{Assignees: list}.Clone().Assignees
		return nil
	})
}

// ReplaceCategories swaps in a copy of list. Open state carries over by id.
func (s *Store) ReplaceCategories(list []model.Category) {
	s.Mutate(func(d *Snapshot) error {
		next := Snapshot{Categories: list}.Clone().Categories
		keepOpen(d.Categories, next)
		d.Categories = next
		return nil
	})
}

func (s *Store) ReplaceChores(list []model.Chore) {
	s.Mutate(func(d *Snapshot) error {
		d.Chores = Snapshot{Chores: list}.Clone().Chores
		return nil
	})
}

// ToggleOpen flips the local open state of a category and returns the new
// value. Open state is never sent to the remote store.
func (s *Store) ToggleOpen(categoryID string) (bool, error) {
	var open bool
	err := s.Mutate(func(d *Snapshot) error {
		for i := range d.Categories {
			if d.Categories[i].ID == categoryID {
				d.Categories[i].IsOpen = !d.Categories[i].IsOpen
				open = d.Categories[i].IsOpen
				return nil
			}
		}
		return fmt.Errorf("category %s: %w", categoryID, model.ErrNotFound)
	})
	return open, err
}

// Load replaces the collections with the remote state of the household. When
// no assignee matches displayName, one is created and appended. Category open
// state survives a reload.
func (s *Store) Load(ctx context.Context, src Source, displayName string) error {
	assignees, err := src.ListAssignees(ctx, s.householdID)
	if err != nil {
		return fmt.Errorf("load assignees: %w", err)
	}
	categories, err := src.ListCategories(ctx, s.householdID)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	chores, err := src.ListChores(ctx, s.householdID)
	if err != nil {
		return fmt.Errorf("load chores: %w", err)
	}

	if displayName != "" && !hasAssignee(assignees, displayName) {
		a, err := src.CreateAssignee(ctx, model.Assignee{Name: displayName, HouseholdID: s.householdID})
		if err != nil {
			return fmt.Errorf("create default assignee: %w", err)
		}
		assignees = append(assignees, a)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	keepOpen(s.data.Categories, categories)
	s.data = Snapshot{Assignees: assignees, Categories: categories, Chores: chores}
	return nil
}

// keepOpen copies the open flag from cur onto matching ids in next.
func keepOpen(cur, next []model.Category) {
	open := make(map[string]bool)
	for _, c := range cur {
		if c.IsOpen {
			open[c.ID] = true
		}
	}
	for i := range next {
		next[i].IsOpen = open[next[i].ID]
	}
}

func hasAssignee(list []model.Assignee, name string) bool {
	for _, a := range list {
		if model.SameName(a.Name, name) {
			return true
		}
	}
	return false
}
