package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/chorehub/internal/model"
	"github.com/dukerupert/chorehub/internal/remote"
	"github.com/dukerupert/chorehub/internal/remote/remotetest"
)

func TestLoadCreatesMissingAssignee(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)
	ctx := context.Background()

	s := New("home-2026")
	if err := s.Load(ctx, a, "Alex"); err != nil {
		t.Fatalf("load: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.Assignees) != 1 || snap.Assignees[0].Name != "Alex" {
		t.Fatalf("assignees = %+v, want [Alex]", snap.Assignees)
	}

	// case-insensitive match: no duplicate on the next load
	if err := s.Load(ctx, a, "alex"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len(b.Rows(remote.TableAssignees)); n != 1 {
		t.Errorf("remote assignees = %d, want 1", n)
	}
}

func TestTwoMembersJoinSameHousehold(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)
	ctx := context.Background()

	if err := New("home-2026").Load(ctx, a, "Alex"); err != nil {
		t.Fatalf("load alex: %v", err)
	}
	sam := New("home-2026")
	if err := sam.Load(ctx, a, "Sam"); err != nil {
		t.Fatalf("load sam: %v", err)
	}

	snap := sam.Snapshot()
	if len(snap.Assignees) != 2 {
		t.Fatalf("expected 2 assignees, got %d", len(snap.Assignees))
	}
	if snap.Assignees[0].Name != "Alex" || snap.Assignees[1].Name != "Sam" {
		t.Errorf("assignees = %+v", snap.Assignees)
	}
}

func TestLoadKeepsOpenCategories(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)
	ctx := context.Background()

	cat, err := a.CreateCategory(ctx, model.Category{Name: "Kitchen", HouseholdID: "home"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	s := New("home")
	if err := s.Load(ctx, a, ""); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := s.ToggleOpen(cat.ID); err != nil {
		t.Fatalf("toggle open: %v", err)
	}

	if err := s.Load(ctx, a, ""); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := s.Snapshot().Categories
	if len(got) != 1 || got[0].ID != cat.ID || !got[0].IsOpen {
		t.Errorf("categories = %+v, want open %s", got, cat.ID)
	}
}

func TestLoadFailureLeavesStoreUntouched(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)
	ctx := context.Background()

	s := New("home")
	s.ReplaceChores([]model.Chore{{ID: "keep", Title: "Keep me"}})

	b.FailNext("list", remote.TableChores, nil)
	if err := s.Load(ctx, a, "Alex"); err == nil {
		t.Fatal("expected load error")
	}
	if got := s.Snapshot().Chores; len(got) != 1 || got[0].ID != "keep" {
		t.Errorf("chores = %+v, want untouched", got)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New("home")
	s.ReplaceChores([]model.Chore{{ID: "1", AssignedTo: []string{"a"}}})

	snap := s.Snapshot()
	snap.Chores[0].AssignedTo[0] = "mutated"
	snap.Chores[0].Title = "mutated"

	got := s.Snapshot().Chores[0]
	if got.AssignedTo[0] != "a" || got.Title != "" {
		t.Errorf("store was mutated through snapshot: %+v", got)
	}
}

func TestReplaceCopiesCallerSlice(t *testing.T) {
	s := New("home")
	list := []model.Chore{{ID: "1", Title: "Dishes", AssignedTo: []string{"a"}}}
	s.ReplaceChores(list)

	list[0].Title = "mutated"
	list[0].AssignedTo[0] = "mutated"

	got := s.Snapshot().Chores[0]
	if got.Title != "Dishes" || got.AssignedTo[0] != "a" {
		t.Errorf("store shares memory with caller: %+v", got)
	}
}

func TestReplaceCategoriesKeepsOpenState(t *testing.T) {
	s := New("home")
	s.ReplaceCategories([]model.Category{{ID: "k", Name: "Kitchen"}, {ID: "y", Name: "Yard"}})
	if _, err := s.ToggleOpen("k"); err != nil {
		t.Fatalf("toggle open: %v", err)
	}

	s.ReplaceCategories([]model.Category{{ID: "k", Name: "Galley"}, {ID: "y", Name: "Yard"}})

	got := s.Snapshot().Categories
	if !got[0].IsOpen || got[0].Name != "Galley" {
		t.Errorf("kitchen = %+v, want renamed and open", got[0])
	}
	if got[1].IsOpen {
		t.Errorf("yard should stay closed")
	}
}

func TestRestore(t *testing.T) {
	s := New("home")
	s.ReplaceAssignees([]model.Assignee{{ID: "a", Name: "Alex"}})
	before := s.Snapshot()

	s.ReplaceAssignees(nil)
	s.Restore(before)

	if got := s.Snapshot().Assignees; len(got) != 1 || got[0].Name != "Alex" {
		t.Errorf("assignees = %+v after restore", got)
	}
}

func TestMutateErrorDiscardsChanges(t *testing.T) {
	s := New("home")
	s.ReplaceChores([]model.Chore{{ID: "1", Title: "Dishes"}})

	err := s.Mutate(func(d *Snapshot) error {
		d.Chores[0].Title = "changed"
		return errors.New("reject")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := s.Snapshot().Chores[0].Title; got != "Dishes" {
		t.Errorf("title = %q, want Dishes", got)
	}
}

func TestRevertKeepsOpenState(t *testing.T) {
	s := New("home")
	s.ReplaceCategories([]model.Category{{ID: "k", Name: "Kitchen"}})
	before := s.Snapshot()

	s.Mutate(func(d *Snapshot) error {
		d.Categories[0].Name = "Galley"
		return nil
	})
	if _, err := s.ToggleOpen("k"); err != nil {
		t.Fatalf("toggle open: %v", err)
	}
	s.Revert(before)

	got := s.Snapshot().Categories[0]
	if got.Name != "Kitchen" || !got.IsOpen {
		t.Errorf("category = %+v, want Kitchen and open", got)
	}
}

func TestToggleOpenUnknown(t *testing.T) {
	s := New("home")
	if _, err := s.ToggleOpen("missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
