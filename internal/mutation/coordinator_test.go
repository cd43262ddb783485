package mutation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/chorehub/internal/chore"
	"github.com/dukerupert/chorehub/internal/entity"
	"github.com/dukerupert/chorehub/internal/model"
	"github.com/dukerupert/chorehub/internal/mutation"
	"github.com/dukerupert/chorehub/internal/remote"
	"github.com/dukerupert/chorehub/internal/remote/remotetest"
)

const household = "home-2026"

func setup(t *testing.T) (*mutation.Coordinator, *remotetest.Backend, *remote.Adapter) {
	t.Helper()
	b := remotetest.New()
	a := remote.NewAdapter(b)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := mutation.New(entity.New(household), a, logger)
	return c, b, a
}

func countOps(b *remotetest.Backend, op string) int {
	n := 0
	for _, call := range b.Calls() {
		if call.Op == op {
			n++
		}
	}
	return n
}

func TestAddChoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _, a := setup(t)

	added, err := c.AddChore(ctx, mutation.NewChore{Title: "  Wash dishes "})
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(added.ID, "pending-"), "id %q should be server assigned", added.ID)

	local := c.Store().Snapshot().Chores
	require.Len(t, local, 1)
	assert.Equal(t, added.ID, local[0].ID)

	fresh := entity.New(household)
	require.NoError(t, fresh.Load(ctx, a, ""))
	chores := fresh.Snapshot().Chores
	require.Len(t, chores, 1)
	assert.Equal(t, "Wash dishes", chores[0].Title)
	assert.False(t, chores[0].Completed)
	assert.Empty(t, chores[0].AssignedTo)
	assert.Nil(t, chores[0].CategoryID)
}

func TestValidationRejectsBeforeRemote(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	_, err := c.AddChore(ctx, mutation.NewChore{Title: "   "})
	require.Error(t, err)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, model.FieldTitle, ve.Field)

	_, err = c.AddAssignee(ctx, "")
	assert.True(t, model.IsValidation(err))

	assert.Empty(t, b.Calls())
	assert.Empty(t, c.Banner(), "validation errors are shown inline")
}

func TestAddAssigneeDuplicateName(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	_, err := c.AddAssignee(ctx, "Alex")
	require.NoError(t, err)

	_, err = c.AddAssignee(ctx, " alex ")
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Duplicate)
	assert.Equal(t, 1, countOps(b, "insert"))
	assert.Len(t, c.Store().Snapshot().Assignees, 1)
}

func TestRenameAssigneeDuplicate(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t)

	alex, err := c.AddAssignee(ctx, "Alex")
	require.NoError(t, err)
	_, err = c.AddAssignee(ctx, "Sam")
	require.NoError(t, err)

	err = c.RenameAssignee(ctx, alex.ID, "SAM")
	assert.True(t, model.IsValidation(err))

	// renaming to a different case of its own name is allowed
	require.NoError(t, c.RenameAssignee(ctx, alex.ID, "ALEX"))
	assert.Equal(t, "ALEX", c.Store().Snapshot().Assignees[0].Name)
}

func TestRemoteFailureRevertsAndSetsBanner(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	ch, err := c.AddChore(ctx, mutation.NewChore{Title: "Mop floor"})
	require.NoError(t, err)

	b.FailNext("update", remote.TableChores, nil)
	_, err = c.ToggleChoreCompleted(ctx, ch.ID)
	require.Error(t, err)
	assert.True(t, model.IsRemote(err))
	assert.ErrorIs(t, err, remotetest.ErrInjected)

	assert.False(t, c.Store().Snapshot().Chores[0].Completed, "optimistic toggle should be reverted")
	assert.Equal(t, "Failed to update chore. Please try again.", c.Banner())

	c.DismissBanner()
	assert.Empty(t, c.Banner())

	done, err := c.ToggleChoreCompleted(ctx, ch.ID)
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, c.Store().Snapshot().Chores[0].Completed)
}

func TestFailedCreateLeavesNoPendingEntity(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	b.FailNext("insert", remote.TableChores, nil)
	_, err := c.AddChore(ctx, mutation.NewChore{Title: "Vacuum"})
	require.Error(t, err)

	assert.Empty(t, c.Store().Snapshot().Chores)
	assert.Equal(t, "Failed to add chore. Please try again.", c.Banner())
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	err := c.RenameChore(ctx, "missing", "x")
	assert.True(t, errors.Is(err, model.ErrNotFound))
	assert.Empty(t, b.Calls())
	assert.Empty(t, c.Banner())
}

func TestDeleteAssigneeCascade(t *testing.T) {
	ctx := context.Background()
	c, _, a := setup(t)

	alex, err := c.AddAssignee(ctx, "Alex")
	require.NoError(t, err)
	sam, err := c.AddAssignee(ctx, "Sam")
	require.NoError(t, err)
	kitchen, err := c.AddCategory(ctx, "Kitchen", []string{alex.ID, sam.ID})
	require.NoError(t, err)
	ch, err := c.AddChore(ctx, mutation.NewChore{Title: "Dishes", AssignedTo: []string{alex.ID}})
	require.NoError(t, err)

	require.NoError(t, c.DeleteAssignee(ctx, alex.ID))

	snap := c.Store().Snapshot()
	assert.Len(t, snap.Assignees, 1)
	assert.Empty(t, snap.Chores[0].AssignedTo)
	assert.Equal(t, []string{sam.ID}, snap.Categories[0].DefaultAssignees)

	fresh := entity.New(household)
	require.NoError(t, fresh.Load(ctx, a, ""))
	remoteSnap := fresh.Snapshot()
	require.Len(t, remoteSnap.Assignees, 1)
	assert.Equal(t, sam.ID, remoteSnap.Assignees[0].ID)
	assert.Equal(t, ch.ID, remoteSnap.Chores[0].ID)
	assert.Empty(t, remoteSnap.Chores[0].AssignedTo)
	assert.Equal(t, kitchen.ID, remoteSnap.Categories[0].ID)
	assert.Equal(t, []string{sam.ID}, remoteSnap.Categories[0].DefaultAssignees)
}

func TestDeleteAssigneePartialFailure(t *testing.T) {
	ctx := context.Background()
	c, b, a := setup(t)

	alex, err := c.AddAssignee(ctx, "Alex")
	require.NoError(t, err)
	_, err = c.AddCategory(ctx, "Kitchen", []string{alex.ID})
	require.NoError(t, err)
	_, err = c.AddChore(ctx, mutation.NewChore{Title: "Dishes", AssignedTo: []string{alex.ID}})
	require.NoError(t, err)

	b.FailNext("update", remote.TableCategories, nil)
	require.Error(t, c.DeleteAssignee(ctx, alex.ID))

	// local state is reverted in full
	snap := c.Store().Snapshot()
	require.Len(t, snap.Assignees, 1)
	assert.Equal(t, []string{alex.ID}, snap.Chores[0].AssignedTo)
	assert.Equal(t, []string{alex.ID}, snap.Categories[0].DefaultAssignees)
	assert.Equal(t, "Failed to delete assignee. Please try again.", c.Banner())

	// the assignee row was never deleted, so nothing dangles remotely
	assert.Equal(t, 0, countOps(b, "delete"))
	fresh := entity.New(household)
	require.NoError(t, fresh.Load(ctx, a, ""))
	assert.Len(t, fresh.Snapshot().Assignees, 1)

	// retrying completes the cascade
	require.NoError(t, c.DeleteAssignee(ctx, alex.ID))
	require.NoError(t, fresh.Load(ctx, a, ""))
	assert.Empty(t, fresh.Snapshot().Assignees)
	assert.Empty(t, fresh.Snapshot().Categories[0].DefaultAssignees)
}

func TestDeleteCategoryUncategorizesChores(t *testing.T) {
	ctx := context.Background()
	c, _, a := setup(t)

	kitchen, err := c.AddCategory(ctx, "Kitchen", nil)
	require.NoError(t, err)
	_, err = c.AddChore(ctx, mutation.NewChore{Title: "Mop floor", CategoryID: &kitchen.ID})
	require.NoError(t, err)
	_, err = c.AddChore(ctx, mutation.NewChore{Title: "Walk dog"})
	require.NoError(t, err)

	require.NoError(t, c.DeleteCategory(ctx, kitchen.ID))

	fresh := entity.New(household)
	require.NoError(t, fresh.Load(ctx, a, ""))
	snap := fresh.Snapshot()
	assert.Empty(t, snap.Categories)
	require.Len(t, snap.Chores, 2)
	for _, ch := range snap.Chores {
		assert.Nil(t, ch.CategoryID, "chore %s", ch.Title)
	}
}

func TestKitchenInheritance(t *testing.T) {
	ctx := context.Background()
	c, _, _ := setup(t)

	alex, err := c.AddAssignee(ctx, "Alex")
	require.NoError(t, err)
	sam, err := c.AddAssignee(ctx, "Sam")
	require.NoError(t, err)
	kitchen, err := c.AddCategory(ctx, "Kitchen", []string{alex.ID})
	require.NoError(t, err)
	mop, err := c.AddChore(ctx, mutation.NewChore{Title: "Mop floor", CategoryID: &kitchen.ID})
	require.NoError(t, err)

	snap := c.Store().Snapshot()
	eff := chore.Resolve(snap.Chores[0], snap.Categories)
	assert.Equal(t, []string{alex.ID}, eff.AssigneeIDs)
	assert.True(t, eff.Inherited)

	require.NoError(t, c.ToggleChoreAssignee(ctx, mop.ID, sam.ID))
	snap = c.Store().Snapshot()
	eff = chore.Resolve(snap.Chores[0], snap.Categories)
	assert.Equal(t, []string{sam.ID}, eff.AssigneeIDs)
	assert.False(t, eff.Inherited)

	// removing the last direct assignee falls back to the category
	require.NoError(t, c.ToggleChoreAssignee(ctx, mop.ID, sam.ID))
	snap = c.Store().Snapshot()
	eff = chore.Resolve(snap.Chores[0], snap.Categories)
	assert.Equal(t, []string{alex.ID}, eff.AssigneeIDs)
	assert.True(t, eff.Inherited)
}

func TestToggleCategoryDefaultAndSetCategory(t *testing.T) {
	ctx := context.Background()
	c, _, a := setup(t)

	alex, err := c.AddAssignee(ctx, "Alex")
	require.NoError(t, err)
	yard, err := c.AddCategory(ctx, "Yard", nil)
	require.NoError(t, err)
	ch, err := c.AddChore(ctx, mutation.NewChore{Title: "Rake leaves"})
	require.NoError(t, err)

	require.NoError(t, c.ToggleCategoryDefault(ctx, yard.ID, alex.ID))
	require.NoError(t, c.SetChoreCategory(ctx, ch.ID, &yard.ID))
	require.NoError(t, c.RenameCategory(ctx, yard.ID, "Garden"))
	require.NoError(t, c.RenameChore(ctx, ch.ID, "Rake all leaves"))

	fresh := entity.New(household)
	require.NoError(t, fresh.Load(ctx, a, ""))
	snap := fresh.Snapshot()
	assert.Equal(t, "Garden", snap.Categories[0].Name)
	assert.Equal(t, []string{alex.ID}, snap.Categories[0].DefaultAssignees)
	require.NotNil(t, snap.Chores[0].CategoryID)
	assert.Equal(t, yard.ID, *snap.Chores[0].CategoryID)
	assert.Equal(t, "Rake all leaves", snap.Chores[0].Title)

	require.NoError(t, c.SetChoreCategory(ctx, ch.ID, nil))
	require.NoError(t, c.ToggleCategoryDefault(ctx, yard.ID, alex.ID))
	require.NoError(t, fresh.Load(ctx, a, ""))
	snap = fresh.Snapshot()
	assert.Nil(t, snap.Chores[0].CategoryID)
	assert.Empty(t, snap.Categories[0].DefaultAssignees)
}

func TestDeleteChore(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	ch, err := c.AddChore(ctx, mutation.NewChore{Title: "Dust"})
	require.NoError(t, err)
	require.NoError(t, c.DeleteChore(ctx, ch.ID))

	assert.Empty(t, c.Store().Snapshot().Chores)
	assert.Empty(t, b.Rows(remote.TableChores))
}

func TestReadersSeeOptimisticState(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	ch, err := c.AddChore(ctx, mutation.NewChore{Title: "Laundry"})
	require.NoError(t, err)

	b.Gate = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := c.ToggleChoreCompleted(ctx, ch.ID)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return c.Store().Snapshot().Chores[0].Completed
	}, time.Second, 5*time.Millisecond)

	close(b.Gate)
	require.NoError(t, <-done)
	assert.True(t, c.Store().Snapshot().Chores[0].Completed)
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	b.FailNext("list", "", nil)
	require.Error(t, c.Reload(ctx, "Alex"))
	assert.Equal(t, "Failed to load household. Please try again.", c.Banner())

	require.NoError(t, c.Reload(ctx, "Alex"))
	assert.Len(t, c.Store().Snapshot().Assignees, 1)
}

func TestToggleOfRemotelyDeletedChoreReverts(t *testing.T) {
	ctx := context.Background()
	c, _, a := setup(t)

	ch, err := c.AddChore(ctx, mutation.NewChore{Title: "Dust shelves"})
	require.NoError(t, err)
	// another session removes the chore
	require.NoError(t, a.Delete(ctx, model.KindChore, ch.ID))

	_, err = c.ToggleChoreCompleted(ctx, ch.ID)
	require.Error(t, err)
	assert.True(t, model.IsRemote(err))
	assert.ErrorIs(t, err, remote.ErrNoRow)

	chores := c.Store().Snapshot().Chores
	require.Len(t, chores, 1)
	assert.False(t, chores[0].Completed)
	assert.Equal(t, "Failed to update chore. Please try again.", c.Banner())
}

func TestDuplicateToggleCoalesced(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	ch, err := c.AddChore(ctx, mutation.NewChore{Title: "Water plants"})
	require.NoError(t, err)

	b.Gate = make(chan struct{})
	results := make(chan bool, 2)
	toggle := func() {
		done, err := c.ToggleChoreCompleted(ctx, ch.ID)
		assert.NoError(t, err)
		results <- done
	}
	go toggle()
	require.Eventually(t, func() bool { return countOps(b, "update") == 1 }, time.Second, 5*time.Millisecond)
	go toggle()
	// let the second request join the call in flight
	time.Sleep(50 * time.Millisecond)
	close(b.Gate)

	assert.True(t, <-results)
	assert.True(t, <-results)
	assert.Equal(t, 1, countOps(b, "update"))
	assert.True(t, c.Store().Snapshot().Chores[0].Completed)
}

func TestDistinctMutationsRunSerially(t *testing.T) {
	ctx := context.Background()
	c, b, _ := setup(t)

	first, err := c.AddChore(ctx, mutation.NewChore{Title: "Sweep porch"})
	require.NoError(t, err)
	second, err := c.AddChore(ctx, mutation.NewChore{Title: "Feed cat"})
	require.NoError(t, err)

	b.Gate = make(chan struct{})
	errs := make(chan error, 2)
	go func() {
		_, err := c.ToggleChoreCompleted(ctx, first.ID)
		errs <- err
	}()
	require.Eventually(t, func() bool { return countOps(b, "update") == 1 }, time.Second, 5*time.Millisecond)
	go func() {
		errs <- c.RenameChore(ctx, second.ID, "Feed the cat")
	}()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, countOps(b, "update"), "second mutation waits for the first")
	close(b.Gate)

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	assert.Equal(t, 2, countOps(b, "update"))

	chores := c.Store().Snapshot().Chores
	assert.True(t, chores[0].Completed)
	assert.Equal(t, "Feed the cat", chores[1].Title)
}
