package remote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/chorehub/internal/database"
	"github.com/dukerupert/chorehub/internal/model"
	"github.com/dukerupert/chorehub/internal/remote"
	"github.com/dukerupert/chorehub/internal/remote/remotetest"
	"github.com/dukerupert/chorehub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChoreUsesRemoteNames(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)

	c, err := a.CreateChore(context.Background(), model.Chore{Title: "Wash dishes", HouseholdID: "home"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, []string{}, c.AssignedTo)
	assert.Nil(t, c.CategoryID)

	rows := b.Rows(remote.TableChores)
	require.Len(t, rows, 1)
	assert.Equal(t, "home", rows[0]["household_id"])
	assert.Contains(t, rows[0], "assignee_ids")
	assert.NotContains(t, rows[0], "assignedTo")
}

func TestCategoryOpenStateNotPersisted(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)

	_, err := a.CreateCategory(context.Background(), model.Category{Name: "Kitchen", HouseholdID: "home", IsOpen: true})
	require.NoError(t, err)

	row := b.Rows(remote.TableCategories)[0]
	assert.NotContains(t, row, "is_open")
	assert.NotContains(t, row, "isOpen")

	cats, err := a.ListCategories(context.Background(), "home")
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.False(t, cats[0].IsOpen)
}

func TestListScopedToHousehold(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)
	ctx := context.Background()

	_, _ = a.CreateAssignee(ctx, model.Assignee{Name: "Alex", HouseholdID: "home"})
	_, _ = a.CreateAssignee(ctx, model.Assignee{Name: "Pat", HouseholdID: "other"})

	got, err := a.ListAssignees(ctx, "home")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alex", got[0].Name)
}

func TestFailuresAreRemoteErrors(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)
	ctx := context.Background()

	b.FailNext("update", remote.TableChores, nil)
	err := a.Update(ctx, model.KindChore, "c-1", model.Patch{model.FieldCompleted: true})
	require.Error(t, err)

	var re *model.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "update", re.Op)
	assert.Equal(t, model.KindChore, re.Kind)
	assert.ErrorIs(t, err, remotetest.ErrInjected)
}

func TestUpdateMissingRowIsRemoteError(t *testing.T) {
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	a := remote.NewAdapter(store.New(db, database.DriverSQLite))

	err = a.Update(context.Background(), model.KindChore, "gone", model.Patch{model.FieldCompleted: true})
	var re *model.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "update", re.Op)
	assert.ErrorIs(t, err, remote.ErrNoRow)

	// deleting a missing row stays idempotent
	assert.NoError(t, a.Delete(context.Background(), model.KindChore, "gone"))
}

func TestUpdateTranslatesPatch(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)
	ctx := context.Background()

	c, err := a.CreateChore(ctx, model.Chore{Title: "Mop", HouseholdID: "home"})
	require.NoError(t, err)
	require.NoError(t, a.Update(ctx, model.KindChore, c.ID, model.Patch{model.FieldAssignedTo: []string{"a-1"}}))

	chores, err := a.ListChores(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-1"}, chores[0].AssignedTo)
}

func TestHouseholdLookup(t *testing.T) {
	b := remotetest.New()
	a := remote.NewAdapter(b)
	ctx := context.Background()

	h, err := a.FindHousehold(ctx, "home-2026")
	require.NoError(t, err)
	assert.Nil(t, h)

	_, err = a.CreateHousehold(ctx, "home-2026")
	require.NoError(t, err)

	h, err = a.FindHousehold(ctx, "home-2026")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "home-2026", h.Code)

	p, err := a.CreateProfile(ctx, "Alex", "home-2026")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Alex", p.DisplayName)
}
