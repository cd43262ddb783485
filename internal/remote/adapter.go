package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/chorehub/internal/metrics"
	"github.com/dukerupert/chorehub/internal/model"
)

// Adapter exposes typed CRUD over a Backend. Every failure it returns is a
// *model.RemoteError. It holds no state.
type Adapter struct {
	backend Backend
}

func NewAdapter(b Backend) *Adapter {
	return &Adapter{backend: b}
}

func (a *Adapter) fail(op string, kind model.Kind, err error) error {
	if err == nil {
		return nil
	}
	return &model.RemoteError{Op: op, Kind: kind, Err: err}
}

func (a *Adapter) insert(ctx context.Context, kind model.Kind, table string, row Row) (Row, error) {
	start := time.Now()
	out, err := a.backend.Insert(ctx, table, row)
	metrics.ObserveRemote("insert", table, start, err)
	return out, a.fail("insert", kind, err)
}

func (a *Adapter) list(ctx context.Context, kind model.Kind, table string, filter Row) ([]Row, error) {
	start := time.Now()
	rows, err := a.backend.List(ctx, table, filter)
	metrics.ObserveRemote("list", table, start, err)
	return rows, a.fail("list", kind, err)
}

// --- assignees ---

func (a *Adapter) CreateAssignee(ctx context.Context, in model.Assignee) (model.Assignee, error) {
	row, err := a.insert(ctx, model.KindAssignee, TableAssignees, assigneeToRemote(in))
	if err != nil {
		return model.Assignee{}, err
	}
	out, err := assigneeFromRemote(row)
	return out, a.fail("insert", model.KindAssignee, err)
}

func (a *Adapter) ListAssignees(ctx context.Context, householdID string) ([]model.Assignee, error) {
	rows, err := a.list(ctx, model.KindAssignee, TableAssignees, Row{colHouseholdID: householdID})
	if err != nil {
		return nil, err
	}
	out := make([]model.Assignee, 0, len(rows))
	for _, r := range rows {
		v, err := assigneeFromRemote(r)
		if err != nil {
			return nil, a.fail("list", model.KindAssignee, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// --- categories ---

func (a *Adapter) CreateCategory(ctx context.Context, in model.Category) (model.Category, error) {
	row, err := a.insert(ctx, model.KindCategory, TableCategories, categoryToRemote(in))
	if err != nil {
		return model.Category{}, err
	}
	out, err := categoryFromRemote(row)
	return out, a.fail("insert", model.KindCategory, err)
}

func (a *Adapter) ListCategories(ctx context.Context, householdID string) ([]model.Category, error) {
	rows, err := a.list(ctx, model.KindCategory, TableCategories, Row{colHouseholdID: householdID})
	if err != nil {
		return nil, err
	}
	out := make([]model.Category, 0, len(rows))
	for _, r := range rows {
		v, err := categoryFromRemote(r)
		if err != nil {
			return nil, a.fail("list", model.KindCategory, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// --- chores ---

func (a *Adapter) CreateChore(ctx context.Context, in model.Chore) (model.Chore, error) {
	row, err := a.insert(ctx, model.KindChore, TableChores, choreToRemote(in))
	if err != nil {
		return model.Chore{}, err
	}
	out, err := choreFromRemote(row)
	return out, a.fail("insert", model.KindChore, err)
}

func (a *Adapter) ListChores(ctx context.Context, householdID string) ([]model.Chore, error) {
	rows, err := a.list(ctx, model.KindChore, TableChores, Row{colHouseholdID: householdID})
	if err != nil {
		return nil, err
	}
	out := make([]model.Chore, 0, len(rows))
	for _, r := range rows {
		v, err := choreFromRemote(r)
		if err != nil {
			return nil, a.fail("list", model.KindChore, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// --- kind-generic ---

// Update applies a partial update. Last write wins.
func (a *Adapter) Update(ctx context.Context, kind model.Kind, id string, p model.Patch) error {
	table, err := tableFor(kind)
	if err != nil {
		return a.fail("update", kind, err)
	}
	fields, err := patchToRemote(kind, p)
	if err != nil {
		return a.fail("update", kind, err)
	}
	start := time.Now()
	err = a.backend.Update(ctx, table, id, fields)
	metrics.ObserveRemote("update", table, start, err)
	return a.fail("update", kind, err)
}

func (a *Adapter) Delete(ctx context.Context, kind model.Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return a.fail("delete", kind, err)
	}
	start := time.Now()
	err = a.backend.Delete(ctx, table, id)
	metrics.ObserveRemote("delete", table, start, err)
	return a.fail("delete", kind, err)
}

// --- households & profiles ---

// FindHousehold returns nil when no household has the code.
func (a *Adapter) FindHousehold(ctx context.Context, code string) (*model.Household, error) {
	rows, err := a.list(ctx, "", TableHouseholds, Row{colID: code})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &model.Household{Code: code}, nil
}

func (a *Adapter) CreateHousehold(ctx context.Context, code string) (model.Household, error) {
	if _, err := a.insert(ctx, "", TableHouseholds, Row{colID: code}); err != nil {
		return model.Household{}, err
	}
	return model.Household{Code: code}, nil
}

func (a *Adapter) CreateProfile(ctx context.Context, displayName, code string) (model.Profile, error) {
	row, err := a.insert(ctx, "", TableProfiles, Row{colDisplayName: displayName, colHouseholdID: code})
	if err != nil {
		return model.Profile{}, err
	}
	p, err := profileFromRemote(row)
	if err != nil {
		return model.Profile{}, a.fail("insert", "", fmt.Errorf("profile: %w", err))
	}
	return p, nil
}
