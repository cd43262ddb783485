// Package remote is the only place that knows both field-naming conventions.
// It translates workspace entities into snake_case rows and hands them to a
// Backend, which talks to the actual relational store.
package remote

import (
	"context"
	"errors"
)

// ErrNoRow is returned by Backend.Update when no row has the given id.
var ErrNoRow = errors.New("no such row")

// Row is one record in the remote schema, keyed by column name.
type Row map[string]any

// Backend performs row-level CRUD against the remote store. Implementations
// assign ids on Insert when the row has none and must not retry internally.
// Update of a missing row fails with ErrNoRow; Delete of a missing row
// succeeds.
type Backend interface {
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table, id string, fields Row) error
	Delete(ctx context.Context, table, id string) error
	// List returns rows whose columns equal every value in filter, in
	// insertion order.
	List(ctx context.Context, table string, filter Row) ([]Row, error)
}

// Remote table names.
const (
	TableHouseholds = "households"
	TableProfiles   = "profiles"
	TableAssignees  = "assignees"
	TableCategories = "categories"
	TableChores     = "chores"
)
