package store

type colType int

const (
	colText colType = iota
	colOptText
	colBool
	colIDList
)

type column struct {
	name string
	typ  colType
}

type table struct {
	name string
	// cols lists selectable columns in scan order; "id" is always first.
	cols  []string
	types map[string]colType
}

func newTable(name string, cols ...column) table {
	t := table{name: name, cols: []string{"id"}, types: map[string]colType{"id": colText}}
	for _, c := range cols {
		t.cols = append(t.cols, c.name)
		t.types[c.name] = c.typ
	}
	return t
}

// tables is the remote schema. Columns outside it are rejected before any
// SQL is built.
var tables = map[string]table{
	"households": newTable("households"),
	"profiles": newTable("profiles",
		column{"display_name", colText},
		column{"household_id", colText},
	),
	"assignees": newTable("assignees",
		column{"name", colText},
		column{"household_id", colText},
	),
	"categories": newTable("categories",
		column{"name", colText},
		column{"household_id", colText},
		column{"default_assignee_ids", colIDList},
	),
	"chores": newTable("chores",
		column{"title", colText},
		column{"completed", colBool},
		column{"household_id", colText},
		column{"assignee_ids", colIDList},
		column{"category_id", colOptText},
	),
}
