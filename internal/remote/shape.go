package remote

import (
	"encoding/json"
	"fmt"

	"github.com/dukerupert/chorehub/internal/model"
)

// Remote column names.
const (
	colID                 = "id"
	colName               = "name"
	colTitle              = "title"
	colCompleted          = "completed"
	colHouseholdID        = "household_id"
	colAssigneeIDs        = "assignee_ids"
	colDefaultAssigneeIDs = "default_assignee_ids"
	colCategoryID         = "category_id"
	colDisplayName        = "display_name"
)

var tables = map[model.Kind]string{
	model.KindAssignee: TableAssignees,
	model.KindCategory: TableCategories,
	model.KindChore:    TableChores,
}

// patchColumns maps in-memory field names to remote columns for each kind.
// Fields absent here cannot be patched.
var patchColumns = map[model.Kind]map[string]string{
	model.KindAssignee: {
		model.FieldName: colName,
	},
	model.KindCategory: {
		model.FieldName:             colName,
		model.FieldDefaultAssignees: colDefaultAssigneeIDs,
	},
	model.KindChore: {
		model.FieldTitle:      colTitle,
		model.FieldCompleted:  colCompleted,
		model.FieldAssignedTo: colAssigneeIDs,
		model.FieldCategoryID: colCategoryID,
	},
}

func tableFor(kind model.Kind) (string, error) {
	t, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("unknown kind %q", kind)
	}
	return t, nil
}

func patchToRemote(kind model.Kind, p model.Patch) (Row, error) {
	cols, ok := patchColumns[kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	row := make(Row, len(p))
	for field, v := range p {
		col, ok := cols[field]
		if !ok {
			return nil, fmt.Errorf("field %q cannot be patched on %s", field, kind)
		}
		switch val := v.(type) {
		case []string:
			row[col] = ids(val)
		case *string:
			if val == nil {
				row[col] = nil
			} else {
				row[col] = *val
			}
		default:
			row[col] = v
		}
	}
	return row, nil
}

// ids never returns nil so empty lists are stored as [] rather than NULL.
func ids(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// --- to/from remote shape ---

func assigneeToRemote(a model.Assignee) Row {
	r := Row{colName: a.Name, colHouseholdID: a.HouseholdID}
	if a.ID != "" {
		r[colID] = a.ID
	}
	return r
}

func assigneeFromRemote(r Row) (model.Assignee, error) {
	var a model.Assignee
	var err error
	if a.ID, err = str(r, colID); err != nil {
		return a, err
	}
	if a.Name, err = str(r, colName); err != nil {
		return a, err
	}
	a.HouseholdID, err = str(r, colHouseholdID)
	return a, err
}

func categoryToRemote(c model.Category) Row {
	r := Row{
		colName:               c.Name,
		colHouseholdID:        c.HouseholdID,
		colDefaultAssigneeIDs: ids(c.DefaultAssignees),
	}
	if c.ID != "" {
		r[colID] = c.ID
	}
	return r
}

func categoryFromRemote(r Row) (model.Category, error) {
	var c model.Category
	var err error
	if c.ID, err = str(r, colID); err != nil {
		return c, err
	}
	if c.Name, err = str(r, colName); err != nil {
		return c, err
	}
	if c.HouseholdID, err = str(r, colHouseholdID); err != nil {
		return c, err
	}
	c.DefaultAssignees, err = strList(r, colDefaultAssigneeIDs)
	return c, err
}

func choreToRemote(c model.Chore) Row {
	r := Row{
		colTitle:       c.Title,
		colCompleted:   c.Completed,
		colHouseholdID: c.HouseholdID,
		colAssigneeIDs: ids(c.AssignedTo),
		colCategoryID:  nil,
	}
	if c.CategoryID != nil {
		r[colCategoryID] = *c.CategoryID
	}
	if c.ID != "" {
		r[colID] = c.ID
	}
	return r
}

func choreFromRemote(r Row) (model.Chore, error) {
	var c model.Chore
	var err error
	if c.ID, err = str(r, colID); err != nil {
		return c, err
	}
	if c.Title, err = str(r, colTitle); err != nil {
		return c, err
	}
	if c.Completed, err = boolean(r, colCompleted); err != nil {
		return c, err
	}
	if c.HouseholdID, err = str(r, colHouseholdID); err != nil {
		return c, err
	}
	if c.AssignedTo, err = strList(r, colAssigneeIDs); err != nil {
		return c, err
	}
	c.CategoryID, err = optStr(r, colCategoryID)
	return c, err
}

func profileFromRemote(r Row) (model.Profile, error) {
	var p model.Profile
	var err error
	if p.ID, err = str(r, colID); err != nil {
		return p, err
	}
	if p.DisplayName, err = str(r, colDisplayName); err != nil {
		return p, err
	}
	p.HouseholdCode, err = str(r, colHouseholdID)
	return p, err
}

// --- column decoding ---

func str(r Row, col string) (string, error) {
	switch v := r[col].(type) {
	case string:
		return v, nil
	case nil:
		return "", fmt.Errorf("column %s: missing", col)
	default:
		return "", fmt.Errorf("column %s: unexpected %T", col, v)
	}
}

func optStr(r Row, col string) (*string, error) {
	switch v := r[col].(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("column %s: unexpected %T", col, v)
	}
}

func boolean(r Row, col string) (bool, error) {
	switch v := r[col].(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("column %s: unexpected %T", col, v)
	}
}

// strList accepts native slices, JSON arrays decoded as []any, and JSON text.
func strList(r Row, col string) ([]string, error) {
	switch v := r[col].(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("column %s: element %T", col, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		out := []string{}
		if v == "" {
			return out, nil
		}
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("column %s: unexpected %T", col, v)
	}
}
