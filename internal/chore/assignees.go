package chore

import (
	"slices"

	"github.com/dukerupert/chorehub/internal/model"
)

// Effective is the assignee set actually used for a chore.
type Effective struct {
	AssigneeIDs []string `json:"effectiveAssignees"`
	Inherited   bool     `json:"inherited"`
}

// Resolve computes the effective assignees of c. Direct assignees override the
// category defaults; a category id that no longer resolves counts as no
// category. The result never aliases the inputs.
func Resolve(c model.Chore, categories []model.Category) Effective {
	if len(c.AssignedTo) > 0 {
		return Effective{AssigneeIDs: slices.Clone(c.AssignedTo)}
	}
	if cat, ok := find(categories, c.CategoryID); ok && len(cat.DefaultAssignees) > 0 {
		return Effective{AssigneeIDs: slices.Clone(cat.DefaultAssignees), Inherited: true}
	}
	return Effective{AssigneeIDs: []string{}}
}

func find(categories []model.Category, id *string) (model.Category, bool) {
	if id == nil {
		return model.Category{}, false
	}
	for _, cat := range categories {
		if cat.ID == *id {
			return cat, true
		}
	}
	return model.Category{}, false
}

// ChoreWithAssignees is a chore annotated for display.
type ChoreWithAssignees struct {
	model.Chore
	Effective
	CategoryName string `json:"categoryName,omitempty"`
}

// Annotate resolves every chore against categories.
func Annotate(chores []model.Chore, categories []model.Category) []ChoreWithAssignees {
	out := make([]ChoreWithAssignees, 0, len(chores))
	for _, c := range chores {
		v := ChoreWithAssignees{Chore: c, Effective: Resolve(c, categories)}
		if cat, ok := find(categories, c.CategoryID); ok {
			v.CategoryName = cat.Name
		}
		out = append(out, v)
	}
	return out
}

// ForAssignee returns the chores whose effective assignees include assigneeID.
func ForAssignee(chores []model.Chore, categories []model.Category, assigneeID string) []ChoreWithAssignees {
	var out []ChoreWithAssignees
	for _, v := range Annotate(chores, categories) {
		if slices.Contains(v.AssigneeIDs, assigneeID) {
			out = append(out, v)
		}
	}
	return out
}
