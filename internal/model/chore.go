package model

import "slices"

// Chore is a single task. An empty AssignedTo means the chore inherits the
// default assignees of its category.
type Chore struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Completed   bool     `json:"completed"`
	AssignedTo  []string `json:"assignedTo"`
	CategoryID  *string  `json:"categoryId"`
	HouseholdID string   `json:"householdId"`
}

// Clone returns a deep copy.
func (c Chore) Clone() Chore {
	c.AssignedTo = slices.Clone(c.AssignedTo)
	if c.CategoryID != nil {
		id := *c.CategoryID
		c.CategoryID = &id
	}
	return c
}

// InCategory reports whether the chore references the given category.
func (c Chore) InCategory(categoryID string) bool {
	return c.CategoryID != nil && *c.CategoryID == categoryID
}
