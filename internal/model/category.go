package model

import "slices"

type Category struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	DefaultAssignees []string `json:"defaultAssignees"`
	HouseholdID      string   `json:"householdId"`
	// IsOpen is workspace-local display state and never leaves the process.
	IsOpen bool `json:"isOpen"`
}

// Clone returns a deep copy.
func (c Category) Clone() Category {
	c.DefaultAssignees = slices.Clone(c.DefaultAssignees)
	return c
}
