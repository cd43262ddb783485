package model

import "strings"

type Assignee struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HouseholdID string `json:"householdId"`
}

// SameName reports whether two assignee names collide. Names are compared
// case-insensitively after trimming.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
