package model

// Kind names one of the three household collections.
type Kind string

const (
	KindAssignee Kind = "assignee"
	KindCategory Kind = "category"
	KindChore    Kind = "chore"
)

// Patch is a partial update keyed by in-memory field names.
type Patch map[string]any

// In-memory field names accepted in a Patch.
const (
	FieldName             = "name"
	FieldTitle            = "title"
	FieldCompleted        = "completed"
	FieldAssignedTo       = "assignedTo"
	FieldCategoryID       = "categoryId"
	FieldDefaultAssignees = "defaultAssignees"
)
