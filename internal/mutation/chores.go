package mutation

import (
	"context"
	"strings"

	"github.com/dukerupert/chorehub/internal/entity"
	"github.com/dukerupert/chorehub/internal/model"
)

// NewChore describes a chore to create. An empty AssignedTo inherits the
// category's default assignees.
type NewChore struct {
	Title      string   `json:"title"`
	CategoryID *string  `json:"categoryId"`
	AssignedTo []string `json:"assignedTo"`
}

func (c *Coordinator) AddChore(ctx context.Context, in NewChore) (model.Chore, error) {
	title, err := normalizeName(model.FieldTitle, in.Title)
	if err != nil {
		return model.Chore{}, err
	}
	if in.CategoryID != nil && *in.CategoryID == "" {
		in.CategoryID = nil
	}
	tmp := model.Chore{
		ID:          pendingID(),
		Title:       title,
		CategoryID:  in.CategoryID,
		HouseholdID: c.store.HouseholdID(),
	}
	cat := ""
	if in.CategoryID != nil {
		cat = *in.CategoryID
	}

	v, err := c.run(ctx, op{
		action: "add chore",
		key:    key("add-chore", title, cat, strings.Join(in.AssignedTo, ",")),
		apply: func(d *entity.Snapshot) error {
			if in.CategoryID != nil && findCategory(d, *in.CategoryID) < 0 {
				return notFound(model.KindCategory, *in.CategoryID)
			}
			ids, err := assigneeIDs(d, model.FieldAssignedTo, in.AssignedTo)
			if err != nil {
				return err
			}
			tmp.AssignedTo = ids
			d.Chores = append(d.Chores, tmp.Clone())
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			in := tmp.Clone()
			in.ID = ""
			stored, err := c.remote.CreateChore(ctx, in)
			if err != nil {
				return nil, err
			}
			c.store.Mutate(func(d *entity.Snapshot) error {
				if i := findChore(d, tmp.ID); i >= 0 {
					d.Chores[i] = stored.Clone()
				}
				return nil
			})
			return stored, nil
		},
	})
	if err != nil {
		return model.Chore{}, err
	}
	return v.(model.Chore), nil
}

func (c *Coordinator) RenameChore(ctx context.Context, id, title string) error {
	title, err := normalizeName(model.FieldTitle, title)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, op{
		action: "rename chore",
		key:    key("rename-chore", id, title),
		apply: func(d *entity.Snapshot) error {
			i := findChore(d, id)
			if i < 0 {
				return notFound(model.KindChore, id)
			}
			d.Chores[i].Title = title
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			return nil, c.remote.Update(ctx, model.KindChore, id, model.Patch{model.FieldTitle: title})
		},
	})
	return err
}

// ToggleChoreCompleted flips the completed flag and returns the new value.
func (c *Coordinator) ToggleChoreCompleted(ctx context.Context, id string) (bool, error) {
	var completed bool
	v, err := c.run(ctx, op{
		action: "update chore",
		key:    key("toggle-completed", id),
		apply: func(d *entity.Snapshot) error {
			i := findChore(d, id)
			if i < 0 {
				return notFound(model.KindChore, id)
			}
			completed = !d.Chores[i].Completed
			d.Chores[i].Completed = completed
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			return completed, c.remote.Update(ctx, model.KindChore, id, model.Patch{model.FieldCompleted: completed})
		},
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// ToggleChoreAssignee adds or removes a direct assignee. Removing the last
// direct assignee makes the chore inherit from its category again.
func (c *Coordinator) ToggleChoreAssignee(ctx context.Context, choreID, assigneeID string) error {
	var ids []string
	_, err := c.run(ctx, op{
		action: "update chore",
		key:    key("toggle-chore-assignee", choreID, assigneeID),
		apply: func(d *entity.Snapshot) error {
			i := findChore(d, choreID)
			if i < 0 {
				return notFound(model.KindChore, choreID)
			}
			if findAssignee(d, assigneeID) < 0 {
				return notFound(model.KindAssignee, assigneeID)
			}
			ids = toggle(d.Chores[i].AssignedTo, assigneeID)
			d.Chores[i].AssignedTo = ids
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			return nil, c.remote.Update(ctx, model.KindChore, choreID, model.Patch{model.FieldAssignedTo: ids})
		},
	})
	return err
}

// SetChoreCategory moves a chore into a category, or out of any category when
// categoryID is nil.
func (c *Coordinator) SetChoreCategory(ctx context.Context, choreID string, categoryID *string) error {
	if categoryID != nil && *categoryID == "" {
		categoryID = nil
	}
	target := ""
	if categoryID != nil {
		target = *categoryID
	}
	_, err := c.run(ctx, op{
		action: "update chore",
		key:    key("set-chore-category", choreID, target),
		apply: func(d *entity.Snapshot) error {
			i := findChore(d, choreID)
			if i < 0 {
				return notFound(model.KindChore, choreID)
			}
			if categoryID != nil && findCategory(d, *categoryID) < 0 {
				return notFound(model.KindCategory, *categoryID)
			}
			if categoryID == nil {
				d.Chores[i].CategoryID = nil
			} else {
				id := *categoryID
				d.Chores[i].CategoryID = &id
			}
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			return nil, c.remote.Update(ctx, model.KindChore, choreID, model.Patch{model.FieldCategoryID: categoryID})
		},
	})
	return err
}

func (c *Coordinator) DeleteChore(ctx context.Context, id string) error {
	_, err := c.run(ctx, op{
		action: "delete chore",
		key:    key("delete-chore", id),
		apply: func(d *entity.Snapshot) error {
			i := findChore(d, id)
			if i < 0 {
				return notFound(model.KindChore, id)
			}
			d.Chores = append(d.Chores[:i], d.Chores[i+1:]...)
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			return nil, c.remote.Delete(ctx, model.KindChore, id)
		},
	})
	return err
}
