package mutation

import (
	"context"
	"strings"

	"github.com/dukerupert/chorehub/internal/entity"
	"github.com/dukerupert/chorehub/internal/model"
)

// AddCategory creates a category with optional default assignees.
func (c *Coordinator) AddCategory(ctx context.Context, name string, defaults []string) (model.Category, error) {
	name, err := normalizeName(model.FieldName, name)
	if err != nil {
		return model.Category{}, err
	}
	tmp := model.Category{ID: pendingID(), Name: name, HouseholdID: c.store.HouseholdID()}

	v, err := c.run(ctx, op{
		action: "add category",
		key:    key("add-category", name, strings.Join(defaults, ",")),
		apply: func(d *entity.Snapshot) error {
			ids, err := assigneeIDs(d, model.FieldDefaultAssignees, defaults)
			if err != nil {
				return err
			}
			tmp.DefaultAssignees = ids
			d.Categories = append(d.Categories, tmp.Clone())
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			in := tmp.Clone()
			in.ID = ""
			stored, err := c.remote.CreateCategory(ctx, in)
			if err != nil {
				return nil, err
			}
			c.store.Mutate(func(d *entity.Snapshot) error {
				if i := findCategory(d, tmp.ID); i >= 0 {
					stored.IsOpen = d.Categories[i].IsOpen
					d.Categories[i] = stored.Clone()
				}
				return nil
			})
			return stored, nil
		},
	})
	if err != nil {
		return model.Category{}, err
	}
	return v.(model.Category), nil
}

func (c *Coordinator) RenameCategory(ctx context.Context, id, name string) error {
	name, err := normalizeName(model.FieldName, name)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, op{
		action: "rename category",
		key:    key("rename-category", id, name),
		apply: func(d *entity.Snapshot) error {
			i := findCategory(d, id)
			if i < 0 {
				return notFound(model.KindCategory, id)
			}
			d.Categories[i].Name = name
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			return nil, c.remote.Update(ctx, model.KindCategory, id, model.Patch{model.FieldName: name})
		},
	})
	return err
}

// ToggleCategoryDefault adds or removes assigneeID from the category's
// default assignees.
func (c *Coordinator) ToggleCategoryDefault(ctx context.Context, categoryID, assigneeID string) error {
	var ids []string
	_, err := c.run(ctx, op{
		action: "update category",
		key:    key("toggle-category-default", categoryID, assigneeID),
		apply: func(d *entity.Snapshot) error {
			i := findCategory(d, categoryID)
			if i < 0 {
				return notFound(model.KindCategory, categoryID)
			}
			if findAssignee(d, assigneeID) < 0 {
				return notFound(model.KindAssignee, assigneeID)
			}
			ids = toggle(d.Categories[i].DefaultAssignees, assigneeID)
			d.Categories[i].DefaultAssignees = ids
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			return nil, c.remote.Update(ctx, model.KindCategory, categoryID, model.Patch{model.FieldDefaultAssignees: ids})
		},
	})
	return err
}

// DeleteCategory removes a category. Its chores are kept and become
// uncategorized; they are updated remotely before the category row is
// deleted.
func (c *Coordinator) DeleteCategory(ctx context.Context, id string) error {
	var moved []string
	_, err := c.run(ctx, op{
		action: "delete category",
		key:    key("delete-category", id),
		apply: func(d *entity.Snapshot) error {
			i := findCategory(d, id)
			if i < 0 {
				return notFound(model.KindCategory, id)
			}
			d.Categories = append(d.Categories[:i], d.Categories[i+1:]...)
			moved = nil
			for j := range d.Chores {
				if d.Chores[j].InCategory(id) {
					d.Chores[j].CategoryID = nil
					moved = append(moved, d.Chores[j].ID)
				}
			}
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			for _, choreID := range moved {
				if err := c.remote.Update(ctx, model.KindChore, choreID, model.Patch{model.FieldCategoryID: (*string)(nil)}); err != nil {
					return nil, c.partial("delete category", id, err)
				}
			}
			return nil, c.remote.Delete(ctx, model.KindCategory, id)
		},
	})
	return err
}
