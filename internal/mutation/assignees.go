package mutation

import (
	"context"
	"strings"

	"github.com/dukerupert/chorehub/internal/entity"
	"github.com/dukerupert/chorehub/internal/model"
)

func duplicateName(d *entity.Snapshot, name, exceptID string) error {
	for _, a := range d.Assignees {
		if a.ID != exceptID && model.SameName(a.Name, name) {
			return &model.ValidationError{
				Field:     model.FieldName,
				Message:   "an assignee named " + a.Name + " already exists",
				Duplicate: true,
			}
		}
	}
	return nil
}

// AddAssignee creates an assignee. Names are unique within the household,
// ignoring case.
func (c *Coordinator) AddAssignee(ctx context.Context, name string) (model.Assignee, error) {
	name, err := normalizeName(model.FieldName, name)
	if err != nil {
		return model.Assignee{}, err
	}
	tmp := model.Assignee{ID: pendingID(), Name: name, HouseholdID: c.store.HouseholdID()}

	v, err := c.run(ctx, op{
		action: "add assignee",
		key:    key("add-assignee", strings.ToLower(name)),
		apply: func(d *entity.Snapshot) error {
			if err := duplicateName(d, name, ""); err != nil {
				return err
			}
			d.Assignees = append(d.Assignees, tmp)
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			stored, err := c.remote.CreateAssignee(ctx, model.Assignee{Name: name, HouseholdID: tmp.HouseholdID})
			if err != nil {
				return nil, err
			}
			c.store.Mutate(func(d *entity.Snapshot) error {
				if i := findAssignee(d, tmp.ID); i >= 0 {
					d.Assignees[i] = stored
				}
				return nil
			})
			return stored, nil
		},
	})
	if err != nil {
		return model.Assignee{}, err
	}
	return v.(model.Assignee), nil
}

func (c *Coordinator) RenameAssignee(ctx context.Context, id, name string) error {
	name, err := normalizeName(model.FieldName, name)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, op{
		action: "rename assignee",
		key:    key("rename-assignee", id, name),
		apply: func(d *entity.Snapshot) error {
			i := findAssignee(d, id)
			if i < 0 {
				return notFound(model.KindAssignee, id)
			}
			if err := duplicateName(d, name, id); err != nil {
				return err
			}
			d.Assignees[i].Name = name
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			return nil, c.remote.Update(ctx, model.KindAssignee, id, model.Patch{model.FieldName: name})
		},
	})
	return err
}

// DeleteAssignee removes an assignee and strips its id from every chore and
// category. References are stripped remotely before the row is deleted, one
// call per row; a failure part way leaves earlier strips in place.
func (c *Coordinator) DeleteAssignee(ctx context.Context, id string) error {
	var (
		chores     []model.Chore
		categories []model.Category
	)
	_, err := c.run(ctx, op{
		action: "delete assignee",
		key:    key("delete-assignee", id),
		apply: func(d *entity.Snapshot) error {
			i := findAssignee(d, id)
			if i < 0 {
				return notFound(model.KindAssignee, id)
			}
			d.Assignees = append(d.Assignees[:i], d.Assignees[i+1:]...)
			chores, categories = nil, nil
			for j := range d.Chores {
				if ids, changed := without(d.Chores[j].AssignedTo, id); changed {
					d.Chores[j].AssignedTo = ids
					chores = append(chores, d.Chores[j].Clone())
				}
			}
			for j := range d.Categories {
				if ids, changed := without(d.Categories[j].DefaultAssignees, id); changed {
					d.Categories[j].DefaultAssignees = ids
					categories = append(categories, d.Categories[j].Clone())
				}
			}
			return nil
		},
		commit: func(ctx context.Context) (any, error) {
			for _, ch := range chores {
				if err := c.remote.Update(ctx, model.KindChore, ch.ID, model.Patch{model.FieldAssignedTo: ch.AssignedTo}); err != nil {
					return nil, c.partial("delete assignee", id, err)
				}
			}
			for _, cat := range categories {
				if err := c.remote.Update(ctx, model.KindCategory, cat.ID, model.Patch{model.FieldDefaultAssignees: cat.DefaultAssignees}); err != nil {
					return nil, c.partial("delete assignee", id, err)
				}
			}
			return nil, c.remote.Delete(ctx, model.KindAssignee, id)
		},
	})
	return err
}

func (c *Coordinator) partial(action, target string, err error) error {
	c.logger.Warn("cascade step failed; earlier steps were kept", "action", action, "target", target, "error", err)
	return err
}
