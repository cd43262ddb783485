package mutation

import (
	"context"
	"log/slog"

	"github.com/dukerupert/chorehub/internal/model"
)

// RepairReport counts rows whose dangling references were stripped.
type RepairReport struct {
	Chores     int `json:"choresFixed"`
	Categories int `json:"categoriesFixed"`
}

// Repair reads the household from the remote store and strips assignee and
// category ids that no longer resolve. Every update sets the full cleaned
// value, so a repair interrupted by an error can be run again.
func Repair(ctx context.Context, r Remote, householdID string, logger *slog.Logger) (RepairReport, error) {
	var report RepairReport
	if logger == nil {
		logger = slog.Default()
	}

	assignees, err := r.ListAssignees(ctx, householdID)
	if err != nil {
		return report, err
	}
	categories, err := r.ListCategories(ctx, householdID)
	if err != nil {
		return report, err
	}
	chores, err := r.ListChores(ctx, householdID)
	if err != nil {
		return report, err
	}

	known := make(map[string]bool, len(assignees))
	for _, a := range assignees {
		known[a.ID] = true
	}
	knownCat := make(map[string]bool, len(categories))
	for _, c := range categories {
		knownCat[c.ID] = true
	}

	for _, cat := range categories {
		ids, changed := resolvable(cat.DefaultAssignees, known)
		if !changed {
			continue
		}
		if err := r.Update(ctx, model.KindCategory, cat.ID, model.Patch{model.FieldDefaultAssignees: ids}); err != nil {
			return report, err
		}
		logger.Info("repaired category", "household", householdID, "category", cat.ID)
		report.Categories++
	}

	for _, ch := range chores {
		p := model.Patch{}
		if ids, changed := resolvable(ch.AssignedTo, known); changed {
			p[model.FieldAssignedTo] = ids
		}
		if ch.CategoryID != nil && !knownCat[*ch.CategoryID] {
			p[model.FieldCategoryID] = (*string)(nil)
		}
		if len(p) == 0 {
			continue
		}
		if err := r.Update(ctx, model.KindChore, ch.ID, p); err != nil {
			return report, err
		}
		logger.Info("repaired chore", "household", householdID, "chore", ch.ID)
		report.Chores++
	}
	return report, nil
}

func resolvable(ids []string, known map[string]bool) ([]string, bool) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if known[id] {
			out = append(out, id)
		}
	}
	return out, len(out) != len(ids)
}

// Repair runs a repair pass for the workspace's household and reloads it.
func (c *Coordinator) Repair(ctx context.Context) (RepairReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	report, err := Repair(ctx, c.remote, c.store.HouseholdID(), c.logger)
	if err != nil {
		c.setBanner(FailureMessage("repair household"))
		return report, err
	}
	if err := c.store.Load(ctx, c.remote, ""); err != nil {
		c.setBanner(FailureMessage("load household"))
		return report, err
	}
	return report, nil
}
