package absence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// ActionKind is the write an Action performs.
type ActionKind int

const (
	ActionInsert ActionKind = iota
	ActionUpdate
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "insert"
	}
}

// Action is a single planned write.
type Action struct {
	Kind  ActionKind
	Day   time.Time
	Entry storage.TimeEntry
	// Override marks the zeroing or restoring of a holiday or vacation
	// entry caused by a sick day.
	Override bool
}

func (a Action) String() string {
	return fmt.Sprintf("%s %s %s-%s %q", a.Kind, storage.FormatDate(a.Day),
		a.Entry.Start.Format("15:04"), a.Entry.Stop.Format("15:04"), a.Entry.Description)
}

// Plan is the decided set of writes for a request.
type Plan struct {
	Category config.Category
	Actions  []Action
	Outcomes map[string]Outcome
}

const dayStart = 8 * time.Hour

// Plan decides the writes for req without changing the store.
func (r *Reconciler) Plan(ctx context.Context, req Request) (*Plan, error) {
	cat, ok := r.cfg.Category(req.Category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, req.Category)
	}
	if req.From.IsZero() {
		return nil, errors.New("absence request without date")
	}
	from, to := Day(req.From), Day(req.To)
	if req.To.IsZero() {
		to = from
	}
	if to.Before(from) {
		return nil, fmt.Errorf("absence range ends %s before it starts %s", storage.FormatDate(to), storage.FormatDate(from))
	}

	plan := &Plan{Category: cat, Outcomes: make(map[string]Outcome)}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		outcome, err := r.planDay(ctx, plan, cat, day, req)
		if err != nil {
			return nil, err
		}
		plan.Outcomes[storage.FormatDate(day)] = outcome
	}
	return plan, nil
}

func (r *Reconciler) planDay(ctx context.Context, plan *Plan, cat config.Category, day time.Time, req Request) (Outcome, error) {
	key := storage.FormatDate(day)
	hours := r.contracted(day)

	switch {
	case cat.Bookkeeping() && req.Hours != nil:
		hours = *req.Hours
	case cat.Key == config.KeySick:
		if err := r.planSickOverride(ctx, plan, day, req.Op == Delete); err != nil {
			return "", err
		}
	case cat.Key != config.KeyHoliday:
		status, err := r.Status(ctx, day)
		if err != nil {
			return "", fmt.Errorf("classify %s: %w", key, err)
		}
		if status != Workday {
			r.log.Warn("absence skipped", "date", key, "category", cat.Name, "reason", status.String())
			return Skipped, nil
		}
	}
	if req.Hours != nil && !cat.Bookkeeping() {
		hours = *req.Hours
	}

	if hours <= 0 {
		r.log.Warn("absence skipped", "date", key, "category", cat.Name, "reason", "no contracted hours")
		return Skipped, nil
	}

	desc := req.Description
	if desc == "" {
		desc = cat.Label
	}
	target := storage.TimeEntry{
		ProjectID:   cat.ProjectID,
		Start:       day.Add(dayStart),
		Stop:        day.Add(dayStart + hours),
		Description: desc,
	}

	existing, err := r.store.FindEntryOn(ctx, day, cat.ProjectID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if req.Op == Delete {
			return Unchanged, nil
		}
		plan.Actions = append(plan.Actions, Action{Kind: ActionInsert, Day: day, Entry: target})
		return Inserted, nil
	case err != nil:
		return "", fmt.Errorf("look up %s entry on %s: %w", cat.Name, key, err)
	}

	if req.OnlyMissing {
		return Skipped, nil
	}
	target.ID = existing.ID
	if req.Op == Delete {
		plan.Actions = append(plan.Actions, Action{Kind: ActionDelete, Day: day, Entry: *existing})
	} else {
		plan.Actions = append(plan.Actions, Action{Kind: ActionUpdate, Day: day, Entry: target})
	}
	return Updated, nil
}

// planSickOverride zeroes holiday and vacation entries of day, or on
// restore gives zeroed ones their contracted hours back.
func (r *Reconciler) planSickOverride(ctx context.Context, plan *Plan, day time.Time, restore bool) error {
	for _, key := range []string{config.KeyHoliday, config.KeyVacation} {
		cat := r.cfg.MustCategory(key)
		e, err := r.store.FindEntryOn(ctx, day, cat.ProjectID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("look up %s entry on %s: %w", cat.Name, storage.FormatDate(day), err)
		}

		updated := *e
		if restore {
			if e.Duration() > 0 {
				continue
			}
			updated.Stop = e.Start.Add(r.contracted(day))
		} else {
			if e.Duration() == 0 {
				continue
			}
			updated.Stop = e.Start
		}
		plan.Actions = append(plan.Actions, Action{Kind: ActionUpdate, Day: day, Entry: updated, Override: true})
	}
	return nil
}

// Execute applies the plan's actions in one transaction.
func (r *Reconciler) Execute(ctx context.Context, plan *Plan) error {
	if len(plan.Actions) == 0 {
		return nil
	}
	return r.store.WithTx(ctx, func(tx storage.TimeStore) error {
		for _, a := range plan.Actions {
			e := a.Entry
			var err error
			switch a.Kind {
			case ActionInsert:
				err = tx.InsertEntry(ctx, &e)
			case ActionUpdate:
				err = tx.UpdateEntry(ctx, &e)
			case ActionDelete:
				err = tx.DeleteEntry(ctx, e.ID)
			}
			if err != nil {
				return fmt.Errorf("%s %s entry on %s: %w", a.Kind, plan.Category.Name, storage.FormatDate(a.Day), err)
			}
			r.log.Debug("absence written", "action", a.String(), "override", a.Override)
		}
		return nil
	})
}
