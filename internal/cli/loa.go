package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/runnerr0/wochenfazit/internal/absence"
)

// Execute implements the go-flags Commander interface for LoaCommand.
func (c *LoaCommand) Execute(args []string) error {
	ctx := context.Background()
	sess, cleanup, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.run(ctx, sess)
}

func (c *LoaCommand) request() (absence.Request, error) {
	from, err := parseDate("from", c.From)
	if err != nil {
		return absence.Request{}, err
	}
	req := absence.Request{Category: c.Category, From: from, Op: absence.Set}
	if c.To != "" {
		if req.To, err = parseDate("to", c.To); err != nil {
			return absence.Request{}, err
		}
	}
	if c.Delete {
		req.Op = absence.Delete
	}
	if c.Hours != "" {
		h, err := parseHM(c.Hours)
		if err != nil {
			return absence.Request{}, err
		}
		req.Hours = &h
	}
	return req, nil
}

// run plans the request and applies it unless --dry-run is set.
func (c *LoaCommand) run(ctx context.Context, sess *session) error {
	req, err := c.request()
	if err != nil {
		return err
	}
	rec := sess.reconciler()

	plan, err := rec.Plan(ctx, req)
	if err != nil {
		return err
	}
	if !c.DryRun {
		if err := rec.Execute(ctx, plan); err != nil {
			return err
		}
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]any{"category": plan.Category.Name, "dry_run": c.DryRun, "days": plan.Outcomes}
		if c.DryRun {
			actions := make([]string, len(plan.Actions))
			for i, a := range plan.Actions {
				actions[i] = a.String()
			}
			out["actions"] = actions
		}
		return printJSON(out)
	}

	if c.DryRun {
		fmt.Printf("Planned changes for %s (%s):\n", plan.Category.Name, req.Op)
		for _, a := range plan.Actions {
			fmt.Printf("  %s\n", a)
		}
		if len(plan.Actions) == 0 {
			fmt.Println("  none")
		}
	}
	printOutcomes(plan.Outcomes)
	return nil
}

func printOutcomes(outcomes map[string]absence.Outcome) {
	days := make([]string, 0, len(outcomes))
	for d := range outcomes {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		fmt.Printf("%s: %s\n", d, outcomes[d])
	}
}
