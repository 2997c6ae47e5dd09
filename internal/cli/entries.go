package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/wochenfazit/internal/aggregate"
)

// Execute implements the go-flags Commander interface for EntriesCommand.
func (c *EntriesCommand) Execute(args []string) error {
	ctx := context.Background()
	sess, cleanup, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.run(ctx, sess, args)
}

// dateRange returns --from/--to or the selected week.
func (c *EntriesCommand) dateRange(sess *session) (time.Time, time.Time, error) {
	if c.From == "" {
		if c.To != "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--to requires --from")
		}
		w, err := resolveWeek(c.WeekFlags, sess.now(), sess.getenv)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return w.Monday(), w.Sunday(), nil
	}

	from, err := parseDate("from", c.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to := from
	if c.To != "" {
		if to, err = parseDate("to", c.To); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", c.To, c.From)
	}
	return from, to, nil
}

// run lists the entries selected by the expression in args.
func (c *EntriesCommand) run(ctx context.Context, sess *session, args []string) error {
	from, to, err := c.dateRange(sess)
	if err != nil {
		return err
	}
	agg, err := sess.aggregator(ctx, false)
	if err != nil {
		return err
	}

	if c.Tasks {
		tasks, err := agg.Tasks(ctx, from, to)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		if c.globals != nil && c.globals.JSON {
			return printJSON(map[string]any{"count": len(tasks), "tasks": tasks})
		}
		for _, t := range tasks {
			fmt.Println(t)
		}
		return nil
	}

	expr := strings.Join(args, " ")
	rows, err := agg.Fetch(ctx, aggregate.Query{
		Expression:     expr,
		From:           from,
		To:             to,
		CategoryTotals: c.Totals,
	})
	if err != nil {
		return fmt.Errorf("fetch entries: %w", err)
	}
	if c.Sum || len(c.Totals) > 0 {
		rows = aggregate.SumTimes(rows)
	}

	if c.globals != nil && c.globals.JSON {
		return c.printJSON(expr, rows)
	}
	c.printHuman(expr, rows)
	return nil
}

func (c *EntriesCommand) printHuman(expr string, rows []aggregate.Row) {
	if len(rows) == 0 {
		if expr != "" {
			fmt.Printf("No entries found for %q\n", expr)
		} else {
			fmt.Println("No entries found")
		}
		return
	}

	for _, r := range rows {
		if len(c.Totals) > 0 {
			fmt.Printf("%-24s %8s  %s\n", r.Category, r.Duration(), r.Description)
			continue
		}
		fmt.Printf("%-10s %s-%s %8s  %-24s %s\n",
			r.JoinedIDs(), strings.Join(r.Starts, "|"), stopTimes(r.Stops),
			r.Duration(), r.Category, r.Description)
	}
	fmt.Printf("\nSumme: %s (%d entries)\n", aggregate.FormatDuration(aggregate.TotalSeconds(rows)), len(rows))
}

// stopTimes shortens stop stamps to their clock time.
func stopTimes(stops []string) string {
	out := make([]string, len(stops))
	for i, s := range stops {
		if j := strings.IndexByte(s, ' '); j >= 0 {
			s = s[j+1:]
		}
		out[i] = s
	}
	return strings.Join(out, "|")
}

type jsonEntriesOutput struct {
	Count      int               `json:"count"`
	Expression string            `json:"expression"`
	Seconds    int64             `json:"seconds"`
	Entries    []aggregate.Row   `json:"entries,omitempty"`
	Totals     []aggregate.Total `json:"totals,omitempty"`
}

func (c *EntriesCommand) printJSON(expr string, rows []aggregate.Row) error {
	out := jsonEntriesOutput{
		Count:      len(rows),
		Expression: expr,
		Seconds:    aggregate.TotalSeconds(rows),
	}
	if len(c.Totals) > 0 {
		out.Totals = aggregate.Totals(rows)
	} else {
		out.Entries = rows
	}
	return printJSON(out)
}
