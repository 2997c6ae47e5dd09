package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/wochenfazit/internal/storage"
)

// Execute implements the go-flags Commander interface for HolidaysCommand.
func (c *HolidaysCommand) Execute(args []string) error {
	ctx := context.Background()
	sess, cleanup, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.run(ctx, sess)
}

type jsonHoliday struct {
	Date    string `json:"date"`
	Name    string `json:"name"`
	Outcome string `json:"outcome,omitempty"`
}

// run lists the holidays of the week and the next and books them.
func (c *HolidaysCommand) run(ctx context.Context, sess *session) error {
	week, err := resolveWeek(c.WeekFlags, sess.now(), sess.getenv)
	if err != nil {
		return err
	}
	holidays, err := sess.calendar.Between(ctx, week.Monday(), week.Next().Sunday())
	if err != nil {
		return fmt.Errorf("load holidays: %w", err)
	}

	outcomes := map[string]string{}
	if !c.DryRun {
		res, err := sess.reconciler().SyncHolidays(ctx, week.Monday())
		if err != nil {
			return err
		}
		for d, o := range res {
			outcomes[d] = string(o)
		}
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]jsonHoliday, len(holidays))
		for i, h := range holidays {
			d := storage.FormatDate(h.Date)
			out[i] = jsonHoliday{Date: d, Name: h.Name, Outcome: outcomes[d]}
		}
		return printJSON(out)
	}

	if len(holidays) == 0 {
		fmt.Printf("No public holidays in %s and %s\n", week, week.Next())
		return nil
	}
	for _, h := range holidays {
		d := storage.FormatDate(h.Date)
		if o := outcomes[d]; o != "" {
			fmt.Printf("%s  %-24s %s\n", d, h.Name, o)
		} else {
			fmt.Printf("%s  %s\n", d, h.Name)
		}
	}
	return nil
}
