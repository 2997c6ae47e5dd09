package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/runnerr0/wochenfazit/internal/absence"
	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/overtime"
	"github.com/runnerr0/wochenfazit/internal/report"
)

// Execute implements the go-flags Commander interface for ReportCommand.
func (c *ReportCommand) Execute(args []string) error {
	ctx := context.Background()
	sess, cleanup, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.run(ctx, sess)
}

// run builds, prints or writes the report of the selected week.
func (c *ReportCommand) run(ctx context.Context, sess *session) error {
	week, err := resolveWeek(c.WeekFlags, sess.now(), sess.getenv)
	if err != nil {
		return err
	}
	monday, sunday := week.Monday(), week.Sunday()

	if err := c.fillConfig(sess); err != nil {
		return err
	}

	if !c.NoSync {
		outcomes, err := sess.reconciler().SyncHolidays(ctx, monday)
		if err != nil {
			return fmt.Errorf("book holidays: %w", err)
		}
		for day, o := range outcomes {
			if o == absence.Inserted {
				sess.log.Info("holiday booked", "date", day)
			}
		}
	}

	agg, err := sess.aggregator(ctx, true)
	if err != nil {
		return err
	}

	if !c.NoCorrect {
		corrections, err := agg.Corrections(ctx, monday, sunday)
		if err != nil {
			return fmt.Errorf("find corrections: %w", err)
		}
		for _, corr := range corrections {
			desc, err := sess.prompt.Correct(corr)
			if err != nil {
				return err
			}
			if _, err := agg.ApplyCorrection(ctx, corr, desc); err != nil {
				return fmt.Errorf("correct %q: %w", corr.Description, err)
			}
		}
	}

	calc := overtime.New(sess.store, sess.cfg, sess.log)
	summary, err := calc.Week(ctx, week)
	if err != nil {
		return err
	}
	balance, err := calc.Balance(ctx, week)
	if err != nil {
		return fmt.Errorf("hours account: %w", err)
	}
	breakdown, err := agg.Breakdown(ctx, monday, sunday)
	if err != nil {
		return fmt.Errorf("category breakdown: %w", err)
	}

	var tasks []string
	if sess.cfg.General.InsertTasks {
		if tasks, err = agg.Tasks(ctx, monday, sunday); err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		sort.Strings(tasks)
	}

	until := sess.now()
	if until.After(sunday) {
		until = sunday
	}
	var deviations []overtime.Day
	for _, d := range summary.Deviations(overtime.Tolerance) {
		if !d.Date.After(until) {
			deviations = append(deviations, d)
		}
	}

	text := report.Render(report.Data{
		Name:           sess.cfg.General.FullName,
		Summary:        summary,
		Balance:        balance,
		Missing:        summary.MissingDays(until),
		Deviations:     deviations,
		Breakdown:      breakdown,
		Tasks:          tasks,
		DeductionLabel: sess.cfg.MustCategory(config.KeyDeduction).Label,
	})

	if c.DryRun {
		sess.console.Report(text)
		return nil
	}
	return c.write(sess, week, text)
}

// fillConfig asks for missing settings and persists them.
func (c *ReportCommand) fillConfig(sess *session) error {
	changed, err := sess.prompt.FillConfig(sess.cfg)
	if err != nil {
		return err
	}
	if !changed || sess.cfgPath == "" {
		return nil
	}
	if err := config.Save(sess.cfgPath, sess.cfg); err != nil {
		return err
	}
	sess.log.Info("configuration updated", "path", sess.cfgPath)
	return nil
}

func (c *ReportCommand) write(sess *session, week overtime.Week, text string) error {
	path, err := report.Path(sess.cfg.General.ReportDir, week)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		ok, err := sess.prompt.Confirm(fmt.Sprintf("Bericht %s existiert bereits. Überschreiben?", path), false)
		if err != nil {
			return err
		}
		if !ok {
			sess.console.Report(text)
			return nil
		}
	}

	if err := report.Write(path, text); err != nil {
		return err
	}
	sess.console.Report(text)
	sess.console.Success("Bericht gespeichert unter: %s", path)

	if c.Edit {
		return sess.edit(path)
	}
	return nil
}
