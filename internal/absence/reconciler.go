// Package absence keeps leave-of-absence entries (holidays, vacation,
// sick days and hour-account bookings) in the time store consistent.
//
// A request is first planned without writing, then executed in one
// transaction. Planning the same request twice converges: a day that
// already has an entry of the category is updated, never duplicated.
package absence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/holiday"
	"github.com/runnerr0/wochenfazit/internal/logging"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// ErrUnknownCategory is returned for a category not in the configuration.
var ErrUnknownCategory = errors.New("unknown absence category")

// Op is the requested change.
type Op int

const (
	Set Op = iota
	Delete
)

func (o Op) String() string {
	if o == Delete {
		return "delete"
	}
	return "set"
}

// Outcome is the per-day result of a request.
type Outcome string

const (
	Inserted Outcome = "inserted"
	Updated  Outcome = "updated"
	Skipped  Outcome = "skipped"
	// Unchanged marks a delete of an entry that did not exist.
	Unchanged Outcome = "true"
)

// Request describes an absence change for one day or an inclusive range.
type Request struct {
	Category string
	From     time.Time
	To       time.Time
	Op       Op
	// Hours overrides the contracted hours; for bookkeeping categories
	// it also bypasses the holiday and weekend check.
	Hours *time.Duration
	// Description overrides the category label as entry text.
	Description string
	// OnlyMissing leaves existing entries untouched.
	OnlyMissing bool
}

// DayStatus classifies a calendar day.
type DayStatus int

const (
	Workday DayStatus = iota
	NonWorkday
	PublicHoliday
)

func (s DayStatus) String() string {
	switch s {
	case NonWorkday:
		return "non-working day"
	case PublicHoliday:
		return "public holiday"
	default:
		return "workday"
	}
}

// Reconciler plans and applies absence requests.
type Reconciler struct {
	store    storage.TimeStore
	calendar *holiday.Calendar
	cfg      *config.Config
	log      *slog.Logger
}

// New creates a Reconciler.
func New(store storage.TimeStore, calendar *holiday.Calendar, cfg *config.Config, log *slog.Logger) *Reconciler {
	if log == nil {
		log = logging.Discard()
	}
	if calendar == nil {
		calendar = holiday.NewCalendar(nil)
	}
	return &Reconciler{store: store, calendar: calendar, cfg: cfg, log: log}
}

// Day truncates t to its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// contracted returns the contracted hours of the day's weekday.
func (r *Reconciler) contracted(day time.Time) time.Duration {
	h := r.cfg.Workdays.Hours(day.Weekday())
	return time.Duration(math.Round(h*3600)) * time.Second
}

// Status classifies day. A manually booked holiday entry with time on it
// counts as a public holiday.
func (r *Reconciler) Status(ctx context.Context, day time.Time) (DayStatus, error) {
	if r.contracted(day) == 0 {
		return NonWorkday, nil
	}
	if _, ok, err := r.calendar.Lookup(ctx, day); err != nil {
		return Workday, err
	} else if ok {
		return PublicHoliday, nil
	}

	hol := r.cfg.MustCategory(config.KeyHoliday)
	e, err := r.store.FindEntryOn(ctx, day, hol.ProjectID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return Workday, nil
	case err != nil:
		return Workday, err
	case e.Duration() > 0:
		return PublicHoliday, nil
	}
	return Workday, nil
}

// Apply plans req and executes the plan.
func (r *Reconciler) Apply(ctx context.Context, req Request) (map[string]Outcome, error) {
	plan, err := r.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := r.Execute(ctx, plan); err != nil {
		return nil, err
	}
	return plan.Outcomes, nil
}

// SyncHolidays books the public holidays of ref's week and the following
// week that are not booked yet.
func (r *Reconciler) SyncHolidays(ctx context.Context, ref time.Time) (map[string]Outcome, error) {
	monday := Day(ref).AddDate(0, 0, -((int(ref.Weekday()) + 6) % 7))
	holidays, err := r.calendar.Between(ctx, monday, monday.AddDate(0, 0, 13))
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}

	hol := r.cfg.MustCategory(config.KeyHoliday)
	outcomes := make(map[string]Outcome)
	for _, h := range holidays {
		res, err := r.Apply(ctx, Request{
			Category:    hol.Key,
			From:        h.Date,
			Op:          Set,
			Description: hol.Label + ": " + h.Name,
			OnlyMissing: true,
		})
		if err != nil {
			return nil, err
		}
		for k, v := range res {
			outcomes[k] = v
		}
	}
	return outcomes, nil
}
