// Package overtime compares booked hours with contracted hours per day,
// per week and over the running hours account (Stundenkonto).
package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/logging"
	"github.com/runnerr0/wochenfazit/internal/storage"
	"github.com/shopspring/decimal"
)

// Tolerance is the relative day deviation reported as Tagabweichung.
var Tolerance = decimal.RequireFromString("0.2")

var secondsPerHour = decimal.NewFromInt(3600)

// Hours converts seconds to hours.
func Hours(seconds int64) decimal.Decimal {
	return decimal.NewFromInt(seconds).Div(secondsPerHour)
}

// Round rounds to one decimal place, halves away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}

// Delta compares total with contracted hours and returns the sign and the
// rounded magnitude of the difference.
func Delta(total, contracted decimal.Decimal) (string, decimal.Decimal) {
	diff := Round(total.Sub(contracted))
	if diff.IsNegative() {
		return "-", diff.Neg()
	}
	return "+", diff
}

// Day holds the hours of one calendar day.
type Day struct {
	Date       time.Time
	Expected   decimal.Decimal
	Worked     decimal.Decimal
	Entries    int
	HasAbsence bool
}

// Code returns the weekday abbreviation of the day.
func (d Day) Code() string { return DayCode(d.Date.Weekday()) }

// Summary holds the hours of one week.
type Summary struct {
	Week       Week
	Days       [7]Day // Monday first
	Contracted decimal.Decimal
	Worked     decimal.Decimal
	Holiday    decimal.Decimal
	Vacation   decimal.Decimal
	Absent     decimal.Decimal
	CarryOver  decimal.Decimal
	Deduction  decimal.Decimal
}

// Target is the contracted hours minus holidays, vacation and other
// absences, never negative.
func (s *Summary) Target() decimal.Decimal {
	t := s.Contracted.Sub(s.Holiday).Sub(s.Vacation).Sub(s.Absent)
	if t.IsNegative() {
		return decimal.Zero
	}
	return t
}

// Overtime is the unrounded difference between worked and target hours.
func (s *Summary) Overtime() decimal.Decimal {
	return s.Worked.Sub(s.Target())
}

// Delta returns the sign and rounded magnitude of the week's overtime.
func (s *Summary) Delta() (string, decimal.Decimal) {
	return Delta(s.Worked, s.Target())
}

// Change is the week's effect on the hours account.
func (s *Summary) Change() decimal.Decimal {
	return s.Overtime().Add(s.CarryOver).Sub(s.Deduction)
}

// PerWeekday returns the worked hours Monday to Sunday.
func (s *Summary) PerWeekday() [7]decimal.Decimal {
	var out [7]decimal.Decimal
	for i, d := range s.Days {
		out[i] = d.Worked
	}
	return out
}

// MissingDays returns the days up to and including until that expect
// hours but carry no entry at all.
func (s *Summary) MissingDays(until time.Time) []Day {
	var out []Day
	for _, d := range s.Days {
		if d.Date.After(until) {
			break
		}
		if d.Expected.IsPositive() && d.Entries == 0 {
			out = append(out, d)
		}
	}
	return out
}

// Complete reports whether no day up to until is missing.
func (s *Summary) Complete(until time.Time) bool {
	return len(s.MissingDays(until)) == 0
}

// Deviations returns the days whose worked hours leave the expected
// hours by more than tolerance. Days with an absence entry are ignored.
func (s *Summary) Deviations(tolerance decimal.Decimal) []Day {
	lowerFactor := decimal.NewFromInt(1).Sub(tolerance)
	upperFactor := decimal.NewFromInt(1).Add(tolerance)

	var out []Day
	for _, d := range s.Days {
		if d.HasAbsence {
			continue
		}
		lower, upper := d.Expected.Mul(lowerFactor), d.Expected.Mul(upperFactor)
		if d.Worked.LessThan(lower) || d.Worked.GreaterThan(upper) {
			out = append(out, d)
		}
	}
	return out
}

// Balance is the hours account before and after a week.
type Balance struct {
	Previous decimal.Decimal
	Change   decimal.Decimal
}

// Total is the account after the week.
func (b Balance) Total() decimal.Decimal { return b.Previous.Add(b.Change) }

// Calculator computes weekly summaries from the time store.
type Calculator struct {
	store storage.TimeStore
	cfg   *config.Config
	log   *slog.Logger
}

// New creates a Calculator.
func New(store storage.TimeStore, cfg *config.Config, log *slog.Logger) *Calculator {
	if log == nil {
		log = logging.Discard()
	}
	return &Calculator{store: store, cfg: cfg, log: log}
}

// Week summarises one week.
func (c *Calculator) Week(ctx context.Context, w Week) (*Summary, error) {
	weeks, err := c.summaries(ctx, w, w)
	if err != nil {
		return nil, err
	}
	return weeks[0], nil
}

// WeeklyTotals returns the worked hours per weekday, Monday first.
func (c *Calculator) WeeklyTotals(ctx context.Context, w Week) ([7]decimal.Decimal, error) {
	s, err := c.Week(ctx, w)
	if err != nil {
		return [7]decimal.Decimal{}, err
	}
	return s.PerWeekday(), nil
}

// FirstWeek returns the week the hours account of w's year starts in:
// the onboarding week when it falls into that year, week 1 otherwise.
func (c *Calculator) FirstWeek(w Week) Week {
	first := Week{Year: w.Year, Number: 1}
	day, err := c.cfg.FirstDay()
	if err != nil {
		c.log.Debug("no onboarding day, account starts with week 1", "error", err)
		return first
	}
	if onboard := WeekOf(day); onboard.Year == w.Year && first.Before(onboard) {
		return onboard
	}
	return first
}

// Balance returns the hours account before w and w's change to it.
func (c *Calculator) Balance(ctx context.Context, w Week) (Balance, error) {
	start := c.FirstWeek(w)
	if w.Before(start) {
		return Balance{}, nil
	}
	weeks, err := c.summaries(ctx, start, w)
	if err != nil {
		return Balance{}, err
	}

	var b Balance
	last := len(weeks) - 1
	for _, s := range weeks[:last] {
		b.Previous = b.Previous.Add(s.Change())
	}
	b.Change = weeks[last].Change()
	c.log.Debug("hours account", "from", start.String(), "to", w.String(),
		"previous", b.Previous.String(), "change", b.Change.String())
	return b, nil
}

// summaries builds one Summary per week in [from, to] from a single query.
func (c *Calculator) summaries(ctx context.Context, from, to Week) ([]*Summary, error) {
	contracted := decimal.NewFromFloat(c.cfg.General.WeekHours)

	var weeks []*Summary
	index := make(map[Week]*Summary)
	for w := from; !to.Before(w); w = w.Next() {
		s := &Summary{Week: w, Contracted: contracted}
		monday := w.Monday()
		for i := range s.Days {
			day := monday.AddDate(0, 0, i)
			s.Days[i] = Day{
				Date:     day,
				Expected: decimal.NewFromFloat(c.cfg.Workdays.Hours(day.Weekday())),
			}
		}
		weeks = append(weeks, s)
		index[w] = s
	}

	rows, err := c.store.DaySeconds(ctx, from.Monday(), to.Sunday())
	if err != nil {
		return nil, fmt.Errorf("load hours %s..%s: %w", from, to, err)
	}
	for _, r := range rows {
		day, err := storage.ParseTime(r.Day)
		if err != nil {
			return nil, fmt.Errorf("day %q: %w", r.Day, err)
		}
		s, ok := index[WeekOf(day)]
		if !ok {
			continue
		}
		c.add(s, &s.Days[(int(day.Weekday())+6)%7], r)
	}
	return weeks, nil
}

func (c *Calculator) add(s *Summary, d *Day, r storage.DaySeconds) {
	h := Hours(r.Seconds)
	d.Entries += r.Entries

	cat, ok := c.category(r)
	if !ok || cat.CountsAsWork() {
		d.Worked = d.Worked.Add(h)
		s.Worked = s.Worked.Add(h)
		return
	}

	switch cat.Key {
	case config.KeyCarryOver:
		s.CarryOver = s.CarryOver.Add(h)
		return
	case config.KeyDeduction:
		s.Deduction = s.Deduction.Add(h)
		return
	case config.KeyHoliday:
		s.Holiday = s.Holiday.Add(h)
	case config.KeyVacation:
		s.Vacation = s.Vacation.Add(h)
	default:
		s.Absent = s.Absent.Add(h)
	}
	d.HasAbsence = true
}

// category finds the absence category of a row by project id, then by name.
func (c *Calculator) category(r storage.DaySeconds) (config.Category, bool) {
	for _, cat := range c.cfg.Absence {
		if cat.ProjectID == r.ProjectID {
			return cat, true
		}
	}
	for _, cat := range c.cfg.Absence {
		if strings.EqualFold(cat.Name, r.Category) {
			return cat, true
		}
	}
	return config.Category{}, false
}
