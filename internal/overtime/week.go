package overtime

import (
	"fmt"
	"time"
)

// Week is an ISO calendar week (Kalenderwoche).
type Week struct {
	Year   int
	Number int
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Number: w}
}

// Monday returns the first day of the week at midnight UTC.
func (w Week) Monday() time.Time {
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(w.Number-1)*7)
}

// Sunday returns the last day of the week.
func (w Week) Sunday() time.Time { return w.Monday().AddDate(0, 0, 6) }

// Next returns the following week.
func (w Week) Next() Week { return WeekOf(w.Monday().AddDate(0, 0, 7)) }

// Prev returns the preceding week.
func (w Week) Prev() Week { return WeekOf(w.Monday().AddDate(0, 0, -7)) }

// Before reports whether w lies before o.
func (w Week) Before(o Week) bool {
	if w.Year != o.Year {
		return w.Year < o.Year
	}
	return w.Number < o.Number
}

// Valid reports whether the week number exists in its year.
func (w Week) Valid() bool {
	if w.Number < 1 || w.Number > 53 {
		return false
	}
	return WeekOf(w.Monday()) == w
}

func (w Week) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Number)
}

var dayCodes = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

// DayCode returns the German two-letter weekday abbreviation.
func DayCode(d time.Weekday) string { return dayCodes[d] }
