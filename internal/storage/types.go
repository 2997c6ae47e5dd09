package storage

import "time"

// Timestamp and date layouts used by the entries table.
const (
	TimeLayout = "2006-01-02 15:04:05"
	DateLayout = "2006-01-02"
)

// TimeEntry is a single row of the entries table.
type TimeEntry struct {
	ID          int64
	ProjectID   int64
	Start       time.Time
	Stop        time.Time
	Description string
}

// Duration returns stop minus start. Running entries without a stop time
// have a zero duration.
func (e TimeEntry) Duration() time.Duration {
	if e.Stop.Before(e.Start) {
		return 0
	}
	return e.Stop.Sub(e.Start)
}

// EntryRow is a time entry joined with its project.
type EntryRow struct {
	TimeEntry
	Category string // project description without tree glyphs
}

// Project is a row of the projects table.
type Project struct {
	ID          int64
	Key         string
	Description string
	Active      bool
}

// ProjectTotal pairs a project with the seconds booked on it.
type ProjectTotal struct {
	Project
	Seconds int64
}

// DaySeconds holds the booked time of one project on one day.
type DaySeconds struct {
	Day       string // YYYY-MM-DD
	ProjectID int64
	Category  string
	Seconds   int64
	Entries   int
}

// ContractKeyword maps a trigger word to a contract id and task label.
type ContractKeyword struct {
	ID         int64
	Keyword    string
	ContractID string
	Task       string
}

// EntryQuery selects entries joined with their projects. Filter is an
// SQL predicate whose placeholders are numbered from 1 and bound to
// FilterArgs. A zero From or To leaves that side of the range open.
type EntryQuery struct {
	Filter     string
	FilterArgs []any
	From       time.Time
	To         time.Time
}

// Stats holds aggregate statistics about the time store.
type Stats struct {
	TotalEntries  int64
	TotalProjects int64
	TotalKeywords int64
	OldestEntry   time.Time
	NewestEntry   time.Time
	TopProjects   []ProjectCount
}

// ProjectCount pairs a project with its entry count.
type ProjectCount struct {
	Project string
	Count   int64
}

// ParseTime parses a stored timestamp. Values carrying only a date or
// hour and minute are accepted.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, "2006-01-02 15:04", DateLayout} {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{Layout: TimeLayout, Value: s, Message: ": unsupported timestamp"}
}

// FormatTime renders t in the stored timestamp layout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
