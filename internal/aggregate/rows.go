// Package aggregate turns raw time entries into listing rows and the
// per-category breakdown of the weekly report.
package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/wochenfazit/internal/storage"
)

// Row is one line of an entry listing. Rows merged from several entries
// carry all their ids and time ranges.
type Row struct {
	IDs         []int64  `json:"ids"`
	Category    string   `json:"category"`
	Starts      []string `json:"starts"`
	Stops       []string `json:"stops"`
	Seconds     int64    `json:"seconds"`
	Description string   `json:"description"`
}

// Duration renders the row's time as H:MMh.
func (r Row) Duration() string { return FormatDuration(r.Seconds) }

// JoinedIDs renders the ids pipe-joined.
func (r Row) JoinedIDs() string {
	parts := make([]string, len(r.IDs))
	for i, id := range r.IDs {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, "|")
}

// Total is a row projected to category, time and description.
type Total struct {
	Category    string `json:"category"`
	Seconds     int64  `json:"seconds"`
	Description string `json:"description"`
}

// FormatDuration renders seconds as H:MMh.
func FormatDuration(seconds int64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%d:%02dh", sign, seconds/3600, seconds%3600/60)
}

func seconds(e storage.TimeEntry) int64 {
	return int64(e.Duration() / time.Second)
}

func minuteStamp(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func newRow(r storage.EntryRow) Row {
	return Row{
		IDs:         []int64{r.ID},
		Category:    r.Category,
		Starts:      []string{minuteStamp(r.Start)},
		Stops:       []string{minuteStamp(r.Stop)},
		Seconds:     seconds(r.TimeEntry),
		Description: r.Description,
	}
}

func (r *Row) absorb(o Row) {
	r.IDs = append(r.IDs, o.IDs...)
	r.Starts = append(r.Starts, o.Starts...)
	r.Stops = append(r.Stops, o.Stops...)
	r.Seconds += o.Seconds
}

// SumTimes merges rows whose descriptions are identical ignoring case.
// The first row of each group keeps its category and spelling.
func SumTimes(rows []Row) []Row {
	var out []Row
	index := make(map[string]int)
	for _, r := range rows {
		key := strings.ToLower(r.Description)
		if i, ok := index[key]; ok {
			out[i].absorb(r)
			continue
		}
		index[key] = len(out)
		out = append(out, cloneRow(r))
	}
	return out
}

func cloneRow(r Row) Row {
	r.IDs = append([]int64(nil), r.IDs...)
	r.Starts = append([]string(nil), r.Starts...)
	r.Stops = append([]string(nil), r.Stops...)
	return r
}

// Totals projects rows to (category, time, description).
func Totals(rows []Row) []Total {
	out := make([]Total, len(rows))
	for i, r := range rows {
		out[i] = Total{Category: r.Category, Seconds: r.Seconds, Description: r.Description}
	}
	return out
}

// TotalSeconds sums the time of all rows.
func TotalSeconds(rows []Row) int64 {
	var sum int64
	for _, r := range rows {
		sum += r.Seconds
	}
	return sum
}
