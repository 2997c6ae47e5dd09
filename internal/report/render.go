// Package report renders the weekly summary (Wochenfazit) text and
// writes it to the report directory.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/runnerr0/wochenfazit/internal/aggregate"
	"github.com/runnerr0/wochenfazit/internal/overtime"
	"github.com/shopspring/decimal"
)

// Reminder fills free-text sections the author still has to write.
const Reminder = "* Bitte noch ausfüllen !!!"

// Section headings of the free-text part.
const (
	SectionAchieved = "Für uns miterreicht habe ich:"
	SectionLearned  = "Gelernt habe ich:"
	SectionImprove  = "Uns besser machen würde vielleicht:"
	SectionHours    = "Stundenaufteilung:"
)

// Data is everything a report shows.
type Data struct {
	Name           string
	Summary        *overtime.Summary
	Balance        overtime.Balance
	Missing        []overtime.Day
	Deviations     []overtime.Day
	Breakdown      []aggregate.Entry
	Tasks          []string
	DeductionLabel string
}

type group struct {
	percent decimal.Decimal
	entry   aggregate.Entry
}

// Render builds the report text.
func Render(d Data) string {
	s := d.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "Wochenfazit: %s Name: %s\n", s.Week, d.Name)
	fmt.Fprintf(&b, "Arbeitsstunden: %s von %s (Vertrag: %s  Feiertage: %s  Urlaub: %s  abwesend: %s)\n",
		FormatHours(s.Worked), FormatHours(s.Target()), FormatHours(s.Contracted),
		FormatHours(s.Holiday), FormatHours(s.Vacation), FormatHours(s.Absent))

	sign, change := overtime.Delta(d.Balance.Change, decimal.Zero)
	fmt.Fprintf(&b, "Stundenkonto: %s %s %s = %s\n",
		FormatHours(d.Balance.Previous), sign, FormatHours(change), FormatHours(d.Balance.Total()))

	for _, day := range d.Deviations {
		fmt.Fprintf(&b, "Tagabweichung: %s: %s\n", day.Code(), FormatHours(day.Worked))
	}
	if len(d.Missing) > 0 {
		codes := make([]string, len(d.Missing))
		for i, day := range d.Missing {
			codes[i] = day.Code()
		}
		fmt.Fprintf(&b, "Fehlende Einträge: %s\n", strings.Join(codes, ", "))
	}

	if s.Worked.IsPositive() && s.Target().IsPositive() {
		achieved := Reminder
		if len(d.Tasks) > 0 {
			achieved = strings.Join(d.Tasks, "\n  ")
		}
		fmt.Fprintf(&b, "\n%s\n  %s\n", SectionAchieved, achieved)
		fmt.Fprintf(&b, "\n%s\n  %s\n", SectionLearned, Reminder)
		fmt.Fprintf(&b, "\n%s\n  %s\n", SectionImprove, Reminder)

		fmt.Fprintf(&b, "\n%s\n", SectionHours)
		for _, g := range groups(d.Breakdown, s.Worked) {
			fmt.Fprintf(&b, "%s%%: %s: %s\n", g.percent, g.entry.Description, FormatSeconds(g.entry.Seconds))
			writeSubEntries(&b, g.entry.SubEntries, 1)
		}
	}

	if s.Deduction.IsPositive() {
		label := d.DeductionLabel
		if label == "" {
			label = "Zeitkonto Abzug"
		}
		fmt.Fprintf(&b, "\nPS: %s: %s\n", label, FormatHours(s.Deduction))
	}
	return b.String()
}

// groups orders the top-level entries by their share of worked hours.
func groups(entries []aggregate.Entry, worked decimal.Decimal) []group {
	var out []group
	for _, e := range entries {
		if overtime.Round(overtime.Hours(e.Seconds)).IsZero() {
			continue
		}
		out = append(out, group{percent: Percent(overtime.Hours(e.Seconds), worked), entry: e})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].percent.GreaterThan(out[j].percent)
	})
	return out
}

func writeSubEntries(b *strings.Builder, entries []aggregate.Entry, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		if overtime.Round(overtime.Hours(e.Seconds)).IsZero() {
			continue
		}
		fmt.Fprintf(b, "%s%s: %s\n", indent, e.Description, FormatSeconds(e.Seconds))
		writeSubEntries(b, e.SubEntries, depth+1)
	}
}
