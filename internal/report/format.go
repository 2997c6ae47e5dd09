package report

import (
	"strings"

	"github.com/runnerr0/wochenfazit/internal/overtime"
	"github.com/shopspring/decimal"
)

// FormatHours renders hours rounded to one decimal with a decimal comma;
// a trailing ",0" is dropped.
func FormatHours(h decimal.Decimal) string {
	s := overtime.Round(h).StringFixed(1)
	s = strings.TrimSuffix(s, ".0")
	if s == "-0" {
		s = "0"
	}
	return strings.Replace(s, ".", ",", 1)
}

// FormatSeconds renders seconds as hours.
func FormatSeconds(seconds int64) string {
	return FormatHours(overtime.Hours(seconds))
}

// Percent returns part/total in whole percent.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(decimal.NewFromInt(100)).Div(total).Round(0)
}
