package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Subtext  = lipgloss.Color("#a6adc8")

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Good  = lipgloss.NewStyle().Foreground(Green)
)

// Console prints styled messages and reports.
type Console struct {
	w io.Writer
}

// NewConsole writes to w.
func NewConsole(w io.Writer) *Console { return &Console{w: w} }

// Report prints a rendered report, highlighting headings and the lines
// that need attention.
func (c *Console) Report(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintln(c.w, styleLine(line))
	}
}

func styleLine(line string) string {
	switch {
	case strings.HasPrefix(line, "Wochenfazit:"),
		line == SectionAchieved, line == SectionLearned,
		line == SectionImprove, line == SectionHours:
		return Title.Render(line)
	case strings.HasPrefix(line, "Tagabweichung:"),
		strings.HasPrefix(line, "Fehlende Einträge:"),
		strings.Contains(line, Reminder):
		return Hot.Render(line)
	case strings.HasPrefix(line, "  "):
		return Muted.Render(line)
	}
	return line
}

// Warn prints a highlighted message.
func (c *Console) Warn(format string, args ...any) {
	fmt.Fprintln(c.w, Hot.Render(fmt.Sprintf(format, args...)))
}

// Success prints a confirmation.
func (c *Console) Success(format string, args ...any) {
	fmt.Fprintln(c.w, Good.Render(fmt.Sprintf(format, args...)))
}

// Heading prints a title line.
func (c *Console) Heading(format string, args ...any) {
	fmt.Fprintln(c.w, Title.Render(fmt.Sprintf(format, args...)))
}
