// Package holiday provides public holidays from the geaCal tool.
package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strconv"
	"time"

	"github.com/runnerr0/wochenfazit/internal/logging"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// Holiday is a public holiday.
type Holiday struct {
	Date time.Time
	Name string
}

// Source returns the holidays of a year.
type Source interface {
	Holidays(ctx context.Context, year int) ([]Holiday, error)
}

// Static is a fixed holiday list, used when no calendar tool is installed.
type Static []Holiday

// Holidays returns the entries of year.
func (s Static) Holidays(_ context.Context, year int) ([]Holiday, error) {
	var out []Holiday
	for _, h := range s {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out, nil
}

// runFunc executes a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// GeaCal runs `geaCal -l -y <year> -j` and parses its JSON output.
type GeaCal struct {
	binary string
	log    *slog.Logger
	lookup func(string) (string, error)
	run    runFunc
}

// NewGeaCal returns a source backed by the given binary name or path.
func NewGeaCal(binary string, log *slog.Logger) *GeaCal {
	if log == nil {
		log = logging.Discard()
	}
	return &GeaCal{binary: binary, log: log, lookup: exec.LookPath, run: execRun}
}

type geaCalOutput struct {
	Holidays [][]string `json:"holidays"`
}

// Holidays returns the year's holidays. A missing binary is not an
// error: it is logged and no holidays are returned.
func (g *GeaCal) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	path, err := g.lookup(g.binary)
	if err != nil {
		g.log.Warn("holiday tool not found, assuming no holidays", "binary", g.binary)
		return nil, nil
	}

	out, err := g.run(ctx, path, "-l", "-y", strconv.Itoa(year), "-j")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s exited with %d: %s", g.binary, exitErr.ExitCode(), exitErr.Stderr)
		}
		return nil, fmt.Errorf("run %s: %w", g.binary, err)
	}
	return g.parse(out)
}

func (g *GeaCal) parse(data []byte) ([]Holiday, error) {
	var doc geaCalOutput
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s output: %w", g.binary, err)
	}

	var out []Holiday
	for _, pair := range doc.Holidays {
		if len(pair) < 2 {
			g.log.Warn("skipping malformed holiday", "value", pair)
			continue
		}
		d, err := time.Parse(storage.DateLayout, pair[0])
		if err != nil {
			g.log.Warn("skipping holiday with bad date", "date", pair[0], "name", pair[1])
			continue
		}
		out = append(out, Holiday{Date: d, Name: pair[1]})
	}
	return out, nil
}

// Calendar caches a source per year.
type Calendar struct {
	src   Source
	years map[int][]Holiday
}

// NewCalendar wraps src. A nil src has no holidays.
func NewCalendar(src Source) *Calendar {
	if src == nil {
		src = Static(nil)
	}
	return &Calendar{src: src, years: make(map[int][]Holiday)}
}

func (c *Calendar) year(ctx context.Context, y int) ([]Holiday, error) {
	if hs, ok := c.years[y]; ok {
		return hs, nil
	}
	hs, err := c.src.Holidays(ctx, y)
	if err != nil {
		return nil, err
	}
	c.years[y] = hs
	return hs, nil
}

// Lookup reports whether day is a public holiday.
func (c *Calendar) Lookup(ctx context.Context, day time.Time) (Holiday, bool, error) {
	hs, err := c.year(ctx, day.Year())
	if err != nil {
		return Holiday{}, false, err
	}
	key := storage.FormatDate(day)
	for _, h := range hs {
		if storage.FormatDate(h.Date) == key {
			return h, true, nil
		}
	}
	return Holiday{}, false, nil
}

// Between returns the holidays within [from, to] ordered by date.
func (c *Calendar) Between(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	lo, hi := storage.FormatDate(from), storage.FormatDate(to)
	var out []Holiday
	for y := from.Year(); y <= to.Year(); y++ {
		hs, err := c.year(ctx, y)
		if err != nil {
			return nil, err
		}
		for _, h := range hs {
			if d := storage.FormatDate(h.Date); d >= lo && d <= hi {
				out = append(out, h)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
