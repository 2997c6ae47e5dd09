package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/wochenfazit/internal/absence"
	"github.com/runnerr0/wochenfazit/internal/aggregate"
	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/contracts"
	"github.com/runnerr0/wochenfazit/internal/holiday"
	"github.com/runnerr0/wochenfazit/internal/logging"
	"github.com/runnerr0/wochenfazit/internal/overtime"
	"github.com/runnerr0/wochenfazit/internal/prompt"
	"github.com/runnerr0/wochenfazit/internal/report"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// session bundles what a command needs. Tests build one around an
// in-memory store.
type session struct {
	cfg      *config.Config
	cfgPath  string
	log      *slog.Logger
	store    storage.TimeStore
	calendar *holiday.Calendar
	prompt   *prompt.Prompter
	console  *report.Console
	getenv   func(string) string
	now      func() time.Time
	edit     func(path string) error
}

// loadConfig reads the configuration from --config or the default path,
// creating it with defaults when missing.
func loadConfig(globals *GlobalFlags) (*config.Config, string, error) {
	path := config.DefaultConfigPath
	if globals != nil && globals.Config != "" {
		path = globals.Config
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadOrCreateAt(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, path, nil
}

// openSession loads the configuration, builds the logger and opens the
// time store. The returned func releases everything.
func openSession(ctx context.Context, globals *GlobalFlags) (*session, func(), error) {
	cfg, path, err := loadConfig(globals)
	if err != nil {
		return nil, nil, err
	}

	log, closeLog, err := logging.New(cfg.Logging, globals != nil && globals.Verbose, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	store, db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	log.Debug("time store opened", "dbms", store.Dialect().String(), "config", path)

	sess := &session{
		cfg:      cfg,
		cfgPath:  path,
		log:      log,
		store:    store,
		calendar: holiday.NewCalendar(holiday.NewGeaCal(cfg.Holidays.Binary, log)),
		prompt:   prompt.New(os.Stdin, os.Stdout),
		console:  report.NewConsole(os.Stdout),
		getenv:   os.Getenv,
		now:      time.Now,
		edit:     func(p string) error { return openEditor(cfg.General.Editor, p) },
	}
	cleanup := func() {
		db.Close()
		closeLog()
	}
	return sess, cleanup, nil
}

// aggregator builds an Aggregator with the probed layout. The keyword
// resolver is attached when withResolver is set.
func (s *session) aggregator(ctx context.Context, withResolver bool) (*aggregate.Aggregator, error) {
	layout, err := s.store.ProbeLayout(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe project layout: %w", err)
	}
	s.log.Debug("project layout", "layout", layout.String())

	var resolver *contracts.Resolver
	if withResolver {
		rule := contracts.ParseRule(s.cfg.Database.KeywordPlace)
		resolver, err = contracts.NewResolver(ctx, s.store, rule, s.prompt, s.log)
		if err != nil {
			return nil, err
		}
	}
	return aggregate.New(s.store, resolver, layout, s.cfg, s.log), nil
}

func (s *session) reconciler() *absence.Reconciler {
	return absence.New(s.store, s.calendar, s.cfg, s.log)
}

// resolveWeek picks the week from flags, then WOFA_WEEK/WOFA_YEAR, then now.
func resolveWeek(f WeekFlags, now time.Time, getenv func(string) string) (overtime.Week, error) {
	w := overtime.WeekOf(now)
	week, year := f.Week, f.Year
	if week == 0 {
		week = config.EnvInt(getenv, "WOFA_WEEK")
	}
	if year == 0 {
		year = config.EnvInt(getenv, "WOFA_YEAR")
	}
	if week != 0 {
		w.Number = week
	}
	if year != 0 {
		w.Year = year
	}
	if !w.Valid() {
		return w, fmt.Errorf("invalid calendar week %s", w)
	}
	return w, nil
}

// parseDate parses a YYYY-MM-DD flag value.
func parseDate(flag, value string) (time.Time, error) {
	d, err := time.Parse(storage.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s value %q: expected YYYY-MM-DD", flag, value)
	}
	return d, nil
}

// parseHM parses "H:MM" or whole hours.
func parseHM(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	h, m, found := strings.Cut(value, ":")
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid hours %q: expected H:MM", value)
	}
	minutes := 0
	if found {
		minutes, err = strconv.Atoi(m)
		if err != nil || minutes < 0 || minutes > 59 {
			return 0, fmt.Errorf("invalid hours %q: expected H:MM", value)
		}
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// printJSON writes v indented to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openEditor opens path in the configured editor, $EDITOR or vi.
func openEditor(editor, path string) error {
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run editor %s: %w", editor, err)
	}
	return nil
}
