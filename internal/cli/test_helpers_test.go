package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goflags "github.com/jessevdk/go-flags"
	_ "github.com/mattn/go-sqlite3"
	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/holiday"
	"github.com/runnerr0/wochenfazit/internal/logging"
	"github.com/runnerr0/wochenfazit/internal/prompt"
	"github.com/runnerr0/wochenfazit/internal/report"
	"github.com/runnerr0/wochenfazit/internal/storage"
	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// parseOnly builds a parser whose commands are parsed but not executed.
func parseOnly(args ...string) (*GlobalFlags, *commands, error) {
	parser, globals, cmds := buildParser("test")
	parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs(args)
	return globals, cmds, err
}

// testSession is a session on an in-memory store. Console and prompt
// output go to out; edited paths are recorded.
type testSession struct {
	*session
	db     *sql.DB
	out    *bytes.Buffer
	edited []string
}

var testNow = time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, input string, holidays ...holiday.Holiday) *testSession {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.NewMigrationRunner(db, storage.DialectSQLite).Run())

	for _, p := range []struct {
		id   int64
		desc string
	}{{320, "Auftrag#"}, {321, "Organisation"}} {
		_, err := db.Exec("INSERT INTO projects (id, key, description) VALUES (?, ?, ?)", p.id, p.id, p.desc)
		require.NoError(t, err)
	}

	cfg := config.DefaultConfig()
	cfg.General.FullName = "Erika Muster"
	cfg.General.ReportDir = t.TempDir()
	cfg.Onboarding.FirstDay = "2025-06-02"

	var out bytes.Buffer
	ts := &testSession{db: db, out: &out}
	ts.session = &session{
		cfg:      cfg,
		cfgPath:  filepath.Join(t.TempDir(), "config.yaml"),
		log:      logging.Discard(),
		store:    storage.NewSQLStore(db, storage.DialectSQLite),
		calendar: holiday.NewCalendar(holiday.Static(holidays)),
		prompt:   prompt.New(strings.NewReader(input), &out),
		console:  report.NewConsole(&out),
		getenv:   func(string) string { return "" },
		now:      func() time.Time { return testNow },
		edit: func(path string) error {
			ts.edited = append(ts.edited, path)
			return nil
		},
	}
	return ts
}

func (ts *testSession) book(t *testing.T, pid int64, start string, d time.Duration, desc string) {
	t.Helper()
	st, err := storage.ParseTime(start)
	require.NoError(t, err)
	require.NoError(t, ts.store.InsertEntry(context.Background(), &storage.TimeEntry{
		ProjectID: pid, Start: st, Stop: st.Add(d), Description: desc,
	}))
}

// bookWeek23 books 40 hours into 2025-W23.
func (ts *testSession) bookWeek23(t *testing.T) {
	ts.book(t, 320, "2025-06-02 08:00:00", 6*time.Hour, "keycloak Login")
	ts.book(t, 321, "2025-06-02 14:00:00", 2*time.Hour, "Teamrunde")
	ts.book(t, 320, "2025-06-03 08:00:00", 8*time.Hour, "keycloak Login")
	ts.book(t, 320, "2025-06-04 08:00:00", 8*time.Hour, "Ticket sichten")
	ts.book(t, 320, "2025-06-05 08:00:00", 8*time.Hour, "keycloak Login")
	ts.book(t, 320, "2025-06-06 08:00:00", 8*time.Hour, "betrieb Server")
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(storage.DateLayout, s)
	require.NoError(t, err)
	return d
}
