package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/runnerr0/wochenfazit/internal/holiday"
	"github.com/runnerr0/wochenfazit/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pfingstmontag = holiday.Holiday{Date: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), Name: "Pfingstmontag"}

func TestReport_DryRun(t *testing.T) {
	ts := newTestSession(t, "Ticket sichten #4012\n\n")
	ts.bookWeek23(t)
	cmd := &ReportCommand{WeekFlags: WeekFlags{Week: 23, Year: 2025}, DryRun: true, globals: &GlobalFlags{}}

	require.NoError(t, cmd.run(context.Background(), ts.session))

	out := ts.out.String()
	assert.Contains(t, out, "Wochenfazit: 2025-W23 Name: Erika Muster")
	assert.Contains(t, out, "Arbeitsstunden: 40 von 40 (Vertrag: 40  Feiertage: 0  Urlaub: 0  abwesend: 0)")
	assert.Contains(t, out, "Stundenkonto: 0 + 0 = 0")
	assert.Contains(t, out, "95%: Auftrag#: 38")
	assert.Contains(t, out, "  keycloak Projekt #4016: 22")
	assert.Contains(t, out, "  Ticket sichten #4012: 8")
	assert.Contains(t, out, "  betrieb Dauertätigkeit #4014: 8")
	assert.Contains(t, out, "5%: Organisation: 2")
	assert.Contains(t, out, "  Teamrunde: 2")
	assert.NotContains(t, out, "Fehlende Einträge")
	assert.NotContains(t, out, "Tagabweichung")
	assert.Empty(t, ts.edited)

	// the correction was written back to the store
	rows, err := ts.store.CategoryEntries(context.Background(), 320, mustDate(t, "2025-06-04"), mustDate(t, "2025-06-04"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ticket sichten #4012", rows[0].Description)
}

func TestReport_WritesFileAndOpensEditor(t *testing.T) {
	ts := newTestSession(t, "", pfingstmontag)
	ts.bookWeek23(t)
	cmd := &ReportCommand{WeekFlags: WeekFlags{Week: 23, Year: 2025}, Edit: true, NoCorrect: true, globals: &GlobalFlags{}}

	require.NoError(t, cmd.run(context.Background(), ts.session))

	path := filepath.Join(ts.cfg.General.ReportDir, "2025", "KW23.txt")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Wochenfazit: 2025-W23 Name: Erika Muster")
	assert.Contains(t, string(data), "  Ticket sichten: 8")
	assert.Contains(t, ts.out.String(), "Bericht gespeichert unter: "+path)
	assert.Equal(t, []string{path}, ts.edited)

	// holidays of the following week are booked before the report
	e, err := ts.store.FindEntryOn(context.Background(), pfingstmontag.Date, 2)
	require.NoError(t, err)
	assert.Equal(t, "Feiertag: Pfingstmontag", e.Description)
	assert.Equal(t, 8*time.Hour, e.Duration())
}

func TestReport_NoSyncLeavesHolidays(t *testing.T) {
	ts := newTestSession(t, "", pfingstmontag)
	cmd := &ReportCommand{WeekFlags: WeekFlags{Week: 23, Year: 2025}, DryRun: true, NoSync: true, globals: &GlobalFlags{}}

	require.NoError(t, cmd.run(context.Background(), ts.session))

	_, err := ts.store.FindEntryOn(context.Background(), pfingstmontag.Date, 2)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReport_ExistingFileNotOverwritten(t *testing.T) {
	ts := newTestSession(t, "n\n")
	ts.bookWeek23(t)
	path := filepath.Join(ts.cfg.General.ReportDir, "2025", "KW23.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("edited by hand\n"), 0o644))

	cmd := &ReportCommand{WeekFlags: WeekFlags{Week: 23, Year: 2025}, NoCorrect: true, globals: &GlobalFlags{}}
	require.NoError(t, cmd.run(context.Background(), ts.session))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "edited by hand\n", string(data))
	assert.Contains(t, ts.out.String(), "existiert bereits")
}

func TestReport_ForceOverwrites(t *testing.T) {
	ts := newTestSession(t, "")
	ts.bookWeek23(t)
	path := filepath.Join(ts.cfg.General.ReportDir, "2025", "KW23.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	cmd := &ReportCommand{WeekFlags: WeekFlags{Week: 23, Year: 2025}, Force: true, NoCorrect: true, globals: &GlobalFlags{}}
	require.NoError(t, cmd.run(context.Background(), ts.session))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Wochenfazit: 2025-W23")
}

func TestReport_MissingDaysAndConfigPrompt(t *testing.T) {
	ts := newTestSession(t, "38,5\n2025-06-02\n")
	ts.cfg.General.WeekHours = 0
	ts.cfg.Onboarding.FirstDay = ""
	ts.book(t, 320, "2025-06-02 08:00:00", 8*time.Hour, "keycloak Login")
	ts.book(t, 320, "2025-06-04 08:00:00", 4*time.Hour, "keycloak Login")

	cmd := &ReportCommand{WeekFlags: WeekFlags{Week: 23, Year: 2025}, DryRun: true, NoCorrect: true, globals: &GlobalFlags{}}
	require.NoError(t, cmd.run(context.Background(), ts.session))

	assert.Equal(t, 38.5, ts.cfg.General.WeekHours)
	assert.Equal(t, "2025-06-02", ts.cfg.Onboarding.FirstDay)
	_, err := os.Stat(ts.cfgPath)
	assert.NoError(t, err, "filled settings are saved")

	out := ts.out.String()
	assert.Contains(t, out, "Tagabweichung: Mi: 4")
	assert.Contains(t, out, "Fehlende Einträge: Di, Do, Fr")
}
