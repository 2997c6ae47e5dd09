package absence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/holiday"
	"github.com/runnerr0/wochenfazit/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db, storage.DialectSQLite).Run())
	return storage.NewSQLStore(db, storage.DialectSQLite)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(storage.DateLayout, s)
	require.NoError(t, err)
	return d
}

func newReconciler(t *testing.T, holidays ...holiday.Holiday) (*Reconciler, *storage.SQLStore) {
	t.Helper()
	store := openTestStore(t)
	cal := holiday.NewCalendar(holiday.Static(holidays))
	return New(store, cal, config.DefaultConfig(), nil), store
}

func categoryEntries(t *testing.T, store *storage.SQLStore, key string, from, to time.Time) []storage.EntryRow {
	t.Helper()
	cat := config.DefaultConfig().MustCategory(key)
	rows, err := store.CategoryEntries(context.Background(), cat.ProjectID, from, to)
	require.NoError(t, err)
	return rows
}

func TestApply_Idempotent(t *testing.T) {
	r, store := newReconciler(t)
	ctx := context.Background()
	day := date(t, "2025-06-04")

	out, err := r.Apply(ctx, Request{Category: "Urlaub", From: day, Op: Set})
	require.NoError(t, err)
	assert.Equal(t, Inserted, out["2025-06-04"])

	out, err = r.Apply(ctx, Request{Category: "urlaub", From: day, Op: Set})
	require.NoError(t, err)
	assert.Equal(t, Updated, out["2025-06-04"])

	rows := categoryEntries(t, store, config.KeyVacation, day, day)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-06-04 08:00:00", storage.FormatTime(rows[0].Start))
	assert.Equal(t, "2025-06-04 16:00:00", storage.FormatTime(rows[0].Stop))
	assert.Equal(t, "Urlaub", rows[0].Description)
}

func TestApply_RangeSkipsWeekendAndHoliday(t *testing.T) {
	r, store := newReconciler(t, holiday.Holiday{Date: date(t, "2025-06-09"), Name: "Pfingstmontag"})
	ctx := context.Background()

	out, err := r.Apply(ctx, Request{Category: "VAC", From: date(t, "2025-06-06"), To: date(t, "2025-06-10"), Op: Set})
	require.NoError(t, err)
	assert.Equal(t, map[string]Outcome{
		"2025-06-06": Inserted,
		"2025-06-07": Skipped,
		"2025-06-08": Skipped,
		"2025-06-09": Skipped,
		"2025-06-10": Inserted,
	}, out)

	rows := categoryEntries(t, store, config.KeyVacation, date(t, "2025-06-06"), date(t, "2025-06-10"))
	assert.Len(t, rows, 2)
}

func TestApply_ManualHolidayEntryCounts(t *testing.T) {
	r, store := newReconciler(t)
	ctx := context.Background()
	day := date(t, "2025-06-04")

	require.NoError(t, store.InsertEntry(ctx, &storage.TimeEntry{
		ProjectID: 2, Start: day.Add(8 * time.Hour), Stop: day.Add(16 * time.Hour), Description: "Feiertag",
	}))

	status, err := r.Status(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, PublicHoliday, status)

	out, err := r.Apply(ctx, Request{Category: "Urlaub", From: day, Op: Set})
	require.NoError(t, err)
	assert.Equal(t, Skipped, out["2025-06-04"])
}

func TestApply_SickOverridesHoliday(t *testing.T) {
	r, store := newReconciler(t)
	ctx := context.Background()
	day := date(t, "2025-06-04")

	hol := &storage.TimeEntry{ProjectID: 2, Start: day.Add(8 * time.Hour), Stop: day.Add(16 * time.Hour), Description: "Feiertag"}
	require.NoError(t, store.InsertEntry(ctx, hol))

	out, err := r.Apply(ctx, Request{Category: "Krank", From: day, Op: Set})
	require.NoError(t, err)
	assert.Equal(t, Inserted, out["2025-06-04"])

	e, err := store.FindEntryOn(ctx, day, 2)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), e.Duration())

	sick := categoryEntries(t, store, config.KeySick, day, day)
	require.Len(t, sick, 1)
	assert.Equal(t, "AU", sick[0].Description)
	assert.Equal(t, 8*time.Hour, sick[0].Duration())

	out, err = r.Apply(ctx, Request{Category: "Krank", From: day, Op: Delete})
	require.NoError(t, err)
	assert.Equal(t, Updated, out["2025-06-04"])

	e, err = store.FindEntryOn(ctx, day, 2)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, e.Duration())
	assert.Empty(t, categoryEntries(t, store, config.KeySick, day, day))
}

func TestApply_BookkeepingHoursBypassWeekend(t *testing.T) {
	r, store := newReconciler(t)
	ctx := context.Background()
	saturday := date(t, "2025-06-07")
	hours := 12*time.Hour + 30*time.Minute

	out, err := r.Apply(ctx, Request{Category: "ZKÜ", From: saturday, Op: Set, Hours: &hours})
	require.NoError(t, err)
	assert.Equal(t, Inserted, out["2025-06-07"])

	rows := categoryEntries(t, store, config.KeyCarryOver, saturday, saturday)
	require.Len(t, rows, 1)
	assert.Equal(t, hours, rows[0].Duration())
}

func TestApply_DeleteMissingIsNoop(t *testing.T) {
	r, _ := newReconciler(t)

	out, err := r.Apply(context.Background(), Request{Category: "Urlaub", From: date(t, "2025-06-04"), Op: Delete})
	require.NoError(t, err)
	assert.Equal(t, Unchanged, out["2025-06-04"])
}

func TestPlan_DoesNotWrite(t *testing.T) {
	r, store := newReconciler(t)
	day := date(t, "2025-06-04")

	plan, err := r.Plan(context.Background(), Request{Category: "Urlaub", From: day, Op: Set})
	require.NoError(t, err)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, ActionInsert, plan.Actions[0].Kind)
	assert.Contains(t, plan.Actions[0].String(), "insert 2025-06-04 08:00-16:00")
	assert.Empty(t, categoryEntries(t, store, config.KeyVacation, day, day))
}

func TestPlan_Errors(t *testing.T) {
	r, _ := newReconciler(t)
	ctx := context.Background()

	_, err := r.Plan(ctx, Request{Category: "Sabbatical", From: date(t, "2025-06-04")})
	assert.True(t, errors.Is(err, ErrUnknownCategory))

	_, err = r.Plan(ctx, Request{Category: "Urlaub", From: date(t, "2025-06-05"), To: date(t, "2025-06-04")})
	assert.Error(t, err)

	_, err = r.Plan(ctx, Request{Category: "Urlaub"})
	assert.Error(t, err)
}

func TestSyncHolidays(t *testing.T) {
	r, store := newReconciler(t,
		holiday.Holiday{Date: date(t, "2025-06-09"), Name: "Pfingstmontag"},
		holiday.Holiday{Date: date(t, "2025-06-19"), Name: "Fronleichnam"},
		holiday.Holiday{Date: date(t, "2025-06-30"), Name: "Später"},
	)
	ctx := context.Background()

	out, err := r.SyncHolidays(ctx, date(t, "2025-06-04"))
	require.NoError(t, err)
	assert.Equal(t, map[string]Outcome{"2025-06-09": Inserted}, out)

	e, err := store.FindEntryOn(ctx, date(t, "2025-06-09"), 2)
	require.NoError(t, err)
	assert.Equal(t, "Feiertag: Pfingstmontag", e.Description)
	assert.Equal(t, 8*time.Hour, e.Duration())

	out, err = r.SyncHolidays(ctx, date(t, "2025-06-11"))
	require.NoError(t, err)
	assert.Equal(t, Skipped, out["2025-06-09"])
	assert.Equal(t, Inserted, out["2025-06-19"])
}
