package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 40.0, cfg.General.WeekHours)
	assert.True(t, cfg.General.ShowUUK)
	assert.Equal(t, "sqlite", cfg.Database.DBMS)
	assert.Equal(t, "sqlite3", cfg.Database.SQLiteDriver)
	assert.Equal(t, "any", cfg.Database.KeywordPlace)
	assert.Equal(t, 8.0, cfg.Workdays.Mo)
	assert.Equal(t, 0.0, cfg.Workdays.So)
	assert.Equal(t, 40.0, cfg.Workdays.Total())
	assert.Equal(t, "geaCal", cfg.Holidays.Binary)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Onboarding.FirstDay)
	assert.Len(t, cfg.Absence, 8)
	assert.Equal(t, int64(320), cfg.ProjectIDs["Auftrag#"])
}

func TestWorkdaysHours(t *testing.T) {
	w := WorkdaysConfig{Mo: 8.5, Di: 8, Mi: 7, Do: 8, Fr: 6, Sa: 0, So: 1}

	assert.Equal(t, 8.5, w.Hours(time.Monday))
	assert.Equal(t, 7.0, w.Hours(time.Wednesday))
	assert.Equal(t, 6.0, w.Hours(time.Friday))
	assert.Equal(t, 0.0, w.Hours(time.Saturday))
	assert.Equal(t, 1.0, w.Hours(time.Sunday))
	assert.Equal(t, 38.5, w.Total())
}

func TestCategoryLookup(t *testing.T) {
	cfg := DefaultConfig()

	for _, name := range []string{"krank", "AU", "Krank", "au"} {
		cat, ok := cfg.Category(name)
		require.True(t, ok, name)
		assert.Equal(t, KeySick, cat.Key)
		assert.Equal(t, int64(4), cat.ProjectID)
	}

	cat, ok := cfg.Category("ZKÜ")
	require.True(t, ok)
	assert.True(t, cat.Bookkeeping())

	_, ok = cfg.Category("nonsense")
	assert.False(t, ok)
}

func TestNonWorkCategoriesExcludeTemp(t *testing.T) {
	names := DefaultConfig().NonWorkCategories()

	assert.NotContains(t, names, "Temp")
	assert.Contains(t, names, "Feiertag")
	assert.Contains(t, names, "Urlaub")
	assert.Contains(t, names, "Zeitkonto Abzug/Ausgezahlt")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSetting))

	cfg.Onboarding.FirstDay = "2024-03-01"
	assert.NoError(t, cfg.Validate())

	cfg.General.WeekHours = 0
	assert.True(t, errors.Is(cfg.Validate(), ErrMissingSetting))

	cfg.General.WeekHours = 40
	cfg.Onboarding.FirstDay = "01.03.2024"
	assert.Error(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"WOFA_DATABASE":  "/tmp/other.db",
		"WOFA_LOG_LEVEL": "debug",
		"WOFA_WEEK":      "23",
	}
	getenv := func(k string) string { return env[k] }

	cfg := DefaultConfig()
	cfg.ApplyEnv(getenv)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 23, EnvInt(getenv, "WOFA_WEEK"))
	assert.Equal(t, 0, EnvInt(getenv, "WOFA_YEAR"))

	pg := DefaultConfig()
	pg.Database.DBMS = "pg"
	env["WOFA_DATABASE"] = "postgres://localhost/hamster"
	pg.ApplyEnv(getenv)
	assert.Equal(t, "postgres://localhost/hamster", pg.Database.DSN)
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
general:
  fullname: "Erika Mustermann"
  weekhours: 38.5
database:
  dbms: "pg"
  keyword_place: "^"
workdays:
  Fr: 6.5
logging:
  level: "debug"
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "Erika Mustermann", cfg.General.FullName)
	assert.Equal(t, 38.5, cfg.General.WeekHours)
	assert.Equal(t, "pg", cfg.Database.DBMS)
	assert.Equal(t, "^", cfg.Database.KeywordPlace)
	assert.Equal(t, 6.5, cfg.Workdays.Fr)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Non-overridden values remain defaults
	assert.Equal(t, 8.0, cfg.Workdays.Mo)
	assert.Equal(t, "geaCal", cfg.Holidays.Binary)
	assert.Len(t, cfg.Absence, 8)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte(":::not valid yaml{{{"), 0644)
	require.NoError(t, err)

	_, err = Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	_, err := Load("/tmp/nonexistent_path_12345/config.yaml")
	assert.Error(t, err)
}

func TestLoadOrCreateCreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "deep", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.General.WeekHours)

	// File should now exist on disk
	_, statErr := os.Stat(cfgPath)
	assert.NoError(t, statErr)

	// File should be valid YAML loadable again
	cfg2, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Workdays, cfg2.Workdays)
	assert.Equal(t, cfg.Absence, cfg2.Absence)
}

func TestSaveRoundTripsPromptedSettings(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)

	cfg.Onboarding.FirstDay = "2023-11-15"
	require.NoError(t, Save(cfgPath, cfg))

	reloaded, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	first, err := reloaded.FirstDay()
	require.NoError(t, err)
	assert.Equal(t, 2023, first.Year())
	assert.Equal(t, time.November, first.Month())
	assert.Equal(t, 15, first.Day())
}

func TestLoadWithProjectIDs(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
project_ids:
  "Kundenprojekte": 400
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, int64(400), cfg.ProjectIDs["Kundenprojekte"])
	assert.True(t, cfg.UUKCategory(400))
	assert.False(t, cfg.UUKCategory(999))
}
