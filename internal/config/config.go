package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/wochenfazit/config.yaml"

// ErrMissingSetting is returned by Validate when a setting the report
// cannot do without is unset.
var ErrMissingSetting = errors.New("missing setting")

// Config holds all Wochenfazit configuration.
type Config struct {
	General    GeneralConfig    `yaml:"general"`
	Database   DatabaseConfig   `yaml:"database"`
	Workdays   WorkdaysConfig   `yaml:"workdays"`
	Onboarding OnboardingConfig `yaml:"onboarding"`
	ProjectIDs map[string]int64 `yaml:"project_ids"`
	Absence    []Category       `yaml:"absence"`
	Holidays   HolidaysConfig   `yaml:"holidays"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type GeneralConfig struct {
	FullName    string  `yaml:"fullname"`
	WeekHours   float64 `yaml:"weekhours"`
	ReportDir   string  `yaml:"report_dir"`
	ShowUUK     bool    `yaml:"show_uuk"`
	InsertTasks bool    `yaml:"insert_tasks"`
	Editor      string  `yaml:"editor"`
}

type DatabaseConfig struct {
	DBMS         string `yaml:"dbms"`
	Path         string `yaml:"path"`
	DSN          string `yaml:"dsn"`
	SQLiteDriver string `yaml:"sqlite_driver"`
	KeywordPlace string `yaml:"keyword_place"`
}

// WorkdaysConfig holds the contracted hours per weekday.
type WorkdaysConfig struct {
	Mo float64 `yaml:"Mo"`
	Di float64 `yaml:"Di"`
	Mi float64 `yaml:"Mi"`
	Do float64 `yaml:"Do"`
	Fr float64 `yaml:"Fr"`
	Sa float64 `yaml:"Sa"`
	So float64 `yaml:"So"`
}

type OnboardingConfig struct {
	FirstDay string `yaml:"firstday"`
}

type HolidaysConfig struct {
	Binary string `yaml:"binary"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Hours returns the contracted hours for the given weekday.
func (w WorkdaysConfig) Hours(day time.Weekday) float64 {
	switch day {
	case time.Monday:
		return w.Mo
	case time.Tuesday:
		return w.Di
	case time.Wednesday:
		return w.Mi
	case time.Thursday:
		return w.Do
	case time.Friday:
		return w.Fr
	case time.Saturday:
		return w.Sa
	default:
		return w.So
	}
}

// Total returns the sum of all weekday hours.
func (w WorkdaysConfig) Total() float64 {
	return w.Mo + w.Di + w.Mi + w.Do + w.Fr + w.Sa + w.So
}

// FirstDay parses the onboarding date. The zero time is returned when unset.
func (c *Config) FirstDay() (time.Time, error) {
	if c.Onboarding.FirstDay == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", c.Onboarding.FirstDay, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing onboarding.firstday %q: %w", c.Onboarding.FirstDay, err)
	}
	return t, nil
}

// Validate reports the first required setting that is missing.
func (c *Config) Validate() error {
	if c.General.WeekHours <= 0 {
		return fmt.Errorf("general.weekhours: %w", ErrMissingSetting)
	}
	if c.Onboarding.FirstDay == "" {
		return fmt.Errorf("onboarding.firstday: %w", ErrMissingSetting)
	}
	if _, err := c.FirstDay(); err != nil {
		return err
	}
	return nil
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if len(cfg.Absence) == 0 {
		cfg.Absence = DefaultAbsenceCategories()
	}

	return cfg, nil
}

// ApplyEnv overrides database and logging settings from the environment.
// The report week overrides (WOFA_WEEK, WOFA_YEAR) are read by the CLI.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("WOFA_DATABASE"); v != "" {
		if c.Database.DBMS == "pg" || c.Database.DBMS == "postgres" {
			c.Database.DSN = v
		} else {
			c.Database.Path = v
		}
	}
	if v := getenv("WOFA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// EnvInt reads an integer environment override, returning 0 when unset or invalid.
func EnvInt(getenv func(string) string, key string) int {
	n, err := strconv.Atoi(getenv(key))
	if err != nil {
		return 0
	}
	return n
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := ExpandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return Load(path)
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
