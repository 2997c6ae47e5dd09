package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			FullName:    "",
			WeekHours:   40,
			ReportDir:   "~/.local/share/wochenfazit",
			ShowUUK:     true,
			InsertTasks: false,
			Editor:      "",
		},
		Database: DatabaseConfig{
			DBMS:         "sqlite",
			Path:         "~/.local/share/hamster/hamster.db",
			DSN:          "",
			SQLiteDriver: "sqlite3",
			KeywordPlace: "any",
		},
		Workdays: WorkdaysConfig{
			Mo: 8, Di: 8, Mi: 8, Do: 8, Fr: 8, Sa: 0, So: 0,
		},
		Onboarding: OnboardingConfig{
			FirstDay: "",
		},
		ProjectIDs: DefaultProjectIDs(),
		Absence:    DefaultAbsenceCategories(),
		Holidays: HolidaysConfig{
			Binary: "geaCal",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			File:   "",
		},
	}
}
