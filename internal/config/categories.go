package config

import "strings"

// Keys of the absence categories the reconciler and calculator treat specially.
const (
	KeyTemp      = "temp"
	KeyHoliday   = "feiertag"
	KeyVacation  = "urlaub"
	KeySick      = "krank"
	KeySickPay   = "krankengeld"
	KeyCarryOver = "zkue"
	KeyPrivate   = "privat"
	KeyDeduction = "zka"
)

// Category describes an absence or bookkeeping project in the time store.
type Category struct {
	Key       string `yaml:"key"`
	Name      string `yaml:"name"`
	ProjectID int64  `yaml:"project_id"`
	Code      string `yaml:"code"`
	Label     string `yaml:"label"`
}

// Bookkeeping reports whether the category adjusts the hours account
// rather than recording worked or absent time.
func (c Category) Bookkeeping() bool {
	return c.Key == KeyCarryOver || c.Key == KeyDeduction
}

// CountsAsWork reports whether time booked on the category is worked time.
func (c Category) CountsAsWork() bool {
	return c.Key == KeyTemp
}

// DefaultAbsenceCategories returns the internal projects of a fresh hamster database.
func DefaultAbsenceCategories() []Category {
	return []Category{
		{Key: KeyTemp, Name: "Temp", ProjectID: 1, Code: "X", Label: "Temp"},
		{Key: KeyHoliday, Name: "Feiertag", ProjectID: 2, Code: "PH", Label: "Feiertag"},
		{Key: KeyVacation, Name: "Urlaub", ProjectID: 3, Code: "VAC", Label: "Urlaub"},
		{Key: KeySick, Name: "Krank", ProjectID: 4, Code: "AU", Label: "AU"},
		{Key: KeySickPay, Name: "Krankengeldbezug", ProjectID: 5, Code: "KG", Label: "Krankengeldbezug"},
		{Key: KeyCarryOver, Name: "Zeitkonto Übertrag vom Vorjahr", ProjectID: 6, Code: "ZKÜ", Label: "Zeitkonto Übertrag"},
		{Key: KeyPrivate, Name: "Privat", ProjectID: 7, Code: "PRIV", Label: "Privat"},
		{Key: KeyDeduction, Name: "Zeitkonto Abzug/Ausgezahlt", ProjectID: 8, Code: "ZKA", Label: "Zeitkonto Abzug"},
	}
}

// DefaultProjectIDs returns the categories whose entries are broken down
// into sub-entries in the report.
func DefaultProjectIDs() map[string]int64 {
	return map[string]int64{
		"Marketing":                          310,
		"Akquise#":                           311,
		"Andere Organisationen":              312,
		"Allgemein und Streut*":              313,
		"Auftrag#":                           320,
		"Organisation":                       321,
		"Sacharbeit abrechenbar":             322,
		"Sacharbeit andere*":                 323,
		"Selbstorganisation":                 330,
		"Qualifikation":                      331,
		"regel. Arbeitsorganisation*":        332,
		"Unterstützung":                      340,
		"Buchhaltung":                        341,
		"IT-Infrastruktur":                   342,
		"Büro":                               343,
		"Personalmarketing und -entwicklung": 344,
		"Organisieren und verbessern*":       345,
		"Leitung":                            350,
		"Menschen fördern":                   351,
		"Unternehmen*":                       352,
	}
}

// Category looks up an absence category by key, code, project name or label.
func (c *Config) Category(name string) (Category, bool) {
	for _, cat := range c.Absence {
		if strings.EqualFold(cat.Key, name) || strings.EqualFold(cat.Code, name) ||
			strings.EqualFold(cat.Name, name) || strings.EqualFold(cat.Label, name) {
			return cat, true
		}
	}
	return Category{}, false
}

// MustCategory is like Category but falls back to the built-in defaults.
func (c *Config) MustCategory(key string) Category {
	if cat, ok := c.Category(key); ok {
		return cat
	}
	for _, cat := range DefaultAbsenceCategories() {
		if cat.Key == key {
			return cat
		}
	}
	return Category{Key: key, Name: key, Label: key}
}

// NonWorkCategories returns the project names whose time does not count
// as worked hours.
func (c *Config) NonWorkCategories() []string {
	var names []string
	for _, cat := range c.Absence {
		if !cat.CountsAsWork() {
			names = append(names, cat.Name)
		}
	}
	return names
}

// UUKCategory reports whether project id is configured for sub-entry breakdown.
func (c *Config) UUKCategory(id int64) bool {
	for _, pid := range c.ProjectIDs {
		if pid == id {
			return true
		}
	}
	return false
}
