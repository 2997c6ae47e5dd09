package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" short:"v" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// WeekFlags select a calendar week. Zero values fall back to WOFA_WEEK,
// WOFA_YEAR and then the current week.
type WeekFlags struct {
	Week int `long:"week" short:"w" description:"Calendar week (KW)"`
	Year int `long:"year" short:"y" description:"Year of the calendar week"`
}

// ReportCommand: build the Wochenfazit of a week.
type ReportCommand struct {
	WeekFlags
	Edit      bool `long:"edit" short:"e" description:"Open the written report in $EDITOR"`
	DryRun    bool `long:"dry-run" description:"Print the report without writing it"`
	Force     bool `long:"force" description:"Overwrite an existing report without asking"`
	NoSync    bool `long:"no-sync" description:"Do not book public holidays before the report"`
	NoCorrect bool `long:"no-correct" description:"Do not offer corrections for entries without contract"`

	globals *GlobalFlags
	version string
}

// EntriesCommand: list entries matching a search expression.
type EntriesCommand struct {
	WeekFlags
	From   string   `long:"from" description:"First day (YYYY-MM-DD), overrides the week"`
	To     string   `long:"to" description:"Last day (YYYY-MM-DD), defaults to --from"`
	Sum    bool     `long:"sum" short:"s" description:"Merge entries with identical text"`
	Totals []string `long:"totals" short:"t" description:"Add a category and list category, time and text only (repeatable)"`
	Tasks  bool     `long:"tasks" description:"List the distinct tasks of the range"`

	globals *GlobalFlags
	version string
}

// LoaCommand: set or delete leave-of-absence entries.
type LoaCommand struct {
	Category string `long:"category" short:"c" description:"Absence category (name, key or code)" required:"yes"`
	From     string `long:"from" description:"First day (YYYY-MM-DD)" required:"yes"`
	To       string `long:"to" description:"Last day (YYYY-MM-DD), defaults to --from"`
	Delete   bool   `long:"delete" short:"d" description:"Delete instead of set"`
	Hours    string `long:"hours" description:"Hours as H:MM, for account bookings (ZKÜ, ZKA)"`
	DryRun   bool   `long:"dry-run" description:"Show the planned changes without writing"`

	globals *GlobalFlags
	version string
}

// HolidaysCommand: list and book the public holidays of a week and the next.
type HolidaysCommand struct {
	WeekFlags
	DryRun bool `long:"dry-run" description:"List the holidays without booking them"`

	globals *GlobalFlags
	version string
}

// ContractsCommand groups the keyword maintenance subcommands.
type ContractsCommand struct{}

// ContractsListCommand: list contract keywords.
type ContractsListCommand struct {
	globals *GlobalFlags
	version string
}

// ContractsAddCommand: map a keyword to a contract id.
type ContractsAddCommand struct {
	globals *GlobalFlags
	version string
}

// ContractsDeleteCommand: delete a keyword with safety confirmation.
type ContractsDeleteCommand struct {
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
}

// StatusCommand: show database statistics and configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// InitCommand: write the configuration and prepare the database.
type InitCommand struct {
	globals *GlobalFlags
	version string
}
