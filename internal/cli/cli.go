package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Report          *ReportCommand
	Entries         *EntriesCommand
	Loa             *LoaCommand
	Holidays        *HolidaysCommand
	Contracts       *ContractsCommand
	ContractsList   *ContractsListCommand
	ContractsAdd    *ContractsAddCommand
	ContractsDelete *ContractsDeleteCommand
	Status          *StatusCommand
	Init            *InitCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "wochenfazit"
	parser.LongDescription = "Weekly timesheet summary (Wochenfazit) from a local time-tracking database."

	cmds := &commands{
		Report:          &ReportCommand{globals: &globals, version: version},
		Entries:         &EntriesCommand{globals: &globals, version: version},
		Loa:             &LoaCommand{globals: &globals, version: version},
		Holidays:        &HolidaysCommand{globals: &globals, version: version},
		Contracts:       &ContractsCommand{},
		ContractsList:   &ContractsListCommand{globals: &globals, version: version},
		ContractsAdd:    &ContractsAddCommand{globals: &globals, version: version},
		ContractsDelete: &ContractsDeleteCommand{globals: &globals, version: version},
		Status:          &StatusCommand{globals: &globals, version: version},
		Init:            &InitCommand{globals: &globals, version: version},
	}

	parser.AddCommand("report", "Write the weekly report", "Book holidays, offer entry corrections and write the Wochenfazit of a calendar week.", cmds.Report)
	parser.AddCommand("entries", "List entries", "List entries matching a search expression (&, |, !, parentheses, C=category, S=sum key, * wildcard).", cmds.Entries)
	parser.AddCommand("loa", "Set or delete absence entries", "Set or delete vacation, sick, holiday and hours account entries for a day or range.", cmds.Loa)
	parser.AddCommand("holidays", "Book public holidays", "List the public holidays of a week and the following week and book them.", cmds.Holidays)
	parser.AddCommand("status", "Show database statistics", "Show database statistics and configuration summary.", cmds.Status)
	parser.AddCommand("init", "Create configuration and database", "Ask for missing settings, write the configuration and prepare the database.", cmds.Init)

	contracts, err := parser.AddCommand("contracts", "Maintain contract keywords", "List, add and delete the keywords mapping entry text to contract ids.", cmds.Contracts)
	if err == nil {
		contracts.AddCommand("list", "List contract keywords", "List all contract keywords.", cmds.ContractsList)
		contracts.AddCommand("add", "Add a contract keyword", "Add a keyword: contracts add <keyword> <contract-id> [task...]", cmds.ContractsAdd)
		contracts.AddCommand("delete", "Delete a contract keyword", "Delete a keyword. Destructive operation with safety prompt.", cmds.ContractsDelete)
	}

	return parser, &globals, cmds
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("wochenfazit %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
