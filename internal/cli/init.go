package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/prompt"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// Execute implements the go-flags Commander interface for InitCommand.
func (c *InitCommand) Execute(args []string) error {
	cfg, path, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	return c.run(context.Background(), cfg, path, prompt.New(os.Stdin, os.Stdout))
}

// run completes the configuration, saves it and opens the database once
// so migrations run.
func (c *InitCommand) run(ctx context.Context, cfg *config.Config, path string, p *prompt.Prompter) error {
	if _, err := p.FillConfig(cfg); err != nil {
		return err
	}
	if cfg.General.FullName == "" {
		name, err := p.Text("Name im Bericht: ")
		if err != nil {
			return err
		}
		cfg.General.FullName = name
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	store, db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	layout, err := store.ProbeLayout(ctx)
	if err != nil {
		return fmt.Errorf("probe project layout: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{"config_path": path, "dbms": store.Dialect().String(), "layout": layout.String()})
	}
	fmt.Printf("Config:        %s\n", path)
	fmt.Printf("Database:      %s (%s)\n", store.Dialect(), layout)
	return nil
}
