package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string             `json:"version"`
	ConfigPath        string             `json:"config_path"`
	DBMS              string             `json:"dbms"`
	DatabasePath      string             `json:"database_path,omitempty"`
	DatabaseSizeBytes int64              `json:"database_size_bytes,omitempty"`
	Layout            string             `json:"layout"`
	TotalEntries      int64              `json:"total_entries"`
	TotalProjects     int64              `json:"total_projects"`
	TotalKeywords     int64              `json:"total_keywords"`
	OldestEntry       string             `json:"oldest_entry,omitempty"`
	NewestEntry       string             `json:"newest_entry,omitempty"`
	WeekHours         float64            `json:"week_hours"`
	FirstDay          string             `json:"first_day,omitempty"`
	TopProjects       []projectCountJSON `json:"top_projects"`
}

type projectCountJSON struct {
	Project string `json:"project"`
	Count   int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	ctx := context.Background()
	sess, cleanup, err := openSession(ctx, c.globals)
	if err != nil {
		return err
	}
	defer cleanup()

	return c.run(ctx, sess)
}

// run prints statistics of the session's store.
func (c *StatusCommand) run(ctx context.Context, sess *session) error {
	stats, err := sess.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	layout, err := sess.store.ProbeLayout(ctx)
	if err != nil {
		return fmt.Errorf("probe project layout: %w", err)
	}

	var dbPath string
	var dbSize int64
	if sess.store.Dialect() == storage.DialectSQLite {
		dbPath, _ = config.ExpandPath(sess.cfg.Database.Path)
		dbSize = getDatabaseSize(dbPath)
	}

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(sess, stats, layout, dbPath, dbSize)
	}
	return c.printStatusHuman(sess, stats, layout, dbPath, dbSize)
}

func (c *StatusCommand) printStatusHuman(sess *session, stats *storage.Stats, layout storage.Layout, dbPath string, dbSize int64) error {
	fmt.Println("Wochenfazit Status")
	fmt.Println("==================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Config:        %s\n", sess.cfgPath)
	if dbPath != "" {
		fmt.Printf("Database:      %s (%s, %s)\n", dbPath, sess.store.Dialect(), formatBytes(dbSize))
	} else {
		fmt.Printf("Database:      %s\n", sess.store.Dialect())
	}
	fmt.Printf("Layout:        %s\n", layout)
	fmt.Printf("Entries:       %s\n", formatNumber(stats.TotalEntries))
	fmt.Printf("Projects:      %s\n", formatNumber(stats.TotalProjects))
	fmt.Printf("Keywords:      %s\n", formatNumber(stats.TotalKeywords))

	// Time range
	if stats.TotalEntries > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestEntry.Format("2006-01-02"))
		fmt.Printf("Newest:        %s\n", stats.NewestEntry.Format("2006-01-02"))
	}

	fmt.Printf("Week hours:    %g\n", sess.cfg.General.WeekHours)
	if sess.cfg.Onboarding.FirstDay != "" {
		fmt.Printf("First day:     %s\n", sess.cfg.Onboarding.FirstDay)
	} else {
		fmt.Println("First day:     not set")
	}

	// Top projects
	if len(stats.TopProjects) > 0 {
		fmt.Println()
		fmt.Println("Top Projects:")
		for _, p := range stats.TopProjects {
			fmt.Printf("  %-30s %s\n", p.Project, formatNumber(p.Count))
		}
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(sess *session, stats *storage.Stats, layout storage.Layout, dbPath string, dbSize int64) error {
	out := statusJSON{
		Version:           c.version,
		ConfigPath:        sess.cfgPath,
		DBMS:              sess.store.Dialect().String(),
		DatabasePath:      dbPath,
		DatabaseSizeBytes: dbSize,
		Layout:            layout.String(),
		TotalEntries:      stats.TotalEntries,
		TotalProjects:     stats.TotalProjects,
		TotalKeywords:     stats.TotalKeywords,
		WeekHours:         sess.cfg.General.WeekHours,
		FirstDay:          sess.cfg.Onboarding.FirstDay,
		TopProjects:       make([]projectCountJSON, len(stats.TopProjects)),
	}

	if stats.TotalEntries > 0 {
		out.OldestEntry = stats.OldestEntry.Format(time.RFC3339)
		out.NewestEntry = stats.NewestEntry.Format(time.RFC3339)
	}

	for i, p := range stats.TopProjects {
		out.TopProjects[i] = projectCountJSON{Project: p.Project, Count: p.Count}
	}

	return printJSON(out)
}

// getDatabaseSize returns the database file size in bytes, 0 when the
// file cannot be read.
func getDatabaseSize(dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}
	return 0
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with dot separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
		if len(s) > remainder {
			result.WriteString(".")
		}
	}
	for i := remainder; i < len(s); i += 3 {
		if i > remainder {
			result.WriteString(".")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
