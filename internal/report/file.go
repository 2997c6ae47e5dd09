package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/overtime"
)

// Path returns <dir>/<YYYY>/KW<WW>.txt.
func Path(dir string, w overtime.Week) (string, error) {
	dir, err := config.ExpandPath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%d", w.Year), fmt.Sprintf("KW%02d.txt", w.Number)), nil
}

// Write stores content at path, creating parent directories.
func Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
