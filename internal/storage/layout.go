package storage

import (
	"context"
	"fmt"
	"strings"
)

// Layout identifies how the projects table marks sub-categories.
type Layout int

const (
	// LayoutFlat has no sub-category markers.
	LayoutFlat Layout = iota
	// LayoutTree prefixes sub-categories with "├─ " or "└─ ".
	LayoutTree
	// LayoutIndented prefixes sub-categories with two spaces.
	LayoutIndented
)

func (l Layout) String() string {
	switch l {
	case LayoutTree:
		return "tree"
	case LayoutIndented:
		return "indented"
	default:
		return "flat"
	}
}

// Normalize strips the layout's sub-category marker from a project
// description and reports whether the project is a sub-category.
func (l Layout) Normalize(description string) (string, bool) {
	switch l {
	case LayoutTree:
		for _, glyph := range []string{"├─", "└─"} {
			if rest, ok := strings.CutPrefix(description, glyph); ok {
				return strings.TrimSpace(rest), true
			}
		}
	case LayoutIndented:
		if strings.HasPrefix(description, "  ") {
			return strings.TrimSpace(description), true
		}
	}
	return strings.TrimSpace(description), false
}

const probeLayoutSQL = `
	SELECT
		COALESCE(SUM(CASE WHEN description LIKE '├─%' OR description LIKE '└─%' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN description LIKE '  %' THEN 1 ELSE 0 END), 0)
	FROM projects
`

// ProbeLayout inspects the projects table once to decide its layout.
func (s *SQLStore) ProbeLayout(ctx context.Context) (Layout, error) {
	var glyphs, indented int64
	if err := s.q.QueryRowContext(ctx, probeLayoutSQL).Scan(&glyphs, &indented); err != nil {
		return LayoutFlat, fmt.Errorf("probe project layout: %w", err)
	}
	switch {
	case glyphs > 0:
		return LayoutTree, nil
	case indented > 0:
		return LayoutIndented, nil
	default:
		return LayoutFlat, nil
	}
}
