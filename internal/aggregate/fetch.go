package aggregate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/contracts"
	"github.com/runnerr0/wochenfazit/internal/logging"
	"github.com/runnerr0/wochenfazit/internal/search"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// Query selects the entries of a listing.
type Query struct {
	Expression string
	From       time.Time
	To         time.Time
	// CategoryTotals adds the named categories to the selection.
	CategoryTotals []string
}

// Aggregator reads entries through the time store.
type Aggregator struct {
	store    storage.TimeStore
	resolver *contracts.Resolver
	layout   storage.Layout
	cfg      *config.Config
	log      *slog.Logger
}

// New creates an Aggregator. resolver may be nil when no sub-entry
// breakdown is wanted.
func New(store storage.TimeStore, resolver *contracts.Resolver, layout storage.Layout, cfg *config.Config, log *slog.Logger) *Aggregator {
	if log == nil {
		log = logging.Discard()
	}
	return &Aggregator{store: store, resolver: resolver, layout: layout, cfg: cfg, log: log}
}

// Compile compiles expr for the store's dialect and logs repairs.
func (a *Aggregator) Compile(expr string) search.Fragment {
	frag := search.Compile(expr, a.store.Dialect().Placeholder)
	for _, w := range frag.Warnings {
		a.log.Warn("search expression repaired", "expression", expr, "detail", w)
	}
	return frag
}

func withCategories(expr string, categories []string) string {
	terms := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			terms = append(terms, "C="+Escape(c))
		}
	}
	if len(terms) == 0 {
		return expr
	}
	if strings.TrimSpace(expr) == "" {
		return strings.Join(terms, "|")
	}
	return "(" + expr + ")|" + strings.Join(terms, "|")
}

// Escape protects operator characters of a literal value.
func Escape(value string) string {
	var b strings.Builder
	for _, r := range value {
		if strings.ContainsRune(`()&|!\`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Fetch lists the selected entries. Entries whose description contains a
// sum key (S=value) are merged into one row per key; all others are
// listed individually.
func (a *Aggregator) Fetch(ctx context.Context, q Query) ([]Row, error) {
	frag := a.Compile(withCategories(q.Expression, q.CategoryTotals))

	entries, err := a.store.Entries(ctx, storage.EntryQuery{
		Filter:     frag.SQL,
		FilterArgs: frag.Params,
		From:       q.From,
		To:         q.To,
	})
	if err != nil {
		return nil, err
	}
	return mergeSumKeys(entries, frag.SumKeys), nil
}

func mergeSumKeys(entries []storage.EntryRow, keys []string) []Row {
	var out []Row
	index := make(map[string]int)
	parts := make(map[string][]string)

	for _, e := range entries {
		key := matchingKey(e.Description, keys)
		if key == "" {
			out = append(out, newRow(e))
			continue
		}

		rest := strings.Trim(strings.Replace(e.Description, key, "", 1), " /:-")
		if rest != "" {
			parts[key] = append(parts[key], rest)
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Row{Category: e.Category})
		}
		out[i].absorb(newRow(e))
		out[i].Description = key + ": " + strings.Join(parts[key], "|")
	}
	return out
}

func matchingKey(description string, keys []string) string {
	for _, k := range keys {
		if strings.Contains(description, k) {
			return k
		}
	}
	return ""
}

// Tasks returns the distinct descriptions booked in [from, to] outside
// the absence categories, in order of first appearance.
func (a *Aggregator) Tasks(ctx context.Context, from, to time.Time) ([]string, error) {
	var terms []string
	for _, c := range a.cfg.Absence {
		terms = append(terms, "!C="+Escape(c.Name))
	}
	rows, err := a.Fetch(ctx, Query{Expression: strings.Join(terms, "&"), From: from, To: to})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var tasks []string
	for _, r := range rows {
		if r.Description == "" || seen[r.Description] {
			continue
		}
		seen[r.Description] = true
		tasks = append(tasks, r.Description)
	}
	return tasks, nil
}
