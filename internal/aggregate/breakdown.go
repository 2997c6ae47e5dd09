package aggregate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/wochenfazit/internal/contracts"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// Entry is a line of the category breakdown. Top-level entries are
// categories whose SubEntries are sub-categories; those in turn carry
// the per-contract breakdown (UUK) of their entries.
type Entry struct {
	Description string  `json:"description"`
	ProjectID   int64   `json:"project_id,omitempty"`
	Seconds     int64   `json:"seconds"`
	Task        string  `json:"task,omitempty"`
	ContractID  string  `json:"contract_id,omitempty"`
	SubEntries  []Entry `json:"sub_entries,omitempty"`
}

// Merge combines entries sharing a description. Time adds up, task and
// contract id come from the first entry, sub-entries are concatenated.
func Merge(entries []Entry) []Entry {
	var out []Entry
	index := make(map[string]int)
	for _, e := range entries {
		if i, ok := index[e.Description]; ok {
			out[i].Seconds += e.Seconds
			out[i].SubEntries = append(out[i].SubEntries, e.SubEntries...)
			continue
		}
		index[e.Description] = len(out)
		out = append(out, e)
	}
	return out
}

// Breakdown sums worked time per category for [from, to]. Absence
// categories are left out; categories without time are dropped.
func (a *Aggregator) Breakdown(ctx context.Context, from, to time.Time) ([]Entry, error) {
	totals, err := a.store.ProjectTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	absent := make(map[int64]bool)
	for _, c := range a.cfg.Absence {
		if !c.CountsAsWork() {
			absent[c.ProjectID] = true
		}
	}

	var groups []Entry
	for _, pt := range totals {
		if absent[pt.ID] {
			continue
		}
		name, sub := a.layout.Normalize(pt.Description)
		e := Entry{Description: name, ProjectID: pt.ID, Seconds: pt.Seconds}
		if pt.Seconds > 0 && a.cfg.General.ShowUUK && a.cfg.UUKCategory(pt.ID) {
			if e.SubEntries, err = a.uuk(ctx, pt.ID, from, to); err != nil {
				return nil, err
			}
		}

		if sub && len(groups) > 0 {
			parent := &groups[len(groups)-1]
			parent.SubEntries = append(parent.SubEntries, e)
			parent.Seconds += e.Seconds
			continue
		}
		groups = append(groups, e)
	}

	var out []Entry
	for _, g := range groups {
		if g.Seconds == 0 {
			continue
		}
		g.SubEntries = dropEmpty(Merge(g.SubEntries))
		out = append(out, g)
	}
	return Merge(out), nil
}

func dropEmpty(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Seconds > 0 {
			out = append(out, e)
		}
	}
	return out
}

// uuk breaks the entries of one category down by contract. Entries
// resolving to the same contract are summed under "keyword task #id";
// the rest are summed per description.
func (a *Aggregator) uuk(ctx context.Context, projectID int64, from, to time.Time) ([]Entry, error) {
	rows, err := a.store.CategoryEntries(ctx, projectID, from, to)
	if err != nil {
		return nil, err
	}

	var out []Entry
	byContract := make(map[string]int)
	byText := make(map[string]int)
	for _, r := range rows {
		secs := seconds(r.TimeEntry)

		var kw *storage.ContractKeyword
		if a.resolver != nil {
			if kw, err = a.resolver.Resolve(r.Description); err != nil {
				return nil, err
			}
		}
		if kw != nil {
			if i, ok := byContract[kw.ContractID]; ok {
				out[i].Seconds += secs
				continue
			}
			byContract[kw.ContractID] = len(out)
			out = append(out, Entry{
				Description: strings.TrimSpace(fmt.Sprintf("%s %s %s", kw.Keyword, kw.Task, kw.ContractID)),
				Seconds:     secs,
				Task:        kw.Task,
				ContractID:  kw.ContractID,
			})
			continue
		}

		key := strings.ToLower(r.Description)
		if i, ok := byText[key]; ok {
			out[i].Seconds += secs
			continue
		}
		byText[key] = len(out)
		e := Entry{Description: r.Description, Seconds: secs}
		if contracts.HasContractSuffix(r.Description) {
			e.ContractID = r.Description[strings.LastIndex(r.Description, "#"):]
		}
		out = append(out, e)
	}
	return out, nil
}

// Correction proposes rewriting entries whose description resolves to
// no contract.
type Correction struct {
	Description string
	Category    string
	From        time.Time
	To          time.Time
}

// Corrections lists the distinct descriptions in sub-entry categories
// that neither match a keyword nor carry a #<contract> suffix.
func (a *Aggregator) Corrections(ctx context.Context, from, to time.Time) ([]Correction, error) {
	if a.resolver == nil {
		return nil, nil
	}
	projects, err := a.store.ProjectTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var out []Correction
	seen := make(map[string]bool)
	for _, p := range projects {
		if p.Seconds == 0 || !a.cfg.UUKCategory(p.ID) {
			continue
		}
		rows, err := a.store.CategoryEntries(ctx, p.ID, from, to)
		if err != nil {
			return nil, err
		}
		name, _ := a.layout.Normalize(p.Description)
		for _, r := range rows {
			if seen[r.Description] || contracts.HasContractSuffix(r.Description) {
				continue
			}
			if len(a.resolver.Candidates(r.Description)) > 0 {
				continue
			}
			seen[r.Description] = true
			out = append(out, Correction{Description: r.Description, Category: name, From: from, To: to})
		}
	}
	return out, nil
}

// ApplyCorrection rewrites the entries named by c to newDescription.
func (a *Aggregator) ApplyCorrection(ctx context.Context, c Correction, newDescription string) (int64, error) {
	newDescription = strings.TrimSpace(newDescription)
	if newDescription == "" || newDescription == c.Description {
		return 0, nil
	}
	n, err := a.store.RenameEntries(ctx, c.Description, newDescription, c.From, c.To)
	if err != nil {
		return 0, err
	}
	a.log.Info("entries corrected", "from", c.Description, "to", newDescription, "count", n)
	return n, nil
}
