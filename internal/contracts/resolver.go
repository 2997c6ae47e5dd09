// Package contracts maps free-text entry descriptions to billing contracts.
package contracts

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/runnerr0/wochenfazit/internal/logging"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

// KeywordSource loads the keyword table.
type KeywordSource interface {
	Keywords(ctx context.Context) ([]storage.ContractKeyword, error)
}

// Chooser picks one of several keywords matching an entry. It returns
// the zero-based index of the choice.
type Chooser interface {
	Choose(entry string, candidates []storage.ContractKeyword) (int, error)
}

type compiledKeyword struct {
	storage.ContractKeyword
	word *regexp.Regexp
}

// Resolver resolves entry texts against the keyword table loaded at
// construction.
type Resolver struct {
	keywords []compiledKeyword
	rule     Rule
	chooser  Chooser
	log      *slog.Logger
}

// NewResolver loads all keywords from src. chooser may be nil when the
// rule is positional.
func NewResolver(ctx context.Context, src KeywordSource, rule Rule, chooser Chooser, log *slog.Logger) (*Resolver, error) {
	if log == nil {
		log = logging.Discard()
	}
	rows, err := src.Keywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}
	if rule.Kind == Pattern && rule.Err() != nil {
		log.Warn("invalid keyword_place pattern, every match is accepted", "pattern", rule.Raw, "err", rule.Err())
	}

	r := &Resolver{rule: rule, chooser: chooser, log: log}
	for _, kw := range rows {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw.Keyword) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", kw.Keyword, err)
		}
		r.keywords = append(r.keywords, compiledKeyword{ContractKeyword: kw, word: re})
	}
	return r, nil
}

// Candidates returns every keyword occurring as a whole word in entry
// that the positional rule accepts, in table order.
func (r *Resolver) Candidates(entry string) []storage.ContractKeyword {
	var out []storage.ContractKeyword
	for _, kw := range r.keywords {
		if !kw.word.MatchString(entry) {
			continue
		}
		if !r.rule.allows(entry, kw.Keyword) {
			continue
		}
		out = append(out, kw.ContractKeyword)
	}
	return out
}

// Resolve returns the keyword entry belongs to, or nil when none matches.
// Under a positional rule the first candidate wins; otherwise several
// candidates are handed to the Chooser.
func (r *Resolver) Resolve(entry string) (*storage.ContractKeyword, error) {
	candidates := r.Candidates(entry)
	switch {
	case len(candidates) == 0:
		return nil, nil
	case len(candidates) == 1 || r.rule.Positional():
		return &candidates[0], nil
	}

	if r.chooser == nil {
		return nil, fmt.Errorf("entry %q matches %d keywords and no chooser is configured", entry, len(candidates))
	}
	idx, err := r.chooser.Choose(entry, candidates)
	if err != nil {
		return nil, fmt.Errorf("choose keyword for %q: %w", entry, err)
	}
	if idx < 0 || idx >= len(candidates) {
		return nil, fmt.Errorf("choose keyword for %q: index %d out of range 1..%d", entry, idx+1, len(candidates))
	}
	r.log.Debug("keyword chosen", "entry", entry, "keyword", candidates[idx].Keyword)
	return &candidates[idx], nil
}
