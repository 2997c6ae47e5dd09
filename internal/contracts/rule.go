package contracts

import (
	"regexp"
	"strings"
)

// RuleKind is the positional restriction applied to keyword matches.
type RuleKind int

const (
	Anywhere RuleKind = iota
	Beginning
	End
	Pattern
)

// Rule decides whether a keyword match sits at an acceptable place.
type Rule struct {
	Kind RuleKind
	Raw  string
	re   *regexp.Regexp
	err  error
}

// ParseRule maps the keyword_place setting to a Rule. Unknown values are
// taken as a regular expression over the entry text.
func ParseRule(place string) Rule {
	switch strings.ToLower(strings.TrimSpace(place)) {
	case "", "none", "*", "any", "anywhere":
		return Rule{Kind: Anywhere, Raw: place}
	case "^", "1", "beginning", "first":
		return Rule{Kind: Beginning, Raw: place}
	case "$", "end", "last":
		return Rule{Kind: End, Raw: place}
	}
	re, err := regexp.Compile(place)
	return Rule{Kind: Pattern, Raw: place, re: re, err: err}
}

// Positional reports whether the first qualifying match wins without a choice.
func (r Rule) Positional() bool { return r.Kind != Anywhere }

// Err returns the compile error of an invalid pattern rule.
func (r Rule) Err() error { return r.err }

// allows reports whether keyword may match entry under the rule. An
// invalid pattern allows every match.
func (r Rule) allows(entry, keyword string) bool {
	switch r.Kind {
	case Beginning:
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(entry)), strings.ToLower(keyword))
	case End:
		return strings.HasSuffix(strings.ToLower(strings.TrimSpace(entry)), strings.ToLower(keyword))
	case Pattern:
		if r.re == nil {
			return true
		}
		return r.re.MatchString(entry)
	default:
		return true
	}
}
