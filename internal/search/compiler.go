// Package search compiles the entry filter language into SQL predicates.
//
// Operands are bare values matched against the entry description,
// C=value matched against the project category, and S=value which marks
// a sum key for the aggregator and does not filter. A * inside a value
// becomes a LIKE wildcard. Operators are ! (not), & (and), | (or) and
// parentheses; a backslash escapes the following character.
package search

import (
	"fmt"
	"strings"

	"github.com/runnerr0/wochenfazit/internal/storage"
)

// Placeholder renders the bind marker of the n-th parameter (1-based).
type Placeholder func(n int) string

// QuestionMark is the positional placeholder style of sqlite.
func QuestionMark(int) string { return "?" }

// DefaultTextColumn is the column bare operands are matched against.
const DefaultTextColumn = "e.description"

// Fragment is a compiled filter.
type Fragment struct {
	SQL      string
	Params   []any
	SumKeys  []string
	Warnings []string
}

// Empty reports whether the fragment places no restriction on the query.
func (f Fragment) Empty() bool { return f.SQL == "" }

// Options configures the columns operands are matched against.
type Options struct {
	Placeholder    Placeholder
	TextColumn     string
	CategoryColumn string
}

// Compile translates expr using the default columns.
func Compile(expr string, ph Placeholder) Fragment {
	return Options{Placeholder: ph}.Compile(expr)
}

// Compile translates expr into an SQL fragment. Malformed input never
// fails: unbalanced parentheses are repaired and operators lacking
// operands are dropped, each reported in Fragment.Warnings.
func (o Options) Compile(expr string) Fragment {
	c := &compiler{opts: o.withDefaults()}
	tokens := tokenize(expr)
	if len(tokens) == 0 {
		return Fragment{}
	}
	tokens = c.repairParens(tokens)
	root := c.eval(toPostfix(tokens))

	return Fragment{
		SQL:      stripOuterParens(root.sql),
		Params:   root.params,
		SumKeys:  c.sumKeys,
		Warnings: c.warnings,
	}
}

func (o Options) withDefaults() Options {
	if o.Placeholder == nil {
		o.Placeholder = QuestionMark
	}
	if o.TextColumn == "" {
		o.TextColumn = DefaultTextColumn
	}
	if o.CategoryColumn == "" {
		o.CategoryColumn = storage.CategoryExpr
	}
	return o
}

type compiler struct {
	opts     Options
	n        int
	sumKeys  []string
	warnings []string
}

func (c *compiler) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func isOperator(tok string) bool {
	return tok == "!" || tok == "&" || tok == "|"
}

var precedence = map[string]int{"!": 3, "&": 2, "|": 1}

// tokenize splits on operators and parentheses. Escape sequences stay
// inside the operand they belong to.
func tokenize(s string) []string {
	var (
		tokens []string
		buf    strings.Builder
	)
	flush := func() {
		if tok := strings.TrimSpace(buf.String()); tok != "" {
			tokens = append(tokens, tok)
		}
		buf.Reset()
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes):
			buf.WriteRune(r)
			buf.WriteRune(runes[i+1])
			i++
		case strings.ContainsRune("()&|!", r):
			flush()
			tokens = append(tokens, string(r))
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// repairParens drops closing parentheses without a partner and closes
// groups left open at the end.
func (c *compiler) repairParens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	depth := 0
	for _, tok := range tokens {
		switch tok {
		case "(":
			depth++
		case ")":
			if depth == 0 {
				c.warnf("dropped unmatched ')'")
				continue
			}
			depth--
		}
		out = append(out, tok)
	}
	if depth > 0 {
		c.warnf("closed %d unterminated group(s)", depth)
	}
	for ; depth > 0; depth-- {
		out = append(out, ")")
	}
	return out
}

// toPostfix is a shunting-yard conversion honouring ! > & > |.
func toPostfix(tokens []string) []string {
	var out, ops []string
	for _, tok := range tokens {
		switch {
		case tok == "(":
			ops = append(ops, tok)
		case tok == ")":
			for len(ops) > 0 && ops[len(ops)-1] != "(" {
				out = append(out, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			if len(ops) > 0 {
				ops = ops[:len(ops)-1]
			}
		case tok == "!":
			ops = append(ops, tok)
		case isOperator(tok):
			for len(ops) > 0 && isOperator(ops[len(ops)-1]) && precedence[ops[len(ops)-1]] >= precedence[tok] {
				out = append(out, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)
		default:
			out = append(out, tok)
		}
	}
	for len(ops) > 0 {
		if top := ops[len(ops)-1]; top != "(" {
			out = append(out, top)
		}
		ops = ops[:len(ops)-1]
	}
	return out
}

// node is a compiled sub-expression. An empty sql marks an operand that
// places no restriction (a sum key).
type node struct {
	sql    string
	params []any
}

func (c *compiler) eval(postfix []string) node {
	var stack []node
	pop := func() node {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return n
	}

	for _, tok := range postfix {
		switch tok {
		case "!":
			if len(stack) < 1 {
				c.warnf("dropped '!' without operand")
				continue
			}
			a := pop()
			if a.sql != "" {
				a.sql = "NOT (" + stripOuterParens(a.sql) + ")"
			}
			stack = append(stack, a)
		case "&", "|":
			if len(stack) < 2 {
				c.warnf("dropped '%s' without two operands", tok)
				continue
			}
			b, a := pop(), pop()
			stack = append(stack, combine(a, b, tok))
		default:
			stack = append(stack, c.operand(tok))
		}
	}

	if len(stack) == 0 {
		return node{}
	}
	root := stack[0]
	if len(stack) > 1 {
		c.warnf("joined %d operands without operator using '&'", len(stack))
		for _, n := range stack[1:] {
			root = combine(root, n, "&")
		}
	}
	return root
}

func combine(a, b node, op string) node {
	switch {
	case a.sql == "":
		return b
	case b.sql == "":
		return a
	}
	joiner := " AND "
	if op == "|" {
		joiner = " OR "
	}
	params := make([]any, 0, len(a.params)+len(b.params))
	params = append(params, a.params...)
	params = append(params, b.params...)
	return node{sql: "(" + a.sql + joiner + b.sql + ")", params: params}
}

func (c *compiler) operand(tok string) node {
	col := c.opts.TextColumn
	value := tok
	switch {
	case strings.HasPrefix(tok, "C="):
		col = c.opts.CategoryColumn
		value = tok[2:]
	case strings.HasPrefix(tok, "S="):
		if key := strings.Trim(unescape(tok[2:]), "*"); key != "" {
			c.sumKeys = append(c.sumKeys, key)
		}
		return node{}
	}

	value = unescape(value)
	c.n++
	ph := c.opts.Placeholder(c.n)
	if strings.Contains(value, "*") {
		return node{sql: col + " LIKE " + ph, params: []any{strings.ReplaceAll(value, "*", "%")}}
	}
	return node{sql: col + " = " + ph, params: []any{value}}
}

// unescape removes the backslash of every escape sequence, so \! is a literal !.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// stripOuterParens removes parentheses enclosing the whole fragment.
func stripOuterParens(s string) string {
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && closingOf(s, 0) == len(s)-1 {
		s = s[1 : len(s)-1]
	}
	return s
}

// closingOf returns the index of the parenthesis closing the one at open.
func closingOf(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
