package storage

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnknownDialect is returned for an unsupported database.dbms setting.
var ErrUnknownDialect = errors.New("unknown database dialect")

// Dialect selects the SQL flavour of the time store.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// CategoryExpr is the project description with tree glyphs and indentation removed.
const CategoryExpr = "TRIM(REPLACE(REPLACE(p.description, '├─ ', ''), '└─ ', ''))"

// ParseDialect maps a configured dbms name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "pg", "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// Placeholder returns the bind marker for the n-th parameter (1-based).
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Rebind rewrites ? markers into the dialect's placeholder style.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Timestamp renders col as "YYYY-MM-DD HH:MM:SS" text regardless of its column type.
func (d Dialect) Timestamp(col string) string {
	return "substr(CAST(" + col + " AS TEXT), 1, 19)"
}

// DateOf renders the calendar date (leading 10 characters) of col.
func (d Dialect) DateOf(col string) string {
	return "substr(CAST(" + col + " AS TEXT), 1, 10)"
}

// AutoIncrement is the primary key column definition for generated ids.
func (d Dialect) AutoIncrement() string {
	if d == DialectPostgres {
		return "SERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

var pgPlaceholder = regexp.MustCompile(`\$[0-9]+`)

// queryBuilder accumulates SQL text and its arguments, numbering
// placeholders in the order arguments are added.
type queryBuilder struct {
	d    Dialect
	sql  strings.Builder
	args []any
}

func newQueryBuilder(d Dialect) *queryBuilder {
	return &queryBuilder{d: d}
}

func (b *queryBuilder) write(s string) *queryBuilder {
	b.sql.WriteString(s)
	return b
}

// arg appends v and returns its placeholder.
func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

// fragment appends a predicate that was rendered with placeholders
// numbered from 1, renumbering them after the arguments already present.
func (b *queryBuilder) fragment(sqlText string, args []any) {
	if b.d == DialectPostgres && len(b.args) > 0 {
		offset := len(b.args)
		sqlText = pgPlaceholder.ReplaceAllStringFunc(sqlText, func(m string) string {
			n, _ := strconv.Atoi(m[1:])
			return b.d.Placeholder(n + offset)
		})
	}
	b.sql.WriteString(sqlText)
	b.args = append(b.args, args...)
}

func (b *queryBuilder) String() string { return b.sql.String() }
