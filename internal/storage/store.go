package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// TimeStore defines the time-tracking data operations the report needs.
type TimeStore interface {
	Dialect() Dialect
	Entries(ctx context.Context, q EntryQuery) ([]EntryRow, error)
	CategoryEntries(ctx context.Context, projectID int64, from, to time.Time) ([]EntryRow, error)
	ProjectTotals(ctx context.Context, from, to time.Time) ([]ProjectTotal, error)
	DaySeconds(ctx context.Context, from, to time.Time) ([]DaySeconds, error)
	FindEntryOn(ctx context.Context, day time.Time, projectID int64) (*TimeEntry, error)
	InsertEntry(ctx context.Context, e *TimeEntry) error
	UpdateEntry(ctx context.Context, e *TimeEntry) error
	DeleteEntry(ctx context.Context, id int64) error
	RenameEntries(ctx context.Context, oldDesc, newDesc string, from, to time.Time) (int64, error)
	Keywords(ctx context.Context) ([]ContractKeyword, error)
	AddKeyword(ctx context.Context, kw *ContractKeyword) (bool, error)
	DeleteKeyword(ctx context.Context, keyword string) (int64, error)
	ProbeLayout(ctx context.Context) (Layout, error)
	Stats(ctx context.Context) (*Stats, error)
	WithTx(ctx context.Context, fn func(TimeStore) error) error
	Close() error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore implements TimeStore for every supported dialect.
type SQLStore struct {
	db      *sql.DB
	q       querier
	dialect Dialect
}

// NewSQLStore creates a store on an already-opened and migrated database.
func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, q: db, dialect: d}
}

// Dialect returns the SQL dialect of the store.
func (s *SQLStore) Dialect() Dialect { return s.dialect }

// DB exposes the underlying connection pool.
func (s *SQLStore) DB() *sql.DB { return s.db }

const insertKeywordSQL = `
	INSERT INTO contracts (keyword, contract_id, task)
	SELECT CAST(? AS TEXT), CAST(? AS TEXT), CAST(? AS TEXT)
	WHERE NOT EXISTS (SELECT 1 FROM contracts WHERE keyword = ? AND contract_id = ?)
`

func (s *SQLStore) entryColumns() string {
	d := s.dialect
	return "e.id, e.project_id, " + CategoryExpr + ", " +
		d.Timestamp("e.start_time") + ", " + d.Timestamp("e.stop_time") + ", e.description"
}

// Entries returns entries joined with their projects, ordered by start time.
func (s *SQLStore) Entries(ctx context.Context, q EntryQuery) ([]EntryRow, error) {
	b := newQueryBuilder(s.dialect)
	b.write("SELECT " + s.entryColumns() + " FROM entries e JOIN projects p ON p.id = e.project_id")

	where := " WHERE "
	if q.Filter != "" {
		b.write(where + "(")
		b.fragment(q.Filter, q.FilterArgs)
		b.write(")")
		where = " AND "
	}
	if !q.From.IsZero() {
		b.write(where + s.dialect.DateOf("e.start_time") + " >= " + b.arg(FormatDate(q.From)))
		where = " AND "
	}
	if !q.To.IsZero() {
		b.write(where + s.dialect.DateOf("e.start_time") + " <= " + b.arg(FormatDate(q.To)))
	}
	b.write(" ORDER BY e.start_time, e.id")

	return s.scanEntryRows(ctx, b.String(), b.args...)
}

// CategoryEntries returns the entries of one project within [from, to] by date.
func (s *SQLStore) CategoryEntries(ctx context.Context, projectID int64, from, to time.Time) ([]EntryRow, error) {
	d := s.dialect
	query := d.Rebind("SELECT " + s.entryColumns() + `
		FROM entries e JOIN projects p ON p.id = e.project_id
		WHERE e.project_id = ? AND ` + d.DateOf("e.start_time") + " BETWEEN ? AND ?" + `
		ORDER BY e.start_time, e.id`)
	return s.scanEntryRows(ctx, query, projectID, FormatDate(from), FormatDate(to))
}

func (s *SQLStore) scanEntryRows(ctx context.Context, query string, args ...any) ([]EntryRow, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		var (
			r           EntryRow
			start, stop sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Category, &start, &stop, &r.Description); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if err := r.setTimes(start, stop); err != nil {
			return nil, fmt.Errorf("entry %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (e *TimeEntry) setTimes(start, stop sql.NullString) error {
	var err error
	e.Start, err = ParseTime(start.String)
	if err != nil {
		return err
	}
	if !stop.Valid || stop.String == "" {
		e.Stop = e.Start
		return nil
	}
	e.Stop, err = ParseTime(stop.String)
	return err
}

// ProjectTotals returns every project with the seconds booked on it within
// [from, to], ordered by project id.
func (s *SQLStore) ProjectTotals(ctx context.Context, from, to time.Time) ([]ProjectTotal, error) {
	d := s.dialect
	query := d.Rebind(`
		SELECT p.id, COALESCE(CAST(p.key AS TEXT), ''), p.description,
		       ` + d.Timestamp("e.start_time") + `, ` + d.Timestamp("e.stop_time") + `
		FROM projects p
		LEFT JOIN entries e ON e.project_id = p.id
		  AND ` + d.DateOf("e.start_time") + ` BETWEEN ? AND ?
		ORDER BY p.id`)

	rows, err := s.q.QueryContext(ctx, query, FormatDate(from), FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("query project totals: %w", err)
	}
	defer rows.Close()

	var out []ProjectTotal
	for rows.Next() {
		var (
			p           Project
			start, stop sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Key, &p.Description, &start, &stop); err != nil {
			return nil, fmt.Errorf("scan project total: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].ID != p.ID {
			p.Active = true
			out = append(out, ProjectTotal{Project: p})
		}
		if !start.Valid {
			continue
		}
		var e TimeEntry
		if err := e.setTimes(start, stop); err != nil {
			return nil, fmt.Errorf("project %d: %w", p.ID, err)
		}
		out[len(out)-1].Seconds += int64(e.Duration() / time.Second)
	}
	return out, rows.Err()
}

// DaySeconds returns the booked seconds and entry counts per day and
// project within [from, to], ordered by day and project id.
func (s *SQLStore) DaySeconds(ctx context.Context, from, to time.Time) ([]DaySeconds, error) {
	rows, err := s.Entries(ctx, EntryQuery{From: from, To: to})
	if err != nil {
		return nil, err
	}

	type key struct {
		day string
		pid int64
	}
	acc := make(map[key]*DaySeconds)
	for _, r := range rows {
		k := key{FormatDate(r.Start), r.ProjectID}
		ds, ok := acc[k]
		if !ok {
			ds = &DaySeconds{Day: k.day, ProjectID: k.pid, Category: r.Category}
			acc[k] = ds
		}
		ds.Seconds += int64(r.Duration() / time.Second)
		ds.Entries++
	}

	out := make([]DaySeconds, 0, len(acc))
	for _, ds := range acc {
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out, nil
}

// FindEntryOn returns the first entry of a project starting on the given day.
func (s *SQLStore) FindEntryOn(ctx context.Context, day time.Time, projectID int64) (*TimeEntry, error) {
	d := s.dialect
	query := d.Rebind(`
		SELECT e.id, e.project_id, ` + d.Timestamp("e.start_time") + `, ` + d.Timestamp("e.stop_time") + `, e.description
		FROM entries e
		WHERE ` + d.DateOf("e.start_time") + ` = ? AND e.project_id = ?
		ORDER BY e.id
		LIMIT 1`)

	var (
		e           TimeEntry
		start, stop sql.NullString
	)
	err := s.q.QueryRowContext(ctx, query, FormatDate(day), projectID).
		Scan(&e.ID, &e.ProjectID, &start, &stop, &e.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find entry on %s: %w", FormatDate(day), err)
	}
	if err := e.setTimes(start, stop); err != nil {
		return nil, fmt.Errorf("entry %d: %w", e.ID, err)
	}
	return &e, nil
}

// InsertEntry stores e and sets its generated ID.
func (s *SQLStore) InsertEntry(ctx context.Context, e *TimeEntry) error {
	if e.Stop.Before(e.Start) {
		return fmt.Errorf("insert entry: stop %s before start %s", FormatTime(e.Stop), FormatTime(e.Start))
	}
	query := s.dialect.Rebind(`
		INSERT INTO entries (project_id, start_time, stop_time, description)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	err := s.q.QueryRowContext(ctx, query, e.ProjectID, FormatTime(e.Start), FormatTime(e.Stop), e.Description).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// UpdateEntry rewrites start, stop and description of an existing entry.
func (s *SQLStore) UpdateEntry(ctx context.Context, e *TimeEntry) error {
	if e.Stop.Before(e.Start) {
		return fmt.Errorf("update entry %d: stop before start", e.ID)
	}
	query := s.dialect.Rebind(`UPDATE entries SET start_time = ?, stop_time = ?, description = ? WHERE id = ?`)
	res, err := s.q.ExecContext(ctx, query, FormatTime(e.Start), FormatTime(e.Stop), e.Description, e.ID)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entry %d: %w", e.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update entry %d: %w", e.ID, ErrNotFound)
	}
	return nil
}

// DeleteEntry removes an entry by id.
func (s *SQLStore) DeleteEntry(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, s.dialect.Rebind("DELETE FROM entries WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// RenameEntries replaces the description of every entry that carries
// exactly oldDesc and starts within [from, to].
func (s *SQLStore) RenameEntries(ctx context.Context, oldDesc, newDesc string, from, to time.Time) (int64, error) {
	d := s.dialect
	query := d.Rebind(`UPDATE entries SET description = ?
		WHERE description = ? AND ` + d.DateOf("start_time") + ` BETWEEN ? AND ?`)
	res, err := s.q.ExecContext(ctx, query, newDesc, oldDesc, FormatDate(from), FormatDate(to))
	if err != nil {
		return 0, fmt.Errorf("rename entries %q: %w", oldDesc, err)
	}
	return res.RowsAffected()
}

// Keywords returns all contract keywords ordered by id.
func (s *SQLStore) Keywords(ctx context.Context) ([]ContractKeyword, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id, keyword, contract_id, task FROM contracts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	defer rows.Close()

	var out []ContractKeyword
	for rows.Next() {
		var kw ContractKeyword
		if err := rows.Scan(&kw.ID, &kw.Keyword, &kw.ContractID, &kw.Task); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		out = append(out, kw)
	}
	return out, rows.Err()
}

// AddKeyword inserts kw unless the (keyword, contract_id) pair exists.
// It reports whether a row was added.
func (s *SQLStore) AddKeyword(ctx context.Context, kw *ContractKeyword) (bool, error) {
	res, err := s.q.ExecContext(ctx, s.dialect.Rebind(insertKeywordSQL),
		kw.Keyword, kw.ContractID, kw.Task, kw.Keyword, kw.ContractID)
	if err != nil {
		return false, fmt.Errorf("add keyword %q: %w", kw.Keyword, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add keyword %q: %w", kw.Keyword, err)
	}
	return n > 0, nil
}

// DeleteKeyword removes every row for keyword and returns the count removed.
func (s *SQLStore) DeleteKeyword(ctx context.Context, keyword string) (int64, error) {
	res, err := s.q.ExecContext(ctx, s.dialect.Rebind("DELETE FROM contracts WHERE keyword = ?"), keyword)
	if err != nil {
		return 0, fmt.Errorf("delete keyword %q: %w", keyword, err)
	}
	return res.RowsAffected()
}

// Stats returns aggregate statistics about the time store.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&stats.TotalEntries)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	err = s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&stats.TotalProjects)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	err = s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM contracts").Scan(&stats.TotalKeywords)
	if err != nil {
		return nil, fmt.Errorf("count contracts: %w", err)
	}

	// Oldest and newest (handle empty DB)
	if stats.TotalEntries > 0 {
		var oldest, newest string
		query := "SELECT MIN(" + s.dialect.Timestamp("start_time") + "), MAX(" + s.dialect.Timestamp("start_time") + ") FROM entries"
		if err := s.q.QueryRowContext(ctx, query).Scan(&oldest, &newest); err != nil {
			return nil, fmt.Errorf("entry time range: %w", err)
		}
		stats.OldestEntry, _ = ParseTime(oldest)
		stats.NewestEntry, _ = ParseTime(newest)
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+CategoryExpr+` AS category, COUNT(*) AS cnt
		FROM entries e JOIN projects p ON p.id = e.project_id
		GROUP BY `+CategoryExpr+`
		ORDER BY cnt DESC, category
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("top projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pc ProjectCount
		if err := rows.Scan(&pc.Project, &pc.Count); err != nil {
			return nil, err
		}
		stats.TopProjects = append(stats.TopProjects, pc)
	}

	return stats, rows.Err()
}

// WithTx runs fn against a store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *SQLStore) WithTx(ctx context.Context, fn func(TimeStore) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(&SQLStore{db: s.db, q: tx, dialect: s.dialect}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close is a no-op; the caller owns the *sql.DB.
func (s *SQLStore) Close() error {
	return nil
}
