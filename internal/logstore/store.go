package logstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// timeLayout is fixed-width so that lexicographic order in SQLite matches
// chronological order for both sorting and cutoff comparisons.
const timeLayout = "2006-01-02 15:04:05.000000"

// OrderField is a column the log may be sorted by. Values are fixed
// identifiers, never user input; the query layer maps raw input onto them.
type OrderField string

const (
	OrderByURL       OrderField = "url"
	OrderByRuntime   OrderField = "runtime"
	OrderByDateAdded OrderField = "date_added"
)

// SelectOptions controls a log page read.
type SelectOptions struct {
	OrderBy OrderField
	Desc    bool
	Limit   int
	Offset  int
	Search  string // URL substring filter, empty for all rows
}

// Store manages request log persistence.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the log database at the given path and brings the
// schema up to date. A migration failure aborts the open.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening log db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Insert appends a record and returns its assigned id. DateAdded is stamped
// at write time unless the caller provided one.
func (s *Store) Insert(r *Record) (int64, error) {
	added := r.DateAdded
	if added.IsZero() {
		added = time.Now()
	}
	result, err := s.db.Exec(`
		INSERT INTO lhr_log (url, request_args, response, backtrace, runtime, date_added)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.URL, r.RequestArgs, r.Response, r.Backtrace, r.Runtime,
		added.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting log record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	r.ID = id
	r.DateAdded = added
	return id, nil
}

// Select returns one page of records. Ties on the primary sort key are broken
// by id descending so paging is deterministic.
func (s *Store) Select(opts SelectOptions) ([]Record, error) {
	orderBy := opts.OrderBy
	switch orderBy {
	case OrderByURL, OrderByRuntime, OrderByDateAdded:
	default:
		orderBy = OrderByDateAdded
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if opts.Search != "" {
		where = `WHERE url LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(opts.Search)+"%")
	}
	args = append(args, limit, offset)

	// orderBy and dir only ever hold the fixed identifiers above.
	q := fmt.Sprintf(`
		SELECT id, url, request_args, response, backtrace, runtime, date_added
		FROM lhr_log
		%s
		ORDER BY %s %s, id DESC
		LIMIT ? OFFSET ?`, where, orderBy, dir)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting log records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Get returns a single record by id.
func (s *Store) Get(id int64) (Record, error) {
	row := s.db.QueryRow(`
		SELECT id, url, request_args, response, backtrace, runtime, date_added
		FROM lhr_log WHERE id = ?`, id)

	var r Record
	var ts string
	err := row.Scan(&r.ID, &r.URL, &r.RequestArgs, &r.Response, &r.Backtrace, &r.Runtime, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("reading log record %d: %w", id, err)
	}
	r.DateAdded, _ = time.Parse(timeLayout, ts)
	return r, nil
}

// Count returns the total number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM lhr_log").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting log records: %w", err)
	}
	return n, nil
}

// CountMatching returns the number of records whose URL contains search.
// An empty search counts every record.
func (s *Store) CountMatching(search string) (int, error) {
	if search == "" {
		return s.Count()
	}
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM lhr_log WHERE url LIKE ? ESCAPE '\'`,
		"%"+escapeLike(search)+"%").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting matching records: %w", err)
	}
	return n, nil
}

// DeleteBefore removes every record captured strictly before cutoff and
// returns how many were removed. Safe on an empty table.
func (s *Store) DeleteBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM lhr_log WHERE date_added < ?",
		cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("deleting expired records: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading delete count: %w", err)
	}
	return n, nil
}

// OldestDate returns the capture time of the oldest record, or ok=false when
// the table is empty.
func (s *Store) OldestDate() (time.Time, bool, error) {
	var ts sql.NullString
	err := s.db.QueryRow("SELECT MIN(date_added) FROM lhr_log").Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading oldest record date: %w", err)
	}
	if !ts.Valid || ts.String == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(timeLayout, ts.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing oldest record date: %w", err)
	}
	return t, true, nil
}

// DistinctURLs returns the unique URLs in the log, most recently seen first.
// A limit <= 0 returns them all.
func (s *Store) DistinctURLs(limit int) ([]string, error) {
	q := "SELECT url FROM lhr_log GROUP BY url ORDER BY MAX(id) DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting distinct urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning url row: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// Truncate removes all records unconditionally.
func (s *Store) Truncate() error {
	if _, err := s.db.Exec("DELETE FROM lhr_log"); err != nil {
		return fmt.Errorf("truncating log table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var ts string
		err := rows.Scan(&r.ID, &r.URL, &r.RequestArgs, &r.Response,
			&r.Backtrace, &r.Runtime, &ts)
		if err != nil {
			return nil, fmt.Errorf("scanning log row: %w", err)
		}
		r.DateAdded, _ = time.Parse(timeLayout, ts)
		records = append(records, r)
	}
	return records, rows.Err()
}

// escapeLike neutralizes LIKE wildcards in a user-supplied search term.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
