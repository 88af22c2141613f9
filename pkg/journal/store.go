package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const (
	entryColumns = `id, entry_date, title, content_rich, primary_mood_id, tags_raw, word_count, created_at, updated_at`

	insertEntryStatement = `
	INSERT INTO entries (entry_date, title, content_rich, primary_mood_id, tags_raw, word_count, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	updateEntryStatement = `
	UPDATE entries
	SET entry_date = ?, title = ?, content_rich = ?, primary_mood_id = ?, tags_raw = ?, word_count = ?, updated_at = ?
	WHERE id = ?
	`

	replaceEntryStatement = `
	UPDATE entries
	SET entry_date = ?, title = ?, content_rich = ?, primary_mood_id = ?, tags_raw = ?, word_count = ?, created_at = ?, updated_at = ?
	WHERE id = ?
	`

	listCreatedAtStatement = `
	SELECT id, created_at
	FROM entries
	`

	deleteEntryStatement = `
	DELETE FROM entries
	WHERE id = ?
	`

	getEntryStatement = `
	SELECT ` + entryColumns + `
	FROM entries
	WHERE id = ?
	`

	getEntryByDateStatement = `
	SELECT ` + entryColumns + `
	FROM entries
	WHERE entry_date >= ? AND entry_date < ?
	ORDER BY id ASC
	LIMIT 1
	`

	listEntriesStatement = `
	SELECT ` + entryColumns + `
	FROM entries
	ORDER BY entry_date DESC, id DESC
	`

	listTagsRawStatement = `
	SELECT tags_raw
	FROM entries
	WHERE tags_raw != ''
	`
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite table of journal entries. It owns the one-entry-per-day
// invariant through the unique index on entry_date.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore wraps an open database whose schema is already at db.TargetSchemaVersion.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Insert adds e and sets its ID, CreatedAt and UpdatedAt. A second entry for
// an occupied day fails with ErrUniqueDate.
func (s *Store) Insert(ctx context.Context, e *Entry) (int64, error) {
	now := s.now().UTC()
	e.EntryDate = DateOf(e.EntryDate)
	e.CreatedAt = now
	e.UpdatedAt = now

	id, err := insertEntry(ctx, s.db, *e)
	if err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

func insertEntry(ctx context.Context, q queryer, e Entry) (int64, error) {
	res, err := q.ExecContext(
		ctx,
		insertEntryStatement,
		FormatDate(e.EntryDate),
		e.Title,
		e.ContentRich,
		e.PrimaryMoodID,
		e.TagsRaw,
		e.WordCount,
		formatTimestamp(e.CreatedAt),
		formatTimestamp(e.UpdatedAt),
	)
	if err != nil {
		return 0, translateWriteError("insert entry", err)
	}
	return res.LastInsertId()
}

// UpdateByID overwrites the mutable fields of the row with e.ID and refreshes
// UpdatedAt. CreatedAt is never written.
func (s *Store) UpdateByID(ctx context.Context, e *Entry) error {
	e.EntryDate = DateOf(e.EntryDate)
	e.UpdatedAt = s.now().UTC()
	return updateEntry(ctx, s.db, *e)
}

func updateEntry(ctx context.Context, q queryer, e Entry) error {
	res, err := q.ExecContext(
		ctx,
		updateEntryStatement,
		FormatDate(e.EntryDate),
		e.Title,
		e.ContentRich,
		e.PrimaryMoodID,
		e.TagsRaw,
		e.WordCount,
		formatTimestamp(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return translateWriteError("update entry", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteByID removes a single entry.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, deleteEntryStatement, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// FindByID retrieves an entry by its id.
func (s *Store) FindByID(ctx context.Context, id int64) (Entry, error) {
	return scanEntry(s.db.QueryRowContext(ctx, getEntryStatement, id))
}

// FindByDate retrieves the entry whose day falls in [date, date+1 day).
func (s *Store) FindByDate(ctx context.Context, date time.Time) (Entry, error) {
	return findByDate(ctx, s.db, date)
}

func findByDate(ctx context.Context, q queryer, date time.Time) (Entry, error) {
	day := DateOf(date)
	return scanEntry(q.QueryRowContext(ctx, getEntryByDateStatement, FormatDate(day), FormatDate(day.AddDate(0, 0, 1))))
}

// FindAll returns every entry, most recent day first.
func (s *Store) FindAll(ctx context.Context) ([]Entry, error) {
	return queryEntries(ctx, s.db, listEntriesStatement)
}

// FindWhere returns the entries matching f, most recent day first, cut to
// page, together with the number of matches before pagination.
func (s *Store) FindWhere(ctx context.Context, f Filter, page Page) ([]Entry, int, error) {
	where, args := f.where()

	var total int
	countQuery := `SELECT COUNT(*) FROM entries` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	query := `SELECT ` + entryColumns + ` FROM entries` + where + ` ORDER BY entry_date DESC, id DESC`
	if page.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Limit, page.Offset)
	}

	entries, err := queryEntries(ctx, s.db, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// BulkDelete removes all given ids in one transaction and returns how many rows went away.
func (s *Store) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk delete entries: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk delete: %w", err)
	}
	return removed, nil
}

// ListTagsRaw returns the non-empty tag strings of all entries.
func (s *Store) ListTagsRaw(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listTagsRawStatement)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var raws []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan tags row: %w", err)
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return raws, nil
}

// translateWriteError turns a unique index violation on entry_date into ErrUniqueDate.
func translateWriteError(op string, err error) error {
	if isUniqueDateViolation(err) {
		return ErrUniqueDate
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueDateViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
		strings.Contains(sqliteErr.Error(), "entries.entry_date")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e                    Entry
		entryDate            string
		createdAt, updatedAt string
	)

	err := row.Scan(
		&e.ID,
		&entryDate,
		&e.Title,
		&e.ContentRich,
		&e.PrimaryMoodID,
		&e.TagsRaw,
		&e.WordCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}

	if e.EntryDate, err = ParseDate(entryDate); err != nil {
		return Entry{}, fmt.Errorf("entry %d has malformed entry_date %q: %w", e.ID, entryDate, err)
	}
	if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return Entry{}, fmt.Errorf("entry %d has malformed created_at %q: %w", e.ID, createdAt, err)
	}
	if e.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return Entry{}, fmt.Errorf("entry %d has malformed updated_at %q: %w", e.ID, updatedAt, err)
	}
	return e, nil
}

func queryEntries(ctx context.Context, q queryer, query string, args ...any) ([]Entry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return entries, nil
}
