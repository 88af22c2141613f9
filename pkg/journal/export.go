package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/unowned-ai/daylog/pkg/textutil"
)

// ExportVersion is the format version written by Export and the highest one Import reads.
const ExportVersion = 1

// ExportData is a JSON backup of the whole journal.
type ExportData struct {
	ID         uuid.UUID `json:"id"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Entries    []Entry   `json:"entries"`
}

// ImportOptions controls how Import treats days that already have an entry.
type ImportOptions struct {
	// Replace overwrites the existing entry of an occupied day instead of skipping it.
	Replace bool
}

// ImportResult counts what Import did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Replaced int `json:"replaced"`
}

// Export returns every entry, oldest day first.
func (s *Service) Export(ctx context.Context) (*ExportData, error) {
	entries, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EntryDate.Before(entries[j].EntryDate)
	})
	if entries == nil {
		entries = []Entry{}
	}

	return &ExportData{
		ID:         uuid.New(),
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Entries:    entries,
	}, nil
}

// Import loads a backup produced by Export in a single transaction. Entries
// get fresh ids and keep their timestamps, except that a CreatedAt already
// held by another row is moved forward by the smallest stored step, and an
// UpdatedAt earlier than CreatedAt is raised to it. Word counts are derived again.
func (s *Service) Import(ctx context.Context, data *ExportData, opts ImportOptions) (ImportResult, error) {
	if data == nil {
		return ImportResult{}, validationError("invalid import: no data given")
	}
	if data.Version < 1 || data.Version > ExportVersion {
		return ImportResult{}, validationError("unsupported export version %d (this build reads up to %d)", data.Version, ExportVersion)
	}

	seenDays := make(map[string]int)
	entries := make([]Entry, 0, len(data.Entries))
	for i, e := range data.Entries {
		if e.EntryDate.IsZero() {
			return ImportResult{}, validationError("entry %d in import has no entry date", i)
		}
		if e.PrimaryMoodID <= 0 {
			return ImportResult{}, validationError("entry %d in import has no primary mood", i)
		}
		day := FormatDate(e.EntryDate)
		if first, dup := seenDays[day]; dup {
			return ImportResult{}, validationError("entries %d and %d in import share the date %s", first, i, day)
		}
		seenDays[day] = i

		e.EntryDate = DateOf(e.EntryDate)
		e.WordCount = textutil.WordCount(e.ContentRich)
		entries = append(entries, e)
	}

	res, err := s.store.ImportEntries(ctx, entries, opts.Replace)
	if err != nil {
		return ImportResult{}, storageError(err)
	}

	s.log.Info().
		Str("export_id", data.ID.String()).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Int("replaced", res.Replaced).
		Msg("import finished")
	return res, nil
}

// ImportEntries writes entries in one transaction. An entry whose day is
// taken is skipped, or overwrites the occupant (timestamps included) when
// replace is set. Every written row gets a CreatedAt no other row holds, since
// Deduplicate treats rows sharing one as copies of each other.
func (s *Store) ImportEntries(ctx context.Context, entries []Entry, replace bool) (ImportResult, error) {
	var res ImportResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	taken, err := createdAtOwners(ctx, tx)
	if err != nil {
		return res, err
	}

	now := s.now().UTC()
	for _, e := range entries {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}

		occupant, err := findByDate(ctx, tx, e.EntryDate)
		switch {
		case errors.Is(err, ErrEntryNotFound):
			e.CreatedAt = claimCreatedAt(taken, e.CreatedAt, 0)
			e.UpdatedAt = laterOf(e.UpdatedAt, e.CreatedAt)
			id, err := insertEntry(ctx, tx, e)
			if err != nil {
				return ImportResult{}, err
			}
			taken[formatTimestamp(e.CreatedAt)] = id
			res.Imported++
		case err != nil:
			return ImportResult{}, err
		case replace:
			e.ID = occupant.ID
			delete(taken, formatTimestamp(occupant.CreatedAt))
			e.CreatedAt = claimCreatedAt(taken, e.CreatedAt, e.ID)
			e.UpdatedAt = laterOf(e.UpdatedAt, e.CreatedAt)
			if err := replaceEntry(ctx, tx, e); err != nil {
				return ImportResult{}, err
			}
			taken[formatTimestamp(e.CreatedAt)] = e.ID
			res.Replaced++
		default:
			res.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit import: %w", err)
	}
	return res, nil
}

// createdAtOwners maps every stored created_at to the id of the row holding it.
func createdAtOwners(ctx context.Context, q queryer) (map[string]int64, error) {
	rows, err := q.QueryContext(ctx, listCreatedAtStatement)
	if err != nil {
		return nil, fmt.Errorf("query created_at: %w", err)
	}
	defer rows.Close()

	owners := make(map[string]int64)
	for rows.Next() {
		var (
			id        int64
			createdAt string
		)
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, fmt.Errorf("scan created_at row: %w", err)
		}
		owners[createdAt] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating created_at rows: %w", err)
	}
	return owners, nil
}

// claimCreatedAt returns t, moved forward one nanosecond at a time until no
// row other than self holds it.
func claimCreatedAt(taken map[string]int64, t time.Time, self int64) time.Time {
	t = t.UTC()
	for {
		owner, ok := taken[formatTimestamp(t)]
		if !ok || (self != 0 && owner == self) {
			return t
		}
		t = t.Add(time.Nanosecond)
	}
}

func laterOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}

func replaceEntry(ctx context.Context, q queryer, e Entry) error {
	res, err := q.ExecContext(
		ctx,
		replaceEntryStatement,
		FormatDate(e.EntryDate),
		e.Title,
		e.ContentRich,
		e.PrimaryMoodID,
		e.TagsRaw,
		e.WordCount,
		formatTimestamp(e.CreatedAt),
		formatTimestamp(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return translateWriteError("replace entry", err)
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
