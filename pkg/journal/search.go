package journal

import (
	"context"
	"math"
	"strings"
	"time"
)

// DefaultPageSize is used when SearchParams.PageSize is left at zero.
const DefaultPageSize = 20

// Filter selects entries. All set criteria must hold.
type Filter struct {
	// Query is a case-insensitive substring of the title or the content.
	Query string
	// From is an inclusive lower bound on the entry day.
	From *time.Time
	// To is an inclusive upper bound on the entry day.
	To *time.Time
	// MoodIDs restricts the primary mood to one of the given ids.
	MoodIDs []int
	// Tags must each appear as a substring of the raw tag string.
	Tags []string
}

// Page is a LIMIT/OFFSET window. A zero Limit returns every row.
type Page struct {
	Offset int
	Limit  int
}

// SearchParams is the input of Service.Search.
type SearchParams struct {
	Query     string
	PageIndex int
	PageSize  int
	From      *time.Time
	To        *time.Time
	MoodIDs   []int
	Tags      []string
}

// SearchResult holds one page of matches and the total before pagination.
type SearchResult struct {
	Items      []DisplayView `json:"items"`
	TotalCount int           `json:"total_count"`
}

func (f Filter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if strings.TrimSpace(f.Query) != "" {
		pattern := likePattern(f.Query)
		clauses = append(clauses, `(title LIKE ? ESCAPE '\' OR content_rich LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	if f.From != nil {
		clauses = append(clauses, `entry_date >= ?`)
		args = append(args, FormatDate(*f.From))
	}

	if f.To != nil {
		// exclusive next day keeps every entry on To itself
		clauses = append(clauses, `entry_date < ?`)
		args = append(args, FormatDate(DateOf(*f.To).AddDate(0, 0, 1)))
	}

	if len(f.MoodIDs) > 0 {
		placeholders := strings.Repeat("?,", len(f.MoodIDs)-1) + "?"
		clauses = append(clauses, `primary_mood_id IN (`+placeholders+`)`)
		for _, id := range f.MoodIDs {
			args = append(args, id)
		}
	}

	for _, tag := range f.Tags {
		if tag == "" {
			continue
		}
		clauses = append(clauses, `tags_raw LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(tag))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a LIKE pattern matching s anywhere, with s's own wildcards escaped.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// Search returns one page of entries matching params, most recent day first.
func (s *Service) Search(ctx context.Context, params SearchParams) (SearchResult, error) {
	if params.PageIndex < 0 {
		return SearchResult{}, validationError("page index must not be negative (got %d)", params.PageIndex)
	}
	if params.PageSize < 0 {
		return SearchResult{}, validationError("page size must be positive (got %d)", params.PageSize)
	}
	pageSize := params.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	filter := Filter{
		Query:   params.Query,
		From:    params.From,
		To:      params.To,
		MoodIDs: params.MoodIDs,
		Tags:    params.Tags,
	}
	// Pages past the addressable range are empty rather than wrapping around.
	offset := math.MaxInt
	if params.PageIndex <= math.MaxInt/pageSize {
		offset = params.PageIndex * pageSize
	}
	page := Page{Offset: offset, Limit: pageSize}

	entries, total, err := s.store.FindWhere(ctx, filter, page)
	if err != nil {
		return SearchResult{}, storageError(err)
	}

	return SearchResult{Items: toDisplays(entries), TotalCount: total}, nil
}

// GetByID returns the display view of one entry.
func (s *Service) GetByID(ctx context.Context, id int64) (DisplayView, error) {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return DisplayView{}, lookupError("entry", err)
	}
	return ToDisplay(e), nil
}

// GetEntry returns the full stored entry, content included.
func (s *Service) GetEntry(ctx context.Context, id int64) (Entry, error) {
	e, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Entry{}, lookupError("entry", err)
	}
	return e, nil
}

// GetByDate returns the entry written for the calendar day of date.
func (s *Service) GetByDate(ctx context.Context, date time.Time) (DisplayView, error) {
	e, err := s.store.FindByDate(ctx, date)
	if err != nil {
		return DisplayView{}, lookupError("entry for "+FormatDate(date), err)
	}
	return ToDisplay(e), nil
}

// GetAll returns every entry, most recent day first.
func (s *Service) GetAll(ctx context.Context) ([]DisplayView, error) {
	entries, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return toDisplays(entries), nil
}
