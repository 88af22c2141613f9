// Package journal stores daily journal entries in SQLite and exposes the
// operations callers use on them: save with one-entry-per-day enforcement,
// lookup, filtered search, delete and duplicate cleanup.
package journal

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EntryStore is the persistence the Service runs on. *Store implements it.
type EntryStore interface {
	Insert(ctx context.Context, e *Entry) (int64, error)
	UpdateByID(ctx context.Context, e *Entry) error
	DeleteByID(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (Entry, error)
	FindByDate(ctx context.Context, date time.Time) (Entry, error)
	FindAll(ctx context.Context) ([]Entry, error)
	FindWhere(ctx context.Context, f Filter, page Page) ([]Entry, int, error)
	BulkDelete(ctx context.Context, ids []int64) (int64, error)
	ListTagsRaw(ctx context.Context) ([]string, error)
	ImportEntries(ctx context.Context, entries []Entry, replace bool) (ImportResult, error)
}

// Service is the facade over the entry store. Every method returns either its
// payload or an *Error.
type Service struct {
	store EntryStore
	log   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for conflict recoveries and cleanups.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService builds a Service on store.
func NewService(store EntryStore, opts ...Option) *Service {
	s := &Service{store: store, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delete removes the entry with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return lookupError("entry", err)
	}
	s.log.Debug().Int64("entry_id", id).Msg("entry deleted")
	return nil
}
