package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unowned-ai/daylog/pkg/textutil"
)

const (
	msgCreateConflict   = "An entry for this date already exists. Edit or delete that entry before creating a new one."
	msgUpdateConflict   = "Another entry already exists for the selected date. Choose a different date or delete the other entry."
	msgUnresolvedCommit = "Unable to save entry: an entry for this date already exists and the conflict could not be resolved automatically. Edit or delete the existing entry."
)

// Save creates (ID 0) or updates an entry. The day check done here is only
// advisory: when a concurrent writer takes the day between the check and the
// commit, the store's unique index rejects the commit, duplicates are cleaned
// up, and a DateConflict naming the surviving entry is returned. The request
// is not retried.
func (s *Service) Save(ctx context.Context, req *SaveRequest) (DisplayView, error) {
	if err := validateSaveRequest(req); err != nil {
		return DisplayView{}, err
	}

	day := DateOf(req.EntryDate)
	if err := s.checkDateConflict(ctx, req.ID, day); err != nil {
		return DisplayView{}, err
	}

	var (
		entry Entry
		err   error
	)
	if req.ID == 0 {
		applyRequest(&entry, req)
		_, err = s.store.Insert(ctx, &entry)
	} else {
		entry, err = s.store.FindByID(ctx, req.ID)
		if err != nil {
			return DisplayView{}, lookupError("entry", err)
		}
		applyRequest(&entry, req)
		err = s.store.UpdateByID(ctx, &entry)
	}

	if err != nil {
		switch {
		case errors.Is(err, ErrUniqueDate):
			return DisplayView{}, s.recoverDateConflict(ctx, day)
		case errors.Is(err, ErrEntryNotFound):
			return DisplayView{}, notFoundError("entry", err)
		default:
			return DisplayView{}, storageError(err)
		}
	}

	// Read back what was committed rather than trusting entry.
	saved, err := s.store.FindByID(ctx, entry.ID)
	if err != nil {
		return DisplayView{}, lookupError("entry", err)
	}

	s.log.Debug().
		Int64("entry_id", saved.ID).
		Str("entry_date", FormatDate(saved.EntryDate)).
		Bool("created", req.ID == 0).
		Msg("entry saved")
	return ToDisplay(saved), nil
}

func validateSaveRequest(req *SaveRequest) error {
	if req == nil {
		return validationError("invalid request: no entry given")
	}
	if req.ID < 0 {
		return validationError("invalid entry id %d", req.ID)
	}
	if req.EntryDate.IsZero() {
		return validationError("entry date is required")
	}
	if req.PrimaryMoodID <= 0 {
		return validationError("please select a primary mood")
	}
	return nil
}

// checkDateConflict fails when another entry already holds day. On update the
// entry being updated may hold it itself.
func (s *Service) checkDateConflict(ctx context.Context, id int64, day time.Time) error {
	occupant, err := s.store.FindByDate(ctx, day)
	if errors.Is(err, ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return storageError(err)
	}

	if id == 0 {
		return conflictError(msgCreateConflict, ConflictInfo{ConflictID: &occupant.ID})
	}
	if occupant.ID != id {
		return conflictError(msgUpdateConflict, ConflictInfo{ConflictID: &occupant.ID})
	}
	return nil
}

// applyRequest copies the mutable fields of req onto e and derives the word count.
func applyRequest(e *Entry, req *SaveRequest) {
	e.EntryDate = DateOf(req.EntryDate)
	e.Title = req.Title
	e.ContentRich = req.ContentRich
	e.PrimaryMoodID = req.PrimaryMoodID
	e.TagsRaw = req.TagsRaw
	e.WordCount = textutil.WordCount(req.ContentRich)
}

// recoverDateConflict runs after the unique index rejected a commit for day.
// It cleans up duplicates and reports which entry now holds the day. Failures
// while recovering are logged and replaced by a generic conflict.
func (s *Service) recoverDateConflict(ctx context.Context, day time.Time) error {
	logger := s.log.With().Str("entry_date", FormatDate(day)).Logger()

	removed, err := s.Deduplicate(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("deduplication failed during conflict recovery")
		return conflictError(msgUnresolvedCommit, ConflictInfo{})
	}

	occupant, err := s.store.FindByDate(ctx, day)
	switch {
	case err == nil:
		logger.Warn().
			Int64("conflict_id", occupant.ID).
			Int("removed", removed).
			Msg("commit rejected by unique date index")
		var msg string
		if removed > 0 {
			msg = fmt.Sprintf("Conflict: %d duplicate row(s) were removed. An entry for this date already exists (id:%d). You can edit or delete that entry.", removed, occupant.ID)
		} else {
			msg = fmt.Sprintf("An entry for this date already exists (id:%d). You can edit or delete that entry.", occupant.ID)
		}
		return conflictError(msg, ConflictInfo{ConflictID: &occupant.ID, RemovedCount: removed})
	case errors.Is(err, ErrEntryNotFound):
		logger.Warn().Int("removed", removed).Msg("commit rejected by unique date index, no occupant found")
		var msg string
		if removed > 0 {
			msg = fmt.Sprintf("Conflict detected and %d duplicate row(s) were removed, but an entry for this date still prevents saving this one.", removed)
		} else {
			msg = "An entry for this date already exists; please edit or delete it before saving this one."
		}
		return conflictError(msg, ConflictInfo{RemovedCount: removed})
	default:
		logger.Warn().Err(err).Msg("lookup failed during conflict recovery")
		return conflictError(msgUnresolvedCommit, ConflictInfo{RemovedCount: removed})
	}
}
