package journal

import (
	"errors"
	"fmt"
)

// Store level errors.
var (
	ErrEntryNotFound = errors.New("entry not found")
	// ErrUniqueDate is returned when a commit trips the one-entry-per-day index.
	ErrUniqueDate = errors.New("an entry for this date already exists")
)

// Kind classifies the failures returned by Service.
type Kind int

const (
	KindStorage Kind = iota
	KindNotFound
	KindValidation
	KindDateConflict
)

// Sentinels matching each Kind through errors.Is.
var (
	ErrStorage      = errors.New("storage failure")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrDateConflict = errors.New("date conflict")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindDateConflict:
		return ErrDateConflict
	default:
		return ErrStorage
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

// ConflictInfo is attached to date conflicts so a caller can offer to open the
// entry already occupying the day.
type ConflictInfo struct {
	ConflictID   *int64 `json:"conflict_id,omitempty"`
	RemovedCount int    `json:"removed_count"`
}

// Error is the failure payload of every Service operation. Message is meant
// for direct display.
type Error struct {
	Kind     Kind
	Message  string
	Conflict *ConflictInfo
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func notFoundError(what string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", what), Err: err}
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func storageError(err error) *Error {
	return &Error{Kind: KindStorage, Message: err.Error(), Err: err}
}

func conflictError(msg string, info ConflictInfo) *Error {
	return &Error{Kind: KindDateConflict, Message: msg, Conflict: &info, Err: ErrUniqueDate}
}

// lookupError maps a store lookup failure onto the Service taxonomy.
func lookupError(what string, err error) *Error {
	if errors.Is(err, ErrEntryNotFound) {
		return notFoundError(what, err)
	}
	return storageError(err)
}
