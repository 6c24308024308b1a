package reconcile

import (
	"errors"
	"fmt"

	"event-reconciler/core/normalize"
)

// Kind is the error taxonomy reported per run.
type Kind string

const (
	// SourceUnavailable: a feed could not be fetched; the run fails with no writes.
	SourceUnavailable Kind = "source_unavailable"
	// ParseFailure: one record was dropped; the run continues.
	ParseFailure Kind = "parse_failure"
	// NoMatch: a listing event had no counterpart; counted only.
	NoMatch Kind = "no_match"
	// AmbiguousMatch: candidates tied on delta; resolved by order and recorded.
	AmbiguousMatch Kind = "ambiguous_match"
	// DuplicateKey: the row already exists; treated as success.
	DuplicateKey Kind = "duplicate_key"
	// PersistenceFailure: the store failed; the batch was rolled back.
	PersistenceFailure Kind = "persistence_failure"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrPersistence       = errors.New("persistence failure")
)

// SourceError wraps a failed adapter fetch.
type SourceError struct {
	Source normalize.Source
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

// PersistenceError wraps a non-duplicate store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// KindOf maps a run error to its Kind. Unknown errors are reported as persistence failures
// only when they wrap ErrPersistence; everything else is empty.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceUnavailable):
		return SourceUnavailable
	case errors.Is(err, ErrPersistence):
		return PersistenceFailure
	default:
		return ""
	}
}
