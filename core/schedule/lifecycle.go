package schedule

import (
	"errors"

	"github.com/trezcool/ratiba/core"
)

var (
	// errors
	ErrNotFound          = errors.New("session not found")
	ErrInvalidTransition = errors.New("session is no longer scheduled")
	ErrEmptyNote         = errors.New("a cancellation note is required")
)

// Status transitions are monotonic:
//
//	scheduled -> completed
//	scheduled -> cancelled
//
// There is no transition out of completed or cancelled; Delete is the only
// operation allowed from any status.

// Complete marks a scheduled session as held. No side effects beyond the
// status change.
func Complete(s Session) (Session, error) {
	if s.Status != StatusScheduled {
		return s, ErrInvalidTransition
	}
	s.Status = StatusCompleted
	return s, nil
}

// Cancel marks a scheduled session as cancelled with a mandatory note and
// returns the CancellationEvent to feed the notification dispatcher.
// The input session is unchanged on failure.
func Cancel(s Session, note string) (Session, CancellationEvent, error) {
	if s.Status != StatusScheduled {
		return s, CancellationEvent{}, ErrInvalidTransition
	}
	note = core.CleanString(note)
	if note == "" {
		return s, CancellationEvent{}, ErrEmptyNote
	}
	s.Status = StatusCancelled
	s.CancellationNote = note
	return s, CancellationEvent{Session: s, Note: note}, nil
}

// ApplyEdit applies an in-place edit to a scheduled session, re-validating
// conflicts against the rest of the pool as if the session were re-created.
// Returns a *ConflictError carrying the colliding sessions on overlap.
func ApplyEdit(pool []Session, s Session, upd UpdateSession) (Session, error) {
	if s.Status != StatusScheduled {
		return s, ErrInvalidTransition
	}

	if upd.Date != nil {
		s.Date = DateOnly(*upd.Date)
	}
	if upd.StartTime != "" {
		s.StartTime = upd.StartTime
	}
	if upd.EndTime != "" {
		s.EndTime = upd.EndTime
	}
	if upd.LocationID != "" {
		s.LocationID = upd.LocationID
	}
	if _, err := s.DurationMinutes(); err != nil {
		return s, err
	}

	if conflicts := FindConflicts(pool, s, s.ID); len(conflicts) > 0 {
		return s, &ConflictError{Sessions: conflicts}
	}
	return s, nil
}
