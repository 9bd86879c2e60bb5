package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Conflict detection is per-teacher only: a teacher cannot teach two
// classes whose time windows intersect on the same date, regardless of
// location. Multiple classes may share a room at different times and no
// location-capacity overlap rule exists in this domain.

// ConflictError reports that a candidate or edit collides with existing
// scheduled sessions for the same teacher. It carries the colliding
// sessions so the caller can present specifics.
type ConflictError struct {
	Sessions []Session `json:"sessions"`
}

func (e *ConflictError) Error() string {
	if len(e.Sessions) == 0 {
		return "session conflicts with an existing scheduled session"
	}
	s := e.Sessions[0]
	return fmt.Sprintf(
		"session conflicts with %d scheduled session(s); first: %s %s-%s (teacher %s)",
		len(e.Sessions), s.Date.Format("2006-01-02"), s.StartTime, s.EndTime, s.TeacherID,
	)
}

const RejectReasonConflict = "conflict"

// RejectedCandidate is one bulk-schedule candidate that could not be
// accepted, along with the date on which it collided.
type RejectedCandidate struct {
	Candidate       Session   `json:"candidate"`
	Reason          string    `json:"reason"`
	ConflictingDate time.Time `json:"conflicting_date"`
}

// BulkResult partitions a bulk-schedule batch; a per-candidate conflict
// never fails the whole batch.
type BulkResult struct {
	Accepted []Session           `json:"accepted"`
	Rejected []RejectedCandidate `json:"rejected"`
}

// FindConflicts returns every session in `pool` with the candidate's
// teacher, status scheduled, the candidate's date, and an overlapping time
// window. `excludeID` lets an edit-in-place ignore the session being edited;
// pass "" when scheduling new sessions.
func FindConflicts(pool []Session, candidate Session, excludeID string) []Session {
	var conflicts []Session
	for _, s := range pool {
		if s.TeacherID != candidate.TeacherID || s.Status != StatusScheduled {
			continue
		}
		if excludeID != "" && s.ID == excludeID {
			continue
		}
		if candidate.OverlapsWith(s) {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts
}

// FilterBulk checks candidates against the pool in date order, folding each
// accepted candidate into a working copy of the pool before checking the
// next one. Two candidates in the same batch that collide with each other
// are therefore also caught: the second one is rejected.
func FilterBulk(pool, candidates []Session) BulkResult {
	ordered := make([]Session, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].StartTime < ordered[j].StartTime
	})

	working := make([]Session, len(pool), len(pool)+len(ordered))
	copy(working, pool)

	res := BulkResult{
		Accepted: make([]Session, 0, len(ordered)),
		Rejected: make([]RejectedCandidate, 0),
	}
	for _, cand := range ordered {
		if conflicts := FindConflicts(working, cand, ""); len(conflicts) > 0 {
			res.Rejected = append(res.Rejected, RejectedCandidate{
				Candidate:       cand,
				Reason:          RejectReasonConflict,
				ConflictingDate: DateOnly(conflicts[0].Date),
			})
			continue
		}
		res.Accepted = append(res.Accepted, cand)
		working = append(working, cand)
	}
	return res
}
