package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/trezcool/ratiba/core"
)

// Index is the read-side query surface over a session pool snapshot.
// It never mutates the pool; every query returns a fresh slice.
type Index struct {
	pool []Session
}

func NewIndex(pool []Session) Index {
	return Index{pool: pool}
}

// QueryFilter applies AND operation on available fields.
// Search does a case-insensitive match on one of Session.ClassName,
// Session.TeacherName or Session.Subject.
type QueryFilter struct {
	TeacherID  string `query:"teacher"`
	LocationID string `query:"location"`
	Status     Status `query:"status"`
	Search     string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.TeacherID == "" && qf.LocationID == "" && qf.Status == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.LocationID = core.CleanString(qf.LocationID)
	qf.Search = core.CleanString(qf.Search)
}

// ByDate returns all sessions on the given calendar date, ordered by start
// time.
func (ix Index) ByDate(date time.Time) []Session {
	var out []Session
	for _, s := range ix.pool {
		if SameDate(s.Date, date) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// ByTeacherAndMonth returns the teacher's sessions in the given month,
// ordered by date then start time.
func (ix Index) ByTeacherAndMonth(teacherID string, year int, month time.Month) []Session {
	var out []Session
	for _, s := range ix.pool {
		if s.TeacherID != teacherID {
			continue
		}
		if s.Date.Year() == year && s.Date.Month() == month {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// Filter returns the sessions matching all set QueryFilter fields.
func (ix Index) Filter(qf QueryFilter) []Session {
	qf.Clean()

	var out []Session
	search := strings.ToLower(qf.Search)
	for _, s := range ix.pool {
		if qf.TeacherID != "" && s.TeacherID != qf.TeacherID {
			continue
		}
		if qf.LocationID != "" && s.LocationID != qf.LocationID {
			continue
		}
		if qf.Status != "" && s.Status != qf.Status {
			continue
		}
		if search != "" && !matchesSearch(s, search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesSearch(s Session, search string) bool {
	return strings.Contains(strings.ToLower(s.ClassName), search) ||
		strings.Contains(strings.ToLower(s.TeacherName), search) ||
		strings.Contains(strings.ToLower(s.Subject), search)
}
