package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func indexPool() []Session {
	d1 := date(2024, 3, 20)
	d2 := date(2024, 3, 21)
	apr := date(2024, 4, 3)

	s1 := mkSession("s1", "t1", d1, "11:00", "12:00", StatusScheduled)
	s2 := mkSession("s2", "t1", d1, "09:00", "10:30", StatusScheduled)
	s3 := mkSession("s3", "t2", d1, "08:00", "09:00", StatusCancelled)
	s3.TeacherName = "Mrs. Amani"
	s3.ClassName = "Form 4B"
	s3.Subject = "Physics"
	s3.LocationID = "lab-1"
	s4 := mkSession("s4", "t1", d2, "09:00", "10:30", StatusCompleted)
	s5 := mkSession("s5", "t1", apr, "09:00", "10:30", StatusScheduled)
	return []Session{s1, s2, s3, s4, s5}
}

func TestIndexByDate(t *testing.T) {
	ix := NewIndex(indexPool())

	got := ix.ByDate(date(2024, 3, 20))
	if len(got) != 3 {
		t.Fatalf("ByDate() returned %d sessions, want 3", len(got))
	}
	// ordered by start time
	wantOrder := []string{"s3", "s2", "s1"}
	for i, s := range got {
		if s.ID != wantOrder[i] {
			t.Errorf("ByDate()[%d] = %s, want %s", i, s.ID, wantOrder[i])
		}
	}

	if got := ix.ByDate(date(2024, 3, 25)); len(got) != 0 {
		t.Errorf("ByDate() on empty day returned %d sessions", len(got))
	}
}

func TestIndexByTeacherAndMonth(t *testing.T) {
	ix := NewIndex(indexPool())

	got := ix.ByTeacherAndMonth("t1", 2024, time.March)
	assert.ElementsMatch(t, []string{"s1", "s2", "s4"}, sessionIDs(got))

	// ordered by date then start time
	wantOrder := []string{"s2", "s1", "s4"}
	for i, s := range got {
		if s.ID != wantOrder[i] {
			t.Errorf("ByTeacherAndMonth()[%d] = %s, want %s", i, s.ID, wantOrder[i])
		}
	}

	got = ix.ByTeacherAndMonth("t1", 2024, time.April)
	assert.ElementsMatch(t, []string{"s5"}, sessionIDs(got))

	if got = ix.ByTeacherAndMonth("t9", 2024, time.March); len(got) != 0 {
		t.Errorf("ByTeacherAndMonth() for unknown teacher returned %d sessions", len(got))
	}
}

func TestIndexFilter(t *testing.T) {
	ix := NewIndex(indexPool())

	tests := []struct {
		name    string
		filter  QueryFilter
		wantIDs []string
	}{
		{name: "empty filter matches all", filter: QueryFilter{}, wantIDs: []string{"s1", "s2", "s3", "s4", "s5"}},
		{name: "by teacher", filter: QueryFilter{TeacherID: "t2"}, wantIDs: []string{"s3"}},
		{name: "by location", filter: QueryFilter{LocationID: "lab-1"}, wantIDs: []string{"s3"}},
		{name: "by status", filter: QueryFilter{Status: StatusScheduled}, wantIDs: []string{"s1", "s2", "s5"}},
		{name: "search class name", filter: QueryFilter{Search: "form 4"}, wantIDs: []string{"s3"}},
		{name: "search teacher name", filter: QueryFilter{Search: "amani"}, wantIDs: []string{"s3"}},
		{name: "search subject", filter: QueryFilter{Search: "MATH"}, wantIDs: []string{"s1", "s2", "s4", "s5"}},
		{name: "search cleans whitespace", filter: QueryFilter{Search: "  physics "}, wantIDs: []string{"s3"}},
		{name: "conjunctive", filter: QueryFilter{TeacherID: "t1", Status: StatusCompleted}, wantIDs: []string{"s4"}},
		{name: "no match", filter: QueryFilter{TeacherID: "t1", Search: "physics"}, wantIDs: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ix.Filter(tt.filter)
			assert.ElementsMatch(t, tt.wantIDs, sessionIDs(got))
		})
	}
}

func TestIndexDoesNotMutatePool(t *testing.T) {
	pool := indexPool()
	ix := NewIndex(pool)

	_ = ix.ByDate(date(2024, 3, 20))
	_ = ix.ByTeacherAndMonth("t1", 2024, time.March)
	_ = ix.Filter(QueryFilter{Status: StatusScheduled})

	want := indexPool()
	for i := range pool {
		if pool[i].ID != want[i].ID || pool[i].StartTime != want[i].StartTime {
			t.Fatalf("pool[%d] was mutated: %+v", i, pool[i])
		}
	}
}
