package schedule

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/user"
)

type fakeRepo struct {
	sessions  map[string]Session
	templates map[string]ClassTemplate
	locations map[string]Location
	pkCount   int
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions:  make(map[string]Session),
		templates: map[string]ClassTemplate{genTemplate.ID: genTemplate},
		locations: map[string]Location{"room-12": {ID: "room-12", Name: "Main Block", Room: "12"}},
	}
}

func (r *fakeRepo) QuerySessions(context.Context) ([]Session, error) {
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRepo) GetSession(_ context.Context, id string) (Session, error) {
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	return Session{}, ErrNotFound
}

func (r *fakeRepo) CreateSessions(_ context.Context, sessions ...Session) ([]Session, error) {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		r.pkCount++
		s.ID = fmt.Sprintf("s%d", r.pkCount)
		r.sessions[s.ID] = s
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRepo) UpdateSession(_ context.Context, sess Session) (Session, error) {
	if _, ok := r.sessions[sess.ID]; !ok {
		return Session{}, ErrNotFound
	}
	r.sessions[sess.ID] = sess
	return sess, nil
}

func (r *fakeRepo) DeleteSessionsByID(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(r.sessions, id)
	}
	return nil
}

func (r *fakeRepo) GetClassTemplate(_ context.Context, id string) (ClassTemplate, error) {
	if tpl, ok := r.templates[id]; ok {
		return tpl, nil
	}
	return ClassTemplate{}, ErrNotFound
}

func (r *fakeRepo) QueryClassTemplates(context.Context) ([]ClassTemplate, error) {
	out := make([]ClassTemplate, 0, len(r.templates))
	for _, tpl := range r.templates {
		out = append(out, tpl)
	}
	return out, nil
}

func (r *fakeRepo) GetLocation(_ context.Context, id string) (Location, error) {
	if loc, ok := r.locations[id]; ok {
		return loc, nil
	}
	return Location{}, ErrNotFound
}

func (r *fakeRepo) QueryLocations(context.Context) ([]Location, error) {
	out := make([]Location, 0, len(r.locations))
	for _, loc := range r.locations {
		out = append(out, loc)
	}
	return out, nil
}

type nopLogger struct {
	std *log.Logger
}

func (l nopLogger) Enable(bool)                        {}
func (l nopLogger) Debug(string, ...interface{})       {}
func (l nopLogger) Info(string, ...interface{})        {}
func (l nopLogger) Warn(string, ...interface{})        {}
func (l nopLogger) Error(msg string, _ ...interface{}) { l.std.Println(msg) }
func (l nopLogger) Fatal(msg string, _ ...interface{}) { l.std.Fatal(msg) }

func setupService(t *testing.T) (Service, *fakeRepo, *fakeEmailService) {
	t.Helper()

	repo := newFakeRepo()
	mailSvc := &fakeEmailService{}
	directory := &fakeDirectory{
		users:  map[string]user.User{"t1": mkUser("t1", "Mr. Kito", "kito@school.test", user.RoleTeacher)},
		admins: []user.User{mkUser("a1", "Head", "head@school.test", user.RoleAdmin)},
	}
	roster := &fakeRoster{
		students: map[string][]user.User{"tpl-1": {mkUser("u1", "Asha", "asha@school.test", user.RoleStudent)}},
	}
	dispatcher := NewDispatcher(roster, directory, mailSvc)
	logger := nopLogger{std: log.New(os.Stdout, "TEST : ", log.LstdFlags)}
	return NewService(repo, dispatcher, logger), repo, mailSvc
}

func TestServiceScheduleOne(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	ns := NewSession{
		TemplateID: "tpl-1",
		Date:       date(2024, 3, 20),
		StartTime:  "09:00",
		EndTime:    "10:30",
		CreatedBy:  "a1",
	}
	sess, err := svc.ScheduleOne(ctx, ns)
	if err != nil {
		t.Fatalf("ScheduleOne() failed: %v", err)
	}
	if sess.ID == "" {
		t.Error("committed session has no ID")
	}
	if sess.Status != StatusScheduled {
		t.Errorf("status = %q, want %q", sess.Status, StatusScheduled)
	}
	if sess.LocationID != genTemplate.LocationID {
		t.Errorf("location = %q, want template default %q", sess.LocationID, genTemplate.LocationID)
	}
	if sess.StudentCount != genTemplate.Enrolled {
		t.Errorf("student count = %d, want enrollment snapshot %d", sess.StudentCount, genTemplate.Enrolled)
	}

	// overlapping second session for the same teacher is refused
	ns2 := ns
	ns2.StartTime, ns2.EndTime = "10:00", "11:00"
	_, err = svc.ScheduleOne(ctx, ns2)
	cErr, ok := err.(*ConflictError)
	if !ok {
		t.Fatalf("ScheduleOne() error = %v, want *ConflictError", err)
	}
	if len(cErr.Sessions) != 1 || cErr.Sessions[0].ID != sess.ID {
		t.Errorf("ConflictError.Sessions = %+v, want [%s]", cErr.Sessions, sess.ID)
	}
	if len(repo.sessions) != 1 {
		t.Errorf("rejected session was persisted; pool has %d sessions", len(repo.sessions))
	}

	// unknown template
	if _, err = svc.ScheduleOne(ctx, NewSession{TemplateID: "nope", Date: ns.Date, StartTime: "09:00", EndTime: "10:00"}); err != ErrNotFound {
		t.Errorf("ScheduleOne() error = %v, want %v", err, ErrNotFound)
	}

	// an explicit location override must exist
	ns3 := ns
	ns3.Date, ns3.LocationID = date(2024, 3, 21), "room-99"
	if _, err = svc.ScheduleOne(ctx, ns3); !isLocationFieldError(err) {
		t.Errorf("ScheduleOne() error = %v, want location_id validation error", err)
	}
	ns3.LocationID = "room-12"
	if sess, err = svc.ScheduleOne(ctx, ns3); err != nil {
		t.Fatalf("ScheduleOne() failed: %v", err)
	} else if sess.LocationID != "room-12" {
		t.Errorf("location = %q, want override %q", sess.LocationID, "room-12")
	}
}

func isLocationFieldError(err error) bool {
	vErr, ok := err.(*core.ValidationError)
	return ok && len(vErr.Fields) == 1 && vErr.Fields[0].Field == "location_id"
}

func TestServiceScheduleRecurring(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	// pre-existing session blocks the Wednesday occurrence
	_, err := svc.ScheduleOne(ctx, NewSession{
		TemplateID: "tpl-1",
		Date:       date(2024, 3, 20), // Wed
		StartTime:  "10:00",
		EndTime:    "11:00",
	})
	if err != nil {
		t.Fatalf("ScheduleOne() failed: %v", err)
	}

	res, err := svc.ScheduleRecurring(ctx, RecurrenceSpec{
		TemplateID:     "tpl-1",
		DaysOfWeek:     []time.Weekday{time.Monday, time.Wednesday},
		StartTime:      "09:00",
		EndTime:        "10:30",
		DateRangeStart: date(2024, 3, 18),
		DateRangeEnd:   date(2024, 3, 22),
	})
	if err != nil {
		t.Fatalf("ScheduleRecurring() failed: %v", err)
	}

	if len(res.Accepted) != 1 {
		t.Fatalf("accepted %d, want 1", len(res.Accepted))
	}
	if !res.Accepted[0].Date.Equal(date(2024, 3, 18)) {
		t.Errorf("accepted date = %v, want Monday 2024-03-18", res.Accepted[0].Date)
	}
	if res.Accepted[0].ID == "" {
		t.Error("accepted session was not committed")
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("rejected %d, want 1", len(res.Rejected))
	}
	if res.Rejected[0].Reason != RejectReasonConflict {
		t.Errorf("rejected reason = %q, want %q", res.Rejected[0].Reason, RejectReasonConflict)
	}
	if !res.Rejected[0].ConflictingDate.Equal(date(2024, 3, 20)) {
		t.Errorf("conflicting date = %v, want 2024-03-20", res.Rejected[0].ConflictingDate)
	}

	// 1 pre-existing + 1 accepted
	if len(repo.sessions) != 2 {
		t.Errorf("pool has %d sessions, want 2", len(repo.sessions))
	}
}

func TestServiceCancelDispatchesNotification(t *testing.T) {
	svc, _, mailSvc := setupService(t)
	ctx := context.Background()

	sess, err := svc.ScheduleOne(ctx, NewSession{
		TemplateID: "tpl-1",
		Date:       date(2024, 3, 20),
		StartTime:  "09:00",
		EndTime:    "10:30",
	})
	if err != nil {
		t.Fatalf("ScheduleOne() failed: %v", err)
	}

	got, err := svc.Cancel(ctx, sess.ID, "Teacher unavailable")
	if err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	if got.Status != StatusCancelled || got.CancellationNote != "Teacher unavailable" {
		t.Errorf("Cancel() = %+v, want cancelled with note", got)
	}
	if len(mailSvc.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(mailSvc.sent))
	}

	// a second cancel must fail and must not re-notify
	if _, err = svc.Cancel(ctx, sess.ID, "again"); err != ErrInvalidTransition {
		t.Errorf("second Cancel() error = %v, want %v", err, ErrInvalidTransition)
	}
	if len(mailSvc.sent) != 1 {
		t.Errorf("sent %d messages after failed cancel, want still 1", len(mailSvc.sent))
	}
}

func TestServiceCompleteAndDelete(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	sess, err := svc.ScheduleOne(ctx, NewSession{
		TemplateID: "tpl-1",
		Date:       date(2024, 3, 20),
		StartTime:  "09:00",
		EndTime:    "10:30",
	})
	if err != nil {
		t.Fatalf("ScheduleOne() failed: %v", err)
	}

	got, err := svc.Complete(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", got.Status, StatusCompleted)
	}

	// terminal: no further transitions, edits refused
	if _, err = svc.Complete(ctx, sess.ID); err != ErrInvalidTransition {
		t.Errorf("Complete() again error = %v, want %v", err, ErrInvalidTransition)
	}
	if _, err = svc.Edit(ctx, sess.ID, UpdateSession{StartTime: "11:00", EndTime: "12:00"}); err != ErrInvalidTransition {
		t.Errorf("Edit() error = %v, want %v", err, ErrInvalidTransition)
	}

	// delete is allowed from any status
	if err = svc.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if len(repo.sessions) != 0 {
		t.Errorf("pool has %d sessions after delete, want 0", len(repo.sessions))
	}

	if _, err = svc.Complete(ctx, "missing"); err != ErrNotFound {
		t.Errorf("Complete(missing) error = %v, want %v", err, ErrNotFound)
	}
}

func TestServiceEdit(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.ScheduleOne(ctx, NewSession{
		TemplateID: "tpl-1",
		Date:       date(2024, 3, 20),
		StartTime:  "09:00",
		EndTime:    "10:30",
	})
	if err != nil {
		t.Fatalf("ScheduleOne() failed: %v", err)
	}
	second, err := svc.ScheduleOne(ctx, NewSession{
		TemplateID: "tpl-1",
		Date:       date(2024, 3, 20),
		StartTime:  "11:00",
		EndTime:    "12:00",
	})
	if err != nil {
		t.Fatalf("ScheduleOne() failed: %v", err)
	}

	// moving into the other session's window is refused
	if _, err = svc.Edit(ctx, second.ID, UpdateSession{StartTime: "10:00", EndTime: "11:00"}); err == nil {
		t.Fatal("Edit() into occupied window succeeded")
	} else if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("Edit() error = %v, want *ConflictError", err)
	}

	// shrinking within its own window is fine
	got, err := svc.Edit(ctx, first.ID, UpdateSession{StartTime: "09:30"})
	if err != nil {
		t.Fatalf("Edit() failed: %v", err)
	}
	if got.StartTime != "09:30" {
		t.Errorf("start = %s, want 09:30", got.StartTime)
	}

	// moving to an unknown room is refused
	if _, err = svc.Edit(ctx, first.ID, UpdateSession{LocationID: "room-99"}); !isLocationFieldError(err) {
		t.Errorf("Edit() error = %v, want location_id validation error", err)
	}
}

func TestServiceQueries(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.ScheduleRecurring(ctx, RecurrenceSpec{
		TemplateID:     "tpl-1",
		DaysOfWeek:     []time.Weekday{time.Monday, time.Wednesday},
		StartTime:      "09:00",
		EndTime:        "10:30",
		DateRangeStart: date(2024, 3, 18),
		DateRangeEnd:   date(2024, 3, 29),
	})
	if err != nil {
		t.Fatalf("ScheduleRecurring() failed: %v", err)
	}

	byDate, err := svc.ByDate(ctx, date(2024, 3, 20))
	if err != nil {
		t.Fatalf("ByDate() failed: %v", err)
	}
	if len(byDate) != 1 {
		t.Errorf("ByDate() returned %d sessions, want 1", len(byDate))
	}

	month, err := svc.TeacherMonth(ctx, genTemplate.TeacherID, 2024, time.March)
	if err != nil {
		t.Fatalf("TeacherMonth() failed: %v", err)
	}
	if len(month) != 4 { // Mon 18, Wed 20, Mon 25, Wed 27
		t.Errorf("TeacherMonth() returned %d sessions, want 4", len(month))
	}

	all, err := svc.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Query() returned %d sessions, want 4", len(all))
	}

	filtered, err := svc.Query(ctx, QueryFilter{Search: "mathematics"})
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(filtered) != 4 {
		t.Errorf("Query(search) returned %d sessions, want 4", len(filtered))
	}
}
