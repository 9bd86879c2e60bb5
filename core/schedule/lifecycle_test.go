package schedule

import (
	"testing"
)

func TestComplete(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		wantErr error
	}{
		{name: "from scheduled", status: StatusScheduled},
		{name: "from completed", status: StatusCompleted, wantErr: ErrInvalidTransition},
		{name: "from cancelled", status: StatusCancelled, wantErr: ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := mkSession("s1", "t1", date(2024, 3, 20), "09:00", "10:30", tt.status)
			got, err := Complete(sess)
			if err != tt.wantErr {
				t.Fatalf("Complete() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if got.Status != tt.status {
					t.Errorf("status changed on failed transition: %q", got.Status)
				}
				return
			}
			if got.Status != StatusCompleted {
				t.Errorf("Complete() status = %q, want %q", got.Status, StatusCompleted)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		note     string
		wantNote string
		wantErr  error
	}{
		{name: "with note", status: StatusScheduled, note: "Teacher unavailable", wantNote: "Teacher unavailable"},
		{name: "note is trimmed", status: StatusScheduled, note: "  sports day  ", wantNote: "sports day"},
		{name: "empty note", status: StatusScheduled, note: "", wantErr: ErrEmptyNote},
		{name: "whitespace note", status: StatusScheduled, note: "   ", wantErr: ErrEmptyNote},
		{name: "already completed", status: StatusCompleted, note: "too late", wantErr: ErrInvalidTransition},
		{name: "already cancelled", status: StatusCancelled, note: "again", wantErr: ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := mkSession("s1", "t1", date(2024, 3, 20), "09:00", "10:30", tt.status)
			got, evt, err := Cancel(sess, tt.note)
			if err != tt.wantErr {
				t.Fatalf("Cancel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				// the session must be untouched on failure
				if got.Status != tt.status || got.CancellationNote != "" {
					t.Errorf("session mutated on failed Cancel(): %+v", got)
				}
				return
			}
			if got.Status != StatusCancelled {
				t.Errorf("Cancel() status = %q, want %q", got.Status, StatusCancelled)
			}
			if got.CancellationNote != tt.wantNote {
				t.Errorf("Cancel() note = %q, want %q", got.CancellationNote, tt.wantNote)
			}
			if evt.Note != tt.wantNote || evt.Session.ID != sess.ID {
				t.Errorf("Cancel() event = %+v, want note %q for session %q", evt, tt.wantNote, sess.ID)
			}
		})
	}
}

func TestApplyEdit(t *testing.T) {
	d := date(2024, 3, 20)
	pool := []Session{
		mkSession("s1", "t1", d, "09:00", "10:30", StatusScheduled),
		mkSession("s2", "t1", d, "11:00", "12:00", StatusScheduled),
	}

	t.Run("moves within free window", func(t *testing.T) {
		got, err := ApplyEdit(pool, pool[0], UpdateSession{StartTime: "08:00", EndTime: "09:00"})
		if err != nil {
			t.Fatalf("ApplyEdit() failed: %v", err)
		}
		if got.StartTime != "08:00" || got.EndTime != "09:00" {
			t.Errorf("ApplyEdit() = %s-%s, want 08:00-09:00", got.StartTime, got.EndTime)
		}
	})

	t.Run("overlapping itself is not a conflict", func(t *testing.T) {
		if _, err := ApplyEdit(pool, pool[0], UpdateSession{StartTime: "09:30"}); err != nil {
			t.Fatalf("ApplyEdit() failed: %v", err)
		}
	})

	t.Run("collision carries the colliding sessions", func(t *testing.T) {
		_, err := ApplyEdit(pool, pool[0], UpdateSession{StartTime: "10:30", EndTime: "11:30"})
		cErr, ok := err.(*ConflictError)
		if !ok {
			t.Fatalf("ApplyEdit() error = %v, want *ConflictError", err)
		}
		if len(cErr.Sessions) != 1 || cErr.Sessions[0].ID != "s2" {
			t.Errorf("ConflictError.Sessions = %+v, want [s2]", cErr.Sessions)
		}
	})

	t.Run("date move re-validates on the new date", func(t *testing.T) {
		newDate := date(2024, 3, 21)
		got, err := ApplyEdit(pool, pool[1], UpdateSession{Date: &newDate})
		if err != nil {
			t.Fatalf("ApplyEdit() failed: %v", err)
		}
		if !got.Date.Equal(newDate) {
			t.Errorf("ApplyEdit() date = %v, want %v", got.Date, newDate)
		}
	})

	t.Run("invalid resulting range", func(t *testing.T) {
		if _, err := ApplyEdit(pool, pool[0], UpdateSession{EndTime: "08:00"}); err != ErrInvalidRange {
			t.Errorf("ApplyEdit() error = %v, want %v", err, ErrInvalidRange)
		}
	})

	t.Run("terminal states cannot be edited", func(t *testing.T) {
		for _, status := range []Status{StatusCompleted, StatusCancelled} {
			sess := mkSession("s9", "t1", d, "15:00", "16:00", status)
			if _, err := ApplyEdit(pool, sess, UpdateSession{StartTime: "16:00"}); err != ErrInvalidTransition {
				t.Errorf("ApplyEdit() from %q error = %v, want %v", status, err, ErrInvalidTransition)
			}
		}
	})
}

func TestStatus(t *testing.T) {
	for _, s := range []Status{StatusScheduled, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("Status(%q).Valid() = false", s)
		}
	}
	if Status("postponed").Valid() {
		t.Error(`Status("postponed").Valid() = true`)
	}
	if StatusScheduled.Terminal() {
		t.Error("scheduled must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
}
