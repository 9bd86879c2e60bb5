package schedule

import (
	"time"

	"github.com/trezcool/ratiba/core"
)

// Session statuses. The set is closed: a Session is always in exactly one
// of these states and only transitions through Complete/Cancel.
const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Status string

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ClassTemplate is a read-only snapshot of a recurring class definition.
// It is supplied by the reference-data provider and is only valid for the
// duration of one scheduling operation.
type ClassTemplate struct {
	ID          string `json:"id"`
	ClassName   string `json:"class_name"`
	Subject     string `json:"subject"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	LocationID  string `json:"location_id"`
	Capacity    int    `json:"capacity"`
	Enrolled    int    `json:"enrolled"`
}

// Location is a read-only room/venue reference record.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Room string `json:"room"`
}

// Session is one concrete, dated occurrence of a recurring class.
// StartTime/EndTime are same-day wall-clock times; sessions never span
// midnight. StudentCount is an enrollment snapshot taken at creation time.
type Session struct {
	ID               string    `json:"id"`
	TemplateID       string    `json:"template_id"`
	TeacherID        string    `json:"teacher_id"`
	TeacherName      string    `json:"teacher_name"`
	LocationID       string    `json:"location_id"`
	ClassName        string    `json:"class_name"`
	Subject          string    `json:"subject"`
	Capacity         int       `json:"capacity"`
	StudentCount     int       `json:"student_count"`
	Date             time.Time `json:"date"` // calendar date, UTC midnight
	StartTime        ClockTime `json:"start_time"`
	EndTime          ClockTime `json:"end_time"`
	Status           Status    `json:"status"`
	CancellationNote string    `json:"cancellation_note,omitempty"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	CreatedBy        string    `json:"created_by"`
}

// DurationMinutes returns the session's length in minutes.
func (s Session) DurationMinutes() (int, error) {
	return DurationMinutes(s.StartTime, s.EndTime)
}

// OverlapsWith reports whether both sessions occupy intersecting time
// windows on the same calendar date.
func (s Session) OverlapsWith(other Session) bool {
	if !SameDate(s.Date, other.Date) {
		return false
	}
	return Overlaps(s.StartTime, s.EndTime, other.StartTime, other.EndTime)
}

// NewSession contains information needed to schedule a single Session.
type NewSession struct {
	TemplateID string    `json:"template_id" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	StartTime  ClockTime `json:"start_time" validate:"required"`
	EndTime    ClockTime `json:"end_time" validate:"required"`
	LocationID string    `json:"location_id"` // defaults to the template's location
	CreatedBy  string    `json:"-"`
}

func (ns *NewSession) Validate() error {
	ns.TemplateID = core.CleanString(ns.TemplateID)
	ns.LocationID = core.CleanString(ns.LocationID)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}

	var err error
	if ns.StartTime, err = ParseClock(string(ns.StartTime)); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "start_time", Error: err.Error()})
	}
	if ns.EndTime, err = ParseClock(string(ns.EndTime)); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "end_time", Error: err.Error()})
	}
	if _, err = DurationMinutes(ns.StartTime, ns.EndTime); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "end_time", Error: err.Error()})
	}
	return nil
}

// UpdateSession defines what may be modified on a scheduled Session.
// Zero-valued fields keep the session's current value.
type UpdateSession struct {
	Date       *time.Time `json:"date"`
	StartTime  ClockTime  `json:"start_time"`
	EndTime    ClockTime  `json:"end_time"`
	LocationID string     `json:"location_id"`
}

func (us *UpdateSession) Validate() error {
	us.LocationID = core.CleanString(us.LocationID)

	var err error
	if us.StartTime != "" {
		if us.StartTime, err = ParseClock(string(us.StartTime)); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "start_time", Error: err.Error()})
		}
	}
	if us.EndTime != "" {
		if us.EndTime, err = ParseClock(string(us.EndTime)); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "end_time", Error: err.Error()})
		}
	}
	return nil
}

// RecurrenceSpec is the weekly pattern + date range used to fan a recurring
// class out into concrete Sessions. It is generator input only; it is never
// persisted itself.
type RecurrenceSpec struct {
	TemplateID     string         `json:"template_id" validate:"required"`
	DaysOfWeek     []time.Weekday `json:"days_of_week" validate:"required,min=1,max=7,dive,min=0,max=6"`
	StartTime      ClockTime      `json:"start_time" validate:"required"`
	EndTime        ClockTime      `json:"end_time" validate:"required"`
	DateRangeStart time.Time      `json:"date_range_start" validate:"required"`
	DateRangeEnd   time.Time      `json:"date_range_end" validate:"required"`
	CreatedBy      string         `json:"-"`

	// Template is the resolved reference snapshot; set by the service
	// before generation.
	Template ClassTemplate `json:"-"`
}

func (rs *RecurrenceSpec) Validate() error {
	rs.TemplateID = core.CleanString(rs.TemplateID)

	if err := core.Validate.Struct(rs); err != nil {
		return err
	}

	var err error
	if rs.StartTime, err = ParseClock(string(rs.StartTime)); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "start_time", Error: err.Error()})
	}
	if rs.EndTime, err = ParseClock(string(rs.EndTime)); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "end_time", Error: err.Error()})
	}
	if _, err = DurationMinutes(rs.StartTime, rs.EndTime); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "end_time", Error: err.Error()})
	}
	return nil
}

// CancellationEvent is emitted on a successful Cancel transition and feeds
// the notification dispatcher.
type CancellationEvent struct {
	Session Session
	Note    string
}
