package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/core/user"
)

type sessionRepository struct {
	db core.DB
}

// interface compliance checks
var (
	_ schedule.Repository = (*sessionRepository)(nil)
	_ schedule.Roster     = (*sessionRepository)(nil)
)

func NewSessionRepository(db core.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

// dbSession is the sessions table row.
type dbSession struct {
	ID               string      `db:"id"`
	TemplateID       null.String `db:"template_id"`
	TeacherID        string      `db:"teacher_id"`
	TeacherName      string      `db:"teacher_name"`
	LocationID       string      `db:"location_id"`
	ClassName        string      `db:"class_name"`
	Subject          string      `db:"subject"`
	Capacity         int         `db:"capacity"`
	StudentCount     int         `db:"student_count"`
	Date             time.Time   `db:"date"`
	StartTime        string      `db:"start_time"`
	EndTime          string      `db:"end_time"`
	Status           string      `db:"status"`
	CancellationNote null.String `db:"cancellation_note"`
	CreatedAt        time.Time   `db:"created_at"`
	CreatedBy        null.String `db:"created_by"`
}

func (repo *sessionRepository) row(sess schedule.Session) dbSession {
	return dbSession{
		ID:               sess.ID,
		TemplateID:       null.NewString(sess.TemplateID, sess.TemplateID != ""),
		TeacherID:        sess.TeacherID,
		TeacherName:      sess.TeacherName,
		LocationID:       sess.LocationID,
		ClassName:        sess.ClassName,
		Subject:          sess.Subject,
		Capacity:         sess.Capacity,
		StudentCount:     sess.StudentCount,
		Date:             schedule.DateOnly(sess.Date),
		StartTime:        string(sess.StartTime),
		EndTime:          string(sess.EndTime),
		Status:           string(sess.Status),
		CancellationNote: null.NewString(sess.CancellationNote, sess.CancellationNote != ""),
		CreatedAt:        sess.CreatedAt.UTC(),
		CreatedBy:        null.NewString(sess.CreatedBy, sess.CreatedBy != ""),
	}
}

func (repo *sessionRepository) unrow(s dbSession) schedule.Session {
	return schedule.Session{
		ID:               s.ID,
		TemplateID:       s.TemplateID.String,
		TeacherID:        s.TeacherID,
		TeacherName:      s.TeacherName,
		LocationID:       s.LocationID,
		ClassName:        s.ClassName,
		Subject:          s.Subject,
		Capacity:         s.Capacity,
		StudentCount:     s.StudentCount,
		Date:             schedule.DateOnly(s.Date),
		StartTime:        schedule.ClockTime(s.StartTime),
		EndTime:          schedule.ClockTime(s.EndTime),
		Status:           schedule.Status(s.Status),
		CancellationNote: s.CancellationNote.String,
		CreatedAt:        s.CreatedAt,
		CreatedBy:        s.CreatedBy.String,
	}
}

func (repo *sessionRepository) unrowSlice(rows []dbSession) []schedule.Session {
	sessions := make([]schedule.Session, 0, len(rows))
	for _, s := range rows {
		sessions = append(sessions, repo.unrow(s))
	}
	return sessions
}

// trapNoRowsErr maps psql "no rows" err to schedule.ErrNotFound
func (repo *sessionRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return schedule.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *sessionRepository) QuerySessions(ctx context.Context) ([]schedule.Session, error) {
	var rows []dbSession
	query := `SELECT * FROM sessions ORDER BY date, start_time`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "retrieving sessions")
	}
	return repo.unrowSlice(rows), nil
}

func (repo *sessionRepository) GetSession(ctx context.Context, id string) (schedule.Session, error) {
	var row dbSession
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM sessions WHERE id = $1`, id); err != nil {
		return schedule.Session{}, repo.trapNoRowsErr(err, "retrieving session")
	}
	return repo.unrow(row), nil
}

func (repo *sessionRepository) CreateSessions(ctx context.Context, sessions ...schedule.Session) ([]schedule.Session, error) {
	if len(sessions) == 0 {
		return nil, nil
	}

	query := `
INSERT INTO sessions (id, template_id, teacher_id, teacher_name, location_id, class_name, subject,
                      capacity, student_count, date, start_time, end_time, status, cancellation_note,
                      created_at, created_by)
VALUES (:id, :template_id, :teacher_id, :teacher_name, :location_id, :class_name, :subject,
        :capacity, :student_count, :date, :start_time, :end_time, :status, :cancellation_note,
        :created_at, :created_by)`

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "starting transaction")
	}

	created := make([]schedule.Session, 0, len(sessions))
	for _, sess := range sessions {
		sess.ID = uuid.New().String()
		if _, err = tx.NamedExecContext(ctx, query, repo.row(sess)); err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrap(err, "creating session")
		}
		created = append(created, sess)
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing sessions")
	}
	return created, nil
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, sess schedule.Session) (schedule.Session, error) {
	query := `
UPDATE sessions
SET location_id = :location_id, date = :date, start_time = :start_time, end_time = :end_time,
    status = :status, cancellation_note = :cancellation_note
WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, repo.row(sess))
	if err != nil {
		return schedule.Session{}, errors.Wrap(err, "updating session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.Session{}, schedule.ErrNotFound
	}
	return sess, nil
}

func (repo *sessionRepository) DeleteSessionsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return nil
}

// dbClassTemplate is the class_templates table row.
type dbClassTemplate struct {
	ID          string `db:"id"`
	ClassName   string `db:"class_name"`
	Subject     string `db:"subject"`
	TeacherID   string `db:"teacher_id"`
	TeacherName string `db:"teacher_name"`
	LocationID  string `db:"location_id"`
	Capacity    int    `db:"capacity"`
	Enrolled    int    `db:"enrolled"`
}

func (repo *sessionRepository) unrowTemplate(t dbClassTemplate) schedule.ClassTemplate {
	return schedule.ClassTemplate(t)
}

func (repo *sessionRepository) GetClassTemplate(ctx context.Context, id string) (schedule.ClassTemplate, error) {
	var row dbClassTemplate
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM class_templates WHERE id = $1`, id); err != nil {
		return schedule.ClassTemplate{}, repo.trapNoRowsErr(err, "retrieving class template")
	}
	return repo.unrowTemplate(row), nil
}

func (repo *sessionRepository) QueryClassTemplates(ctx context.Context) ([]schedule.ClassTemplate, error) {
	var rows []dbClassTemplate
	query := `SELECT * FROM class_templates ORDER BY class_name`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "retrieving class templates")
	}
	templates := make([]schedule.ClassTemplate, 0, len(rows))
	for _, t := range rows {
		templates = append(templates, repo.unrowTemplate(t))
	}
	return templates, nil
}

func (repo *sessionRepository) GetLocation(ctx context.Context, id string) (schedule.Location, error) {
	var loc schedule.Location
	query := `SELECT id, name, room FROM locations WHERE id = $1`
	if err := repo.db.GetContext(ctx, &loc, query, id); err != nil {
		return schedule.Location{}, repo.trapNoRowsErr(err, "retrieving location")
	}
	return loc, nil
}

func (repo *sessionRepository) QueryLocations(ctx context.Context) ([]schedule.Location, error) {
	var locations []schedule.Location
	query := `SELECT id, name, room FROM locations ORDER BY name`
	if err := repo.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, errors.Wrap(err, "retrieving locations")
	}
	return locations, nil
}

func (repo *sessionRepository) ListEnrolledStudents(ctx context.Context, templateID string) ([]user.User, error) {
	var rows []dbUser
	query := `
SELECT u.* FROM users u
JOIN enrollments e ON e.student_id = u.id
WHERE e.template_id = $1 AND u.is_active = TRUE
ORDER BY u.created_at`
	if err := repo.db.SelectContext(ctx, &rows, query, templateID); err != nil {
		return nil, errors.Wrap(err, "retrieving enrolled students")
	}
	users := make([]user.User, 0, len(rows))
	for _, u := range rows {
		users = append(users, user.User{
			ID:       u.ID,
			Name:     u.Name,
			Username: u.Username,
			Email:    u.Email,
			IsActive: u.IsActive.Ptr(),
			Roles:    u.Roles,
		})
	}
	return users, nil
}
