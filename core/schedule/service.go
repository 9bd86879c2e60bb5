package schedule

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

type (
	// Repository supplies session pool snapshots and persists committed
	// sessions. It also acts as the reference-data provider for class
	// templates and locations, which the engine treats as read-only
	// snapshots valid for the duration of one operation.
	Repository interface {
		QuerySessions(ctx context.Context) ([]Session, error)
		GetSession(ctx context.Context, id string) (Session, error)
		CreateSessions(ctx context.Context, sessions ...Session) ([]Session, error)
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		DeleteSessionsByID(ctx context.Context, ids ...string) error

		GetClassTemplate(ctx context.Context, id string) (ClassTemplate, error)
		QueryClassTemplates(ctx context.Context) ([]ClassTemplate, error)
		GetLocation(ctx context.Context, id string) (Location, error)
		QueryLocations(ctx context.Context) ([]Location, error)
	}

	Service interface {
		// ScheduleOne creates a single session after checking teacher
		// conflicts against a fresh pool snapshot.
		ScheduleOne(ctx context.Context, ns NewSession) (Session, error)
		// ScheduleRecurring fans a RecurrenceSpec out into dated sessions
		// and commits the conflict-free ones. A per-candidate conflict does
		// not fail the batch; both partitions are returned.
		ScheduleRecurring(ctx context.Context, spec RecurrenceSpec) (BulkResult, error)
		Complete(ctx context.Context, id string) (Session, error)
		// Cancel transitions the session to cancelled and dispatches the
		// cancellation notification.
		Cancel(ctx context.Context, id, note string) (Session, error)
		Edit(ctx context.Context, id string, upd UpdateSession) (Session, error)
		Delete(ctx context.Context, ids ...string) error

		GetByID(ctx context.Context, id string) (Session, error)
		Query(ctx context.Context, filter QueryFilter) ([]Session, error)
		ByDate(ctx context.Context, date time.Time) ([]Session, error)
		TeacherMonth(ctx context.Context, teacherID string, year int, month time.Month) ([]Session, error)

		QueryClassTemplates(ctx context.Context) ([]ClassTemplate, error)
		QueryLocations(ctx context.Context) ([]Location, error)
	}

	service struct {
		repo       Repository
		dispatcher *Dispatcher
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, dispatcher *Dispatcher, logger core.Logger) Service {
	return &service{repo: repo, dispatcher: dispatcher, logger: logger}
}

func (svc *service) ScheduleOne(ctx context.Context, ns NewSession) (Session, error) {
	tmpl, err := svc.repo.GetClassTemplate(ctx, ns.TemplateID)
	if err != nil {
		return Session{}, err
	}

	locID := ns.LocationID
	if locID == "" {
		locID = tmpl.LocationID
	} else if _, err = svc.repo.GetLocation(ctx, locID); err != nil {
		if err == ErrNotFound {
			return Session{}, core.NewValidationError(err, core.FieldError{Field: "location_id", Error: "unknown location"})
		}
		return Session{}, errors.Wrap(err, "finding location")
	}
	cand := Session{
		TemplateID:   tmpl.ID,
		TeacherID:    tmpl.TeacherID,
		TeacherName:  tmpl.TeacherName,
		LocationID:   locID,
		ClassName:    tmpl.ClassName,
		Subject:      tmpl.Subject,
		Capacity:     tmpl.Capacity,
		StudentCount: tmpl.Enrolled,
		Date:         DateOnly(ns.Date),
		StartTime:    ns.StartTime,
		EndTime:      ns.EndTime,
		Status:       StatusScheduled,
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    ns.CreatedBy,
	}

	pool, err := svc.repo.QuerySessions(ctx)
	if err != nil {
		return Session{}, errors.Wrap(err, "querying session pool")
	}
	if conflicts := FindConflicts(pool, cand, ""); len(conflicts) > 0 {
		return Session{}, &ConflictError{Sessions: conflicts}
	}

	created, err := svc.repo.CreateSessions(ctx, cand)
	if err != nil {
		return Session{}, errors.Wrap(err, "creating session")
	}
	return created[0], nil
}

func (svc *service) ScheduleRecurring(ctx context.Context, spec RecurrenceSpec) (BulkResult, error) {
	tmpl, err := svc.repo.GetClassTemplate(ctx, spec.TemplateID)
	if err != nil {
		return BulkResult{}, err
	}
	spec.Template = tmpl

	candidates, err := Generate(spec)
	if err != nil {
		return BulkResult{}, err
	}

	pool, err := svc.repo.QuerySessions(ctx)
	if err != nil {
		return BulkResult{}, errors.Wrap(err, "querying session pool")
	}
	res := FilterBulk(pool, candidates)

	if len(res.Accepted) > 0 {
		now := time.Now().UTC()
		for i := range res.Accepted {
			res.Accepted[i].CreatedAt = now
		}
		if res.Accepted, err = svc.repo.CreateSessions(ctx, res.Accepted...); err != nil {
			return BulkResult{}, errors.Wrap(err, "creating sessions")
		}
	}
	return res, nil
}

func (svc *service) Complete(ctx context.Context, id string) (Session, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess, err = Complete(sess); err != nil {
		return Session{}, err
	}
	return svc.repo.UpdateSession(ctx, sess)
}

func (svc *service) Cancel(ctx context.Context, id, note string) (Session, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess, evt, err := Cancel(sess, note)
	if err != nil {
		return Session{}, err
	}
	if sess, err = svc.repo.UpdateSession(ctx, sess); err != nil {
		return Session{}, errors.Wrap(err, "saving cancelled session")
	}

	// notification is fire-and-forget: a dispatch failure does not undo
	// the cancellation.
	if err = svc.dispatcher.DispatchCancellation(ctx, evt); err != nil {
		svc.logger.Error("dispatching cancellation notification", err)
	}
	return sess, nil
}

func (svc *service) Edit(ctx context.Context, id string, upd UpdateSession) (Session, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if upd.LocationID != "" {
		if _, err = svc.repo.GetLocation(ctx, upd.LocationID); err != nil {
			if err == ErrNotFound {
				return Session{}, core.NewValidationError(err, core.FieldError{Field: "location_id", Error: "unknown location"})
			}
			return Session{}, errors.Wrap(err, "finding location")
		}
	}
	pool, err := svc.repo.QuerySessions(ctx)
	if err != nil {
		return Session{}, errors.Wrap(err, "querying session pool")
	}
	if sess, err = ApplyEdit(pool, sess, upd); err != nil {
		return Session{}, err
	}
	return svc.repo.UpdateSession(ctx, sess)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSessionsByID(ctx, ids...)
}

func (svc *service) GetByID(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSession(ctx, id)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Session, error) {
	pool, err := svc.repo.QuerySessions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying session pool")
	}
	if filter.IsEmpty() {
		return pool, nil
	}
	return NewIndex(pool).Filter(filter), nil
}

func (svc *service) ByDate(ctx context.Context, date time.Time) ([]Session, error) {
	pool, err := svc.repo.QuerySessions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying session pool")
	}
	return NewIndex(pool).ByDate(date), nil
}

func (svc *service) TeacherMonth(ctx context.Context, teacherID string, year int, month time.Month) ([]Session, error) {
	pool, err := svc.repo.QuerySessions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying session pool")
	}
	return NewIndex(pool).ByTeacherAndMonth(teacherID, year, month), nil
}

func (svc *service) QueryClassTemplates(ctx context.Context) ([]ClassTemplate, error) {
	return svc.repo.QueryClassTemplates(ctx)
}

func (svc *service) QueryLocations(ctx context.Context) ([]Location, error) {
	return svc.repo.QueryLocations(ctx)
}
