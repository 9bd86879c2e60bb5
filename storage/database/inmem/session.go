package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/core/user"
)

type sessionRepository struct {
	db *DB
}

var (
	_ schedule.Repository = (*sessionRepository)(nil)
	_ schedule.Roster     = (*sessionRepository)(nil)
)

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) QuerySessions(context.Context) ([]schedule.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := make([]schedule.Session, 0, len(repo.db.sessions))
	for _, s := range repo.db.sessions {
		sessions = append(sessions, *s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].Date.Before(sessions[j].Date)
		}
		return sessions[i].StartTime < sessions[j].StartTime
	})
	return sessions, nil
}

func (repo *sessionRepository) GetSession(_ context.Context, id string) (schedule.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.sessions[id]; ok {
		return *s, nil
	}
	return schedule.Session{}, schedule.ErrNotFound
}

func (repo *sessionRepository) CreateSessions(_ context.Context, sessions ...schedule.Session) ([]schedule.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	out := make([]schedule.Session, 0, len(sessions))
	for _, s := range sessions {
		sess := s // do not alias the loop variable
		sess.ID = uuid.New().String()
		repo.db.sessions[sess.ID] = &sess
		out = append(out, sess)
	}
	return out, nil
}

func (repo *sessionRepository) UpdateSession(_ context.Context, sess schedule.Session) (schedule.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.sessions[sess.ID]; !ok {
		return schedule.Session{}, schedule.ErrNotFound
	}
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) DeleteSessionsByID(_ context.Context, ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.sessions, id)
	}
	return nil
}

func (repo *sessionRepository) GetClassTemplate(_ context.Context, id string) (schedule.ClassTemplate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tpl, ok := repo.db.templates[id]; ok {
		return *tpl, nil
	}
	return schedule.ClassTemplate{}, schedule.ErrNotFound
}

func (repo *sessionRepository) QueryClassTemplates(context.Context) ([]schedule.ClassTemplate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	templates := make([]schedule.ClassTemplate, 0, len(repo.db.templates))
	for _, tpl := range repo.db.templates {
		templates = append(templates, *tpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ClassName < templates[j].ClassName })
	return templates, nil
}

func (repo *sessionRepository) GetLocation(_ context.Context, id string) (schedule.Location, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if loc, ok := repo.db.locations[id]; ok {
		return *loc, nil
	}
	return schedule.Location{}, schedule.ErrNotFound
}

func (repo *sessionRepository) QueryLocations(context.Context) ([]schedule.Location, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	locations := make([]schedule.Location, 0, len(repo.db.locations))
	for _, loc := range repo.db.locations {
		locations = append(locations, *loc)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].Name < locations[j].Name })
	return locations, nil
}

// ListEnrolledStudents implements schedule.Roster.
func (repo *sessionRepository) ListEnrolledStudents(_ context.Context, templateID string) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := repo.db.enrollments[templateID]
	students := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := repo.db.users[id]; ok {
			students = append(students, *u)
		}
	}
	return students, nil
}
