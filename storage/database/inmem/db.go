package inmemdb

import (
	"sync"

	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/core/user"
)

// DB is a mutex-guarded in-memory store used in tests and local dev.
type DB struct {
	mutex sync.RWMutex

	users       map[string]*user.User
	sessions    map[string]*schedule.Session
	templates   map[string]*schedule.ClassTemplate
	locations   map[string]*schedule.Location
	enrollments map[string][]string // templateID -> studentIDs
}

func Open() *DB {
	return &DB{
		users:       make(map[string]*user.User),
		sessions:    make(map[string]*schedule.Session),
		templates:   make(map[string]*schedule.ClassTemplate),
		locations:   make(map[string]*schedule.Location),
		enrollments: make(map[string][]string),
	}
}

// Seed helpers for dev/test fixtures.

func (db *DB) SeedClassTemplate(tpl schedule.ClassTemplate) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.templates[tpl.ID] = &tpl
}

func (db *DB) SeedLocation(loc schedule.Location) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.locations[loc.ID] = &loc
}

func (db *DB) SeedEnrollment(templateID string, studentIDs ...string) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.enrollments[templateID] = append(db.enrollments[templateID], studentIDs...)
}
