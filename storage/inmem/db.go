// Package inmemdb provides map-backed repositories. They exist for tests
// and local hacking; all data is lost on process exit.
package inmemdb

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/assignment"
	"github.com/trezcool/elimu/core/contact"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/discussion"
	"github.com/trezcool/elimu/core/notification"
	"github.com/trezcool/elimu/core/user"
)

type (
	DB struct {
		user         *userTable
		course       *courseTable
		assignment   *assignmentTable
		thread       *threadTable
		notification *notificationTable
		contact      *contactTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User // keyed by clerk id
	}

	courseTable struct {
		sync.RWMutex
		table map[primitive.ObjectID]*course.Course
	}

	assignmentTable struct {
		sync.RWMutex
		table map[primitive.ObjectID]*assignment.Assignment
	}

	threadTable struct {
		sync.RWMutex
		table map[primitive.ObjectID]*discussion.Thread
	}

	notificationTable struct {
		sync.RWMutex
		table map[primitive.ObjectID]*notification.Notification
	}

	contactTable struct {
		sync.RWMutex
		table map[primitive.ObjectID]*contact.Message
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		course:       &courseTable{table: make(map[primitive.ObjectID]*course.Course)},
		assignment:   &assignmentTable{table: make(map[primitive.ObjectID]*assignment.Assignment)},
		thread:       &threadTable{table: make(map[primitive.ObjectID]*discussion.Thread)},
		notification: &notificationTable{table: make(map[primitive.ObjectID]*notification.Notification)},
		contact:      &contactTable{table: make(map[primitive.ObjectID]*contact.Message)},
	}
	return db, nil
}

// Reset drops everything; test isolation only.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.course.Lock()
	db.course.table = make(map[primitive.ObjectID]*course.Course)
	db.course.Unlock()

	db.assignment.Lock()
	db.assignment.table = make(map[primitive.ObjectID]*assignment.Assignment)
	db.assignment.Unlock()

	db.thread.Lock()
	db.thread.table = make(map[primitive.ObjectID]*discussion.Thread)
	db.thread.Unlock()

	db.notification.Lock()
	db.notification.table = make(map[primitive.ObjectID]*notification.Notification)
	db.notification.Unlock()

	db.contact.Lock()
	db.contact.table = make(map[primitive.ObjectID]*contact.Message)
	db.contact.Unlock()
}
