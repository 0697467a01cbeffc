// Package inmemdb is a map-backed storage backend. It backs the test suites
// and DB-less local runs; production uses the gorm backend.
package inmemdb

import (
	"sync"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/class"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/contact"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/event"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/grade"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/maintenance"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/push"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/subject"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/theme"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User
	schools       map[string]*school.School
	classes       map[string]*class.Class
	subjects      map[string]*subject.Subject
	grades        map[string]*grade.Grade
	events        map[string]*event.Event
	contacts      map[string]*contact.Contact
	themes        map[string]*theme.Theme
	subscriptions map[string]*push.Subscription // keyed by endpoint
	maintenance   *maintenance.Maintenance
}

func Open() (*DB, error) {
	db := &DB{
		users:         make(map[string]*user.User),
		schools:       make(map[string]*school.School),
		classes:       make(map[string]*class.Class),
		subjects:      make(map[string]*subject.Subject),
		grades:        make(map[string]*grade.Grade),
		events:        make(map[string]*event.Event),
		contacts:      make(map[string]*contact.Contact),
		themes:        make(map[string]*theme.Theme),
		subscriptions: make(map[string]*push.Subscription),
	}
	return db, nil
}
