package inmemdb

import (
	"context"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/contact"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/event"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/maintenance"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/push"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/theme"
)

// event

type eventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	r.db.events[ev.ID] = &ev
	return ev, nil
}

func (r *eventRepository) GetEventByID(_ context.Context, id, schoolID string) (event.Event, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if ev, ok := r.db.events[id]; ok && ev.IsActive && (schoolID == "" || ev.SchoolID == schoolID) {
		return *ev, nil
	}
	return event.Event{}, event.ErrNotFound
}

func (r *eventRepository) QueryEvents(_ context.Context, schoolID string) ([]event.Event, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]event.Event, 0)
	for _, ev := range r.db.events {
		if ev.IsActive && (schoolID == "" || ev.SchoolID == schoolID) {
			res = append(res, *ev)
		}
	}
	return res, nil
}

func (r *eventRepository) UpdateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.events[ev.ID]; !ok {
		return event.Event{}, event.ErrNotFound
	}
	r.db.events[ev.ID] = &ev
	return ev, nil
}

// contact

type contactRepository struct {
	db *DB
}

func NewContactRepository(db *DB) contact.Repository {
	return &contactRepository{db: db}
}

func (r *contactRepository) CreateContact(_ context.Context, c contact.Contact) (contact.Contact, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	r.db.contacts[c.ID] = &c
	return c, nil
}

func (r *contactRepository) GetContactByID(_ context.Context, id, schoolID string) (contact.Contact, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if c, ok := r.db.contacts[id]; ok && (schoolID == "" || c.SchoolID == schoolID) {
		return *c, nil
	}
	return contact.Contact{}, contact.ErrNotFound
}

func (r *contactRepository) QueryContacts(_ context.Context, schoolID, status string) ([]contact.Contact, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]contact.Contact, 0)
	for _, c := range r.db.contacts {
		if schoolID != "" && c.SchoolID != schoolID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		res = append(res, *c)
	}
	return res, nil
}

func (r *contactRepository) UpdateContact(_ context.Context, c contact.Contact) (contact.Contact, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.contacts[c.ID]; !ok {
		return contact.Contact{}, contact.ErrNotFound
	}
	r.db.contacts[c.ID] = &c
	return c, nil
}

// theme

type themeRepository struct {
	db *DB
}

func NewThemeRepository(db *DB) theme.Repository {
	return &themeRepository{db: db}
}

func (r *themeRepository) CreateTheme(_ context.Context, t theme.Theme) (theme.Theme, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	r.db.themes[t.ID] = &t
	return t, nil
}

func (r *themeRepository) GetThemeByID(_ context.Context, id, schoolID string) (theme.Theme, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if t, ok := r.db.themes[id]; ok && (schoolID == "" || t.SchoolID == schoolID) {
		return *t, nil
	}
	return theme.Theme{}, theme.ErrNotFound
}

func (r *themeRepository) QueryThemes(_ context.Context, schoolID string) ([]theme.Theme, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]theme.Theme, 0)
	for _, t := range r.db.themes {
		if schoolID == "" || t.SchoolID == schoolID {
			res = append(res, *t)
		}
	}
	return res, nil
}

func (r *themeRepository) UpdateTheme(_ context.Context, t theme.Theme) (theme.Theme, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.themes[t.ID]; !ok {
		return theme.Theme{}, theme.ErrNotFound
	}
	r.db.themes[t.ID] = &t
	return t, nil
}

func (r *themeRepository) DeleteTheme(_ context.Context, id, schoolID string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if t, ok := r.db.themes[id]; ok && (schoolID == "" || t.SchoolID == schoolID) {
		delete(r.db.themes, id)
		return nil
	}
	return theme.ErrNotFound
}

func (r *themeRepository) ClearDefault(_ context.Context, schoolID string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, t := range r.db.themes {
		if t.SchoolID == schoolID {
			t.IsDefault = false
		}
	}
	return nil
}

// push subscriptions

type subscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) push.Repository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) UpsertSubscription(_ context.Context, sub push.Subscription) (push.Subscription, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	r.db.subscriptions[sub.Endpoint] = &sub
	return sub, nil
}

func (r *subscriptionRepository) DeleteSubscriptionByEndpoint(_ context.Context, userID, endpoint string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if sub, ok := r.db.subscriptions[endpoint]; ok && (userID == "" || sub.UserID == userID) {
		delete(r.db.subscriptions, endpoint)
	}
	return nil
}

func (r *subscriptionRepository) QuerySubscriptionsByUsers(_ context.Context, userIDs ...string) ([]push.Subscription, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	want := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		want[id] = struct{}{}
	}
	res := make([]push.Subscription, 0)
	for _, sub := range r.db.subscriptions {
		if _, ok := want[sub.UserID]; ok {
			res = append(res, *sub)
		}
	}
	return res, nil
}

// maintenance singleton

type maintenanceRepository struct {
	db *DB
}

func NewMaintenanceRepository(db *DB) maintenance.Repository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) GetMaintenance(_ context.Context) (maintenance.Maintenance, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if r.db.maintenance == nil {
		return maintenance.Maintenance{}, maintenance.ErrNotFound
	}
	return *r.db.maintenance, nil
}

func (r *maintenanceRepository) SaveMaintenance(_ context.Context, m maintenance.Maintenance) (maintenance.Maintenance, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	r.db.maintenance = &m
	return m, nil
}
