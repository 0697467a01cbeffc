package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/contact"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/event"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/maintenance"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/push"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/theme"
)

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) event.Repository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	row := eventRow(ev)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return event.Event{}, err
	}
	return row.domain(), nil
}

func (r *eventRepository) GetEventByID(ctx context.Context, id, schoolID string) (event.Event, error) {
	var row eventRow
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ? AND is_active", id), schoolID)
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}
	return row.domain(), nil
}

func (r *eventRepository) QueryEvents(ctx context.Context, schoolID string) ([]event.Event, error) {
	var rows []eventRow
	q := scopeSchool(r.db.WithContext(ctx).Where("is_active"), schoolID)
	if err := q.Order("starts_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	events := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.domain())
	}
	return events, nil
}

func (r *eventRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	var orig eventRow
	if err := r.db.WithContext(ctx).First(&orig, "id = ?", ev.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}
	row := eventRow(ev)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return event.Event{}, err
	}
	return row.domain(), nil
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) contact.Repository {
	return &contactRepository{db: db}
}

func (r *contactRepository) CreateContact(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	row := contactRow(c)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return contact.Contact{}, err
	}
	return row.domain(), nil
}

func (r *contactRepository) GetContactByID(ctx context.Context, id, schoolID string) (contact.Contact, error) {
	var row contactRow
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ?", id), schoolID)
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contact.Contact{}, contact.ErrNotFound
		}
		return contact.Contact{}, err
	}
	return row.domain(), nil
}

func (r *contactRepository) QueryContacts(ctx context.Context, schoolID, status string) ([]contact.Contact, error) {
	q := scopeSchool(r.db.WithContext(ctx).Model(&contactRow{}), schoolID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []contactRow
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	contacts := make([]contact.Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.domain())
	}
	return contacts, nil
}

func (r *contactRepository) UpdateContact(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	var orig contactRow
	if err := r.db.WithContext(ctx).First(&orig, "id = ?", c.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contact.Contact{}, contact.ErrNotFound
		}
		return contact.Contact{}, err
	}
	row := contactRow(c)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return contact.Contact{}, err
	}
	return row.domain(), nil
}

type themeRepository struct {
	db *gorm.DB
}

func NewThemeRepository(db *gorm.DB) theme.Repository {
	return &themeRepository{db: db}
}

func (r *themeRepository) CreateTheme(ctx context.Context, t theme.Theme) (theme.Theme, error) {
	row := themeRow(t)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return theme.Theme{}, err
	}
	return row.domain(), nil
}

func (r *themeRepository) GetThemeByID(ctx context.Context, id, schoolID string) (theme.Theme, error) {
	var row themeRow
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ?", id), schoolID)
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return theme.Theme{}, theme.ErrNotFound
		}
		return theme.Theme{}, err
	}
	return row.domain(), nil
}

func (r *themeRepository) QueryThemes(ctx context.Context, schoolID string) ([]theme.Theme, error) {
	var rows []themeRow
	q := scopeSchool(r.db.WithContext(ctx), schoolID)
	if err := q.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	themes := make([]theme.Theme, 0, len(rows))
	for _, row := range rows {
		themes = append(themes, row.domain())
	}
	return themes, nil
}

func (r *themeRepository) UpdateTheme(ctx context.Context, t theme.Theme) (theme.Theme, error) {
	var orig themeRow
	if err := r.db.WithContext(ctx).First(&orig, "id = ?", t.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return theme.Theme{}, theme.ErrNotFound
		}
		return theme.Theme{}, err
	}
	row := themeRow(t)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return theme.Theme{}, err
	}
	return row.domain(), nil
}

func (r *themeRepository) DeleteTheme(ctx context.Context, id, schoolID string) error {
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ?", id), schoolID)
	res := q.Delete(&themeRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return theme.ErrNotFound
	}
	return nil
}

func (r *themeRepository) ClearDefault(ctx context.Context, schoolID string) error {
	return r.db.WithContext(ctx).Model(&themeRow{}).
		Where("school_id = ? AND is_default", schoolID).
		Update("is_default", false).Error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) push.Repository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) UpsertSubscription(ctx context.Context, sub push.Subscription) (push.Subscription, error) {
	row := subscriptionRow(sub)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return push.Subscription{}, err
	}
	return row.domain(), nil
}

func (r *subscriptionRepository) DeleteSubscriptionByEndpoint(ctx context.Context, userID, endpoint string) error {
	q := r.db.WithContext(ctx).Where("endpoint = ?", endpoint)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	res := q.Delete(&subscriptionRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return push.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepository) QuerySubscriptionsByUsers(ctx context.Context, userIDs ...string) ([]push.Subscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []subscriptionRow
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	subs := make([]push.Subscription, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.domain())
	}
	return subs, nil
}

type maintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) maintenance.Repository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) GetMaintenance(ctx context.Context) (maintenance.Maintenance, error) {
	var row maintenanceRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return maintenance.Maintenance{}, maintenance.ErrNotFound
		}
		return maintenance.Maintenance{}, err
	}
	return maintenance.Maintenance{
		Enabled:      row.Enabled,
		Message:      row.Message,
		AllowedRoles: row.AllowedRoles,
		History:      row.History,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (r *maintenanceRepository) SaveMaintenance(ctx context.Context, m maintenance.Maintenance) (maintenance.Maintenance, error) {
	row := maintenanceRow{
		ID:           1,
		Enabled:      m.Enabled,
		Message:      m.Message,
		AllowedRoles: m.AllowedRoles,
		History:      m.History,
		UpdatedAt:    m.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return maintenance.Maintenance{}, err
	}
	return m, nil
}
