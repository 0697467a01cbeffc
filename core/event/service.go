package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

var ErrNotFound = errors.New("event not found")

type (
	Repository interface {
		CreateEvent(ctx context.Context, ev Event) (Event, error)
		// GetEventByID only returns active events.
		GetEventByID(ctx context.Context, id, schoolID string) (Event, error)
		QueryEvents(ctx context.Context, schoolID string) ([]Event, error)
		UpdateEvent(ctx context.Context, ev Event) (Event, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewEvent, creator user.User, schoolID string) (Event, error) {
	now := time.Now().UTC()
	ev := Event{
		ID:          uuid.NewString(),
		Title:       ne.Title,
		Description: ne.Description,
		StartsAt:    ne.StartsAt.UTC(),
		EndsAt:      ne.EndsAt.UTC(),
		Audience:    ne.Audience,
		CreatorID:   creator.ID,
		SchoolID:    schoolID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateEvent(ctx, ev)
}

func (svc *Service) GetByID(ctx context.Context, id, schoolID string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id, schoolID)
}

// QueryVisible returns the active events in the user's school whose audience
// targets them. Admins see everything in their tenant.
func (svc *Service) QueryVisible(ctx context.Context, usr user.User) ([]Event, error) {
	events, err := svc.repo.QueryEvents(ctx, usr.SchoolID)
	if err != nil {
		return nil, err
	}
	if usr.IsAdmin() {
		return events, nil
	}
	visible := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.Audience.Targets(usr) || ev.CreatorID == usr.ID {
			visible = append(visible, ev)
		}
	}
	return visible, nil
}

func (svc *Service) Update(ctx context.Context, orig Event, ue UpdateEvent) (Event, error) {
	ev := orig
	ev.Title = ue.Title
	if ue.Description != nil {
		ev.Description = *ue.Description
	}
	if ue.StartsAt != nil {
		ev.StartsAt = ue.StartsAt.UTC()
	}
	if ue.EndsAt != nil {
		ev.EndsAt = ue.EndsAt.UTC()
	}
	if ue.Audience != nil {
		ev.Audience = *ue.Audience
	}
	ev.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, ev)
}

// Delete soft-deletes: the event stays in storage with IsActive=false.
func (svc *Service) Delete(ctx context.Context, orig Event) error {
	orig.IsActive = false
	orig.UpdatedAt = time.Now().UTC()
	_, err := svc.repo.UpdateEvent(ctx, orig)
	return err
}
