package subject

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrNameExists = errors.New("a subject with this name already exists")
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id, schoolID string) (Subject, error)
		GetSubjectByName(ctx context.Context, name, schoolID string) (Subject, error)
		QuerySubjects(ctx context.Context, schoolID string) ([]Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id, schoolID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkNameUniqueness(name, schoolID string) error {
	if _, err := svc.repo.GetSubjectByName(context.Background(), name, schoolID); err == nil {
		return core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	} else if err != ErrNotFound {
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSubject, schoolID string) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		ID:         uuid.NewString(),
		Name:       ns.Name,
		SchoolID:   schoolID,
		TeacherIDs: ns.TeacherIDs,
		Directions: ns.Directions,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) GetByID(ctx context.Context, id, schoolID string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id, schoolID)
}

func (svc *Service) Query(ctx context.Context, schoolID string) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, schoolID)
}

func (svc *Service) Update(ctx context.Context, orig Subject, us UpdateSubject) (Subject, error) {
	sub := orig
	sub.Name = us.Name
	if us.TeacherIDs != nil {
		sub.TeacherIDs = us.TeacherIDs
	}
	if us.Directions != nil {
		sub.Directions = us.Directions
	}
	sub.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *Service) Delete(ctx context.Context, id, schoolID string) error {
	return svc.repo.DeleteSubject(ctx, id, schoolID)
}
