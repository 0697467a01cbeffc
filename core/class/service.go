package class

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

var (
	// errors
	ErrNotFound   = errors.New("class not found")
	ErrNameExists = errors.New("a class with this name already exists")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class) (Class, error)
		// GetClassByID scopes by school; an empty schoolID (superadmin) matches any.
		GetClassByID(ctx context.Context, id, schoolID string) (Class, error)
		GetClassByName(ctx context.Context, name, schoolID string) (Class, error)
		FilterClasses(ctx context.Context, filter QueryFilter) ([]Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, id, schoolID string) error
		// ClassExistsJoining reports whether any class joins the given
		// teacher, student and subject within the school.
		ClassExistsJoining(ctx context.Context, teacherID, studentID, subjectID, schoolID string) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkNameUniqueness(name, schoolID string) error {
	if _, err := svc.repo.GetClassByName(context.Background(), name, schoolID); err == nil {
		return core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	} else if err != ErrNotFound {
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewClass, schoolID string) (Class, error) {
	now := time.Now().UTC()
	cls := Class{
		ID:           uuid.NewString(),
		Name:         nc.Name,
		SubjectID:    nc.SubjectID,
		Direction:    nc.Direction,
		SchoolBranch: nc.SchoolBranch,
		SchoolID:     schoolID,
		TeacherIDs:   nc.TeacherIDs,
		StudentIDs:   nc.StudentIDs,
		Schedule:     nc.Schedule,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) GetByID(ctx context.Context, id, schoolID string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id, schoolID)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Class, error) {
	filter.Search = core.CleanString(filter.Search)
	return svc.repo.FilterClasses(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, orig Class, uc UpdateClass) (Class, error) {
	cls := orig
	cls.Name = uc.Name
	cls.SubjectID = uc.SubjectID
	if uc.Direction != nil {
		cls.Direction = *uc.Direction
	}
	if uc.SchoolBranch != nil {
		cls.SchoolBranch = *uc.SchoolBranch
	}
	if uc.TeacherIDs != nil {
		cls.TeacherIDs = uc.TeacherIDs
	}
	if uc.StudentIDs != nil {
		cls.StudentIDs = uc.StudentIDs
	}
	if uc.Schedule != nil {
		cls.Schedule = uc.Schedule
	}
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) Delete(ctx context.Context, id, schoolID string) error {
	return svc.repo.DeleteClass(ctx, id, schoolID)
}

func (svc *Service) ExistsJoining(ctx context.Context, teacherID, studentID, subjectID, schoolID string) (bool, error) {
	return svc.repo.ClassExistsJoining(ctx, teacherID, studentID, subjectID, schoolID)
}
