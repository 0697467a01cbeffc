package grade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/class"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("grade not found")
	// ErrDuplicate enforces the (student, subject, date, school) invariant.
	// Repositories must also return it when their unique index trips on the
	// pre-check race.
	ErrDuplicate = errors.New("a grade for this student, subject and date already exists")
	// ErrNoSharedClass rejects teachers grading outside a shared class.
	ErrNoSharedClass = errors.New("no class joins this teacher, student and subject")
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		GetGradeByID(ctx context.Context, id, schoolID string) (Grade, error)
		GradeExists(ctx context.Context, studentID, subjectID, date, schoolID string) (bool, error)
		FilterGrades(ctx context.Context, filter QueryFilter) ([]Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id, schoolID string) error
	}

	Service struct {
		repo    Repository
		users   *user.Service
		classes *class.Service
	}
)

func NewService(repo Repository, users *user.Service, classes *class.Service) *Service {
	return &Service{repo: repo, users: users, classes: classes}
}

// Create validates tenancy and the shared-class rule before writing.
// The grader must be an admin, or a teacher sharing a class with the student
// for the graded subject.
func (svc *Service) Create(ctx context.Context, ng NewGrade, grader user.User, schoolID string) (Grade, error) {
	student, err := svc.users.GetByID(ctx, ng.StudentID)
	if err != nil {
		if err == user.ErrNotFound {
			return Grade{}, ErrNotFound
		}
		return Grade{}, err
	}
	// cross-tenant students read as absent
	if !student.IsStudent() || (schoolID != "" && student.SchoolID != schoolID) {
		return Grade{}, ErrNotFound
	}

	if err := svc.checkSharedClass(ctx, grader, ng.StudentID, ng.SubjectID, schoolID); err != nil {
		return Grade{}, err
	}

	// pre-check; the repository's unique index covers the race
	if exists, err := svc.repo.GradeExists(ctx, ng.StudentID, ng.SubjectID, ng.Date, schoolID); err != nil {
		return Grade{}, pkgerrors.Wrap(err, "checking grade uniqueness")
	} else if exists {
		return Grade{}, ErrDuplicate
	}

	if !grader.CanAddGradeDescriptions && !grader.IsAdmin() {
		ng.Description = ""
	}

	now := time.Now().UTC()
	g := Grade{
		ID:          uuid.NewString(),
		StudentID:   ng.StudentID,
		SubjectID:   ng.SubjectID,
		TeacherID:   grader.ID,
		Value:       ng.Value,
		Description: ng.Description,
		Date:        ng.Date,
		SchoolID:    student.SchoolID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateGrade(ctx, g)
}

func (svc *Service) checkSharedClass(ctx context.Context, grader user.User, studentID, subjectID, schoolID string) error {
	if grader.IsAdmin() || grader.CanManage(func(p user.SecretaryPermissions) bool { return p.CanManageGrades }) {
		return nil
	}
	ok, err := svc.classes.ExistsJoining(ctx, grader.ID, studentID, subjectID, schoolID)
	if err != nil {
		return pkgerrors.Wrap(err, "checking shared class")
	}
	if !ok {
		return ErrNoSharedClass
	}
	return nil
}

func (svc *Service) GetByID(ctx context.Context, id, schoolID string) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id, schoolID)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Grade, error) {
	return svc.repo.FilterGrades(ctx, filter)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID, schoolID string) ([]Grade, error) {
	return svc.repo.FilterGrades(ctx, QueryFilter{StudentID: studentID, SchoolID: schoolID})
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherID, schoolID string) ([]Grade, error) {
	return svc.repo.FilterGrades(ctx, QueryFilter{TeacherID: teacherID, SchoolID: schoolID})
}

// Update applies the same authorship guard as Create: non-admin teachers may
// only touch grades they authored for a still-shared class.
func (svc *Service) Update(ctx context.Context, orig Grade, ug UpdateGrade, grader user.User) (Grade, error) {
	if !grader.IsAdmin() && orig.TeacherID != grader.ID {
		return Grade{}, ErrNotFound
	}
	if err := svc.checkSharedClass(ctx, grader, orig.StudentID, orig.SubjectID, orig.SchoolID); err != nil {
		return Grade{}, err
	}

	g := orig
	if ug.Value != nil {
		g.Value = *ug.Value
	}
	if ug.Description != nil && (grader.CanAddGradeDescriptions || grader.IsAdmin()) {
		g.Description = *ug.Description
	}
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGrade(ctx, g)
}

func (svc *Service) Delete(ctx context.Context, orig Grade, grader user.User) error {
	if !grader.IsAdmin() && orig.TeacherID != grader.ID {
		return ErrNotFound
	}
	return svc.repo.DeleteGrade(ctx, orig.ID, orig.SchoolID)
}

// StudentStats aggregates a student's grades per subject.
func (svc *Service) StudentStats(ctx context.Context, studentID, schoolID string) ([]SubjectStats, error) {
	grades, err := svc.QueryByStudent(ctx, studentID, schoolID)
	if err != nil {
		return nil, err
	}

	bySubject := make(map[string]*SubjectStats)
	order := make([]string, 0)
	for _, g := range grades {
		st, ok := bySubject[g.SubjectID]
		if !ok {
			st = &SubjectStats{SubjectID: g.SubjectID, Min: g.Value, Max: g.Value}
			bySubject[g.SubjectID] = st
			order = append(order, g.SubjectID)
		}
		st.Count++
		st.Average += float64(g.Value)
		if g.Value < st.Min {
			st.Min = g.Value
		}
		if g.Value > st.Max {
			st.Max = g.Value
		}
	}

	stats := make([]SubjectStats, 0, len(order))
	for _, id := range order {
		st := bySubject[id]
		st.Average /= float64(st.Count)
		stats = append(stats, *st)
	}
	return stats, nil
}
