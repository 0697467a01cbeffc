package inmemdb

import (
	"context"
	"strings"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/class"
)

type classRepository struct {
	db *DB
}

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

func (r *classRepository) CreateClass(_ context.Context, cls class.Class) (class.Class, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	r.db.classes[cls.ID] = &cls
	return cls, nil
}

func (r *classRepository) GetClassByID(_ context.Context, id, schoolID string) (class.Class, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if cls, ok := r.db.classes[id]; ok && (schoolID == "" || cls.SchoolID == schoolID) {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (r *classRepository) GetClassByName(_ context.Context, name, schoolID string) (class.Class, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, cls := range r.db.classes {
		if cls.Name == name && cls.SchoolID == schoolID {
			return *cls, nil
		}
	}
	return class.Class{}, class.ErrNotFound
}

func (r *classRepository) FilterClasses(_ context.Context, filter class.QueryFilter) ([]class.Class, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]class.Class, 0)
	for _, cls := range r.db.classes {
		if matchesClassFilter(*cls, filter) {
			res = append(res, *cls)
		}
	}
	return res, nil
}

func matchesClassFilter(cls class.Class, filter class.QueryFilter) bool {
	if filter.SchoolID != "" && cls.SchoolID != filter.SchoolID {
		return false
	}
	if filter.SubjectID != "" && cls.SubjectID != filter.SubjectID {
		return false
	}
	if filter.TeacherID != "" && !containsStr(cls.TeacherIDs, filter.TeacherID) {
		return false
	}
	if filter.StudentID != "" && !containsStr(cls.StudentIDs, filter.StudentID) {
		return false
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(cls.Name), strings.ToLower(filter.Search)) {
		return false
	}
	return true
}

func (r *classRepository) UpdateClass(_ context.Context, cls class.Class) (class.Class, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.classes[cls.ID]; !ok {
		return class.Class{}, class.ErrNotFound
	}
	r.db.classes[cls.ID] = &cls
	return cls, nil
}

func (r *classRepository) DeleteClass(_ context.Context, id, schoolID string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if cls, ok := r.db.classes[id]; ok && (schoolID == "" || cls.SchoolID == schoolID) {
		delete(r.db.classes, id)
		return nil
	}
	return class.ErrNotFound
}

func (r *classRepository) ClassExistsJoining(_ context.Context, teacherID, studentID, subjectID, schoolID string) (bool, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, cls := range r.db.classes {
		if schoolID != "" && cls.SchoolID != schoolID {
			continue
		}
		if cls.SubjectID == subjectID && containsStr(cls.TeacherIDs, teacherID) && containsStr(cls.StudentIDs, studentID) {
			return true, nil
		}
	}
	return false, nil
}

func containsStr(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
