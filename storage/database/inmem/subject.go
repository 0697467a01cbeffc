package inmemdb

import (
	"context"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/subject"
)

type subjectRepository struct {
	db *DB
}

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) CreateSubject(_ context.Context, sub subject.Subject) (subject.Subject, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	r.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (r *subjectRepository) GetSubjectByID(_ context.Context, id, schoolID string) (subject.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if sub, ok := r.db.subjects[id]; ok && (schoolID == "" || sub.SchoolID == schoolID) {
		return *sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (r *subjectRepository) GetSubjectByName(_ context.Context, name, schoolID string) (subject.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, sub := range r.db.subjects {
		if sub.Name == name && sub.SchoolID == schoolID {
			return *sub, nil
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (r *subjectRepository) QuerySubjects(_ context.Context, schoolID string) ([]subject.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]subject.Subject, 0)
	for _, sub := range r.db.subjects {
		if schoolID == "" || sub.SchoolID == schoolID {
			res = append(res, *sub)
		}
	}
	return res, nil
}

func (r *subjectRepository) UpdateSubject(_ context.Context, sub subject.Subject) (subject.Subject, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.subjects[sub.ID]; !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	r.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (r *subjectRepository) DeleteSubject(_ context.Context, id, schoolID string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if sub, ok := r.db.subjects[id]; ok && (schoolID == "" || sub.SchoolID == schoolID) {
		delete(r.db.subjects, id)
		return nil
	}
	return subject.ErrNotFound
}
