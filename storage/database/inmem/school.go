package inmemdb

import (
	"context"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) CreateSchool(_ context.Context, sch school.School) (school.School, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	r.db.schools[sch.ID] = &sch
	return sch, nil
}

func (r *schoolRepository) GetSchoolByID(_ context.Context, id string) (school.School, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if sch, ok := r.db.schools[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrNotFound
}

func (r *schoolRepository) GetSchoolByEmailDomain(_ context.Context, domain string) (school.School, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, sch := range r.db.schools {
		if sch.EmailDomain == domain {
			return *sch, nil
		}
	}
	return school.School{}, school.ErrNotFound
}

func (r *schoolRepository) QueryAllSchools(_ context.Context) ([]school.School, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]school.School, 0, len(r.db.schools))
	for _, sch := range r.db.schools {
		res = append(res, *sch)
	}
	return res, nil
}

func (r *schoolRepository) UpdateSchool(_ context.Context, sch school.School, isActive *bool) (school.School, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	orig, ok := r.db.schools[sch.ID]
	if !ok {
		return school.School{}, school.ErrNotFound
	}
	if isActive != nil {
		sch.IsActive = *isActive
	} else {
		sch.IsActive = orig.IsActive
	}
	r.db.schools[sch.ID] = &sch
	return sch, nil
}
