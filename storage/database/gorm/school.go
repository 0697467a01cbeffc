package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
)

type schoolRepository struct {
	db *gorm.DB
}

func NewSchoolRepository(db *gorm.DB) school.Repository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	row := schoolRow(sch)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return school.School{}, school.ErrDomainExists
		}
		return school.School{}, err
	}
	return row.domain(), nil
}

func (r *schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	var row schoolRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, err
	}
	return row.domain(), nil
}

func (r *schoolRepository) GetSchoolByEmailDomain(ctx context.Context, domain string) (school.School, error) {
	var row schoolRow
	if err := r.db.WithContext(ctx).First(&row, "email_domain = ?", domain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, err
	}
	return row.domain(), nil
}

func (r *schoolRepository) QueryAllSchools(ctx context.Context) ([]school.School, error) {
	var rows []schoolRow
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	schools := make([]school.School, 0, len(rows))
	for _, row := range rows {
		schools = append(schools, row.domain())
	}
	return schools, nil
}

func (r *schoolRepository) UpdateSchool(ctx context.Context, sch school.School, isActive *bool) (school.School, error) {
	var orig schoolRow
	if err := r.db.WithContext(ctx).First(&orig, "id = ?", sch.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, err
	}
	if isActive != nil {
		sch.IsActive = *isActive
	} else {
		sch.IsActive = orig.IsActive
	}
	row := schoolRow(sch)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return school.School{}, school.ErrDomainExists
		}
		return school.School{}, err
	}
	return row.domain(), nil
}
