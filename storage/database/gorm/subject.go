package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/subject"
)

type subjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	row := subjectRow(sub)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return subject.Subject{}, subject.ErrNameExists
		}
		return subject.Subject{}, err
	}
	return row.domain(), nil
}

func (r *subjectRepository) GetSubjectByID(ctx context.Context, id, schoolID string) (subject.Subject, error) {
	var row subjectRow
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ?", id), schoolID)
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, err
	}
	return row.domain(), nil
}

func (r *subjectRepository) GetSubjectByName(ctx context.Context, name, schoolID string) (subject.Subject, error) {
	var row subjectRow
	q := scopeSchool(r.db.WithContext(ctx).Where("name = ?", name), schoolID)
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, err
	}
	return row.domain(), nil
}

func (r *subjectRepository) QuerySubjects(ctx context.Context, schoolID string) ([]subject.Subject, error) {
	var rows []subjectRow
	q := scopeSchool(r.db.WithContext(ctx), schoolID)
	if err := q.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.domain())
	}
	return subjects, nil
}

func (r *subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	var orig subjectRow
	if err := r.db.WithContext(ctx).First(&orig, "id = ?", sub.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, err
	}
	row := subjectRow(sub)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return subject.Subject{}, subject.ErrNameExists
		}
		return subject.Subject{}, err
	}
	return row.domain(), nil
}

func (r *subjectRepository) DeleteSubject(ctx context.Context, id, schoolID string) error {
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ?", id), schoolID)
	res := q.Delete(&subjectRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return subject.ErrNotFound
	}
	return nil
}
