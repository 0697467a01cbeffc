package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/grade"
)

type gradeRepository struct {
	db *gorm.DB
}

func NewGradeRepository(db *gorm.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	row := gradeRow(g)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		// unique (student, subject, date, school) index catches the race
		// the service-level existence check cannot
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return grade.Grade{}, grade.ErrDuplicate
		}
		return grade.Grade{}, err
	}
	return row.domain(), nil
}

func (r *gradeRepository) GetGradeByID(ctx context.Context, id, schoolID string) (grade.Grade, error) {
	var row gradeRow
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ?", id), schoolID)
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return grade.Grade{}, grade.ErrNotFound
		}
		return grade.Grade{}, err
	}
	return row.domain(), nil
}

func (r *gradeRepository) GradeExists(ctx context.Context, studentID, subjectID, date, schoolID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gradeRow{}).
		Where("student_id = ? AND subject_id = ? AND date = ? AND school_id = ?",
			studentID, subjectID, date, schoolID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gradeRepository) FilterGrades(ctx context.Context, filter grade.QueryFilter) ([]grade.Grade, error) {
	q := scopeSchool(r.db.WithContext(ctx).Model(&gradeRow{}), filter.SchoolID)
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.TeacherID != "" {
		q = q.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.DateFrom != "" {
		q = q.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("date <= ?", filter.DateTo)
	}

	var rows []gradeRow
	if err := q.Order("date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.domain())
	}
	return grades, nil
}

func (r *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	var orig gradeRow
	if err := r.db.WithContext(ctx).First(&orig, "id = ?", g.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return grade.Grade{}, grade.ErrNotFound
		}
		return grade.Grade{}, err
	}
	row := gradeRow(g)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return grade.Grade{}, grade.ErrDuplicate
		}
		return grade.Grade{}, err
	}
	return row.domain(), nil
}

func (r *gradeRepository) DeleteGrade(ctx context.Context, id, schoolID string) error {
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ?", id), schoolID)
	res := q.Delete(&gradeRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return grade.ErrNotFound
	}
	return nil
}
