package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/class"
)

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) class.Repository {
	return &classRepository{db: db}
}

func scopeSchool(q *gorm.DB, schoolID string) *gorm.DB {
	if schoolID != "" {
		q = q.Where("school_id = ?", schoolID)
	}
	return q
}

func (r *classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	row := classRow(cls)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return class.Class{}, class.ErrNameExists
		}
		return class.Class{}, err
	}
	return row.domain(), nil
}

func (r *classRepository) GetClassByID(ctx context.Context, id, schoolID string) (class.Class, error) {
	var row classRow
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ?", id), schoolID)
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, err
	}
	return row.domain(), nil
}

func (r *classRepository) GetClassByName(ctx context.Context, name, schoolID string) (class.Class, error) {
	var row classRow
	q := scopeSchool(r.db.WithContext(ctx).Where("name = ?", name), schoolID)
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, err
	}
	return row.domain(), nil
}

func (r *classRepository) FilterClasses(ctx context.Context, filter class.QueryFilter) ([]class.Class, error) {
	q := scopeSchool(r.db.WithContext(ctx).Model(&classRow{}), filter.SchoolID)
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var rows []classRow
	if err := q.Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	// membership filters live in JSON columns; apply them on loaded rows
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		if filter.TeacherID != "" && !containsStr(row.TeacherIDs, filter.TeacherID) {
			continue
		}
		if filter.StudentID != "" && !containsStr(row.StudentIDs, filter.StudentID) {
			continue
		}
		classes = append(classes, row.domain())
	}
	return classes, nil
}

func (r *classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	var orig classRow
	if err := r.db.WithContext(ctx).First(&orig, "id = ?", cls.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, err
	}
	row := classRow(cls)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return class.Class{}, class.ErrNameExists
		}
		return class.Class{}, err
	}
	return row.domain(), nil
}

func (r *classRepository) DeleteClass(ctx context.Context, id, schoolID string) error {
	q := scopeSchool(r.db.WithContext(ctx).Where("id = ?", id), schoolID)
	res := q.Delete(&classRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return class.ErrNotFound
	}
	return nil
}

func (r *classRepository) ClassExistsJoining(ctx context.Context, teacherID, studentID, subjectID, schoolID string) (bool, error) {
	q := scopeSchool(r.db.WithContext(ctx).Model(&classRow{}), schoolID).
		Where("subject_id = ?", subjectID)
	var rows []classRow
	if err := q.Find(&rows).Error; err != nil {
		return false, err
	}
	for _, row := range rows {
		if containsStr(row.TeacherIDs, teacherID) && containsStr(row.StudentIDs, studentID) {
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
