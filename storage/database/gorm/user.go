package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

func (r *userRepository) CheckEmailUniqueness(ctx context.Context, email, schoolID string, excludedUsers ...user.User) error {
	q := r.db.WithContext(ctx).Model(&userRow{}).
		Where("email = ? AND school_id = ?", email, schoolID)
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q = q.Where("id NOT IN ?", ids)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (r *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := newUserRow(usr)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	return row.domain(), nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.domain(), nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email, schoolID string) (user.User, error) {
	var row userRow
	q := r.db.WithContext(ctx).Where("email = ? AND school_id = ?", email, schoolID)
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.domain(), nil
}

func (r *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	q := r.db.WithContext(ctx).Model(&userRow{})
	if filter.SchoolID != "" {
		q = q.Where("school_id = ?", filter.SchoolID)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if len(filter.Roles) > 0 {
		q = q.Where("role IN ?", filter.Roles)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}

	var rows []userRow
	if err := q.Order("created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.domain())
	}
	return users, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	var orig userRow
	if err := r.db.WithContext(ctx).First(&orig, "id = ?", usr.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	if isActive != nil {
		usr.IsActive = *isActive
	} else {
		usr.IsActive = orig.IsActive
	}
	row := newUserRow(usr)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	return row.domain(), nil
}

func (r *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	return r.db.WithContext(ctx).Delete(&userRow{}, "id IN ?", ids).Error
}

// LinkStudents updates both sides of the parent<->student relationship inside
// one transaction so a failure never leaves a dangling half-link.
func (r *userRepository) LinkStudents(ctx context.Context, parentID string, studentIDs ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent userRow
		if err := tx.First(&parent, "id = ?", parentID).Error; err != nil {
			return asNotFound(err)
		}
		for _, sid := range studentIDs {
			var student userRow
			if err := tx.First(&student, "id = ?", sid).Error; err != nil {
				return asNotFound(err)
			}
			parent.StudentIDs = appendUnique(parent.StudentIDs, sid)
			student.ParentIDs = appendUnique(student.ParentIDs, parentID)
			if err := tx.Save(&student).Error; err != nil {
				return err
			}
		}
		return tx.Save(&parent).Error
	})
}

func (r *userRepository) UnlinkStudents(ctx context.Context, parentID string, studentIDs ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent userRow
		if err := tx.First(&parent, "id = ?", parentID).Error; err != nil {
			return asNotFound(err)
		}
		for _, sid := range studentIDs {
			parent.StudentIDs = remove(parent.StudentIDs, sid)
			var student userRow
			if err := tx.First(&student, "id = ?", sid).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			student.ParentIDs = remove(student.ParentIDs, parentID)
			if err := tx.Save(&student).Error; err != nil {
				return err
			}
		}
		return tx.Save(&parent).Error
	})
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user.ErrNotFound
	}
	return err
}

func appendUnique(ss []string, s string) []string {
	for _, v := range ss {
		if v == s {
			return ss
		}
	}
	return append(ss, s)
}

func remove(ss []string, s string) []string {
	res := make([]string, 0, len(ss))
	for _, v := range ss {
		if v != s {
			res = append(res, v)
		}
	}
	return res
}
