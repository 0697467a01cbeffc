package inmemdb

import (
	"context"
	"strings"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (r *userRepository) CheckEmailUniqueness(_ context.Context, email, schoolID string, excludedUsers ...user.User) error {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	excluded := make(map[string]struct{}, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = struct{}{}
	}
	for _, usr := range r.db.users {
		if _, skip := excluded[usr.ID]; skip {
			continue
		}
		if usr.Email == email && usr.SchoolID == schoolID {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (r *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	r.db.users[usr.ID] = &usr
	return usr, nil
}

func (r *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if usr, ok := r.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) GetUserByEmail(_ context.Context, email, schoolID string) (user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, usr := range r.db.users {
		if usr.Email == email && usr.SchoolID == schoolID {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *userRepository) FilterUsers(_ context.Context, filter user.QueryFilter) ([]user.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]user.User, 0)
	for _, usr := range r.db.users {
		if matchesUserFilter(*usr, filter) {
			res = append(res, *usr)
		}
	}
	return res, nil
}

func matchesUserFilter(usr user.User, filter user.QueryFilter) bool {
	if filter.SchoolID != "" && usr.SchoolID != filter.SchoolID {
		return false
	}
	if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
		return false
	}
	if len(filter.Roles) > 0 {
		var ok bool
		for _, role := range filter.Roles {
			if usr.Role == role {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(usr.Name), search) &&
			!strings.Contains(strings.ToLower(usr.Email), search) {
			return false
		}
	}
	return true
}

func (r *userRepository) UpdateUser(_ context.Context, usr user.User, isActive *bool) (user.User, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	orig, ok := r.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if isActive != nil {
		usr.IsActive = *isActive
	} else {
		usr.IsActive = orig.IsActive
	}
	r.db.users[usr.ID] = &usr
	return usr, nil
}

func (r *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	for _, id := range ids {
		delete(r.db.users, id)
	}
	return nil
}

func (r *userRepository) LinkStudents(_ context.Context, parentID string, studentIDs ...string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	parent, ok := r.db.users[parentID]
	if !ok {
		return user.ErrNotFound
	}
	for _, sid := range studentIDs {
		student, ok := r.db.users[sid]
		if !ok {
			return user.ErrNotFound
		}
		parent.StudentIDs = appendUnique(parent.StudentIDs, sid)
		student.ParentIDs = appendUnique(student.ParentIDs, parentID)
	}
	return nil
}

func (r *userRepository) UnlinkStudents(_ context.Context, parentID string, studentIDs ...string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	parent, ok := r.db.users[parentID]
	if !ok {
		return user.ErrNotFound
	}
	for _, sid := range studentIDs {
		parent.StudentIDs = remove(parent.StudentIDs, sid)
		if student, ok := r.db.users[sid]; ok {
			student.ParentIDs = remove(student.ParentIDs, parentID)
		}
	}
	return nil
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
	res := ss[:0]
	for _, v := range ss {
		if v != s {
			res = append(res, v)
		}
	}
	return res
}
