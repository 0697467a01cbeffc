package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

func TestAudience_Targets(t *testing.T) {
	admin := user.User{ID: "u-admin", Role: user.RoleAdmin, SchoolID: "sch-1"}
	secretary := user.User{ID: "u-sec", Role: user.RoleSecretary, SchoolID: "sch-1"}
	teacher := user.User{ID: "u-teach", Role: user.RoleTeacher, SchoolID: "sch-1"}
	student := user.User{ID: "u-stud", Role: user.RoleStudent, SchoolID: "sch-1"}
	parent := user.User{ID: "u-par", Role: user.RoleParent, SchoolID: "sch-2"}

	tests := []struct {
		name     string
		audience Audience
		hits     []user.User
		misses   []user.User
	}{
		{
			name:     "all",
			audience: Audience{Scope: ScopeAll},
			hits:     []user.User{admin, secretary, teacher, student, parent},
		},
		{
			name:     "admins includes secretaries",
			audience: Audience{Scope: ScopeAdmins},
			hits:     []user.User{admin, secretary},
			misses:   []user.User{teacher, student, parent},
		},
		{
			name:     "teachers",
			audience: Audience{Scope: ScopeTeachers},
			hits:     []user.User{teacher},
			misses:   []user.User{admin, student},
		},
		{
			name:     "students includes parents",
			audience: Audience{Scope: ScopeStudents},
			hits:     []user.User{student, parent},
			misses:   []user.User{teacher, admin},
		},
		{
			name:     "explicit users",
			audience: Audience{Scope: ScopeUsers, UserIDs: []string{"u-stud", "u-par"}},
			hits:     []user.User{student, parent},
			misses:   []user.User{teacher, admin},
		},
		{
			name:     "schools",
			audience: Audience{Scope: ScopeSchools, SchoolIDs: []string{"sch-1"}},
			hits:     []user.User{admin, student},
			misses:   []user.User{parent},
		},
		{
			name:     "directions resolved elsewhere",
			audience: Audience{Scope: ScopeDirections, Directions: []string{"science"}},
			misses:   []user.User{admin, teacher, student},
		},
		{
			name:     "unknown scope",
			audience: Audience{Scope: "everyone"},
			misses:   []user.User{admin, student},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, usr := range tt.hits {
				assert.True(t, tt.audience.Targets(usr), usr.ID)
			}
			for _, usr := range tt.misses {
				assert.False(t, tt.audience.Targets(usr), usr.ID)
			}
		})
	}
}
