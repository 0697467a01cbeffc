package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

type passValidator struct{}

func (passValidator) CheckEmailUniqueness(email, schoolID string, exclUsers ...User) error {
	return nil
}

func TestNewUser_Validate(t *testing.T) {
	valid := func() NewUser {
		return NewUser{
			Name:            "Jo Doe",
			Email:           "jo@one.edu",
			Password:        "s3cretpass",
			PasswordConfirm: "s3cretpass",
			Role:            RoleTeacher,
			SchoolID:        "sch-1",
		}
	}
	fieldOf := func(t *testing.T, err error) string {
		t.Helper()
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.NotEmpty(t, vErr.Fields)
		return vErr.Fields[0].Field
	}

	t.Run("ok", func(t *testing.T) {
		nu := valid()
		nu.Email = "  JO@One.EDU "
		nu.Role = " Teacher"
		require.NoError(t, nu.Validate(passValidator{}))
		assert.Equal(t, "jo@one.edu", nu.Email)
		assert.Equal(t, RoleTeacher, nu.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		nu := valid()
		nu.Role = "janitor"
		assert.Equal(t, "role", fieldOf(t, nu.Validate(passValidator{})))
	})

	t.Run("superadmin cannot carry a school", func(t *testing.T) {
		nu := valid()
		nu.Role = RoleSuperAdmin
		assert.Equal(t, "school_id", fieldOf(t, nu.Validate(passValidator{})))
	})

	t.Run("everyone else needs one", func(t *testing.T) {
		nu := valid()
		nu.SchoolID = ""
		assert.Equal(t, "school_id", fieldOf(t, nu.Validate(passValidator{})))
	})

	t.Run("password confirmation", func(t *testing.T) {
		nu := valid()
		nu.PasswordConfirm = "different1"
		assert.Error(t, nu.Validate(passValidator{}))
	})

	t.Run("short password", func(t *testing.T) {
		nu := valid()
		nu.Password, nu.PasswordConfirm = "short", "short"
		assert.Error(t, nu.Validate(passValidator{}))
	})
}

func TestUser_CanManage(t *testing.T) {
	grades := func(p SecretaryPermissions) bool { return p.CanManageGrades }

	admin := User{Role: RoleAdmin}
	assert.True(t, admin.CanManage(grades))

	secretary := User{Role: RoleSecretary}
	assert.False(t, secretary.CanManage(grades))

	secretary.SecretaryPermissions.CanManageGrades = true
	assert.True(t, secretary.CanManage(grades))

	teacher := User{Role: RoleTeacher}
	assert.False(t, teacher.CanManage(grades))
}
