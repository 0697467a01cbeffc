package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
	inmemdb "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/database/inmem"
)

func newService(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewUserRepository(db)
	return user.NewService(repo, nil), repo
}

func addUser(t *testing.T, repo user.Repository, email, role, schoolID string) user.User {
	t.Helper()
	usr := user.User{
		ID: uuid.NewString(), Name: email, Email: email, Role: role, SchoolID: schoolID, IsActive: true,
	}
	require.NoError(t, usr.SetPassword("passw0rd!"))
	usr, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func TestService_CheckEmailUniqueness(t *testing.T) {
	svc, repo := newService(t)

	taken := addUser(t, repo, "jo@one.edu", user.RoleTeacher, "sch-1")

	t.Run("taken within the tenant", func(t *testing.T) {
		err := svc.CheckEmailUniqueness("jo@one.edu", "sch-1")
		require.Error(t, err)
		var vErr *core.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "email", vErr.Fields[0].Field)
	})

	t.Run("free in another tenant", func(t *testing.T) {
		assert.NoError(t, svc.CheckEmailUniqueness("jo@one.edu", "sch-2"))
	})

	t.Run("the user itself can be excluded", func(t *testing.T) {
		assert.NoError(t, svc.CheckEmailUniqueness("jo@one.edu", "sch-1", taken))
	})
}

func TestService_Create(t *testing.T) {
	svc, _ := newService(t)

	usr, err := svc.Create(context.Background(), user.NewUser{
		Name:     "Jo Doe",
		Email:    "jo.doe@one.edu",
		Password: "s3cretpass",
		Role:     user.RoleTeacher,
		SchoolID: "sch-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, usr.ID)
	assert.True(t, usr.IsActive)
	assert.True(t, usr.FirstLogin)
	assert.NoError(t, usr.CheckPassword("s3cretpass"))
	assert.Error(t, usr.CheckPassword("wrong"))
}

func TestService_LinkStudents(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	parent := addUser(t, repo, "parent@one.edu", user.RoleParent, "sch-1")
	kid1 := addUser(t, repo, "kid1@one.edu", user.RoleStudent, "sch-1")
	kid2 := addUser(t, repo, "kid2@one.edu", user.RoleStudent, "sch-1")
	outsider := addUser(t, repo, "kid@two.edu", user.RoleStudent, "sch-2")
	teacher := addUser(t, repo, "teach@one.edu", user.RoleTeacher, "sch-1")

	t.Run("links both sides", func(t *testing.T) {
		require.NoError(t, svc.LinkStudents(ctx, parent.ID, kid1.ID, kid2.ID))

		p, err := repo.GetUserByID(ctx, parent.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{kid1.ID, kid2.ID}, p.StudentIDs)

		k, err := repo.GetUserByID(ctx, kid1.ID)
		require.NoError(t, err)
		assert.Contains(t, k.ParentIDs, parent.ID)
	})

	t.Run("cross-tenant student reads as absent", func(t *testing.T) {
		assert.ErrorIs(t, svc.LinkStudents(ctx, parent.ID, outsider.ID), user.ErrNotFound)
	})

	t.Run("non-student target reads as absent", func(t *testing.T) {
		assert.ErrorIs(t, svc.LinkStudents(ctx, parent.ID, teacher.ID), user.ErrNotFound)
	})

	t.Run("holder must be a parent", func(t *testing.T) {
		err := svc.LinkStudents(ctx, teacher.ID, kid1.ID)
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("unlink removes both sides", func(t *testing.T) {
		require.NoError(t, svc.UnlinkStudents(ctx, parent.ID, kid1.ID))

		p, err := repo.GetUserByID(ctx, parent.ID)
		require.NoError(t, err)
		assert.NotContains(t, p.StudentIDs, kid1.ID)
		assert.Contains(t, p.StudentIDs, kid2.ID)

		k, err := repo.GetUserByID(ctx, kid1.ID)
		require.NoError(t, err)
		assert.NotContains(t, k.ParentIDs, parent.ID)
	})
}

func TestService_GetByEmail(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	addUser(t, repo, "super@hq.app", user.RoleSuperAdmin, "")
	addUser(t, repo, "jo@one.edu", user.RoleTeacher, "sch-1")

	t.Run("normalizes the email", func(t *testing.T) {
		usr, err := svc.GetByEmail(ctx, "  JO@One.EDU ", "sch-1")
		require.NoError(t, err)
		assert.Equal(t, "jo@one.edu", usr.Email)
	})

	t.Run("empty schoolID matches school-less accounts only", func(t *testing.T) {
		usr, err := svc.GetByEmail(ctx, "super@hq.app", "")
		require.NoError(t, err)
		assert.Equal(t, user.RoleSuperAdmin, usr.Role)

		_, err = svc.GetByEmail(ctx, "jo@one.edu", "")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("wrong tenant", func(t *testing.T) {
		_, err := svc.GetByEmail(ctx, "jo@one.edu", "sch-2")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}
