package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/auth"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
	memorycache "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/cache/memory"
	inmemdb "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/database/inmem"
)

type fixture struct {
	svc     *auth.Service
	usrRepo user.Repository
	schRepo school.Repository
}

func newFixture(t *testing.T, opts ...auth.Options) *fixture {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)

	usrRepo := inmemdb.NewUserRepository(db)
	schRepo := inmemdb.NewSchoolRepository(db)
	usrSvc := user.NewService(usrRepo, nil)
	schSvc := school.NewService(schRepo)

	return &fixture{
		svc:     auth.NewService(usrSvc, schSvc, memorycache.NewAttemptStore(), memorycache.NewRevocationStore(), opts...),
		usrRepo: usrRepo,
		schRepo: schRepo,
	}
}

func (f *fixture) addSchool(t *testing.T, domain string) school.School {
	t.Helper()
	sch, err := f.schRepo.CreateSchool(context.Background(), school.School{
		ID: uuid.NewString(), Name: domain, EmailDomain: domain, IsActive: true,
	})
	require.NoError(t, err)
	return sch
}

func (f *fixture) addUser(t *testing.T, email, pwd, role, schoolID string, active bool) user.User {
	t.Helper()
	usr := user.User{
		ID: uuid.NewString(), Name: email, Email: email, Role: role, SchoolID: schoolID, IsActive: active,
	}
	require.NoError(t, usr.SetPassword(pwd))
	usr, err := f.usrRepo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func TestService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sch := f.addSchool(t, "springfield.edu")
	f.addUser(t, "lisa@springfield.edu", "saxophone1", user.RoleStudent, sch.ID, true)
	f.addUser(t, "bart@springfield.edu", "elbarto12", user.RoleStudent, sch.ID, false)
	f.addUser(t, "root@hq.app", "topsecret1", user.RoleSuperAdmin, "", true)

	t.Run("school user resolved by email domain", func(t *testing.T) {
		usr, pair, err := f.svc.Login(ctx, "lisa@springfield.edu", "saxophone1", "ip-1")
		require.NoError(t, err)
		assert.Equal(t, sch.ID, usr.SchoolID)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.False(t, usr.FirstLogin)
		assert.False(t, usr.LastLogin.IsZero())
	})

	t.Run("superadmin has no tenant", func(t *testing.T) {
		usr, _, err := f.svc.Login(ctx, "root@hq.app", "topsecret1", "ip-1")
		require.NoError(t, err)
		assert.Empty(t, usr.SchoolID)
	})

	t.Run("email is normalized", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, "  LISA@Springfield.EDU ", "saxophone1", "ip-1")
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, "lisa@springfield.edu", "trombone", "ip-2")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown user and unknown domain look identical", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, "nobody@springfield.edu", "whatever1", "ip-2")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

		_, _, err = f.svc.Login(ctx, "lisa@azkaban.gov", "whatever1", "ip-2")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		_, _, err := f.svc.Login(ctx, "bart@springfield.edu", "elbarto12", "ip-3")
		assert.ErrorIs(t, err, auth.ErrAccountDisabled)
	})
}

func TestService_Login_lockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sch := f.addSchool(t, "lockout.edu")
	f.addUser(t, "amy@lockout.edu", "passw0rd!", user.RoleTeacher, sch.ID, true)

	ip := "ip-lockout"
	for i := 0; i < auth.MaxLoginFailures; i++ {
		_, _, err := f.svc.Login(ctx, "amy@lockout.edu", "wrong", ip)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials, "attempt %d", i+1)
	}

	// the right password no longer helps
	_, _, err := f.svc.Login(ctx, "amy@lockout.edu", "passw0rd!", ip)
	var tooMany *auth.TooManyAttemptsError
	require.ErrorAs(t, err, &tooMany)
	assert.Greater(t, tooMany.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, tooMany.RetryAfter, auth.BaseLockout)

	// a different client address is untouched
	_, _, err = f.svc.Login(ctx, "amy@lockout.edu", "passw0rd!", "ip-other")
	assert.NoError(t, err)
}

func TestService_Refresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sch := f.addSchool(t, "refresh.edu")
	usr := f.addUser(t, "max@refresh.edu", "passw0rd!", user.RoleAdmin, sch.ID, true)

	_, pair, err := f.svc.Login(ctx, usr.Email, "passw0rd!", "ip-1")
	require.NoError(t, err)

	t.Run("rotates and burns the old token", func(t *testing.T) {
		next, err := f.svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		// replaying the rotated token must fail
		_, err = f.svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

		// the new one keeps working
		_, err = f.svc.Refresh(ctx, next.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.svc.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.svc.Refresh(ctx, "garbage")
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("disabled user cannot refresh", func(t *testing.T) {
		blocked := f.addUser(t, "blocked@refresh.edu", "passw0rd!", user.RoleTeacher, sch.ID, true)
		_, p, err := f.svc.Login(ctx, blocked.Email, "passw0rd!", "ip-2")
		require.NoError(t, err)

		off := false
		_, err = f.usrRepo.UpdateUser(ctx, blocked, &off)
		require.NoError(t, err)

		_, err = f.svc.Refresh(ctx, p.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrAccountDisabled)
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		gone := f.addUser(t, "gone@refresh.edu", "passw0rd!", user.RoleTeacher, sch.ID, true)
		_, p, err := f.svc.Login(ctx, gone.Email, "passw0rd!", "ip-3")
		require.NoError(t, err)

		require.NoError(t, f.usrRepo.DeleteUsersByID(ctx, gone.ID))

		_, err = f.svc.Refresh(ctx, p.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})
}

func TestService_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sch := f.addSchool(t, "logout.edu")
	usr := f.addUser(t, "lee@logout.edu", "passw0rd!", user.RoleTeacher, sch.ID, true)

	_, pair, err := f.svc.Login(ctx, usr.Email, "passw0rd!", "ip-1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken))
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	// garbage input never fails a logout
	assert.NoError(t, f.svc.Logout(ctx, "not-a-token"))
	assert.NoError(t, f.svc.Logout(ctx, pair.AccessToken))
}

func TestService_VerifyAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sch := f.addSchool(t, "verify.edu")
	usr := f.addUser(t, "vee@verify.edu", "passw0rd!", user.RoleSecretary, sch.ID, true)

	_, pair, err := f.svc.Login(ctx, usr.Email, "passw0rd!", "ip-1")
	require.NoError(t, err)

	t.Run("claims carry identity and tenant", func(t *testing.T) {
		claims, err := f.svc.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, usr.ID, claims.Subject)
		assert.Equal(t, sch.ID, claims.SchoolID)
		assert.Equal(t, user.RoleSecretary, claims.Role)
		assert.False(t, claims.IsRefresh())
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		_, err := f.svc.VerifyAccess(pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		stale := newFixture(t, auth.Options{AccessTTL: -time.Minute})
		ssch := stale.addSchool(t, "stale.edu")
		susr := stale.addUser(t, "old@stale.edu", "passw0rd!", user.RoleTeacher, ssch.ID, true)

		_, sp, err := stale.svc.Login(ctx, susr.Email, "passw0rd!", "ip-1")
		require.NoError(t, err)

		_, err = stale.svc.VerifyAccess(sp.AccessToken)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("foreign signature rejected", func(t *testing.T) {
		other := newFixture(t, auth.Options{Secret: []byte("a-completely-different-secret")})
		_, err := other.svc.VerifyAccess(pair.AccessToken)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
