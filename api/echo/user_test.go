package echoapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

func Test_userApi_query(t *testing.T) {
	schA := createSchool(t, "Query A", "query-a.edu", true)
	schB := createSchool(t, "Query B", "query-b.edu", true)

	admin := createUser(t, "Alice Admin", "alice@query-a.edu", "Sup3rSecret", user.RoleAdmin, schA.ID, true)
	student := createUser(t, "Sam Student", "sam@query-a.edu", "Sup3rSecret", user.RoleStudent, schA.ID, true)
	outsider := createUser(t, "Omar Outsider", "omar@query-b.edu", "Sup3rSecret", user.RoleStudent, schB.ID, true)
	super := createUser(t, "Root", "root@gradebook.app", "Sup3rSecret", user.RoleSuperAdmin, "", true)

	secretary := createUser(t, "Sue Secretary", "sue@query-a.edu", "Sup3rSecret", user.RoleSecretary, schA.ID, true)
	manager := createUser(t, "Mgr Secretary", "mgr@query-a.edu", "Sup3rSecret", user.RoleSecretary, schA.ID, true)
	manager.SecretaryPermissions.CanManageUsers = true
	_, err := usrRepo.UpdateUser(context.Background(), manager, nil)
	require.NoError(t, err)

	adminToken := getToken(t, admin.Email, "Sup3rSecret")

	containsIDs := func(want []string, wantMissing []string) func(*testing.T, *httptest.ResponseRecorder) {
		return func(t *testing.T, rec *httptest.ResponseRecorder) {
			var users []user.User
			decodeBody(t, rec, &users)
			got := make(map[string]bool, len(users))
			for _, u := range users {
				got[u.ID] = true
			}
			for _, id := range want {
				assert.True(t, got[id], "missing user %s", id)
			}
			for _, id := range wantMissing {
				assert.False(t, got[id], "unexpected user %s", id)
			}
		}
	}

	tests := []httpTest{
		{name: "Auth required", path: "/api/users", wantCode: http.StatusUnauthorized},
		{
			name: "Student forbidden", path: "/api/users", token: getToken(t, student.Email, "Sup3rSecret"),
			wantCode: http.StatusForbidden, wantMsg: "permission denied",
		},
		{
			name: "Plain secretary forbidden", path: "/api/users", token: getToken(t, secretary.Email, "Sup3rSecret"),
			wantCode: http.StatusForbidden,
		},
		{
			name: "Managing secretary allowed", path: "/api/users", token: getToken(t, manager.Email, "Sup3rSecret"),
			check: containsIDs([]string{admin.ID, student.ID}, []string{outsider.ID}),
		},
		{
			name: "Admin sees own school only", path: "/api/users", token: adminToken,
			check: containsIDs([]string{admin.ID, student.ID, secretary.ID}, []string{outsider.ID, super.ID}),
		},
		{
			name: "Superadmin sees across schools", path: "/api/users", token: getToken(t, super.Email, "Sup3rSecret"),
			check: containsIDs([]string{admin.ID, outsider.ID, super.ID}, nil),
		},
		{
			name: "Filter by role", path: "/api/users?role=student", token: adminToken,
			check: containsIDs([]string{student.ID}, []string{admin.ID, outsider.ID}),
		},
		{
			name: "Search matches name", path: "/api/users?search=alice", token: adminToken,
			check: containsIDs([]string{admin.ID}, []string{student.ID}),
		},
		{
			name: "Roles listing", path: "/api/users/roles", token: adminToken,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var roles []user.Role
				decodeBody(t, rec, &roles)
				assert.Len(t, roles, len(user.Roles))
			},
		},
	}
	runTests(t, tests)
}

func Test_userApi_create(t *testing.T) {
	schA := createSchool(t, "Create A", "create-a.edu", true)
	schB := createSchool(t, "Create B", "create-b.edu", true)

	admin := createUser(t, "Admin", "admin@create-a.edu", "Sup3rSecret", user.RoleAdmin, schA.ID, true)
	createUser(t, "Taken", "taken@create-a.edu", "Sup3rSecret", user.RoleStudent, schA.ID, true)
	adminToken := getToken(t, admin.Email, "Sup3rSecret")

	newUser := func(email, role, schoolID string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            "New Kid",
			Email:           email,
			Password:        "Sup3rSecret",
			PasswordConfirm: "Sup3rSecret",
			Role:            role,
			SchoolID:        schoolID,
		})
	}

	tests := []httpTest{
		{
			name: "OK", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: newUser("kid@create-a.edu", user.RoleStudent, ""), wantCode: http.StatusCreated,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var usr user.User
				decodeBody(t, rec, &usr)
				assert.Equal(t, schA.ID, usr.SchoolID)
				assert.True(t, usr.IsActive)
				assert.True(t, usr.FirstLogin)
			},
		},
		{
			name: "Tenant school forced over body school", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: newUser("kid2@create-a.edu", user.RoleStudent, schB.ID), wantCode: http.StatusCreated,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var usr user.User
				decodeBody(t, rec, &usr)
				assert.Equal(t, schA.ID, usr.SchoolID)
			},
		},
		{
			// the tenant school is forced onto the payload first, which a
			// superadmin account cannot carry
			name: "Admin cannot mint superadmins", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: newUser("boss@create-a.edu", user.RoleSuperAdmin, ""), wantCode: http.StatusBadRequest,
		},
		{
			name: "Duplicate email in school", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: newUser("taken@create-a.edu", user.RoleStudent, ""), wantCode: http.StatusBadRequest,
			wantMsg: map[string]interface{}{"email": user.ErrEmailExists.Error()},
		},
		{
			name: "Password mismatch", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: marchallObj(t, user.NewUser{
				Name: "X", Email: "x@create-a.edu", Password: "Sup3rSecret",
				PasswordConfirm: "different1", Role: user.RoleStudent,
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "Unknown role", method: http.MethodPost, path: "/api/users", token: adminToken,
			body: newUser("y@create-a.edu", "principal", ""), wantCode: http.StatusBadRequest,
			wantMsg: map[string]interface{}{"role": "unknown role"},
		},
	}
	runTests(t, tests)

	// a secretary may manage users but never grant a role above their own
	t.Run("no role escalation", func(t *testing.T) {
		sec := createUser(t, "Sec", "sec@create-a.edu", "Sup3rSecret", user.RoleSecretary, schA.ID, true)
		sec.SecretaryPermissions.CanManageUsers = true
		_, err := usrRepo.UpdateUser(context.Background(), sec, nil)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodPost, "/api/users", getToken(t, sec.Email, "Sup3rSecret"),
			newUser("upstart@create-a.edu", user.RoleAdmin, ""))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	// the same email may exist in another school
	t.Run("same email in another tenant", func(t *testing.T) {
		adminB := createUser(t, "Admin B", "admin@create-b.edu", "Sup3rSecret", user.RoleAdmin, schB.ID, true)
		req, rec := newAuthRequest(http.MethodPost, "/api/users", getToken(t, adminB.Email, "Sup3rSecret"),
			newUser("taken@create-a.edu", user.RoleStudent, ""))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	})
}

func Test_userApi_retrieve(t *testing.T) {
	schA := createSchool(t, "Retrieve A", "retrieve-a.edu", true)
	schB := createSchool(t, "Retrieve B", "retrieve-b.edu", true)

	admin := createUser(t, "Admin", "admin@retrieve-a.edu", "Sup3rSecret", user.RoleAdmin, schA.ID, true)
	student := createUser(t, "Student", "student@retrieve-a.edu", "Sup3rSecret", user.RoleStudent, schA.ID, true)
	sibling := createUser(t, "Sibling", "sibling@retrieve-a.edu", "Sup3rSecret", user.RoleStudent, schA.ID, true)
	parent := createUser(t, "Parent", "parent@retrieve-a.edu", "Sup3rSecret", user.RoleParent, schA.ID, true)
	outsider := createUser(t, "Outsider", "outsider@retrieve-b.edu", "Sup3rSecret", user.RoleStudent, schB.ID, true)

	require.NoError(t, usrRepo.LinkStudents(context.Background(), parent.ID, student.ID))

	studentToken := getToken(t, student.Email, "Sup3rSecret")
	parentToken := getToken(t, parent.Email, "Sup3rSecret")
	adminToken := getToken(t, admin.Email, "Sup3rSecret")

	tests := []httpTest{
		{name: "Self", path: "/api/users/" + student.ID, token: studentToken},
		{name: "Student reading another student", path: "/api/users/" + sibling.ID, token: studentToken, wantCode: http.StatusForbidden},
		{name: "Parent reading linked student", path: "/api/users/" + student.ID, token: parentToken},
		{name: "Parent reading unlinked student", path: "/api/users/" + sibling.ID, token: parentToken, wantCode: http.StatusForbidden},
		{name: "Admin reading own school", path: "/api/users/" + sibling.ID, token: adminToken},
		// other tenants' users read as absent, never as forbidden
		{name: "Admin reading other tenant", path: "/api/users/" + outsider.ID, token: adminToken, wantCode: http.StatusNotFound},
		{name: "Unknown id", path: "/api/users/nope", token: adminToken, wantCode: http.StatusNotFound},
	}
	runTests(t, tests)
}

func Test_userApi_update_destroy(t *testing.T) {
	sch := createSchool(t, "Update A", "update-a.edu", true)
	admin := createUser(t, "Admin", "admin@update-a.edu", "Sup3rSecret", user.RoleAdmin, sch.ID, true)
	target := createUser(t, "Target", "target@update-a.edu", "Sup3rSecret", user.RoleStudent, sch.ID, true)
	adminToken := getToken(t, admin.Email, "Sup3rSecret")

	t.Run("update", func(t *testing.T) {
		off := false
		body := marchallObj(t, user.UpdateUser{Name: "Renamed", IsActive: &off})
		req, rec := newAuthRequest(http.MethodPut, "/api/users/"+target.ID, adminToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

		var usr user.User
		decodeBody(t, rec, &usr)
		assert.Equal(t, "Renamed", usr.Name)
		assert.Equal(t, target.Email, usr.Email) // unchanged fields keep their value
		assert.False(t, usr.IsActive)
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/users/"+target.ID, adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/api/users/"+target.ID, adminToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_userApi_linkStudents(t *testing.T) {
	schA := createSchool(t, "Link A", "link-a.edu", true)
	schB := createSchool(t, "Link B", "link-b.edu", true)

	admin := createUser(t, "Admin", "admin@link-a.edu", "Sup3rSecret", user.RoleAdmin, schA.ID, true)
	parent := createUser(t, "Parent", "parent@link-a.edu", "Sup3rSecret", user.RoleParent, schA.ID, true)
	student := createUser(t, "Student", "student@link-a.edu", "Sup3rSecret", user.RoleStudent, schA.ID, true)
	teacher := createUser(t, "Teacher", "teacher@link-a.edu", "Sup3rSecret", user.RoleTeacher, schA.ID, true)
	foreign := createUser(t, "Foreign", "foreign@link-b.edu", "Sup3rSecret", user.RoleStudent, schB.ID, true)
	adminToken := getToken(t, admin.Email, "Sup3rSecret")

	link := func(parentID string, studentIDs ...string) *httptest.ResponseRecorder {
		body := marchallObj(t, LinkStudentsRequest{StudentIDs: studentIDs})
		req, rec := newAuthRequest(http.MethodPost, "/api/users/"+parentID+"/students", adminToken, body)
		app.ServeHTTP(rec, req)
		return rec
	}

	t.Run("link keeps both sides in sync", func(t *testing.T) {
		rec := link(parent.ID, student.ID)
		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

		var p user.User
		decodeBody(t, rec, &p)
		assert.Contains(t, p.StudentIDs, student.ID)

		s, err := usrRepo.GetUserByID(context.Background(), student.ID)
		require.NoError(t, err)
		assert.Contains(t, s.ParentIDs, parent.ID)
	})

	t.Run("cross-tenant student reads as absent", func(t *testing.T) {
		rec := link(parent.ID, foreign.ID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("teacher cannot be a link target", func(t *testing.T) {
		rec := link(parent.ID, teacher.ID)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-parent cannot hold links", func(t *testing.T) {
		rec := link(student.ID, student.ID)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty list rejected", func(t *testing.T) {
		rec := link(parent.ID)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unlink removes both sides", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/users/"+parent.ID+"/students/"+student.ID, adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		p, err := usrRepo.GetUserByID(context.Background(), parent.ID)
		require.NoError(t, err)
		assert.NotContains(t, p.StudentIDs, student.ID)

		s, err := usrRepo.GetUserByID(context.Background(), student.ID)
		require.NoError(t, err)
		assert.NotContains(t, s.ParentIDs, parent.ID)
	})
}

// A user whose school link is missing gets it recovered from their email
// domain on the first authenticated request, and the recovery sticks.
func Test_server_tenancyRecovery(t *testing.T) {
	sch := createSchool(t, "Recover High", "recover-high.edu", true)
	lost := createUser(t, "Lina Lost", "lina@recover-high.edu", "Sup3rSecret", user.RoleTeacher, "", true)
	stray := createUser(t, "Stray", "stray@no-such-school.edu", "Sup3rSecret", user.RoleTeacher, "", true)

	t.Run("recovered and persisted", func(t *testing.T) {
		token := getToken(t, lost.Email, "Sup3rSecret")
		req, rec := newAuthRequest(http.MethodGet, "/api/users/"+lost.ID, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

		usr, err := usrRepo.GetUserByID(context.Background(), lost.ID)
		require.NoError(t, err)
		assert.Equal(t, sch.ID, usr.SchoolID)
	})

	t.Run("no matching school", func(t *testing.T) {
		token := getToken(t, stray.Email, "Sup3rSecret")
		req, rec := newAuthRequest(http.MethodGet, "/api/users/"+stray.ID, token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Message string `json:"message"`
		}
		decodeBody(t, rec, &body)
		assert.Equal(t, "school context missing", body.Message)
	})
}

func Test_server_schoolInactive(t *testing.T) {
	sch := createSchool(t, "Closed High", "closed-high.edu", false)
	usr := createUser(t, "Cass", "cass@closed-high.edu", "Sup3rSecret", user.RoleTeacher, sch.ID, true)

	// login still works; authenticated traffic is what the gate rejects
	_, pair, err := authSvc.Login(context.Background(), usr.Email, "Sup3rSecret", "inactive-school-test")
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodGet, "/api/users/"+usr.ID, pair.AccessToken)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
