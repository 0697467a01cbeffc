package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/class"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/subject"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

func Test_classApi(t *testing.T) {
	sch := createSchool(t, "Classes High", "classes-high.edu", true)
	admin := createUser(t, "Admin", "admin@classes-high.edu", "Sup3rSecret", user.RoleAdmin, sch.ID, true)
	teacher := createUser(t, "Teacher", "teacher@classes-high.edu", "Sup3rSecret", user.RoleTeacher, sch.ID, true)
	student := createUser(t, "Student", "student@classes-high.edu", "Sup3rSecret", user.RoleStudent, sch.ID, true)
	bystander := createUser(t, "Bystander", "bystander@classes-high.edu", "Sup3rSecret", user.RoleStudent, sch.ID, true)
	math := createSubject(t, "Math", sch.ID)

	adminToken := getToken(t, admin.Email, "Sup3rSecret")

	var created class.Class

	t.Run("create normalizes embedded member objects", func(t *testing.T) {
		// clients send members either as plain IDs or as embedded objects
		body := []byte(`{
			"name": "Math A1",
			"subject_id": "` + math.ID + `",
			"teachers": ["` + teacher.ID + `"],
			"students": [{"_id": "` + student.ID + `"}],
			"schedule": [{"day": "monday", "start_time": "09:00", "end_time": "10:30"}]
		}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/classes", adminToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

		decodeBody(t, rec, &created)
		assert.Equal(t, []string{teacher.ID}, created.TeacherIDs)
		assert.Equal(t, []string{student.ID}, created.StudentIDs)
		assert.Equal(t, sch.ID, created.SchoolID)
	})

	t.Run("duplicate name in school", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"name": "Math A1", "subject_id": math.ID})
		req, rec := newAuthRequest(http.MethodPost, "/api/classes", adminToken, body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad schedule slot", func(t *testing.T) {
		body := []byte(`{
			"name": "Math A2",
			"subject_id": "` + math.ID + `",
			"schedule": [{"day": "caturday", "start_time": "09:00", "end_time": "10:30"}]
		}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/classes", adminToken, body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("students cannot manage classes", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"name": "Rogue", "subject_id": math.ID})
		req, rec := newAuthRequest(http.MethodPost, "/api/classes", getToken(t, student.Email, "Sup3rSecret"), body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	wantClasses := func(ids ...string) func(*testing.T, *httptest.ResponseRecorder) {
		return func(t *testing.T, rec *httptest.ResponseRecorder) {
			var classes []class.Class
			decodeBody(t, rec, &classes)
			got := make([]string, 0, len(classes))
			for _, c := range classes {
				got = append(got, c.ID)
			}
			assert.ElementsMatch(t, ids, got)
		}
	}

	t.Run("query narrows by role", func(t *testing.T) {
		runTests(t, []httpTest{
			{name: "admin sees all", path: "/api/classes", token: adminToken, check: wantClasses(created.ID)},
			{name: "teacher sees own", path: "/api/classes", token: getToken(t, teacher.Email, "Sup3rSecret"),
				check: wantClasses(created.ID)},
			{name: "student sees enrolled", path: "/api/classes", token: getToken(t, student.Email, "Sup3rSecret"),
				check: wantClasses(created.ID)},
			{name: "unenrolled student sees none", path: "/api/classes", token: getToken(t, bystander.Email, "Sup3rSecret"),
				check: wantClasses()},
		})
	})

	t.Run("update and delete", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"name": "Math A1 (late)"})
		req, rec := newAuthRequest(http.MethodPut, "/api/classes/"+created.ID, adminToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

		var cls class.Class
		decodeBody(t, rec, &cls)
		assert.Equal(t, "Math A1 (late)", cls.Name)
		assert.Equal(t, math.ID, cls.SubjectID) // untouched fields survive

		req, rec = newAuthRequest(http.MethodDelete, "/api/classes/"+created.ID, adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/api/classes/"+created.ID, adminToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_subjectApi(t *testing.T) {
	schA := createSchool(t, "Subjects A", "subjects-a.edu", true)
	schB := createSchool(t, "Subjects B", "subjects-b.edu", true)
	admin := createUser(t, "Admin", "admin@subjects-a.edu", "Sup3rSecret", user.RoleAdmin, schA.ID, true)
	adminB := createUser(t, "Admin B", "admin@subjects-b.edu", "Sup3rSecret", user.RoleAdmin, schB.ID, true)

	adminToken := getToken(t, admin.Email, "Sup3rSecret")
	adminBToken := getToken(t, adminB.Email, "Sup3rSecret")

	var created subject.Subject

	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, subject.NewSubject{Name: "Chemistry", Directions: []string{"science"}})
		req, rec := newAuthRequest(http.MethodPost, "/api/subjects", adminToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

		decodeBody(t, rec, &created)
		assert.Equal(t, schA.ID, created.SchoolID)
	})

	t.Run("name unique per school only", func(t *testing.T) {
		body := marchallObj(t, subject.NewSubject{Name: "Chemistry"})
		req, rec := newAuthRequest(http.MethodPost, "/api/subjects", adminToken, body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		// the other school is free to use the same name
		req, rec = newAuthRequest(http.MethodPost, "/api/subjects", adminBToken, body)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	})

	t.Run("tenancy on reads", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/subjects/"+created.ID, adminBToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/api/subjects", adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var subjects []subject.Subject
		decodeBody(t, rec, &subjects)
		require.Len(t, subjects, 1)
		assert.Equal(t, created.ID, subjects[0].ID)
	})

	t.Run("update and delete", func(t *testing.T) {
		body := marchallObj(t, subject.UpdateSubject{Name: "Organic Chemistry"})
		req, rec := newAuthRequest(http.MethodPut, "/api/subjects/"+created.ID, adminToken, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

		req, rec = newAuthRequest(http.MethodDelete, "/api/subjects/"+created.ID, adminToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodDelete, "/api/subjects/"+created.ID, adminToken)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
