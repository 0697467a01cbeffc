package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/auth"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/class"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/contact"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/event"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/grade"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/maintenance"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/push"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/subject"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/theme"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
	emailsvc "github.com/NikosMpantekas/Gradebook-dev-sub005/services/email"
	logsvc "github.com/NikosMpantekas/Gradebook-dev-sub005/services/logger"
	memorycache "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/cache/memory"
	inmemdb "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/database/inmem"
)

var (
	app Server

	usrRepo   user.Repository
	schRepo   school.Repository
	clsRepo   class.Repository
	subRepo   subject.Repository
	grdRepo   grade.Repository
	evtRepo   event.Repository
	cntRepo   contact.Repository
	thmRepo   theme.Repository
	pushRepo  push.Repository
	maintRepo maintenance.Repository

	attempts *memorycache.AttemptStore
	revoked  *memorycache.RevocationStore
	rates    *memorycache.RateStore

	authSvc  *auth.Service
	usrSvc   *user.Service
	schSvc   *school.Service
	maintSvc *maintenance.Service

	pushSender = &fakePushSender{}
)

func TestMain(m *testing.M) {
	core.Conf.TestMode = true

	db, err := inmemdb.Open()
	if err != nil {
		fmt.Printf("inmemdb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	schRepo = inmemdb.NewSchoolRepository(db)
	clsRepo = inmemdb.NewClassRepository(db)
	subRepo = inmemdb.NewSubjectRepository(db)
	grdRepo = inmemdb.NewGradeRepository(db)
	evtRepo = inmemdb.NewEventRepository(db)
	cntRepo = inmemdb.NewContactRepository(db)
	thmRepo = inmemdb.NewThemeRepository(db)
	pushRepo = inmemdb.NewSubscriptionRepository(db)
	maintRepo = inmemdb.NewMaintenanceRepository(db)

	attempts = memorycache.NewAttemptStore()
	revoked = memorycache.NewRevocationStore()
	rates = memorycache.NewRateStore()

	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	mailSvc := emailsvc.NewConsoleServiceMock()

	usrSvc = user.NewService(usrRepo, mailSvc)
	schSvc = school.NewService(schRepo)
	clsSvc := class.NewService(clsRepo)
	subSvc := subject.NewService(subRepo)
	grdSvc := grade.NewService(grdRepo, usrSvc, clsSvc)
	evtSvc := event.NewService(evtRepo)
	cntSvc := contact.NewService(cntRepo, rates, mailSvc)
	thmSvc := theme.NewService(thmRepo)
	pushSvc := push.NewService(pushRepo, pushSender, logger)
	maintSvc = maintenance.NewService(maintRepo)
	authSvc = auth.NewService(usrSvc, schSvc, attempts, revoked)

	app = NewServer(ServerDeps{
		DisableReqLogs: true,
		Logger:         logger,
		AuthSvc:        authSvc,
		UserSvc:        usrSvc,
		SchoolSvc:      schSvc,
		ClassSvc:       clsSvc,
		SubjectSvc:     subSvc,
		GradeSvc:       grdSvc,
		EventSvc:       evtSvc,
		ContactSvc:     cntSvc,
		ThemeSvc:       thmSvc,
		PushSvc:        pushSvc,
		MaintenanceSvc: maintSvc,
	})

	os.Exit(m.Run())
}

type fakePushSender struct {
	mu   sync.Mutex
	sent []push.Notification
}

func (f *fakePushSender) Send(_ context.Context, _ push.Subscription, n push.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return nil
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantMsg  interface{} // expected error body message, if any
	check    func(t *testing.T, rec *httptest.ResponseRecorder)
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func runTests(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			wantCode := tt.wantCode
			if wantCode == 0 {
				wantCode = http.StatusOK
			}

			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			assert.Equal(t, wantCode, rec.Code, "body: %s", rec.Body.String())
			if tt.wantMsg != nil {
				var body struct {
					Message interface{} `json:"message"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantMsg, body.Message)
			}
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

// test fixtures go straight through the repositories: the handlers under test
// exercise the service layer themselves.

func createSchool(t *testing.T, name, domain string, active bool) school.School {
	t.Helper()
	now := time.Now().UTC()
	sch, err := schRepo.CreateSchool(context.Background(), school.School{
		ID:          uuid.NewString(),
		Name:        name,
		EmailDomain: domain,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return sch
}

func createUser(t *testing.T, name, email, pwd, role, schoolID string, active bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		SchoolID:  schoolID,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, usr.SetPassword(pwd))
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func createSubject(t *testing.T, name, schoolID string) subject.Subject {
	t.Helper()
	now := time.Now().UTC()
	sub, err := subRepo.CreateSubject(context.Background(), subject.Subject{
		ID:        uuid.NewString(),
		Name:      name,
		SchoolID:  schoolID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return sub
}

func createClass(t *testing.T, name, subjectID, schoolID string, teacherIDs, studentIDs []string) class.Class {
	t.Helper()
	now := time.Now().UTC()
	cls, err := clsRepo.CreateClass(context.Background(), class.Class{
		ID:         uuid.NewString(),
		Name:       name,
		SubjectID:  subjectID,
		SchoolID:   schoolID,
		TeacherIDs: teacherIDs,
		StudentIDs: studentIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
	return cls
}

// getToken logs in through the real auth flow so tokens carry whatever
// claims production tokens do.
func getToken(t *testing.T, email, pwd string) string {
	t.Helper()
	_, pair, err := authSvc.Login(context.Background(), email, pwd, "token-helper")
	require.NoError(t, err)
	return pair.AccessToken
}
