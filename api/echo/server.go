package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
)

type (
	ServerDeps struct {
		Addr           string
		DisableReqLogs bool

		Logger         core.Logger
		AuthSvc        *auth.Service
		UserSvc        *user.Service
		SchoolSvc      *school.Service
		ClassSvc       *class.Service
		SubjectSvc     *subject.Service
		GradeSvc       *grade.Service
		EventSvc       *event.Service
		ContactSvc     *contact.Service
		ThemeSvc       *theme.Service
		PushSvc        *push.Service
		MaintenanceSvc *maintenance.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestID())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/health", health)

	g := s.app.Group("/api")

	// un-authed endpoints
	g.POST("/users/login", s.login)
	g.POST("/users/refresh-token", s.refreshToken)
	g.POST("/users/logout", s.logout)
	g.POST("/contact/public", s.submitPublicContact)

	// authed endpoints
	ag := g.Group("", s.jwtMiddleware, s.maintenanceMiddleware, s.tenancyMiddleware)

	registerUserAPI(ag, s.deps.UserSvc)
	registerSchoolAPI(ag, s.deps.SchoolSvc)
	registerClassAPI(ag, s.deps.ClassSvc)
	registerSubjectAPI(ag, s.deps.SubjectSvc)
	registerGradeAPI(ag, s.deps.GradeSvc, s.featureMiddleware("grades"))
	registerEventAPI(ag, s.deps.EventSvc, s.deps.PushSvc)
	registerContactAPI(ag, s.deps.ContactSvc)
	registerThemeAPI(ag, s.deps.ThemeSvc)
	registerPushAPI(ag, s.deps.PushSvc)
	registerMaintenanceAPI(ag, s.deps.MaintenanceSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.deps.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// ShutdownSignal delivers OS signals plus internally raised shutdown
// requests (integrity errors caught by the error handler).
func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "app": core.Conf.AppName})
}
