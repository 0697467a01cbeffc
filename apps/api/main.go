package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/NikosMpantekas/Gradebook-dev-sub005/api/echo"
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
	pushsvc "github.com/NikosMpantekas/Gradebook-dev-sub005/services/push"
	memorycache "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/cache/memory"
	rediscache "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/cache/redis"
	gormdb "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/database/gorm"
	inmemdb "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/database/inmem"
)

type repositories struct {
	users         user.Repository
	schools       school.Repository
	classes       class.Repository
	subjects      subject.Repository
	grades        grade.Repository
	events        event.Repository
	contacts      contact.Repository
	themes        theme.Repository
	subscriptions push.Repository
	maintenance   maintenance.Repository
}

type stores struct {
	attempts auth.AttemptStore
	revoked  auth.RevocationStore
	rate     contact.RateStore
}

func main() {
	// set up loggers
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		rb := logsvc.NewRollbarLogger(std, core.Conf)
		rb.Enable(true)
		logger = rb
	}

	// set up storage
	repos, err := setUpRepositories()
	if err != nil {
		std.Fatalf("setting up database: %v", err)
	}
	sts, err := setUpStores()
	if err != nil {
		std.Fatalf("setting up stores: %v", err)
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(repos.users, mailSvc)
	schSvc := school.NewService(repos.schools)
	authSvc := auth.NewService(usrSvc, schSvc, sts.attempts, sts.revoked)
	clsSvc := class.NewService(repos.classes)
	subSvc := subject.NewService(repos.subjects)
	grdSvc := grade.NewService(repos.grades, usrSvc, clsSvc)
	evtSvc := event.NewService(repos.events)
	ctcSvc := contact.NewService(repos.contacts, sts.rate, mailSvc)
	thmSvc := theme.NewService(repos.themes)
	pshSvc := push.NewService(repos.subscriptions, pushsvc.NewWebpushSender(), logger)
	mntSvc := maintenance.NewService(repos.maintenance)

	// start API server
	server := echoapi.NewServer(echoapi.ServerDeps{
		Addr:           core.Conf.Addr(),
		Logger:         logger,
		AuthSvc:        authSvc,
		UserSvc:        usrSvc,
		SchoolSvc:      schSvc,
		ClassSvc:       clsSvc,
		SubjectSvc:     subSvc,
		GradeSvc:       grdSvc,
		EventSvc:       evtSvc,
		ContactSvc:     ctcSvc,
		ThemeSvc:       thmSvc,
		PushSvc:        pshSvc,
		MaintenanceSvc: mntSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", core.Conf.Addr()))
		serverErrors <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		std.Fatalf("server error: %v", err)

	case sig := <-quit:
		logger.Info(fmt.Sprintf("%v: start shutdown...", sig))
		stop(std, server)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: integrity issue, start shutdown...", sig))
		stop(std, server)
	}
	logger.Info("shutdown complete")
}

func stop(std *log.Logger, server echoapi.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		std.Fatalf("could not stop server gracefully: %v", err)
	}
}

// setUpRepositories opens the configured database. Without a DatabaseURL the
// in-memory backend serves local development.
func setUpRepositories() (repositories, error) {
	if core.Conf.DatabaseURL == "" {
		db, err := inmemdb.Open()
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			users:         inmemdb.NewUserRepository(db),
			schools:       inmemdb.NewSchoolRepository(db),
			classes:       inmemdb.NewClassRepository(db),
			subjects:      inmemdb.NewSubjectRepository(db),
			grades:        inmemdb.NewGradeRepository(db),
			events:        inmemdb.NewEventRepository(db),
			contacts:      inmemdb.NewContactRepository(db),
			themes:        inmemdb.NewThemeRepository(db),
			subscriptions: inmemdb.NewSubscriptionRepository(db),
			maintenance:   inmemdb.NewMaintenanceRepository(db),
		}, nil
	}

	db, err := gormdb.Open(core.Conf.DatabaseURL)
	if err != nil {
		return repositories{}, err
	}
	if err = gormdb.Migrate(db); err != nil {
		return repositories{}, err
	}
	return repositories{
		users:         gormdb.NewUserRepository(db),
		schools:       gormdb.NewSchoolRepository(db),
		classes:       gormdb.NewClassRepository(db),
		subjects:      gormdb.NewSubjectRepository(db),
		grades:        gormdb.NewGradeRepository(db),
		events:        gormdb.NewEventRepository(db),
		contacts:      gormdb.NewContactRepository(db),
		themes:        gormdb.NewThemeRepository(db),
		subscriptions: gormdb.NewSubscriptionRepository(db),
		maintenance:   gormdb.NewMaintenanceRepository(db),
	}, nil
}

// setUpStores wires the ephemeral stores to redis when configured, so
// lockouts and revocations hold across server instances.
func setUpStores() (stores, error) {
	if core.Conf.RedisURL == "" {
		return stores{
			attempts: memorycache.NewAttemptStore(),
			revoked:  memorycache.NewRevocationStore(),
			rate:     memorycache.NewRateStore(),
		}, nil
	}

	rdb, err := rediscache.Open(core.Conf.RedisURL)
	if err != nil {
		return stores{}, err
	}
	return stores{
		attempts: rediscache.NewAttemptStore(rdb),
		revoked:  rediscache.NewRevocationStore(rdb),
		rate:     rediscache.NewRateStore(rdb),
	}, nil
}
