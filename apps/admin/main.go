package main

import (
	"log"
	"os"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
	gormdb "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/database/gorm"
	inmemdb "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/database/inmem"
	"gorm.io/gorm"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var (
		usrRepo user.Repository
		schRepo school.Repository
		db      *gorm.DB
	)
	if core.Conf.DatabaseURL == "" {
		mem, err := inmemdb.Open()
		errAndDie(err)
		usrRepo = inmemdb.NewUserRepository(mem)
		schRepo = inmemdb.NewSchoolRepository(mem)
	} else {
		var err error
		db, err = gormdb.Open(core.Conf.DatabaseURL)
		errAndDie(err)
		usrRepo = gormdb.NewUserRepository(db)
		schRepo = gormdb.NewSchoolRepository(db)
	}

	cli := commandLine{
		db:      db,
		usrRepo: usrRepo,
		schRepo: schRepo,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
