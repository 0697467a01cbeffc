package main

import (
	"errors"

	gormdb "github.com/NikosMpantekas/Gradebook-dev-sub005/storage/database/gorm"
)

func (cli *commandLine) migrate() error {
	if cli.db == nil {
		return errors.New("migrate requires a configured database URL")
	}
	return gormdb.Migrate(cli.db)
}
