package migrations

import (
	"database/sql"
	_ "embed"

	"github.com/0xPolygon/claimdeployer/db"
	"github.com/0xPolygon/claimdeployer/db/types"
	"github.com/0xPolygon/claimdeployer/log"
)

//go:embed recordledger0001.sql
var mig001 string

func RunMigrations(logger *log.Logger, database *sql.DB) error {
	migrations := []types.Migration{
		{
			ID:  "recordledger0001",
			SQL: mig001,
		},
	}

	return db.RunMigrationsDB(logger, database, migrations)
}
