package mysql

import (
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/data/mysql/migrations"
)

// Migrate applies every pending migration embedded in data/mysql/migrations.
func Migrate(config Config, logger log.FieldLogger) error {
	dsn, err := mysql.ParseDSN(config.DSN)
	if err != nil {
		return errors.Wrap(err, "parse mysql dsn")
	}
	dsn.MultiStatements = true
	dsn.ParseTime = true

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return errors.Wrap(err, "open mysql connection")
	}
	defer db.Close()

	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return errors.Wrap(err, "create migrate driver")
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return errors.Wrap(err, "open embedded migrations")
	}
	m, err := migrate.NewWithInstance("iofs", source, dsn.DBName, driver)
	if err != nil {
		return errors.Wrap(err, "create migrator")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "read migration version")
	}
	logger.WithFields(log.Fields{"version": version, "dirty": dirty}).Info("database schema is up to date")
	return nil
}
