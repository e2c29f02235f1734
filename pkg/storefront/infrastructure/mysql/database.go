package mysql

import (
	"context"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const duplicateEntryErrorCode = 1062

type Config struct {
	DSN            string
	MaxConnections int
}

// Open connects to MySQL and verifies the connection. parseTime is forced on
// because repositories scan DATETIME columns into time.Time.
func Open(ctx context.Context, config Config) (*sqlx.DB, error) {
	dsn, err := mysql.ParseDSN(config.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "parse mysql dsn")
	}
	dsn.ParseTime = true
	dsn.Loc = time.UTC

	db, err := sqlx.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, errors.Wrap(err, "open mysql connection")
	}
	if config.MaxConnections > 0 {
		db.SetMaxOpenConns(config.MaxConnections)
		db.SetMaxIdleConns(config.MaxConnections)
	}
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping mysql")
	}
	return db, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntryErrorCode
}
