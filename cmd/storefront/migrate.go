package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"storefront/pkg/storefront/infrastructure/mysql"
)

func migrateCommand(logger *log.Logger) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database migrations",
		Action: func(c *cli.Context) error {
			cnf, err := parseEnv()
			if err != nil {
				return err
			}
			return mysql.Migrate(mysql.Config{DSN: cnf.DBDSN}, logger)
		},
	}
}
