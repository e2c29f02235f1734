package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  appID,
		Usage: "storefront order intake and inventory service",
		Commands: []*cli.Command{
			serviceCommand(logger),
			migrateCommand(logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("storefront stopped with error")
	}
}
