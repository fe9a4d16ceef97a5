package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"assetledger/src/database"
	"assetledger/src/server"
)

var appName = os.Getenv("APP_NAME")

func setupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}

	logger.SetLevel(level)
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logger.SetFormatter(&logger.JSONFormatter{})
	} else {
		logger.SetFormatter(&logger.TextFormatter{
			FullTimestamp: true,
		})
	}
}

func main() {
	setupLogger()
	defer handlePanic()

	app := cli.NewApp()
	app.Name = "assetledger"
	app.Usage = "asset position ledger service"
	app.Commands = []cli.Command{
		{
			Name:  "serve",
			Usage: "run migrations and start the HTTP API",
			Action: func(c *cli.Context) error {
				if err := database.InitMainDB(); err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				server.StartServer(server.GetConfig().Port)
				return nil
			},
		},
		{
			Name:  "migrate",
			Usage: "run schema migrations and catalog seeds, then exit",
			Action: func(c *cli.Context) error {
				if err := database.InitMainDB(); err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				logger.Info("Migrations complete")
				return nil
			},
		},
	}
	// Default to serving when no command is given.
	app.Action = app.Commands[0].Action

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("Application failed")
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", appName))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
