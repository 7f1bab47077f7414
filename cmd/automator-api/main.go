package main

import (
	"context"
	"os"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/guidely/automator/pkg/cmd"
	"github.com/guidely/automator/pkg/log"
)

const defaultPort = 9091

func main() {
	command := &urfavecli.Command{
		Name:                  "automator-api",
		Usage:                 "Create and manage automators",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: urfavecli.EnvVars("PORT"),
			},
			&urfavecli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  urfavecli.EnvVars("DATABASE_URL"),
			},
			&urfavecli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: urfavecli.EnvVars("EVENT_BUS_TYPE"),
			},
			&urfavecli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: urfavecli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *urfavecli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Automator API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, eventBus)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
