// Package main runs the autopilot scheduler, ticking every flagged case on a
// cron cadence.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	cli "github.com/urfave/cli/v3"

	"github.com/careops/referralos/pkg/autopilot"
	"github.com/careops/referralos/pkg/cmd"
	"github.com/careops/referralos/pkg/log"
)

func main() {
	logger := log.WithModule("referral-autopilot")

	command := &cli.Command{
		Name:                  "referral-autopilot",
		Usage:                 "Advance case journeys on a schedule",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres:// or a file root)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for the tick cadence",
				Value:   "@every 15m",
				Sources: cli.EnvVars("AUTOPILOT_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Referral Autopilot")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "referral-autopilot", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			progressor := autopilot.NewProgressor(logger, persistence, eventBus)

			scheduler := cron.New(cron.WithChain(
				cron.SkipIfStillRunning(cron.DefaultLogger),
				cron.Recover(cron.DefaultLogger),
			))

			_, err := scheduler.AddFunc(command.String("schedule"), func() {
				results, err := progressor.TickAll(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to tick cases", "error", err)

					return
				}

				logger.InfoContext(ctx, "Autopilot tick complete", "cases", len(results))
			})
			if err != nil {
				return err
			}

			scheduler.Start()

			logger.InfoContext(ctx, "Autopilot started", "schedule", command.String("schedule"))

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			<-sigChan
			logger.InfoContext(ctx, "Shutting down autopilot...")

			<-scheduler.Stop().Done()

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
