// Command catalogctl manages the movie catalog database: schema migrations,
// seeding and inspection.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found")
	}

	runner := NewRunner(RunnerOpts{Logger: logger})
	app := &cli.Command{
		Name:     "catalogctl",
		Usage:    "Manage the flix movie catalog",
		Flags:    []cli.Flag{databaseFlag()},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("catalogctl: %v", err)
	}
}
