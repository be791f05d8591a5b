package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v3"

	"go-flix-app/internal/adapter/seed"
	repo "go-flix-app/internal/adapter/storage/postgres"
)

// Runner holds the dependencies of the catalogctl commands.
type Runner struct {
	logger *log.Logger
	slog   *slog.Logger
	output io.Writer
}

// RunnerOpts configures a Runner. Nil fields get defaults.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{
		logger: opts.Logger,
		// The storage packages log through slog; route them through the same handler.
		slog:   slog.New(opts.Logger),
		output: opts.Output,
	}
}

func databaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "database-url",
		Usage:   "Postgres connection string",
		Sources: cli.EnvVars("DATABASE_URL"),
	}
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "migrate",
			Usage:  "Apply pending schema migrations",
			Action: r.Migrate,
		},
		{
			Name:  "seed",
			Usage: "Upsert catalog records from a TOML file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "file",
					Aliases: []string{"f"},
					Usage:   "Path to a movies TOML file (defaults to the built-in sample catalog)",
				},
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "Parse and validate the file without writing",
				},
			},
			Action: r.Seed,
		},
		{
			Name:   "count",
			Usage:  "Print the number of movies in the catalog",
			Action: r.Count,
		},
	}
}

// Migrate applies every pending migration.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	dsn, err := databaseURL(cmd)
	if err != nil {
		return err
	}
	return repo.RunMigrations(dsn, r.slog)
}

// Seed loads the catalog file and upserts every record.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	movies, err := seed.LoadFile(cmd.String("file"))
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		r.writePlainln("%d movies valid", len(movies))
		return nil
	}

	pool, err := r.connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := seed.Seed(ctx, repo.NewMovieRepository(pool), movies, r.slog)
	if err != nil {
		return err
	}
	r.writePlainln("%d movies seeded", n)
	return nil
}

// Count prints the catalog size.
func (r *Runner) Count(ctx context.Context, cmd *cli.Command) error {
	pool, err := r.connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := repo.NewMovieRepository(pool).Count(ctx)
	if err != nil {
		return err
	}
	r.writePlainln("%d", n)
	return nil
}

func (r *Runner) connect(ctx context.Context, cmd *cli.Command) (*pgxpool.Pool, error) {
	dsn, err := databaseURL(cmd)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func databaseURL(cmd *cli.Command) (string, error) {
	dsn := cmd.String("database-url")
	if dsn == "" {
		return "", errors.New("database url is required (--database-url or DATABASE_URL)")
	}
	return dsn, nil
}

func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(r.output, format+"\n", args...)
}
