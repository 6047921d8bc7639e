// Package main provides the command line entry point for the OMDb SQL exporter.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omdbexport/config"
	"omdbexport/database"
	"omdbexport/idlist"
	"omdbexport/jobs"
	"omdbexport/logger"
	"omdbexport/services"
	"omdbexport/sqlgen"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const usage = `Usage: omdbexport [flags] <command>

Commands:
  movies    write movie insert statements
  ratings   write rating insert statements
  all       run the movies pass, then the ratings pass
  schema    write CREATE TABLE statements for both tables

Flags:
`

// App represents the exporter with its dependencies
type App struct {
	cfg  *config.Config
	log  logrus.FieldLogger
	job  *jobs.ExportJob
	opts options
}

type options struct {
	configPath string
	envFile    string
	idsPath    string
	moviesOut  string
	ratingsOut string
	schemaOut  string
	delay      time.Duration
	verify     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		stop()
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logrus.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("omdbexport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "optional YAML config file")
	fs.StringVar(&opts.envFile, "env", ".env", "dotenv file to load before reading the environment")
	fs.StringVar(&opts.idsPath, "ids", "imdb_ids.txt", "file with one IMDb identifier per line")
	fs.StringVar(&opts.moviesOut, "movies-out", "movies.sql", "movie statements output file (appended)")
	fs.StringVar(&opts.ratingsOut, "ratings-out", "ratings.sql", "rating statements output file (appended)")
	fs.StringVar(&opts.schemaOut, "schema-out", "schema.sql", "schema output file")
	fs.DurationVar(&opts.delay, "delay", 0, "pause after every catalog call (overrides OMDB_REQUEST_DELAY)")
	fs.BoolVar(&opts.verify, "verify", false, "replay the written SQL into an in-memory sqlite database")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return flag.ErrHelp
	}
	command := fs.Arg(0)

	// Load environment variables from .env file
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		logrus.Debugf("Could not load %s file: %v", opts.envFile, err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "delay" {
			cfg.RequestDelay = opts.delay
		}
	})

	log := logger.New(cfg.LogLevel, cfg.LogFormat).WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"command": command,
	})

	app := &App{cfg: cfg, log: log, opts: opts}

	switch command {
	case "schema":
		return app.writeSchema()
	case "movies", "ratings", "all":
		return app.export(ctx, command)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// export loads the identifiers and runs the requested passes
func (app *App) export(ctx context.Context, command string) error {
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	imdbIDs, err := idlist.Load(app.opts.idsPath)
	if err != nil {
		return err
	}
	app.log.WithField("identifiers", len(imdbIDs)).Info("Loaded identifiers")

	omdbService := services.NewOMDBService(app.cfg.BaseURL, app.cfg.APIKey).WithTimeout(app.cfg.HTTPTimeout)
	app.job = jobs.NewExportJob(omdbService, app.cfg.Tables, app.cfg.RequestDelay, app.log)

	var written []string
	switch command {
	case "movies":
		_, err = app.job.GenerateMovieSQL(ctx, imdbIDs, app.opts.moviesOut)
		written = []string{app.opts.moviesOut}
	case "ratings":
		_, err = app.job.GenerateRatingSQL(ctx, imdbIDs, app.opts.ratingsOut)
		written = []string{app.opts.ratingsOut}
	case "all":
		err = app.job.Run(ctx, imdbIDs, app.opts.moviesOut, app.opts.ratingsOut)
		written = []string{app.opts.moviesOut, app.opts.ratingsOut}
	}
	if err != nil {
		return err
	}

	if app.opts.verify {
		return app.verify(written...)
	}
	return nil
}

// writeSchema writes the DDL for both tables
func (app *App) writeSchema() error {
	if err := app.cfg.Tables.Validate(); err != nil {
		return err
	}

	if err := os.WriteFile(app.opts.schemaOut, []byte(sqlgen.Schema(app.cfg.Tables)), 0o644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	app.log.WithField("output", app.opts.schemaOut).Info("Schema written")
	return nil
}

// verify replays the written files into a scratch sqlite database
func (app *App) verify(paths ...string) error {
	db, err := database.NewDB(":memory:")
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			app.log.WithError(err).Warn("Failed to close verification database")
		}
	}()

	if err := db.InitSchema(app.cfg.Tables); err != nil {
		return err
	}

	for _, path := range paths {
		count, err := db.ApplyFile(path)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		app.log.WithFields(logrus.Fields{"output": path, "statements": count}).Info("Output verified")
	}
	return nil
}
