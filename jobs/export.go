// Package jobs runs the catalog export passes.
package jobs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"omdbexport/models"
	"omdbexport/sqlgen"

	"github.com/sirupsen/logrus"
)

// DefaultDelay is the pause after every catalog call
const DefaultDelay = time.Second

// MovieFetcher looks up a single title in the catalog
type MovieFetcher interface {
	GetMovie(ctx context.Context, imdbID string) (*models.Movie, error)
}

// Sleeper pauses for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep waits for d, returning early with the context error if ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Summary counts what one pass did
type Summary struct {
	Processed  int
	Skipped    int
	Statements int
}

// ExportJob turns catalog lookups into SQL insert statements
type ExportJob struct {
	fetcher MovieFetcher
	tables  sqlgen.Tables
	delay   time.Duration
	sleep   Sleeper
	log     logrus.FieldLogger
}

// renderFunc builds the statements for one successful lookup
type renderFunc func(imdbID string, movie *models.Movie) []string

// NewExportJob creates a new export job
func NewExportJob(fetcher MovieFetcher, tables sqlgen.Tables, delay time.Duration, log logrus.FieldLogger) *ExportJob {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ExportJob{
		fetcher: fetcher,
		tables:  tables,
		delay:   delay,
		sleep:   Sleep,
		log:     log,
	}
}

// WithSleeper replaces the pause between catalog calls
func (j *ExportJob) WithSleeper(sleep Sleeper) *ExportJob {
	j.sleep = sleep
	return j
}

// GenerateMovieSQL appends one movie insert per successful lookup to path.
func (j *ExportJob) GenerateMovieSQL(ctx context.Context, imdbIDs []string, path string) (Summary, error) {
	return j.generate(ctx, "movies", imdbIDs, path, func(imdbID string, movie *models.Movie) []string {
		return []string{sqlgen.MovieInsert(j.tables.Movies, imdbID, movie)}
	})
}

// GenerateRatingSQL appends one rating insert per rating source to path.
func (j *ExportJob) GenerateRatingSQL(ctx context.Context, imdbIDs []string, path string) (Summary, error) {
	return j.generate(ctx, "ratings", imdbIDs, path, func(imdbID string, movie *models.Movie) []string {
		return sqlgen.RatingInserts(j.tables.Ratings, imdbID, movie)
	})
}

// Run runs the movie pass and then the rating pass
func (j *ExportJob) Run(ctx context.Context, imdbIDs []string, moviesPath, ratingsPath string) error {
	if _, err := j.GenerateMovieSQL(ctx, imdbIDs, moviesPath); err != nil {
		return err
	}
	if _, err := j.GenerateRatingSQL(ctx, imdbIDs, ratingsPath); err != nil {
		return err
	}
	return nil
}

func (j *ExportJob) generate(ctx context.Context, pass string, imdbIDs []string, path string, render renderFunc) (summary Summary, err error) {
	log := j.log.WithFields(logrus.Fields{"pass": pass, "output": path})

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return summary, fmt.Errorf("failed to open output file: %w", err)
	}

	w := bufio.NewWriter(f)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil && err == nil {
			err = fmt.Errorf("failed to write output file: %w", flushErr)
		}
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}()

	log.WithField("identifiers", len(imdbIDs)).Info("Starting export pass")

	for _, imdbID := range imdbIDs {
		movie, err := j.fetcher.GetMovie(ctx, imdbID)
		if err != nil {
			return summary, fmt.Errorf("%s export aborted at %s: %w", pass, imdbID, err)
		}
		summary.Processed++

		if movie.OK() {
			for _, stmt := range render(imdbID, movie) {
				if _, err := w.WriteString(stmt + "\n"); err != nil {
					return summary, fmt.Errorf("failed to write output file: %w", err)
				}
				summary.Statements++
			}
		} else {
			summary.Skipped++
			entry := log.WithField("imdb_id", imdbID)
			if movie != nil && movie.Error != "" {
				entry = entry.WithField("reason", movie.Error)
			}
			entry.Info("Skipping identifier, catalog lookup failed")
		}

		if err := j.sleep(ctx, j.delay); err != nil {
			return summary, fmt.Errorf("%s export interrupted after %s: %w", pass, imdbID, err)
		}
	}

	log.WithFields(logrus.Fields{
		"processed":  summary.Processed,
		"skipped":    summary.Skipped,
		"statements": summary.Statements,
	}).Info("Export pass completed")

	return summary, nil
}
