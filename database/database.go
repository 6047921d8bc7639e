// Package database replays generated SQL into sqlite to check that it loads.
package database

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"omdbexport/sqlgen"

	_ "github.com/mattn/go-sqlite3" // Import sqlite3 driver
	"github.com/sirupsen/logrus"
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logrus.WithError(closeErr).Warn("Failed to close database after ping failure")
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// InitSchema creates the movie and rating tables
func (db *DB) InitSchema(tables sqlgen.Tables) error {
	if _, err := db.Exec(sqlgen.Schema(tables)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"movies":  tables.Movies,
		"ratings": tables.Ratings,
	}).Debug("Database schema initialized")
	return nil
}

// ApplyFile executes every statement of a generated SQL file and returns how
// many were executed. A statement ends at a line ending in ";" outside a
// quoted literal, so values containing newlines span several lines.
func (db *DB) ApplyFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open SQL file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close SQL file")
		}
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var stmt strings.Builder
	count := 0
	line := 0
	startLine := 0
	quotes := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if stmt.Len() == 0 {
			if strings.TrimSpace(text) == "" {
				continue
			}
			startLine = line
		} else {
			stmt.WriteString("\n")
		}
		stmt.WriteString(text)
		quotes += strings.Count(text, "'")

		// doubled quotes keep the count even, so odd means inside a literal
		if quotes%2 != 0 || !strings.HasSuffix(strings.TrimSpace(text), ";") {
			continue
		}
		if _, err := db.Exec(stmt.String()); err != nil {
			return count, fmt.Errorf("%s:%d: failed to execute statement: %w", path, startLine, err)
		}
		count++
		stmt.Reset()
		quotes = 0
	}

	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read SQL file: %w", err)
	}
	if stmt.Len() > 0 {
		return count, fmt.Errorf("%s:%d: unterminated statement", path, startLine)
	}

	return count, nil
}
