package database

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"omdbexport/models"
	"omdbexport/sqlgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	testDB, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := testDB.InitSchema(sqlgen.DefaultTables()); err != nil {
		t.Fatalf("Failed to initialize test schema: %v", err)
	}

	cleanup := func() {
		if err := testDB.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	}

	return testDB, cleanup
}

func writeSQL(t *testing.T, lines ...string) string {
	path := filepath.Join(t.TempDir(), "out.sql")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestInitSchema_Idempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	assert.NoError(t, db.InitSchema(sqlgen.DefaultTables()))
}

func TestApplyFile_RoundTripsEscapedText(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	movie := &models.Movie{
		Title:    "O'Hara's Wake",
		Year:     "1999",
		Plot:     `He said "don't" -- then left; DROP TABLE movies;`,
		DVD:      "N/A",
		Response: models.ResponseTrue,
		Ratings: []models.Rating{
			{Source: "Internet Movie Database", Value: "7.1/10"},
			{Source: "Rotten Tomatoes", Value: "N/A"},
		},
	}

	lines := []string{sqlgen.MovieInsert(sqlgen.DefaultMoviesTable, "tt0000001", movie)}
	lines = append(lines, sqlgen.RatingInserts(sqlgen.DefaultRatingsTable, "tt0000001", movie)...)
	path := writeSQL(t, lines...)

	count, err := db.ApplyFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var title, plot string
	var dvd, rated *string
	err = db.QueryRow(`SELECT title, plot, dvd, rated FROM movies WHERE imdb_id = ?`, "tt0000001").
		Scan(&title, &plot, &dvd, &rated)
	require.NoError(t, err)
	assert.Equal(t, movie.Title, title)
	assert.Equal(t, movie.Plot, plot)
	assert.Nil(t, dvd)
	assert.Nil(t, rated)

	var tables int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'movies'`).Scan(&tables))
	assert.Equal(t, 1, tables)

	rows, err := db.Query(`SELECT source, value FROM ratings WHERE imdb_id = ? ORDER BY rowid`, "tt0000001")
	require.NoError(t, err)
	defer rows.Close()

	var sources []string
	var values []*string
	for rows.Next() {
		var source string
		var value *string
		require.NoError(t, rows.Scan(&source, &value))
		sources = append(sources, source)
		values = append(values, value)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Internet Movie Database", "Rotten Tomatoes"}, sources)
	require.Len(t, values, 2)
	assert.Equal(t, "7.1/10", *values[0])
	assert.Nil(t, values[1])
}

func TestApplyFile_SkipsBlankLines(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	path := writeSQL(t, "", "INSERT INTO ratings (imdb_id, source, value) VALUES ('tt1', 'a', 'b');", "   ")

	count, err := db.ApplyFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyFile_ReportsBadLine(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	path := writeSQL(t,
		"INSERT INTO ratings (imdb_id, source, value) VALUES ('tt1', 'a', 'b');",
		"INSERT INTO ratings (imdb_id, source, value) VALUES ('tt1', 'unterminated);",
	)

	count, err := db.ApplyFile(path)
	assert.Error(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, err.Error(), ":2: unterminated statement")
}

func TestApplyFile_MissingFile(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.ApplyFile(filepath.Join(t.TempDir(), "missing.sql"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestApplyFile_MultiLineValues(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	movie := &models.Movie{
		Title:    "Two Lines",
		Plot:     "line one\nline two",
		Awards:   "Won;\n'Best' Picture;",
		Response: models.ResponseTrue,
	}
	path := writeSQL(t,
		sqlgen.MovieInsert(sqlgen.DefaultMoviesTable, "tt0000001", movie),
		"INSERT INTO ratings (imdb_id, source, value) VALUES ('tt0000001', 'a', 'b');",
	)

	count, err := db.ApplyFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var plot, awards string
	require.NoError(t, db.QueryRow(`SELECT plot, awards FROM movies WHERE imdb_id = ?`, "tt0000001").Scan(&plot, &awards))
	assert.Equal(t, movie.Plot, plot)
	assert.Equal(t, movie.Awards, awards)
}

func TestApplyFile_CommentBeforeStatement(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	path := writeSQL(t, "-- existing", "INSERT INTO ratings (imdb_id, source, value) VALUES ('tt1', 'a', 'b');")

	count, err := db.ApplyFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewDB_PingFailure(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Nil(t, db)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
}
