package sqlgen

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"omdbexport/models"
)

// Default table names
const (
	DefaultMoviesTable  = "movies"
	DefaultRatingsTable = "ratings"
)

// MovieColumns is the fixed column order of movie insert statements.
var MovieColumns = []string{
	"imdb_id", "title", "year", "rated", "released", "runtime", "genre",
	"director", "writer", "actors", "plot", "language", "country", "awards",
	"poster", "metascore", "imdb_rating", "imdb_votes", "type", "dvd",
	"box_office", "production", "website",
}

// RatingColumns is the fixed column order of rating insert statements.
var RatingColumns = []string{"imdb_id", "source", "value"}

// ErrInvalidTable is returned for table names that are not plain SQL identifiers.
var ErrInvalidTable = errors.New("invalid table name")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidTableName reports whether name can be embedded unquoted as a table name.
func ValidTableName(name string) bool {
	return identPattern.MatchString(name)
}

// Tables holds the target table names
type Tables struct {
	Movies  string `yaml:"movies"`
	Ratings string `yaml:"ratings"`
}

// DefaultTables returns the default table names
func DefaultTables() Tables {
	return Tables{Movies: DefaultMoviesTable, Ratings: DefaultRatingsTable}
}

// Validate checks both table names
func (t Tables) Validate() error {
	for _, name := range []string{t.Movies, t.Ratings} {
		if !ValidTableName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidTable, name)
		}
	}
	return nil
}

// movieValues lists the movie fields in MovieColumns order.
func movieValues(id string, m *models.Movie) []string {
	return []string{
		id, m.Title, m.Year, m.Rated, m.Released, m.Runtime, m.Genre,
		m.Director, m.Writer, m.Actors, m.Plot, m.Language, m.Country, m.Awards,
		m.Poster, m.Metascore, m.IMDBRating, m.IMDBVotes, m.Type, m.DVD,
		m.BoxOffice, m.Production, m.Website,
	}
}

// MovieInsert builds the insert statement for one movie. The identifier is
// the one the movie was looked up with, not the imdbID echoed by the API.
func MovieInsert(table, id string, m *models.Movie) string {
	return insert(table, MovieColumns, movieValues(id, m))
}

// RatingInserts builds one insert statement per rating, in API order.
func RatingInserts(table, id string, m *models.Movie) []string {
	statements := make([]string, 0, len(m.Ratings))
	for _, r := range m.Ratings {
		statements = append(statements, insert(table, RatingColumns, []string{id, r.Source, r.Value}))
	}
	return statements
}

func insert(table string, columns, values []string) string {
	literals := make([]string, len(values))
	for i, v := range values {
		literals[i] = Literal(v)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.Join(literals, ", "))
	b.WriteString(");")
	return b.String()
}
