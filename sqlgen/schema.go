package sqlgen

import (
	"fmt"
	"strings"
)

// Schema returns CREATE TABLE statements matching the generated inserts.
// Every column is TEXT because OMDb returns every field as text.
func Schema(t Tables) string {
	return createTable(t.Movies, MovieColumns) + "\n" + createTable(t.Ratings, RatingColumns)
}

func createTable(table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = "\t" + col + " TEXT"
		if col == "imdb_id" {
			defs[i] += " NOT NULL"
		}
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);\n", table, strings.Join(defs, ",\n"))
}
