// Package sqlgen renders catalog records as SQL insert statements.
package sqlgen

import (
	"fmt"
	"strings"

	"omdbexport/models"
)

// Null is the unquoted SQL null literal.
const Null = "NULL"

// Literal returns v as a SQL literal safe to embed in statement text.
// nil, empty strings and the OMDb "N/A" placeholder become NULL; anything
// else is single-quoted with embedded quotes doubled. Values that are not
// strings are rendered with fmt.Sprint and treated as opaque text.
func Literal(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return Null
	case string:
		s = val
	case *string:
		if val == nil {
			return Null
		}
		s = *val
	default:
		s = fmt.Sprint(val)
	}

	if s == "" || s == models.NotAvailable {
		return Null
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
