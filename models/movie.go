// Package models defines the catalog records handled by the exporter.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResponseTrue is the value of the OMDb Response field on a successful lookup.
const ResponseTrue = "True"

// NotAvailable is the placeholder OMDb uses for fields it has no data for.
const NotAvailable = "N/A"

// Movie represents a title as returned by the OMDb API
type Movie struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated"`
	Released   string   `json:"Released"`
	Runtime    string   `json:"Runtime"`
	Genre      string   `json:"Genre"`
	Director   string   `json:"Director"`
	Writer     string   `json:"Writer"`
	Actors     string   `json:"Actors"`
	Plot       string   `json:"Plot"`
	Language   string   `json:"Language"`
	Country    string   `json:"Country"`
	Awards     string   `json:"Awards"`
	Poster     string   `json:"Poster"`
	Ratings    []Rating `json:"Ratings"`
	Metascore  string   `json:"Metascore"`
	IMDBRating string   `json:"imdbRating"`
	IMDBVotes  string   `json:"imdbVotes"`
	IMDBID     string   `json:"imdbID"`
	Type       string   `json:"Type"`
	DVD        string   `json:"DVD"`
	BoxOffice  string   `json:"BoxOffice"`
	Production string   `json:"Production"`
	Website    string   `json:"Website"`
	Response   string   `json:"Response"`
	Error      string   `json:"Error,omitempty"`
}

// Rating is a single score from one rating source
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// OK reports whether the lookup succeeded and the movie can be exported.
func (m *Movie) OK() bool {
	return m != nil && m.Response == ResponseTrue
}

// UnmarshalJSON decodes an OMDb title. Fields that arrive as numbers,
// booleans or other non-string JSON keep their raw text.
func (m *Movie) UnmarshalJSON(data []byte) error {
	type movie Movie

	normalized, err := textFields(data, "Ratings")
	if err != nil {
		return err
	}

	var decoded movie
	if err := json.Unmarshal(normalized, &decoded); err != nil {
		return err
	}
	*m = Movie(decoded)
	return nil
}

// UnmarshalJSON decodes a rating, keeping non-string values as text.
func (r *Rating) UnmarshalJSON(data []byte) error {
	type rating Rating

	normalized, err := textFields(data)
	if err != nil {
		return err
	}

	var decoded rating
	if err := json.Unmarshal(normalized, &decoded); err != nil {
		return err
	}
	*r = Rating(decoded)
	return nil
}

// textFields rewrites every member of a JSON object, except the skipped
// ones, as a JSON string holding the member's original text. null is left
// alone so it decodes as an empty string.
func textFields(data []byte, skip ...string) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return data, nil
	}

	skipped := make(map[string]bool, len(skip))
	for _, key := range skip {
		skipped[key] = true
	}

	for key, value := range raw {
		value = bytes.TrimSpace(value)
		if skipped[key] || len(value) == 0 || value[0] == '"' || bytes.Equal(value, []byte("null")) {
			continue
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, value); err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		text, err := json.Marshal(compact.String())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		raw[key] = text
	}

	return json.Marshal(raw)
}
