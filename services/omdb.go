// Package services provides external service integrations.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"omdbexport/models"

	"github.com/sirupsen/logrus"
)

// DefaultOMDBBaseURL is the public OMDb endpoint
const DefaultOMDBBaseURL = "https://www.omdbapi.com/"

// DefaultTimeout bounds a single catalog request
const DefaultTimeout = 30 * time.Second

// ErrCatalogUnavailable wraps transport failures talking to the catalog.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// OMDBService handles interactions with the OMDb API
type OMDBService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewOMDBService creates a new OMDb service instance
func NewOMDBService(baseURL, apiKey string) *OMDBService {
	if baseURL == "" {
		baseURL = DefaultOMDBBaseURL
	}
	return &OMDBService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithTimeout replaces the per-request timeout
func (s *OMDBService) WithTimeout(timeout time.Duration) *OMDBService {
	if timeout > 0 {
		s.client.Timeout = timeout
	}
	return s
}

// GetMovie fetches a title from OMDb by its IMDb identifier.
//
// The HTTP status is not inspected: OMDb reports lookup failures in the body,
// so callers must check Movie.OK. A body that is not valid JSON comes back as
// a failed lookup rather than an error. Only transport failures are errors.
func (s *OMDBService) GetMovie(ctx context.Context, imdbID string) (*models.Movie, error) {
	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("i", imdbID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build OMDb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch %s: %w", ErrCatalogUnavailable, imdbID, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response for %s: %w", ErrCatalogUnavailable, imdbID, err)
	}

	if resp.StatusCode != http.StatusOK {
		logrus.WithFields(logrus.Fields{
			"imdb_id": imdbID,
			"status":  resp.StatusCode,
		}).Debug("OMDb returned non-200 status")
	}

	var movie models.Movie
	if err := json.Unmarshal(body, &movie); err != nil {
		return &models.Movie{
			Response: "False",
			Error:    fmt.Sprintf("malformed response (status %d): %v", resp.StatusCode, err),
		}, nil
	}

	return &movie, nil
}
