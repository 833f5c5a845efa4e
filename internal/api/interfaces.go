// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/cv-jobmatch/backend/internal/matcher"
	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// MatchHandler handles résumé uploads and job matching
type MatchHandler interface {
	HandleUpload(c echo.Context) error
	HandleVocabulary(c echo.Context) error
}

// HistoryHandler serves the search history log
type HistoryHandler interface {
	HandleRecentSearches(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Matcher runs the extraction and search pipeline for one document.
// This allows mocking in tests
type Matcher interface {
	Match(ctx context.Context, req matcher.Request) (*matcher.Result, error)
}

// HistoryReader lists recorded searches.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]models.SearchRecord, error)
}
