// routes.go - Route registration helpers
package api

import (
	"log/slog"

	"github.com/cv-jobmatch/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store           storage.Store
	Matcher         Matcher
	History         HistoryReader // nil when history is disabled
	Vocabulary      []string
	DefaultLocation string
	UpstreamFailure UpstreamFailureMode
	Version         string
	Features        map[string]bool
	Logger          *slog.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Match   MatchHandler
	History HistoryHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Features),
		Match:   NewMatchHandler(deps.Store, deps.Matcher, deps.Vocabulary, deps.DefaultLocation, deps.UpstreamFailure, deps.Logger),
		History: NewHistoryHandler(deps.History),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.POST("/upload", handlers.Match.HandleUpload)

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.GET("/vocabulary", handlers.Match.HandleVocabulary)
	apiGroup.GET("/searches", handlers.History.HandleRecentSearches)
}
