// handlers_health.go - Health and history handlers
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

const maxHistoryLimit = 500

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version  string
	started  time.Time
	features map[string]bool
}

// NewHealthHandler creates a new health handler. features lists optional
// components and whether they are enabled.
func NewHealthHandler(version string, features map[string]bool) HealthHandler {
	return &HealthHandlerImpl{
		version:  version,
		started:  time.Now(),
		features: features,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"features": h.features,
	})
}

// HistoryHandlerImpl implements the HistoryHandler interface
type HistoryHandlerImpl struct {
	reader HistoryReader
}

// NewHistoryHandler creates a history handler. A nil reader means history
// is disabled and every request gets 503.
func NewHistoryHandler(reader HistoryReader) HistoryHandler {
	return &HistoryHandlerImpl{reader: reader}
}

// HandleRecentSearches returns the most recent searches, newest first
func (h *HistoryHandlerImpl) HandleRecentSearches(c echo.Context) error {
	if h.reader == nil {
		return NewServiceUnavailableError(MsgHistoryDisabled)
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.reader.Recent(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to read search history", err)
	}
	return respond(c, http.StatusOK, map[string]interface{}{
		"searches": records,
	})
}
