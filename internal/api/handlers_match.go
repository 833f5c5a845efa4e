// handlers_match.go - Résumé upload and job matching handlers
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cv-jobmatch/backend/internal/jobsearch"
	"github.com/cv-jobmatch/backend/internal/matcher"
	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/cv-jobmatch/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// HeaderExtractedSkills carries the derived keywords on upload responses.
const HeaderExtractedSkills = "X-Extracted-Skills"

// UpstreamFailureMode selects how job search failures are reported.
type UpstreamFailureMode string

const (
	// UpstreamFailureEmpty answers 200 with an empty job list.
	UpstreamFailureEmpty UpstreamFailureMode = "empty"
	// UpstreamFailureError answers 502.
	UpstreamFailureError UpstreamFailureMode = "error"
)

// matchResponse is the body of a successful upload.
type matchResponse struct {
	Jobs []models.JobListing `json:"jobs" msgpack:"jobs"`
}

// MatchHandlerImpl implements the MatchHandler interface
type MatchHandlerImpl struct {
	store           storage.Store
	matcher         Matcher
	vocabulary      []string
	defaultLocation string
	upstreamFailure UpstreamFailureMode
	logger          *slog.Logger
}

// NewMatchHandler creates a new match handler instance
func NewMatchHandler(store storage.Store, m Matcher, vocabulary []string, defaultLocation string, mode UpstreamFailureMode, logger *slog.Logger) MatchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = UpstreamFailureEmpty
	}
	return &MatchHandlerImpl{
		store:           store,
		matcher:         m,
		vocabulary:      vocabulary,
		defaultLocation: defaultLocation,
		upstreamFailure: mode,
		logger:          logger.With("component", "api"),
	}
}

// HandleUpload accepts a multipart résumé in field "file", stores it,
// derives skills and returns matching jobs.
func (h *MatchHandlerImpl) HandleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		// A file part sent with an empty filename is parsed as a plain value.
		if form := c.Request().MultipartForm; form != nil && errors.Is(err, http.ErrMissingFile) {
			if _, ok := form.Value["file"]; ok {
				return NewBadRequestError(MsgInvalidFormat, nil)
			}
		}
		return NewBadRequestError(MsgNoFile, err)
	}

	format, ok := models.FormatFromFilename(fh.Filename)
	if !ok {
		return NewBadRequestError(MsgInvalidFormat, nil)
	}

	src, err := fh.Open()
	if err != nil {
		return NewBadRequestError(MsgNoFile, err)
	}
	defer src.Close()

	info, err := h.store.Save(fh.Filename, format, src)
	if err != nil {
		return NewInternalError(MsgSaveFailed, err)
	}
	h.logger.Info("upload stored", "id", info.ID, "name", info.Name, "size", info.Size, "format", format)

	location := strings.TrimSpace(c.FormValue("location"))
	if location == "" {
		location = h.defaultLocation
	}

	req := c.Request()
	res, err := h.matcher.Match(req.Context(), matcher.Request{
		Document:  models.Document{Name: info.Name, Format: format, Path: info.Path},
		Location:  location,
		UserIP:    c.RealIP(),
		UserAgent: req.UserAgent(),
	})
	switch {
	case err == nil:
	case matcher.IsExtractionError(err):
		return NewBadRequestError(MsgExtractionFailed, err)
	case errors.Is(err, jobsearch.ErrUpstreamUnavailable):
		if h.upstreamFailure == UpstreamFailureError {
			return NewBadGatewayError(MsgUpstreamFailed, err)
		}
	default:
		return NewInternalError(MsgUnexpectedFailure, err)
	}

	c.Response().Header().Set(HeaderExtractedSkills, res.Skills.String())

	jobs := res.Jobs
	if jobs == nil {
		jobs = []models.JobListing{}
	}
	return respond(c, http.StatusOK, matchResponse{Jobs: jobs})
}

// HandleVocabulary returns the reference vocabulary used for matching
func (h *MatchHandlerImpl) HandleVocabulary(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"vocabulary": h.vocabulary,
	})
}
