// Package jobsearch queries the external job-search API.
package jobsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cv-jobmatch/backend/internal/models"
)

// ErrUpstreamUnavailable is returned when the job API could not be reached
// or answered with something other than a usable job list.
var ErrUpstreamUnavailable = errors.New("job search upstream unavailable")

// Query describes one job search.
type Query struct {
	Keywords  string
	Location  string
	Page      int
	UserIP    string
	UserAgent string
}

// Config configures a Client.
type Config struct {
	APIURL           string
	AffID            string
	Locale           string
	DefaultLocation  string
	DefaultUserAgent string
	Timeout          time.Duration
}

// Client talks to a Careerjet-style search endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Locale == "" {
		cfg.Locale = "en_US"
	}
	if cfg.DefaultLocation == "" {
		cfg.DefaultLocation = "United States"
	}
	if cfg.DefaultUserAgent == "" {
		cfg.DefaultUserAgent = "Mozilla/5.0"
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger.With("component", "jobsearch")}
}

// searchResponse is the subset of the upstream body we read. Fields are
// pointers so JSON nulls and missing keys both fall back to "N/A".
type searchResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
	Jobs  []struct {
		Title       *string `json:"title"`
		Company     *string `json:"company"`
		Locations   *string `json:"locations"`
		Description *string `json:"description"`
	} `json:"jobs"`
}

// Normalize fills in defaults for empty query fields.
func (c *Client) Normalize(q Query) Query {
	if q.Location == "" {
		q.Location = c.cfg.DefaultLocation
	}
	if q.UserAgent == "" {
		q.UserAgent = c.cfg.DefaultUserAgent
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q
}

// Locale returns the locale sent with every query.
func (c *Client) Locale() string { return c.cfg.Locale }

// Search runs one query. A successful search with no results returns an
// empty slice and nil; every upstream problem wraps ErrUpstreamUnavailable.
func (c *Client) Search(ctx context.Context, q Query) ([]models.JobListing, error) {
	q = c.Normalize(q)

	u, err := c.buildURL(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", q.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("job search request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("job search response", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		c.logger.Warn("job search returned non-200", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("job search response undecodable", "error", err)
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstreamUnavailable, err)
	}
	if body.Type == "ERROR" {
		c.logger.Warn("job search returned error body", "message", body.Error)
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, body.Error)
	}

	jobs := make([]models.JobListing, 0, len(body.Jobs))
	for _, j := range body.Jobs {
		jobs = append(jobs, models.JobListing{
			Title:       orNA(j.Title),
			Company:     orNA(j.Company),
			Location:    orNA(j.Locations),
			Description: orNA(j.Description),
		})
	}
	if len(jobs) == 0 {
		c.logger.Info("job search returned no jobs", "keywords", q.Keywords, "location", q.Location)
	}
	return jobs, nil
}

func (c *Client) buildURL(q Query) (string, error) {
	u, err := url.Parse(c.cfg.APIURL)
	if err != nil {
		return "", fmt.Errorf("parsing api url: %w", err)
	}
	params := u.Query()
	params.Set("locale", c.cfg.Locale)
	params.Set("keywords", q.Keywords)
	params.Set("location", q.Location)
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("user_ip", q.UserIP)
	params.Set("user_agent", q.UserAgent)
	if c.cfg.AffID != "" {
		params.Set("affid", c.cfg.AffID)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func orNA(s *string) string {
	if s == nil {
		return models.NotAvailable
	}
	return *s
}
