// Package matcher runs the résumé-to-jobs pipeline: text extraction, skill
// extraction and job search.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cv-jobmatch/backend/internal/extract"
	"github.com/cv-jobmatch/backend/internal/jobsearch"
	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/cv-jobmatch/backend/internal/skills"
)

// TextExtractor turns a document into text.
type TextExtractor interface {
	Extract(ctx context.Context, doc models.Document) (extract.Result, error)
}

// SkillExtractor derives skill terms from text.
type SkillExtractor interface {
	Extract(ctx context.Context, text string) skills.SkillSet
}

// HistoryRecorder stores the outcome of each match.
type HistoryRecorder interface {
	Record(ctx context.Context, rec models.SearchRecord) error
}

// Request is one match request.
type Request struct {
	Document  models.Document
	Location  string
	UserIP    string
	UserAgent string
}

// Result is the outcome of a match that got past text extraction.
type Result struct {
	Skills  skills.SkillSet
	Jobs    []models.JobListing
	Outcome models.SearchOutcome
}

// Matcher wires the pipeline stages together.
type Matcher struct {
	text     TextExtractor
	skills   SkillExtractor
	searcher jobsearch.Searcher
	history  HistoryRecorder
	logger   *slog.Logger
}

// New creates a Matcher. history may be nil.
func New(text TextExtractor, sk SkillExtractor, searcher jobsearch.Searcher, history HistoryRecorder, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		text:     text,
		skills:   sk,
		searcher: searcher,
		history:  history,
		logger:   logger.With("component", "matcher"),
	}
}

// Match runs the pipeline. Extraction errors are returned as-is (wrapping
// the extract sentinels) with a nil Result. When the job search fails the
// Result is still returned, with no jobs, alongside an error wrapping
// jobsearch.ErrUpstreamUnavailable.
func (m *Matcher) Match(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := m.logger.With("file", req.Document.Name, "format", req.Document.Format)

	text, err := m.text.Extract(ctx, req.Document)
	if err != nil {
		return nil, err
	}
	log.Debug("text extracted", "chars", len(text.Text), "pages", text.Pages)

	set := m.skills.Extract(ctx, text.Text)
	log.Info("skills extracted", "skills", set.String())

	res := &Result{Skills: set, Jobs: []models.JobListing{}}

	jobs, searchErr := m.searcher.Search(ctx, jobsearch.Query{
		Keywords:  set.String(),
		Location:  req.Location,
		Page:      1,
		UserIP:    req.UserIP,
		UserAgent: req.UserAgent,
	})
	switch {
	case searchErr != nil:
		res.Outcome = models.OutcomeUpstreamUnavailable
		log.Warn("job search failed", "error", searchErr)
	case len(jobs) == 0:
		res.Outcome = models.OutcomeNoJobs
	default:
		res.Outcome = models.OutcomeOK
		res.Jobs = jobs
	}

	m.record(ctx, req, res)
	log.Info("match complete", "jobs", len(res.Jobs), "outcome", res.Outcome, "duration", time.Since(start))

	if searchErr != nil {
		if !errors.Is(searchErr, jobsearch.ErrUpstreamUnavailable) {
			searchErr = fmt.Errorf("%w: %v", jobsearch.ErrUpstreamUnavailable, searchErr)
		}
		return res, searchErr
	}
	return res, nil
}

func (m *Matcher) record(ctx context.Context, req Request, res *Result) {
	if m.history == nil {
		return
	}
	rec := models.SearchRecord{
		FileName: req.Document.Name,
		Format:   string(req.Document.Format),
		Skills:   res.Skills.String(),
		Location: req.Location,
		JobCount: len(res.Jobs),
		Outcome:  res.Outcome,
	}
	if err := m.history.Record(ctx, rec); err != nil {
		m.logger.Warn("failed to record search", "error", err)
	}
}

// IsExtractionError reports whether err came from text extraction.
func IsExtractionError(err error) bool {
	return errors.Is(err, extract.ErrExtractionFailed) ||
		errors.Is(err, extract.ErrNoText) ||
		errors.Is(err, extract.ErrUnsupportedFormat)
}
