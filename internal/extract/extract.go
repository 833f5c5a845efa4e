// Package extract turns uploaded résumé documents into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cv-jobmatch/backend/internal/models"
)

var (
	// ErrNoText is returned when a document parsed but contained no text.
	ErrNoText = errors.New("no text found in document")
	// ErrExtractionFailed is returned when the document could not be parsed.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrUnsupportedFormat is returned for formats with no registered extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// Result is the outcome of a successful extraction.
type Result struct {
	Text  string
	Pages int // 0 when the format has no page concept
}

// Extractor pulls plain text out of a single document format.
type Extractor interface {
	// Format returns the document format this extractor handles.
	Format() models.DocumentFormat
	// Extract returns the document's text. Implementations return raw text;
	// emptiness is checked by the Registry.
	Extract(ctx context.Context, data []byte) (Result, error)
}

// Registry dispatches documents to the extractor for their format.
type Registry struct {
	extractors map[models.DocumentFormat]Extractor
	logger     *slog.Logger
}

// NewRegistry returns a registry with the PDF and DOCX extractors.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		extractors: make(map[models.DocumentFormat]Extractor),
		logger:     logger.With("component", "extract"),
	}
	r.Register(NewPDFExtractor(r.logger))
	r.Register(NewDOCXExtractor())
	return r
}

// Register adds or replaces the extractor for e.Format().
func (r *Registry) Register(e Extractor) {
	r.extractors[e.Format()] = e
}

// Extract returns the text of a document, reading it from doc.Path when
// doc.Data is nil. Parser failures are logged and wrapped in
// ErrExtractionFailed; whitespace-only output is ErrNoText.
func (r *Registry) Extract(ctx context.Context, doc models.Document) (Result, error) {
	e, ok := r.extractors[doc.Format]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Format)
	}

	data := doc.Data
	if data == nil {
		var err error
		if data, err = os.ReadFile(doc.Path); err != nil {
			r.logger.Warn("reading stored document failed", "path", doc.Path, "error", err)
			return Result{}, fmt.Errorf("%w: reading %s: %v", ErrExtractionFailed, doc.Path, err)
		}
	}

	res, err := safeExtract(ctx, e, data)
	if err != nil {
		r.logger.Warn("text extraction failed", "file", doc.Name, "format", doc.Format, "error", err)
		return Result{}, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, doc.Format, err)
	}

	if strings.TrimSpace(res.Text) == "" {
		r.logger.Info("document contained no text", "file", doc.Name, "format", doc.Format, "pages", res.Pages)
		return res, ErrNoText
	}

	r.logger.Debug("text extracted", "file", doc.Name, "format", doc.Format, "chars", len(res.Text), "pages", res.Pages)
	return res, nil
}

// safeExtract converts panics from third-party parsers into errors.
// Malformed documents can drive both parsers into index panics.
func safeExtract(ctx context.Context, e Extractor, data []byte) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parser panic: %v", p)
		}
	}()
	return e.Extract(ctx, data)
}
