package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFExtractor concatenates the plain text of every page in order.
type PDFExtractor struct {
	logger *slog.Logger
	conf   *pdfmodel.Configuration
}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &PDFExtractor{logger: logger, conf: conf}
}

func (p *PDFExtractor) Format() models.DocumentFormat { return models.FormatPDF }

func (p *PDFExtractor) Extract(ctx context.Context, data []byte) (Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read pdf: %w", err)
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.Debug("skipping unreadable pdf page", "page", i, "error", err)
			continue
		}
		text.WriteString(pageText)
		// Pages end a line, like paragraphs do in Word documents.
		if !strings.HasSuffix(pageText, "\n") {
			text.WriteByte('\n')
		}
	}

	return Result{Text: text.String(), Pages: p.pageCount(data, numPages)}, nil
}

// pageCount asks pdfcpu for the page count, falling back to the reader's.
func (p *PDFExtractor) pageCount(data []byte, fallback int) int {
	n, err := api.PageCount(bytes.NewReader(data), p.conf)
	if err != nil {
		p.logger.Debug("pdfcpu page count failed", "error", err)
		return fallback
	}
	return n
}
