package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/nguyenthenguyen/docx"
)

// Elements that end a line of text, and elements whose content is
// markup rather than document text.
var (
	docxBreaks = []string{"p", "br", "cr", "tab"}
	docxSkip   = []string{"instrText", "script"}
)

// DOCXExtractor emits the text of each paragraph on its own line.
type DOCXExtractor struct{}

// NewDOCXExtractor creates a Word extractor.
func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

func (d *DOCXExtractor) Format() models.DocumentFormat { return models.FormatDOCX }

func (d *DOCXExtractor) Extract(ctx context.Context, data []byte) (Result, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	text, err := docconv.XMLToText(strings.NewReader(doc.Editable().GetContent()), docxBreaks, docxSkip, true)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read docx body: %w", err)
	}

	// Breaks are emitted where an element opens, so the body starts with one.
	text = strings.TrimLeft(text, "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return Result{Text: text}, nil
}
