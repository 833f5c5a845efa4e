package models

import (
	"path/filepath"
	"strings"
)

// DocumentFormat is the declared format of an uploaded document.
type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
)

// AllowedFormats lists the formats accepted by the upload endpoint.
var AllowedFormats = []DocumentFormat{FormatPDF, FormatDOCX}

// FormatFromFilename returns the document format for a client filename.
// The extension match is case-insensitive; ok is false for anything else.
func FormatFromFilename(name string) (DocumentFormat, bool) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "", false
	}
	f := DocumentFormat(strings.ToLower(ext))
	for _, allowed := range AllowedFormats {
		if f == allowed {
			return f, true
		}
	}
	return "", false
}

// Document is an uploaded file. Data holds its content when it is kept in
// memory; otherwise it is read from Path.
type Document struct {
	Name   string
	Format DocumentFormat
	Path   string
	Data   []byte
}
