package models

import "time"

// FileInfo represents metadata about an uploaded résumé.
type FileInfo struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"` // sanitized name on disk
	Original   string         `json:"original"`
	Path       string         `json:"-"`
	Format     DocumentFormat `json:"format"`
	Size       int64          `json:"size"`
	UploadedAt time.Time      `json:"uploadedAt"`
}
