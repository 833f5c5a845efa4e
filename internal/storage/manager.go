package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/google/uuid"
)

// Store defines the interface for upload storage. Stored files are read
// back through the returned FileInfo.Path.
type Store interface {
	Save(originalName string, format models.DocumentFormat, r io.Reader) (*models.FileInfo, error)
}

// LocalStore implements Store using the local filesystem. Files are named
// after the sanitized client filename, so a later upload with the same name
// replaces the earlier file on disk.
type LocalStore struct {
	uploadDir string
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStore{uploadDir: uploadDir}, nil
}

// Save streams the upload into the upload directory through a temporary
// file that is renamed into place.
func (s *LocalStore) Save(originalName string, format models.DocumentFormat, r io.Reader) (*models.FileInfo, error) {
	id := uuid.New().String()

	name := SanitizeFilename(originalName)
	if name == "" {
		name = fmt.Sprintf("%s.%s", id, format)
	}
	path := filepath.Join(s.uploadDir, name)

	tmp, err := os.CreateTemp(s.uploadDir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	tmpPath := tmp.Name()

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("moving file into place: %w", err)
	}

	return &models.FileInfo{
		ID:         id,
		Name:       name,
		Original:   originalName,
		Path:       path,
		Format:     format,
		Size:       size,
		UploadedAt: time.Now(),
	}, nil
}
