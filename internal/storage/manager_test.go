// manager_test.go - Tests for upload storage
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/cv-jobmatch/backend/internal/models"
)

func createTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates upload directory", func(t *testing.T) {
		uploadDir := filepath.Join(t.TempDir(), "uploads")

		if _, err := NewLocalStore(uploadDir); err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
			t.Error("Expected upload directory to be created")
		}
	})
}

func TestLocalStore_Save(t *testing.T) {
	t.Run("saves under sanitized client name", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.Save("My Resume.pdf", models.FormatPDF, strings.NewReader("%PDF-1.4"))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}

		if info.ID == "" {
			t.Error("Expected ID to be set")
		}
		if info.Name != "My_Resume.pdf" {
			t.Errorf("Expected name 'My_Resume.pdf', got %v", info.Name)
		}
		if info.Original != "My Resume.pdf" {
			t.Errorf("Expected original name preserved, got %v", info.Original)
		}
		if info.Size != 8 {
			t.Errorf("Expected size 8, got %d", info.Size)
		}
		if info.UploadedAt.IsZero() || time.Since(info.UploadedAt) > time.Minute {
			t.Errorf("Unexpected upload time %v", info.UploadedAt)
		}

		data, err := os.ReadFile(filepath.Join(store.uploadDir, "My_Resume.pdf"))
		if err != nil {
			t.Fatalf("Expected file on disk: %v", err)
		}
		if string(data) != "%PDF-1.4" {
			t.Errorf("Unexpected content %q", data)
		}
	})

	t.Run("path traversal stays inside upload dir", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.Save("../../etc/passwd.docx", models.FormatDOCX, strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		if filepath.Dir(info.Path) != store.uploadDir {
			t.Errorf("Expected file inside %s, got %s", store.uploadDir, info.Path)
		}
	})

	t.Run("falls back to generated name", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.Save("日本語", models.FormatPDF, strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}
		if info.Name != info.ID+".pdf" {
			t.Errorf("Expected generated name %s.pdf, got %s", info.ID, info.Name)
		}
	})

	t.Run("same name overwrites", func(t *testing.T) {
		store := createTestStore(t)

		if _, err := store.Save("cv.pdf", models.FormatPDF, strings.NewReader("first")); err != nil {
			t.Fatal(err)
		}
		info, err := store.Save("cv.pdf", models.FormatPDF, strings.NewReader("second"))
		if err != nil {
			t.Fatal(err)
		}

		data, _ := os.ReadFile(info.Path)
		if string(data) != "second" {
			t.Errorf("Expected latest content, got %q", data)
		}
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		store := createTestStore(t)

		if _, err := store.Save("cv.pdf", models.FormatPDF, strings.NewReader("x")); err != nil {
			t.Fatal(err)
		}
		if _, err := store.Save("cv.pdf", models.FormatPDF, iotest.ErrReader(errors.New("client went away"))); err == nil {
			t.Error("Expected error from failing reader")
		}

		entries, _ := os.ReadDir(store.uploadDir)
		if len(entries) != 1 || entries[0].Name() != "cv.pdf" {
			t.Errorf("Expected only cv.pdf in upload dir, got %v", entries)
		}
	})
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Resume.pdf", "My_Resume.pdf"},
		{"../../../etc/passwd", "etc_passwd"},
		{"Résumé.docx", "Resume.docx"},
		{`C:\Users\me\cv.pdf`, "C_Users_me_cv.pdf"},
		{"  spaced   out  .pdf", "spaced_out_.pdf"},
		{"...hidden.pdf", "hidden.pdf"},
		{"cv (final) #2.pdf", "cv_final_2.pdf"},
		{"日本語", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
