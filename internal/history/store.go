// Package history keeps an append-only log of match requests in DuckDB.
package history

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"time"

	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
)

const defaultRecentLimit = 50

// Store records SearchRecords in a DuckDB file.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (or creates) the history database at dbPath.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history", "path", dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				logger.Warn("pragma failed", "pragma", pragma, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS searches (
			id         VARCHAR PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			file_name  VARCHAR NOT NULL,
			format     VARCHAR NOT NULL,
			skills     VARCHAR NOT NULL,
			location   VARCHAR NOT NULL,
			job_count  INTEGER NOT NULL,
			outcome    VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info("search history opened")
	return &Store{db: db, path: dbPath, logger: logger}, nil
}

// Record appends rec. Missing ID and CreatedAt are filled in.
func (s *Store) Record(ctx context.Context, rec models.SearchRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (id, created_at, file_name, format, skills, location, job_count, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt, rec.FileName, rec.Format, rec.Skills, rec.Location, rec.JobCount, string(rec.Outcome))
	if err != nil {
		return fmt.Errorf("insert search record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, file_name, format, skills, location, job_count, outcome
		 FROM searches ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query search records: %w", err)
	}
	defer rows.Close()

	records := make([]models.SearchRecord, 0, limit)
	for rows.Next() {
		var rec models.SearchRecord
		var outcome string
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.FileName, &rec.Format,
			&rec.Skills, &rec.Location, &rec.JobCount, &outcome); err != nil {
			return nil, fmt.Errorf("scan search record: %w", err)
		}
		rec.Outcome = models.SearchOutcome(outcome)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
