// Package mocks holds testify mocks for the pipeline's collaborators.
package mocks

import (
	"context"

	"github.com/cv-jobmatch/backend/internal/extract"
	"github.com/cv-jobmatch/backend/internal/jobsearch"
	"github.com/cv-jobmatch/backend/internal/models"
	"github.com/cv-jobmatch/backend/internal/nlp"
	"github.com/stretchr/testify/mock"
)

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, text string) (nlp.Analysis, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(nlp.Analysis), args.Error(1)
}

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, doc models.Document) (extract.Result, error) {
	args := m.Called(ctx, doc)
	return args.Get(0).(extract.Result), args.Error(1)
}

type MockJobSearcher struct {
	mock.Mock
}

func (m *MockJobSearcher) Search(ctx context.Context, q jobsearch.Query) ([]models.JobListing, error) {
	args := m.Called(ctx, q)
	jobs, _ := args.Get(0).([]models.JobListing)
	return jobs, args.Error(1)
}

type MockHistoryRecorder struct {
	mock.Mock
}

func (m *MockHistoryRecorder) Record(ctx context.Context, rec models.SearchRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockHistoryRecorder) Recent(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	args := m.Called(ctx, limit)
	recs, _ := args.Get(0).([]models.SearchRecord)
	return recs, args.Error(1)
}
