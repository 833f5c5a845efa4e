package skills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cv-jobmatch/backend/internal/mocks"
	"github.com/cv-jobmatch/backend/internal/nlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestExtractor(analysis nlp.Analysis, err error) (*Extractor, *mocks.MockAnalyzer) {
	a := new(mocks.MockAnalyzer)
	a.On("Analyze", mock.Anything, mock.Anything).Return(analysis, err)
	return NewExtractor(a, Options{}), a
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		analysis nlp.Analysis
		want     SkillSet
	}{
		{
			name: "vocabulary chunks only",
			analysis: nlp.Analysis{
				NounChunks: []string{" Python ", "Docker", "the team", "Kubernetes"},
				Entities:   []string{"Google"},
			},
			want: SkillSet{"python", "docker", "kubernetes"},
		},
		{
			name: "duplicates collapse",
			analysis: nlp.Analysis{
				NounChunks: []string{"python", "PYTHON", "Python", "cloud", "react"},
			},
			want: SkillSet{"python", "cloud", "react"},
		},
		{
			name: "fallback to entities when under threshold",
			analysis: nlp.Analysis{
				NounChunks: []string{"python", "experience"},
				Entities:   []string{"Google", "Python", "AWS", "Kafka", "Berlin", "Spark"},
			},
			want: SkillSet{"python", "google", "aws", "kafka", "berlin"},
		},
		{
			name: "fallback skips short and stop-word entities",
			analysis: nlp.Analysis{
				Entities: []string{"Go", "IT", "The", "Terraform", "  "},
			},
			want: SkillSet{"terraform"},
		},
		{
			name: "fallback excludes vocabulary terms",
			analysis: nlp.Analysis{
				NounChunks: []string{"cloud"},
				Entities:   []string{"Docker", "Acme Corp"},
			},
			want: SkillSet{"cloud", "acme corp"},
		},
		{
			name: "no fallback at threshold",
			analysis: nlp.Analysis{
				NounChunks: []string{"python", "docker", "flask"},
				Entities:   []string{"Google"},
			},
			want: SkillSet{"python", "docker", "flask"},
		},
		{
			name: "truncates to five",
			analysis: nlp.Analysis{
				NounChunks: []string{"python", "docker", "flask", "react", "cloud", "pytorch", "tensorflow"},
			},
			want: SkillSet{"python", "docker", "flask", "react", "cloud"},
		},
		{
			name: "nothing relevant",
			analysis: nlp.Analysis{
				NounChunks: []string{"the team", "experience"},
				Entities:   []string{"Bob"},
			},
			want: SkillSet{"bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestExtractor(tt.analysis, nil)
			got := e.Extract(context.Background(), "some résumé text")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_EmptyTextSkipsAnalyzer(t *testing.T) {
	e, a := newTestExtractor(nlp.Analysis{}, nil)

	got := e.Extract(context.Background(), "   ")
	assert.Empty(t, got)
	assert.Equal(t, "", got.String())
	a.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestExtract_AnalyzerErrorYieldsEmpty(t *testing.T) {
	e, _ := newTestExtractor(nlp.Analysis{}, errors.New("tagger exploded"))

	got := e.Extract(context.Background(), "Python developer")
	assert.Empty(t, got)
}

func TestExtract_Invariants(t *testing.T) {
	var chunks []string
	for i := 0; i < 20; i++ {
		chunks = append(chunks, DefaultVocabulary[i%len(DefaultVocabulary)])
	}
	var ents []string
	for i := 0; i < 20; i++ {
		ents = append(ents, fmt.Sprintf("Entity%d", i))
	}
	e, _ := newTestExtractor(nlp.Analysis{NounChunks: chunks, Entities: ents}, nil)

	first := e.Extract(context.Background(), "text")
	second := e.Extract(context.Background(), "text")

	assert.Len(t, first, 5)
	assert.Equal(t, first, second)
	assert.Len(t, strings.Split(first.String(), ", "), 5)
	for _, term := range first {
		assert.Equal(t, strings.ToLower(term), term)
		assert.Equal(t, strings.TrimSpace(term), term)
		assert.Greater(t, len(term), 2)
	}
}

func TestNewExtractor_CustomOptions(t *testing.T) {
	a := new(mocks.MockAnalyzer)
	a.On("Analyze", mock.Anything, mock.Anything).Return(nlp.Analysis{
		NounChunks: []string{"golang", "rust", "python"},
		Entities:   []string{"Acme"},
	}, nil)

	e := NewExtractor(a, Options{
		Vocabulary:        []string{" Golang", "RUST", "rust", ""},
		MaxSkills:         2,
		FallbackThreshold: 1,
	})

	assert.Equal(t, []string{"golang", "rust"}, e.Vocabulary())
	assert.Equal(t, SkillSet{"golang", "rust"}, e.Extract(context.Background(), "text"))
}

func TestNewExtractor_DisableFallback(t *testing.T) {
	a := new(mocks.MockAnalyzer)
	a.On("Analyze", mock.Anything, mock.Anything).Return(nlp.Analysis{
		NounChunks: []string{"python"},
		Entities:   []string{"Google", "Kafka"},
	}, nil)

	e := NewExtractor(a, Options{FallbackThreshold: 3, DisableFallback: true})
	assert.Equal(t, SkillSet{"python"}, e.Extract(context.Background(), "text"))

	e = NewExtractor(a, Options{})
	assert.Equal(t, SkillSet{"python", "google", "kafka"}, e.Extract(context.Background(), "text"))
}

func TestSkillSet_String(t *testing.T) {
	assert.Equal(t, "python, docker", SkillSet{"python", "docker"}.String())
	assert.Equal(t, "", SkillSet{}.String())
}
