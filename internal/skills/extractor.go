// Package skills derives candidate job-search keywords from résumé text.
package skills

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/cv-jobmatch/backend/internal/nlp"
)

// DefaultVocabulary is the reference list of broad technical terms matched
// against noun chunks.
var DefaultVocabulary = []string{
	"python", "data science", "machine learning", "software engineer",
	"kubernetes", "cloud", "data visualization", "api development",
	"docker", "flask", "tensorflow", "pytorch", "javascript", "node.js", "react",
}

const (
	DefaultMaxSkills         = 5
	DefaultFallbackThreshold = 3
	minTermLength            = 3
)

// SkillSet is an ordered, deduplicated list of lowercase skill terms.
type SkillSet []string

// String joins the terms with ", ", the form sent as search keywords.
func (s SkillSet) String() string {
	return strings.Join(s, ", ")
}

// Options tunes an Extractor. Zero values select the defaults.
type Options struct {
	Vocabulary        []string
	MaxSkills         int
	FallbackThreshold int
	// DisableFallback turns off the entity pass regardless of
	// FallbackThreshold.
	DisableFallback bool
	Logger          *slog.Logger
}

// Extractor picks skill terms out of text in two passes: noun chunks that
// exactly match the vocabulary, then, when that yields too few, named
// entities that are not in the vocabulary.
type Extractor struct {
	analyzer  nlp.Analyzer
	vocab     map[string]struct{}
	vocabList []string
	max       int
	threshold int
	logger    *slog.Logger
}

// NewExtractor creates an Extractor around a shared analyzer.
func NewExtractor(analyzer nlp.Analyzer, opts Options) *Extractor {
	list := opts.Vocabulary
	if len(list) == 0 {
		list = DefaultVocabulary
	}
	vocab := make(map[string]struct{}, len(list))
	normalized := make([]string, 0, len(list))
	for _, v := range list {
		v = normalize(v)
		if v == "" {
			continue
		}
		if _, dup := vocab[v]; dup {
			continue
		}
		vocab[v] = struct{}{}
		normalized = append(normalized, v)
	}

	max := opts.MaxSkills
	if max <= 0 {
		max = DefaultMaxSkills
	}
	threshold := opts.FallbackThreshold
	if threshold <= 0 {
		threshold = DefaultFallbackThreshold
	}
	if opts.DisableFallback {
		threshold = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		analyzer:  analyzer,
		vocab:     vocab,
		vocabList: normalized,
		max:       max,
		threshold: threshold,
		logger:    logger.With("component", "skills"),
	}
}

// Vocabulary returns the normalized reference vocabulary.
func (e *Extractor) Vocabulary() []string {
	out := make([]string, len(e.vocabList))
	copy(out, e.vocabList)
	return out
}

// Extract returns at most MaxSkills terms. It never fails: analyzer errors
// are logged and produce an empty set.
func (e *Extractor) Extract(ctx context.Context, text string) SkillSet {
	if strings.TrimSpace(text) == "" {
		return SkillSet{}
	}

	analysis, err := e.analyzer.Analyze(ctx, text)
	if err != nil {
		e.logger.Warn("text analysis failed", "chars", len(text), "error", err)
		return SkillSet{}
	}

	set := newOrderedSet()
	for _, chunk := range analysis.NounChunks {
		term := normalize(chunk)
		if !e.eligible(term) {
			continue
		}
		if _, ok := e.vocab[term]; ok {
			set.add(term)
		}
	}

	if set.len() < e.threshold {
		for _, ent := range analysis.Entities {
			term := normalize(ent)
			if e.eligible(term) {
				if _, ok := e.vocab[term]; !ok {
					set.add(term)
				}
			}
			if set.len() >= e.max {
				break
			}
		}
	}

	terms := set.items
	if len(terms) > e.max {
		terms = terms[:e.max]
	}
	e.logger.Debug("skills extracted",
		"chunks", len(analysis.NounChunks), "entities", len(analysis.Entities), "skills", len(terms))
	return SkillSet(terms)
}

func (e *Extractor) eligible(term string) bool {
	return utf8.RuneCountInString(term) >= minTermLength && !nlp.IsStopWord(term)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// orderedSet keeps first-insertion order so truncation is deterministic.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) len() int { return len(s.items) }
