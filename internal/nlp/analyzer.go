// Package nlp runs the language analysis used by skill extraction.
package nlp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Analysis holds the spans found in a text, in document order.
type Analysis struct {
	NounChunks []string
	Entities   []string
}

// Analyzer produces noun-phrase chunks and named entities for a text.
// Implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}

// ProseAnalyzer is an Analyzer backed by prose's tokenizer, POS tagger
// and entity extractor. The tagging and entity models are loaded once
// and shared read-only.
type ProseAnalyzer struct {
	opts []prose.DocOpt
}

// NewProseAnalyzer creates the default analyzer.
func NewProseAnalyzer() *ProseAnalyzer {
	opts := []prose.DocOpt{
		prose.WithSegmentation(false),
		prose.WithTokenization(true),
		prose.WithTagging(true),
		prose.WithExtraction(true),
	}
	// An empty document is enough to load the default model.
	seed, _ := prose.NewDocument("", opts...)
	if seed != nil && seed.Model != nil {
		opts = append(opts, prose.UsingModel(seed.Model))
	}
	return &ProseAnalyzer{opts: opts}
}

// Analyze treats every line as its own unit: résumés list skills one per
// line or separated by punctuation, so phrases never span a line break
// or a separator.
func (a *ProseAnalyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	var res Analysis
	for _, line := range splitLines(text) {
		if err := ctx.Err(); err != nil {
			return Analysis{}, err
		}

		doc, err := prose.NewDocument(line, a.opts...)
		if err != nil {
			return Analysis{}, fmt.Errorf("analyzing text: %w", err)
		}

		tokens := doc.Tokens()
		tagged := make([]TaggedToken, len(tokens))
		for i, tok := range tokens {
			tagged[i] = TaggedToken{Text: tok.Text, Tag: tok.Tag}
		}

		res.NounChunks = append(res.NounChunks, lineChunks(tagged)...)
		for _, ent := range doc.Entities() {
			res.Entities = append(res.Entities, ent.Text)
		}
	}
	return res, nil
}

// lineChunks merges list items and noun chunks in token order; at the
// same position the list item comes first.
func lineChunks(tagged []TaggedToken) []string {
	spans := append(listItemSpans(tagged), nounChunkSpans(tagged)...)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return texts(spans)
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\f' || r == '\v'
	}) {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
