package nlp

import (
	"strings"
	"unicode"
)

// maxListItemTokens bounds how long a separator-delimited run may be and
// still be reported as a list item.
const maxListItemTokens = 4

// TaggedToken is a token with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

func isNoun(tag string) bool {
	return tag == "NN" || tag == "NNS" || tag == "NNP" || tag == "NNPS"
}

func isModifier(tag string) bool {
	switch tag {
	case "JJ", "JJR", "JJS", "CD":
		return true
	}
	return false
}

func isDeterminer(tag string) bool {
	return tag == "DT" || tag == "PRP$"
}

// span is a phrase and the index of its first token.
type span struct {
	start int
	text  string
}

func texts(spans []span) []string {
	if len(spans) == 0 {
		return nil
	}
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = sp.text
	}
	return out
}

// NounChunks groups tagged tokens into base noun phrases: an optional
// determiner, any adjectives or numbers, then one or more nouns. A gerund
// directly after a noun stays in the phrase ("machine learning"). Only
// spans containing a noun are returned.
func NounChunks(tokens []TaggedToken) []string {
	return texts(nounChunkSpans(tokens))
}

func nounChunkSpans(tokens []TaggedToken) []span {
	var chunks []span
	var cur []string
	start := 0
	hasNoun := false
	lastNoun := false

	flush := func() {
		if hasNoun {
			chunks = append(chunks, span{start: start, text: strings.Join(cur, " ")})
		}
		cur = cur[:0]
		hasNoun = false
		lastNoun = false
	}
	push := func(i int, text string) {
		if len(cur) == 0 {
			start = i
		}
		cur = append(cur, text)
	}

	for i, tok := range tokens {
		switch {
		case isNoun(tok.Tag):
			push(i, tok.Text)
			hasNoun = true
			lastNoun = true
		case tok.Tag == "VBG" && lastNoun:
			push(i, tok.Text)
			lastNoun = true
		case isModifier(tok.Tag):
			if hasNoun {
				flush()
			}
			push(i, tok.Text)
			lastNoun = false
		case isDeterminer(tok.Tag):
			flush()
			push(i, tok.Text)
		default:
			flush()
		}
	}
	flush()

	return chunks
}

// ListItems returns the short runs of tokens between separators
// (punctuation, bullets and coordinating conjunctions) that read as
// enumerated items: "Python, Docker and Kubernetes" yields Python,
// Docker and Kubernetes. Runs holding a finite verb are prose, not
// list items, unless they are a single token.
func ListItems(tokens []TaggedToken) []string {
	return texts(listItemSpans(tokens))
}

func listItemSpans(tokens []TaggedToken) []span {
	var items []span
	var run []string
	start := 0
	verb := false

	flush := func() {
		if len(run) == 1 || (len(run) > 1 && len(run) <= maxListItemTokens && !verb) {
			items = append(items, span{start: start, text: strings.Join(run, " ")})
		}
		run = run[:0]
		verb = false
	}

	for i, tok := range tokens {
		if isSeparator(tok) {
			flush()
			continue
		}
		if len(run) == 0 {
			start = i
		}
		run = append(run, tok.Text)
		if isFiniteVerb(tok.Tag) {
			verb = true
		}
	}
	flush()

	return items
}

func isSeparator(tok TaggedToken) bool {
	if tok.Tag == "CC" {
		return true
	}
	return strings.IndexFunc(tok.Text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) < 0
}

func isFiniteVerb(tag string) bool {
	return strings.HasPrefix(tag, "VB") && tag != "VBG" && tag != "VBN"
}
