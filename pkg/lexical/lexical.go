// Package lexical provides sparse, term-based text similarity.
//
// Sparse representations complement dense embeddings: they are exact on
// word overlap and cheap to compute, which makes them useful for blending
// with semantic scores or as a fallback when no language model is loaded.
package lexical

import (
	"math"
	"strings"
	"unicode"
)

// stopWords are filtered out before term weighting.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "as": true, "from": true,
}

// Normalize lowercases text and replaces punctuation with spaces, then
// splits it into raw tokens. Unicode letters are preserved.
func Normalize(text string) []string {
	text = strings.ToLower(text)
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			sb.WriteRune(' ')
		} else {
			sb.WriteRune(r)
		}
	}
	return strings.Fields(sb.String())
}

// Tokenize normalizes text into terms, dropping stop words and
// single-character tokens.
func Tokenize(text string) []string {
	var terms []string
	for _, word := range Normalize(text) {
		if !stopWords[word] && len(word) > 1 {
			terms = append(terms, word)
		}
	}
	return terms
}

// TermFreq builds a term-frequency map from tokens.
func TermFreq(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return nil
	}
	tf := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	return tf
}

// SparseCosine computes cosine similarity between two sparse term vectors.
func SparseCosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for term, weightA := range a {
		dot += weightA * b[term]
		normA += weightA * weightA
	}
	for _, weightB := range b {
		normB += weightB * weightB
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Jaccard computes the Jaccard overlap between two token sets.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, tok := range a {
		setA[tok] = true
	}

	seen := make(map[string]bool, len(b))
	intersection := 0
	for _, tok := range b {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if setA[tok] {
			intersection++
		}
	}

	union := len(setA) + len(seen) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Similarity scores two texts by term-frequency cosine. Returns a value
// in [0, 1] where 1 means identical term distributions.
func Similarity(source, target string) float64 {
	return SparseCosine(TermFreq(Tokenize(source)), TermFreq(Tokenize(target)))
}
