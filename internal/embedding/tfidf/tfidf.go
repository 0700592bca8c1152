package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"studymate/internal/embedding"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 5000

var _ embedding.Vectorizer = (*Vectorizer)(nil)

// ErrEmptyVocabulary is returned by Fit when the corpus has no tokens.
var ErrEmptyVocabulary = errors.New("empty vocabulary; corpus contains no tokens")

// Vectorizer implements a TF-IDF vectorizer producing L2-normalised sparse vectors.
// Every token is kept (no stopword list); the vocabulary is limited to the
// maxFeatures most frequent terms of the corpus.
type Vectorizer struct {
	vocabulary   map[string]int
	idf          []float64
	maxFeatures  int
	fitted       bool
	tokenPattern *regexp.Regexp
}

// New creates an unfitted vectorizer. Non-positive maxFeatures uses DefaultMaxFeatures.
func New(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Vectorizer{
		vocabulary:   make(map[string]int),
		maxFeatures:  maxFeatures,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]+`),
	}
}

// Name returns the identifier of this vectorizer.
func (v *Vectorizer) Name() string { return "tfidf" }

// Fit builds the vocabulary and IDF values from the corpus.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF fit")
	}
	df := make(map[string]int)
	total := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range v.tokenize(text) {
			total[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return ErrEmptyVocabulary
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if len(terms) > v.maxFeatures {
		// keep the most frequent terms; ties resolved alphabetically
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.maxFeatures]
	}
	// Stable ordering for vocabulary indices
	sort.Strings(terms)
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		// Smoothed IDF
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	v.fitted = true
	return nil
}

// Dimension returns the vocabulary size.
func (v *Vectorizer) Dimension() int { return len(v.idf) }

// Transform computes the TF-IDF vector for text. Unknown tokens are ignored;
// text without known tokens yields an empty vector.
func (v *Vectorizer) Transform(text string) embedding.Vector {
	vec := make(embedding.Vector)
	if !v.fitted {
		return vec
	}
	for _, tok := range v.tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	norm := 0.0
	for _, idx := range vec.Indices() {
		w := vec[idx] * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	// L2 normalize
	norm = math.Sqrt(norm)
	if norm > 0 {
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

func (v *Vectorizer) tokenize(text string) []string {
	return v.tokenPattern.FindAllString(strings.ToLower(text), -1)
}
