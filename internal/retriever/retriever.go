// Package retriever ranks document chunks against a query with TF-IDF cosine similarity.
package retriever

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"studymate/internal/domain"
	"studymate/internal/embedding"
	"studymate/internal/embedding/tfidf"
	"studymate/internal/vectorstore"
	"studymate/internal/vectorstore/memory"
)

// DefaultTopK is the number of chunks selected when the caller passes topK <= 0.
const DefaultTopK = 3

const contextSeparator = "\n\n"

// Result is the outcome of one retrieval.
// Indices and Scores are in descending similarity order, as is Context.
type Result struct {
	Context string
	Indices []int
	Scores  []float64
}

// Retriever builds a fresh vector space for every call: the vocabulary is fit on
// chunks plus the query, so scores are only comparable within one call.
type Retriever struct {
	newVectorizer func() embedding.Vectorizer
	newStorage    func() vectorstore.Storage
	log           zerolog.Logger
}

// New creates a TF-IDF retriever with the given vocabulary cap.
func New(maxFeatures int, log zerolog.Logger) *Retriever {
	return &Retriever{
		newVectorizer: func() embedding.Vectorizer { return tfidf.New(maxFeatures) },
		newStorage:    func() vectorstore.Storage { return memory.NewStorage() },
		log:           log,
	}
}

// Retrieve selects the min(topK, len(chunks)) chunks most similar to query.
// Ties are broken by lower chunk index.
func (r *Retriever) Retrieve(query string, chunks []string, topK int) (Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(chunks) == 0 {
		return Result{}, nil
	}
	vec := r.newVectorizer()
	corpus := make([]string, 0, len(chunks)+1)
	corpus = append(corpus, chunks...)
	corpus = append(corpus, query)
	if err := vec.Fit(corpus); err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}

	vectors := make([]embedding.Vector, len(chunks))
	for i, c := range chunks {
		vectors[i] = vec.Transform(c)
	}
	store := r.newStorage()
	if err := store.Upsert(vectors); err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}
	matches, err := store.Search(vec.Transform(query), topK)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrRetrieval, err)
	}

	res := Result{
		Indices: make([]int, len(matches)),
		Scores:  make([]float64, len(matches)),
	}
	selected := make([]string, len(matches))
	for i, m := range matches {
		res.Indices[i] = m.Index
		res.Scores[i] = m.Score
		selected[i] = chunks[m.Index]
	}
	res.Context = strings.Join(selected, contextSeparator)

	r.log.Debug().
		Int("top_k", topK).
		Int("vocabulary", vec.Dimension()).
		Ints("indices", res.Indices).
		Floats64("scores", res.Scores).
		Msg("retrieved relevant chunks")
	return res, nil
}
