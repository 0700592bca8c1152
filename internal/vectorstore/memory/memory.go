package memory

import (
	"errors"
	"sort"
	"sync"

	"studymate/internal/embedding"
	"studymate/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Positions follow insertion order, so Match.Index is the position of the vector
// across all Upsert calls.
type Storage struct {
	mu      sync.RWMutex
	vectors []embedding.Vector
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Upsert(vectors []embedding.Vector) error {
	for _, v := range vectors {
		if v == nil {
			return errors.New("nil vector")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK closest vectors by descending score. Equal scores keep
// insertion order. topK <= 0 returns every vector.
func (s *Storage) Search(vector embedding.Vector, topK int) ([]vectorstore.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// cosine similarity (vectors are assumed L2-normalized)
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = embedding.Dot(s.vectors[i], vector)
	}
	idxs := argsortDesc(scores)
	if topK <= 0 || topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]vectorstore.Match, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, vectorstore.Match{Index: j, Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	return nil
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
