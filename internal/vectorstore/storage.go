package vectorstore

import "studymate/internal/embedding"

// Match is one ranked entry of a similarity search.
type Match struct {
	Index int
	Score float64
}

// Storage holds vectors by position and supports similarity search.
type Storage interface {
	Upsert(vectors []embedding.Vector) error
	Search(vector embedding.Vector, topK int) ([]Match, error)
	Len() int
	Clear() error
}
