package embedding

import "sort"

// Vector is a sparse term-weight vector keyed by vocabulary index.
type Vector map[int]float64

// Vectorizer fits a vocabulary on a corpus and maps text into that space.
// A Vectorizer is single-use: Fit is called once per corpus.
type Vectorizer interface {
	Name() string
	Fit(corpus []string) error
	Dimension() int
	Transform(text string) Vector
}

// Indices returns the populated indices in ascending order.
func (v Vector) Indices() []int {
	idxs := make([]int, 0, len(v))
	for i := range v {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	return idxs
}

// Dot returns the dot product of two sparse vectors, summed in ascending index
// order so equal inputs always give bit-identical results.
func Dot(a, b Vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	sum := 0.0
	for _, i := range a.Indices() {
		sum += a[i] * b[i]
	}
	return sum
}
