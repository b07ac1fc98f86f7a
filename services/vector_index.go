package services

import (
	"errors"
	"fmt"
	"sort"
)

// Hit is one search result: the chunk position and its squared L2 distance.
type Hit struct {
	Position int
	Distance float32
}

// VectorIndex is a flat, exact nearest-neighbour index over squared Euclidean
// distance. It is immutable once built.
type VectorIndex struct {
	dim     int
	vectors [][]float32
}

// NewVectorIndex builds an index over vectors. All vectors must share one
// non-zero dimension.
func NewVectorIndex(vectors [][]float32) (*VectorIndex, error) {
	if len(vectors) == 0 {
		return nil, errors.New("vector index: no vectors")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("vector index: zero-dimension vector")
	}

	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector index: vector %d has dimension %d, want %d", i, len(v), dim)
		}
		stored[i] = append([]float32(nil), v...)
	}
	return &VectorIndex{dim: dim, vectors: stored}, nil
}

func (ix *VectorIndex) Len() int { return len(ix.vectors) }

func (ix *VectorIndex) Dimension() int { return ix.dim }

// Vectors returns the indexed vectors in position order. Callers must not modify them.
func (ix *VectorIndex) Vectors() [][]float32 { return ix.vectors }

// Search returns up to k hits ordered by ascending distance; equal distances
// keep the lower position first. k larger than the index returns every vector.
func (ix *VectorIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("vector index: query dimension %d, want %d", len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{Position: i, Distance: squaredL2(query, v)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
