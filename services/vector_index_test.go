package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorIndex_IdenticalVectorRanksFirst(t *testing.T) {
	vectors := [][]float32{
		{0, 0, 1},
		{1, 0, 0},
		{0, 1, 0},
		{0.5, 0.5, 0},
	}
	ix, err := NewVectorIndex(vectors)
	require.NoError(t, err)

	for j, v := range vectors {
		hits, err := ix.Search(v, 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, j, hits[0].Position)
		assert.Equal(t, float32(0), hits[0].Distance)
	}
}

func TestVectorIndex_OrderAndTies(t *testing.T) {
	ix, err := NewVectorIndex([][]float32{
		{2, 0},
		{1, 0},
		{-1, 0},
		{1, 0},
	})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{0, 0}, 4)
	require.NoError(t, err)

	positions := make([]int, len(hits))
	for i, h := range hits {
		positions[i] = h.Position
	}
	assert.Equal(t, []int{1, 2, 3, 0}, positions)
	assert.Equal(t, float32(4), hits[3].Distance)
}

func TestVectorIndex_KLargerThanIndex(t *testing.T) {
	ix, err := NewVectorIndex([][]float32{{1}, {2}})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{0}, 5)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = ix.Search([]float32{0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_Errors(t *testing.T) {
	_, err := NewVectorIndex(nil)
	assert.Error(t, err)

	_, err = NewVectorIndex([][]float32{{1, 2}, {1}})
	assert.Error(t, err)

	ix, err := NewVectorIndex([][]float32{{1, 2}})
	require.NoError(t, err)
	_, err = ix.Search([]float32{1}, 1)
	assert.Error(t, err)
}

func TestVectorIndex_CopiesInput(t *testing.T) {
	in := [][]float32{{1, 1}}
	ix, err := NewVectorIndex(in)
	require.NoError(t, err)
	in[0][0] = 99

	assert.Equal(t, float32(1), ix.Vectors()[0][0])
	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, 2, ix.Dimension())
}
