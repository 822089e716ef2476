package qsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultHistogram(t *testing.T) {
	data := [][]float64{
		{0, 0}, {1, 1}, {0, 0}, {0, 0}, {1, -1},
	}
	r := NewResult(data, 2)

	assert.Equal(t, 5, r.Shots)
	assert.Equal(t, 3, r.Count("0 0"))
	assert.Equal(t, 1, r.Count("1 1"))
	assert.Equal(t, 1, r.Count("1 -1"))
	assert.Equal(t, 0, r.Count("0 1"))
	assert.InDelta(t, 0.6, r.Probability("0 0"), eps)

	sorted := r.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, "0 0", sorted[0].Key)
	// Equal counts break ties on key order.
	assert.Equal(t, "1 -1", sorted[1].Key)
	assert.Equal(t, "1 1", sorted[2].Key)

	exp, ok := r.Expected()
	require.True(t, ok)
	assert.Equal(t, "0 0", exp.Key)
	assert.Equal(t, 3, exp.Count)

	high := r.Highest(0.5)
	require.Len(t, high, 1)
	assert.Equal(t, "0 0", high[0].Key)
}

func TestCountsReturnsCopy(t *testing.T) {
	r := NewResult([][]float64{{0}, {1}, {1}}, 1)

	counts := r.Counts()
	counts["1"] = 99
	delete(counts, "0")

	assert.Equal(t, 2, r.Count("1"))
	assert.Equal(t, 1, r.Count("0"))
}

func TestResultEmpty(t *testing.T) {
	r := NewResult(nil, 2)
	assert.Equal(t, 0, r.Shots)
	assert.Zero(t, r.Probability("0 0"))
	_, ok := r.Expected()
	assert.False(t, ok)
}
