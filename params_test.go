package qsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterMapAddAndGet(t *testing.T) {
	p := NewParameterMap()

	e0 := p.Add([]float64{0.5}, nil)
	e1 := p.Add(nil, nil)
	e2 := p.Add([]float64{1.0, 2.0}, nil)

	assert.Equal(t, 0, e0)
	assert.Equal(t, 1, e1)
	assert.Equal(t, 2, e2)
	assert.Equal(t, 3, p.NumEntries())
	assert.Equal(t, 3, p.NumParams())

	got, err := p.Get(e0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, got)

	got, err = p.Get(e1)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = p.Get(e2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0}, got)
}

func TestParameterMapLinkedSharing(t *testing.T) {
	p := NewParameterMap()

	fresh := p.Add([]float64{0.5}, nil)
	pos := p.Indices(fresh)
	linked := p.Add(nil, pos)

	// Linked entries add no pool values.
	assert.Equal(t, 1, p.NumParams())

	p.SetAt(pos[0], 1.2)
	for _, entry := range []int{fresh, linked} {
		got, err := p.Get(entry)
		require.NoError(t, err)
		assert.Equal(t, []float64{1.2}, got)
	}
}

func TestParameterMapSetReplacesPool(t *testing.T) {
	p := NewParameterMap()
	a := p.Add([]float64{0.1}, nil)
	b := p.Add([]float64{0.2}, nil)

	p.Set([]float64{9.0, 8.0})
	got, err := p.Get(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{9.0}, got)
	got, err = p.Get(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{8.0}, got)

	// Shrinking the pool strands the second entry's position.
	p.Set([]float64{7.0})
	_, err = p.Get(b)
	assert.ErrorIs(t, err, ErrMissingParameter)
	got, err = p.Get(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{7.0}, got)
}

func TestParameterMapBadEntry(t *testing.T) {
	p := NewParameterMap()
	_, err := p.Get(0)
	assert.ErrorIs(t, err, ErrMissingParameter)
	_, err = p.Get(-1)
	assert.ErrorIs(t, err, ErrMissingParameter)
}
