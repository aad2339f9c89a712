package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid([]float64{400, 500, 560, 600, 700})
	require.NoError(t, err)
	return g
}

func TestSpectrumAlgebra(t *testing.T) {
	g := testGrid(t)
	s, err := FromValues(g, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	zero := Zero(g)
	assert.Equal(t, s.Values(), zero.Add(s).Values())

	doubled := s.Add(s)
	for i := 0; i < s.Len(); i++ {
		assert.InDelta(t, 2*s.At(i), doubled.At(i), 1e-9)
	}

	roundTrip := s.Scale(3.7).Scale(1 / 3.7)
	for i := 0; i < s.Len(); i++ {
		assert.InDelta(t, s.At(i), roundTrip.At(i), 1e-9)
	}
}

func TestValueAtNearestFloor(t *testing.T) {
	g := testGrid(t)
	s, err := FromValues(g, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Equal(t, 2.0, s.ValueAt(500))
	assert.Equal(t, 2.0, s.ValueAt(550))
	assert.Equal(t, 1.0, s.ValueAt(400))
	assert.Equal(t, 1.0, s.ValueAt(0))
	assert.Equal(t, 5.0, s.ValueAt(10000))
}

func TestNormalizationModes(t *testing.T) {
	g := testGrid(t)
	s, err := FromValues(g, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, s.NormalizeMax().Max(), 1e-9)
	assert.InDelta(t, 1.0, s.NormalizeAt560().ValueAt(560), 1e-9)
	assert.InDelta(t, 1.0, s.NormalizePower().Sum(), 1e-9)
}

func TestGridRejectsBadInput(t *testing.T) {
	_, err := NewGrid(nil)
	assert.Error(t, err)

	_, err = NewGrid([]float64{400, -1})
	assert.Error(t, err)

	_, err = NewGrid([]float64{400, 400})
	assert.Error(t, err)
}
