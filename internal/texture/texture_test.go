package texture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

func TestImageSetAtRoundTrip(t *testing.T) {
	img := NewImage(4, 4, []string{"R", "G", "B"})
	img.Set(1, 2, []float64{0.1, 0.2, 0.3})
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, img.At(1, 2))
}

func TestImageOutOfBoundsIgnored(t *testing.T) {
	img := NewImage(2, 2, []string{"R"})
	img.Set(10, 10, []float64{1})
	assert.NotPanics(t, func() { img.At(10, 10) })
}

func TestTextureWrapModes(t *testing.T) {
	img := NewImage(2, 2, []string{"R"})
	img.Set(0, 0, []float64{9})
	tex := &Texture{Image: img, WrapU: WrapRepeat, WrapV: WrapRepeat}
	direct := tex.Sample(0.25, 0.75)
	wrapped := tex.Sample(1.25, 1.75) // repeats by a full period in both axes
	assert.Equal(t, direct, wrapped)
}

func TestTextureSpectralLookup(t *testing.T) {
	g, err := spectrum.NewGrid([]float64{400, 500, 600})
	require.NoError(t, err)
	img := NewImage(1, 1, []string{"400", "500", "600"})
	img.Set(0, 0, []float64{1, 2, 3})
	tex := &Texture{Image: img, Grid: g, Spectral: true}
	s, err := tex.SpectrumAt(0.5, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.At(0))
	assert.Equal(t, 3.0, s.At(2))
}
