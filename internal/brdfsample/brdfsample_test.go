package brdfsample

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomasrubini/specrender/internal/material"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

func testGrid(t *testing.T) *spectrum.Grid {
	g, err := spectrum.NewGrid([]float64{450, 550, 650})
	require.NoError(t, err)
	return g
}

func TestEvaluateLambertianIsPolarizationInsensitive(t *testing.T) {
	g := testGrid(t)
	albedo, err := spectrum.FromValues(g, []float64{0.8, 0.5, 0.2})
	require.NoError(t, err)
	mat := material.NewLambertianBRDF(albedo)

	s := Evaluate(mat, 0, 0, 0, 0, 3)
	for i := range s.Spectrum {
		assert.InDelta(t, s.RPerp[i], s.RPar[i], 1e-9, "a Lambertian surface depolarizes: R_perp and R_par must agree")
		assert.InDelta(t, s.RPerp[i], s.Spectrum[i], 1e-9)
	}
}

func TestEvaluateRegularBRDFSeparatesPerpAndPar(t *testing.T) {
	g := testGrid(t)
	ior, err := spectrum.FromValues(g, []float64{1.5, 1.5, 1.5})
	require.NoError(t, err)
	mat := material.NewRegularBRDF(ior)

	// Oblique incidence: R_perp and R_par should differ for a dielectric
	// mirror away from normal incidence (classic Fresnel behavior).
	s := Evaluate(mat, 1.0, 0, 1.0, 0, 3)
	anyDiffer := false
	for i := range s.RPerp {
		if s.RPerp[i] != s.RPar[i] {
			anyDiffer = true
		}
	}
	assert.True(t, anyDiffer, "expected R_perp != R_par away from normal incidence")
}

func TestSweepProducesExpectedSampleCount(t *testing.T) {
	g := testGrid(t)
	albedo, err := spectrum.FromValues(g, []float64{0.5, 0.5, 0.5})
	require.NoError(t, err)
	mat := material.NewLambertianBRDF(albedo)

	samples := Sweep(mat, Config{Step: 1.5, N: 3}) // coarse: a handful of angles per axis
	assert.NotEmpty(t, samples)
	for _, s := range samples {
		assert.Len(t, s.RPerp, 3)
		assert.Len(t, s.RPar, 3)
		assert.Len(t, s.Spectrum, 3)
	}
}

func TestWriteTableRowCount(t *testing.T) {
	g := testGrid(t)
	albedo, err := spectrum.FromValues(g, []float64{0.5, 0.5, 0.5})
	require.NoError(t, err)
	mat := material.NewLambertianBRDF(albedo)

	samples := Sweep(mat, Config{Step: 1.5, N: 3})
	var buf strings.Builder
	require.NoError(t, WriteTable(&buf, samples))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, len(samples))
}
