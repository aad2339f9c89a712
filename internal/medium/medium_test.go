package medium

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

func grid(t *testing.T) *spectrum.Grid {
	t.Helper()
	g, err := spectrum.NewGrid([]float64{400, 500, 600})
	require.NoError(t, err)
	return g
}

func TestFresnelReflectanceInRange(t *testing.T) {
	for _, cos := range []float64{0.01, 0.3, 0.7, 0.99, 1.0} {
		for _, n := range []float64{1.0, 1.3, 1.5, 2.4} {
			rPerp, rPar := FresnelReflectance(cos, n)
			assert.GreaterOrEqual(t, rPerp, 0.0)
			assert.LessOrEqual(t, rPerp, 1.0)
			assert.GreaterOrEqual(t, rPar, 0.0)
			assert.LessOrEqual(t, rPar, 1.0)
		}
	}
}

func TestOpaqueMediumZeroesTransport(t *testing.T) {
	g := grid(t)
	m := Medium{Opaque: true}
	v := light.NewVector(zeroRay(), g.Len())
	for i := range v.Samples {
		v.Samples[i].Radiance = 1
	}
	out := m.TransportLight(v, 5)
	for _, s := range out.Samples {
		assert.Equal(t, 0.0, s.Radiance)
	}
}

func TestLambertianTransportMultipliesTransmittance(t *testing.T) {
	g := grid(t)
	trans, err := spectrum.FromValues(g, []float64{0.5, 0.5, 0.5})
	require.NoError(t, err)
	m := Medium{HasLambertian: true, Transmittance: trans}
	v := light.NewVector(zeroRay(), g.Len())
	for i := range v.Samples {
		v.Samples[i].Radiance = 1
	}
	out := m.TransportLight(v, 1)
	for _, s := range out.Samples {
		assert.InDelta(t, 0.5, s.Radiance, 1e-9)
	}
}

func TestTransportPhotonAbsorbsOrSurvives(t *testing.T) {
	g := grid(t)
	trans, err := spectrum.FromValues(g, []float64{0.1, 0.1, 0.1})
	require.NoError(t, err)
	m := Medium{HasLambertian: true, Transmittance: trans}
	rng := rand.New(rand.NewSource(1))
	survived, died := 0, 0
	for i := 0; i < 1000; i++ {
		p := light.NewPhoton(g.Len())
		for j := range p.Radiances {
			p.Radiances[j] = 1
		}
		_, ok := m.TransportPhoton(p, 1, rng)
		if ok {
			survived++
		} else {
			died++
		}
	}
	assert.Greater(t, died, survived) // transmittance 0.1 => mostly absorbed
}

func zeroRay() geom.Ray {
	return geom.Ray{Origin: geom.Vec3{}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
}
