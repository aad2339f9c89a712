package source

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

func srcGrid(t *testing.T) *spectrum.Grid {
	g, err := spectrum.NewGrid([]float64{450, 550, 650})
	require.NoError(t, err)
	return g
}

func TestPointSourceInverseSquareFalloff(t *testing.T) {
	g := srcGrid(t)
	intensity, err := spectrum.FromValues(g, []float64{1, 1, 1})
	require.NoError(t, err)
	p := PointSource{Position: geom.Vec3{X: 0, Y: 0, Z: 0}, Intensity: intensity}

	near, ok := p.IncidentLight(geom.Vec3{X: 0, Y: 0, Z: 1}, 3)
	require.True(t, ok)
	far, ok := p.IncidentLight(geom.Vec3{X: 0, Y: 0, Z: 2}, 3)
	require.True(t, ok)

	assert.InDelta(t, 1.0, near.Samples[0].Radiance, 1e-9)
	assert.InDelta(t, 0.25, far.Samples[0].Radiance, 1e-9)
}

func TestPointSourcePowerIsFourPiTimesIntensity(t *testing.T) {
	g := srcGrid(t)
	intensity, err := spectrum.FromValues(g, []float64{2, 2, 2})
	require.NoError(t, err)
	p := PointSource{Intensity: intensity}
	power := p.Power()
	assert.InDelta(t, 2*4*math.Pi, power.At(0), 1e-9)
}

func TestDirectionalSourceHasInfiniteDistance(t *testing.T) {
	g := srcGrid(t)
	irr, err := spectrum.FromValues(g, []float64{1, 1, 1})
	require.NoError(t, err)
	d := DirectionalSource{Direction: geom.Vec3{X: 0, Y: 0, Z: -1}, Irradiance: irr}
	lv, ok := d.IncidentLight(geom.Vec3{X: 5, Y: 5, Z: 5}, 3)
	require.True(t, ok)
	assert.True(t, math.IsInf(lv.Distance, 1))
	assert.InDelta(t, 0, lv.Ray.Dir.X, 1e-9)
	assert.InDelta(t, 1, lv.Ray.Dir.Z, 1e-9)
}

func TestDiskSurfaceSampleLiesWithinRadius(t *testing.T) {
	disk := Disk{Center: geom.Vec3{}, Normal: geom.Vec3{X: 0, Y: 0, Z: 1}, Radius: 2}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		p, n := disk.SampleSurface(rng)
		assert.LessOrEqual(t, p.Len(), 2.0+1e-9)
		assert.InDelta(t, 1, n.Len(), 1e-9)
	}
}

func TestSurfaceSourceRandomPhotonStaysOnHemisphere(t *testing.T) {
	g := srcGrid(t)
	radiance, err := spectrum.FromValues(g, []float64{1, 1, 1})
	require.NoError(t, err)
	disk := Disk{Center: geom.Vec3{}, Normal: geom.Vec3{X: 0, Y: 0, Z: 1}, Radius: 1}
	s := NewSurfaceSource(disk, radiance, 4)
	rng := rand.New(rand.NewSource(3))

	ph := s.RandomPhoton(3, rng)
	assert.GreaterOrEqual(t, ph.Direction.Dot(ph.Normal), 0.0)
}
