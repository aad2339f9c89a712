package colorhandler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

func chGrid(t *testing.T) *spectrum.Grid {
	g, err := spectrum.NewGrid([]float64{450, 550, 650})
	require.NoError(t, err)
	return g
}

func vectorWithRadiances(r0, r1, r2 float64) light.Vector {
	lv := light.NewVector(geom.Ray{}, 3)
	lv.Samples[0].Radiance = r0
	lv.Samples[1].Radiance = r1
	lv.Samples[2].Radiance = r2
	return lv
}

func TestSimpleRGBReordersBandsAsBGR(t *testing.T) {
	lv := vectorWithRadiances(1, 2, 3)
	out := SimpleRGB{}.Resolve(lv)
	assert.Equal(t, []float64{3, 2, 1}, out)
}

func TestSpectrumColorChannelsNameWavelengths(t *testing.T) {
	g := chGrid(t)
	sc := SpectrumColor{Grid: g}
	assert.Equal(t, []string{"450", "550", "650"}, sc.Channels())
}

func TestXYZOfZeroRadianceIsZero(t *testing.T) {
	g := chGrid(t)
	x, y, z := XYZ(g, []float64{0, 0, 0})
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.Zero(t, z)
}

func TestAdaptXYZScalingIsIdentityWhenWhitesMatch(t *testing.T) {
	xyz := [3]float64{0.4, 0.3, 0.2}
	out := Adapt(AdaptXYZScaling, xyz, D65White, D65White)
	assert.InDelta(t, xyz[0], out[0], 1e-9)
	assert.InDelta(t, xyz[1], out[1], 1e-9)
	assert.InDelta(t, xyz[2], out[2], 1e-9)
}

func TestLinearPolarizerAtCrossAngleBlocksFullyPolarizedLight(t *testing.T) {
	lv := light.NewVector(geom.Ray{}, 1)
	lv.Samples[0].Radiance = 1
	lv.Samples[0].Linear0 = 1 // fully polarized along 0 degrees

	inner := SpectrumColor{Grid: mustGrid(t)}
	polarizer := LinearPolarizer{Theta: 3.14159265 / 2, Inner: inner}
	out := polarizer.Resolve(lv)
	assert.InDelta(t, 0, out[0], 1e-3)
}

func mustGrid(t *testing.T) *spectrum.Grid {
	g, err := spectrum.NewGrid([]float64{550})
	require.NoError(t, err)
	return g
}

func TestSpectrophotometerFinalizeWritesMeanAndNothingBeforeMeasure(t *testing.T) {
	g := chGrid(t)
	s := NewSpectrophotometer(g)
	var buf bytes.Buffer
	require.NoError(t, s.Finalize(&buf))
	assert.Empty(t, buf.String())

	s.Measure(vectorWithRadiances(1, 2, 3))
	s.Measure(vectorWithRadiances(3, 2, 1))
	buf.Reset()
	require.NoError(t, s.Finalize(&buf))
	assert.Contains(t, buf.String(), "450,2")
}
