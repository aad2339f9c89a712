package light

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomasrubini/specrender/internal/geom"
)

func TestRotateRoundTrip(t *testing.T) {
	d := Data{Radiance: 1, Linear0: 0.4, Linear45: -0.2, Circular: 0.1}
	for _, alpha := range []float64{0.1, 0.7, 1.9, -2.3} {
		rt := d.Rotate(alpha).Rotate(-alpha)
		assert.InDelta(t, d.Linear0, rt.Linear0, 1e-9)
		assert.InDelta(t, d.Linear45, rt.Linear45, 1e-9)
		assert.InDelta(t, d.Circular, rt.Circular, 1e-9)
	}
}

func TestLinearPolarizerIdempotent(t *testing.T) {
	d := Data{Radiance: 1, Linear0: 0.5, Linear45: 0.1, Circular: 0.3}
	theta := 0.4
	once := d.ApplyLinearPolarizer(theta)
	twice := once.ApplyLinearPolarizer(theta)
	assert.InDelta(t, once.Radiance, twice.Radiance, 1e-9)
	assert.InDelta(t, once.Linear0, twice.Linear0, 1e-9)
	assert.InDelta(t, once.Linear45, twice.Linear45, 1e-9)
}

func TestFresnelClamp01(t *testing.T) {
	d := Data{Radiance: 1}
	out := d.ApplyFresnel(1.0000001, 0.9999999)
	assert.True(t, out.Radiance >= 0)
}

func TestDefaultFrameSwitchesNearZ(t *testing.T) {
	nearZ := geom.Vec3{X: 0, Y: 0, Z: 1}
	f := DefaultFrame(nearZ)
	assert.InDelta(t, 1, f.X, 1e-9)

	notZ := geom.Vec3{X: 1, Y: 0, Z: 0}
	f2 := DefaultFrame(notZ)
	assert.InDelta(t, 1, f2.Z, 1e-9)
}

func TestReframeFlipDifference(t *testing.T) {
	v := NewVector(geom.Ray{Origin: geom.Vec3{}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}, 1)
	v.Samples[0] = Data{Radiance: 1, Linear0: 0.5}
	newFrame := geom.Vec3{X: 1, Y: 0, Z: 0}.Add(geom.Vec3{X: 0, Y: 0.2, Z: 0}).Normalized()

	incident := v.ChangeIncidentFrame(newFrame)
	reemited := v.ChangeReemitedFrame(newFrame)
	assert.InDelta(t, incident.Samples[0].Linear45, -reemited.Samples[0].Linear45, 1e-9)
}

func TestPhotonMeanRadiance(t *testing.T) {
	p := NewPhoton(4)
	p.Radiances = []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, p.MeanRadiance(), 1e-9)
	assert.True(t, math.Abs(p.TotalRadiance()-10) < 1e-9)
}
