package camera

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomasrubini/specrender/internal/geom"
)

func TestPerspectiveCenterPixelLooksAlongDirection(t *testing.T) {
	cam := NewPerspective(geom.Vec3{X: 0, Y: 0, Z: -5}, geom.Vec3{X: 0, Y: 0, Z: 5}, geom.Vec3{X: 0, Y: 1, Z: 0}, math.Pi/2, 1)
	ray := cam.PrimaryRay(0.5, 0.5)
	assert.InDelta(t, 0, ray.Dir.X, 1e-9)
	assert.InDelta(t, 0, ray.Dir.Y, 1e-9)
	assert.InDelta(t, 1, ray.Dir.Z, 1e-9)
}

func TestOrthoscopicRaysAreParallel(t *testing.T) {
	cam := NewOrthoscopic(geom.Vec3{X: 0, Y: 0, Z: -5}, geom.Vec3{X: 0, Y: 0, Z: 5}, geom.Vec3{X: 0, Y: 1, Z: 0}, 4, 4)
	a := cam.PrimaryRay(0.1, 0.1)
	b := cam.PrimaryRay(0.9, 0.9)
	assert.InDelta(t, a.Dir.X, b.Dir.X, 1e-9)
	assert.InDelta(t, a.Dir.Z, b.Dir.Z, 1e-9)
	assert.NotEqual(t, a.Origin, b.Origin)
}

func TestFisheyeCenterPixelLooksAlongDirection(t *testing.T) {
	cam := NewFisheye(geom.Vec3{X: 0, Y: 0, Z: -5}, geom.Vec3{X: 0, Y: 0, Z: 5}, geom.Vec3{X: 0, Y: 1, Z: 0}, math.Pi/2)
	ray := cam.PrimaryRay(0.5, 0.5)
	assert.InDelta(t, 1, ray.Dir.Z, 1e-9)
}

func TestPolarCoversFullSphereOfDirections(t *testing.T) {
	cam := NewPolar(geom.Vec3{}, geom.Vec3{X: 0, Y: 0, Z: 1}, geom.Vec3{X: 0, Y: 1, Z: 0})
	top := cam.PrimaryRay(0, 0)
	bottom := cam.PrimaryRay(0, 1)
	assert.InDelta(t, 1, top.Dir.Y, 1e-9)
	assert.InDelta(t, -1, bottom.Dir.Y, 1e-9)
}
