package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomasrubini/specrender/internal/geom"
)

func TestSphereIntersectionDistanceAndNormal(t *testing.T) {
	center := geom.Vec3{X: 2, Y: 3, Z: -1}
	s := Sphere{Center: center, Radius: 1.5}

	origin := geom.Vec3{X: 2, Y: 3, Z: -10}
	dir := center.Sub(origin).Normalized()
	ray := geom.Ray{Origin: origin, Dir: dir}

	h, ok := s.Intersect(ray)
	assert.True(t, ok)
	expected := origin.Sub(center).Len() - s.Radius
	assert.InDelta(t, expected, h.Distance, 1e-6)

	basis, _ := s.LocalBasis(ray, h)
	hitPoint := ray.At(h.Distance)
	expectedNormal := hitPoint.Sub(center).Normalized()
	assert.InDelta(t, expectedNormal.X, basis.K.X, 1e-6)
	assert.InDelta(t, expectedNormal.Y, basis.K.Y, 1e-6)
	assert.InDelta(t, expectedNormal.Z, basis.K.Z, 1e-6)
}

func TestTriangleIntersectionInteriorPoint(t *testing.T) {
	a := Vertex{Position: geom.Vec3{X: 0, Y: 0, Z: 0}, Normal: geom.Vec3{X: 0, Y: 0, Z: 1}}
	b := Vertex{Position: geom.Vec3{X: 2, Y: 0, Z: 0}, Normal: geom.Vec3{X: 0, Y: 0, Z: 1}}
	c := Vertex{Position: geom.Vec3{X: 0, Y: 2, Z: 0}, Normal: geom.Vec3{X: 0, Y: 0, Z: 1}}
	tri := NewTriangle(a, b, c, false)

	p := geom.Vec3{X: 0.4, Y: 0.4, Z: 0} // strictly inside the hull
	d := 3.0
	normal := geom.Vec3{X: 0, Y: 0, Z: 1}
	rayOrigin := p.Add(normal.Scale(d))
	ray := geom.Ray{Origin: rayOrigin, Dir: normal.Neg()}

	h, ok := tri.Intersect(ray)
	assert.True(t, ok)
	assert.InDelta(t, d, h.Distance, 1e-6)
}

func TestTriangleMiss(t *testing.T) {
	a := Vertex{Position: geom.Vec3{X: 0, Y: 0, Z: 0}}
	b := Vertex{Position: geom.Vec3{X: 1, Y: 0, Z: 0}}
	c := Vertex{Position: geom.Vec3{X: 0, Y: 1, Z: 0}}
	tri := NewTriangle(a, b, c, false)

	ray := geom.Ray{Origin: geom.Vec3{X: 5, Y: 5, Z: -1}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
	_, ok := tri.Intersect(ray)
	assert.False(t, ok)
}

func TestAffineTranslateRoundTrip(t *testing.T) {
	base := Sphere{Center: geom.Vec3{}, Radius: 1}
	moved := Translate(base, geom.Vec3{X: 5, Y: 0, Z: 0})

	ray := geom.Ray{Origin: geom.Vec3{X: 5, Y: 0, Z: -10}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
	h, ok := moved.Intersect(ray)
	assert.True(t, ok)
	assert.InDelta(t, 9, h.Distance, 1e-6)

	basis, _ := moved.LocalBasis(ray, h)
	assert.InDelta(t, 0, basis.K.X, 1e-6)
	assert.InDelta(t, 0, basis.K.Y, 1e-6)
	assert.InDelta(t, -1, basis.K.Z, 1e-6)
}

func TestMeshIntersectFindsNearest(t *testing.T) {
	near := NewTriangle(
		Vertex{Position: geom.Vec3{X: -1, Y: -1, Z: 2}},
		Vertex{Position: geom.Vec3{X: 1, Y: -1, Z: 2}},
		Vertex{Position: geom.Vec3{X: 0, Y: 1, Z: 2}},
		false,
	)
	far := NewTriangle(
		Vertex{Position: geom.Vec3{X: -1, Y: -1, Z: 5}},
		Vertex{Position: geom.Vec3{X: 1, Y: -1, Z: 5}},
		Vertex{Position: geom.Vec3{X: 0, Y: 1, Z: 5}},
		false,
	)
	mesh := NewMesh([]Triangle{far, near})

	ray := geom.Ray{Origin: geom.Vec3{X: 0, Y: -0.5, Z: 0}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
	h, ok := mesh.Intersect(ray)
	assert.True(t, ok)
	assert.InDelta(t, 2, h.Distance, 1e-6)
}

func TestNullShapeNeverHits(t *testing.T) {
	n := Null{}
	ray := geom.Ray{Origin: geom.Vec3{}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
	_, ok := n.Intersect(ray)
	assert.False(t, ok)
}

func TestSphereParameterizationBounds(t *testing.T) {
	s := Sphere{Center: geom.Vec3{}, Radius: 1}
	ray := geom.Ray{Origin: geom.Vec3{X: 0, Y: 0, Z: -5}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
	h, ok := s.Intersect(ray)
	assert.True(t, ok)
	_, uv := s.LocalBasis(ray, h)
	assert.True(t, uv.U >= 0 && uv.U <= 1)
	assert.True(t, uv.V >= 0 && uv.V <= 1)
}
