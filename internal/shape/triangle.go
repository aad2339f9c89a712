package shape

import (
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
)

// Vertex is a triangle corner with its own normal and UV, enabling
// smooth (Phong) shading via barycentric interpolation.
type Vertex struct {
	Position geom.Vec3
	Normal   geom.Vec3
	UV       geom.Vec2
}

// Triangle is a single triangle with precomputed bounds, optionally
// double-sided (flips its normal toward the ray origin at the hit). A
// single-sided triangle keeps its interpolated normal; neither kind
// culls back-faces.
type Triangle struct {
	A, B, C    Vertex
	DoubleSided bool

	bounds geom.BoundingBox
}

// NewTriangle precomputes the triangle's bounding box.
func NewTriangle(a, b, c Vertex, doubleSided bool) Triangle {
	bounds := geom.EmptyBox().GrowPoint(a.Position).GrowPoint(b.Position).GrowPoint(c.Position)
	return Triangle{A: a, B: b, C: c, DoubleSided: doubleSided, bounds: bounds}
}

// Intersect tests the precomputed AABB first, then solves the
// plane-ray intersection followed by three edge cross-product sign
// tests.
func (t Triangle) Intersect(ray geom.Ray) (Hit, bool) {
	if !t.bounds.Hit(ray, 1e-9, math.MaxFloat64) {
		return Hit{}, false
	}
	e1 := t.B.Position.Sub(t.A.Position)
	e2 := t.C.Position.Sub(t.A.Position)
	planeNormal := e1.Cross(e2)
	denom := planeNormal.Dot(ray.Dir)
	if math.Abs(denom) < 1e-12 {
		return Hit{}, false
	}
	dist := planeNormal.Dot(t.A.Position.Sub(ray.Origin)) / denom
	if dist <= 1e-9 {
		return Hit{}, false
	}
	p := ray.At(dist)

	if !sameSide(t.A.Position, t.B.Position, t.C.Position, p, planeNormal) {
		return Hit{}, false
	}
	if !sameSide(t.B.Position, t.C.Position, t.A.Position, p, planeNormal) {
		return Hit{}, false
	}
	if !sameSide(t.C.Position, t.A.Position, t.B.Position, p, planeNormal) {
		return Hit{}, false
	}
	return Hit{Distance: dist}, true
}

// sameSide checks whether p is on the interior side of edge (e0,e1),
// relative to the opposite vertex eOpp, using a cross-product sign test.
func sameSide(e0, e1, eOpp, p, planeNormal geom.Vec3) bool {
	edge := e1.Sub(e0)
	toP := p.Sub(e0)
	toOpp := eOpp.Sub(e0)
	crossP := edge.Cross(toP)
	crossOpp := edge.Cross(toOpp)
	return crossP.Dot(planeNormal)*crossOpp.Dot(planeNormal) >= 0
}

// barycentric returns the barycentric weights of p within the triangle.
func (t Triangle) barycentric(p geom.Vec3) (wA, wB, wC float64) {
	v0 := t.B.Position.Sub(t.A.Position)
	v1 := t.C.Position.Sub(t.A.Position)
	v2 := p.Sub(t.A.Position)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 1, 0, 0
	}
	wB = (d11*d20 - d01*d21) / denom
	wC = (d00*d21 - d01*d20) / denom
	wA = 1 - wB - wC
	return wA, wB, wC
}

// LocalBasis interpolates per-vertex normals and UV by the computed
// barycentric weights; a double-sided triangle flips its normal toward
// the ray origin before returning.
func (t Triangle) LocalBasis(ray geom.Ray, h Hit) (geom.Basis, geom.Vec2) {
	hit := ray.At(h.Distance)
	wA, wB, wC := t.barycentric(hit)

	normal := t.A.Normal.Scale(wA).Add(t.B.Normal.Scale(wB)).Add(t.C.Normal.Scale(wC)).Normalized()
	uv := geom.Vec2{
		U: t.A.UV.U*wA + t.B.UV.U*wB + t.C.UV.U*wC,
		V: t.A.UV.V*wA + t.B.UV.V*wB + t.C.UV.V*wC,
	}

	basis := geom.BasisFromNormal(hit, normal)
	if t.DoubleSided && normal.Dot(ray.Dir) > 0 {
		basis = basis.FlipNormal()
	}
	return basis, uv
}

// Bounds returns the triangle's precomputed bounding box.
func (t Triangle) Bounds() geom.BoundingBox { return t.bounds }
