package shape

import "github.com/thomasrubini/specrender/internal/geom"

// Affine wraps a child Shape with a geom.Transform, letting scene
// authors place a canonical shape (e.g. a unit sphere) anywhere via
// Translate/Rotate/Scale composition. The incoming ray is brought into
// the child's local space, and the resulting hit distance/basis are
// brought back into world space.
type Affine struct {
	Child     Shape
	Transform geom.Transform
}

// Translate wraps child with a pure translation.
func Translate(child Shape, d geom.Vec3) Affine {
	return Affine{Child: child, Transform: geom.Translate(d)}
}

// Rotate wraps child with a rotation of angle radians about axis.
func Rotate(child Shape, axis geom.Vec3, angle float64) Affine {
	return Affine{Child: child, Transform: geom.RotateAxis(axis, angle)}
}

// Scale wraps child with a non-uniform scale.
func Scale(child Shape, s geom.Vec3) Affine {
	return Affine{Child: child, Transform: geom.Scale3(s)}
}

func (a Affine) Intersect(ray geom.Ray) (Hit, bool) {
	localRay := a.Transform.InverseRay(ray)
	dirLen := localRay.Dir.Len()
	localRay.Dir = localRay.Dir.Normalized()
	h, ok := a.Child.Intersect(localRay)
	if !ok {
		return Hit{}, false
	}
	// The child's Intersect measured distance along its (possibly
	// rescaled) unit direction; convert back to world-space units.
	return Hit{Distance: h.Distance / dirLen, sub: h.sub}, true
}

func (a Affine) LocalBasis(ray geom.Ray, h Hit) (geom.Basis, geom.Vec2) {
	localRay := a.Transform.InverseRay(ray)
	dirLen := localRay.Dir.Len()
	localRay.Dir = localRay.Dir.Normalized()
	childHit := Hit{Distance: h.Distance * dirLen, sub: h.sub}
	basis, uv := a.Child.LocalBasis(localRay, childHit)

	return geom.Basis{
		O: a.Transform.Point(basis.O),
		I: a.Transform.Vector(basis.I).Normalized(),
		J: a.Transform.Vector(basis.J).Normalized(),
		K: a.Transform.Normal(basis.K),
	}, uv
}

func (a Affine) Bounds() geom.BoundingBox {
	b := a.Child.Bounds()
	out := geom.EmptyBox()
	corners := []geom.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}, {X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z}, {X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z}, {X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z}, {X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
	for _, c := range corners {
		out = out.GrowPoint(a.Transform.Point(c))
	}
	return out
}
