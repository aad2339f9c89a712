package shape

import "github.com/thomasrubini/specrender/internal/geom"

// Null is a degenerate shape with no surface, used by non-areal light
// sources (point, directional) that still need to satisfy the Source's
// "owns a shape" field.
type Null struct{}

func (Null) Intersect(ray geom.Ray) (Hit, bool) { return Hit{}, false }

func (Null) LocalBasis(ray geom.Ray, h Hit) (geom.Basis, geom.Vec2) {
	return geom.BasisFromNormal(ray.Origin, geom.Vec3{X: 0, Y: 0, Z: 1}), geom.Vec2{}
}

func (Null) Bounds() geom.BoundingBox {
	return geom.BoundingBox{Min: geom.Vec3{}, Max: geom.Vec3{}}
}
