// Package shape implements the geometric primitives a scene is built
// from: sphere, triangle, triangle mesh, a degenerate null shape for
// non-areal sources, affine wrappers (translate/rotate/scale) and a
// normal-map wrapper. Intersect returns a Hit (distance plus shape-local
// identity), and LocalBasis turns that Hit into a geom.Basis+UV at the
// hit point, so materials can shade directly from the result.
package shape

import "github.com/thomasrubini/specrender/internal/geom"

// Hit is the opaque result of a successful Intersect call: the ray
// parameter plus whatever shape-local identity (e.g. which mesh
// triangle) LocalBasis needs. Threading this through explicitly (rather
// than caching "the last hit" on the Shape) keeps every Shape safely
// shared read-only across concurrently rendering workers.
type Hit struct {
	Distance float64
	sub      int // shape-local sub-index, e.g. a mesh's triangle index
}

// Shape is the capability every geometric primitive and wrapper
// implements: ray intersection and the local surface basis/UV at a hit.
type Shape interface {
	// Intersect returns the nearest intersection ahead of the ray origin,
	// or ok=false if there is none.
	Intersect(ray geom.Ray) (hit Hit, ok bool)
	// LocalBasis returns the oriented surface frame and UV coordinate at
	// a Hit produced by a prior Intersect call on the same Shape value.
	LocalBasis(ray geom.Ray, hit Hit) (basis geom.Basis, uv geom.Vec2)
	// Bounds returns the shape's axis-aligned bounding box, used to place
	// it into a spatial.Octree.
	Bounds() geom.BoundingBox
}
