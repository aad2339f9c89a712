package shape

import "github.com/thomasrubini/specrender/internal/geom"

// NormalSampler resolves a tangent-space normal perturbation at a UV
// coordinate; texture.Texture implements this without shape needing to
// import the texture package (avoiding a cycle, since material imports
// both).
type NormalSampler interface {
	NormalAt(u, v float64) geom.Vec3
}

// NormalMap wraps a child Shape, perturbing its surface basis by a
// tangent-space normal looked up from Sampler at the hit UV.
type NormalMap struct {
	Child   Shape
	Sampler NormalSampler
}

func (n NormalMap) Intersect(ray geom.Ray) (Hit, bool) { return n.Child.Intersect(ray) }

func (n NormalMap) LocalBasis(ray geom.Ray, h Hit) (geom.Basis, geom.Vec2) {
	basis, uv := n.Child.LocalBasis(ray, h)
	tangentSpaceNormal := n.Sampler.NormalAt(uv.U, uv.V)
	worldNormal := basis.ToWorld(tangentSpaceNormal).Normalized()
	return geom.BasisFromNormal(basis.O, worldNormal), uv
}

func (n NormalMap) Bounds() geom.BoundingBox { return n.Child.Bounds() }
