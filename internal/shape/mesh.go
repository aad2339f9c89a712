package shape

import (
	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/spatial"
)

// Mesh embeds a private octree over its triangles and implements
// Intersect/LocalBasis by running the same visitor pattern the scene
// uses over objects/sources. Mesh is immutable after
// NewMesh and safe to share read-only across concurrently rendering
// workers: which triangle won a given Intersect call is carried in the
// returned Hit's sub-index rather than stored on the Mesh.
type Mesh struct {
	triangles []Triangle
	tree      *spatial.Octree[int]
	bounds    geom.BoundingBox
}

// NewMesh builds the mesh's private octree over its triangles.
func NewMesh(triangles []Triangle) *Mesh {
	bounds := geom.EmptyBox()
	entries := make([]spatial.Entry[int], len(triangles))
	for i, tri := range triangles {
		bounds = bounds.Grow(tri.Bounds())
		entries[i] = spatial.Entry[int]{Box: tri.Bounds(), Payload: i}
	}
	return &Mesh{
		triangles: triangles,
		tree:      spatial.Build(bounds, entries),
		bounds:    bounds,
	}
}

type meshHitVisitor struct {
	mesh     *Mesh
	bestDist float64
	bestTri  int
	hit      bool
}

func (v *meshHitVisitor) Apply(ray geom.Ray, triIdx int) {
	h, ok := v.mesh.triangles[triIdx].Intersect(ray)
	if ok && h.Distance > 0 && (!v.hit || h.Distance < v.bestDist) {
		v.bestDist = h.Distance
		v.bestTri = triIdx
		v.hit = true
	}
}

// Intersect finds the nearest triangle hit via the mesh's private
// octree, stashing the winning triangle's index in the returned Hit.
func (m *Mesh) Intersect(ray geom.Ray) (Hit, bool) {
	v := &meshHitVisitor{mesh: m}
	m.tree.Accept(ray, v)
	if !v.hit {
		return Hit{}, false
	}
	return Hit{Distance: v.bestDist, sub: v.bestTri}, true
}

// LocalBasis delegates to the triangle identified by h.
func (m *Mesh) LocalBasis(ray geom.Ray, h Hit) (geom.Basis, geom.Vec2) {
	return m.triangles[h.sub].LocalBasis(ray, h)
}

// Bounds returns the mesh's overall bounding box.
func (m *Mesh) Bounds() geom.BoundingBox { return m.bounds }
