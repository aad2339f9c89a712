// Package scene implements the Scenery aggregate: an arena of Objects
// (shape+material+surrounding media) and Sources, plus the
// nearest-object/nearest-source intersection protocol backed by a global
// spatial.Octree. Objects are referred to by integer index, never by
// pointer, so the scene can be copied/shared read-only across workers.
package scene

import (
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/material"
	"github.com/thomasrubini/specrender/internal/medium"
	"github.com/thomasrubini/specrender/internal/shape"
	"github.com/thomasrubini/specrender/internal/source"
	"github.com/thomasrubini/specrender/internal/spatial"
)

// Object is one piece of scene geometry: a Shape, the BSDF governing its
// surface, and the media on either side of that surface (Inner is used
// when a ray continues after refracting through the shape).
type Object struct {
	Shape    shape.Shape
	Material material.BSDF
	Outer    medium.Medium
	Inner    medium.Medium
}

// Hit is the result of a successful nearest_object query: which object
// was struck, the shape-local Hit token, and the resulting world Basis.
type Hit struct {
	ObjectIndex int
	Shape       shape.Hit
	Basis       geom.Basis
	UV          geom.Vec2
}

// Scenery is the frozen, read-only-after-build aggregate every renderer
// worker shares. No method on Scenery mutates it once New returns.
type Scenery struct {
	objects []Object
	sources []source.Source
	index   *spatial.Octree[int]
	bias    float64
}

// New builds a Scenery from the given objects and sources, indexing
// objects into a global octree over their world-space bounds. bias is
// the epsilon every subsequent NearestObject query ignores hits closer
// than, the fix for shadow-acne/self-intersection at every primitive,
// independent of which object (if any) is excluded per-call — see
// DESIGN.md's Open Question #1.
func New(objects []Object, sources []source.Source, bias float64) *Scenery {
	entries := make([]spatial.Entry[int], 0, len(objects))
	bound := geom.EmptyBox()
	for i, o := range objects {
		b := o.Shape.Bounds()
		entries = append(entries, spatial.Entry[int]{Box: b, Payload: i})
		bound = bound.Grow(b)
	}
	return &Scenery{
		objects: objects,
		sources: sources,
		index:   spatial.Build(bound, entries),
		bias:    bias,
	}
}

// Object returns the object at idx.
func (s *Scenery) Object(idx int) Object { return s.objects[idx] }

// Sources returns every light source in the scene.
func (s *Scenery) Sources() []source.Source { return s.sources }

// nearestVisitor accumulates the closest in-bound hit seen so far,
// skipping the excluded object identity and anything nearer than bias.
type nearestVisitor struct {
	objects     []Object
	excluding   int
	bias        float64
	bestDist    float64
	bestObj     int
	bestHit     shape.Hit
	found       bool
}

func (v *nearestVisitor) Apply(ray geom.Ray, objIdx int) {
	if objIdx == v.excluding {
		return
	}
	h, ok := v.objects[objIdx].Shape.Intersect(ray)
	if !ok || h.Distance < v.bias {
		return
	}
	if !v.found || h.Distance < v.bestDist {
		v.found = true
		v.bestDist = h.Distance
		v.bestObj = objIdx
		v.bestHit = h
	}
}

// NearestObject returns the closest object ray intersects beyond bias,
// excluding the object at index excluding (pass -1 to exclude none).
func (s *Scenery) NearestObject(ray geom.Ray, excluding int) (Hit, bool) {
	v := &nearestVisitor{objects: s.objects, excluding: excluding, bias: s.bias, bestDist: math.MaxFloat64}
	s.index.Accept(ray, v)
	if !v.found {
		return Hit{}, false
	}
	basis, uv := s.objects[v.bestObj].Shape.LocalBasis(ray, v.bestHit)
	return Hit{ObjectIndex: v.bestObj, Shape: v.bestHit, Basis: basis, UV: uv}, true
}

// Visible reports whether no object obstructs the segment from ray's
// origin to distance maxDist along ray.Dir (the shadow-ray test),
// excluding the object at index excluding.
func (s *Scenery) Visible(ray geom.Ray, maxDist float64, excluding int) bool {
	v := &nearestVisitor{objects: s.objects, excluding: excluding, bias: s.bias, bestDist: math.MaxFloat64}
	s.index.Accept(ray, v)
	return !v.found || v.bestDist >= maxDist
}

// NearestSource returns the index into positions of the position nearest
// point, by straight-line distance (sources are typically few compared
// to objects, so a linear scan over positions needs no octree).
func (s *Scenery) NearestSource(point geom.Vec3, positions []geom.Vec3) (int, bool) {
	best := -1
	bestDist := math.MaxFloat64
	for i, p := range positions {
		d := p.Sub(point).Len()
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best, best >= 0
}

// NearestSourceHit returns the nearest area source ray strikes directly,
// for sources whose geometry implements source.Hittable. Point and
// directional sources have no extent and never participate.
func (s *Scenery) NearestSourceHit(ray geom.Ray) (source.Source, float64, bool) {
	bestDist := math.MaxFloat64
	var best source.Source
	found := false
	for _, src := range s.sources {
		h, ok := src.(source.Hittable)
		if !ok {
			continue
		}
		d, ok := h.Intersect(ray)
		if !ok || d < 1e-6 {
			continue
		}
		if !found || d < bestDist {
			found = true
			bestDist = d
			best = src
		}
	}
	return best, bestDist, found
}
