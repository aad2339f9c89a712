// Package spatial implements the bounded Octree<Payload> spatial index
// used over scene objects, over light sources, and internally by meshes
// over their triangles, plus the photon-map KD-tree used by the
// two-pass photon-mapping renderer. Accept hands the ray and each
// candidate leaf's payloads to a caller-supplied Visitor rather than
// ranking hits itself, so callers can apply their own nearest-hit or
// any-hit policy.
package spatial

import (
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
)

const maxElementsPerLeaf = 8

// Entry pairs a payload with the bounding box it occupies.
type Entry[P any] struct {
	Box     geom.BoundingBox
	Payload P
}

// Visitor is invoked once per payload whose containing leaf a ray
// enters, during Accept. It does not rank hits itself — ranking (e.g.
// "closest so far") is the visitor's own responsibility. The borrow is
// only valid for the duration of a single Accept call.
type Visitor[P any] interface {
	Apply(ray geom.Ray, payload P)
}

// VisitorFunc adapts a plain function to the Visitor interface.
type VisitorFunc[P any] func(ray geom.Ray, payload P)

func (f VisitorFunc[P]) Apply(ray geom.Ray, payload P) { f(ray, payload) }

// Octree is a bounded spatial index parameterized by payload type.
type Octree[P any] struct {
	root    *node[P]
	bound   geom.BoundingBox
	pending []Entry[P]
}

type node[P any] struct {
	bound    geom.BoundingBox
	entries  []Entry[P]
	children [8]*node[P]
	leaf     bool
}

// New builds an Octree over bound containing no entries; call Insert to
// populate it and Rebuild to finalize the subdivision once all entries
// are known.
func New[P any](bound geom.BoundingBox) *Octree[P] {
	return &Octree[P]{bound: bound}
}

// Build constructs a balanced octree over the given entries. Depth is
// chosen as roughly log10(element count).
func Build[P any](bound geom.BoundingBox, entries []Entry[P]) *Octree[P] {
	depth := 1
	if n := len(entries); n > 10 {
		depth = int(math.Log10(float64(n))) + 1
	}
	root := buildNode(bound, entries, depth)
	return &Octree[P]{root: root, bound: bound}
}

func buildNode[P any](bound geom.BoundingBox, entries []Entry[P], depthRemaining int) *node[P] {
	n := &node[P]{bound: bound}
	if depthRemaining <= 0 || len(entries) <= maxElementsPerLeaf {
		n.leaf = true
		n.entries = entries
		return n
	}
	center := bound.Center()
	var buckets [8][]Entry[P]
	for _, e := range entries {
		idx := octantOf(center, e.Box.Center())
		buckets[idx] = append(buckets[idx], e)
	}
	anyChild := false
	for i := 0; i < 8; i++ {
		if len(buckets[i]) == 0 {
			continue
		}
		if len(buckets[i]) == len(entries) {
			// Subdivision didn't separate anything further; stop to avoid
			// infinite recursion on coincident bounding boxes.
			n.leaf = true
			n.entries = entries
			return n
		}
		anyChild = true
		// Grow the octant to cover its entries' whole boxes, so an entry
		// straddling the split is still reached by every ray crossing it.
		childBound := octantBox(bound, center, i)
		for _, e := range buckets[i] {
			childBound = childBound.Grow(e.Box)
		}
		n.children[i] = buildNode(childBound, buckets[i], depthRemaining-1)
	}
	if !anyChild {
		n.leaf = true
		n.entries = entries
	}
	return n
}

func octantOf(center, p geom.Vec3) int {
	idx := 0
	if p.X >= center.X {
		idx |= 1
	}
	if p.Y >= center.Y {
		idx |= 2
	}
	if p.Z >= center.Z {
		idx |= 4
	}
	return idx
}

func octantBox(bound geom.BoundingBox, center geom.Vec3, idx int) geom.BoundingBox {
	min, max := bound.Min, bound.Max
	lo, hi := geom.Vec3{}, geom.Vec3{}
	if idx&1 != 0 {
		lo.X, hi.X = center.X, max.X
	} else {
		lo.X, hi.X = min.X, center.X
	}
	if idx&2 != 0 {
		lo.Y, hi.Y = center.Y, max.Y
	} else {
		lo.Y, hi.Y = min.Y, center.Y
	}
	if idx&4 != 0 {
		lo.Z, hi.Z = center.Z, max.Z
	} else {
		lo.Z, hi.Z = min.Z, center.Z
	}
	return geom.BoundingBox{Min: lo, Max: hi}
}

// Insert adds a payload with its bounding box to the tree, appending to
// an internal staging list; call Rebuild to (re)subdivide after a batch
// of inserts. This supports an "insert many, build once" scene-build
// lifecycle.
func (o *Octree[P]) Insert(payload P, box geom.BoundingBox) {
	o.pending = append(o.pending, Entry[P]{Box: box, Payload: payload})
}

// Rebuild finalizes the octree over every entry added via Insert since
// the tree (or its last Rebuild) was created.
func (o *Octree[P]) Rebuild() {
	o.root = buildNode(o.bound, o.pending, depthFor(len(o.pending)))
}

func depthFor(n int) int {
	if n <= 10 {
		return 1
	}
	return int(math.Log10(float64(n))) + 1
}

// Accept traverses the tree along ray, invoking visitor.Apply once for
// every payload whose containing leaf the ray enters. Leaves whose
// bounding box the ray misses are skipped entirely; every leaf whose box
// the ray could plausibly cross is still visited, so no candidate is
// ever missed.
func (o *Octree[P]) Accept(ray geom.Ray, visitor Visitor[P]) {
	if o.root == nil {
		return
	}
	acceptNode(o.root, ray, visitor)
}

func acceptNode[P any](n *node[P], ray geom.Ray, visitor Visitor[P]) {
	if !n.bound.Hit(ray, -math.MaxFloat64, math.MaxFloat64) {
		return
	}
	if n.leaf {
		for _, e := range n.entries {
			visitor.Apply(ray, e.Payload)
		}
		return
	}
	for _, c := range n.children {
		if c != nil {
			acceptNode(c, ray, visitor)
		}
	}
}
