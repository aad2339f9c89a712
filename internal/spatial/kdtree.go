package spatial

import (
	"math/bits"
	"sort"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
)

// PhotonTree is a flat-array balanced KD-tree over stored photons, keyed
// on position, supporting radius-bounded k-NN gather queries. The
// flat-array implicit-children layout maps cleanly to a contiguous
// memory layout for locality on gather.
type PhotonTree struct {
	nodes []kdNode
}

type kdNode struct {
	photon light.Photon
	axis   int8
}

// BuildPhotonTree builds a balanced KD-tree over photons. The input
// slice is not mutated; an internal working copy is sorted in place.
func BuildPhotonTree(photons []light.Photon) *PhotonTree {
	work := make([]light.Photon, len(photons))
	copy(work, photons)
	t := &PhotonTree{nodes: make([]kdNode, len(work))}
	if len(work) > 0 {
		t.build(work, 0, len(work), 0)
	}
	return t
}

// build lays out work[lo:hi] into the implicit-heap range starting at
// treeIdx, choosing the split axis by depth (cycling X,Y,Z) and the
// left-balanced median element as the node so traversal can prune both
// subtrees.
func (t *PhotonTree) build(work []light.Photon, lo, hi int, treeIdx int) {
	if lo >= hi || treeIdx >= len(t.nodes) {
		return
	}
	axis := depthAxis(treeIdx)
	sub := work[lo:hi]
	sort.Slice(sub, func(i, j int) bool {
		return axisValue(sub[i].Position, axis) < axisValue(sub[j].Position, axis)
	})
	// The left subtree gets as many nodes as in a complete binary tree of
	// hi-lo nodes, so the implicit 2i+1/2i+2 layout fills slots
	// 0..len-1 with every photon and leaves no gaps.
	left := 0
	if h := bits.Len(uint(hi-lo)) - 1; h > 0 {
		half := 1 << (h - 1)
		last := hi - lo - (1<<h - 1)
		if last > half {
			last = half
		}
		left = half - 1 + last
	}
	mid := lo + left
	t.nodes[treeIdx] = kdNode{photon: work[mid], axis: int8(axis)}
	t.build(work, lo, mid, 2*treeIdx+1)
	t.build(work, mid+1, hi, 2*treeIdx+2)
}

func depthAxis(treeIdx int) int {
	depth := 0
	for i := treeIdx; i > 0; i = (i - 1) / 2 {
		depth++
	}
	return depth % 3
}

func axisValue(p geom.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// gatherResult is one photon found within the search radius, with its
// squared distance to the query point (for the bounded priority queue).
type gatherResult struct {
	photon  light.Photon
	distSq  float64
}

// Gather returns up to maxCount photons within radius of center, nearest
// first, via a bounded priority-queue k-NN search.
func (t *PhotonTree) Gather(center geom.Vec3, radius float64, maxCount int) []light.Photon {
	if len(t.nodes) == 0 {
		return nil
	}
	radiusSq := radius * radius
	var heap []gatherResult
	t.gatherNode(0, center, radiusSq, maxCount, &heap)

	sort.Slice(heap, func(i, j int) bool { return heap[i].distSq < heap[j].distSq })
	if maxCount > 0 && len(heap) > maxCount {
		heap = heap[:maxCount]
	}
	out := make([]light.Photon, len(heap))
	for i, r := range heap {
		out[i] = r.photon
	}
	return out
}

func (t *PhotonTree) gatherNode(idx int, center geom.Vec3, radiusSq float64, maxCount int, heap *[]gatherResult) {
	if idx >= len(t.nodes) {
		return
	}
	n := &t.nodes[idx]
	d := n.photon.Position.Sub(center)
	distSq := d.LenSq()
	if distSq <= radiusSq {
		insertBounded(heap, gatherResult{photon: n.photon, distSq: distSq}, maxCount)
	}

	axis := int(n.axis)
	delta := axisValue(center, axis) - axisValue(n.photon.Position, axis)
	near, far := 2*idx+1, 2*idx+2
	if delta > 0 {
		near, far = far, near
	}
	t.gatherNode(near, center, radiusSq, maxCount, heap)
	if delta*delta <= radiusSq {
		t.gatherNode(far, center, radiusSq, maxCount, heap)
	}
}

// insertBounded appends r to heap. When maxCount > 0 and heap grows past
// 4*maxCount entries, it sorts heap by ascending distSq and trims it to
// the nearest maxCount (<=0 means unbounded); Gather does the final sort
// and trim.
func insertBounded(heap *[]gatherResult, r gatherResult, maxCount int) {
	*heap = append(*heap, r)
	if maxCount > 0 && len(*heap) > maxCount*4 {
		// Amortized trim: avoid growing unboundedly between full sorts in
		// very dense photon clusters.
		sort.Slice(*heap, func(i, j int) bool { return (*heap)[i].distSq < (*heap)[j].distSq })
		*heap = (*heap)[:maxCount]
	}
}

// Len returns the number of photons stored in the tree.
func (t *PhotonTree) Len() int { return len(t.nodes) }

// Photons returns every stored photon, in no particular order. Used to
// serialize a photon map for --save-init/--load-init; the returned
// slice is a defensive copy.
func (t *PhotonTree) Photons() []light.Photon {
	out := make([]light.Photon, len(t.nodes))
	for i, node := range t.nodes {
		out[i] = node.photon
	}
	return out
}
