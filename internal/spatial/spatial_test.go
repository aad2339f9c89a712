package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
)

func TestOctreeNoFalseNegatives(t *testing.T) {
	bound := geom.BoundingBox{Min: geom.Vec3{X: -10, Y: -10, Z: -10}, Max: geom.Vec3{X: 10, Y: 10, Z: 10}}
	type id int
	var entries []Entry[id]
	for i := 0; i < 50; i++ {
		c := geom.Vec3{X: float64(i%5) - 2, Y: float64(i%3) - 1, Z: float64(i) - 25}
		box := geom.BoundingBox{Min: c.Sub(geom.Vec3{X: 0.1, Y: 0.1, Z: 0.1}), Max: c.Add(geom.Vec3{X: 0.1, Y: 0.1, Z: 0.1})}
		entries = append(entries, Entry[id]{Box: box, Payload: id(i)})
	}
	tree := Build(bound, entries)

	target := entries[17]
	center := target.Box.Center()
	ray := geom.Ray{Origin: geom.Vec3{X: center.X, Y: center.Y, Z: -100}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}

	visited := map[id]bool{}
	tree.Accept(ray, VisitorFunc[id](func(r geom.Ray, p id) { visited[p] = true }))

	assert.True(t, visited[target.Payload], "octree must visit the primitive the ray demonstrably hits")
}

func TestPhotonTreeGatherWithinRadius(t *testing.T) {
	var photons []light.Photon
	for i := 0; i < 20; i++ {
		p := light.NewPhoton(1)
		p.Position = geom.Vec3{X: float64(i), Y: 0, Z: 0}
		p.Radiances[0] = 1
		photons = append(photons, p)
	}
	tree := BuildPhotonTree(photons)

	found := tree.Gather(geom.Vec3{X: 10, Y: 0, Z: 0}, 2.5, 0)
	for _, p := range found {
		assert.LessOrEqual(t, p.Position.Sub(geom.Vec3{X: 10}).Len(), 2.5)
	}
	assert.NotEmpty(t, found)
}

func TestPhotonTreeGatherMaxCount(t *testing.T) {
	var photons []light.Photon
	for i := 0; i < 20; i++ {
		p := light.NewPhoton(1)
		p.Position = geom.Vec3{X: float64(i) * 0.01, Y: 0, Z: 0}
		photons = append(photons, p)
	}
	tree := BuildPhotonTree(photons)
	found := tree.Gather(geom.Vec3{}, 10, 5)
	assert.Len(t, found, 5)
}
