package renderer

import (
	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/scene"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// TestRenderer is a cheap debug pass: it paints every ray that hits
// scene geometry flat white and leaves everything else black, so a
// render can be smoke-tested without paying for any material
// evaluation or shadow rays at all.
type TestRenderer struct{}

func (TestRenderer) TraceRay(sc *scene.Scenery, ray geom.Ray, grid *spectrum.Grid, n int, depth int, excluding int) light.Vector {
	hit, ok := sc.NearestObject(ray, excluding)
	lv := light.NewVector(ray, n)
	if !ok {
		return lv
	}
	lv.Distance = hit.Shape.Distance
	for i := range lv.Samples {
		lv.Samples[i].Radiance = 1
	}
	return lv
}
