package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/material"
	"github.com/thomasrubini/specrender/internal/shape"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

func buildTwoSphereScene(t *testing.T) *Scenery {
	g, err := spectrum.NewGrid([]float64{450, 550, 650})
	require.NoError(t, err)
	albedo, err := spectrum.FromValues(g, []float64{0.5, 0.5, 0.5})
	require.NoError(t, err)
	lamb := material.NewLambertianBRDF(albedo)

	near := Object{Shape: shape.Sphere{Center: geom.Vec3{X: 0, Y: 0, Z: 5}, Radius: 1}, Material: lamb}
	far := Object{Shape: shape.Sphere{Center: geom.Vec3{X: 0, Y: 0, Z: 10}, Radius: 1}, Material: lamb}
	return New([]Object{near, far}, nil, 1e-4)
}

func TestNearestObjectPicksCloserSphere(t *testing.T) {
	sc := buildTwoSphereScene(t)
	ray := geom.Ray{Origin: geom.Vec3{}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}

	hit, ok := sc.NearestObject(ray, -1)
	require.True(t, ok)
	assert.Equal(t, 0, hit.ObjectIndex)
	assert.InDelta(t, 4, hit.Shape.Distance, 1e-6)
}

func TestNearestObjectExcludingSkipsThatObject(t *testing.T) {
	sc := buildTwoSphereScene(t)
	ray := geom.Ray{Origin: geom.Vec3{}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}

	hit, ok := sc.NearestObject(ray, 0)
	require.True(t, ok)
	assert.Equal(t, 1, hit.ObjectIndex)
}

func TestVisibleFalseWhenOccluded(t *testing.T) {
	sc := buildTwoSphereScene(t)
	ray := geom.Ray{Origin: geom.Vec3{}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}

	assert.False(t, sc.Visible(ray, 20, -1))
	assert.True(t, sc.Visible(ray, 2, -1))
}
