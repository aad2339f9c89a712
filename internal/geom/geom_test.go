package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Algebra(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	assert.Equal(t, Vec3{5, 7, 9}, a.Add(b))
	assert.InDelta(t, 32, a.Dot(b), 1e-9)
	assert.InDelta(t, 1, a.Normalized().Len(), 1e-9)
}

func TestBoundingBoxSlabTest(t *testing.T) {
	box := BoundingBox{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	r := Ray{Origin: Vec3{0, 0, -5}, Dir: Vec3{0, 0, 1}}
	assert.True(t, box.Hit(r, 0, math.Inf(1)))

	miss := Ray{Origin: Vec3{5, 5, -5}, Dir: Vec3{0, 0, 1}}
	assert.False(t, miss.Origin.Sub(Vec3{}).LenSq() == 0)
	assert.False(t, box.Hit(miss, 0, math.Inf(1)))
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Compose(Scale3(Vec3{2, 2, 2}), Translate(Vec3{1, 0, 0}))
	p := Vec3{3, 4, 5}
	world := tr.Point(p)
	back := tr.InversePoint(world)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
	assert.InDelta(t, p.Z, back.Z, 1e-9)
}

func TestRotateAxisPreservesLength(t *testing.T) {
	tr := RotateAxis(Vec3{0, 1, 0}, math.Pi/3)
	v := Vec3{1, 0, 0}
	rv := tr.Vector(v)
	assert.InDelta(t, v.Len(), rv.Len(), 1e-9)
}

func TestBasisFromNormalOrthonormal(t *testing.T) {
	b := BasisFromNormal(Vec3{}, Vec3{0, 0, 1})
	assert.InDelta(t, 0, b.I.Dot(b.J), 1e-9)
	assert.InDelta(t, 0, b.I.Dot(b.K), 1e-9)
	assert.InDelta(t, 0, b.J.Dot(b.K), 1e-9)
}
