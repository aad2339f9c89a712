package geom

import "math"

// BoundingBox is an axis-aligned bounding box.
type BoundingBox struct {
	Min, Max Vec3
}

// EmptyBox returns a degenerate box suitable as the start of a Grow chain.
func EmptyBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// GrowPoint returns a box containing b and p.
func (b BoundingBox) GrowPoint(p Vec3) BoundingBox {
	return BoundingBox{
		Min: Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// Grow returns a box containing b and o.
func (b BoundingBox) Grow(o BoundingBox) BoundingBox {
	return b.GrowPoint(o.Min).GrowPoint(o.Max)
}

// Center returns the box's midpoint.
func (b BoundingBox) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Contains reports whether p lies within the box (inclusive).
func (b BoundingBox) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Hit performs the standard slab ray/box test, returning whether the ray
// intersects the box within [tMin,tMax].
func (b BoundingBox) Hit(r Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		origin, dir, lo, hi := axisComponents(axis, r, b)
		if dir == 0 {
			if origin < lo || origin > hi {
				return false
			}
			continue
		}
		invD := 1 / dir
		t0 := (lo - origin) * invD
		t1 := (hi - origin) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax <= tMin {
			return false
		}
	}
	return true
}

func axisComponents(axis int, r Ray, b BoundingBox) (origin, dir, lo, hi float64) {
	switch axis {
	case 0:
		return r.Origin.X, r.Dir.X, b.Min.X, b.Max.X
	case 1:
		return r.Origin.Y, r.Dir.Y, b.Min.Y, b.Max.Y
	default:
		return r.Origin.Z, r.Dir.Z, b.Min.Z, b.Max.Z
	}
}
