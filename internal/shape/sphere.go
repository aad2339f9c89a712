package shape

import (
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
)

// Sphere is a sphere of the given radius centered at Center.
type Sphere struct {
	Center geom.Vec3
	Radius float64
}

// Intersect solves the quadratic ray-sphere equation and returns the
// nearest positive root.
func (s Sphere) Intersect(ray geom.Ray) (Hit, bool) {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Dir.Dot(ray.Dir)
	b := 2 * oc.Dot(ray.Dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}, false
	}
	sqrtDisc := math.Sqrt(disc)
	t0 := (-b - sqrtDisc) / (2 * a)
	t1 := (-b + sqrtDisc) / (2 * a)
	if t0 > 1e-9 {
		return Hit{Distance: t0}, true
	}
	if t1 > 1e-9 {
		return Hit{Distance: t1}, true
	}
	return Hit{}, false
}

// LocalBasis returns the sphere's outward normal and a spherical (u,v)
// parameterization at the hit point.
func (s Sphere) LocalBasis(ray geom.Ray, h Hit) (geom.Basis, geom.Vec2) {
	hit := ray.At(h.Distance)
	normal := hit.Sub(s.Center).Normalized()
	basis := geom.BasisFromNormal(hit, normal)

	u := 0.5 + math.Atan2(normal.Z, normal.X)/(2*math.Pi)
	v := 0.5 - math.Asin(clamp(normal.Y, -1, 1))/math.Pi
	return basis, geom.Vec2{U: u, V: v}
}

// Bounds returns the sphere's axis-aligned bounding box.
func (s Sphere) Bounds() geom.BoundingBox {
	r := geom.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return geom.BoundingBox{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
