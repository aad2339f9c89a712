// Package geom implements ray/point/vector/basis algebra, axis-aligned
// bounding boxes, and affine transforms shared by shapes, cameras and
// materials. Vec3 uses float64 throughout, since photon-map accumulation
// and KD-tree radius queries compound rounding error over many bounces.
package geom

import "math"

// Vec3 is a 3D vector or point in world space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }
func (v Vec3) Scale(c float64) Vec3 { return Vec3{v.X * c, v.Y * c, v.Z * c} }
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) LenSq() float64 { return v.Dot(v) }

// Normalized returns a unit vector in the direction of v. The zero vector
// is returned unchanged; callers that need an intersection/grazing guard
// should check LenSq() == 0 beforehand.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Reflect reflects v (pointing away from the surface, i.e. the incoming
// direction reversed) about normal n.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return n.Scale(2 * v.Dot(n)).Sub(v)
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Scale(1 - t).Add(b.Scale(t))
}

// Ray is an origin and unit direction.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Dir.Scale(t)) }

// Offset returns a copy of r with its origin advanced by eps along Dir.
// Used to apply the scene's bias epsilon before intersection tests.
func (r Ray) Offset(eps float64) Ray {
	return Ray{Origin: r.At(eps), Dir: r.Dir}
}
