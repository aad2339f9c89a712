package geom

import "math"

// Transform is a 4x4 affine transform plus its inverse, cached together
// since shapes wrapped by Translate/Rotate/Scale need both the forward
// transform (to place the shape in the scene) and the inverse (to bring
// an incoming ray into the shape's local space), mirroring gazed-vu's
// math/lin transform/vector split.
type Transform struct {
	m, inv [4][4]float64
}

func identity4() [4][4]float64 {
	var m [4][4]float64
	for i := 0; i < 4; i++ {
		m[i][i] = 1
	}
	return m
}

// Identity returns the identity transform.
func Identity() Transform {
	id := identity4()
	return Transform{m: id, inv: id}
}

// Translate returns a transform that translates by d.
func Translate(d Vec3) Transform {
	m := identity4()
	m[0][3], m[1][3], m[2][3] = d.X, d.Y, d.Z
	inv := identity4()
	inv[0][3], inv[1][3], inv[2][3] = -d.X, -d.Y, -d.Z
	return Transform{m: m, inv: inv}
}

// Scale3 returns a transform that scales non-uniformly by s.
func Scale3(s Vec3) Transform {
	m := identity4()
	m[0][0], m[1][1], m[2][2] = s.X, s.Y, s.Z
	inv := identity4()
	inv[0][0], inv[1][1], inv[2][2] = 1/s.X, 1/s.Y, 1/s.Z
	return Transform{m: m, inv: inv}
}

// RotateAxis returns a transform that rotates by angle radians about the
// given (not necessarily unit) axis, using Rodrigues' rotation formula.
func RotateAxis(axis Vec3, angle float64) Transform {
	a := axis.Normalized()
	s, c := math.Sin(angle), math.Cos(angle)
	t := 1 - c
	m := identity4()
	m[0][0] = t*a.X*a.X + c
	m[0][1] = t*a.X*a.Y - s*a.Z
	m[0][2] = t*a.X*a.Z + s*a.Y
	m[1][0] = t*a.X*a.Y + s*a.Z
	m[1][1] = t*a.Y*a.Y + c
	m[1][2] = t*a.Y*a.Z - s*a.X
	m[2][0] = t*a.X*a.Z - s*a.Y
	m[2][1] = t*a.Y*a.Z + s*a.X
	m[2][2] = t*a.Z*a.Z + c

	// Rotation matrices are orthonormal, so the inverse is the transpose.
	var inv [4][4]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			inv[i][j] = m[j][i]
		}
	}
	inv[3][3] = 1
	return Transform{m: m, inv: inv}
}

// Compose returns the transform equivalent to applying a first, then b.
func Compose(a, b Transform) Transform {
	return Transform{m: mulMat(b.m, a.m), inv: mulMat(a.inv, b.inv)}
}

func mulMat(a, b [4][4]float64) [4][4]float64 {
	var r [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[i][k] * b[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

func applyPoint(m [4][4]float64, p Vec3) Vec3 {
	return Vec3{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

func applyVector(m [4][4]float64, v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Point applies the transform to a point.
func (t Transform) Point(p Vec3) Vec3 { return applyPoint(t.m, p) }

// Vector applies the transform to a direction (ignoring translation).
func (t Transform) Vector(v Vec3) Vec3 { return applyVector(t.m, v) }

// InversePoint applies the inverse transform to a point.
func (t Transform) InversePoint(p Vec3) Vec3 { return applyPoint(t.inv, p) }

// InverseVector applies the inverse transform to a direction.
func (t Transform) InverseVector(v Vec3) Vec3 { return applyVector(t.inv, v) }

// Normal transforms a surface normal correctly under non-uniform scale:
// by the transpose of the inverse linear part. For the Translate/Rotate/
// Scale3 building blocks above this only matters for Scale3.
func (t Transform) Normal(n Vec3) Vec3 {
	inv := t.inv
	return Vec3{
		inv[0][0]*n.X + inv[1][0]*n.Y + inv[2][0]*n.Z,
		inv[0][1]*n.X + inv[1][1]*n.Y + inv[2][1]*n.Z,
		inv[0][2]*n.X + inv[1][2]*n.Y + inv[2][2]*n.Z,
	}.Normalized()
}

// Ray transforms a ray into the space described by the transform.
func (t Transform) Ray(r Ray) Ray {
	return Ray{Origin: t.Point(r.Origin), Dir: t.Vector(r.Dir)}
}

// InverseRay applies the inverse transform to a ray.
func (t Transform) InverseRay(r Ray) Ray {
	return Ray{Origin: t.InversePoint(r.Origin), Dir: t.InverseVector(r.Dir)}
}
