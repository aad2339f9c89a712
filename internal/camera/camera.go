// Package camera implements four camera shapes: a perspective (pinhole)
// camera, an orthoscopic (orthographic) camera, a fisheye camera, and a
// polar (spherical/equirectangular) camera, each a pixel-to-primary-ray
// generator built from a position/look-at/up frame via cross products.
package camera

import (
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
)

// Camera is the capability every camera shape implements: given pixel
// coordinates in [0,1]x[0,1] (u,v), produce the primary ray leaving the
// camera through that pixel.
type Camera interface {
	PrimaryRay(u, v float64) geom.Ray
}

// frame holds the orthonormal look-direction/right/up basis shared by
// every camera shape, built as cross(direction, up) then
// cross(horizontal, direction).
type frame struct {
	Position  geom.Vec3
	Direction geom.Vec3
	Right     geom.Vec3
	Up        geom.Vec3
}

func newFrame(position, at, up geom.Vec3) frame {
	dir := at.Sub(position).Normalized()
	right := dir.Cross(up).Normalized()
	trueUp := right.Cross(dir).Normalized()
	return frame{Position: position, Direction: dir, Right: right, Up: trueUp}
}

// Perspective is an ideal pinhole camera with a fixed field of view.
type Perspective struct {
	frame
	FovY   float64 // vertical field of view, radians
	Aspect float64
}

// NewPerspective builds a perspective camera looking from position
// toward at, with up as the approximate up direction.
func NewPerspective(position, at, up geom.Vec3, fovY, aspect float64) Perspective {
	return Perspective{frame: newFrame(position, at, up), FovY: fovY, Aspect: aspect}
}

func (p Perspective) PrimaryRay(u, v float64) geom.Ray {
	halfHeight := math.Tan(p.FovY / 2)
	halfWidth := halfHeight * p.Aspect
	horizontal := p.Right.Scale(halfWidth * (u - 0.5) * 2)
	vertical := p.Up.Scale(halfHeight * (v - 0.5) * 2)
	dir := p.Direction.Add(horizontal).Add(vertical).Normalized()
	return geom.Ray{Origin: p.Position, Dir: dir}
}

// Orthoscopic is an orthographic camera: every primary ray shares the
// same direction, and pixels offset the ray's origin instead of its
// direction (so perspective foreshortening disappears).
type Orthoscopic struct {
	frame
	Width  float64
	Height float64
}

func NewOrthoscopic(position, at, up geom.Vec3, width, height float64) Orthoscopic {
	return Orthoscopic{frame: newFrame(position, at, up), Width: width, Height: height}
}

func (o Orthoscopic) PrimaryRay(u, v float64) geom.Ray {
	origin := o.Position.
		Add(o.Right.Scale(o.Width * (u - 0.5))).
		Add(o.Up.Scale(o.Height * (v - 0.5)))
	return geom.Ray{Origin: origin, Dir: o.Direction}
}

// Fisheye is an equidistant fisheye camera: pixel (u,v) maps to a
// direction whose angle off axis is proportional to its radial distance
// from image center, up to MaxAngle (typically pi/2 for a 180-degree
// fisheye).
type Fisheye struct {
	frame
	MaxAngle float64
}

func NewFisheye(position, at, up geom.Vec3, maxAngle float64) Fisheye {
	return Fisheye{frame: newFrame(position, at, up), MaxAngle: maxAngle}
}

func (f Fisheye) PrimaryRay(u, v float64) geom.Ray {
	x := 2*u - 1
	y := 2*v - 1
	r := math.Hypot(x, y)
	if r > 1 {
		r = 1
	}
	theta := r * f.MaxAngle
	phi := math.Atan2(y, x)
	sinTheta := math.Sin(theta)
	local := geom.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: math.Cos(theta)}
	dir := f.Right.Scale(local.X).Add(f.Up.Scale(local.Y)).Add(f.Direction.Scale(local.Z)).Normalized()
	return geom.Ray{Origin: f.Position, Dir: dir}
}

// Polar is a full-sphere equirectangular camera: u sweeps the azimuth
// (0..2pi) and v sweeps the polar angle (0..pi), the projection used by
// 360-degree panoramic renders.
type Polar struct {
	frame
}

func NewPolar(position, at, up geom.Vec3) Polar {
	return Polar{frame: newFrame(position, at, up)}
}

func (p Polar) PrimaryRay(u, v float64) geom.Ray {
	azimuth := u * 2 * math.Pi
	polarAngle := v * math.Pi
	sinPolar := math.Sin(polarAngle)
	local := geom.Vec3{
		X: sinPolar * math.Cos(azimuth),
		Y: math.Cos(polarAngle),
		Z: sinPolar * math.Sin(azimuth),
	}
	dir := p.Right.Scale(local.X).Add(p.Up.Scale(local.Y)).Add(p.Direction.Scale(local.Z)).Normalized()
	return geom.Ray{Origin: p.Position, Dir: dir}
}
