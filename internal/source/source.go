// Package source implements the light emitters a scene can place: point,
// directional, and area (disk/plane) sources, each exposing the
// incidentLight/power/emittedLight/randomPhoton contract over a
// per-wavelength spectrum.Spectrum rather than a single RGB color.
package source

import (
	"math"
	"math/rand"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// Source is the capability every light emitter implements.
type Source interface {
	// IncidentLight returns the LightVector arriving at point from this
	// source (ray pointing from point toward the source, with Distance
	// set to the separation), or ok=false if the source cannot
	// illuminate point at all (e.g. a directional source always can).
	IncidentLight(point geom.Vec3, n int) (lv light.Vector, ok bool)

	// Power returns the source's total radiant power per wavelength,
	// used to weight photon emission counts across multiple sources.
	Power() spectrum.Spectrum

	// EmittedLight returns the radiance an area source emits directly
	// along dir (for camera rays that hit the source's geometry); point
	// sources have zero geometric extent and return a zero Vector.
	EmittedLight(point geom.Vec3, dir geom.Vec3, n int) light.Vector

	// RandomPhoton emits one photon for photon-map construction: from a
	// random surface point with a cosine-weighted random direction (area
	// sources), from the source position with a uniform random direction
	// (point sources), or along the source's fixed Direction
	// (directional sources).
	RandomPhoton(n int, rng *rand.Rand) light.Photon
}

// PointSource is an idealized zero-area emitter: isotropic radiant
// intensity Intensity(lambda), falling off as 1/distance^2.
type PointSource struct {
	Position  geom.Vec3
	Intensity spectrum.Spectrum // radiant intensity per steradian
}

func (p PointSource) IncidentLight(point geom.Vec3, n int) (light.Vector, bool) {
	toSource := p.Position.Sub(point)
	dist := toSource.Len()
	if dist == 0 {
		return light.Vector{}, false
	}
	// Ray.Dir points from point toward the source (outward), so it
	// doubles as the shadow-ray direction and the cosine-law light
	// direction without further negation.
	dir := toSource.Scale(1 / dist)
	lv := light.NewVector(geom.Ray{Origin: point, Dir: dir}, n)
	lv.Distance = dist
	falloff := 1 / (dist * dist)
	for i := range lv.Samples {
		lv.Samples[i].Radiance = p.Intensity.At(i) * falloff
	}
	return lv, true
}

func (p PointSource) Power() spectrum.Spectrum {
	return p.Intensity.Scale(4 * math.Pi)
}

func (p PointSource) EmittedLight(point, dir geom.Vec3, n int) light.Vector {
	return light.NewVector(geom.Ray{Origin: point, Dir: dir}, n)
}

func (p PointSource) RandomPhoton(n int, rng *rand.Rand) light.Photon {
	dir := uniformSphereDirection(rng)
	ph := light.NewPhoton(n)
	for i := range ph.Radiances {
		ph.Radiances[i] = p.Intensity.At(i)
	}
	ph.Position = p.Position
	ph.Direction = dir
	return ph
}

func uniformSphereDirection(rng *rand.Rand) geom.Vec3 {
	z := 1 - 2*rng.Float64()
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * rng.Float64()
	return geom.Vec3{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}

// DirectionalSource models an emitter infinitely far away (sunlight):
// constant Irradiance(lambda) arrives along Direction from every point
// in the scene, with no 1/d^2 falloff.
type DirectionalSource struct {
	Direction  geom.Vec3 // direction the light travels (surface to source is the negation)
	Irradiance spectrum.Spectrum
}

func (d DirectionalSource) IncidentLight(point geom.Vec3, n int) (light.Vector, bool) {
	toSource := d.Direction.Neg().Normalized()
	lv := light.NewVector(geom.Ray{Origin: point, Dir: toSource}, n)
	lv.Distance = math.Inf(1)
	for i := range lv.Samples {
		lv.Samples[i].Radiance = d.Irradiance.At(i)
	}
	return lv, true
}

func (d DirectionalSource) Power() spectrum.Spectrum { return d.Irradiance }

func (d DirectionalSource) EmittedLight(point, dir geom.Vec3, n int) light.Vector {
	return light.NewVector(geom.Ray{Origin: point, Dir: dir}, n)
}

func (d DirectionalSource) RandomPhoton(n int, rng *rand.Rand) light.Photon {
	ph := light.NewPhoton(n)
	for i := range ph.Radiances {
		ph.Radiances[i] = d.Irradiance.At(i)
	}
	ph.Direction = d.Direction.Normalized()
	return ph
}

// AreaShape is the minimal surface-sampling capability an area source's
// geometry must provide: a random point plus the outward normal there,
// and the measure (area) used to convert emitted radiance to power.
type AreaShape interface {
	SampleSurface(rng *rand.Rand) (point, normal geom.Vec3)
	Area() float64
}

// Hittable is implemented by sources whose geometry a camera ray can
// strike directly (area lights), so the renderer's nearest-source query
// can compete against the nearest object hit and call EmittedLight when
// the source wins.
type Hittable interface {
	Intersect(ray geom.Ray) (distance float64, ok bool)
}

// Disk is an AreaShape: a flat circular emitter.
type Disk struct {
	Center geom.Vec3
	Normal geom.Vec3
	Radius float64
}

func (d Disk) SampleSurface(rng *rand.Rand) (geom.Vec3, geom.Vec3) {
	basis := geom.BasisFromNormal(d.Center, d.Normal)
	r := d.Radius * math.Sqrt(rng.Float64())
	theta := 2 * math.Pi * rng.Float64()
	local := geom.Vec3{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: 0}
	point := d.Center.Add(basis.ToWorld(local))
	return point, basis.K
}

func (d Disk) Area() float64 { return math.Pi * d.Radius * d.Radius }

func (d Disk) Intersect(ray geom.Ray) (float64, bool) {
	denom := d.Normal.Dot(ray.Dir)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	t := d.Center.Sub(ray.Origin).Dot(d.Normal) / denom
	if t <= 1e-6 {
		return 0, false
	}
	p := ray.Origin.Add(ray.Dir.Scale(t))
	if p.Sub(d.Center).Len() > d.Radius {
		return 0, false
	}
	return t, true
}

// Plane is an AreaShape: a flat rectangular emitter spanning U,V half-extents.
type Plane struct {
	Center geom.Vec3
	Normal geom.Vec3
	HalfU  float64
	HalfV  float64
}

func (p Plane) SampleSurface(rng *rand.Rand) (geom.Vec3, geom.Vec3) {
	basis := geom.BasisFromNormal(p.Center, p.Normal)
	u := (2*rng.Float64() - 1) * p.HalfU
	v := (2*rng.Float64() - 1) * p.HalfV
	local := geom.Vec3{X: u, Y: v, Z: 0}
	point := p.Center.Add(basis.ToWorld(local))
	return point, basis.K
}

func (p Plane) Area() float64 { return 4 * p.HalfU * p.HalfV }

func (p Plane) Intersect(ray geom.Ray) (float64, bool) {
	denom := p.Normal.Dot(ray.Dir)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	t := p.Center.Sub(ray.Origin).Dot(p.Normal) / denom
	if t <= 1e-6 {
		return 0, false
	}
	hit := ray.Origin.Add(ray.Dir.Scale(t))
	basis := geom.BasisFromNormal(p.Center, p.Normal)
	local := basis.ToLocal(hit.Sub(p.Center))
	if math.Abs(local.X) > p.HalfU || math.Abs(local.Y) > p.HalfV {
		return 0, false
	}
	return t, true
}

// SurfaceSource is a diffuse-emitting area light over an AreaShape, with
// Radiance(lambda) the outgoing radiance per unit area per steradian on
// the emitting side (Lambertian emission profile, matching most physical
// area lights).
type SurfaceSource struct {
	Shape    AreaShape
	Radiance spectrum.Spectrum
	samples  int // count of independent random surface samples in IncidentLight's Monte-Carlo estimate
}

func NewSurfaceSource(shape AreaShape, radiance spectrum.Spectrum, samples int) SurfaceSource {
	if samples < 1 {
		samples = 1
	}
	return SurfaceSource{Shape: shape, Radiance: radiance, samples: samples}
}

func (s SurfaceSource) IncidentLight(point geom.Vec3, n int) (light.Vector, bool) {
	rng := rand.New(rand.NewSource(int64(mixSeed(point))))
	lv := light.NewVector(geom.Ray{}, n)
	var totalDist float64
	var dirSum geom.Vec3
	count := 0
	for i := 0; i < s.samples; i++ {
		p, nrm := s.Shape.SampleSurface(rng)
		toPoint := point.Sub(p)
		dist := toPoint.Len()
		if dist == 0 {
			continue
		}
		dir := toPoint.Scale(-1 / dist)
		cosLight := math.Max(0, nrm.Dot(dir.Neg()))
		if cosLight <= 0 {
			continue
		}
		solidAngle := cosLight * s.Shape.Area() / (dist * dist)
		for k := range lv.Samples {
			lv.Samples[k].Radiance += s.Radiance.At(k) * solidAngle
		}
		totalDist += dist
		dirSum = dirSum.Add(dir)
		count++
	}
	if count == 0 {
		return light.Vector{}, false
	}
	invCount := 1 / float64(count)
	for k := range lv.Samples {
		lv.Samples[k] = lv.Samples[k].Scale(invCount)
	}
	avgDir := dirSum.Scale(invCount).Normalized()
	lv.Ray = geom.Ray{Origin: point, Dir: avgDir}
	lv.Distance = totalDist * invCount
	lv.Frame = light.DefaultFrame(avgDir)
	return lv, true
}

func mixSeed(p geom.Vec3) uint64 {
	bits := func(f float64) uint64 { return uint64(math.Float64bits(f)) }
	h := bits(p.X) ^ (bits(p.Y) * 0x9E3779B97F4A7C15) ^ (bits(p.Z) * 0xC2B2AE3D27D4EB4F)
	return h
}

// Intersect lets a SurfaceSource participate in direct-view queries
// (scene.Scenery.NearestSourceHit) when its underlying Shape is Hittable.
func (s SurfaceSource) Intersect(ray geom.Ray) (float64, bool) {
	h, ok := s.Shape.(Hittable)
	if !ok {
		return 0, false
	}
	return h.Intersect(ray)
}

func (s SurfaceSource) Power() spectrum.Spectrum {
	return s.Radiance.Scale(math.Pi * s.Shape.Area())
}

func (s SurfaceSource) EmittedLight(point, dir geom.Vec3, n int) light.Vector {
	lv := light.NewVector(geom.Ray{Origin: point, Dir: dir}, n)
	for i := range lv.Samples {
		lv.Samples[i].Radiance = s.Radiance.At(i)
	}
	return lv
}

func (s SurfaceSource) RandomPhoton(n int, rng *rand.Rand) light.Photon {
	p, nrm := s.Shape.SampleSurface(rng)
	basis := geom.BasisFromNormal(p, nrm)
	local := cosineSampleHemisphereLocal(rng)
	dir := basis.ToWorld(local).Normalized()
	ph := light.NewPhoton(n)
	for i := range ph.Radiances {
		ph.Radiances[i] = s.Radiance.At(i) * math.Pi
	}
	ph.Position = p
	ph.Direction = dir
	ph.Normal = nrm
	return ph
}

func cosineSampleHemisphereLocal(rng *rand.Rand) geom.Vec3 {
	u1, u2 := rng.Float64(), rng.Float64()
	r := math.Sqrt(u1)
	theta := 2 * math.Pi * u2
	z := math.Sqrt(math.Max(0, 1-u1))
	return geom.Vec3{X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: z}
}
