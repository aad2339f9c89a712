// Package renderer implements the rendering strategies a camera can
// drive: SimpleRenderer (Whitted-style recursive ray tracing),
// PhotonMappingRenderer (two-pass photon build plus density-estimation
// gather), and TestRenderer (a cheap debug pass). Each strategy scans
// for the nearest hit, evaluates the object's material there, and
// recurses into specular bounces up to a configured depth.
package renderer

import (
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/scene"
	"github.com/thomasrubini/specrender/internal/spectrum"
	"github.com/thomasrubini/specrender/internal/texture"
)

// Renderer is the capability every rendering strategy implements: trace
// one camera ray through the scene and return the radiance it carries
// back, per wavelength.
type Renderer interface {
	TraceRay(sc *scene.Scenery, ray geom.Ray, grid *spectrum.Grid, n int, depth int, excluding int) light.Vector
}

// Environment supplies the radiance a camera ray carries when it escapes
// the scene entirely: either a flat ambient glow or a spherical
// environment map sampled by ray direction.
type Environment interface {
	Emission(dir geom.Vec3, n int) light.Vector
}

// ConstantEnvironment radiates the same spectrum from every direction,
// the simplest background a scene can have.
type ConstantEnvironment struct {
	Spectrum spectrum.Spectrum
}

func (c ConstantEnvironment) Emission(dir geom.Vec3, n int) light.Vector {
	lv := light.NewVector(geom.Ray{Dir: dir}, n)
	for i := range lv.Samples {
		lv.Samples[i].Radiance = c.Spectrum.At(i)
	}
	return lv
}

// SphericalEnvironment maps a ray direction onto an equirectangular-like
// texture using the stereographic-ish projection u=x/(2m)+1/2,
// v=y/(2m)+1/2, m=sqrt(x^2+y^2+(z+1)^2).
type SphericalEnvironment struct {
	Texture *texture.Texture
}

func (s SphericalEnvironment) Emission(dir geom.Vec3, n int) light.Vector {
	d := dir.Normalized()
	m := math.Sqrt(d.X*d.X + d.Y*d.Y + (d.Z+1)*(d.Z+1))
	lv := light.NewVector(geom.Ray{Dir: dir}, n)
	if m < 1e-12 {
		return lv
	}
	u := d.X/(2*m) + 0.5
	v := d.Y/(2*m) + 0.5
	sp, err := s.Texture.SpectrumAt(u, v)
	if err != nil {
		return lv
	}
	for i := range lv.Samples {
		lv.Samples[i].Radiance = sp.At(i)
	}
	return lv
}

// SimpleRenderer performs Whitted-style recursive ray tracing: direct
// lighting at each hit (shadow-tested against every source) plus
// recursive specular bounces up to MaxDepth. Ambient, if set, feeds
// DiffuseReemitedFromAmbient at every diffuse hit; Environment, if set,
// supplies the background radiance for rays that escape the scene.
type SimpleRenderer struct {
	MaxDepth    int
	Ambient     spectrum.Spectrum
	Environment Environment
}

func (r SimpleRenderer) TraceRay(sc *scene.Scenery, ray geom.Ray, grid *spectrum.Grid, n int, depth int, excluding int) light.Vector {
	hit, objHit := sc.NearestObject(ray, excluding)

	// Step 2: a directly visible area source wins over the object hit
	// whenever it is strictly nearer.
	if src, dist, srcHit := sc.NearestSourceHit(ray); srcHit {
		if !objHit || dist < hit.Shape.Distance {
			point := ray.Origin.Add(ray.Dir.Scale(dist))
			return src.EmittedLight(point, ray.Dir, n)
		}
	}

	if !objHit {
		if r.Environment != nil {
			return r.Environment.Emission(ray.Dir, n)
		}
		return light.NewVector(ray, n)
	}

	obj := sc.Object(hit.ObjectIndex)
	result := light.NewVector(ray, n)
	result.Distance = hit.Shape.Distance
	out := geom.Ray{Origin: hit.Basis.O, Dir: ray.Dir.Neg()}

	for _, src := range sc.Sources() {
		incident, lit := src.IncidentLight(hit.Basis.O, n)
		if !lit {
			continue
		}
		shadowRay := geom.Ray{Origin: hit.Basis.O, Dir: incident.Ray.Dir}
		if !sc.Visible(shadowRay, incident.Distance, hit.ObjectIndex) {
			continue
		}
		// Attenuate the light traveling through the hit object's outer
		// medium over the shadow segment (Beer-Lambert fog/tint).
		transported := obj.Outer.TransportLight(incident, incident.Distance)
		diffuse := obj.Material.DiffuseReemited(hit.Basis, hit.UV, transported, out)
		result = result.Add(diffuse)
	}

	if obj.Material.IsDiffuse() && r.Ambient.Len() > 0 {
		ambient := AmbientContribution(sc, hit, out, r.Ambient)
		for i := range result.Samples {
			result.Samples[i].Radiance += ambient.At(i)
		}
	}

	if depth < r.MaxDepth && obj.Material.IsSpecular() {
		for _, sub := range obj.Material.SpecularSubRays(hit.Basis, hit.UV, out) {
			bounced := r.TraceRay(sc, sub.Ray, grid, n, depth+1, hit.ObjectIndex)
			transported := obj.Outer.TransportLight(bounced, hit.Shape.Distance)
			applied := obj.Material.SpecularReemited(hit.Basis, hit.UV, transported, sub.Ray)
			result = result.Add(applied)
		}
	}

	return result
}

// AmbientContribution adds an isotropic ambient term via each object's
// DiffuseReemitedFromAmbient, used by renderers that model environment
// or hemisphere-light illumination in addition to discrete sources.
func AmbientContribution(sc *scene.Scenery, hit scene.Hit, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	obj := sc.Object(hit.ObjectIndex)
	return obj.Material.DiffuseReemitedFromAmbient(hit.Basis, hit.UV, out, ambient)
}
