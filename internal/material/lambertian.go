package material

import (
	"math"
	"math/rand"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/medium"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// cosineAt returns the unsigned cosine between the surface normal and a
// direction, zero-clamped (directions on the wrong side of the surface
// contribute nothing to a purely diffuse term).
func cosineAt(basis geom.Basis, dir geom.Vec3) float64 {
	return math.Max(0, basis.K.Dot(dir.Normalized()))
}

// LambertianBRDF is the ideal diffuse reflector: outgoing radiance is
// incident radiance times albedo/pi times the cosine of incidence,
// independent of view direction, evaluated per wavelength over
// medium.Medium's reflectance spectrum. Only the reflectance branch is
// evaluated: Medium.Transmittance is not read, and no light is
// transmitted through the surface.
type LambertianBRDF struct {
	Medium medium.Medium
}

func NewLambertianBRDF(reflectance spectrum.Spectrum) LambertianBRDF {
	return LambertianBRDF{Medium: medium.Medium{HasLambertian: true, Reflectance: reflectance, Transmittance: spectrum.Zero(reflectance.Grid())}}
}

func (l LambertianBRDF) IsDiffuse() bool  { return true }
func (l LambertianBRDF) IsSpecular() bool { return false }

func (l LambertianBRDF) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	// incident.Ray.Dir already points from the surface toward the
	// source (Source.IncidentLight's convention), so no negation here.
	cosI := cosineAt(basis, incident.Ray.Dir)
	result := incident.Clone()
	invPi := 1 / math.Pi
	for i := range result.Samples {
		albedo := l.Medium.Reflectance.At(i)
		factor := albedo * invPi * cosI
		result.Samples[i] = result.Samples[i].Scale(factor)
	}
	result.Ray = out
	return result.ChangeReemitedFrame(light.DefaultFrame(out.Dir))
}

func (l LambertianBRDF) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return light.NewVector(out, incident.Len())
}

func (l LambertianBRDF) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	return nil
}

func (l LambertianBRDF) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return randomDiffuseRays(basis, nbRays, false, rng)
}

func (l LambertianBRDF) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	albedoAvg := 0.0
	for i := 0; i < l.Medium.Reflectance.Len(); i++ {
		albedoAvg += l.Medium.Reflectance.At(i)
	}
	albedoAvg /= float64(l.Medium.Reflectance.Len())
	if rng.Float64() > albedoAvg {
		return photon, false, false
	}
	local := cosineSampleHemisphere(rng)
	dir := basis.ToWorld(local).Normalized()
	out := photon
	out.Radiances = make([]float64, len(photon.Radiances))
	for i, r := range photon.Radiances {
		out.Radiances[i] = r * l.Medium.Reflectance.At(i) / albedoAvg
	}
	out.Position = basis.O
	out.Direction = dir
	out.Normal = basis.K
	return out, true, false
}

func (l LambertianBRDF) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return ambient.Mul(l.Medium.Reflectance).Scale(1 / math.Pi)
}

// RoughLambertian implements the Oren-Nayar rough-diffuse BRDF, which
// adds a sigma-dependent correction term over ideal Lambertian so that
// very rough surfaces (regolith, cloth, unglazed ceramic) brighten
// toward grazing angles instead of darkening.
type RoughLambertian struct {
	Medium medium.Medium
	Sigma  float64 // roughness, radians
}

func NewRoughLambertian(reflectance spectrum.Spectrum, sigma float64) RoughLambertian {
	return RoughLambertian{Medium: medium.Medium{HasLambertian: true, Reflectance: reflectance, Transmittance: spectrum.Zero(reflectance.Grid())}, Sigma: sigma}
}

func (r RoughLambertian) orenNayarAB() (a, b float64) {
	s2 := r.Sigma * r.Sigma
	a = 1 - 0.5*s2/(s2+0.33)
	b = 0.45 * s2 / (s2 + 0.09)
	return
}

func (r RoughLambertian) orenNayarFactor(basis geom.Basis, viewDir, lightDir geom.Vec3) float64 {
	a, b := r.orenNayarAB()
	cosI := cosineAt(basis, lightDir)
	cosO := cosineAt(basis, viewDir)
	if cosI <= 0 || cosO <= 0 {
		return 0
	}
	thetaI := math.Acos(cosI)
	thetaO := math.Acos(cosO)
	alpha := math.Max(thetaI, thetaO)
	beta := math.Min(thetaI, thetaO)

	li := basis.ToLocal(lightDir)
	lo := basis.ToLocal(viewDir)
	azimuthCos := (li.X*lo.X + li.Y*lo.Y) / math.Max(1e-9, math.Sqrt((li.X*li.X+li.Y*li.Y)*(lo.X*lo.X+lo.Y*lo.Y)))
	gamma := math.Max(0, azimuthCos)
	return a + b*gamma*math.Sin(alpha)*math.Tan(beta)
}

func (r RoughLambertian) IsDiffuse() bool  { return true }
func (r RoughLambertian) IsSpecular() bool { return false }

func (r RoughLambertian) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	// incident.Ray.Dir points toward the source and out.Dir points
	// toward the viewer; both are already outward, so neither is negated.
	cosI := cosineAt(basis, incident.Ray.Dir)
	onFactor := r.orenNayarFactor(basis, out.Dir, incident.Ray.Dir)
	result := incident.Clone()
	invPi := 1 / math.Pi
	for i := range result.Samples {
		albedo := r.Medium.Reflectance.At(i)
		factor := albedo * invPi * cosI * onFactor
		result.Samples[i] = result.Samples[i].Scale(factor)
	}
	result.Ray = out
	return result.ChangeReemitedFrame(light.DefaultFrame(out.Dir))
}

func (r RoughLambertian) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return light.NewVector(out, incident.Len())
}

func (r RoughLambertian) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	return nil
}

func (r RoughLambertian) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return randomDiffuseRays(basis, nbRays, false, rng)
}

func (r RoughLambertian) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	lamb := LambertianBRDF{Medium: r.Medium}
	return lamb.BouncePhoton(basis, uv, photon, rng)
}

func (r RoughLambertian) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return ambient.Mul(r.Medium.Reflectance).Scale(1 / math.Pi)
}
