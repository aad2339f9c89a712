package material

import (
	"math"
	"math/rand"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// Blended sums two child BSDFs weighted by Weight (in [0,1], applied to
// A; B gets 1-Weight), letting a material cohabit several optical
// behaviors at once.
type Blended struct {
	A, B   BSDF
	Weight float64
}

func (b Blended) IsDiffuse() bool  { return b.A.IsDiffuse() || b.B.IsDiffuse() }
func (b Blended) IsSpecular() bool { return b.A.IsSpecular() || b.B.IsSpecular() }

func (b Blended) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	a := b.A.DiffuseReemited(basis, uv, incident, out).ScaleAll(b.Weight)
	return a.Add(b.B.DiffuseReemited(basis, uv, incident, out).ScaleAll(1 - b.Weight))
}

func (b Blended) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	a := b.A.SpecularReemited(basis, uv, incident, out).ScaleAll(b.Weight)
	return a.Add(b.B.SpecularReemited(basis, uv, incident, out).ScaleAll(1 - b.Weight))
}

func (b Blended) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	return append(b.A.SpecularSubRays(basis, uv, out), b.B.SpecularSubRays(basis, uv, out)...)
}

func (b Blended) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	na := int(float64(nbRays) * b.Weight)
	rays := b.A.RandomDiffuseRay(basis, uv, out, na, rng)
	return append(rays, b.B.RandomDiffuseRay(basis, uv, out, nbRays-na, rng)...)
}

func (b Blended) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	if rng.Float64() < b.Weight {
		return b.A.BouncePhoton(basis, uv, photon, rng)
	}
	return b.B.BouncePhoton(basis, uv, photon, rng)
}

func (b Blended) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	a := b.A.DiffuseReemitedFromAmbient(basis, uv, out, ambient).Scale(b.Weight)
	return a.Add(b.B.DiffuseReemitedFromAmbient(basis, uv, out, ambient).Scale(1 - b.Weight))
}

// LayeredBRDF stacks a specular Top coat over a Base material: the Top's
// Fresnel reflectance is evaluated first, and whatever is not reflected
// there is handed to Base, weighted by the transmittance (1-reflectance).
// Distinct from Blended in that the weighting is angle-dependent
// (computed from Top), not a fixed constant.
type LayeredBRDF struct {
	Top  RegularBRDF
	Base BSDF
}

func (l LayeredBRDF) topTransmittance(basis geom.Basis, dir geom.Vec3) float64 {
	w := l.Top.fresnelWeightForLayer(basis, dir)
	return 1 - w
}

// fresnelWeightForLayer returns r's mean Fresnel reflectance toward dir,
// computed by AlloyBRDF's fresnelWeight with r as the specular layer.
func (r RegularBRDF) fresnelWeightForLayer(basis geom.Basis, dir geom.Vec3) float64 {
	return (AlloyBRDF{Specular: r}).fresnelWeight(basis, dir)
}

func (l LayeredBRDF) IsDiffuse() bool  { return l.Base.IsDiffuse() }
func (l LayeredBRDF) IsSpecular() bool { return true }

func (l LayeredBRDF) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	t := l.topTransmittance(basis, out.Dir.Neg())
	return l.Base.DiffuseReemited(basis, uv, incident, out).ScaleAll(t)
}

func (l LayeredBRDF) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return l.Top.SpecularReemited(basis, uv, incident, out)
}

func (l LayeredBRDF) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	return l.Top.SpecularSubRays(basis, uv, out)
}

func (l LayeredBRDF) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return l.Base.RandomDiffuseRay(basis, uv, out, nbRays, rng)
}

func (l LayeredBRDF) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	w := l.Top.fresnelWeightForLayer(basis, photon.Direction.Neg())
	if rng.Float64() < w {
		return l.Top.BouncePhoton(basis, uv, photon, rng)
	}
	return l.Base.BouncePhoton(basis, uv, photon, rng)
}

func (l LayeredBRDF) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	t := l.topTransmittance(basis, out.Dir.Neg())
	return l.Base.DiffuseReemitedFromAmbient(basis, uv, out, ambient).Scale(t)
}

// VarnishedLambertian is the common special case of LayeredBRDF: a clear
// dielectric varnish (RegularBRDF) over an ideal Lambertian base.
func VarnishedLambertian(varnishIOR spectrum.Spectrum, albedo spectrum.Spectrum) LayeredBRDF {
	return LayeredBRDF{Top: NewRegularBRDF(varnishIOR), Base: NewLambertianBRDF(albedo)}
}

// TwoSided wraps a child BSDF so it is evaluated against the
// basis.FlipNormal() frame whenever the incident ray arrives from the
// geometric back face, the same flip Mesh/Triangle use at the shape
// layer for double-sided triangles.
type TwoSided struct {
	Child BSDF
}

func (t TwoSided) sidedBasis(basis geom.Basis, out geom.Ray) geom.Basis {
	// out.Dir.Neg() recovers the original incoming ray direction; a
	// positive dot with the (always front-facing) geometric normal
	// means the ray arrived from the back face.
	if basis.K.Dot(out.Dir.Neg()) > 0 {
		return basis.FlipNormal()
	}
	return basis
}

func (t TwoSided) IsDiffuse() bool  { return t.Child.IsDiffuse() }
func (t TwoSided) IsSpecular() bool { return t.Child.IsSpecular() }

func (t TwoSided) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return t.Child.DiffuseReemited(t.sidedBasis(basis, out), uv, incident, out)
}

func (t TwoSided) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return t.Child.SpecularReemited(t.sidedBasis(basis, out), uv, incident, out)
}

func (t TwoSided) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	return t.Child.SpecularSubRays(t.sidedBasis(basis, out), uv, out)
}

func (t TwoSided) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return t.Child.RandomDiffuseRay(t.sidedBasis(basis, out), uv, out, nbRays, rng)
}

func (t TwoSided) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	side := basis
	if basis.K.Dot(photon.Direction.Neg()) < 0 {
		side = basis.FlipNormal()
	}
	return t.Child.BouncePhoton(side, uv, photon, rng)
}

func (t TwoSided) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return t.Child.DiffuseReemitedFromAmbient(t.sidedBasis(basis, out), uv, out, ambient)
}

// Sampled wraps a tabulated angular reflectance curve (one value per
// incidence-angle bucket), interpolated with k = 2*acos(cosThetaI)*M/pi,
// for materials measured off real samples rather than modeled
// analytically.
type Sampled struct {
	Table []float64 // M buckets spanning incidence angle 0..pi/2
	Base  LambertianBRDF
}

func (s Sampled) tableLookup(cosThetaI float64) float64 {
	m := len(s.Table)
	if m == 0 {
		return 1
	}
	k := 2 * acosClamped(cosThetaI) * float64(m) / math.Pi
	i0 := int(k)
	if i0 < 0 {
		i0 = 0
	}
	if i0 >= m-1 {
		return s.Table[m-1]
	}
	frac := k - float64(i0)
	return s.Table[i0]*(1-frac) + s.Table[i0+1]*frac
}

func acosClamped(c float64) float64 {
	if c > 1 {
		c = 1
	}
	if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

func (s Sampled) IsDiffuse() bool  { return true }
func (s Sampled) IsSpecular() bool { return false }

func (s Sampled) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	cosI := cosineAt(basis, incident.Ray.Dir)
	factor := s.tableLookup(cosI)
	return s.Base.DiffuseReemited(basis, uv, incident, out).ScaleAll(factor)
}

func (s Sampled) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return light.NewVector(out, incident.Len())
}

func (s Sampled) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay { return nil }

func (s Sampled) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return s.Base.RandomDiffuseRay(basis, uv, out, nbRays, rng)
}

func (s Sampled) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	return s.Base.BouncePhoton(basis, uv, photon, rng)
}

func (s Sampled) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return s.Base.DiffuseReemitedFromAmbient(basis, uv, out, ambient)
}

// DepolarizedBRDF wraps a child BSDF and strips all polarization
// components from its output, modeling rough/volumetric scatterers
// (unglazed ceramics, fabric) that a full Stokes treatment would not
// distinguish from an unpolarized Lambertian response.
type DepolarizedBRDF struct {
	Child BSDF
}

func depolarize(v light.Vector) light.Vector {
	out := v.Clone()
	for i := range out.Samples {
		out.Samples[i].Linear0 = 0
		out.Samples[i].Linear45 = 0
		out.Samples[i].Circular = 0
	}
	return out
}

func (d DepolarizedBRDF) IsDiffuse() bool  { return d.Child.IsDiffuse() }
func (d DepolarizedBRDF) IsSpecular() bool { return d.Child.IsSpecular() }

func (d DepolarizedBRDF) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return depolarize(d.Child.DiffuseReemited(basis, uv, incident, out))
}

func (d DepolarizedBRDF) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return depolarize(d.Child.SpecularReemited(basis, uv, incident, out))
}

func (d DepolarizedBRDF) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	return d.Child.SpecularSubRays(basis, uv, out)
}

func (d DepolarizedBRDF) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return d.Child.RandomDiffuseRay(basis, uv, out, nbRays, rng)
}

func (d DepolarizedBRDF) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	return d.Child.BouncePhoton(basis, uv, photon, rng)
}

func (d DepolarizedBRDF) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return d.Child.DiffuseReemitedFromAmbient(basis, uv, out, ambient)
}
