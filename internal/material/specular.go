package material

import (
	"math"
	"math/rand"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/medium"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// RegularBRDF is an ideal mirror: a single specular reflection ray, with
// a full per-wavelength dielectric Fresnel pair (rather than a scalar
// specular coefficient) applied to both radiance and polarization.
type RegularBRDF struct {
	Medium medium.Medium // HasFresnel: IOR (real part) drives reflectance
}

func NewRegularBRDF(ior spectrum.Spectrum) RegularBRDF {
	return RegularBRDF{Medium: medium.Medium{HasFresnel: true, IOR: ior, K: spectrum.Zero(ior.Grid())}}
}

func (r RegularBRDF) IsDiffuse() bool  { return false }
func (r RegularBRDF) IsSpecular() bool { return true }

func (r RegularBRDF) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return light.NewVector(out, incident.Len())
}

func (r RegularBRDF) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	incomingDir := out.Dir.Neg()
	reflected := incomingDir.Reflect(basis.K).Neg()
	return []SubRay{{Ray: geom.Ray{Origin: basis.O, Dir: reflected.Normalized()}, Wavelength: -1}}
}

func (r RegularBRDF) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	cosI := math.Abs(basis.K.Dot(out.Dir.Neg().Normalized()))
	result := incident.ChangeIncidentFrame(basis.K)
	for i := range result.Samples {
		n := r.Medium.IOR.At(i)
		rPerp, rPar := medium.FresnelReflectance(cosI, n)
		result.Samples[i] = result.Samples[i].ApplyFresnel(rPar, rPerp)
	}
	result.Ray = out
	return result.ChangeReemitedFrame(light.DefaultFrame(out.Dir))
}

func (r RegularBRDF) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return nil
}

func (r RegularBRDF) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	cosI := math.Abs(basis.K.Dot(photon.Direction.Neg().Normalized()))
	avgN := 0.0
	for i := 0; i < r.Medium.IOR.Len(); i++ {
		avgN += r.Medium.IOR.At(i)
	}
	avgN /= float64(r.Medium.IOR.Len())
	rPerp, rPar := medium.FresnelReflectance(cosI, avgN)
	reflectance := (rPerp + rPar) / 2
	if rng.Float64() > reflectance {
		return photon, false, false
	}
	out := photon
	out.Radiances = make([]float64, len(photon.Radiances))
	for i, rad := range photon.Radiances {
		out.Radiances[i] = rad / math.Max(reflectance, 1e-6)
	}
	out.Direction = photon.Direction.Reflect(basis.K).Neg()
	out.Position = basis.O
	out.Normal = basis.K
	return out, true, true
}

func (r RegularBRDF) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return spectrum.Zero(ambient.Grid())
}

// BeckmannBRDF is a microfacet specular model using the Beckmann normal
// distribution to blur an otherwise ideal mirror across a roughness
// Alpha: SpecularReemited weights the Fresnel reflection by the Beckmann
// D term of the half-vector. SpecularSubRays emits only the ideal mirror
// direction; no perturbed half-vector is sampled.
type BeckmannBRDF struct {
	Medium medium.Medium
	Alpha  float64 // RMS slope
}

func NewBeckmannBRDF(ior spectrum.Spectrum, alpha float64) BeckmannBRDF {
	return BeckmannBRDF{Medium: medium.Medium{HasFresnel: true, IOR: ior, K: spectrum.Zero(ior.Grid())}, Alpha: alpha}
}

// beckmannD evaluates the Beckmann microfacet distribution for the
// cosine of the angle between the half-vector and the normal.
func beckmannD(cosThetaH, alpha float64) float64 {
	if cosThetaH <= 0 {
		return 0
	}
	cos2 := cosThetaH * cosThetaH
	tan2 := (1 - cos2) / cos2
	a2 := alpha * alpha
	return math.Exp(-tan2/a2) / (math.Pi * a2 * cos2 * cos2)
}

func (b BeckmannBRDF) IsDiffuse() bool  { return false }
func (b BeckmannBRDF) IsSpecular() bool { return true }

func (b BeckmannBRDF) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return light.NewVector(out, incident.Len())
}

func (b BeckmannBRDF) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	incomingDir := out.Dir.Neg()
	reflected := incomingDir.Reflect(basis.K).Neg()
	return []SubRay{{Ray: geom.Ray{Origin: basis.O, Dir: reflected.Normalized()}, Wavelength: -1}}
}

func (b BeckmannBRDF) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	// out.Dir and incident.Ray.Dir both already point away from the
	// surface (toward viewer, toward source), so the half-vector is
	// their direct sum, not their negations.
	half := out.Dir.Add(incident.Ray.Dir).Normalized()
	cosThetaH := math.Max(0, basis.K.Dot(half))
	d := beckmannD(cosThetaH, b.Alpha)
	cosI := math.Abs(basis.K.Dot(out.Dir.Neg().Normalized()))
	result := incident.ChangeIncidentFrame(basis.K)
	for i := range result.Samples {
		n := b.Medium.IOR.At(i)
		rPerp, rPar := medium.FresnelReflectance(cosI, n)
		result.Samples[i] = result.Samples[i].ApplyFresnel(rPar, rPerp)
		result.Samples[i] = result.Samples[i].Scale(d)
	}
	result.Ray = out
	return result.ChangeReemitedFrame(light.DefaultFrame(out.Dir))
}

func (b BeckmannBRDF) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return nil
}

func (b BeckmannBRDF) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	reg := RegularBRDF{Medium: b.Medium}
	return reg.BouncePhoton(basis, uv, photon, rng)
}

func (b BeckmannBRDF) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return spectrum.Zero(ambient.Grid())
}

// RefractiveBRDF is a dielectric that both reflects and transmits,
// following Snell's law and Fresnel's equations; Dispersive enables
// wavelength-dependent IOR to split a refracted bundle into one sub-ray
// per sample (prism dispersion).
type RefractiveBRDF struct {
	Medium     medium.Medium
	Dispersive bool
}

func NewRefractiveBRDF(ior spectrum.Spectrum, dispersive bool) RefractiveBRDF {
	return RefractiveBRDF{Medium: medium.Medium{HasFresnel: true, IOR: ior, K: spectrum.Zero(ior.Grid())}, Dispersive: dispersive}
}

// refract computes the Snell's-law transmission direction for a unit
// incoming direction dir (pointing toward the surface) about normal n,
// given the relative index of refraction eta = n1/n2. ok is false on
// total internal reflection.
func refract(dir, n geom.Vec3, eta float64) (geom.Vec3, bool) {
	cosI := -dir.Dot(n)
	sin2T := eta * eta * (1 - cosI*cosI)
	if sin2T > 1 {
		return geom.Vec3{}, false
	}
	cosT := math.Sqrt(1 - sin2T)
	t := dir.Scale(eta).Add(n.Scale(eta*cosI - cosT))
	return t.Normalized(), true
}

func (r RefractiveBRDF) IsDiffuse() bool  { return false }
func (r RefractiveBRDF) IsSpecular() bool { return true }

func (r RefractiveBRDF) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return light.NewVector(out, incident.Len())
}

func (r RefractiveBRDF) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	incomingDir := out.Dir.Neg().Normalized() // direction the light travels, entering the surface
	n := basis.K
	entering := incomingDir.Dot(n) < 0
	if !entering {
		n = n.Neg()
	}
	rays := []SubRay{
		{Ray: geom.Ray{Origin: basis.O, Dir: incomingDir.Reflect(basis.K).Neg()}, IsRefraction: false, Wavelength: -1},
	}
	avgN := r.averageIOR()
	eta := 1 / avgN
	if !entering {
		eta = avgN
	}
	if !r.Dispersive {
		if t, ok := refract(incomingDir, n, eta); ok {
			rays = append(rays, SubRay{Ray: geom.Ray{Origin: basis.O, Dir: t}, IsRefraction: true, Wavelength: -1})
		}
		return rays
	}
	for i := 0; i < r.Medium.IOR.Len(); i++ {
		lambdaN := r.Medium.IOR.At(i)
		e := 1 / lambdaN
		if !entering {
			e = lambdaN
		}
		if t, ok := refract(incomingDir, n, e); ok {
			rays = append(rays, SubRay{Ray: geom.Ray{Origin: basis.O, Dir: t}, IsRefraction: true, Wavelength: i})
		}
	}
	return rays
}

func (r RefractiveBRDF) averageIOR() float64 {
	total := 0.0
	for i := 0; i < r.Medium.IOR.Len(); i++ {
		total += r.Medium.IOR.At(i)
	}
	return total / float64(r.Medium.IOR.Len())
}

func (r RefractiveBRDF) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	cosI := math.Abs(basis.K.Dot(out.Dir.Neg().Normalized()))
	isRefracted := basis.K.Dot(out.Dir) > 0 // exited on opposite side of normal from the view
	result := incident.ChangeIncidentFrame(basis.K)
	for i := range result.Samples {
		n := r.Medium.IOR.At(i)
		rPerp, rPar := medium.FresnelReflectance(cosI, n)
		if isRefracted {
			result.Samples[i] = result.Samples[i].ApplyFresnel(1-rPar, 1-rPerp)
		} else {
			result.Samples[i] = result.Samples[i].ApplyFresnel(rPar, rPerp)
		}
	}
	result.Ray = out
	return result.ChangeReemitedFrame(light.DefaultFrame(out.Dir))
}

func (r RefractiveBRDF) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return nil
}

func (r RefractiveBRDF) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	cosI := math.Abs(basis.K.Dot(photon.Direction.Neg().Normalized()))
	avgN := r.averageIOR()
	rPerp, rPar := medium.FresnelReflectance(cosI, avgN)
	reflectance := (rPerp + rPar) / 2
	out := photon
	entering := photon.Direction.Dot(basis.K) < 0
	n := basis.K
	if !entering {
		n = n.Neg()
	}
	if rng.Float64() < reflectance {
		out.Direction = photon.Direction.Reflect(basis.K).Neg()
		out.Position = basis.O
		out.Normal = basis.K
		return out, true, true
	}
	eta := 1 / avgN
	if !entering {
		eta = avgN
	}
	t, ok := refract(photon.Direction, n, eta)
	if !ok {
		return photon, false, false
	}
	out.Direction = t
	out.Position = basis.O
	out.Normal = basis.K
	return out, true, true
}

func (r RefractiveBRDF) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return spectrum.Zero(ambient.Grid())
}

// AlloyBRDF blends ideal diffuse and ideal specular by the Fresnel
// reflectance itself: near-normal incidence looks mostly diffuse,
// grazing incidence mirrors, matching plastics and varnished alloys.
type AlloyBRDF struct {
	Diffuse  LambertianBRDF
	Specular RegularBRDF
}

func (a AlloyBRDF) IsDiffuse() bool  { return true }
func (a AlloyBRDF) IsSpecular() bool { return true }

func (a AlloyBRDF) fresnelWeight(basis geom.Basis, dir geom.Vec3) float64 {
	cosI := math.Abs(basis.K.Dot(dir.Normalized()))
	avgN := a.Specular.Medium.IOR.At(0)
	rPerp, rPar := medium.FresnelReflectance(cosI, avgN)
	return (rPerp + rPar) / 2
}

func (a AlloyBRDF) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	w := 1 - a.fresnelWeight(basis, out.Dir.Neg())
	return a.Diffuse.DiffuseReemited(basis, uv, incident, out).ScaleAll(w)
}

func (a AlloyBRDF) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return a.Specular.SpecularReemited(basis, uv, incident, out)
}

func (a AlloyBRDF) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	return a.Specular.SpecularSubRays(basis, uv, out)
}

func (a AlloyBRDF) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return a.Diffuse.RandomDiffuseRay(basis, uv, out, nbRays, rng)
}

func (a AlloyBRDF) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	w := a.fresnelWeight(basis, photon.Direction.Neg())
	if rng.Float64() < w {
		return a.Specular.BouncePhoton(basis, uv, photon, rng)
	}
	return a.Diffuse.BouncePhoton(basis, uv, photon, rng)
}

func (a AlloyBRDF) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	w := 1 - a.fresnelWeight(basis, out.Dir.Neg())
	return a.Diffuse.DiffuseReemitedFromAmbient(basis, uv, out, ambient).Scale(w)
}

// MetalW is an anisotropic conductor: full complex Fresnel (using
// medium.K as the extinction coefficient, not just a dielectric IOR),
// with an anisotropic Beckmann-style stretch along the tangent Basis.I
// direction controlled by AlphaU/AlphaV.
type MetalW struct {
	Medium       medium.Medium
	AlphaU       float64
	AlphaV       float64
}

func (m MetalW) IsDiffuse() bool  { return false }
func (m MetalW) IsSpecular() bool { return true }

func (m MetalW) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return light.NewVector(out, incident.Len())
}

func (m MetalW) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	incomingDir := out.Dir.Neg()
	reflected := incomingDir.Reflect(basis.K).Neg()
	return []SubRay{{Ray: geom.Ray{Origin: basis.O, Dir: reflected.Normalized()}, Wavelength: -1}}
}

// conductorReflectance uses the complex-IOR Fresnel formula for normal
// conductors: R = ((n-1)^2+k^2) / ((n+1)^2+k^2) at normal incidence,
// blended toward 1 at grazing angles via the dielectric shape factor.
func conductorReflectance(cosI, n, k float64) float64 {
	n2k2 := n*n + k*k
	normal := (n2k2 - 2*n + 1) / (n2k2 + 2*n + 1)
	grazing := (n2k2*cosI*cosI - 2*n*cosI + 1) / (n2k2*cosI*cosI + 2*n*cosI + 1)
	return clamp01Local(0.5 * (normal + grazing))
}

func clamp01Local(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (m MetalW) anisoFactor(basis geom.Basis, half geom.Vec3) float64 {
	local := basis.ToLocal(half)
	au, av := math.Max(m.AlphaU, 1e-4), math.Max(m.AlphaV, 1e-4)
	cos2 := local.Z * local.Z
	if cos2 <= 0 {
		return 0
	}
	exponent := (local.X*local.X)/(au*au) + (local.Y*local.Y)/(av*av)
	return math.Exp(-exponent/cos2) / (math.Pi * au * av * cos2 * cos2)
}

func (m MetalW) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	// out.Dir and incident.Ray.Dir both already point away from the
	// surface, so the half-vector is their direct sum.
	half := out.Dir.Add(incident.Ray.Dir).Normalized()
	aniso := m.anisoFactor(basis, half)
	cosI := math.Abs(basis.K.Dot(out.Dir.Neg().Normalized()))
	result := incident.ChangeIncidentFrame(basis.K)
	for i := range result.Samples {
		n := m.Medium.IOR.At(i)
		k := m.Medium.K.At(i)
		refl := conductorReflectance(cosI, n, k)
		result.Samples[i] = result.Samples[i].ApplyFresnel(refl, refl)
		result.Samples[i] = result.Samples[i].Scale(aniso)
	}
	result.Ray = out
	return result.ChangeReemitedFrame(light.DefaultFrame(out.Dir))
}

func (m MetalW) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return nil
}

func (m MetalW) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	cosI := math.Abs(basis.K.Dot(photon.Direction.Neg().Normalized()))
	avgRefl := 0.0
	n := m.Medium.IOR.Len()
	for i := 0; i < n; i++ {
		avgRefl += conductorReflectance(cosI, m.Medium.IOR.At(i), m.Medium.K.At(i))
	}
	avgRefl /= float64(n)
	if rng.Float64() > avgRefl {
		return photon, false, false
	}
	out := photon
	out.Radiances = make([]float64, len(photon.Radiances))
	for i, r := range photon.Radiances {
		refl := conductorReflectance(cosI, m.Medium.IOR.At(i), m.Medium.K.At(i))
		out.Radiances[i] = r * refl / math.Max(avgRefl, 1e-6)
	}
	out.Direction = photon.Direction.Reflect(basis.K).Neg()
	out.Position = basis.O
	out.Normal = basis.K
	return out, true, true
}

func (m MetalW) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return spectrum.Zero(ambient.Grid())
}
