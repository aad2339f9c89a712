// Package material implements the BSDF sum type: the capability contract
// (diffuseReemited, specularReemited, specularSubRays, randomDiffuseRay,
// bouncePhoton, diffuseReemitedFromAmbient) and its variants (Lambertian,
// RoughLambertian Oren-Nayar, Regular mirror-like, Beckmann, Refractive
// with optional dispersion, Alloy, anisotropic metal, Layered,
// VarnishedLambertian, Blended, Mapped, ConcentrationMap, Textured,
// TwoSided, Sampled, Depolarized), each evaluated per-wavelength rather
// than as a single RGB return.
package material

import (
	"math"
	"math/rand"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// SubRay is one sampling ray a material asks the renderer to trace,
// together with the per-wavelength weight that should be applied to
// what comes back along it once folded through SpecularReemited.
type SubRay struct {
	Ray          geom.Ray
	IsRefraction bool
	// Wavelength is the single index this ray is restricted to when
	// dispersion splits a refracted bundle into one ray per sample; -1
	// means "carries every wavelength".
	Wavelength int
}

// BSDF is the capability every material variant implements.
type BSDF interface {
	// IsDiffuse / IsSpecular tell renderers which sampling paths to walk;
	// composites OR their children's flags together.
	IsDiffuse() bool
	IsSpecular() bool

	// DiffuseReemited evaluates outgoing radiance along out.Ray given
	// incidence along incident.Ray, for the Lambertian-family
	// reflectance/transmission branches and composites thereof.
	DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector

	// SpecularReemited applies the variant's (R_perp, R_par) — or
	// (T_perp, T_par) on the transmitted branch — to every sample of
	// incident, after reframing both sides to the surface normal.
	SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector

	// SpecularSubRays emits the sampling rays SpecularReemited expects.
	SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay

	// RandomDiffuseRay samples nbRays secondary rays cosine-weighted over
	// the hemisphere (both hemispheres for translucent variants).
	RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray

	// BouncePhoton performs Russian-roulette photon transport; the
	// returned bool is false if the photon was absorbed, and specular
	// reports whether this bounce should be excluded from the global map
	// (only caustic/specular-then-diffuse paths store early).
	BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (result light.Photon, survived bool, specular bool)

	// DiffuseReemitedFromAmbient is the hemispherically integrated
	// response to an isotropic ambient illuminant.
	DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum
}

// cosineSampleHemisphere draws a cosine-weighted direction in the local
// frame where Z is the hemisphere pole (malley's method).
func cosineSampleHemisphere(rng *rand.Rand) geom.Vec3 {
	u1, u2 := rng.Float64(), rng.Float64()
	r := math.Sqrt(u1)
	theta := 2 * math.Pi * u2
	x := r * math.Cos(theta)
	y := r * math.Sin(theta)
	z := math.Sqrt(math.Max(0, 1-u1))
	return geom.Vec3{X: x, Y: y, Z: z}
}

func randomDiffuseRays(basis geom.Basis, n int, lowerHemisphereToo bool, rng *rand.Rand) []geom.Ray {
	rays := make([]geom.Ray, 0, n)
	for i := 0; i < n; i++ {
		local := cosineSampleHemisphere(rng)
		dir := basis.ToWorld(local).Normalized()
		rays = append(rays, geom.Ray{Origin: basis.O, Dir: dir})
		if lowerHemisphereToo {
			localLower := local
			localLower.Z = -localLower.Z
			dirLower := basis.ToWorld(localLower).Normalized()
			rays = append(rays, geom.Ray{Origin: basis.O, Dir: dirLower})
		}
	}
	return rays
}

// spectrumFactors evaluates a spectrum as a plain slice, convenient for
// LightVector.MulSpectrumLike.
func spectrumFactors(s spectrum.Spectrum) []float64 {
	return s.Values()
}
