package material

import (
	"math"
	"math/rand"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spectrum"
	"github.com/thomasrubini/specrender/internal/texture"
)

// AlbedoSource supplies a per-point spectrum, used by Mapped/Textured to
// look up a surface-varying reflectance instead of a single constant.
type AlbedoSource interface {
	SpectrumAt(u, v float64) (spectrum.Spectrum, error)
}

// Textured substitutes a texture lookup for a LambertianBRDF's constant
// reflectance, reusing the rest of the Lambertian evaluation (cosine
// term, random-ray sampling, photon bounce). Per-fragment sampling goes
// through texture.Texture.SpectrumAt so the lookup yields a full
// spectrum rather than an RGB triple.
type Textured struct {
	Source AlbedoSource
	Grid   *spectrum.Grid
}

func (t Textured) albedoOrFallback(uv geom.Vec2) spectrum.Spectrum {
	s, err := t.Source.SpectrumAt(uv.U, uv.V)
	if err != nil {
		return spectrum.Zero(t.Grid)
	}
	return s
}

func (t Textured) IsDiffuse() bool  { return true }
func (t Textured) IsSpecular() bool { return false }

func (t Textured) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	lamb := NewLambertianBRDF(t.albedoOrFallback(uv))
	return lamb.DiffuseReemited(basis, uv, incident, out)
}

func (t Textured) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return light.NewVector(out, incident.Len())
}

func (t Textured) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay { return nil }

func (t Textured) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return randomDiffuseRays(basis, nbRays, false, rng)
}

func (t Textured) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	lamb := NewLambertianBRDF(t.albedoOrFallback(uv))
	return lamb.BouncePhoton(basis, uv, photon, rng)
}

func (t Textured) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return ambient.Mul(t.albedoOrFallback(uv)).Scale(1 / math.Pi)
}

// Mapped picks between two child BSDFs per-point using the mask
// texture's first channel as a 0/1 mask (a value >= 0.5 selects A,
// anything lower or an empty sample selects B), the discrete
// counterpart of Blended's constant weight.
type Mapped struct {
	Mask   *texture.Texture
	A, B   BSDF
}

func (m Mapped) pick(uv geom.Vec2) BSDF {
	v := m.Mask.Sample(uv.U, uv.V)
	if len(v) > 0 && v[0] >= 0.5 {
		return m.A
	}
	return m.B
}

func (m Mapped) IsDiffuse() bool  { return m.A.IsDiffuse() || m.B.IsDiffuse() }
func (m Mapped) IsSpecular() bool { return m.A.IsSpecular() || m.B.IsSpecular() }

func (m Mapped) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return m.pick(uv).DiffuseReemited(basis, uv, incident, out)
}

func (m Mapped) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return m.pick(uv).SpecularReemited(basis, uv, incident, out)
}

func (m Mapped) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	return m.pick(uv).SpecularSubRays(basis, uv, out)
}

func (m Mapped) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return m.pick(uv).RandomDiffuseRay(basis, uv, out, nbRays, rng)
}

func (m Mapped) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	return m.pick(uv).BouncePhoton(basis, uv, photon, rng)
}

func (m Mapped) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return m.pick(uv).DiffuseReemitedFromAmbient(basis, uv, out, ambient)
}

// ConcentrationMap reads a per-point scalar concentration c in [0,1]
// from a texture's first channel and mixes the reflectance spectra of
// two Lambertian materials linearly by it, c*Full + (1-c)*Empty (e.g.
// pigment concentration over a substrate). The mix is a plain linear
// blend of reflectances; no Kubelka-Munk absorption/scattering mixing
// is done.
type ConcentrationMap struct {
	Concentration *texture.Texture
	Full, Empty   LambertianBRDF
}

func (c ConcentrationMap) mix(uv geom.Vec2) LambertianBRDF {
	v := c.Concentration.Sample(uv.U, uv.V)
	t := 0.0
	if len(v) > 0 {
		t = v[0]
	}
	reflectance := c.Full.Medium.Reflectance.Scale(t).Add(c.Empty.Medium.Reflectance.Scale(1 - t))
	mixed := c.Full.Medium
	mixed.Reflectance = reflectance
	return LambertianBRDF{Medium: mixed}
}

func (c ConcentrationMap) IsDiffuse() bool  { return true }
func (c ConcentrationMap) IsSpecular() bool { return false }

func (c ConcentrationMap) DiffuseReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return c.mix(uv).DiffuseReemited(basis, uv, incident, out)
}

func (c ConcentrationMap) SpecularReemited(basis geom.Basis, uv geom.Vec2, incident light.Vector, out geom.Ray) light.Vector {
	return light.NewVector(out, incident.Len())
}

func (c ConcentrationMap) SpecularSubRays(basis geom.Basis, uv geom.Vec2, out geom.Ray) []SubRay {
	return nil
}

func (c ConcentrationMap) RandomDiffuseRay(basis geom.Basis, uv geom.Vec2, out geom.Ray, nbRays int, rng *rand.Rand) []geom.Ray {
	return randomDiffuseRays(basis, nbRays, false, rng)
}

func (c ConcentrationMap) BouncePhoton(basis geom.Basis, uv geom.Vec2, photon light.Photon, rng *rand.Rand) (light.Photon, bool, bool) {
	return c.mix(uv).BouncePhoton(basis, uv, photon, rng)
}

func (c ConcentrationMap) DiffuseReemitedFromAmbient(basis geom.Basis, uv geom.Vec2, out geom.Ray, ambient spectrum.Spectrum) spectrum.Spectrum {
	return c.mix(uv).DiffuseReemitedFromAmbient(basis, uv, out, ambient)
}
