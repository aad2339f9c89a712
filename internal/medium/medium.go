// Package medium implements the optical description of the space on one
// side of a surface: lambertian diffuse reflectance/transmittance,
// Fresnel complex refractive index, Kubelka-Munk pigment coefficients,
// and an opacity flag, plus the transportLight/transportPhoton
// operations that mutate a LightVector/Photon as it crosses a medium.
package medium

import (
	"math"
	"math/rand"

	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// Medium cohabits up to four optical models; Has* flags indicate which
// are populated.
type Medium struct {
	HasLambertian bool
	Reflectance   spectrum.Spectrum // r(lambda)
	Transmittance spectrum.Spectrum // t(lambda)

	HasFresnel bool
	IOR        spectrum.Spectrum // n(lambda)
	K          spectrum.Spectrum // k(lambda) = n(lambda)*kappa(lambda), extinction

	HasKubelkaMunk bool
	K_KM           spectrum.Spectrum // Kubelka-Munk absorption coefficient
	S_KM           spectrum.Spectrum // Kubelka-Munk scattering coefficient

	Opaque bool
}

// Vacuum is a medium with no absorption or scattering (outer medium of
// most objects facing open space).
func Vacuum() Medium { return Medium{} }

// TransportLight mutates lv (a copy is returned) by propagating it
// across distance through m: Beer-Lambert absorption for the Fresnel
// case, multiplicative t(lambda) for lambertian, or zeroing for opaque.
func (m Medium) TransportLight(lv light.Vector, distance float64) light.Vector {
	if m.Opaque {
		return lv.ScaleAll(0)
	}
	out := lv.Clone()
	if m.HasFresnel {
		for i := range out.Samples {
			// Beer-Lambert: I = I0 * exp(-4*pi*k*distance/lambda). k here is
			// the stored extinction n*kappa; lambda comes from the grid the
			// spectrum was built against.
			lambda := m.K.Grid().At(i)
			absorb := beerLambert(m.K.At(i), lambda, distance)
			out.Samples[i] = out.Samples[i].Scale(absorb)
		}
	}
	if m.HasLambertian {
		for i := range out.Samples {
			out.Samples[i] = out.Samples[i].Scale(m.Transmittance.At(i))
		}
	}
	return out
}

func beerLambert(k, lambdaNM, distance float64) float64 {
	// k is n*kappa (§3).
	const pi4 = 4 * math.Pi
	return math.Exp(-pi4 * k * distance / lambdaNM)
}

// TransportPhoton applies the same radiance transport as TransportLight
// and then Russian-roulette-absorbs the photon using its mean radiance
// as the survival probability.
func (m Medium) TransportPhoton(p light.Photon, distance float64, rng *rand.Rand) (light.Photon, bool) {
	if m.Opaque {
		return p, false
	}
	out := p
	if m.HasFresnel {
		out.Radiances = make([]float64, len(p.Radiances))
		for i, r := range p.Radiances {
			lambda := m.K.Grid().At(i)
			out.Radiances[i] = r * beerLambert(m.K.At(i), lambda, distance)
		}
	}
	if m.HasLambertian {
		if out.Radiances == nil {
			out.Radiances = make([]float64, len(p.Radiances))
			copy(out.Radiances, p.Radiances)
		}
		for i := range out.Radiances {
			out.Radiances[i] *= m.Transmittance.At(i)
		}
	}
	survival := out.MeanRadiance()
	if survival <= 0 {
		return out, false
	}
	if survival > 1 {
		survival = 1
	}
	if rng.Float64() > survival {
		return out, false
	}
	return out.Scale(1 / survival), true
}
