package medium

import "math"

// KubelkaMunkReflectance computes the classical Kubelka-Munk reflectance
// R_inf of an optically thick (opaque) layer given absorption K and
// scattering S coefficients at one wavelength.
func KubelkaMunkReflectance(k, s float64) float64 {
	if s == 0 {
		return 0
	}
	a := 1 + k/s
	b := math.Sqrt(math.Max(a*a-1, 0))
	return a - b
}

// KubelkaMunkReflectanceSpectrum evaluates KubelkaMunkReflectance across every
// sample of m's K_KM/S_KM spectra.
func (m Medium) KubelkaMunkReflectanceSpectrum() []float64 {
	n := m.K_KM.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = KubelkaMunkReflectance(m.K_KM.At(i), m.S_KM.At(i))
	}
	return out
}

// FresnelReflectance computes the classical Fresnel (R_perp, R_par) pair
// for unpolarized incidence at angle cosThetaI onto a medium of real
// refractive index n (kappa=0 case). Results are clamped to [0,1] to
// absorb floating-point drift.
func FresnelReflectance(cosThetaI, n float64) (rPerp, rPar float64) {
	cosThetaI = math.Abs(cosThetaI)
	sinThetaI := math.Sqrt(math.Max(0, 1-cosThetaI*cosThetaI))
	sinThetaT := sinThetaI / n
	if sinThetaT >= 1 {
		return 1, 1 // total internal reflection
	}
	cosThetaT := math.Sqrt(math.Max(0, 1-sinThetaT*sinThetaT))

	rPerp = sq((cosThetaI - n*cosThetaT) / (cosThetaI + n*cosThetaT))
	rPar = sq((n*cosThetaI - cosThetaT) / (n*cosThetaI + cosThetaT))
	return clamp01(rPerp), clamp01(rPar)
}

func sq(v float64) float64 { return v * v }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
