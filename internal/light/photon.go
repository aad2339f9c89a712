package light

import "github.com/thomasrubini/specrender/internal/geom"

// Photon is a MultispectralPhoton: N radiances plus a position,
// propagation direction, surface normal at its last interaction, and
// travelled distance. Used only by photon mapping (§4.4).
type Photon struct {
	Position  geom.Vec3
	Direction geom.Vec3
	Normal    geom.Vec3
	Distance  float64
	Radiances []float64
}

// NewPhoton allocates a Photon with n zeroed radiance samples.
func NewPhoton(n int) Photon {
	return Photon{Radiances: make([]float64, n)}
}

// TotalRadiance sums the photon's per-wavelength radiances.
func (p Photon) TotalRadiance() float64 {
	var total float64
	for _, r := range p.Radiances {
		total += r
	}
	return total
}

// MeanRadiance is TotalRadiance divided by the sample count.
func (p Photon) MeanRadiance() float64 {
	if len(p.Radiances) == 0 {
		return 0
	}
	return p.TotalRadiance() / float64(len(p.Radiances))
}

// Scale multiplies every radiance sample by c, returning a new Photon.
func (p Photon) Scale(c float64) Photon {
	out := p
	out.Radiances = make([]float64, len(p.Radiances))
	for i, r := range p.Radiances {
		out.Radiances[i] = r * c
	}
	return out
}
