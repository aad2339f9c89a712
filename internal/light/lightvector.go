package light

import (
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
)

// Vector is a ray, a propagation distance, and N Data entries in
// canonical ascending-index order matching the wavelength grid. The
// polarization reference frame is tracked explicitly as the unit vector
// currently defining "0 degrees".
type Vector struct {
	Ray      geom.Ray
	Distance float64
	Samples  []Data
	Frame    geom.Vec3 // unit vector defining the 0-degree polarization axis
}

// NewVector allocates a Vector with n zeroed samples along ray r, with
// the reference frame defaulting to world-Z (or world-X if the ray is
// nearly parallel to Z), matching source incidentLight's convention.
func NewVector(r geom.Ray, n int) Vector {
	return Vector{Ray: r, Samples: make([]Data, n), Frame: DefaultFrame(r.Dir)}
}

// DefaultFrame picks world-Z as the polarization reference unless the
// ray runs nearly parallel to Z, in which case world-X is used instead.
func DefaultFrame(dir geom.Vec3) geom.Vec3 {
	z := geom.Vec3{X: 0, Y: 0, Z: 1}
	if math.Abs(dir.Normalized().Dot(z)) > 0.99 {
		return geom.Vec3{X: 1, Y: 0, Z: 0}
	}
	return z
}

// Len returns N, the number of spectral samples.
func (v Vector) Len() int { return len(v.Samples) }

// Clone returns a deep copy (the Samples slice is not shared).
func (v Vector) Clone() Vector {
	cp := make([]Data, len(v.Samples))
	copy(cp, v.Samples)
	return Vector{Ray: v.Ray, Distance: v.Distance, Samples: cp, Frame: v.Frame}
}

// ScaleAll multiplies every sample's radiance+polarization by c.
func (v Vector) ScaleAll(c float64) Vector {
	out := v.Clone()
	for i := range out.Samples {
		out.Samples[i] = out.Samples[i].Scale(c)
	}
	return out
}

// MulSpectrumLike multiplies each sample's radiance by the corresponding
// per-wavelength factor (e.g. a medium's transmittance or reflectance),
// leaving polarization components scaled by the same factor.
func (v Vector) MulSpectrumLike(factors []float64) Vector {
	out := v.Clone()
	for i := range out.Samples {
		out.Samples[i] = out.Samples[i].Scale(factors[i])
	}
	return out
}

// reframeAngle returns the rotation needed to bring the current Frame
// onto newFrame, projected into the plane orthogonal to the propagation
// direction dir.
func reframeAngle(dir, oldFrame, newFrame geom.Vec3) float64 {
	basis := geom.BasisFromNormal(geom.Vec3{}, dir)
	oldLocal := basis.ToLocal(oldFrame)
	newLocal := basis.ToLocal(newFrame)
	a1 := math.Atan2(oldLocal.Y, oldLocal.X)
	a2 := math.Atan2(newLocal.Y, newLocal.X)
	return a2 - a1
}

// ChangeIncidentFrame re-expresses the polarization state relative to
// newFrame, for a Vector that is propagating toward a surface (incident).
func (v Vector) ChangeIncidentFrame(newFrame geom.Vec3) Vector {
	alpha := reframeAngle(v.Ray.Dir, v.Frame, newFrame)
	out := v.Clone()
	for i := range out.Samples {
		out.Samples[i] = out.Samples[i].Rotate(alpha)
	}
	out.Frame = newFrame
	return out
}

// ChangeReemitedFrame is ChangeIncidentFrame's mirror image for a Vector
// propagating away from a surface (reemited); it differs by a Flip
// since incident and reemited directions are conventionally opposite.
func (v Vector) ChangeReemitedFrame(newFrame geom.Vec3) Vector {
	alpha := reframeAngle(v.Ray.Dir, v.Frame, newFrame)
	out := v.Clone()
	for i := range out.Samples {
		out.Samples[i] = out.Samples[i].Rotate(alpha).Flip()
	}
	out.Frame = newFrame
	return out
}

// Add returns a new Vector holding the sample-wise sum of v and o (v
// itself is not modified); both must have the same length.
func (v Vector) Add(o Vector) Vector {
	out := v.Clone()
	for i := range out.Samples {
		out.Samples[i].Radiance += o.Samples[i].Radiance
		out.Samples[i].Linear0 += o.Samples[i].Linear0
		out.Samples[i].Linear45 += o.Samples[i].Linear45
		out.Samples[i].Circular += o.Samples[i].Circular
	}
	return out
}

// TotalRadiance sums radiance across all samples (used by photon-power
// bookkeeping and Russian-roulette survival probabilities).
func (v Vector) TotalRadiance() float64 {
	var total float64
	for _, s := range v.Samples {
		total += s.Radiance
	}
	return total
}
