package spectrum

import "fmt"

// Spectrum is a dense real vector over a Grid. Its length always equals
// the grid's length; this invariant is enforced at construction and by
// every operation below (mismatched grids panic, since they indicate a
// programming error rather than recoverable bad input).
type Spectrum struct {
	grid   *Grid
	values []float64
}

// Zero returns a Spectrum of all zeros over g.
func Zero(g *Grid) Spectrum {
	return Spectrum{grid: g, values: make([]float64, g.Len())}
}

// Constant returns a Spectrum with every sample set to v.
func Constant(g *Grid, v float64) Spectrum {
	s := Zero(g)
	for i := range s.values {
		s.values[i] = v
	}
	return s
}

// FromValues copies vals (which must have length g.Len()) into a new Spectrum.
func FromValues(g *Grid, vals []float64) (Spectrum, error) {
	if len(vals) != g.Len() {
		return Spectrum{}, fmt.Errorf("spectrum: expected %d values, got %d", g.Len(), len(vals))
	}
	s := Zero(g)
	copy(s.values, vals)
	return s, nil
}

func (s Spectrum) mustMatch(o Spectrum) {
	if s.grid != o.grid {
		panic("spectrum: operands use different wavelength grids")
	}
}

// Len returns N, the number of samples (equal to the grid's length).
func (s Spectrum) Len() int { return len(s.values) }

// Grid returns the wavelength grid this spectrum is indexed against.
func (s Spectrum) Grid() *Grid { return s.grid }

// At returns the i'th sample.
func (s Spectrum) At(i int) float64 { return s.values[i] }

// Set mutates the i'th sample in place.
func (s Spectrum) Set(i int, v float64) { s.values[i] = v }

// ValueAt returns the value for wavelength lambda using the nearest-floor
// convention: exact grid hits return the stored value, and values between
// grid points return the value at the immediately lower grid point.
func (s Spectrum) ValueAt(lambda float64) float64 {
	return s.values[s.grid.IndexFloor(lambda)]
}

// Add returns s + o as a new Spectrum.
func (s Spectrum) Add(o Spectrum) Spectrum {
	s.mustMatch(o)
	r := Zero(s.grid)
	for i := range r.values {
		r.values[i] = s.values[i] + o.values[i]
	}
	return r
}

// Mul returns the element-wise product s .* o as a new Spectrum.
func (s Spectrum) Mul(o Spectrum) Spectrum {
	s.mustMatch(o)
	r := Zero(s.grid)
	for i := range r.values {
		r.values[i] = s.values[i] * o.values[i]
	}
	return r
}

// Scale returns s * c as a new Spectrum.
func (s Spectrum) Scale(c float64) Spectrum {
	r := Zero(s.grid)
	for i := range r.values {
		r.values[i] = s.values[i] * c
	}
	return r
}

// Sum returns the sum of all samples.
func (s Spectrum) Sum() float64 {
	var total float64
	for _, v := range s.values {
		total += v
	}
	return total
}

// Max returns the largest sample value.
func (s Spectrum) Max() float64 {
	m := s.values[0]
	for _, v := range s.values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// NormalizeMax returns a copy scaled so the largest sample is 1. A
// spectrum that is identically zero is returned unchanged.
func (s Spectrum) NormalizeMax() Spectrum {
	m := s.Max()
	if m == 0 {
		return s
	}
	return s.Scale(1 / m)
}

// NormalizeAt560 returns a copy scaled so the sample nearest 560nm is 1.
func (s Spectrum) NormalizeAt560() Spectrum {
	v := s.values[s.grid.Index560()]
	if v == 0 {
		return s
	}
	return s.Scale(1 / v)
}

// NormalizePower returns a copy scaled so the samples sum to 1.
func (s Spectrum) NormalizePower() Spectrum {
	total := s.Sum()
	if total == 0 {
		return s
	}
	return s.Scale(1 / total)
}

// Values returns a defensive copy of the underlying sample slice.
func (s Spectrum) Values() []float64 {
	cp := make([]float64, len(s.values))
	copy(cp, s.values)
	return cp
}
