// Package colorhandler implements the output-channel projections a
// camera can write a render through: SpectrumColor (raw per-wavelength
// passthrough), SimpleRGB (first three bands as B,G,R), RGB (full
// CIE-observer projection plus a configurable gain matrix), CIE (XYZ
// with chromatic adaptation), Polarization/LinearPolarizer
// (Stokes-derived visualizations), and Spectrophotometer (an
// accumulating measurement device with an explicit Finalize, per
// DESIGN.md's Open Question #2). Each projection produces its own
// output channel set rather than a fixed uint8 RGB triple.
package colorhandler

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// Handler is the capability every color projection implements: name its
// output channels, and resolve a fully-transported LightVector at one
// pixel into those channel values.
type Handler interface {
	Channels() []string
	Resolve(lv light.Vector) []float64
}

// SpectrumColor passes every wavelength sample's radiance straight
// through, channel-named by its wavelength in nanometers.
type SpectrumColor struct {
	Grid *spectrum.Grid
}

func (s SpectrumColor) Channels() []string {
	names := make([]string, s.Grid.Len())
	for i := range names {
		names[i] = fmt.Sprintf("%g", s.Grid.At(i))
	}
	return names
}

func (s SpectrumColor) Resolve(lv light.Vector) []float64 {
	out := make([]float64, len(lv.Samples))
	for i, d := range lv.Samples {
		out[i] = d.Radiance
	}
	return out
}

// SimpleRGB reuses the first three spectral samples directly as B,G,R
// without requiring a full observer model.
type SimpleRGB struct{}

func (s SimpleRGB) Channels() []string { return []string{"R", "G", "B"} }

func (s SimpleRGB) Resolve(lv light.Vector) []float64 {
	n := len(lv.Samples)
	get := func(i int) float64 {
		if i < n {
			return lv.Samples[i].Radiance
		}
		return 0
	}
	return []float64{get(2), get(1), get(0)}
}

// cieObserver evaluates the CIE 1931 standard observer color-matching
// functions using the Wyman/Sloan/Shirley multi-lobe Gaussian fit, a
// closed-form approximation accurate to within the grid's sampling
// error and independent of the wavelength grid's exact spacing.
func cieObserver(lambdaNM float64) (x, y, z float64) {
	g := func(t, mu, s1, s2 float64) float64 {
		s := s1
		if t > mu {
			s = s2
		}
		v := (t - mu) / s
		return math.Exp(-0.5 * v * v)
	}
	x = 1.056*g(lambdaNM, 599.8, 37.9, 31.0) + 0.362*g(lambdaNM, 442.0, 16.0, 26.7) - 0.065*g(lambdaNM, 501.1, 20.4, 26.2)
	y = 0.821*g(lambdaNM, 568.8, 46.9, 40.5) + 0.286*g(lambdaNM, 530.9, 16.3, 31.1)
	z = 1.217*g(lambdaNM, 437.0, 11.8, 36.0) + 0.681*g(lambdaNM, 459.0, 26.0, 13.8)
	return
}

// XYZ returns the CIE XYZ tristimulus values of a per-wavelength
// radiance spectrum (sampled directly at the grid's wavelengths, the
// discrete-sum approximation to the continuous integral).
func XYZ(grid *spectrum.Grid, radiance []float64) (X, Y, Z float64) {
	for i, r := range radiance {
		x, y, z := cieObserver(grid.At(i))
		X += r * x
		Y += r * y
		Z += r * z
	}
	return
}

// AdaptationMatrix names one of the four chromatic-adaptation cone
// transforms supported, kept as distinct matrices rather than collapsed
// to one (see DESIGN.md).
type AdaptationMatrix int

const (
	AdaptXYZScaling AdaptationMatrix = iota
	AdaptBradford
	AdaptVonKries
	AdaptCIECAT02
)

func (m AdaptationMatrix) matrix() [3][3]float64 {
	switch m {
	case AdaptBradford:
		return [3][3]float64{
			{0.8951, 0.2664, -0.1614},
			{-0.7502, 1.7135, 0.0367},
			{0.0389, -0.0685, 1.0296},
		}
	case AdaptVonKries:
		return [3][3]float64{
			{0.40024, 0.70760, -0.08081},
			{-0.22630, 1.16532, 0.04570},
			{0.0, 0.0, 0.91822},
		}
	case AdaptCIECAT02:
		return [3][3]float64{
			{0.7328, 0.4296, -0.1624},
			{-0.7036, 1.6975, 0.0061},
			{0.0030, 0.0136, 0.9834},
		}
	default: // AdaptXYZScaling
		return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
}

func mulMatVec(m [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func invert3x3(m [3][3]float64) [3][3]float64 {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if det == 0 {
		return m
	}
	inv := 1 / det
	return [3][3]float64{
		{(m[1][1]*m[2][2] - m[1][2]*m[2][1]) * inv, (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * inv, (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * inv},
		{(m[1][2]*m[2][0] - m[1][0]*m[2][2]) * inv, (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * inv, (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * inv},
		{(m[1][0]*m[2][1] - m[1][1]*m[2][0]) * inv, (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * inv, (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * inv},
	}
}

// Adapt applies the chromatic-adaptation transform m, mapping XYZ seen
// under srcWhite to the equivalent XYZ under dstWhite.
func Adapt(m AdaptationMatrix, xyz, srcWhite, dstWhite [3]float64) [3]float64 {
	mat := m.matrix()
	inv := invert3x3(mat)
	srcCone := mulMatVec(mat, srcWhite)
	dstCone := mulMatVec(mat, dstWhite)
	cone := mulMatVec(mat, xyz)
	scaled := [3]float64{
		cone[0] * dstCone[0] / srcCone[0],
		cone[1] * dstCone[1] / srcCone[1],
		cone[2] * dstCone[2] / srcCone[2],
	}
	return mulMatVec(inv, scaled)
}

// D65White is the CIE standard illuminant D65 white point in XYZ.
var D65White = [3]float64{0.95047, 1.0, 1.08883}

// CIE projects a LightVector to XYZ tristimulus values, optionally
// chromatically adapting from SourceWhite to TargetWhite.
type CIE struct {
	Grid         *spectrum.Grid
	Adaptation   AdaptationMatrix
	SourceWhite  [3]float64
	TargetWhite  [3]float64
	NoAdaptation bool
}

func (c CIE) Channels() []string { return []string{"X", "Y", "Z"} }

func (c CIE) Resolve(lv light.Vector) []float64 {
	radiance := make([]float64, len(lv.Samples))
	for i, d := range lv.Samples {
		radiance[i] = d.Radiance
	}
	x, y, z := XYZ(c.Grid, radiance)
	if c.NoAdaptation {
		return []float64{x, y, z}
	}
	src, dst := c.SourceWhite, c.TargetWhite
	if src == ([3]float64{}) {
		src = D65White
	}
	if dst == ([3]float64{}) {
		dst = D65White
	}
	adapted := Adapt(c.Adaptation, [3]float64{x, y, z}, src, dst)
	return []float64{adapted[0], adapted[1], adapted[2]}
}

// xyzToSRGB is the standard linear-XYZ-to-linear-sRGB matrix.
var xyzToSRGB = [3][3]float64{
	{3.2406, -1.5372, -0.4986},
	{-0.9689, 1.8758, 0.0415},
	{0.0557, -0.2040, 1.0570},
}

// RGB projects through the CIE observer and then a configurable Gain
// matrix (defaulting to the standard linear-sRGB primaries).
type RGB struct {
	Grid *spectrum.Grid
	Gain [3][3]float64 // zero value uses xyzToSRGB
}

func (r RGB) Channels() []string { return []string{"R", "G", "B"} }

func (r RGB) Resolve(lv light.Vector) []float64 {
	radiance := make([]float64, len(lv.Samples))
	for i, d := range lv.Samples {
		radiance[i] = d.Radiance
	}
	x, y, z := XYZ(r.Grid, radiance)
	gain := r.Gain
	if gain == ([3][3]float64{}) {
		gain = xyzToSRGB
	}
	rgb := mulMatVec(gain, [3]float64{x, y, z})
	return []float64{rgb[0], rgb[1], rgb[2]}
}

// Polarization resolves the radiance summed across all samples, plus the
// degree of linear polarization and polarization angle (relative to
// lv.Frame) of the linear0/linear45 components summed across all samples.
type Polarization struct{}

func (p Polarization) Channels() []string { return []string{"radiance", "DOLP", "angle"} }

func (p Polarization) Resolve(lv light.Vector) []float64 {
	var radiance, linear0, linear45 float64
	for _, d := range lv.Samples {
		radiance += d.Radiance
		linear0 += d.Linear0
		linear45 += d.Linear45
	}
	dolp := 0.0
	if radiance > 0 {
		dolp = math.Hypot(linear0, linear45) / radiance
	}
	angle := 0.5 * math.Atan2(linear45, linear0)
	return []float64{radiance, dolp, angle}
}

// LinearPolarizer wraps another Handler, first passing every sample
// through an ideal linear polarizer tilted at Theta radians (the
// Data.ApplyLinearPolarizer Malus-law operation).
type LinearPolarizer struct {
	Theta float64
	Inner Handler
}

func (l LinearPolarizer) Channels() []string { return l.Inner.Channels() }

func (l LinearPolarizer) Resolve(lv light.Vector) []float64 {
	filtered := lv.Clone()
	for i, d := range filtered.Samples {
		filtered.Samples[i] = d.ApplyLinearPolarizer(l.Theta)
	}
	return l.Inner.Resolve(filtered)
}

// Spectrophotometer accumulates the mean spectrum seen across many
// Measure calls (e.g. every pixel of a region of interest) and reports
// it only when Finalize is explicitly invoked — not via a destructor or
// finalizer, per DESIGN.md's Open Question #2, since Go has no
// deterministic object destruction and tying I/O to GC would make
// output timing nondeterministic.
type Spectrophotometer struct {
	Grid *spectrum.Grid

	mu    sync.Mutex
	sum   []float64
	count int
}

func NewSpectrophotometer(grid *spectrum.Grid) *Spectrophotometer {
	return &Spectrophotometer{Grid: grid, sum: make([]float64, grid.Len())}
}

// Measure folds one more LightVector's radiance into the running mean.
func (s *Spectrophotometer) Measure(lv light.Vector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range lv.Samples {
		s.sum[i] += d.Radiance
	}
	s.count++
}

// Finalize writes the accumulated mean spectrum as "wavelength,value"
// lines to w and resets the accumulator.
func (s *Spectrophotometer) Finalize(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return nil
	}
	for i, total := range s.sum {
		if _, err := fmt.Fprintf(w, "%g,%g\n", s.Grid.At(i), total/float64(s.count)); err != nil {
			return fmt.Errorf("colorhandler: write spectrophotometer line: %w", err)
		}
	}
	for i := range s.sum {
		s.sum[i] = 0
	}
	s.count = 0
	return nil
}
