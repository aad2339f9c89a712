// Package spectrum holds the process-wide wavelength grid and the dense
// Spectrum vector type indexed against it.
package spectrum

import (
	"fmt"
	"sort"
)

// Grid is a sorted list of sample wavelengths, in nanometers. It is set
// once before any Spectrum is created; mutating it afterwards is
// undefined, per the data model's lifecycle rule.
type Grid struct {
	wavelengths []float64
}

// NewGrid builds a Grid from an unsorted list of positive wavelengths in
// nanometers. It copies the slice and sorts it ascending.
func NewGrid(wavelengthsNM []float64) (*Grid, error) {
	if len(wavelengthsNM) == 0 {
		return nil, fmt.Errorf("spectrum: grid must have at least one wavelength")
	}
	cp := make([]float64, len(wavelengthsNM))
	copy(cp, wavelengthsNM)
	sort.Float64s(cp)
	for i, w := range cp {
		if w <= 0 {
			return nil, fmt.Errorf("spectrum: wavelength %d (%gnm) is not positive", i, w)
		}
	}
	for i := 1; i < len(cp); i++ {
		if cp[i] == cp[i-1] {
			return nil, fmt.Errorf("spectrum: duplicate wavelength %gnm", cp[i])
		}
	}
	return &Grid{wavelengths: cp}, nil
}

// Len returns the number of wavelength samples, N.
func (g *Grid) Len() int { return len(g.wavelengths) }

// At returns the wavelength (nm) of sample i.
func (g *Grid) At(i int) float64 { return g.wavelengths[i] }

// IndexFloor returns the index of the last grid wavelength that is <= lambda,
// following the nearest-floor convention required by TESTABLE PROPERTIES §8.1.
// If lambda is below the first wavelength, index 0 is returned.
func (g *Grid) IndexFloor(lambda float64) int {
	i := sort.Search(len(g.wavelengths), func(i int) bool { return g.wavelengths[i] > lambda })
	if i == 0 {
		return 0
	}
	return i - 1
}

// Index560 returns the grid index closest to 560nm, used by the
// normalize-at-560nm convention.
func (g *Grid) Index560() int {
	best := 0
	bestDist := -1.0
	for i, w := range g.wavelengths {
		d := w - 560
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
