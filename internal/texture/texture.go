package texture

import (
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// WrapMode controls how a Texture resolves UV coordinates outside [0,1).
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapMirror
	WrapClamp
)

// AlphaMode names how a texture's alpha channel is to be treated.
// Texture.Alpha stores it, but Sample, SpectrumAt and NormalAt do not
// read it: no alpha channel is applied in any mode.
type AlphaMode int

const (
	AlphaNone AlphaMode = iota
	AlphaStraight
	AlphaPremultiplied
)

// Texture wraps an Image with tiling policy and two spectral resolution
// strategies: direct per-wavelength lookup (for multispectral source
// textures) or 3-channel-to-N upsampling (for ordinary RGB image
// assets).
type Texture struct {
	Image     *Image
	WrapU     WrapMode
	WrapV     WrapMode
	Alpha     AlphaMode
	Grid      *spectrum.Grid
	Spectral  bool // true: Image.Channels is already per-wavelength
	Upsample  RGBToSpectrum
}

// RGBToSpectrum upsamples a 3-channel (r,g,b) sample into a full
// spectrum.Spectrum over Grid; a simple, smooth and widely used choice
// is a weighted sum of three fixed basis spectra (not provided here —
// callers supply one tailored to their primaries).
type RGBToSpectrum func(grid *spectrum.Grid, r, g, b float64) spectrum.Spectrum

func wrapCoord(c float64, mode WrapMode) float64 {
	switch mode {
	case WrapClamp:
		return clamp(c, 0, 1)
	case WrapMirror:
		c = math.Mod(c, 2)
		if c < 0 {
			c += 2
		}
		if c > 1 {
			c = 2 - c
		}
		return c
	default: // WrapRepeat
		c = math.Mod(c, 1)
		if c < 0 {
			c += 1
		}
		return c
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sample returns the raw channel values at (u,v) after applying the
// texture's wrap policy and nearest-pixel lookup.
func (t *Texture) Sample(u, v float64) []float64 {
	u = wrapCoord(u, t.WrapU)
	v = wrapCoord(v, t.WrapV)
	x := int(u * float64(t.Image.Width))
	y := int((1 - v) * float64(t.Image.Height))
	if x >= t.Image.Width {
		x = t.Image.Width - 1
	}
	if y >= t.Image.Height {
		y = t.Image.Height - 1
	}
	return t.Image.At(x, y)
}

// SpectrumAt resolves a full Spectrum at (u,v): a direct per-wavelength
// lookup if Spectral, or an RGB-to-spectrum upsample otherwise.
func (t *Texture) SpectrumAt(u, v float64) (spectrum.Spectrum, error) {
	raw := t.Sample(u, v)
	if t.Spectral {
		return spectrum.FromValues(t.Grid, raw)
	}
	r, g, b := raw[0], raw[1], raw[2]
	return t.Upsample(t.Grid, r, g, b), nil
}

// NormalAt implements shape.NormalSampler: it treats the texture's first
// three channels as a tangent-space normal encoded in [0,1] (the common
// "normal map" convention, decoded to [-1,1]).
func (t *Texture) NormalAt(u, v float64) geom.Vec3 {
	raw := t.Sample(u, v)
	return geom.Vec3{X: raw[0]*2 - 1, Y: raw[1]*2 - 1, Z: raw[2]*2 - 1}.Normalized()
}
