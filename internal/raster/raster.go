// Package raster implements the per-camera output Image buffer: a
// multichannel floating-point raster (reusing texture.Image, since a
// render target and a sampled texture are both just "a raster of H*W
// pixels, each a fixed-length float vector with named channels") plus
// the load/save boundary to the image codec and an atomic-checkpoint
// discipline: writes go to a temp file and get renamed into place, so a
// crash mid-write never leaves a corrupt file on disk.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/thomasrubini/specrender/internal/texture"
)

// Buffer is the mutable per-camera raster a renderer writes into. Pixel
// writes are partitioned by task unit, so Set only takes the read side of
// mu and writers never wait on each other; Save takes the write side, so
// a worker cannot mutate a pixel while a checkpoint walks the raster.
type Buffer struct {
	Img *texture.Image

	mu sync.RWMutex
}

// NewBuffer allocates a zeroed buffer with the given channel names.
func NewBuffer(width, height int, channels []string) *Buffer {
	return &Buffer{Img: texture.NewImage(width, height, channels)}
}

// Set writes one pixel's channel values. Safe to call concurrently from
// different task units since writes are disjoint by pixel; the read lock
// it holds only makes it wait while a Save is running.
func (b *Buffer) Set(x, y int, values []float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	b.Img.Set(x, y, values)
}

// rgbIndices resolves which channels to use for an 8-bit RGB PNG
// encode: channels literally named R/G/B if present, else the first
// three channels in the buffer.
func (b *Buffer) rgbIndices() (r, g, bch int) {
	r, g, bch = 0, 1, 2
	if ri := b.Img.ChannelIndex("R"); ri >= 0 {
		r = ri
	}
	if gi := b.Img.ChannelIndex("G"); gi >= 0 {
		g = gi
	}
	if bi := b.Img.ChannelIndex("B"); bi >= 0 {
		bch = bi
	}
	return
}

func to8bit(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v*255 + 0.5)
}

// Save atomically writes the buffer to path as a PNG, using a
// temp-file-then-rename so a crash mid-write never leaves a corrupt
// output. It holds mu's write lock throughout, so pixel writes wait
// until it returns; other encodings are left to a caller that needs them.
func (b *Buffer) Save(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, g, bch := b.rgbIndices()
	img := image.NewRGBA(image.Rect(0, 0, b.Img.Width, b.Img.Height))
	for y := 0; y < b.Img.Height; y++ {
		for x := 0; x < b.Img.Width; x++ {
			px := b.Img.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: to8bit(px[r]),
				G: to8bit(px[g]),
				B: to8bit(px[bch]),
				A: 255,
			})
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.png")
	if err != nil {
		return fmt.Errorf("raster: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("raster: encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("raster: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("raster: rename temp file: %w", err)
	}
	return nil
}

// Load reads a PNG back into an R/G/B Buffer, used to resume a checkpoint
// when --overwrite is absent (§6).
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: open %s: %w", path, err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("raster: decode %s: %w", path, err)
	}
	bounds := decoded.Bounds()
	buf := NewBuffer(bounds.Dx(), bounds.Dy(), []string{"R", "G", "B"})
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rr, gg, bb, _ := decoded.At(x, y).RGBA()
			buf.Set(x-bounds.Min.X, y-bounds.Min.Y, []float64{
				float64(rr) / 65535, float64(gg) / 65535, float64(bb) / 65535,
			})
		}
	}
	return buf, nil
}
