// Package texture implements the multichannel float raster (Image) and
// the Texture wrapper that adds tiling/repeat policies and spectral
// resolution at a UV coordinate. Image is an arbitrary named-channel
// float raster rather than a fixed 3-channel uint8 buffer. The package
// decodes no image files; images are built in memory.
package texture

import "fmt"

// Image is a raster of H*W pixels, each a fixed-length float vector over
// named channels.
type Image struct {
	Width, Height int
	Channels      []string
	pixels        []float64 // len = Width*Height*len(Channels)
}

// NewImage allocates a zeroed image with the given channel names.
func NewImage(width, height int, channels []string) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		pixels:   make([]float64, width*height*len(channels)),
	}
}

func (img *Image) index(x, y int) (int, error) {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return 0, fmt.Errorf("texture: pixel (%d,%d) out of bounds %dx%d", x, y, img.Width, img.Height)
	}
	return (y*img.Width + x) * len(img.Channels), nil
}

// At returns the channel values of pixel (x,y). The returned slice
// aliases the image's storage; callers must copy before mutating
// elsewhere if they need to retain it across a Set.
func (img *Image) At(x, y int) []float64 {
	idx, err := img.index(x, y)
	if err != nil {
		return make([]float64, len(img.Channels))
	}
	return img.pixels[idx : idx+len(img.Channels)]
}

// Set writes the channel values of pixel (x,y). Out-of-bounds writes are
// silently ignored, so a mis-addressed write from a buggy task unit
// cannot corrupt a neighboring unit's pixels.
func (img *Image) Set(x, y int, values []float64) {
	idx, err := img.index(x, y)
	if err != nil {
		return
	}
	copy(img.pixels[idx:idx+len(img.Channels)], values)
}

// ChannelIndex returns the index of a named channel, or -1 if absent.
func (img *Image) ChannelIndex(name string) int {
	for i, c := range img.Channels {
		if c == name {
			return i
		}
	}
	return -1
}
