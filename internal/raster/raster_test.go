package raster

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveThenLoadRoundTrip(t *testing.T) {
	buf := NewBuffer(3, 2, []string{"R", "G", "B"})
	buf.Set(1, 1, []float64{1, 0, 0})

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, buf.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Img.Width)
	assert.Equal(t, 2, loaded.Img.Height)
	px := loaded.Img.At(1, 1)
	assert.InDelta(t, 1, px[0], 0.01)
	assert.InDelta(t, 0, px[1], 0.01)
}

func TestSaveAtomicNoTempLeftover(t *testing.T) {
	buf := NewBuffer(2, 2, []string{"R", "G", "B"})
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	require.NoError(t, buf.Save(path))

	entries, err := filepathGlob(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func filepathGlob(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*"))
}
