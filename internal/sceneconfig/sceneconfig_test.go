package sceneconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thomasrubini/specrender/internal/renderer"
	"github.com/thomasrubini/specrender/internal/shape"
)

const minimalScene = `
wavelengths: [450, 550, 650]
bias: 0.0001
materials:
  white:
    kind: lambertian
    reflectance:
      constant: 0.8
objects:
  - shape:
      sphere:
        center: {x: 0, y: 0, z: -1000}
        radius: 1000
    material: white
sources:
  - point:
      position: {x: 0, y: 0, z: 5}
      intensity:
        constant: 500
cameras:
  - kind: perspective
    position: {x: 0, y: 0, z: 5}
    at: {x: 0, y: 0, z: 0}
    up: {x: 0, y: 1, z: 0}
    fov_y: 0.9
    image_width: 64
    image_height: 64
    output: out.braster
renderer:
  kind: simple
  max_depth: 3
`

func parseAndBuild(t *testing.T, doc string) Built {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))
	built, err := Build(cfg)
	require.NoError(t, err)
	return built
}

func TestBuildResolvesObjectsSourcesAndCamera(t *testing.T) {
	built := parseAndBuild(t, minimalScene)

	assert.Equal(t, 3, built.N)
	require.Len(t, built.Cameras, 1)
	assert.Equal(t, "out.braster", built.Cameras[0].OutputPath)
	assert.Equal(t, 64, built.Cameras[0].Width)
	assert.Equal(t, 64, built.Cameras[0].Height)
	assert.Contains(t, built.Materials, "white")

	_, isSimple := built.Renderer.(renderer.SimpleRenderer)
	assert.True(t, isSimple)
}

func TestBuildRejectsUnknownMaterialReference(t *testing.T) {
	doc := `
wavelengths: [450, 550, 650]
materials: {}
objects:
  - shape:
      sphere:
        center: {x: 0, y: 0, z: 0}
        radius: 1
    material: missing
cameras: []
renderer: {kind: simple}
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))
	_, err := Build(cfg)
	assert.Error(t, err)
}

func TestTriangleShapeGetsNonZeroFaceNormal(t *testing.T) {
	s := ShapeSpec{Triangle: &struct {
		A           Vec3Spec `yaml:"a"`
		B           Vec3Spec `yaml:"b"`
		C           Vec3Spec `yaml:"c"`
		DoubleSided bool     `yaml:"double_sided,omitempty"`
	}{
		A: Vec3Spec{X: 0, Y: 0, Z: 0},
		B: Vec3Spec{X: 1, Y: 0, Z: 0},
		C: Vec3Spec{X: 0, Y: 1, Z: 0},
	}}
	sh, err := s.resolve()
	require.NoError(t, err)
	assert.NotNil(t, sh)
	tri, ok := sh.(shape.Triangle)
	require.True(t, ok)
	// (1,0,0) x (0,1,0) = (0,0,1) is the face normal every vertex gets.
	assert.InDelta(t, 1.0, tri.A.Normal.Z, 1e-9)
}

func TestPhotonMappingRendererRequiresConfigBlock(t *testing.T) {
	doc := `
wavelengths: [450, 550, 650]
materials: {}
objects: []
cameras: []
renderer: {kind: photon_mapping}
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))
	_, err := Build(cfg)
	assert.Error(t, err)
}
