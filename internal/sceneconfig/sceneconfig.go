// Package sceneconfig decodes the YAML scene descriptor the CLI reads to
// build a render: a wavelength grid, named media and materials, objects,
// sources, cameras, and a renderer descriptor, each resolved into the
// renderer's in-memory object graph.
package sceneconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thomasrubini/specrender/internal/camera"
	"github.com/thomasrubini/specrender/internal/colorhandler"
	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/material"
	"github.com/thomasrubini/specrender/internal/medium"
	"github.com/thomasrubini/specrender/internal/renderer"
	"github.com/thomasrubini/specrender/internal/scene"
	"github.com/thomasrubini/specrender/internal/shape"
	"github.com/thomasrubini/specrender/internal/source"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// SpectrumSpec decodes either a single scalar (broadcast to every
// wavelength) or an explicit per-wavelength value list.
type SpectrumSpec struct {
	Constant *float64  `yaml:"constant,omitempty"`
	Values   []float64 `yaml:"values,omitempty"`
}

func (s SpectrumSpec) resolve(g *spectrum.Grid) (spectrum.Spectrum, error) {
	if s.Constant != nil {
		return spectrum.Constant(g, *s.Constant), nil
	}
	if len(s.Values) > 0 {
		return spectrum.FromValues(g, s.Values)
	}
	return spectrum.Zero(g), nil
}

type Vec3Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3Spec) vec() geom.Vec3 { return geom.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

type MediumSpec struct {
	Lambertian *struct {
		Reflectance   SpectrumSpec `yaml:"reflectance"`
		Transmittance SpectrumSpec `yaml:"transmittance"`
	} `yaml:"lambertian,omitempty"`
	Fresnel *struct {
		IOR SpectrumSpec `yaml:"ior"`
		K   SpectrumSpec `yaml:"k"`
	} `yaml:"fresnel,omitempty"`
	KubelkaMunk *struct {
		K SpectrumSpec `yaml:"k"`
		S SpectrumSpec `yaml:"s"`
	} `yaml:"kubelka_munk,omitempty"`
	Opaque bool `yaml:"opaque,omitempty"`
}

func (m MediumSpec) resolve(g *spectrum.Grid) (medium.Medium, error) {
	out := medium.Medium{Opaque: m.Opaque}
	if m.Lambertian != nil {
		out.HasLambertian = true
		var err error
		if out.Reflectance, err = m.Lambertian.Reflectance.resolve(g); err != nil {
			return medium.Medium{}, err
		}
		if out.Transmittance, err = m.Lambertian.Transmittance.resolve(g); err != nil {
			return medium.Medium{}, err
		}
	}
	if m.Fresnel != nil {
		out.HasFresnel = true
		var err error
		if out.IOR, err = m.Fresnel.IOR.resolve(g); err != nil {
			return medium.Medium{}, err
		}
		if out.K, err = m.Fresnel.K.resolve(g); err != nil {
			return medium.Medium{}, err
		}
	}
	if m.KubelkaMunk != nil {
		out.HasKubelkaMunk = true
		var err error
		if out.K_KM, err = m.KubelkaMunk.K.resolve(g); err != nil {
			return medium.Medium{}, err
		}
		if out.S_KM, err = m.KubelkaMunk.S.resolve(g); err != nil {
			return medium.Medium{}, err
		}
	}
	return out, nil
}

// MaterialSpec names one of the material constructors sceneconfig
// exposes; the full BSDF sum type is constructible in Go directly
// (material.Blended, material.Mapped, ...) for scenes built
// programmatically — this decoder only covers the variants common
// enough to need a textual scene-file spelling.
type MaterialSpec struct {
	Kind        string       `yaml:"kind"`
	Reflectance SpectrumSpec `yaml:"reflectance,omitempty"`
	Sigma       float64      `yaml:"sigma,omitempty"`
	IOR         SpectrumSpec `yaml:"ior,omitempty"`
	Alpha       float64      `yaml:"alpha,omitempty"`
	Dispersive  bool         `yaml:"dispersive,omitempty"`
}

func (m MaterialSpec) resolve(g *spectrum.Grid) (material.BSDF, error) {
	switch m.Kind {
	case "lambertian":
		r, err := m.Reflectance.resolve(g)
		if err != nil {
			return nil, err
		}
		return material.NewLambertianBRDF(r), nil
	case "rough_lambertian":
		r, err := m.Reflectance.resolve(g)
		if err != nil {
			return nil, err
		}
		return material.NewRoughLambertian(r, m.Sigma), nil
	case "regular":
		ior, err := m.IOR.resolve(g)
		if err != nil {
			return nil, err
		}
		return material.NewRegularBRDF(ior), nil
	case "beckmann":
		ior, err := m.IOR.resolve(g)
		if err != nil {
			return nil, err
		}
		return material.NewBeckmannBRDF(ior, m.Alpha), nil
	case "refractive":
		ior, err := m.IOR.resolve(g)
		if err != nil {
			return nil, err
		}
		return material.NewRefractiveBRDF(ior, m.Dispersive), nil
	default:
		return nil, fmt.Errorf("sceneconfig: unknown material kind %q", m.Kind)
	}
}

type ShapeSpec struct {
	Sphere *struct {
		Center Vec3Spec `yaml:"center"`
		Radius float64  `yaml:"radius"`
	} `yaml:"sphere,omitempty"`
	Triangle *struct {
		A           Vec3Spec `yaml:"a"`
		B           Vec3Spec `yaml:"b"`
		C           Vec3Spec `yaml:"c"`
		DoubleSided bool     `yaml:"double_sided,omitempty"`
	} `yaml:"triangle,omitempty"`
}

func (s ShapeSpec) resolve() (shape.Shape, error) {
	switch {
	case s.Sphere != nil:
		return shape.Sphere{Center: s.Sphere.Center.vec(), Radius: s.Sphere.Radius}, nil
	case s.Triangle != nil:
		a, b, c := s.Triangle.A.vec(), s.Triangle.B.vec(), s.Triangle.C.vec()
		faceNormal := b.Sub(a).Cross(c.Sub(a)).Normalized()
		v := func(p geom.Vec3) shape.Vertex { return shape.Vertex{Position: p, Normal: faceNormal} }
		return shape.NewTriangle(v(a), v(b), v(c), s.Triangle.DoubleSided), nil
	default:
		return nil, fmt.Errorf("sceneconfig: object has no shape")
	}
}

type ObjectSpec struct {
	Shape    ShapeSpec `yaml:"shape"`
	Material string    `yaml:"material"`
	Outer    string    `yaml:"outer,omitempty"`
	Inner    string    `yaml:"inner,omitempty"`
}

type SourceSpec struct {
	Point *struct {
		Position  Vec3Spec     `yaml:"position"`
		Intensity SpectrumSpec `yaml:"intensity"`
	} `yaml:"point,omitempty"`
	Directional *struct {
		Direction  Vec3Spec     `yaml:"direction"`
		Irradiance SpectrumSpec `yaml:"irradiance"`
	} `yaml:"directional,omitempty"`
	Disk *struct {
		Center   Vec3Spec     `yaml:"center"`
		Normal   Vec3Spec     `yaml:"normal"`
		Radius   float64      `yaml:"radius"`
		Radiance SpectrumSpec `yaml:"radiance"`
		Samples  int          `yaml:"samples,omitempty"`
	} `yaml:"disk,omitempty"`
}

func (s SourceSpec) resolve(g *spectrum.Grid) (source.Source, error) {
	switch {
	case s.Point != nil:
		intensity, err := s.Point.Intensity.resolve(g)
		if err != nil {
			return nil, err
		}
		return source.PointSource{Position: s.Point.Position.vec(), Intensity: intensity}, nil
	case s.Directional != nil:
		irr, err := s.Directional.Irradiance.resolve(g)
		if err != nil {
			return nil, err
		}
		return source.DirectionalSource{Direction: s.Directional.Direction.vec(), Irradiance: irr}, nil
	case s.Disk != nil:
		radiance, err := s.Disk.Radiance.resolve(g)
		if err != nil {
			return nil, err
		}
		shapeDisk := source.Disk{Center: s.Disk.Center.vec(), Normal: s.Disk.Normal.vec(), Radius: s.Disk.Radius}
		return source.NewSurfaceSource(shapeDisk, radiance, s.Disk.Samples), nil
	default:
		return nil, fmt.Errorf("sceneconfig: source has no kind")
	}
}

// CameraSpec names one camera plus its output sink: a
// shape+color-handler+output-filename triple.
type CameraSpec struct {
	Kind       string  `yaml:"kind"`
	Position   Vec3Spec `yaml:"position"`
	At         Vec3Spec `yaml:"at"`
	Up         Vec3Spec `yaml:"up"`
	FovY       float64  `yaml:"fov_y,omitempty"`
	Aspect     float64  `yaml:"aspect,omitempty"`
	Width      float64  `yaml:"width,omitempty"`
	Height     float64  `yaml:"height,omitempty"`
	MaxAngle   float64  `yaml:"max_angle,omitempty"`
	ImageW     int      `yaml:"image_width"`
	ImageH     int      `yaml:"image_height"`
	Handler    string   `yaml:"handler,omitempty"`
	OutputPath string   `yaml:"output"`
}

func (c CameraSpec) resolveCamera() (camera.Camera, error) {
	pos, at, up := c.Position.vec(), c.At.vec(), c.Up.vec()
	switch c.Kind {
	case "", "perspective":
		aspect := c.Aspect
		if aspect == 0 {
			aspect = float64(c.ImageW) / float64(c.ImageH)
		}
		return camera.NewPerspective(pos, at, up, c.FovY, aspect), nil
	case "orthoscopic":
		return camera.NewOrthoscopic(pos, at, up, c.Width, c.Height), nil
	case "fisheye":
		return camera.NewFisheye(pos, at, up, c.MaxAngle), nil
	case "polar":
		return camera.NewPolar(pos, at, up), nil
	default:
		return nil, fmt.Errorf("sceneconfig: unknown camera kind %q", c.Kind)
	}
}

func (c CameraSpec) resolveHandler(grid *spectrum.Grid) (colorhandler.Handler, error) {
	switch c.Handler {
	case "", "rgb":
		return colorhandler.SimpleRGB{}, nil
	case "spectrum":
		return colorhandler.SpectrumColor{Grid: grid}, nil
	case "cie":
		return colorhandler.CIE{Grid: grid}, nil
	case "polarization":
		return colorhandler.Polarization{}, nil
	default:
		return nil, fmt.Errorf("sceneconfig: unknown color handler %q", c.Handler)
	}
}

// EnvironmentSpec is the optional background a camera ray that misses
// everything resolves against.
type EnvironmentSpec struct {
	Constant *SpectrumSpec `yaml:"constant,omitempty"`
}

func (e *EnvironmentSpec) resolve(g *spectrum.Grid) (renderer.Environment, error) {
	if e == nil || e.Constant == nil {
		return nil, nil
	}
	sp, err := e.Constant.resolve(g)
	if err != nil {
		return nil, err
	}
	return renderer.ConstantEnvironment{Spectrum: sp}, nil
}

// RendererSpec picks and parameterizes one of the renderer.Renderer
// variants.
type RendererSpec struct {
	Kind          string           `yaml:"kind"`
	MaxDepth      int              `yaml:"max_depth,omitempty"`
	Ambient       SpectrumSpec     `yaml:"ambient,omitempty"`
	Environment   *EnvironmentSpec `yaml:"environment,omitempty"`
	PhotonMapping *struct {
		TotalPhotons   int     `yaml:"total_photons"`
		GatherRadius   float64 `yaml:"gather_radius"`
		MinGatherCount int     `yaml:"min_gather_count"`
		MaxGatherCount int     `yaml:"max_gather_count"`
		FallbackRays   int     `yaml:"fallback_rays,omitempty"`
	} `yaml:"photon_mapping,omitempty"`
}

// Config is the root YAML document.
type Config struct {
	Wavelengths []float64              `yaml:"wavelengths"`
	Bias        float64                `yaml:"bias,omitempty"`
	Media       map[string]MediumSpec  `yaml:"media,omitempty"`
	Materials   map[string]MaterialSpec `yaml:"materials"`
	Objects     []ObjectSpec           `yaml:"objects"`
	Sources     []SourceSpec           `yaml:"sources"`
	Cameras     []CameraSpec           `yaml:"cameras"`
	Renderer    RendererSpec           `yaml:"renderer"`
}

// Load reads and parses a YAML scene descriptor from path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sceneconfig: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("sceneconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// CameraJob is one resolved camera plus the sink the render loop writes
// into: everything task.Job/distrender.Job needs besides the shared
// scene/renderer.
type CameraJob struct {
	Camera        camera.Camera
	Handler       colorhandler.Handler
	OutputPath    string
	Width, Height int
}

// Built is the fully materialized scene graph: the wavelength grid, the
// frozen Scenery, the selected renderer, and every camera to render.
type Built struct {
	Grid      *spectrum.Grid
	N         int
	Scenery   *scene.Scenery
	Renderer  renderer.Renderer
	Cameras   []CameraJob
	Materials map[string]material.BSDF
}

// Build resolves a Config into runtime objects, wiring named media and
// materials into the object list and the chosen renderer variant.
func Build(cfg Config) (Built, error) {
	grid, err := spectrum.NewGrid(cfg.Wavelengths)
	if err != nil {
		return Built{}, fmt.Errorf("sceneconfig: wavelength grid: %w", err)
	}
	n := grid.Len()

	media := make(map[string]medium.Medium, len(cfg.Media))
	for name, spec := range cfg.Media {
		m, err := spec.resolve(grid)
		if err != nil {
			return Built{}, fmt.Errorf("sceneconfig: medium %q: %w", name, err)
		}
		media[name] = m
	}
	mediumOrVacuum := func(name string) medium.Medium {
		if name == "" {
			return medium.Vacuum()
		}
		return media[name]
	}

	materials := make(map[string]material.BSDF, len(cfg.Materials))
	for name, spec := range cfg.Materials {
		mat, err := spec.resolve(grid)
		if err != nil {
			return Built{}, fmt.Errorf("sceneconfig: material %q: %w", name, err)
		}
		materials[name] = mat
	}

	objects := make([]scene.Object, 0, len(cfg.Objects))
	for i, objSpec := range cfg.Objects {
		sh, err := objSpec.Shape.resolve()
		if err != nil {
			return Built{}, fmt.Errorf("sceneconfig: object %d: %w", i, err)
		}
		mat, ok := materials[objSpec.Material]
		if !ok {
			return Built{}, fmt.Errorf("sceneconfig: object %d: unknown material %q", i, objSpec.Material)
		}
		objects = append(objects, scene.Object{
			Shape:    sh,
			Material: mat,
			Outer:    mediumOrVacuum(objSpec.Outer),
			Inner:    mediumOrVacuum(objSpec.Inner),
		})
	}

	sources := make([]source.Source, 0, len(cfg.Sources))
	for i, ss := range cfg.Sources {
		src, err := ss.resolve(grid)
		if err != nil {
			return Built{}, fmt.Errorf("sceneconfig: source %d: %w", i, err)
		}
		sources = append(sources, src)
	}

	sc := scene.New(objects, sources, cfg.Bias)

	rend, err := buildRenderer(cfg.Renderer, grid)
	if err != nil {
		return Built{}, err
	}

	cameras := make([]CameraJob, 0, len(cfg.Cameras))
	for i, cs := range cfg.Cameras {
		cam, err := cs.resolveCamera()
		if err != nil {
			return Built{}, fmt.Errorf("sceneconfig: camera %d: %w", i, err)
		}
		handler, err := cs.resolveHandler(grid)
		if err != nil {
			return Built{}, fmt.Errorf("sceneconfig: camera %d: %w", i, err)
		}
		cameras = append(cameras, CameraJob{
			Camera: cam, Handler: handler,
			OutputPath: cs.OutputPath, Width: cs.ImageW, Height: cs.ImageH,
		})
	}

	return Built{Grid: grid, N: n, Scenery: sc, Renderer: rend, Cameras: cameras, Materials: materials}, nil
}

func buildRenderer(spec RendererSpec, grid *spectrum.Grid) (renderer.Renderer, error) {
	ambient, err := spec.Ambient.resolve(grid)
	if err != nil {
		return nil, fmt.Errorf("sceneconfig: renderer ambient: %w", err)
	}
	env, err := spec.Environment.resolve(grid)
	if err != nil {
		return nil, fmt.Errorf("sceneconfig: renderer environment: %w", err)
	}
	maxDepth := spec.MaxDepth
	if maxDepth == 0 {
		maxDepth = 5
	}

	switch spec.Kind {
	case "", "simple":
		return renderer.SimpleRenderer{MaxDepth: maxDepth, Ambient: ambient, Environment: env}, nil
	case "test":
		return renderer.TestRenderer{}, nil
	case "photon_mapping":
		if spec.PhotonMapping == nil {
			return nil, fmt.Errorf("sceneconfig: photon_mapping renderer requires photon_mapping config")
		}
		pmCfg := renderer.PhotonMappingConfig{
			TotalPhotons:   spec.PhotonMapping.TotalPhotons,
			GatherRadius:   spec.PhotonMapping.GatherRadius,
			MinGatherCount: spec.PhotonMapping.MinGatherCount,
			MaxGatherCount: spec.PhotonMapping.MaxGatherCount,
			FallbackRays:   spec.PhotonMapping.FallbackRays,
		}
		direct := renderer.SimpleRenderer{MaxDepth: maxDepth, Ambient: ambient, Environment: env}
		return renderer.PhotonMappingRenderer{Direct: direct, Config: pmCfg}, nil
	default:
		return nil, fmt.Errorf("sceneconfig: unknown renderer kind %q", spec.Kind)
	}
}
