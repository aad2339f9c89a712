package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

func testGrid(t *testing.T) *spectrum.Grid {
	g, err := spectrum.NewGrid([]float64{450, 550, 650})
	require.NoError(t, err)
	return g
}

func straightDownBasis() geom.Basis {
	return geom.BasisFromNormal(geom.Vec3{}, geom.Vec3{X: 0, Y: 0, Z: 1})
}

func TestLambertianDiffuseReemitedScalesByAlbedoAndCosine(t *testing.T) {
	g := testGrid(t)
	albedo, err := spectrum.FromValues(g, []float64{0.8, 0.5, 0.2})
	require.NoError(t, err)
	mat := NewLambertianBRDF(albedo)

	basis := straightDownBasis()
	// incident.Ray.Dir points away from the surface toward the source.
	incidentRay := geom.Ray{Origin: geom.Vec3{X: 0, Y: 0, Z: 1}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
	incident := light.NewVector(incidentRay, 3)
	for i := range incident.Samples {
		incident.Samples[i].Radiance = 1
	}
	out := geom.Ray{Origin: basis.O, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}

	result := mat.DiffuseReemited(basis, geom.Vec2{}, incident, out)
	expected := albedo.At(0) / math.Pi
	assert.InDelta(t, expected, result.Samples[0].Radiance, 1e-9)
}

func TestLambertianBouncePhotonConservesOrAbsorbs(t *testing.T) {
	g := testGrid(t)
	albedo, err := spectrum.FromValues(g, []float64{1, 1, 1})
	require.NoError(t, err)
	mat := NewLambertianBRDF(albedo)
	basis := straightDownBasis()
	rng := rand.New(rand.NewSource(1))

	p := light.NewPhoton(3)
	p.Radiances = []float64{1, 1, 1}
	p.Direction = geom.Vec3{X: 0, Y: 0, Z: -1}

	survivedAtLeastOnce := false
	for i := 0; i < 50; i++ {
		_, survived, _ := mat.BouncePhoton(basis, geom.Vec2{}, p, rng)
		if survived {
			survivedAtLeastOnce = true
		}
	}
	assert.True(t, survivedAtLeastOnce, "full-albedo lambertian should sometimes survive Russian roulette")
}

func TestRegularBRDFReflectsAboutNormal(t *testing.T) {
	g := testGrid(t)
	ior, err := spectrum.FromValues(g, []float64{1.5, 1.5, 1.5})
	require.NoError(t, err)
	mat := NewRegularBRDF(ior)
	basis := straightDownBasis()
	out := geom.Ray{Origin: basis.O, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}

	rays := mat.SpecularSubRays(basis, geom.Vec2{}, out)
	require.Len(t, rays, 1)
	assert.InDelta(t, 0, rays[0].Ray.Dir.X, 1e-9)
	assert.InDelta(t, 0, rays[0].Ray.Dir.Y, 1e-9)
	assert.InDelta(t, 1, rays[0].Ray.Dir.Z, 1e-9)
}

func TestRegularBRDFNormalIncidenceReflectanceMatchesFresnel(t *testing.T) {
	g := testGrid(t)
	ior, err := spectrum.FromValues(g, []float64{1.5, 1.5, 1.5})
	require.NoError(t, err)
	mat := NewRegularBRDF(ior)
	basis := straightDownBasis()

	// incident.Ray.Dir points away from the surface toward the source.
	incidentRay := geom.Ray{Origin: geom.Vec3{X: 0, Y: 0, Z: 1}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
	incident := light.NewVector(incidentRay, 3)
	for i := range incident.Samples {
		incident.Samples[i].Radiance = 1
	}
	out := geom.Ray{Origin: basis.O, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}

	result := mat.SpecularReemited(basis, geom.Vec2{}, incident, out)
	normalReflectance := math.Pow((1-1.5)/(1+1.5), 2)
	assert.InDelta(t, normalReflectance, result.Samples[0].Radiance, 1e-6)
}

func TestRefractiveBRDFTotalInternalReflectionHasNoTransmission(t *testing.T) {
	g := testGrid(t)
	ior, err := spectrum.FromValues(g, []float64{1.5, 1.5, 1.5})
	require.NoError(t, err)
	mat := NewRefractiveBRDF(ior, false)
	basis := straightDownBasis()

	// A ray grazing at 89 degrees from inside (entering=false) with n=1.5
	// exceeds the critical angle and should only produce the reflected ray.
	grazing := geom.Vec3{X: math.Sin(89 * math.Pi / 180), Y: 0, Z: math.Cos(89 * math.Pi / 180)}
	out := geom.Ray{Origin: basis.O, Dir: grazing.Neg()}
	rays := mat.SpecularSubRays(basis, geom.Vec2{}, out)
	assert.Len(t, rays, 1)
}

func TestBlendedWeightsChildContributions(t *testing.T) {
	g := testGrid(t)
	albedoA, _ := spectrum.FromValues(g, []float64{1, 1, 1})
	albedoB, _ := spectrum.FromValues(g, []float64{0, 0, 0})
	blend := Blended{A: NewLambertianBRDF(albedoA), B: NewLambertianBRDF(albedoB), Weight: 0.25}

	basis := straightDownBasis()
	// incident.Ray.Dir points away from the surface toward the source.
	incidentRay := geom.Ray{Origin: geom.Vec3{X: 0, Y: 0, Z: 1}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
	incident := light.NewVector(incidentRay, 3)
	for i := range incident.Samples {
		incident.Samples[i].Radiance = 1
	}
	out := geom.Ray{Origin: basis.O, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}

	result := blend.DiffuseReemited(basis, geom.Vec2{}, incident, out)
	expected := 0.25 * (1 / math.Pi)
	assert.InDelta(t, expected, result.Samples[0].Radiance, 1e-9)
}

func TestDepolarizedStripsPolarizationComponents(t *testing.T) {
	g := testGrid(t)
	albedo, _ := spectrum.FromValues(g, []float64{1, 1, 1})
	mat := DepolarizedBRDF{Child: NewLambertianBRDF(albedo)}

	basis := straightDownBasis()
	// incident.Ray.Dir points away from the surface toward the source.
	incidentRay := geom.Ray{Origin: geom.Vec3{X: 0, Y: 0, Z: 1}, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}
	incident := light.NewVector(incidentRay, 3)
	for i := range incident.Samples {
		incident.Samples[i].Radiance = 1
		incident.Samples[i].Linear0 = 0.5
	}
	out := geom.Ray{Origin: basis.O, Dir: geom.Vec3{X: 0, Y: 0, Z: 1}}

	result := mat.DiffuseReemited(basis, geom.Vec2{}, incident, out)
	for _, s := range result.Samples {
		assert.Zero(t, s.Linear0)
		assert.Zero(t, s.Linear45)
		assert.Zero(t, s.Circular)
	}
}

func TestSampledTableInterpolatesBetweenBuckets(t *testing.T) {
	g := testGrid(t)
	albedo, _ := spectrum.FromValues(g, []float64{1, 1, 1})
	s := Sampled{Table: []float64{0, 1}, Base: NewLambertianBRDF(albedo)}
	// cosThetaI = 1 (normal incidence) -> k = 0 -> table[0] = 0.
	assert.InDelta(t, 0, s.tableLookup(1), 1e-9)
	// theta = pi/8 -> k = 2*(pi/8)*2/pi = 0.5 -> halfway between table[0] and table[1].
	assert.InDelta(t, 0.5, s.tableLookup(math.Cos(math.Pi/8)), 1e-9)
}
