package renderer

import (
	"math"
	"math/rand"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/scene"
	"github.com/thomasrubini/specrender/internal/spatial"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// maxPhotonBounces bounds the recursion depth of a single photon's path;
// BouncePhoton's own Russian roulette already terminates most paths far
// sooner, this is only a backstop against pathological loops.
const maxPhotonBounces = 64

// PhotonMappingConfig tunes the two-pass photon-mapping renderer:
// TotalPhotons is the combined emission budget split across sources
// proportional to Power(); MinGatherCount is the density-estimation
// floor below which RandomDiffuseRay fills in for a sparse photon map
// (see DESIGN.md's Open Question #4).
type PhotonMappingConfig struct {
	TotalPhotons   int
	GatherRadius   float64
	MinGatherCount int
	MaxGatherCount int
	FallbackRays   int // secondary rays cast when the gather is too sparse
}

// BuildPhotonMaps runs the photon-mapping build pass: each
// source emits photons proportional to its share of total scene power,
// each photon is traced through the scene via NearestObject and
// Medium.TransportPhoton, and deposited into the global map on every
// diffuse hit or the caustic map when every bounce on its path so far
// was specular (a light -> mirror -> diffuse path, the case ordinary
// direct lighting cannot resolve).
func BuildPhotonMaps(sc *scene.Scenery, cfg PhotonMappingConfig, n int, rng *rand.Rand) (global, caustic *spatial.PhotonTree) {
	sources := sc.Sources()
	powers := make([]float64, len(sources))
	var total float64
	for i, s := range sources {
		p := s.Power().Sum()
		powers[i] = p
		total += p
	}

	var globalPhotons, causticPhotons []light.Photon
	if total > 0 {
		for i, s := range sources {
			share := powers[i] / total
			count := int(float64(cfg.TotalPhotons) * share)
			for j := 0; j < count; j++ {
				ph := s.RandomPhoton(n, rng)
				tracePhoton(sc, ph, rng, &globalPhotons, &causticPhotons, 0, -1, true)
			}
		}
	}
	return spatial.BuildPhotonTree(globalPhotons), spatial.BuildPhotonTree(causticPhotons)
}

func tracePhoton(sc *scene.Scenery, ph light.Photon, rng *rand.Rand, global, caustic *[]light.Photon, depth int, excluding int, pathSpecular bool) {
	if depth > maxPhotonBounces {
		return
	}
	ray := geom.Ray{Origin: ph.Position, Dir: ph.Direction}
	hit, ok := sc.NearestObject(ray, excluding)
	if !ok {
		return
	}
	obj := sc.Object(hit.ObjectIndex)
	transported, survived := obj.Outer.TransportPhoton(ph, hit.Shape.Distance, rng)
	if !survived {
		return
	}
	transported.Position = hit.Basis.O
	transported.Normal = hit.Basis.K
	transported.Distance += hit.Shape.Distance

	if obj.Material.IsDiffuse() {
		if pathSpecular && depth > 0 {
			*caustic = append(*caustic, transported)
		} else {
			*global = append(*global, transported)
		}
	}

	bounced, alive, specularBounce := obj.Material.BouncePhoton(hit.Basis, hit.UV, transported, rng)
	if !alive {
		return
	}
	tracePhoton(sc, bounced, rng, global, caustic, depth+1, hit.ObjectIndex, pathSpecular && specularBounce)
}

// PhotonMappingRenderer reuses SimpleRenderer for direct lighting and
// specular recursion, and adds an indirect-diffuse term estimated by
// density-gathering the global photon map (and, separately, the caustic
// map) at every diffuse hit. Build the maps once via BuildPhotonMaps and
// share the result across every worker; TraceRay itself only queries.
type PhotonMappingRenderer struct {
	Direct  SimpleRenderer
	Config  PhotonMappingConfig
	Global  *spatial.PhotonTree
	Caustic *spatial.PhotonTree
}

func (r PhotonMappingRenderer) TraceRay(sc *scene.Scenery, ray geom.Ray, grid *spectrum.Grid, n int, depth int, excluding int) light.Vector {
	hit, objHit := sc.NearestObject(ray, excluding)

	if src, dist, srcHit := sc.NearestSourceHit(ray); srcHit {
		if !objHit || dist < hit.Shape.Distance {
			point := ray.Origin.Add(ray.Dir.Scale(dist))
			return src.EmittedLight(point, ray.Dir, n)
		}
	}

	if !objHit {
		if r.Direct.Environment != nil {
			return r.Direct.Environment.Emission(ray.Dir, n)
		}
		return light.NewVector(ray, n)
	}

	obj := sc.Object(hit.ObjectIndex)
	result := light.NewVector(ray, n)
	result.Distance = hit.Shape.Distance
	out := geom.Ray{Origin: hit.Basis.O, Dir: ray.Dir.Neg()}

	for _, src := range sc.Sources() {
		incident, lit := src.IncidentLight(hit.Basis.O, n)
		if !lit {
			continue
		}
		shadowRay := geom.Ray{Origin: hit.Basis.O, Dir: incident.Ray.Dir}
		if !sc.Visible(shadowRay, incident.Distance, hit.ObjectIndex) {
			continue
		}
		transported := obj.Outer.TransportLight(incident, incident.Distance)
		diffuse := obj.Material.DiffuseReemited(hit.Basis, hit.UV, transported, out)
		result = result.Add(diffuse)
	}

	if obj.Material.IsDiffuse() {
		indirect := r.gatherIndirect(sc, hit, out, grid, n, depth)
		result = result.Add(indirect)
	}

	if depth < r.Direct.MaxDepth && obj.Material.IsSpecular() {
		for _, sub := range obj.Material.SpecularSubRays(hit.Basis, hit.UV, out) {
			bounced := r.TraceRay(sc, sub.Ray, grid, n, depth+1, hit.ObjectIndex)
			transported := obj.Outer.TransportLight(bounced, hit.Shape.Distance)
			applied := obj.Material.SpecularReemited(hit.Basis, hit.UV, transported, sub.Ray)
			result = result.Add(applied)
		}
	}

	return result
}

// gatherIndirect estimates the diffuse indirect term at a hit by density
// estimation over the photon maps; when neither map yields at least
// MinGatherCount photons nearby, FallbackRays cosine-weighted secondary
// rays are traced instead so sparse regions (early in a progressive
// build, or simply far from any photon path) don't show photon-map
// starvation as black patches.
func (r PhotonMappingRenderer) gatherIndirect(sc *scene.Scenery, hit scene.Hit, out geom.Ray, grid *spectrum.Grid, n int, depth int) light.Vector {
	lv := light.NewVector(out, n)
	sparse := true

	accumulate := func(tree *spatial.PhotonTree) {
		if tree == nil || tree.Len() == 0 {
			return
		}
		photons := tree.Gather(hit.Basis.O, r.Config.GatherRadius, r.Config.MaxGatherCount)
		if len(photons) < r.Config.MinGatherCount {
			return
		}
		sparse = false
		area := math.Pi * r.Config.GatherRadius * r.Config.GatherRadius
		if area <= 0 {
			return
		}
		for _, ph := range photons {
			for i := range lv.Samples {
				cosTheta := hit.Basis.K.Dot(ph.Direction.Neg())
				if cosTheta <= 0 || i >= len(ph.Radiances) {
					continue
				}
				lv.Samples[i].Radiance += ph.Radiances[i] / area
			}
		}
	}
	accumulate(r.Global)
	accumulate(r.Caustic)

	if sparse && r.Config.FallbackRays > 0 && depth < r.Direct.MaxDepth {
		lv = lv.Add(r.fallbackGather(sc, hit, out, grid, n, depth))
	}
	return lv
}

// fallbackGather traces FallbackRays cosine-weighted secondary rays from
// hit and averages their contribution through the surface's own diffuse
// term, the Whitted-style fallback for indirect light the photon map
// hasn't populated yet. The RNG is seeded from the hit position so two
// calls at the same point (e.g. a retraced pixel) agree, without needing
// a shared mutable generator across concurrent render workers.
func (r PhotonMappingRenderer) fallbackGather(sc *scene.Scenery, hit scene.Hit, out geom.Ray, grid *spectrum.Grid, n int, depth int) light.Vector {
	obj := sc.Object(hit.ObjectIndex)
	rng := rand.New(rand.NewSource(positionSeed(hit.Basis.O)))
	rays := obj.Material.RandomDiffuseRay(hit.Basis, hit.UV, out, r.Config.FallbackRays, rng)
	sum := light.NewVector(out, n)
	if len(rays) == 0 {
		return sum
	}
	for _, ray := range rays {
		incoming := r.TraceRay(sc, ray, grid, n, depth+1, hit.ObjectIndex)
		transported := obj.Outer.TransportLight(incoming, incoming.Distance)
		diffuse := obj.Material.DiffuseReemited(hit.Basis, hit.UV, transported, out)
		sum = sum.Add(diffuse)
	}
	scale := 1.0 / float64(len(rays))
	for i := range sum.Samples {
		sum.Samples[i].Radiance *= scale
	}
	return sum
}

func positionSeed(p geom.Vec3) int64 {
	bits := math.Float64bits(p.X) ^ math.Float64bits(p.Y)<<1 ^ math.Float64bits(p.Z)<<2
	seed := int64(bits)
	if seed < 0 {
		seed = -seed
	}
	return seed
}
