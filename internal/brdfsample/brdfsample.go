// Package brdfsample implements a standalone material-characterization
// mode: independent of the camera pipeline, it samples a material's
// response on a canonical hemisphere over a user-chosen angular step and
// writes the resulting (R_perp, R_par, spectrum) table to disk. Each
// probe evaluates a material the same way the renderer does — basis,
// incident vector, out ray — but sweeps a full (theta_i,phi_i) x
// (theta_v,phi_v) grid instead of following a single camera ray.
package brdfsample

import (
	"fmt"
	"io"
	"math"

	"github.com/thomasrubini/specrender/internal/geom"
	"github.com/thomasrubini/specrender/internal/light"
	"github.com/thomasrubini/specrender/internal/material"
)

// Sample is one (incident, view) direction pair's evaluated response.
type Sample struct {
	ThetaI, PhiI float64
	ThetaV, PhiV float64
	// RPerp, RPar, Spectrum are each one value per wavelength, respectively
	// the response to a pure S-polarized probe, a pure P-polarized probe,
	// and an unpolarized probe at this direction pair.
	RPerp, RPar, Spectrum []float64
}

// Config tunes the sweep: Step is the angular increment in radians for
// all four angles, N is the wavelength-grid sample count the material
// expects its incident/out Vectors to carry.
type Config struct {
	Step float64
	N    int
}

// hemisphereBasis is the canonical sampling geometry: a unit hemisphere
// over a horizontal surface at the world origin, normal +Z.
func hemisphereBasis() geom.Basis {
	return geom.BasisFromNormal(geom.Vec3{}, geom.Vec3{X: 0, Y: 0, Z: 1})
}

func sphericalDir(theta, phi float64) geom.Vec3 {
	st := math.Sin(theta)
	return geom.Vec3{X: st * math.Cos(phi), Y: st * math.Sin(phi), Z: math.Cos(theta)}
}

// probe builds a unit-radiance incident Vector already expressed in the
// basis-normal polarization frame, so the material's own internal
// ChangeIncidentFrame(basis.K) call is a no-op rotation and the probe's
// Linear0 sign survives unperturbed into the material's reflectance
// evaluation: Frame=basis.K, PPolarized=max(-Linear0,0),
// SPolarized=max(Linear0,0).
func probe(basis geom.Basis, dir geom.Vec3, n int, linear0 float64) light.Vector {
	lv := light.Vector{
		Ray:     geom.Ray{Origin: basis.O, Dir: dir},
		Samples: make([]light.Data, n),
		Frame:   basis.K,
	}
	for i := range lv.Samples {
		lv.Samples[i] = light.Data{Radiance: 1, Linear0: linear0}
	}
	return lv
}

// Evaluate runs mat's diffuseReemited+specularReemited at one (incident,
// view) direction pair, probing with pure-S, pure-P, and unpolarized unit
// incident light to recover per-wavelength R_perp/R_par/spectrum (the
// standard ellipsometric technique: illuminate with a known polarization,
// read back total reflected radiance).
func Evaluate(mat material.BSDF, thetaI, phiI, thetaV, phiV float64, n int) Sample {
	basis := hemisphereBasis()
	incidentDir := basis.ToWorld(sphericalDir(thetaI, phiI))
	viewDir := basis.ToWorld(sphericalDir(thetaV, phiV))
	out := geom.Ray{Origin: basis.O, Dir: viewDir}

	respond := func(linear0 float64) []float64 {
		incident := probe(basis, incidentDir, n, linear0)
		result := mat.DiffuseReemited(basis, geom.Vec2{}, incident, out).
			Add(mat.SpecularReemited(basis, geom.Vec2{}, incident, out))
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = result.Samples[i].Radiance
		}
		return vals
	}

	return Sample{
		ThetaI: thetaI, PhiI: phiI, ThetaV: thetaV, PhiV: phiV,
		RPerp:    respond(1),
		RPar:     respond(-1),
		Spectrum: respond(0),
	}
}

// Sweep walks (theta_i,phi_i) x (theta_v,phi_v) over the upper hemisphere
// at cfg.Step radians, evaluating mat at every direction quadruple.
// Theta ranges [0, pi/2); phi ranges [0, 2*pi).
func Sweep(mat material.BSDF, cfg Config) []Sample {
	step := cfg.Step
	if step <= 0 {
		step = math.Pi / 18 // 10 degrees
	}
	var out []Sample
	for thetaI := 0.0; thetaI < math.Pi/2; thetaI += step {
		for phiI := 0.0; phiI < 2*math.Pi; phiI += step {
			for thetaV := 0.0; thetaV < math.Pi/2; thetaV += step {
				for phiV := 0.0; phiV < 2*math.Pi; phiV += step {
					out = append(out, Evaluate(mat, thetaI, phiI, thetaV, phiV, cfg.N))
				}
			}
		}
	}
	return out
}

// WriteTable writes the sweep as whitespace-separated text, one row per
// sample: theta_i phi_i theta_v phi_v, then N r_perp values, then N
// r_par values, then N spectrum values.
func WriteTable(w io.Writer, samples []Sample) error {
	for _, s := range samples {
		if _, err := fmt.Fprintf(w, "%g %g %g %g", s.ThetaI, s.PhiI, s.ThetaV, s.PhiV); err != nil {
			return fmt.Errorf("brdfsample: write row header: %w", err)
		}
		for _, group := range [][]float64{s.RPerp, s.RPar, s.Spectrum} {
			for _, v := range group {
				if _, err := fmt.Fprintf(w, " %g", v); err != nil {
					return fmt.Errorf("brdfsample: write row value: %w", err)
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return fmt.Errorf("brdfsample: write row newline: %w", err)
		}
	}
	return nil
}
