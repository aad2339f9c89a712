// Command specrender is the renderer binary: it parses CLI flags, loads
// a scene descriptor, and drives the chosen task executor (single-
// process StandAlone, or the in-process ClientServer simulation of an
// --mpi-procs deployment) to completion. The render loop itself is
// delegated to internal/task and internal/distrender.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thomasrubini/specrender/internal/brdfsample"
	"github.com/thomasrubini/specrender/internal/distrender"
	"github.com/thomasrubini/specrender/internal/raster"
	"github.com/thomasrubini/specrender/internal/renderer"
	"github.com/thomasrubini/specrender/internal/sceneconfig"
	"github.com/thomasrubini/specrender/internal/task"
)

type options struct {
	area                       string
	mpiProcs, ompProcs         int
	taskSize                   string
	refresh                    int
	chunk                      int
	overwrite                  bool
	fragment                   bool
	line, lineSnake            string
	spiralTrigo, spiralInverse bool
	saveInit, loadInit         string
	debug                      bool
	brdf                       string
	cpuprofile                 string
}

func parseFlags(args []string) (options, string, error) {
	fs := flag.NewFlagSet("specrender", flag.ContinueOnError)
	var o options
	fs.StringVar(&o.area, "area", "", "xmin:ymin:xmax:ymax, default whole image")
	fs.IntVar(&o.mpiProcs, "mpi-procs", 1, "controller+worker process count (simulated in-process)")
	fs.IntVar(&o.ompProcs, "omp-procs", 1, "threads per process")
	fs.StringVar(&o.taskSize, "task-size", "", "W:H task unit size")
	fs.IntVar(&o.refresh, "refresh", 0, "checkpoint image after every K task units")
	fs.IntVar(&o.chunk, "chunk", -1, "chunk size for parallel scheduling, -1 = auto")
	fs.BoolVar(&o.overwrite, "overwrite", false, "overwrite existing output instead of resuming")
	fs.BoolVar(&o.fragment, "fragment", false, "each worker writes its own image fragment")
	fs.StringVar(&o.line, "line", "", "line traversal order (LRTB, LRBT, RLTB, RLBT, TBLR, TBRL, BTLR, BTRL)")
	fs.StringVar(&o.lineSnake, "line-snake", "", "snaking line traversal order")
	fs.BoolVar(&o.spiralTrigo, "spiral-trigo", false, "spiral traversal, counterclockwise rings")
	fs.BoolVar(&o.spiralInverse, "spiral-inverse", false, "spiral traversal, alternate start corner")
	fs.StringVar(&o.saveInit, "save-init", "", "serialize the renderer's init blob to this file")
	fs.StringVar(&o.loadInit, "load-init", "", "deserialize the renderer's init blob from this file")
	fs.BoolVar(&o.debug, "debug", false, "enable per-process log files <rank>_<basename>")
	fs.StringVar(&o.brdf, "brdf", "", "BRDF sampling mode: value is the angular step in radians, e.g. --brdf=0.1")
	fs.StringVar(&o.cpuprofile, "cpuprofile", "", "write cpu profile to file")
	if err := fs.Parse(args); err != nil {
		return options{}, "", err
	}
	if fs.NArg() < 1 {
		return options{}, "", fmt.Errorf("usage: specrender [flags] <scenery-file>")
	}
	return o, fs.Arg(0), nil
}

func parseArea(s string) (task.Rect, bool, error) {
	if s == "" {
		return task.Rect{}, false, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return task.Rect{}, false, fmt.Errorf("--area must be xmin:ymin:xmax:ymax")
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return task.Rect{}, false, fmt.Errorf("--area: %w", err)
		}
		vals[i] = v
	}
	return task.Rect{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}, true, nil
}

func parseTaskSize(s string) (w, h int, err error) {
	if s == "" {
		return 32, 32, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--task-size must be W:H")
	}
	w, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	h, err = strconv.Atoi(parts[1])
	return w, h, err
}

func parseLineOrder(s string) (task.LineOrder, error) {
	switch strings.ToUpper(s) {
	case "LRTB":
		return task.LRTB, nil
	case "LRBT":
		return task.LRBT, nil
	case "RLTB":
		return task.RLTB, nil
	case "RLBT":
		return task.RLBT, nil
	case "TBLR":
		return task.TBLR, nil
	case "TBRL":
		return task.TBRL, nil
	case "BTLR":
		return task.BTLR, nil
	case "BTRL":
		return task.BTRL, nil
	default:
		return 0, fmt.Errorf("unknown line order %q", s)
	}
}

// resolveManager picks the task traversal order from the flags; Line
// wins over Spiral when both are specified.
func resolveManager(o options) (task.Manager, error) {
	switch {
	case o.lineSnake != "":
		order, err := parseLineOrder(o.lineSnake)
		if err != nil {
			return nil, err
		}
		return task.Line{Order: order, Snake: true}, nil
	case o.line != "":
		order, err := parseLineOrder(o.line)
		if err != nil {
			return nil, err
		}
		return task.Line{Order: order, Snake: false}, nil
	case o.spiralTrigo || o.spiralInverse:
		return task.Spiral{Trigo: o.spiralTrigo, Inverse: o.spiralInverse}, nil
	default:
		return task.Line{Order: task.LRTB}, nil
	}
}

func newLogger(debug bool, rank int, scenePath string) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	base := filepath.Base(scenePath)
	name := fmt.Sprintf("%d_%s", rank, base)
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("open debug log %s: %w", name, err)
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(f),
		zapcore.DebugLevel,
	)
	return zap.New(core), nil
}

func main() {
	o, scenePath, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if o.cpuprofile != "" {
		f, err := os.Create(o.cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(o, scenePath); err != nil {
		fmt.Fprintln(os.Stderr, "specrender:", err)
		os.Exit(1)
	}
}

func run(o options, scenePath string) error {
	cfg, err := sceneconfig.Load(scenePath)
	if err != nil {
		return err
	}
	built, err := sceneconfig.Build(cfg)
	if err != nil {
		return err
	}

	if o.brdf != "" {
		return runBRDFSampling(built, o.brdf)
	}

	if err := resolvePhotonMaps(&built, o); err != nil {
		return err
	}

	manager, err := resolveManager(o)
	if err != nil {
		return err
	}
	area, hasArea, err := parseArea(o.area)
	if err != nil {
		return err
	}
	unitW, unitH, err := parseTaskSize(o.taskSize)
	if err != nil {
		return err
	}

	logger, err := newLogger(o.debug, 0, scenePath)
	if err != nil {
		return err
	}
	defer logger.Sync()

	for i, cam := range built.Cameras {
		if !hasArea {
			area = task.Rect{X0: 0, Y0: 0, X1: cam.Width, Y1: cam.Height}
		}
		buffer, err := openOutputBuffer(cam, o.overwrite)
		if err != nil {
			return fmt.Errorf("camera %d: %w", i, err)
		}

		if o.mpiProcs > 1 {
			if err := runDistributed(o, built, manager, area, unitW, unitH, cam, buffer, logger); err != nil {
				return fmt.Errorf("camera %d: %w", i, err)
			}
			continue
		}

		standalone := task.StandAlone{
			Config: task.StandAloneConfig{
				Area: area, UnitWidth: unitW, UnitHeight: unitH,
				Chunk: o.chunk, RefreshEvery: o.refresh, Workers: o.ompProcs,
			},
			Renderer: built.Renderer, Scenery: built.Scenery, Grid: built.Grid, N: built.N,
			Logger: logger,
		}
		job := task.Job{Camera: cam.Camera, Handler: cam.Handler, Buffer: buffer, OutputPath: cam.OutputPath, Width: cam.Width, Height: cam.Height}
		if err := standalone.Run(job, manager); err != nil {
			return fmt.Errorf("camera %d: %w", i, err)
		}
	}

	return nil
}

func openOutputBuffer(cam sceneconfig.CameraJob, overwrite bool) (*raster.Buffer, error) {
	if !overwrite {
		if b, err := raster.Load(cam.OutputPath); err == nil {
			return b, nil
		}
	}
	return raster.NewBuffer(cam.Width, cam.Height, cam.Handler.Channels()), nil
}

// runDistributed simulates an --mpi-procs N deployment in-process: rank
// 0 runs the controller loop, ranks 1..N-1 each run a worker loop, all
// as goroutines sharing this process's memory over a channel-backed
// Transport rather than a real network transport.
func runDistributed(o options, built sceneconfig.Built, manager task.Manager, area task.Rect, unitW, unitH int, cam sceneconfig.CameraJob, buffer *raster.Buffer, logger *zap.Logger) error {
	transports := distrender.NewChannelTransports(o.mpiProcs)

	var initBlob any
	if pm, ok := built.Renderer.(renderer.PhotonMappingRenderer); ok {
		initBlob = distrender.BuildBlob(pm.Global, pm.Caustic)
	}

	csCfg := distrender.ClientServerConfig{
		Area: area, UnitWidth: unitW, UnitHeight: unitH,
		Chunk: o.chunk, RefreshEvery: o.refresh, Workers: o.ompProcs,
	}
	job := distrender.Job{Camera: cam.Camera, Handler: cam.Handler, Buffer: buffer, OutputPath: cam.OutputPath, Width: cam.Width, Height: cam.Height}

	var wg sync.WaitGroup
	errs := make([]error, o.mpiProcs)

	wg.Add(1)
	go func() {
		defer wg.Done()
		cs := distrender.ClientServer{Config: csCfg, Renderer: built.Renderer, Scenery: built.Scenery, Grid: built.Grid, N: built.N, Logger: logger}
		errs[0] = cs.RunController(transports[0], job, manager, 0, initBlob)
	}()

	for rank := 1; rank < o.mpiProcs; rank++ {
		rank := rank
		wg.Add(1)
		go func() {
			defer wg.Done()
			cs := distrender.ClientServer{Config: csCfg, Renderer: built.Renderer, Scenery: built.Scenery, Grid: built.Grid, N: built.N, Logger: logger}
			errs[rank] = cs.RunWorker(transports[rank], job)
		}()
	}

	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// resolvePhotonMaps loads or builds the photon maps a PhotonMappingRenderer
// needs before any rendering starts, honoring --save-init/--load-init.
// The maps are built once and held fixed for the whole render.
func resolvePhotonMaps(built *sceneconfig.Built, o options) error {
	pm, ok := built.Renderer.(renderer.PhotonMappingRenderer)
	if !ok {
		return nil
	}

	if o.loadInit != "" {
		f, err := os.Open(o.loadInit)
		if err != nil {
			return fmt.Errorf("--load-init: %w", err)
		}
		defer f.Close()
		blob, err := distrender.ReadInitBlob(f)
		if err != nil {
			return fmt.Errorf("--load-init: %w", err)
		}
		pm.Global, pm.Caustic = blob.Trees()
		built.Renderer = pm
		return nil
	}

	// Seeded deterministically so a default run is reproducible rather
	// than wall-clock dependent.
	rng := rand.New(rand.NewSource(1))
	pm.Global, pm.Caustic = renderer.BuildPhotonMaps(built.Scenery, pm.Config, built.N, rng)
	built.Renderer = pm

	if o.saveInit != "" {
		f, err := os.Create(o.saveInit)
		if err != nil {
			return fmt.Errorf("--save-init: %w", err)
		}
		defer f.Close()
		blob := distrender.BuildBlob(pm.Global, pm.Caustic)
		if err := distrender.WriteInitBlob(f, blob); err != nil {
			return fmt.Errorf("--save-init: %w", err)
		}
	}
	return nil
}

func runBRDFSampling(built sceneconfig.Built, brdfArg string) error {
	step, err := strconv.ParseFloat(brdfArg, 64)
	if err != nil {
		return fmt.Errorf("--brdf step: %w", err)
	}

	for name, mat := range built.Materials {
		samples := brdfsample.Sweep(mat, brdfsample.Config{Step: step, N: built.N})
		path := fmt.Sprintf("brdf_%s.txt", name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		err = brdfsample.WriteTable(f, samples)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
