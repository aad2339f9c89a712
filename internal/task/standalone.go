package task

import (
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/thomasrubini/specrender/internal/camera"
	"github.com/thomasrubini/specrender/internal/colorhandler"
	"github.com/thomasrubini/specrender/internal/raster"
	"github.com/thomasrubini/specrender/internal/renderer"
	"github.com/thomasrubini/specrender/internal/scene"
	"github.com/thomasrubini/specrender/internal/spectrum"
)

// Job bundles everything one camera needs rendered: its pixel-ray
// generator, the photometric channel handler resolving a LightVector to
// output samples, the destination raster, and the width/height that
// pixel coordinates are normalized against.
type Job struct {
	Camera        camera.Camera
	Handler       colorhandler.Handler
	Buffer        *raster.Buffer
	OutputPath    string
	Width, Height int
}

// StandAloneConfig holds the knobs relevant to the
// single-process executor: the render area and unit size, the chunk
// size controlling how interleaved vs. contiguous units are handed to
// workers, the checkpoint cadence, and the worker-pool size.
type StandAloneConfig struct {
	Area                  Rect
	UnitWidth, UnitHeight int
	Chunk                 int
	RefreshEvery          int
	Workers               int
}

// StandAlone is the single-process task executor: an unordered
// parallel-for over the task-unit list produced by a Manager, backed by
// a pond worker pool for OS-thread parallelism, with periodic atomic
// checkpointing of the output raster.
type StandAlone struct {
	Config   StandAloneConfig
	Renderer renderer.Renderer
	Scenery  *scene.Scenery
	Grid     *spectrum.Grid
	N        int
	Logger   *zap.Logger
}

// chunkUnits partitions units into contiguous runs of size chunkSize,
// the unit of work a single pool.Submit call processes; chunkSize=1
// clusters a worker on contiguous image area, chunkSize>1 interleaves
// across the manager's own traversal order to give a quick global
// preview.
func chunkUnits(units []Unit, chunkSize int) [][]Unit {
	if chunkSize < 1 {
		chunkSize = 1
	}
	var out [][]Unit
	for i := 0; i < len(units); i += chunkSize {
		end := i + chunkSize
		if end > len(units) {
			end = len(units)
		}
		out = append(out, units[i:end])
	}
	return out
}

// Run walks manager's task-unit order over job, rendering every pixel
// through r.Renderer/r.Scenery and writing resolved channel samples into
// job.Buffer, checkpointing to job.OutputPath every RefreshEvery units.
func (s StandAlone) Run(job Job, manager Manager) error {
	units := manager.Units(s.Config.Area, s.Config.UnitWidth, s.Config.UnitHeight)
	chunks := chunkUnits(units, s.Config.Chunk)

	workers := s.Config.Workers
	if workers < 1 {
		workers = 1
	}
	pool := pond.NewPool(workers)
	defer pool.StopAndWait()

	var completed int64
	var saveMu sync.Mutex
	var firstSaveErr error

	for _, c := range chunks {
		c := c
		pool.Submit(func() {
			for _, u := range c {
				s.renderUnit(job, u)
				n := atomic.AddInt64(&completed, 1)
				if s.Config.RefreshEvery > 0 && n%int64(s.Config.RefreshEvery) == 0 {
					s.checkpoint(job, &saveMu, &firstSaveErr)
				}
			}
		})
	}
	pool.StopAndWait()

	s.checkpoint(job, &saveMu, &firstSaveErr)
	return firstSaveErr
}

func (s StandAlone) checkpoint(job Job, mu *sync.Mutex, firstErr *error) {
	mu.Lock()
	defer mu.Unlock()
	if err := job.Buffer.Save(job.OutputPath); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("checkpoint save failed, will retry at next boundary", zap.Error(err))
		}
		if *firstErr == nil {
			*firstErr = err
		}
		return
	}
	*firstErr = nil
}

// renderUnit renders every pixel of u in scanline order, a deterministic
// order independent of worker scheduling.
func (s StandAlone) renderUnit(job Job, u Unit) {
	for y := u.Rect.Y0; y < u.Rect.Y1; y++ {
		v := 1 - (float64(y)+0.5)/float64(job.Height)
		for x := u.Rect.X0; x < u.Rect.X1; x++ {
			uc := (float64(x) + 0.5) / float64(job.Width)
			ray := job.Camera.PrimaryRay(uc, v)
			lv := s.Renderer.TraceRay(s.Scenery, ray, s.Grid, s.N, 0, -1)
			job.Buffer.Set(x, y, job.Handler.Resolve(lv))
		}
	}
}
