package distrender

import (
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/thomasrubini/specrender/internal/camera"
	"github.com/thomasrubini/specrender/internal/colorhandler"
	"github.com/thomasrubini/specrender/internal/raster"
	"github.com/thomasrubini/specrender/internal/renderer"
	"github.com/thomasrubini/specrender/internal/scene"
	"github.com/thomasrubini/specrender/internal/spectrum"
	"github.com/thomasrubini/specrender/internal/task"
)

// Job mirrors task.Job: the per-camera pixel-ray generator, channel
// handler, and destination raster a worker renders into.
type Job struct {
	Camera        camera.Camera
	Handler       colorhandler.Handler
	Buffer        *raster.Buffer
	OutputPath    string
	Width, Height int
}

// WorkDescriptor is the unit of dispatch: a contiguous block of task
// units drawn from one camera's traversal order.
type WorkDescriptor struct {
	CameraIndex int
	Units       []task.Unit
}

// Pixel is one rendered pixel's resolved channel samples, the payload
// shape a worker ships back tagged RECEIVE_DATA.
type Pixel struct {
	X, Y   int
	Values []float64
}

// BlockResult is what a worker sends back after rendering a
// WorkDescriptor.
type BlockResult struct {
	CameraIndex int
	Pixels      []Pixel
}

// ClientServerConfig tunes the distributed executor.
// Chunk is the block size (-1 selects dynamic sizing, ceil(total/W));
// Workers is each rank's internal thread count (--omp-procs), used by
// the worker's own StandAlone-style parallel-for over its block.
type ClientServerConfig struct {
	Area                  task.Rect
	UnitWidth, UnitHeight int
	Chunk                 int
	RefreshEvery          int
	Workers               int
	Heartbeat             time.Duration
}

// ClientServer is the controller+worker distributed task executor.
type ClientServer struct {
	Config   ClientServerConfig
	Renderer renderer.Renderer
	Scenery  *scene.Scenery
	Grid     *spectrum.Grid
	N        int
	Logger   *zap.Logger
}

func ceilDivPositive(a, b int) int {
	if b <= 0 {
		b = 1
	}
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func blocksOf(units []task.Unit, blockSize int) [][]task.Unit {
	if blockSize < 1 {
		blockSize = 1
	}
	var out [][]task.Unit
	for i := 0; i < len(units); i += blockSize {
		end := i + blockSize
		if end > len(units) {
			end = len(units)
		}
		out = append(out, units[i:end])
	}
	return out
}

type pendingAssignment struct {
	blockIdx int
	sentAt   time.Time
}

// RunController drives the distributed render: waits for every worker to
// introduce itself, broadcasts initBlob (the renderer's opaque init data
// — photon maps, in the photon-mapping case), then dispatches blocks of
// task units, reassigning a block if its worker misses a heartbeat.
func (cs ClientServer) RunController(t Transport, job Job, manager task.Manager, cameraIndex int, initBlob any) error {
	units := manager.Units(cs.Config.Area, cs.Config.UnitWidth, cs.Config.UnitHeight)
	workerCount := t.Size() - 1
	if workerCount < 1 {
		return nil
	}

	blockSize := cs.Config.Chunk
	if blockSize < 0 {
		blockSize = ceilDivPositive(len(units), workerCount)
	}
	blocks := blocksOf(units, blockSize)

	for i := 0; i < workerCount; i++ {
		if _, err := t.Recv(anyRank); err != nil {
			return err
		}
	}
	if err := t.Broadcast(Message{Tag: TagInitData, Payload: initBlob}); err != nil {
		return err
	}

	pending := make(map[int]pendingAssignment)
	nextBlock := 0
	completedUnits := 0
	dispatch := func(rank int) {
		if nextBlock >= len(blocks) {
			t.Send(rank, Message{Tag: TagClosed})
			return
		}
		wd := WorkDescriptor{CameraIndex: cameraIndex, Units: blocks[nextBlock]}
		t.Send(rank, Message{Tag: TagSendNSize, Payload: wd})
		pending[rank] = pendingAssignment{blockIdx: nextBlock, sentAt: time.Now()}
		nextBlock++
	}

	for rank := 1; rank <= workerCount; rank++ {
		dispatch(rank)
	}

	heartbeat := cs.Config.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}

	for len(pending) > 0 {
		msg, ok, err := t.TryRecv(anyRank)
		if err != nil {
			return err
		}
		if !ok {
			cs.reassignTimedOut(t, pending, dispatch, heartbeat)
			time.Sleep(time.Millisecond)
			continue
		}
		if msg.Tag != TagReceiveData {
			continue
		}
		assignment, known := pending[msg.Rank]
		if !known {
			continue // a stray reply from a rank already reassigned past
		}
		delete(pending, msg.Rank)

		result := msg.Payload.(BlockResult)
		for _, px := range result.Pixels {
			job.Buffer.Set(px.X, px.Y, px.Values)
		}
		completedUnits += len(blocks[assignment.blockIdx])
		if cs.Config.RefreshEvery > 0 && completedUnits%cs.Config.RefreshEvery < len(blocks[assignment.blockIdx]) {
			if err := job.Buffer.Save(job.OutputPath); err != nil && cs.Logger != nil {
				cs.Logger.Warn("distributed checkpoint save failed", zap.Error(err))
			}
		}
		dispatch(msg.Rank)
	}

	return job.Buffer.Save(job.OutputPath)
}

// reassignTimedOut requeues any block whose worker hasn't replied within
// heartbeat, dispatching it to the same rank again (a lost worker is
// detected by Recv failing upstream; here we simply retry — a harsher
// deployment would mark the rank dead and stop dispatching to it).
func (cs ClientServer) reassignTimedOut(t Transport, pending map[int]pendingAssignment, dispatch func(int), heartbeat time.Duration) {
	now := time.Now()
	for rank, a := range pending {
		if now.Sub(a.sentAt) > heartbeat {
			if cs.Logger != nil {
				cs.Logger.Warn("worker missed heartbeat, reassigning its block", zap.Int("rank", rank))
			}
			delete(pending, rank)
			dispatch(rank)
		}
	}
}

// RunWorker is the worker-side loop: introduce once, then repeatedly
// receive a WorkDescriptor (render it with an internal pond-backed
// parallel-for and ship the pixels back) or CLOSED (exit).
func (cs ClientServer) RunWorker(t Transport, job Job) error {
	if err := t.Send(0, Message{Tag: TagIntroduce}); err != nil {
		return err
	}
	if _, err := t.Recv(0); err != nil { // TagInitData broadcast
		return err
	}

	for {
		msg, err := t.Recv(0)
		if err != nil {
			return err
		}
		if msg.Tag == TagClosed {
			return nil
		}
		wd := msg.Payload.(WorkDescriptor)
		result := cs.renderBlock(job, wd)
		if err := t.Send(0, Message{Tag: TagReceiveData, Payload: result}); err != nil {
			return err
		}
	}
}

func (cs ClientServer) renderBlock(job Job, wd WorkDescriptor) BlockResult {
	workers := cs.Config.Workers
	if workers < 1 {
		workers = 1
	}
	pool := pond.NewPool(workers)

	var mu sync.Mutex
	var pixels []Pixel
	for _, u := range wd.Units {
		u := u
		pool.Submit(func() {
			local := cs.renderUnit(job, u)
			mu.Lock()
			pixels = append(pixels, local...)
			mu.Unlock()
		})
	}
	pool.StopAndWait()
	return BlockResult{CameraIndex: wd.CameraIndex, Pixels: pixels}
}

func (cs ClientServer) renderUnit(job Job, u task.Unit) []Pixel {
	out := make([]Pixel, 0, u.Rect.Width()*u.Rect.Height())
	for y := u.Rect.Y0; y < u.Rect.Y1; y++ {
		v := 1 - (float64(y)+0.5)/float64(job.Height)
		for x := u.Rect.X0; x < u.Rect.X1; x++ {
			uc := (float64(x) + 0.5) / float64(job.Width)
			ray := job.Camera.PrimaryRay(uc, v)
			lv := cs.Renderer.TraceRay(cs.Scenery, ray, cs.Grid, cs.N, 0, -1)
			values := job.Handler.Resolve(lv)
			job.Buffer.Set(x, y, values)
			out = append(out, Pixel{X: x, Y: y, Values: values})
		}
	}
	return out
}
