package asciicam

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// DefaultGridWidth is the output width in characters when none is set.
const DefaultGridWidth = 120

// Pipeline converts frames to text. It carries the previous mask between
// frames for temporal smoothing and a frame-rate counter; everything else
// is recomputed per frame.
//
// Process calls are serialized: only one frame is in flight at a time.
type Pipeline struct {
	mu sync.Mutex

	gridWidth int
	ramp      Ramp
	workers   int
	logger    *slog.Logger
	now       func() time.Time

	previous PreviousMask
	fps      fpsCounter
	last     PerfSnapshot
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// Result is the output of one Process call.
type Result struct {
	Text     string
	Perf     PerfSnapshot
	Geometry GridGeometry
}

// NewPipeline creates a Pipeline. Defaults: grid width 120, the standard
// ramp, GOMAXPROCS workers and the package logger.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		gridWidth: DefaultGridWidth,
		ramp:      DefaultRamp(),
		workers:   runtime.GOMAXPROCS(0),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithGridWidth sets the output width in characters.
func WithGridWidth(width int) PipelineOption {
	return func(p *Pipeline) {
		p.gridWidth = width
	}
}

// WithRamp sets the character ramp.
func WithRamp(ramp Ramp) PipelineOption {
	return func(p *Pipeline) {
		p.ramp = ramp
	}
}

// WithWorkers sets how many goroutines share lightness extraction.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// WithLogger sets a logger for this pipeline only.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// withClock replaces time.Now, for tests.
func withClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return Logger()
}

// Process runs one frame through compositing, calibration, lightness
// extraction and rendering.
//
// A mask whose dimensions differ from the frame is ignored for that frame.
// Configuration errors (non-positive grid width, image too small for the
// grid) abort the frame without touching the carried mask state.
func (p *Pipeline) Process(frame Frame) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	pixels := frame.Pixels
	if err := pixels.Validate(); err != nil {
		return nil, err
	}
	geo, err := ComputeGeometry(pixels.Width, pixels.Height, p.gridWidth)
	if err != nil {
		return nil, err
	}

	mask := frame.Mask
	if mask != nil && (mask.Width != pixels.Width || mask.Height != pixels.Height) {
		p.log().Debug("ignoring mask with mismatched dimensions",
			"frame_w", pixels.Width, "frame_h", pixels.Height,
			"mask_w", mask.Width, "mask_h", mask.Height)
		mask = nil
	}

	t := p.now()
	composited, previous := Composite(pixels, mask, p.previous)
	p.previous = previous
	compositeTime := p.now().Sub(t)

	t = p.now()
	cc := Calibrate(composited)
	calibrateTime := p.now().Sub(t)

	t = p.now()
	grid, _, err := ExtractLightness(composited, cc, geo.GridWidth, p.workers)
	if err != nil {
		return nil, err
	}
	extractTime := p.now().Sub(t)

	t = p.now()
	text := RenderText(grid, p.ramp)
	end := p.now()
	renderTime := end.Sub(t)

	conversion := end.Sub(start)
	perf := PerfSnapshot{
		FPS:          p.fps.tick(end),
		Total:        conversion + frame.MaskTime,
		MaskTime:     frame.MaskTime,
		Conversion:   conversion,
		Composite:    compositeTime,
		Calibrate:    calibrateTime,
		Extract:      extractTime,
		Render:       renderTime,
		SourceWidth:  pixels.Width,
		SourceHeight: pixels.Height,
		GridWidth:    geo.GridWidth,
		GridHeight:   geo.GridHeight,
		Masked:       mask != nil,
	}
	p.last = perf

	return &Result{Text: text, Perf: perf, Geometry: geo}, nil
}

// Reset forgets the previous mask and the frame-rate window. Call it when
// the capture source restarts so the next masked frame is not smoothed
// against a stale mask.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.previous = nil
	p.fps.reset()
	p.last = PerfSnapshot{}
	p.log().Info("pipeline reset")
}

// SetGridWidth changes the output width for subsequent frames.
func (p *Pipeline) SetGridWidth(width int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if width != p.gridWidth {
		p.log().Info("grid width changed", "from", p.gridWidth, "to", width)
	}
	p.gridWidth = width
}

// SetRamp changes the character ramp for subsequent frames.
func (p *Pipeline) SetRamp(ramp Ramp) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ramp = ramp
}

// GridWidth returns the configured output width.
func (p *Pipeline) GridWidth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gridWidth
}

// Ramp returns the configured character ramp.
func (p *Pipeline) Ramp() Ramp {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ramp
}

// Stats returns the snapshot of the most recent frame.
func (p *Pipeline) Stats() PerfSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// PreviousMask returns a copy of the carried mask state, or nil.
func (p *Pipeline) PreviousMask() PreviousMask {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.previous == nil {
		return nil
	}
	out := make(PreviousMask, len(p.previous))
	copy(out, p.previous)
	return out
}
