package asciicam

import (
	"fmt"
	"log/slog"
	"time"
)

// PerfSnapshot records the timing of one processed frame. It is purely
// informational and has no effect on the rendered output.
type PerfSnapshot struct {
	FPS float64

	// Total is the wall time of Process plus the caller-reported MaskTime.
	Total time.Duration
	// MaskTime is supplied by the caller; segmentation runs outside the
	// pipeline.
	MaskTime time.Duration
	// Conversion covers the four pipeline stages.
	Conversion time.Duration

	Composite time.Duration
	Calibrate time.Duration
	Extract   time.Duration
	Render    time.Duration

	SourceWidth  int
	SourceHeight int
	GridWidth    int
	GridHeight   int
	Masked       bool
}

// String formats the snapshot as a single status line.
func (p PerfSnapshot) String() string {
	return fmt.Sprintf(
		"%.1f fps | total %s | mask %s | convert %s | %dx%d -> %dx%d",
		p.FPS, fmtMillis(p.Total), fmtMillis(p.MaskTime),
		fmtMillis(p.Conversion), p.SourceWidth, p.SourceHeight,
		p.GridWidth, p.GridHeight)
}

// LogValue implements slog.LogValuer.
func (p PerfSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("fps", p.FPS),
		slog.Duration("total", p.Total),
		slog.Duration("mask", p.MaskTime),
		slog.Duration("conversion", p.Conversion),
		slog.Duration("composite", p.Composite),
		slog.Duration("calibrate", p.Calibrate),
		slog.Duration("extract", p.Extract),
		slog.Duration("render", p.Render),
		slog.Int("src_w", p.SourceWidth),
		slog.Int("src_h", p.SourceHeight),
		slog.Int("grid_w", p.GridWidth),
		slog.Int("grid_h", p.GridHeight),
		slog.Bool("masked", p.Masked),
	)
}

func fmtMillis(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
}

// fpsCounter counts frames over windows of at least one second.
type fpsCounter struct {
	windowStart time.Time
	frames      int
	fps         float64
}

// tick records a frame finished at now and returns the rate measured over
// the last completed window.
func (c *fpsCounter) tick(now time.Time) float64 {
	if c.windowStart.IsZero() {
		c.windowStart = now
	}
	c.frames++
	if elapsed := now.Sub(c.windowStart); elapsed >= time.Second {
		c.fps = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.windowStart = now
	}
	return c.fps
}

func (c *fpsCounter) reset() {
	*c = fpsCounter{}
}
