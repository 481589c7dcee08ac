package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wbrown/asciicam"
)

// DefaultFPS is the pacing rate used when none is configured.
const DefaultFPS = 30

// Sink receives every rendered frame. Returning an error stops the loop.
type Sink func(res *asciicam.Result) error

// LoopStats counts what the loop did since it was created.
type LoopStats struct {
	Frames        uint64 // frames rendered by the pipeline
	Repeated      uint64 // unchanged frames answered with the last result
	Dropped       uint64 // ticks skipped because a frame was still in flight
	SegmentErrors uint64
	Restarts      uint64
}

// Loop reads frames from a Source at a fixed rate and renders them.
type Loop struct {
	source    Source
	pipeline  *asciicam.Pipeline
	sink      Sink
	segmenter Segmenter
	detector  *ChangeDetector
	fps       float64
	maxFrames int
	runID     string
	logger    *slog.Logger

	last *asciicam.Result

	frames        atomic.Uint64
	repeated      atomic.Uint64
	dropped       atomic.Uint64
	segmentErrors atomic.Uint64
	restarts      atomic.Uint64
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithSegmenter enables foreground masking.
func WithSegmenter(s Segmenter) LoopOption {
	return func(l *Loop) {
		l.segmenter = s
	}
}

// WithFPS sets the pacing rate. Values <= 0 select DefaultFPS.
func WithFPS(fps float64) LoopOption {
	return func(l *Loop) {
		l.fps = fps
	}
}

// WithChangeDetector skips frames that look the same as the last
// rendered one and re-sends the previous result instead.
func WithChangeDetector(d *ChangeDetector) LoopOption {
	return func(l *Loop) {
		l.detector = d
	}
}

// WithMaxFrames stops the loop after n frames have been sent to the
// sink. Zero means no limit.
func WithMaxFrames(n int) LoopOption {
	return func(l *Loop) {
		l.maxFrames = n
	}
}

// WithLoopLogger sets the logger. Defaults to slog.Default().
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates a loop. Each loop gets a random run id that tags its
// log records.
func NewLoop(source Source, pipeline *asciicam.Pipeline, sink Sink, opts ...LoopOption) *Loop {
	l := &Loop{
		source:   source,
		pipeline: pipeline,
		sink:     sink,
		fps:      DefaultFPS,
		runID:    uuid.New().String(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.fps <= 0 {
		l.fps = DefaultFPS
	}
	l.logger = l.logger.With("run_id", l.runID)
	return l
}

// RunID returns the id attached to this loop's log records.
func (l *Loop) RunID() string {
	return l.runID
}

// Stats returns a snapshot of the loop counters. Safe to call from any
// goroutine.
func (l *Loop) Stats() LoopStats {
	return LoopStats{
		Frames:        l.frames.Load(),
		Repeated:      l.repeated.Load(),
		Dropped:       l.dropped.Load(),
		SegmentErrors: l.segmentErrors.Load(),
		Restarts:      l.restarts.Load(),
	}
}

// Run processes frames until the source is exhausted, the sink fails,
// the frame limit is reached or ctx is cancelled. An exhausted source
// and the frame limit both return nil.
//
// One frame is in flight at a time. Ticks that fire while a frame is
// being processed are dropped rather than queued, so a slow frame delays
// only itself.
func (l *Loop) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / l.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.logger.Info("capture loop starting", "fps", l.fps, "masked", l.segmenter != nil)

	sent := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		done, err := l.step(ctx)
		if err != nil || done {
			l.logger.Info("capture loop stopped", "frames", l.frames.Load(), "error", err)
			return err
		}
		sent++
		if l.maxFrames > 0 && sent >= l.maxFrames {
			l.logger.Info("capture loop reached frame limit", "frames", sent)
			return nil
		}

		select {
		case <-ticker.C:
			l.dropped.Add(1)
		default:
		}
	}
}

// step handles one tick. done is true when the source is exhausted.
func (l *Loop) step(ctx context.Context) (done bool, err error) {
	frame, err := l.source.Read(ctx)
	if errors.Is(err, ErrSourceRestarted) {
		l.restarts.Add(1)
		l.logger.Warn("source restarted, resetting pipeline state")
		l.Reset()
		frame, err = l.source.Read(ctx)
		if errors.Is(err, ErrSourceRestarted) {
			return false, fmt.Errorf("read frame: %w twice without a frame", err)
		}
	}
	switch {
	case errors.Is(err, io.EOF):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("read frame: %w", err)
	}

	if l.detector != nil {
		changed, dist, herr := l.detector.Changed(frame)
		if herr != nil {
			l.logger.Debug("change detection failed", "error", herr)
		}
		if !changed && l.last != nil {
			l.repeated.Add(1)
			l.logger.Debug("frame unchanged, repeating last result", "distance", dist)
			return false, l.sink(l.last)
		}
	}

	in := asciicam.Frame{Pixels: frame}
	if l.segmenter != nil {
		start := time.Now()
		mask, serr := l.segmenter.Segment(ctx, frame)
		in.MaskTime = time.Since(start)
		if serr != nil {
			l.segmentErrors.Add(1)
			l.logger.Warn("segmentation failed, rendering unmasked", "error", serr)
		} else {
			in.Mask = mask
		}
	}

	res, err := l.pipeline.Process(in)
	if err != nil {
		return false, fmt.Errorf("process frame: %w", err)
	}
	l.frames.Add(1)
	l.last = res
	l.logger.Debug("frame rendered", "perf", res.Perf)
	return false, l.sink(res)
}

// Reset clears the pipeline's carried state and the change detector.
// Run calls it when the source reports a restart; it must not be called
// concurrently with Run.
func (l *Loop) Reset() {
	l.pipeline.Reset()
	if l.detector != nil {
		l.detector.Reset()
	}
	l.last = nil
}
