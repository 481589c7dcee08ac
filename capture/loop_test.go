package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/wbrown/asciicam"
	"github.com/wbrown/asciicam/imageutil"
)

// scriptSource returns its steps in order, then io.EOF.
type scriptSource struct {
	steps []step
	pos   int
}

type step struct {
	frame *asciicam.PixelBuffer
	err   error
}

func (s *scriptSource) Read(ctx context.Context) (*asciicam.PixelBuffer, error) {
	if s.pos >= len(s.steps) {
		return nil, io.EOF
	}
	st := s.steps[s.pos]
	s.pos++
	return st.frame, st.err
}

func (s *scriptSource) Close() error { return nil }

func grayFrame(v uint8) *asciicam.PixelBuffer {
	return asciicam.PixelBufferFromRGBA(
		imageutil.CreateSolidImage(64, 32, imageutil.RGB{R: v, G: v, B: v}))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLoop(src Source, sink Sink, opts ...LoopOption) (*Loop, *asciicam.Pipeline) {
	p := asciicam.NewPipeline(asciicam.WithGridWidth(8))
	opts = append([]LoopOption{WithFPS(1000), WithLoopLogger(quietLogger())}, opts...)
	return NewLoop(src, p, sink, opts...), p
}

func TestLoopRendersUntilEOF(t *testing.T) {
	t.Parallel()
	src := &scriptSource{steps: []step{
		{frame: grayFrame(0)}, {frame: grayFrame(128)}, {frame: grayFrame(255)},
	}}
	var got []string
	loop, _ := newTestLoop(src, func(res *asciicam.Result) error {
		got = append(got, res.Text)
		return nil
	})

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(got))
	}
	if got[0] == got[2] {
		t.Error("Black and white frames should render differently")
	}
	if stats := loop.Stats(); stats.Frames != 3 {
		t.Errorf("Expected 3 frames, got %d", stats.Frames)
	}
}

func TestLoopSegmenterFailureRendersUnmasked(t *testing.T) {
	t.Parallel()
	src := &scriptSource{steps: []step{{frame: grayFrame(200)}}}
	seg := SegmenterFunc(func(ctx context.Context, f *asciicam.PixelBuffer) (*asciicam.ConfidenceMask, error) {
		return nil, errors.New("model not loaded")
	})

	var res *asciicam.Result
	loop, _ := newTestLoop(src, func(r *asciicam.Result) error {
		res = r
		return nil
	}, WithSegmenter(seg))

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res == nil {
		t.Fatal("Expected a result")
	}
	if res.Perf.Masked {
		t.Error("Expected the frame to be rendered without a mask")
	}
	if loop.Stats().SegmentErrors != 1 {
		t.Errorf("Expected 1 segment error, got %d", loop.Stats().SegmentErrors)
	}
}

func TestLoopAppliesMask(t *testing.T) {
	t.Parallel()
	src := &scriptSource{steps: []step{{frame: grayFrame(255)}}}
	seg := SegmenterFunc(func(ctx context.Context, f *asciicam.PixelBuffer) (*asciicam.ConfidenceMask, error) {
		return asciicam.NewConfidenceMaskFromGray(f.Width, f.Height, make([]uint8, f.Len())), nil
	})

	var res *asciicam.Result
	loop, _ := newTestLoop(src, func(r *asciicam.Result) error {
		res = r
		return nil
	}, WithSegmenter(seg))

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !res.Perf.Masked {
		t.Error("Expected the mask to be applied")
	}
	if res.Perf.MaskTime <= 0 {
		t.Errorf("Expected mask time to be measured, got %v", res.Perf.MaskTime)
	}
}

func TestLoopResetsOnRestart(t *testing.T) {
	t.Parallel()
	src := &scriptSource{steps: []step{
		{frame: grayFrame(100)},
		{err: ErrSourceRestarted},
		{frame: grayFrame(100)},
	}}
	calls := 0
	seg := SegmenterFunc(func(ctx context.Context, f *asciicam.PixelBuffer) (*asciicam.ConfidenceMask, error) {
		calls++
		if calls > 1 {
			return nil, nil
		}
		return asciicam.NewConfidenceMaskFromGray(f.Width, f.Height, make([]uint8, f.Len())), nil
	})

	loop, p := newTestLoop(src, func(*asciicam.Result) error { return nil }, WithSegmenter(seg))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loop.Stats().Restarts != 1 {
		t.Errorf("Expected 1 restart, got %d", loop.Stats().Restarts)
	}
	if p.PreviousMask() != nil {
		t.Error("Expected the restart to clear the previous mask")
	}
}

// restartingSource rewinds forever without producing a frame, like a
// looping video file with no decodable frames.
type restartingSource struct{ reads int }

func (s *restartingSource) Read(ctx context.Context) (*asciicam.PixelBuffer, error) {
	s.reads++
	return nil, ErrSourceRestarted
}

func (s *restartingSource) Close() error { return nil }

func TestLoopStopsOnBackToBackRestarts(t *testing.T) {
	t.Parallel()
	src := &restartingSource{}
	loop, _ := newTestLoop(src, func(*asciicam.Result) error { return nil })

	err := loop.Run(context.Background())
	if !errors.Is(err, ErrSourceRestarted) {
		t.Fatalf("Expected ErrSourceRestarted, got %v", err)
	}
	if src.reads != 2 {
		t.Errorf("Expected 2 reads, got %d", src.reads)
	}
	if loop.Stats().Restarts != 1 {
		t.Errorf("Expected 1 restart, got %d", loop.Stats().Restarts)
	}
}

func TestLoopSinkErrorStops(t *testing.T) {
	t.Parallel()
	stop := errors.New("terminal closed")
	src := NewStillSource(imageutil.CreateGradientImage(64, 32), StillOptions{})
	loop, _ := newTestLoop(src, func(*asciicam.Result) error { return stop })

	if err := loop.Run(context.Background()); !errors.Is(err, stop) {
		t.Errorf("Expected sink error, got %v", err)
	}
}

func TestLoopReadErrorStops(t *testing.T) {
	t.Parallel()
	broken := errors.New("device unplugged")
	src := &scriptSource{steps: []step{{err: broken}}}
	loop, _ := newTestLoop(src, func(*asciicam.Result) error { return nil })

	if err := loop.Run(context.Background()); !errors.Is(err, broken) {
		t.Errorf("Expected read error, got %v", err)
	}
}

func TestLoopPipelineErrorStops(t *testing.T) {
	t.Parallel()
	src := &scriptSource{steps: []step{{frame: asciicam.NewPixelBuffer(4, 4)}}}
	loop, _ := newTestLoop(src, func(*asciicam.Result) error { return nil })

	if err := loop.Run(context.Background()); !errors.Is(err, asciicam.ErrImageTooSmall) {
		t.Errorf("Expected ErrImageTooSmall, got %v", err)
	}
}

func TestLoopMaxFrames(t *testing.T) {
	t.Parallel()
	src := NewStillSource(imageutil.CreateGradientImage(64, 32), StillOptions{})
	n := 0
	loop, _ := newTestLoop(src, func(*asciicam.Result) error {
		n++
		return nil
	}, WithMaxFrames(3))

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 frames, got %d", n)
	}
}

func TestLoopRepeatsUnchangedFrames(t *testing.T) {
	t.Parallel()
	src := NewStillSource(imageutil.CreateColorBarsImage(64, 32), StillOptions{Frames: 4})
	var texts []string
	loop, _ := newTestLoop(src, func(r *asciicam.Result) error {
		texts = append(texts, r.Text)
		return nil
	}, WithChangeDetector(NewChangeDetector(DefaultMaxHashDistance)))

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(texts) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(texts))
	}
	stats := loop.Stats()
	if stats.Frames != 1 || stats.Repeated != 3 {
		t.Errorf("Expected 1 rendered and 3 repeated, got %+v", stats)
	}
	for i, text := range texts {
		if text != texts[0] {
			t.Errorf("Result %d differs from the first", i)
		}
	}
}

func TestLoopCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewStillSource(imageutil.CreateGradientImage(64, 32), StillOptions{})
	loop, _ := newTestLoop(src, func(*asciicam.Result) error { return nil })
	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLoopRunIDUnique(t *testing.T) {
	t.Parallel()
	a, _ := newTestLoop(&scriptSource{}, nil)
	b, _ := newTestLoop(&scriptSource{}, nil)
	if a.RunID() == "" || a.RunID() == b.RunID() {
		t.Errorf("Expected distinct run ids, got %q and %q", a.RunID(), b.RunID())
	}
}
