// Command asciicam renders a webcam, video file or image as live text in
// the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/wbrown/asciicam"
	"github.com/wbrown/asciicam/capture"
	"github.com/wbrown/asciicam/capture/opencv"
)

const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".tif": true, ".tiff": true,
}

func main() {
	os.Exit(run())
}

// run returns the process exit code. Deferred cleanup runs before main
// exits.
func run() int {
	cfg := capture.LoadConfig()

	input := flag.String("input", cfg.Input,
		"Image or video file to render (default: webcam)")
	device := flag.Int("device", cfg.Device,
		"Webcam device index")
	width := flag.Int("width", cfg.GridWidth,
		"Output width in characters")
	rampName := flag.String("ramp", cfg.Ramp,
		"Character ramp: "+strings.Join(asciicam.RampNames(), ", "))
	fps := flag.Float64("fps", cfg.FPS,
		"Target frames per second")
	mirror := flag.Bool("mirror", cfg.Mirror,
		"Mirror the picture horizontally")
	segment := flag.Bool("segment", cfg.Segment,
		"Fade out the static background (MOG2 background subtraction)")
	frames := flag.Int("frames", 0,
		"Stop after this many frames (0 = until the input ends)")
	stats := flag.Bool("stats", false,
		"Print timing below each frame")
	skipSimilar := flag.Bool("skip-similar", cfg.SkipSimilar,
		"Reuse the last output while the picture is unchanged")
	logLevel := flag.String("log-level", cfg.LogLevel,
		"Log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q\n", *logLevel)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	asciicam.SetLogger(logger)

	ramp, err := asciicam.LookupRamp(*rampName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *width <= 0 {
		fmt.Fprintf(os.Stderr, "Width must be positive, got %d\n", *width)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := openSource(*input, *device, *width, *mirror, *frames)
	if err != nil {
		slog.Error("failed to open input", "input", *input, "error", err)
		return 1
	}
	defer source.Close()

	pipeline := asciicam.NewPipeline(
		asciicam.WithGridWidth(*width),
		asciicam.WithRamp(ramp),
		asciicam.WithWorkers(cfg.Workers),
	)

	opts := []capture.LoopOption{
		capture.WithFPS(*fps),
		capture.WithMaxFrames(*frames),
	}
	if *segment {
		seg := opencv.NewMOG2Segmenter(opencv.DefaultMaskBlur)
		defer seg.Close()
		opts = append(opts, capture.WithSegmenter(seg))
	}
	if *skipSimilar {
		opts = append(opts, capture.WithChangeDetector(
			capture.NewChangeDetector(cfg.MaxHashDistance)))
	}

	out := newTerminal(os.Stdout, *stats)
	loop := capture.NewLoop(source, pipeline, out.write, opts...)

	err = loop.Run(ctx)
	out.flush()
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("capture failed", "error", err)
		return 1
	}
	if *stats {
		s := loop.Stats()
		fmt.Fprintf(os.Stderr, "frames %d, repeated %d, dropped ticks %d, segment errors %d\n",
			s.Frames, s.Repeated, s.Dropped, s.SegmentErrors)
	}
	return 0
}

func openSource(input string, device, width int, mirror bool, frames int) (capture.Source, error) {
	video := opencv.Options{Mirror: mirror, ScaleWidth: width * capture.MaxCellWidth}
	if input == "" {
		return opencv.OpenWebcam(device, video)
	}
	if imageExts[strings.ToLower(filepath.Ext(input))] {
		// A still image renders once unless a frame count is given.
		return capture.OpenStill(input, capture.StillOptions{
			GridWidth: width,
			Mirror:    mirror,
			Frames:    max(frames, 1),
		})
	}
	return opencv.OpenVideoFile(input, video)
}

// terminal redraws frames in place when stdout is a terminal and prints
// them one after another otherwise.
type terminal struct {
	w       *bufio.Writer
	redraw  bool
	stats   bool
	started bool
}

func newTerminal(f *os.File, stats bool) *terminal {
	redraw := false
	if fi, err := f.Stat(); err == nil {
		redraw = fi.Mode()&os.ModeCharDevice != 0
	}
	return &terminal{w: bufio.NewWriterSize(f, 64*1024), redraw: redraw, stats: stats}
}

func (t *terminal) write(res *asciicam.Result) error {
	if t.redraw {
		if !t.started {
			t.w.WriteString(clearScreen)
		}
		t.w.WriteString(cursorHome)
	}
	t.started = true
	t.w.WriteString(res.Text)
	if t.stats {
		t.w.WriteString(res.Perf.String())
		t.w.WriteByte('\n')
	}
	return t.w.Flush()
}

func (t *terminal) flush() {
	t.w.Flush()
}
