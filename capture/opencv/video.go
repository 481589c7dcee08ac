package opencv

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"gocv.io/x/gocv"

	"github.com/wbrown/asciicam"
	"github.com/wbrown/asciicam/capture"
)

// Options controls a VideoSource.
type Options struct {
	// Width and Height request a capture size from a camera. Files ignore
	// them. Zero keeps the device default.
	Width, Height int
	// ScaleWidth shrinks frames wider than this after capture, keeping the
	// aspect ratio. Zero disables scaling.
	ScaleWidth int
	// Mirror flips frames horizontally, as a front camera preview is
	// usually shown.
	Mirror bool
	// Loop rewinds a video file at its end instead of reporting io.EOF.
	Loop bool
}

// VideoSource reads frames from a camera or a video file.
type VideoSource struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	frame  gocv.Mat
	opts   Options
	file   bool
	name   string
	closed bool
}

var _ capture.Source = (*VideoSource)(nil)

// OpenWebcam opens camera device n.
func OpenWebcam(device int, opts Options) (*VideoSource, error) {
	vc, err := gocv.VideoCaptureDevice(device)
	if err != nil {
		return nil, fmt.Errorf("opencv: open camera %d: %w", device, err)
	}
	if opts.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(opts.Width))
	}
	if opts.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(opts.Height))
	}
	return newVideoSource(vc, opts, false, fmt.Sprintf("camera %d", device)), nil
}

// OpenVideoFile opens a video file or stream URL.
func OpenVideoFile(path string, opts Options) (*VideoSource, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("opencv: open %s: %w", path, err)
	}
	return newVideoSource(vc, opts, true, path), nil
}

func newVideoSource(vc *gocv.VideoCapture, opts Options, file bool, name string) *VideoSource {
	return &VideoSource{
		vc:    vc,
		frame: gocv.NewMat(),
		opts:  opts,
		file:  file,
		name:  name,
	}
}

// Read grabs the next frame. At the end of a file it returns io.EOF, or
// rewinds and returns capture.ErrSourceRestarted when Loop is set.
func (s *VideoSource) Read(ctx context.Context) (*asciicam.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, capture.ErrClosed
	}

	if ok := s.vc.Read(&s.frame); !ok || s.frame.Empty() {
		if !s.file {
			return nil, fmt.Errorf("opencv: no frame from %s", s.name)
		}
		if !s.opts.Loop {
			return nil, io.EOF
		}
		s.vc.Set(gocv.VideoCapturePosFrames, 0)
		return nil, capture.ErrSourceRestarted
	}

	if s.opts.ScaleWidth > 0 && s.frame.Cols() > s.opts.ScaleWidth {
		h := max(1, s.frame.Rows()*s.opts.ScaleWidth/s.frame.Cols())
		gocv.Resize(s.frame, &s.frame, image.Point{X: s.opts.ScaleWidth, Y: h},
			0, 0, gocv.InterpolationArea)
	}
	if s.opts.Mirror {
		gocv.Flip(s.frame, &s.frame, 1)
	}
	return MatToPixelBuffer(s.frame)
}

// Close releases the capture device. It is safe to call more than once.
func (s *VideoSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.frame.Close()
	return s.vc.Close()
}
