package opencv

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/wbrown/asciicam"
	"github.com/wbrown/asciicam/capture"
)

// DefaultMaskBlur is the Gaussian kernel size used to soften the
// foreground mask edge.
const DefaultMaskBlur = 9

// MOG2Segmenter separates moving foreground from a static background
// with OpenCV's MOG2 background model. The model adapts over time, so the
// subject should move into the frame after a few background-only frames.
//
// Shadow pixels (127 in the raw MOG2 output) become half-confidence
// foreground after blurring, which the compositor renders dimmed.
type MOG2Segmenter struct {
	mu   sync.Mutex
	sub  gocv.BackgroundSubtractorMOG2
	fg   gocv.Mat
	blur int
}

var _ capture.Segmenter = (*MOG2Segmenter)(nil)

// NewMOG2Segmenter creates a segmenter. blur is the odd Gaussian kernel
// size applied to the mask; values < 3 disable blurring.
func NewMOG2Segmenter(blur int) *MOG2Segmenter {
	if blur >= 3 && blur%2 == 0 {
		blur++
	}
	return &MOG2Segmenter{
		sub:  gocv.NewBackgroundSubtractorMOG2(),
		fg:   gocv.NewMat(),
		blur: blur,
	}
}

// Segment updates the background model with frame and returns the
// foreground confidence.
func (m *MOG2Segmenter) Segment(ctx context.Context, frame *asciicam.PixelBuffer) (*asciicam.ConfidenceMask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bgr, err := PixelBufferToMat(frame)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sub.Apply(bgr, &m.fg); err != nil {
		return nil, fmt.Errorf("opencv: background subtraction: %w", err)
	}
	if m.blur >= 3 {
		gocv.GaussianBlur(m.fg, &m.fg, image.Point{X: m.blur, Y: m.blur}, 0, 0, gocv.BorderDefault)
	}
	if m.fg.Rows() != frame.Height || m.fg.Cols() != frame.Width {
		return nil, fmt.Errorf("opencv: mask is %dx%d, frame is %dx%d",
			m.fg.Cols(), m.fg.Rows(), frame.Width, frame.Height)
	}
	return asciicam.NewConfidenceMaskFromGray(frame.Width, frame.Height, m.fg.ToBytes()), nil
}

// Close releases the background model.
func (m *MOG2Segmenter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fg.Close()
	return m.sub.Close()
}
