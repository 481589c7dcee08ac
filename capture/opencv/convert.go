// Package opencv provides camera, video and segmentation collaborators for
// the capture loop, backed by OpenCV through gocv. Building it requires
// OpenCV 4 to be installed.
package opencv

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/wbrown/asciicam"
)

// MatToPixelBuffer converts an 8-bit gray, BGR or BGRA Mat into a new
// RGBA PixelBuffer.
func MatToPixelBuffer(mat gocv.Mat) (*asciicam.PixelBuffer, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("opencv: empty mat")
	}
	var code gocv.ColorConversionCode
	switch mat.Channels() {
	case 1:
		code = gocv.ColorGrayToBGRA
	case 3:
		code = gocv.ColorBGRToRGBA
	case 4:
		code = gocv.ColorBGRAToRGBA
	default:
		return nil, fmt.Errorf("opencv: unsupported channel count %d", mat.Channels())
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(mat, &rgba, code)

	buf := &asciicam.PixelBuffer{
		Width:  rgba.Cols(),
		Height: rgba.Rows(),
		Pix:    rgba.ToBytes(),
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// PixelBufferToMat converts a PixelBuffer into a new BGR Mat. The caller
// must Close it.
func PixelBufferToMat(buf *asciicam.PixelBuffer) (gocv.Mat, error) {
	if err := buf.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	rgba, err := gocv.NewMatFromBytes(buf.Height, buf.Width, gocv.MatTypeCV8UC4, buf.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("opencv: wrap pixels: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}
