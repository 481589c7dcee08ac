// Package asciicam turns camera frames into text.
//
// Each frame passes through four stages:
//
//  1. Composite: an optional foreground confidence mask fades the
//     background toward black, smoothed against the previous mask.
//  2. Calibrate: Gray-World white balance plus a coarse warm/cool
//     temperature correction, estimated from the frame itself.
//  3. Extract: the corrected frame is decoded to linear light and
//     averaged into a grid of CIE L* values, one per character cell.
//  4. Render: the grid is sharpened with a 3x3 unsharp mask and each cell
//     is mapped to a character from a light-to-dark ramp.
//
// A Pipeline runs the stages and carries the small amount of state that
// spans frames: the previous mask and a frame-rate counter.
//
// Basic usage:
//
//	p := asciicam.NewPipeline(asciicam.WithGridWidth(100))
//	res, err := p.Process(asciicam.Frame{Pixels: buf})
//	if err != nil {
//		return err
//	}
//	fmt.Print(res.Text)
//
// The stages are also exported individually for callers that want to
// reuse one of them on its own.
package asciicam
