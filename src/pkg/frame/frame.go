// Package frame holds the decoded pixel buffer passed between the scanner stages.
package frame

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

/*
Frame is a W x H grid of interleaved, non-premultiplied RGBA pixels with
8 bits per channel. Its bounds always start at (0, 0).

A Frame owns its pixel storage: constructors copy their input, and every
transformation in this repository returns a new Frame instead of mutating
the one it was given.
*/
type Frame struct {
	img *image.NRGBA
}

// New allocates a transparent black frame. Negative sizes are treated as zero.
func New(width int, height int) *Frame {
	width = max(width, 0)
	height = max(height, 0)
	return &Frame{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

/*
FromImage copies any image.Image into a new Frame, converting its pixels to
NRGBA and moving its origin to (0, 0). It returns nil for a nil image.
*/
func FromImage(img image.Image) *Frame {
	if img == nil {
		return nil
	}
	return &Frame{img: imaging.Clone(img)}
}

func (f *Frame) Width() int {
	if f == nil || f.img == nil {
		return 0
	}
	return f.img.Rect.Dx()
}

func (f *Frame) Height() int {
	if f == nil || f.img == nil {
		return 0
	}
	return f.img.Rect.Dy()
}

// Empty reports whether the frame is nil or has no pixels.
func (f *Frame) Empty() bool {
	return f.Width() <= 0 || f.Height() <= 0
}

func (f *Frame) Bounds() image.Rectangle {
	if f == nil || f.img == nil {
		return image.Rectangle{}
	}
	return f.img.Rect
}

/*
Image exposes the backing buffer for encoders and image libraries.
Callers must treat it as read-only; use Clone for a writable copy.
*/
func (f *Frame) Image() *image.NRGBA {
	if f == nil {
		return nil
	}
	return f.img
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	if f == nil || f.img == nil {
		return nil
	}
	return &Frame{img: imaging.Clone(f.img)}
}

func (f *Frame) NRGBAAt(x int, y int) color.NRGBA {
	return f.img.NRGBAAt(x, y)
}

/*
Row returns a copy of the pixel bytes of row y (4 bytes per pixel).
It returns nil when y is outside the frame.
*/
func (f *Frame) Row(y int) []byte {
	if f.Empty() || y < 0 || y >= f.Height() {
		return nil
	}
	start := y * f.img.Stride
	row := make([]byte, f.Width()*4)
	copy(row, f.img.Pix[start:start+f.Width()*4])
	return row
}

/*
SubFrame copies the pixels inside rect into a new Frame. rect is clipped to
the frame bounds; the result never shares storage with f.
*/
func (f *Frame) SubFrame(rect image.Rectangle) *Frame {
	if f == nil || f.img == nil {
		return nil
	}
	return &Frame{img: imaging.Crop(f.img, rect)}
}

/*
Painted returns a copy of the frame with every rectangle in rects filled
with c. Rectangles are clipped to the frame bounds.
*/
func (f *Frame) Painted(c color.Color, rects ...image.Rectangle) *Frame {
	out := f.Clone()
	if out == nil {
		return nil
	}
	for _, r := range rects {
		r = r.Intersect(out.img.Rect)
		if r.Empty() {
			continue
		}
		out.img = imaging.Paste(out.img, imaging.New(r.Dx(), r.Dy(), c), r.Min)
	}
	return out
}
