/*
Package cropper cuts the probable document region out of a camera frame.

The heuristic assumes the document is held roughly centered in a landscape
frame: the top and bottom thirds and the leftmost and rightmost twentieths
are treated as background and removed. The fractions are configurable as
divisors (1/HorizontalBandDivisor, 1/VerticalBandDivisor).
*/
package cropper

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/frame"
)

// ErrInvalidGeometry is returned when a frame leaves no positive crop area.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ErrInvalidConfig is returned when a band divisor is smaller than 1.
var ErrInvalidConfig = errors.New("invalid cropper config")

// MaskColor fills the border bands in Mask.
var MaskColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

type BandKind string

const (
	Horizontal BandKind = "horizontal"
	Vertical   BandKind = "vertical"
)

// Band is one of the four border rectangles treated as background.
type Band struct {
	Edge string          `json:"edge"`
	Kind BandKind        `json:"kind"`
	Rect image.Rectangle `json:"rect"`
}

/*
Geometry describes how a Width x Height frame is cut.

BandHeight is the height of the top and bottom bands (full width) and
BandWidth the width of the left and right bands (full height). Rect is the
region that remains once the bands are removed.
*/
type Geometry struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	BandHeight int             `json:"band_height"`
	BandWidth  int             `json:"band_width"`
	Rect       image.Rectangle `json:"rect"`
}

// Bands returns the top, bottom, left and right bands, in that order.
func (g Geometry) Bands() []Band {
	return []Band{
		{Edge: "top", Kind: Horizontal, Rect: image.Rect(0, 0, g.Width, g.BandHeight)},
		{Edge: "bottom", Kind: Horizontal, Rect: image.Rect(0, g.Height-g.BandHeight, g.Width, g.Height)},
		{Edge: "left", Kind: Vertical, Rect: image.Rect(0, 0, g.BandWidth, g.Height)},
		{Edge: "right", Kind: Vertical, Rect: image.Rect(g.Width-g.BandWidth, 0, g.Width, g.Height)},
	}
}

// Cropper applies the band heuristic with a fixed configuration. It holds no
// mutable state and is safe for concurrent use.
type Cropper struct {
	cfg Config
}

func New(cfg Config) *Cropper {
	return &Cropper{cfg: cfg}
}

func (c *Cropper) Config() Config {
	return c.cfg
}

/*
Plan computes the crop geometry for a width x height frame:

	bandHeight = height / HorizontalBandDivisor
	bandWidth  = width / VerticalBandDivisor
	rect       = (bandWidth, bandHeight) sized (width - 2*bandWidth, height - 2*bandHeight)

It fails with ErrInvalidGeometry when either input dimension or either
resulting dimension is not positive.
*/
func (c *Cropper) Plan(width int, height int) (g Geometry, err error) {
	if c.cfg.HorizontalBandDivisor < 1 || c.cfg.VerticalBandDivisor < 1 {
		return g, fmt.Errorf(
			"%w: band divisors must be >= 1, got horizontal=%d vertical=%d",
			ErrInvalidConfig, c.cfg.HorizontalBandDivisor, c.cfg.VerticalBandDivisor,
		)
	}
	if width <= 0 || height <= 0 {
		return g, fmt.Errorf("%w: frame is %dx%d", ErrInvalidGeometry, width, height)
	}

	bandHeight := height / c.cfg.HorizontalBandDivisor
	bandWidth := width / c.cfg.VerticalBandDivisor
	cropWidth := width - 2*bandWidth
	cropHeight := height - 2*bandHeight
	if cropWidth <= 0 || cropHeight <= 0 {
		return g, fmt.Errorf(
			"%w: %dx%d frame leaves a %dx%d crop",
			ErrInvalidGeometry, width, height, cropWidth, cropHeight,
		)
	}

	g = Geometry{
		Width:      width,
		Height:     height,
		BandHeight: bandHeight,
		BandWidth:  bandWidth,
		Rect:       image.Rect(bandWidth, bandHeight, bandWidth+cropWidth, bandHeight+cropHeight),
	}
	return g, nil
}

/*
Crop returns the document region of f as a new frame. The input is not
modified and the result does not share its pixel storage.
*/
func (c *Cropper) Crop(f *frame.Frame) (cropped *frame.Frame, e *xerr.Error) {
	if f == nil {
		err := fmt.Errorf("%w: frame is nil", ErrInvalidGeometry)
		return nil, xerr.NewError(err, "crop document region", "nil frame")
	}

	g, err := c.Plan(f.Width(), f.Height())
	if err != nil {
		return nil, xerr.NewError(err, "crop document region", fmt.Sprintf("%dx%d", f.Width(), f.Height()))
	}

	return f.SubFrame(g.Rect), nil
}

/*
Mask returns a copy of f with its four border bands painted MaskColor.
It is meant for previews that show which part of the frame is kept.
*/
func (c *Cropper) Mask(f *frame.Frame) (masked *frame.Frame, e *xerr.Error) {
	if f == nil {
		err := fmt.Errorf("%w: frame is nil", ErrInvalidGeometry)
		return nil, xerr.NewError(err, "mask document borders", "nil frame")
	}

	g, err := c.Plan(f.Width(), f.Height())
	if err != nil {
		return nil, xerr.NewError(err, "mask document borders", fmt.Sprintf("%dx%d", f.Width(), f.Height()))
	}

	bands := g.Bands()
	rects := make([]image.Rectangle, 0, len(bands))
	for _, band := range bands {
		rects = append(rects, band.Rect)
	}
	return f.Painted(MaskColor, rects...), nil
}

// Plan uses the package configuration (Cfg).
func Plan(width int, height int) (Geometry, error) {
	return New(Cfg).Plan(width, height)
}

// Crop uses the package configuration (Cfg).
func Crop(f *frame.Frame) (*frame.Frame, *xerr.Error) {
	return New(Cfg).Crop(f)
}

// Mask uses the package configuration (Cfg).
func Mask(f *frame.Frame) (*frame.Frame, *xerr.Error) {
	return New(Cfg).Mask(f)
}
