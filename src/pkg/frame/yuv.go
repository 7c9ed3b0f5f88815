package frame

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/util"
)

// NV21Size is the byte length of a width x height NV21 buffer.
func NV21Size(width int, height int) int {
	chromaWidth, chromaHeight := chromaSize(width, height)
	return width*height + 2*chromaWidth*chromaHeight
}

func chromaSize(width int, height int) (int, int) {
	return (width + 1) / 2, (height + 1) / 2
}

/*
FromNV21 converts a camera preview frame in NV21 layout (full resolution Y
plane followed by interleaved V/U samples at half resolution in both
directions) into a Frame.

The conversion goes through a JPEG encode and decode at Cfg.JPEGQuality,
which is how camera frames are normally turned into bitmaps on the device.
Extra bytes after the expected buffer size (row padding of some drivers) are
ignored.
*/
func FromNV21(data []byte, width int, height int) (f *Frame, e *xerr.Error) {
	if width <= 0 || height <= 0 {
		err := fmt.Errorf("frame size must be positive, got %dx%d", width, height)
		return nil, xerr.NewError(err, "convert NV21 frame", fmt.Sprintf("%dx%d", width, height))
	}
	expected := NV21Size(width, height)
	if len(data) < expected {
		err := fmt.Errorf("NV21 buffer has %d bytes, need %d", len(data), expected)
		return nil, xerr.NewError(err, "convert NV21 frame", fmt.Sprintf("%dx%d", width, height))
	}

	chromaWidth, chromaHeight := chromaSize(width, height)
	ycbcr := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
	copy(ycbcr.Y, data[:width*height])

	vu := data[width*height : expected]
	for i := 0; i < chromaWidth*chromaHeight; i++ {
		ycbcr.Cr[i] = vu[2*i]
		ycbcr.Cb[i] = vu[2*i+1]
	}

	var compressed bytes.Buffer
	quality := util.Clamp(Cfg.JPEGQuality, 1, 100)
	encodeErr := jpeg.Encode(&compressed, ycbcr, &jpeg.Options{Quality: quality})
	if encodeErr != nil {
		return nil, xerr.NewError(encodeErr, "compress NV21 frame to JPEG", fmt.Sprintf("%dx%d", width, height))
	}

	return Decode(&compressed)
}

/*
FromYUV420 converts three YUV 4:2:0 planes (Y at full resolution, U and V
at half resolution, tightly packed) into a Frame by assembling an NV21
buffer and passing it to FromNV21.
*/
func FromYUV420(yPlane []byte, uPlane []byte, vPlane []byte, width int, height int) (f *Frame, e *xerr.Error) {
	if width <= 0 || height <= 0 {
		err := fmt.Errorf("frame size must be positive, got %dx%d", width, height)
		return nil, xerr.NewError(err, "convert YUV420 frame", fmt.Sprintf("%dx%d", width, height))
	}

	chromaWidth, chromaHeight := chromaSize(width, height)
	chromaLen := chromaWidth * chromaHeight
	if len(yPlane) < width*height || len(uPlane) < chromaLen || len(vPlane) < chromaLen {
		err := fmt.Errorf(
			"plane sizes y=%d u=%d v=%d, need y=%d u=v=%d",
			len(yPlane), len(uPlane), len(vPlane), width*height, chromaLen,
		)
		return nil, xerr.NewError(err, "convert YUV420 frame", fmt.Sprintf("%dx%d", width, height))
	}

	nv21 := make([]byte, NV21Size(width, height))
	copy(nv21, yPlane[:width*height])
	// U and V are swapped in NV21.
	vu := nv21[width*height:]
	for i := 0; i < chromaLen; i++ {
		vu[2*i] = vPlane[i]
		vu[2*i+1] = uPlane[i]
	}

	return FromNV21(nv21, width, height)
}
