package frame

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	// Registers WebP so uploads from phone galleries decode too.
	_ "golang.org/x/image/webp"

	"document-scanner/src/pkg/util"
)

/*
Decode reads an encoded image (JPEG, PNG, GIF, BMP, TIFF or WebP) and returns
it as a Frame. JPEG EXIF orientation is applied so the frame is upright.
*/
func Decode(reader io.Reader) (f *Frame, e *xerr.Error) {
	img, decodeErr := imaging.Decode(reader, imaging.AutoOrientation(true))
	if decodeErr != nil {
		return nil, xerr.NewError(decodeErr, "decode image", "reader")
	}
	return FromImage(img), nil
}

// DecodeBytes is Decode for an in-memory buffer.
func DecodeBytes(data []byte) (f *Frame, e *xerr.Error) {
	if len(data) == 0 {
		err := fmt.Errorf("image data is empty")
		return nil, xerr.NewError(err, "decode image", "0 bytes")
	}
	return Decode(bytes.NewReader(data))
}

// Load opens and decodes the image file at imagePath.
func Load(imagePath string) (f *Frame, e *xerr.Error) {
	img, openErr := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if openErr != nil {
		return nil, xerr.NewError(openErr, "open image", imagePath)
	}

	f = FromImage(img)
	tl.Log(
		tl.Verbose, palette.CyanDim, "Loaded frame %s from '%s'",
		fmt.Sprintf("%dx%d", f.Width(), f.Height()), imagePath,
	)
	return f, nil
}

/*
Encode writes the frame in the given format. JPEG output uses the configured
quality (Cfg.JPEGQuality).
*/
func (f *Frame) Encode(writer io.Writer, format imaging.Format) (e *xerr.Error) {
	if f.Empty() {
		err := fmt.Errorf("frame is empty")
		return xerr.NewError(err, "encode frame", format.String())
	}

	quality := util.Clamp(Cfg.JPEGQuality, 1, 100)
	encodeErr := imaging.Encode(writer, f.img, format, imaging.JPEGQuality(quality))
	if encodeErr != nil {
		return xerr.NewError(encodeErr, "encode frame", format.String())
	}
	return nil
}

// PNG returns the frame encoded as PNG.
func (f *Frame) PNG() (data []byte, e *xerr.Error) {
	var buf bytes.Buffer
	e = f.Encode(&buf, imaging.PNG)
	if e != nil {
		return nil, e
	}
	return buf.Bytes(), nil
}

// Save writes the frame to imagePath; the format follows the file extension.
func (f *Frame) Save(imagePath string) (e *xerr.Error) {
	if f.Empty() {
		err := fmt.Errorf("frame is empty")
		return xerr.NewError(err, "save frame", imagePath)
	}

	quality := util.Clamp(Cfg.JPEGQuality, 1, 100)
	saveErr := imaging.Save(f.img, imagePath, imaging.JPEGQuality(quality))
	if saveErr != nil {
		return xerr.NewError(saveErr, "save frame", imagePath)
	}

	tl.Log(tl.Info1, palette.Green, "Saved frame %s to '%s'", fmt.Sprintf("%dx%d", f.Width(), f.Height()), imagePath)
	return nil
}

// IsSupportedImagePath reports whether the extension of imagePath is one Load can read.
func IsSupportedImagePath(imagePath string) bool {
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	default:
		return false
	}
}
