package tesseract

import (
	"context"
	"image"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/ocr"
)

// ensureTesseractAvailable skips tests that need the tesseract language data.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func TestEmptyFrameIsNotAnError(t *testing.T) {
	engine := New(ocr.DefaultValueConfig())

	text, ok, e := engine.RecognizeText(context.Background(), nil)
	assert.Nil(t, e)
	assert.False(t, ok)
	assert.Empty(t, text)

	_, ok, e = engine.RecognizeText(context.Background(), frame.New(0, 10))
	assert.Nil(t, e)
	assert.False(t, ok)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, e := New(ocr.DefaultValueConfig()).RecognizeText(ctx, frame.New(4, 4))
	assert.NotNil(t, e)
	assert.False(t, ok)
}

func TestBlankPageHasNoText(t *testing.T) {
	ensureTesseractAvailable(t)

	img := image.NewNRGBA(image.Rect(0, 0, 200, 80))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	_, ok, e := New(ocr.DefaultValueConfig()).RecognizeText(context.Background(), frame.FromImage(img))
	require.Nil(t, e)
	assert.False(t, ok)
}

func TestVersion(t *testing.T) {
	ensureTesseractAvailable(t)
	assert.NotEmpty(t, Version())
}
