package ocr

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-scanner/src/pkg/frame"
)

const (
	td3Line1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	td3Line2 = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"
)

func TestExtractMRZLinesTD3(t *testing.T) {
	text := "PASSPORT\nUtopia\n" +
		"P<UTO ERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		td3Line2 + "\n"

	lines := ExtractMRZLines(text)
	require.Len(t, lines, 2)
	assert.Equal(t, td3Line1, lines[0])
	assert.Equal(t, td3Line2, lines[1])
	assert.Equal(t, "TD3", MRZFormat(lines))
}

func TestExtractMRZLinesNormalizes(t *testing.T) {
	text := "i<utod231458907<<<<<<<<<<<<<<<\r\n" +
		"7408122f1204159uto<<<<<<<<<<<6\n" +
		"ERIKSSON«ANNA<MARIA<<<<<<<<<<\n"

	lines := ExtractMRZLines(text)
	require.Len(t, lines, 3)
	assert.Equal(t, "I<UTOD231458907<<<<<<<<<<<<<<<", lines[0])
	assert.Equal(t, "ERIKSSON<<ANNA<MARIA<<<<<<<<<<", lines[2])
	assert.Equal(t, "TD1", MRZFormat(lines))
}

func TestExtractMRZLinesIgnoresNoise(t *testing.T) {
	text := "Total 12.000\n" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789ABCDEFGH\n" + // right length, no filler
		"P<UTO-ERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<\n" + // bad character
		td3Line2 + "\n" + td3Line2

	lines := ExtractMRZLines(text)
	assert.Equal(t, []string{td3Line2}, lines)
	assert.Empty(t, ExtractMRZLines(""))
	assert.Equal(t, "", MRZFormat(nil))
}

func TestLanguages(t *testing.T) {
	assert.Equal(t, []string{"eng", "spa"}, Languages("eng+spa"))
	assert.Equal(t, []string{"eng", "deu"}, Languages(" eng, deu "))
	assert.Equal(t, []string{"eng"}, Languages(""))
}

func TestStaticRecognizer(t *testing.T) {
	r := Static("hello")

	text, ok, e := r.RecognizeText(context.Background(), frame.New(2, 2))
	require.Nil(t, e)
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	_, ok, e = r.RecognizeText(context.Background(), nil)
	assert.Nil(t, e)
	assert.False(t, ok)

	_, ok, _ = Static("  \n").RecognizeText(context.Background(), frame.New(2, 2))
	assert.False(t, ok)
}

func TestPreprocessProducesBinaryUpscaledFrame(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			v := uint8(240)
			if x >= 8 && x < 12 {
				v = 20
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	src := frame.FromImage(img)
	before := src.Clone()

	out := Preprocess(src, DefaultPreprocessConfig())
	require.NotNil(t, out)
	assert.Equal(t, 40, out.Width())
	assert.Equal(t, 20, out.Height())

	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			px := out.NRGBAAt(x, y)
			assert.Contains(t, []uint8{0, 255}, px.R)
			assert.Equal(t, px.R, px.G)
			assert.Equal(t, px.R, px.B)
		}
	}
	assert.Equal(t, uint8(255), out.NRGBAAt(2, 10).R)
	assert.Equal(t, uint8(0), out.NRGBAAt(20, 10).R)
	assert.Equal(t, before.Image().Pix, src.Image().Pix)
}

func TestPreprocessEmptyFrame(t *testing.T) {
	assert.Nil(t, Preprocess(nil, PreprocessConfig{}))
	empty := frame.New(0, 0)
	assert.Same(t, empty, Preprocess(empty, PreprocessConfig{}))
}
