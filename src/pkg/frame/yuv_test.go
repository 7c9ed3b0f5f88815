package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func within(t *testing.T, want int, got uint8, tolerance int) {
	t.Helper()
	diff := want - int(got)
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqualf(t, diff, tolerance, "want %d +- %d, got %d", want, tolerance, got)
}

func TestNV21Size(t *testing.T) {
	assert.Equal(t, 1280*720*3/2, NV21Size(1280, 720))
	// Odd sizes round the chroma planes up.
	assert.Equal(t, 5*3+2*3*2, NV21Size(5, 3))
}

func TestFromNV21NeutralGray(t *testing.T) {
	width, height := 16, 8
	data := make([]byte, NV21Size(width, height))
	for i := range data {
		data[i] = 128
	}

	f, e := FromNV21(data, width, height)
	require.Nil(t, e)
	require.Equal(t, width, f.Width())
	require.Equal(t, height, f.Height())

	px := f.NRGBAAt(width/2, height/2)
	within(t, 128, px.R, 3)
	within(t, 128, px.G, 3)
	within(t, 128, px.B, 3)
	assert.Equal(t, uint8(255), px.A)
}

func TestFromNV21ChromaOrder(t *testing.T) {
	width, height := 8, 8
	data := make([]byte, NV21Size(width, height))
	for i := 0; i < width*height; i++ {
		data[i] = 128
	}
	// V (Cr) high, U (Cb) low: a red-dominant pixel.
	for i := width * height; i < len(data); i += 2 {
		data[i] = 240
		data[i+1] = 16
	}

	f, e := FromNV21(data, width, height)
	require.Nil(t, e)
	px := f.NRGBAAt(4, 4)
	assert.Greater(t, int(px.R), int(px.B))
}

func TestFromNV21OddSize(t *testing.T) {
	data := make([]byte, NV21Size(5, 3))
	f, e := FromNV21(data, 5, 3)
	require.Nil(t, e)
	assert.Equal(t, 5, f.Width())
	assert.Equal(t, 3, f.Height())
}

func TestFromNV21RejectsBadInput(t *testing.T) {
	_, e := FromNV21(make([]byte, 10), 0, 4)
	assert.NotNil(t, e)

	_, e = FromNV21(make([]byte, NV21Size(4, 4)-1), 4, 4)
	assert.NotNil(t, e)
}

func TestFromYUV420MatchesNV21(t *testing.T) {
	width, height := 8, 4
	yPlane := make([]byte, width*height)
	for i := range yPlane {
		yPlane[i] = uint8(i * 7)
	}
	uPlane := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	vPlane := []byte{200, 190, 180, 170, 160, 150, 140, 130}

	nv21 := append([]byte{}, yPlane...)
	for i := range uPlane {
		nv21 = append(nv21, vPlane[i], uPlane[i])
	}

	fromPlanes, e := FromYUV420(yPlane, uPlane, vPlane, width, height)
	require.Nil(t, e)
	fromNV21, e := FromNV21(nv21, width, height)
	require.Nil(t, e)
	assert.Equal(t, fromNV21.Image().Pix, fromPlanes.Image().Pix)
}

func TestFromYUV420RejectsShortPlanes(t *testing.T) {
	_, e := FromYUV420(make([]byte, 16), make([]byte, 3), make([]byte, 4), 4, 4)
	assert.NotNil(t, e)
}
