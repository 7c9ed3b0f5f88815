package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-scanner/src/pkg/cropper"
	echomw "document-scanner/src/pkg/echo-middleware"
	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/ocr"
	"document-scanner/src/pkg/scan"
)

const testToken = "test-token"

func newTestServer(t *testing.T, c *cropper.Cropper) *Server {
	t.Helper()
	if c == nil {
		c = cropper.New(cropper.DefaultValueConfig())
	}
	scanner := scan.New(ocr.Static("HELLO WORLD"), scan.WithConfig(scan.Config{}), scan.WithCropper(c))
	return New(scanner, c, echomw.DefaultValueConfig(), testToken)
}

func pngBytes(t *testing.T, width int, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	data, e := frame.FromImage(img).PNG()
	require.Nil(t, e)
	return data
}

func do(s *Server, req *http.Request, authorized bool) *httptest.ResponseRecorder {
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) scan.Result {
	t.Helper()
	var result scan.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil), false)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/api/v1/scan", "/api/v1/crop", "/api/v1/frames/nv21?width=2&height=2"} {
		rec := do(s, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(pngBytes(t, 10, 10))), false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestScanRawBody(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader(pngBytes(t, 1280, 720)))
	req.Header.Set(echo.HeaderContentType, "image/png")
	rec := do(s, req, true)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeResult(t, rec)
	assert.Equal(t, "upload", result.Source)
	assert.True(t, result.Cropped)
	assert.Equal(t, 1152, result.Width)
	assert.Equal(t, 240, result.Height)
	assert.Equal(t, "HELLO WORLD", result.Text)
	assert.True(t, result.HasText)
}

func TestScanMultipart(t *testing.T) {
	s := newTestServer(t, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "id-card.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t, 200, 90))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := do(s, req, true)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeResult(t, rec)
	assert.Equal(t, "id-card.png", result.Source)
	assert.Equal(t, 180, result.Width)
	assert.Equal(t, 30, result.Height)
}

func TestScanMultipartWithoutImageField(t *testing.T) {
	s := newTestServer(t, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("note", "no image here"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := do(s, req, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanRejectsGarbage(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader([]byte("not an image"))), true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot decode image")
}

func TestScanFallsBackWhenCropIsImpossible(t *testing.T) {
	s := newTestServer(t, cropper.New(cropper.Config{HorizontalBandDivisor: 2, VerticalBandDivisor: 20}))
	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader(pngBytes(t, 40, 2))), true)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeResult(t, rec)
	assert.False(t, result.Cropped)
	assert.NotEmpty(t, result.CropError)
	assert.Equal(t, 40, result.Width)
	assert.Equal(t, 2, result.Height)
}

func TestCrop(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/v1/crop", bytes.NewReader(pngBytes(t, 1280, 720))), true)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "64,240,1152,240", rec.Header().Get("X-Crop-Rect"))

	cropped, e := frame.DecodeBytes(rec.Body.Bytes())
	require.Nil(t, e)
	assert.Equal(t, 1152, cropped.Width())
	assert.Equal(t, 240, cropped.Height())
}

func TestCropMask(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/v1/crop?mask=1", bytes.NewReader(pngBytes(t, 100, 60))), true)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	masked, e := frame.DecodeBytes(rec.Body.Bytes())
	require.Nil(t, e)
	assert.Equal(t, 100, masked.Width())
	assert.Equal(t, 60, masked.Height())
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, masked.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, masked.NRGBAAt(50, 30))
}

func TestCropInvalidGeometry(t *testing.T) {
	s := newTestServer(t, cropper.New(cropper.Config{HorizontalBandDivisor: 2, VerticalBandDivisor: 20}))
	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/v1/crop", bytes.NewReader(pngBytes(t, 10, 2))), true)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"invalid geometry"}`, rec.Body.String())
}

func TestNV21Frame(t *testing.T) {
	s := newTestServer(t, nil)
	data := bytes.Repeat([]byte{128}, frame.NV21Size(40, 30))

	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/v1/frames/nv21?width=40&height=30", bytes.NewReader(data)), true)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decodeResult(t, rec)
	assert.Equal(t, "nv21_40x30", result.Source)
	assert.Equal(t, 40, result.OriginalWidth)
	assert.Equal(t, 30, result.OriginalHeight)
	assert.Equal(t, 36, result.Width)
	assert.Equal(t, 10, result.Height)
}

func TestNV21FrameBadInput(t *testing.T) {
	s := newTestServer(t, nil)

	testCases := []struct {
		name string
		path string
		body []byte
	}{
		{"missing size", "/api/v1/frames/nv21", []byte{1, 2, 3}},
		{"non-numeric size", "/api/v1/frames/nv21?width=abc&height=2", []byte{1, 2, 3}},
		{"short buffer", "/api/v1/frames/nv21?width=40&height=30", bytes.Repeat([]byte{1}, 100)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(s, httptest.NewRequest(http.MethodPost, tc.path, bytes.NewReader(tc.body)), true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestNV21ErrorBodyNamesTheProblemOnly(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, httptest.NewRequest(http.MethodPost, "/api/v1/frames/nv21?width=40&height=30", bytes.NewReader(bytes.Repeat([]byte{1}, 100))), true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"convert NV21 frame: NV21 buffer has 100 bytes, need 1800"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), ".go:")
}

func TestResponsesAreBrotliCompressedOnRequest(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", bytes.NewReader(pngBytes(t, 200, 90)))
	req.Header.Set(echo.HeaderAcceptEncoding, "br")
	rec := do(s, req, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "br", rec.Header().Get(echo.HeaderContentEncoding))

	decoded, err := io.ReadAll(brotli.NewReader(rec.Body))
	require.NoError(t, err)
	var result scan.Result
	require.NoError(t, json.Unmarshal(decoded, &result))
	assert.Equal(t, "HELLO WORLD", result.Text)
}

func TestAddress(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, "127.0.0.1:8401", s.Address())
}
