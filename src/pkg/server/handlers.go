package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/util"
)

const imageFormField = "image"

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleScan(c echo.Context) error {
	source, f, status, err := readImage(c)
	if err != nil {
		return jsonError(c, status, err.Error())
	}

	result, e := s.scanner.Scan(c.Request().Context(), source, f)
	if e != nil {
		tl.Log(tl.Error, palette.Red, "Scan of '%s' failed: %s", source, util.ErrorMessage(e))
		return jsonError(c, http.StatusInternalServerError, util.ErrorMessage(e))
	}
	return c.JSON(http.StatusOK, result)
}

/*
handleCrop returns the document region as PNG. With ?mask=1 it returns the
whole frame with the discarded borders painted white instead.
*/
func (s *Server) handleCrop(c echo.Context) error {
	_, f, status, err := readImage(c)
	if err != nil {
		return jsonError(c, status, err.Error())
	}

	geometry, planErr := s.cropper.Plan(f.Width(), f.Height())
	if planErr != nil {
		tl.Log(tl.Warning, palette.YellowBold, "Cannot crop: %s", planErr.Error())
		return jsonError(c, http.StatusUnprocessableEntity, "invalid geometry")
	}

	var output *frame.Frame
	var e *xerr.Error
	if wantMask, _ := strconv.ParseBool(c.QueryParam("mask")); wantMask {
		output, e = s.cropper.Mask(f)
	} else {
		output, e = s.cropper.Crop(f)
	}
	if e != nil {
		return jsonError(c, http.StatusInternalServerError, util.ErrorMessage(e))
	}

	data, e := output.PNG()
	if e != nil {
		return jsonError(c, http.StatusInternalServerError, util.ErrorMessage(e))
	}

	rect := geometry.Rect
	c.Response().Header().Set("X-Crop-Rect", fmt.Sprintf("%d,%d,%d,%d", rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy()))
	return c.Blob(http.StatusOK, "image/png", data)
}

func (s *Server) handleNV21(c echo.Context) error {
	width, widthErr := strconv.Atoi(c.QueryParam("width"))
	height, heightErr := strconv.Atoi(c.QueryParam("height"))
	if widthErr != nil || heightErr != nil {
		return jsonError(c, http.StatusBadRequest, "width and height query parameters must be integers")
	}

	data, readErr := io.ReadAll(c.Request().Body)
	if readErr != nil {
		return jsonError(c, http.StatusBadRequest, readErr.Error())
	}

	f, e := frame.FromNV21(data, width, height)
	if e != nil {
		return jsonError(c, http.StatusBadRequest, util.ErrorMessage(e))
	}

	source := fmt.Sprintf("nv21_%dx%d", width, height)
	result, e := s.scanner.Scan(c.Request().Context(), source, f)
	if e != nil {
		tl.Log(tl.Error, palette.Red, "Scan of '%s' failed: %s", source, util.ErrorMessage(e))
		return jsonError(c, http.StatusInternalServerError, util.ErrorMessage(e))
	}
	return c.JSON(http.StatusOK, result)
}

/*
readImage decodes the uploaded image: multipart field "image" when the request
is a form, the raw body otherwise. On failure it returns the HTTP status to answer with.
*/
func readImage(c echo.Context) (source string, f *frame.Frame, status int, err error) {
	source = "upload"
	var reader io.Reader = c.Request().Body

	fileHeader, formErr := c.FormFile(imageFormField)
	if formErr == nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			return "", nil, http.StatusBadRequest, openErr
		}
		defer file.Close()
		reader = file
		source = filepath.Base(fileHeader.Filename)
	} else if isMultipart(c) {
		return "", nil, http.StatusBadRequest, fmt.Errorf("multipart field %q is missing", imageFormField)
	}

	decoded, e := frame.Decode(reader)
	if e != nil {
		return "", nil, http.StatusBadRequest, fmt.Errorf("cannot decode image: %s", util.ErrorMessage(e))
	}
	return source, decoded, http.StatusOK, nil
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
