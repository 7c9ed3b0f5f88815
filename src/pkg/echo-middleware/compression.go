package echomw

import (
	"bufio"
	"net"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
)

/*
BrotliMiddleware compresses responses with brotli when the client sends
"br" in Accept-Encoding. Responses without a body are passed through as is.
*/
func BrotliMiddleware(level int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !acceptsBrotli(c.Request().Header.Get(echo.HeaderAcceptEncoding)) {
				return next(c)
			}

			res := c.Response()
			res.Header().Add(echo.HeaderVary, echo.HeaderAcceptEncoding)

			original := res.Writer
			writer := &brotliResponseWriter{ResponseWriter: original, level: level, status: http.StatusOK}
			res.Writer = writer
			defer func() {
				writer.finish()
				res.Writer = original
			}()

			return next(c)
		}
	}
}

func acceptsBrotli(acceptEncoding string) bool {
	for _, part := range strings.Split(acceptEncoding, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "br") {
			continue
		}
		// "br;q=0" explicitly refuses it.
		return strings.ReplaceAll(strings.TrimSpace(params), " ", "") != "q=0"
	}
	return false
}

/*
brotliResponseWriter holds back the status line until the first body write,
so that empty responses are sent without Content-Encoding.
*/
type brotliResponseWriter struct {
	http.ResponseWriter
	level         int
	status        int
	headerPending bool
	headerSent    bool
	encoder       *brotli.Writer
}

func (w *brotliResponseWriter) WriteHeader(code int) {
	if w.headerSent {
		return
	}
	w.status = code
	w.headerPending = true
}

func (w *brotliResponseWriter) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if !w.headerSent {
		header := w.Header()
		if header.Get(echo.HeaderContentType) == "" {
			header.Set(echo.HeaderContentType, http.DetectContentType(b))
		}
		header.Del(echo.HeaderContentLength)
		header.Set(echo.HeaderContentEncoding, "br")
		w.ResponseWriter.WriteHeader(w.status)
		w.headerSent = true
		w.encoder = brotli.NewWriterLevel(w.ResponseWriter, w.level)
	}
	return w.encoder.Write(b)
}

func (w *brotliResponseWriter) Flush() {
	if w.encoder != nil {
		_ = w.encoder.Flush()
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *brotliResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (w *brotliResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// finish closes the brotli stream, or sends the held back status of an empty response.
func (w *brotliResponseWriter) finish() {
	if w.encoder != nil {
		_ = w.encoder.Close()
		return
	}
	if w.headerPending && !w.headerSent {
		w.ResponseWriter.WriteHeader(w.status)
		w.headerSent = true
	}
}
