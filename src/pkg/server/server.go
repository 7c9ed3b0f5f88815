/*
Package server exposes the scanner over HTTP.

	GET  /health
	POST /api/v1/scan                          image (multipart field "image" or raw body) -> scan result JSON
	POST /api/v1/crop[?mask=1]                 image -> cropped (or masked) PNG
	POST /api/v1/frames/nv21?width=W&height=H  raw NV21 camera frame -> scan result JSON

Everything under /api/v1 requires a bearer token.
*/
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/cropper"
	echomw "document-scanner/src/pkg/echo-middleware"
	"document-scanner/src/pkg/scan"
)

type Server struct {
	echo      *echo.Echo
	scanner   *scan.Scanner
	cropper   *cropper.Cropper
	cfg       echomw.Config
	startedAt time.Time
}

/*
New wires the routes and middlewares. token protects /api/v1; an empty token
locks the API (every request gets 401).
*/
func New(scanner *scan.Scanner, c *cropper.Cropper, cfg echomw.Config, token string) *Server {
	s := &Server{
		echo:      echo.New(),
		scanner:   scanner,
		cropper:   c,
		cfg:       cfg,
		startedAt: time.Now(),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.Recover())
	s.echo.Use(echomw.RouteAccessLoggerMiddleware)
	s.echo.Use(echomw.NewRateLimiter(cfg.MiddlewareRateLimit, cfg.MiddlewareBurst).Middleware)
	s.echo.Use(echomw.BrotliMiddleware(cfg.BrotliLevel))

	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api/v1", echomw.RequireBearerToken(token))
	if cfg.BodyLimit != "" {
		api.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	api.POST("/scan", s.handleScan)
	api.POST("/crop", s.handleCrop)
	api.POST("/frames/nv21", s.handleNV21)

	return s
}

// Handler returns the HTTP handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Address() string {
	return net.JoinHostPort(s.cfg.Address, strconv.Itoa(s.cfg.Port))
}

/*
Run serves until ctx is cancelled, then shuts down gracefully.
*/
func (s *Server) Run(ctx context.Context) (e *xerr.Error) {
	errChan := make(chan error, 1)
	go func() {
		tl.Log(tl.Notice, palette.BlueBold, "Listening on %s", "http://"+s.Address())
		errChan <- s.echo.Start(s.Address())
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return xerr.NewError(err, "start http server", s.Address())
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout()
	if timeout <= 0 {
		timeout = echomw.DefaultValueConfig().ShutdownTimeout()
	}
	tl.Log(tl.Notice, palette.Purple, "Shutting down, waiting up to %s", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return xerr.NewError(err, "shut down http server", s.Address())
	}
	tl.Log(tl.Notice1, palette.GreenBold, "Server %s", "stopped")
	return nil
}

func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}
