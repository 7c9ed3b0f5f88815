package echomw

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

func RouteAccessLoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		startedAt := time.Now()
		LogRouteAccess(c, tl.Info, "Accessing route", palette.Blue)

		err := next(c)

		var level tl.LogLevel = tl.Info1
		var colorizer palette.Colorizer = palette.Green
		if c.Response().Status >= 400 || err != nil {
			level, colorizer = tl.Warning, palette.Yellow
		}
		LogRouteAccess(c, level, "Route accessed", colorizer)
		tl.Log(
			tl.Verbose, palette.CyanDim, "Status=%s, Size=%s, Took=%s",
			fmt.Sprintf("%d", c.Response().Status), fmt.Sprintf("%d", c.Response().Size), time.Since(startedAt).Round(time.Millisecond),
		)
		return err
	}
}

// LogRouteAccess logs one line per request; health checks are logged at Verbose.
func LogRouteAccess(c echo.Context, logLevel tl.LogLevel, actionName string, colorizer palette.Colorizer) {
	if c.Path() == "/health" {
		logLevel = tl.Verbose
		colorizer = palette.CyanDim
	}
	tl.Log(logLevel, colorizer, "%s: Method='%s', Path='%s', ClientIP='%s'", actionName, c.Request().Method, c.Path(), c.RealIP())
}
