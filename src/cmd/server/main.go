package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/app"
	"document-scanner/src/pkg/config"
	"document-scanner/src/pkg/cropper"
	echomw "document-scanner/src/pkg/echo-middleware"
	"document-scanner/src/pkg/email"
	"document-scanner/src/pkg/ocr"
	"document-scanner/src/pkg/ocr/tesseract"
	"document-scanner/src/pkg/scan"
	"document-scanner/src/pkg/server"
	"document-scanner/src/pkg/store"
)

/*
main runs the HTTP API until SIGINT/SIGTERM.
*/
func main() {
	config.CheckIfEnvVarsPresent(echomw.EnvBearerToken)

	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")
	port := flag.Int("port", 0, "Port to listen on. Overrides server.port.")

	flag.Parse()
	app.InitializeConfig(*configPath)
	if *port > 0 {
		echomw.Cfg.Port = *port
	}
	if scan.Cfg.Notify {
		config.CheckIfEnvVarsPresent(email.RequiredEnvVars(email.Cfg.Provider)...)
	}

	resultStore, e := store.NewFromConfig(store.Cfg)
	e.QuitIf(xerr.ErrorTypeError)

	c := cropper.New(cropper.Cfg)
	scanner := scan.New(
		tesseract.New(ocr.Cfg),
		scan.WithCropper(c),
		scan.WithStore(resultStore),
		scan.WithNotifier(email.NewScanNotifier(email.Cfg)),
	)
	srv := server.New(scanner, c, echomw.Cfg, echomw.BearerTokenFromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tl.Log(tl.Notice, palette.BlueBold, "%s entrypoint. Config path: '%s', tesseract %s", "Running server", *configPath, tesseract.Version())
	e = srv.Run(ctx)
	e.QuitIf(xerr.ErrorTypeError)
}
