// Package tesseract implements ocr.Recognizer on top of the gosseract client.
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/ocr"
)

/*
Engine runs Tesseract through gosseract.

Every call creates its own client and closes it before returning, so one
Engine can be shared between goroutines and nothing outlives a call.
*/
type Engine struct {
	cfg           ocr.Config
	clientFactory func() *gosseract.Client
}

// New builds an Engine from cfg; use ocr.Cfg for the loaded configuration.
func New(cfg ocr.Config) *Engine {
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

func (engine *Engine) Name() string { return "tesseract" }

/*
RecognizeText performs OCR on the frame.

The frame is optionally preprocessed (cfg.Preprocess), encoded as PNG and
handed to Tesseract with the configured languages, page segmentation mode
and variables. It returns ok=false for a nil/empty frame or blank output.
*/
func (engine *Engine) RecognizeText(ctx context.Context, f *frame.Frame) (text string, ok bool, e *xerr.Error) {
	if f.Empty() {
		tl.Log(tl.Info1, palette.Purple, "Skipping OCR: %s", "frame is empty")
		return "", false, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", false, xerr.NewError(ctxErr, "run OCR", "context done")
	}

	input := f
	if engine.cfg.Preprocess {
		input = ocr.Preprocess(f, engine.cfg.PreprocessConfig)
	}
	imageBytes, e := input.PNG()
	if e != nil {
		return "", false, e
	}

	frameLabel := fmt.Sprintf("%dx%d frame", input.Width(), input.Height())
	tl.Log(tl.Info1, palette.Cyan, "Running OCR on %s (languages '%s')", frameLabel, engine.cfg.Language)

	client := engine.clientFactory()
	defer func() {
		_ = client.Close()
	}()

	e = engine.configure(client, frameLabel)
	if e != nil {
		return "", false, e
	}

	err := client.SetImageFromBytes(imageBytes)
	if err != nil {
		return "", false, xerr.NewError(err, "unable to client.SetImageFromBytes", frameLabel)
	}

	ocrText, ocrErr := client.Text()
	if ocrErr != nil {
		return "", false, xerr.NewError(ocrErr, "unable to run OCR on frame", frameLabel)
	}

	tl.Log(
		tl.Info1, palette.Green, "OCR completed for %s (text length: %s)",
		frameLabel, fmt.Sprintf("%d", len(ocrText)),
	)

	return ocrText, strings.TrimSpace(ocrText) != "", nil
}

func (engine *Engine) configure(client *gosseract.Client, frameLabel string) (e *xerr.Error) {
	if engine.cfg.TessdataPrefix != "" {
		err := client.SetTessdataPrefix(engine.cfg.TessdataPrefix)
		if err != nil {
			return xerr.NewError(err, "unable to client.SetTessdataPrefix", engine.cfg.TessdataPrefix)
		}
	}

	languages := ocr.Languages(engine.cfg.Language)
	err := client.SetLanguage(languages...)
	if err != nil {
		return xerr.NewError(err, fmt.Sprintf("unable to client.SetLanguage(%q)", engine.cfg.Language), frameLabel)
	}

	if engine.cfg.CharWhitelist != "" {
		err = client.SetVariable("tessedit_char_whitelist", engine.cfg.CharWhitelist)
		if err != nil {
			return xerr.NewError(err, "unable to SetVariable(tessedit_char_whitelist)", frameLabel)
		}
	}
	if engine.cfg.CharBlacklist != "" {
		err = client.SetVariable("tessedit_char_blacklist", engine.cfg.CharBlacklist)
		if err != nil {
			return xerr.NewError(err, "unable to SetVariable(tessedit_char_blacklist)", frameLabel)
		}
	}
	for name, value := range engine.cfg.Variables {
		err = client.SetVariable(gosseract.SettableVariable(name), value)
		if err != nil {
			return xerr.NewError(err, fmt.Sprintf("unable to SetVariable(%s, %q)", name, value), frameLabel)
		}
	}

	if engine.cfg.PageSegMode > 0 {
		err = client.SetPageSegMode(gosseract.PageSegMode(engine.cfg.PageSegMode))
		if err != nil {
			return xerr.NewError(err, fmt.Sprintf("unable to client.SetPageSegMode(%d)", engine.cfg.PageSegMode), frameLabel)
		}
	}

	return nil
}

// Version reports the linked Tesseract version.
func Version() string {
	return gosseract.Version()
}
