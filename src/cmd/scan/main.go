package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/app"
	"document-scanner/src/pkg/config"
	"document-scanner/src/pkg/email"
	"document-scanner/src/pkg/ocr"
	"document-scanner/src/pkg/ocr/tesseract"
	"document-scanner/src/pkg/scan"
	"document-scanner/src/pkg/store"
	"document-scanner/src/pkg/util"
)

/*
main scans one image or every image in a directory.

For each image:
 1. crop the document region (falls back to the full frame if it cannot)
 2. OCR the region with Tesseract
 3. store orig.png, crop.png, ocr.txt and result.json in a run directory
 4. optionally email the result

Failed images are logged and skipped.
*/
func main() {
	config.CheckIfEnvVarsPresent()

	// Common flags.
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")

	// Program-specific flags.
	imagePath := flag.String("image", "", "Path to an image OR a directory with images (.jpg/.jpeg/.png/.webp/...).")
	outputDirPath := flag.String("out", "", "Directory for run directories. Overrides store.local_root.")
	language := flag.String("language", "", "Tesseract language(s), e.g. eng, spa+eng. \"tesseract --list-langs\". Overrides ocr.language.")
	noCrop := flag.Bool("no-crop", false, "OCR the whole frame instead of the document region.")
	saveMask := flag.Bool("mask", false, "Also store mask.png showing the discarded borders.")
	sendEmail := flag.Bool("email", false, "Email every result (see the email config section).")

	flag.Parse()
	util.RequiredFlag(imagePath, "image")
	util.EnsureFlags()
	app.InitializeConfig(*configPath)

	applyFlagOverrides(*outputDirPath, *language, *noCrop, *saveMask, *sendEmail)

	if scan.Cfg.Notify {
		config.CheckIfEnvVarsPresent(email.RequiredEnvVars(email.Cfg.Provider)...)
	}

	tl.Log(
		tl.Notice, palette.BlueBold, "%s entrypoint. Config path: '%s', tesseract %s",
		"Running scan", *configPath, tesseract.Version(),
	)

	imagesToProcess, e := scan.ResolveImages(*imagePath)
	e.QuitIf(xerr.ErrorTypeError)

	if len(imagesToProcess) == 0 {
		tl.Log(tl.Warning, palette.PurpleBold, "No supported images found at: '%s'", *imagePath)
		os.Exit(0)
	}
	if len(imagesToProcess) > 1 {
		tl.Log(tl.Notice1, palette.GreenBold, "Found '%s' images to process", fmt.Sprintf("%d", len(imagesToProcess)))
	}

	resultStore, e := store.NewFromConfig(store.Cfg)
	e.QuitIf(xerr.ErrorTypeError)

	scanner := scan.New(
		tesseract.New(ocr.Cfg),
		scan.WithStore(resultStore),
		scan.WithNotifier(email.NewScanNotifier(email.Cfg)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processedCount := 0
	skippedCount := 0
	for _, imgPath := range imagesToProcess {
		if ctx.Err() != nil {
			tl.Log(tl.Warning, palette.YellowBold, "Interrupted, %s", "stopping")
			break
		}

		result, e := scanner.ScanFile(ctx, imgPath)
		if e != nil {
			skippedCount++
			tl.Log(tl.Error, palette.RedBold, "Failed processing '%s': '%s'", imgPath, util.ErrorMessage(e))
			continue
		}

		processedCount++
		tl.Log(
			tl.Notice1, palette.GreenBold, "%s. Results stored in '%s'",
			"Scan completed", result.Artifacts[scan.ArtifactResult],
		)
	}

	tl.Log(tl.Notice, palette.GreenBold, "Done. Processed: '%s', skipped: '%s'", fmt.Sprintf("%d", processedCount), fmt.Sprintf("%d", skippedCount))
	if skippedCount > 0 && processedCount == 0 {
		os.Exit(1)
	}
}

// applyFlagOverrides lets command line flags win over the config file.
func applyFlagOverrides(outputDirPath string, language string, noCrop bool, saveMask bool, sendEmail bool) {
	if strings.TrimSpace(outputDirPath) != "" {
		store.Cfg.Backend = store.BackendLocal
		store.Cfg.LocalRoot = outputDirPath
	}
	if strings.TrimSpace(language) != "" {
		ocr.Cfg.Language = language
	}
	if noCrop {
		scan.Cfg.SkipCrop = true
	}
	if saveMask {
		scan.Cfg.SaveMask = true
	}
	if sendEmail {
		scan.Cfg.Notify = true
		email.Cfg.SendEmails = true
	}
}
