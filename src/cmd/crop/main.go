package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/app"
	"document-scanner/src/pkg/config"
	"document-scanner/src/pkg/cropper"
	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/scan"
	"document-scanner/src/pkg/util"
)

/*
main crops the document region out of images without running OCR.

Writes <name>_crop.png (and <name>_mask.png with -mask) into -out.
Images too small to crop are reported and skipped.
*/
func main() {
	config.CheckIfEnvVarsPresent()

	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")

	imagePath := flag.String("image", "", "Path to an image OR a directory with images.")
	outputDirPath := flag.String("out", "./out/crops", "Directory where cropped images are written.")
	writeMask := flag.Bool("mask", false, "Also write the frame with the discarded borders painted white.")

	flag.Parse()
	util.RequiredFlag(imagePath, "image")
	util.RequiredFlag(outputDirPath, "out")
	util.EnsureFlags()
	app.InitializeConfig(*configPath)

	imagesToProcess, e := scan.ResolveImages(*imagePath)
	e.QuitIf(xerr.ErrorTypeError)

	err := os.MkdirAll(*outputDirPath, 0o755)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to create output directory '%s'", *outputDirPath))

	c := cropper.New(cropper.Cfg)
	croppedCount := 0
	for _, imgPath := range imagesToProcess {
		e := cropOne(c, imgPath, *outputDirPath, *writeMask)
		if e != nil {
			tl.Log(tl.Error, palette.RedBold, "Failed cropping '%s': '%s'", imgPath, util.ErrorMessage(e))
			continue
		}
		croppedCount++
	}

	tl.Log(tl.Notice, palette.GreenBold, "Done. Cropped '%s' of '%s' images", fmt.Sprintf("%d", croppedCount), fmt.Sprintf("%d", len(imagesToProcess)))
}

func cropOne(c *cropper.Cropper, imagePath string, outputDirPath string, writeMask bool) (e *xerr.Error) {
	f, e := frame.Load(imagePath)
	if e != nil {
		return e
	}

	geometry, planErr := c.Plan(f.Width(), f.Height())
	if errors.Is(planErr, cropper.ErrInvalidGeometry) {
		tl.Log(tl.Warning, palette.YellowBold, "Skipping '%s': %s", imagePath, planErr.Error())
		return nil
	}

	cropped, e := c.Crop(f)
	if e != nil {
		return e
	}

	baseName := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	e = cropped.Save(filepath.Join(outputDirPath, baseName+"_crop.png"))
	if e != nil {
		return e
	}
	tl.Log(
		tl.Info, palette.Cyan, "'%s' %s -> %s",
		filepath.Base(imagePath), fmt.Sprintf("%dx%d", geometry.Width, geometry.Height), geometry.Rect.String(),
	)

	if !writeMask {
		return nil
	}
	masked, e := c.Mask(f)
	if e != nil {
		return e
	}
	return masked.Save(filepath.Join(outputDirPath, baseName+"_mask.png"))
}
