package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/frame"
)

// ScanFile loads the image at imagePath and scans it.
func (s *Scanner) ScanFile(ctx context.Context, imagePath string) (result Result, e *xerr.Error) {
	e = validateImagePath(imagePath)
	if e != nil {
		return result, e
	}

	f, e := frame.Load(imagePath)
	if e != nil {
		return result, e
	}

	return s.Scan(ctx, filepath.Base(imagePath), f)
}

/*
ResolveImages turns the -image input into a list of files to scan.

inputPath can be a single image file or a directory; for a directory every
supported image directly inside it is returned, sorted by name.
*/
func ResolveImages(inputPath string) (images []string, e *xerr.Error) {
	trimmed := strings.TrimSpace(inputPath)
	e = validateImagePath(trimmed)
	if e != nil {
		return nil, e
	}

	info, statErr := os.Stat(trimmed)
	if statErr != nil {
		return nil, xerr.NewError(statErr, "stat -image input path", trimmed)
	}

	if info.IsDir() {
		return listImagesInDir(trimmed)
	}

	if !frame.IsSupportedImagePath(trimmed) {
		err := fmt.Errorf("unsupported image extension: %s", filepath.Ext(trimmed))
		return nil, xerr.NewError(err, "input file is not a supported image", trimmed)
	}

	return []string{trimmed}, nil
}

func listImagesInDir(dirPath string) (images []string, e *xerr.Error) {
	entries, readErr := os.ReadDir(dirPath)
	if readErr != nil {
		return nil, xerr.NewError(readErr, "read directory", dirPath)
	}

	for _, ent := range entries {
		if ent.IsDir() || !frame.IsSupportedImagePath(ent.Name()) {
			continue
		}
		images = append(images, filepath.Join(dirPath, ent.Name()))
	}

	sort.Strings(images)
	return images, nil
}

/*
validateImagePath ensures the image path is not empty.
*/
func validateImagePath(imagePath string) (e *xerr.Error) {
	if strings.TrimSpace(imagePath) == "" {
		err := fmt.Errorf("image path flag '-image' is empty")
		e = xerr.NewError(err, "no input image path provided", imagePath)
		tl.Log(
			tl.Important, palette.PurpleBold, "Exiting early: '%s'",
			"no input image (-image) provided",
		)
	}
	return e
}
