package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

/*
LocalStore keeps every run in its own directory under Root:

	<Root>/<runID>/orig.png
	<Root>/<runID>/crop.png
	<Root>/<runID>/ocr.txt
*/
type LocalStore struct {
	Root string
}

// NewLocalStore uses "./out" when root is empty.
func NewLocalStore(root string) *LocalStore {
	normalizedRoot := strings.TrimSpace(root)
	if normalizedRoot == "" {
		normalizedRoot = "./out"
	}
	return &LocalStore{Root: normalizedRoot}
}

// RunDir returns the directory that holds the artifacts of runID.
func (s *LocalStore) RunDir(runID string) string {
	return filepath.Join(s.Root, runID)
}

/*
Put writes data to <Root>/<runID>/<name>, creating directories as needed.

It overwrites any existing file at that location.
*/
func (s *LocalStore) Put(ctx context.Context, runID string, name string, data []byte, contentType string) (location string, e *xerr.Error) {
	e = validateName(runID, name)
	if e != nil {
		return "", e
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", xerr.NewError(ctxErr, "store artifact", name)
	}

	runDirPath := s.RunDir(runID)
	e = ensureOutputDirectory(runDirPath)
	if e != nil {
		return "", e
	}

	destinationPath := filepath.Join(runDirPath, name)
	writeErr := os.WriteFile(destinationPath, data, 0o644)
	if writeErr != nil {
		return "", xerr.NewError(writeErr, "write artifact file", destinationPath)
	}

	tl.Log(
		tl.Info1, palette.Green, "Saved %s (%s, %s bytes) to '%s'",
		name, contentType, fmt.Sprintf("%d", len(data)), destinationPath,
	)

	return destinationPath, nil
}

/*
ensureOutputDirectory creates the target directory (and parents) if needed.

It uses os.MkdirAll and returns a *xerr.Error if creation fails.
*/
func ensureOutputDirectory(outputDirPath string) (e *xerr.Error) {
	err := os.MkdirAll(outputDirPath, 0o755)
	if err != nil {
		e = xerr.NewError(err, "create output directory", outputDirPath)
		return e
	}

	tl.Log(
		tl.Verbose, palette.BlueDim, "Ensured output directory '%s'",
		outputDirPath,
	)

	return e
}
