// Package store persists scan artifacts (frames, OCR text, result JSON).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tuumbleweed/xerr"
)

const (
	ContentTypePNG  = "image/png"
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeJSON = "application/json"
)

/*
Store writes one named artifact of a scan run and returns where it ended up
(a filesystem path or an s3:// URL).
*/
type Store interface {
	Put(ctx context.Context, runID string, name string, data []byte, contentType string) (location string, e *xerr.Error)
}

// PutJSON marshals value as indented JSON and stores it under name.
func PutJSON(ctx context.Context, s Store, runID string, name string, value any) (location string, e *xerr.Error) {
	jsonBytes, marshalErr := json.MarshalIndent(value, "", "  ")
	if marshalErr != nil {
		return "", xerr.NewError(marshalErr, "marshal value to JSON", name)
	}
	return s.Put(ctx, runID, name, jsonBytes, ContentTypeJSON)
}

// PutText stores text under name.
func PutText(ctx context.Context, s Store, runID string, name string, text string) (location string, e *xerr.Error) {
	return s.Put(ctx, runID, name, []byte(text), ContentTypeText)
}

// Discard drops everything; used when a caller only wants the scan result.
type Discard struct{}

func (Discard) Put(ctx context.Context, runID string, name string, data []byte, contentType string) (string, *xerr.Error) {
	return "", nil
}

/*
NewFromConfig builds the Store selected by cfg.Backend ("local", "s3" or "none").
*/
func NewFromConfig(cfg Config) (s Store, e *xerr.Error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendLocal:
		return NewLocalStore(cfg.LocalRoot), nil
	case BackendS3:
		return NewS3Store(cfg.S3)
	case BackendNone:
		return Discard{}, nil
	default:
		err := fmt.Errorf("unknown store backend %q", cfg.Backend)
		return nil, xerr.NewError(err, "select store backend", cfg.Backend)
	}
}

// validateName rejects artifact names that could escape the run directory or key prefix.
func validateName(runID string, name string) (e *xerr.Error) {
	for _, part := range []string{runID, name} {
		if strings.TrimSpace(part) == "" || strings.Contains(part, "/") || strings.Contains(part, `\`) || part == "." || part == ".." {
			err := fmt.Errorf("invalid artifact path component %q", part)
			return xerr.NewError(err, "validate artifact name", runID+"/"+name)
		}
	}
	return nil
}
