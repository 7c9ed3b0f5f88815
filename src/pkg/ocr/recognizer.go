// Package ocr defines how the scanner talks to an OCR engine and holds the
// engine-independent text handling (image preprocessing, MRZ extraction).
// The Tesseract implementation lives in the tesseract subpackage.
package ocr

import (
	"context"
	"strings"

	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/frame"
)

/*
Recognizer turns a frame into text.

ok is false, with a nil error, when there is nothing to read: a nil or empty
frame, or an engine that returned only whitespace. Errors are reserved for
engine failures (missing language data, broken image, cancelled context).
*/
type Recognizer interface {
	RecognizeText(ctx context.Context, f *frame.Frame) (text string, ok bool, e *xerr.Error)
}

// RecognizerFunc lets a plain function serve as a Recognizer.
type RecognizerFunc func(ctx context.Context, f *frame.Frame) (string, bool, *xerr.Error)

func (fn RecognizerFunc) RecognizeText(ctx context.Context, f *frame.Frame) (string, bool, *xerr.Error) {
	return fn(ctx, f)
}

// Static returns a Recognizer that always answers text, useful for dry runs and tests.
func Static(text string) Recognizer {
	return RecognizerFunc(func(ctx context.Context, f *frame.Frame) (string, bool, *xerr.Error) {
		if f.Empty() {
			return "", false, nil
		}
		return text, strings.TrimSpace(text) != "", nil
	})
}

// Languages splits a Tesseract language setting such as "eng+spa".
func Languages(setting string) []string {
	parts := strings.FieldsFunc(setting, func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
	if len(parts) == 0 {
		return []string{"eng"}
	}
	return parts
}
