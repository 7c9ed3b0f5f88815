/*
Package scan runs a captured frame through the scanner: crop the document
region, recognize its text, and persist and announce the result.
*/
package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/cropper"
	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/ocr"
	"document-scanner/src/pkg/store"
)

// Artifact names inside a run.
const (
	ArtifactOriginal = "orig.png"
	ArtifactCrop     = "crop.png"
	ArtifactMask     = "mask.png"
	ArtifactText     = "ocr.txt"
	ArtifactResult   = "result.json"
)

// Result describes one scan. It is also what result.json and the HTTP API return.
type Result struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`

	OriginalWidth  int `json:"original_width"`
	OriginalHeight int `json:"original_height"`
	// Size of the frame that was sent to OCR.
	Width  int `json:"width"`
	Height int `json:"height"`

	Cropped   bool              `json:"cropped"`
	CropError string            `json:"crop_error,omitempty"`
	Geometry  *cropper.Geometry `json:"geometry,omitempty"`

	Text      string   `json:"text"`
	HasText   bool     `json:"has_text"`
	MRZ       []string `json:"mrz,omitempty"`
	MRZFormat string   `json:"mrz_format,omitempty"`

	Artifacts map[string]string `json:"artifacts,omitempty"`
	ElapsedMs int64             `json:"elapsed_ms"`
}

// Notifier announces finished scans, e.g. by email. document is the frame that went to OCR.
type Notifier interface {
	Notify(ctx context.Context, result Result, document *frame.Frame) (e *xerr.Error)
}

type Scanner struct {
	cfg        Config
	cropper    *cropper.Cropper
	recognizer ocr.Recognizer
	store      store.Store
	notifier   Notifier
	now        func() time.Time
}

type Option func(*Scanner)

func WithConfig(cfg Config) Option {
	return func(s *Scanner) { s.cfg = cfg }
}

func WithCropper(c *cropper.Cropper) Option {
	return func(s *Scanner) { s.cropper = c }
}

// WithStore sets where artifacts go; without it nothing is persisted.
func WithStore(st store.Store) Option {
	return func(s *Scanner) { s.store = st }
}

func WithNotifier(n Notifier) Option {
	return func(s *Scanner) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

/*
New builds a Scanner around recognizer. Unless overridden, it uses the
package configuration (Cfg) and a cropper built from cropper.Cfg.
*/
func New(recognizer ocr.Recognizer, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:        Cfg,
		cropper:    cropper.New(cropper.Cfg),
		recognizer: recognizer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

/*
Scan processes one frame.

It performs the following steps:
 1. Crops the document region. When the frame is too small for a crop the
    failure is logged and the uncropped frame is used instead.
 2. Runs OCR on the (cropped) frame and extracts MRZ lines.
 3. Stores orig.png, crop.png, mask.png (if enabled), ocr.txt and result.json.
 4. Notifies (if enabled).

The input frame is never modified. source is a free-form label, usually the
file name.
*/
func (s *Scanner) Scan(ctx context.Context, source string, f *frame.Frame) (result Result, e *xerr.Error) {
	if f.Empty() {
		err := fmt.Errorf("frame is empty")
		return result, xerr.NewError(err, "scan frame", source)
	}
	if s.recognizer == nil {
		err := fmt.Errorf("no OCR recognizer configured")
		return result, xerr.NewError(err, "scan frame", source)
	}

	startedAt := s.now()
	id := uuid.NewString()
	result = Result{
		ID:             id,
		RunID:          fmt.Sprintf("%s_%s", startedAt.Format("2006-01-02_15-04-05"), id[:8]),
		Source:         source,
		CreatedAt:      startedAt.UTC(),
		OriginalWidth:  f.Width(),
		OriginalHeight: f.Height(),
		Artifacts:      map[string]string{},
	}

	tl.Log(
		tl.Notice, palette.BlueBold, "%s '%s' (%s), run '%s'",
		"Scanning", source, fmt.Sprintf("%dx%d", f.Width(), f.Height()), result.RunID,
	)

	document := s.cropDocument(f, &result)
	result.Width = document.Width()
	result.Height = document.Height()

	text, ok, e := s.recognizer.RecognizeText(ctx, document)
	if e != nil {
		return result, e
	}
	result.Text = text
	result.HasText = ok
	result.MRZ = ocr.ExtractMRZLines(text)
	result.MRZFormat = ocr.MRZFormat(result.MRZ)

	if !ok {
		tl.Log(tl.Warning, palette.YellowBold, "No text recognized in '%s'", source)
	} else if len(result.MRZ) > 0 {
		tl.Log(tl.Info, palette.Cyan, "Found %s MRZ lines (%s)", fmt.Sprintf("%d", len(result.MRZ)), result.MRZFormat)
	}

	// Stored and notified results carry the time spent on crop and OCR.
	result.ElapsedMs = s.now().Sub(startedAt).Milliseconds()

	e = s.persist(ctx, f, document, &result)
	if e != nil {
		return result, e
	}

	if s.cfg.Notify && s.notifier != nil {
		e = s.notifier.Notify(ctx, result, document)
		if e != nil {
			return result, e
		}
	}

	tl.Log(
		tl.Notice1, palette.GreenBold, "Finished scanning '%s': cropped=%s, text length %s, %s ms",
		source, fmt.Sprintf("%t", result.Cropped), fmt.Sprintf("%d", len(result.Text)), fmt.Sprintf("%d", result.ElapsedMs),
	)
	return result, nil
}

// cropDocument returns the frame to run OCR on and records what happened in result.
func (s *Scanner) cropDocument(f *frame.Frame, result *Result) *frame.Frame {
	if s.cfg.SkipCrop {
		tl.Log(tl.Info1, palette.Purple, "Crop is %s, using full frame", "disabled")
		return f
	}

	geometry, planErr := s.cropper.Plan(f.Width(), f.Height())
	if planErr != nil {
		// No document region identified: fall back to the full frame.
		result.CropError = planErr.Error()
		tl.Log(
			tl.Warning, palette.YellowBold, "Cannot crop '%s': %s. %s",
			result.Source, planErr.Error(), "Using full frame",
		)
		return f
	}

	cropped := f.SubFrame(geometry.Rect)
	result.Cropped = true
	result.Geometry = &geometry
	tl.Log(
		tl.Info1, palette.Cyan, "Cropped document region %s out of %s",
		geometry.Rect.String(), fmt.Sprintf("%dx%d", f.Width(), f.Height()),
	)
	return cropped
}

func (s *Scanner) persist(ctx context.Context, original *frame.Frame, document *frame.Frame, result *Result) (e *xerr.Error) {
	if s.store == nil {
		return nil
	}

	type frameArtifact struct {
		name  string
		frame *frame.Frame
	}
	frames := make([]frameArtifact, 0, 3)
	if !s.cfg.SkipOriginal {
		frames = append(frames, frameArtifact{ArtifactOriginal, original})
	}
	if result.Cropped {
		frames = append(frames, frameArtifact{ArtifactCrop, document})
	}
	if s.cfg.SaveMask && result.Cropped {
		masked, maskErr := s.cropper.Mask(original)
		if maskErr != nil {
			return maskErr
		}
		frames = append(frames, frameArtifact{ArtifactMask, masked})
	}

	for _, artifact := range frames {
		data, e := artifact.frame.PNG()
		if e != nil {
			return e
		}
		location, e := s.store.Put(ctx, result.RunID, artifact.name, data, store.ContentTypePNG)
		if e != nil {
			return e
		}
		result.Artifacts[artifact.name] = location
	}

	location, e := store.PutText(ctx, s.store, result.RunID, ArtifactText, result.Text)
	if e != nil {
		return e
	}
	result.Artifacts[ArtifactText] = location

	// result.json lists itself, so record its location before writing.
	result.Artifacts[ArtifactResult] = resultLocation(s.store, result.RunID)
	location, e = store.PutJSON(ctx, s.store, result.RunID, ArtifactResult, result)
	if e != nil {
		return e
	}
	result.Artifacts[ArtifactResult] = location
	return nil
}

// resultLocation predicts where result.json will be written.
func resultLocation(st store.Store, runID string) string {
	switch typed := st.(type) {
	case *store.LocalStore:
		return filepath.Join(typed.RunDir(runID), ArtifactResult)
	case *store.S3Store:
		return fmt.Sprintf("s3://%s/%s", typed.Bucket, typed.Key(runID, ArtifactResult))
	default:
		return ""
	}
}
