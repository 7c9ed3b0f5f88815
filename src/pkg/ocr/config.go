package ocr

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"document-scanner/src/pkg/config"
)

type Config struct {
	// Tesseract languages, e.g. "eng" or "eng+spa". "tesseract --list-langs" shows installed ones.
	Language string `json:"language,omitempty"`
	// Directory holding tessdata; empty means the Tesseract default (TESSDATA_PREFIX).
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
	// Tesseract page segmentation mode, 6 is a single uniform block of text.
	PageSegMode   int    `json:"page_seg_mode,omitempty"`
	CharWhitelist string `json:"char_whitelist,omitempty"`
	CharBlacklist string `json:"char_blacklist,omitempty"`
	// Extra Tesseract variables passed verbatim.
	Variables map[string]string `json:"variables,omitempty"`
	// Run Preprocess on the frame before recognition.
	Preprocess       bool             `json:"preprocess,omitempty"`
	PreprocessConfig PreprocessConfig `json:"preprocess_config,omitempty"`
}

type PreprocessConfig struct {
	ScaleFactor int     `json:"scale_factor,omitempty"`
	Sharpen     float64 `json:"sharpen,omitempty"`
	Contrast    float64 `json:"contrast,omitempty"`
	Threshold   int     `json:"threshold,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Language:    "eng",
		PageSegMode: 6,
		Variables: map[string]string{
			"preserve_interword_spaces": "1",
		},
		PreprocessConfig: DefaultPreprocessConfig(),
	}
}

func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{
		ScaleFactor: 2,
		Sharpen:     1.0,
		Contrast:    100.0,
		Threshold:   200,
	}
}

var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "ocr", "not provided", "default ocr config")
		return
	}

	defaultConfig := DefaultValueConfig()
	Cfg = *localConfig

	tl.ApplyDefaults(&Cfg, defaultConfig, func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", config.GetPackageName(), tl.PrettyForStderr(defVal),
		)
	})

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "ocr", "provided", "local ocr config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
