package scan

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"document-scanner/src/pkg/config"
)

type Config struct {
	// Send the whole frame to OCR instead of the cropped document region.
	SkipCrop bool `json:"skip_crop,omitempty"`
	// Do not store orig.png.
	SkipOriginal bool `json:"skip_original,omitempty"`
	// Store mask.png, the frame with the discarded borders painted white.
	SaveMask bool `json:"save_mask,omitempty"`
	// Hand finished scans to the notifier (email).
	Notify bool `json:"notify,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{}
}

var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "scan", "not provided", "default scan config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "scan", "provided", "local scan config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
