package cropper

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"document-scanner/src/pkg/config"
)

type Config struct {
	// Top and bottom bands are height/HorizontalBandDivisor tall (3 means 1/3).
	HorizontalBandDivisor int `json:"horizontal_band_divisor,omitempty"`
	// Left and right bands are width/VerticalBandDivisor wide (20 means 1/20).
	VerticalBandDivisor int `json:"vertical_band_divisor,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		HorizontalBandDivisor: 3,
		VerticalBandDivisor:   20,
	}
}

var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "cropper", "not provided", "default cropper config")
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

	if Cfg.HorizontalBandDivisor < 1 || Cfg.VerticalBandDivisor < 1 {
		tl.Log(
			tl.Warning, palette.YellowBold, "Band divisors must be >= 1 (got %s and %s), %s",
			fmt.Sprintf("%d", Cfg.HorizontalBandDivisor), fmt.Sprintf("%d", Cfg.VerticalBandDivisor), "using defaults",
		)
		Cfg = defaultConfig
	}

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "cropper", "provided", "local cropper config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
