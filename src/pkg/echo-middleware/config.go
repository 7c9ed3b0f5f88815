package echomw

import (
	"fmt"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"document-scanner/src/pkg/config"
)

type Config struct {
	Address             string `json:"address,omitempty"`
	Port                int    `json:"port,omitempty"`
	MiddlewareRateLimit int    `json:"middleware_rate_limit,omitempty"`
	MiddlewareBurst     int    `json:"middleware_burst,omitempty"`
	// echo body limit syntax, e.g. "20M".
	BodyLimit string `json:"body_limit,omitempty"`
	// Brotli quality, 0 (fastest) to 11 (smallest).
	BrotliLevel int `json:"brotli_level,omitempty"`
	// How long in-flight requests may run after a shutdown signal.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Address:             "127.0.0.1",
		Port:                8401,
		MiddlewareRateLimit: 3,
		MiddlewareBurst:     50,
		BodyLimit:           "20M",
		BrotliLevel:         5,

		ShutdownTimeoutSeconds: 10,
	}
}

func (cfg Config) ShutdownTimeout() time.Duration {
	return time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second
}

// create config with default values before config gets initialized
var Cfg Config = DefaultValueConfig()

/*
InitializeConfig takes the "server" section of the config file. Missing fields
keep their defaults; a missing section keeps the whole default config.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "server", "not provided", "default server config")
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

	if Cfg.BrotliLevel > 11 {
		tl.Log(tl.Warning, palette.YellowBold, "brotli_level %s is above %s, using %s", fmt.Sprintf("%d", Cfg.BrotliLevel), "11", "11")
		Cfg.BrotliLevel = 11
	}

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "server", "provided", "local server config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
