package email

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"document-scanner/src/pkg/config"
)

type Config struct {
	Provider      Provider `json:"provider,omitempty"`
	Sender        string   `json:"sender,omitempty"`
	Recipients    []string `json:"recipients,omitempty"`
	SubjectPrefix string   `json:"subject_prefix,omitempty"`
	// Emails are only logged unless this is true.
	SendEmails bool `json:"send_emails,omitempty"`
	// Leave the cropped document PNG out of scan emails.
	SkipAttachment bool `json:"skip_attachment,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		Provider:      ProviderSES,
		SubjectPrefix: "[document-scanner]",
	}
}

var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "email", "not provided", "default email config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "email", "provided", "local email config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
