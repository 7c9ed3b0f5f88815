// Package config loads the JSON configuration file shared by all programs.
//
// The file holds one section per package:
//
//	{
//	  "cropper": {"horizontal_band_divisor": 3, "vertical_band_divisor": 20},
//	  "ocr":     {"language": "eng"},
//	  "server":  {"port": 8401}
//	}
//
// Each package keeps its own Config type, default values and InitializeConfig
// function; this package only reads the file and hands out raw sections.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

var (
	sectionsMu sync.RWMutex
	sections   = map[string]json.RawMessage{}
)

/*
CheckIfEnvVarsPresent logs every missing environment variable and exits(1)
if any of them is not set. Call it before flag parsing so the user sees all
missing values at once.
*/
func CheckIfEnvVarsPresent(names ...string) {
	missing := false
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			tl.Log(tl.Warning, palette.YellowBold, "Environment variable %s is %s", name, "not set")
			missing = true
		}
	}
	if missing {
		os.Exit(1)
	}
}

/*
InitializeConfig reads the configuration file at configPath and keeps its
sections in memory.

A missing file is not an error: every package falls back to its defaults.
A file that exists but cannot be parsed terminates the program.
*/
func InitializeConfig(configPath string) {
	e := LoadFile(configPath)
	e.QuitIf(xerr.ErrorTypeError)
}

// LoadFile is the non-exiting variant of InitializeConfig.
func LoadFile(configPath string) (e *xerr.Error) {
	fileBytes, readErr := os.ReadFile(configPath)
	if readErr != nil {
		if errors.Is(readErr, os.ErrNotExist) {
			tl.Log(tl.Info, palette.Purple, "Config file '%s' %s, using %s", configPath, "not found", "default values")
			return nil
		}
		return xerr.NewError(readErr, "read config file", configPath)
	}

	e = LoadBytes(fileBytes)
	if e != nil {
		return e
	}

	tl.Log(tl.Info, palette.Green, "Loaded config file '%s'", configPath)
	return nil
}

// LoadBytes replaces the in-memory sections with the ones found in fileBytes.
func LoadBytes(fileBytes []byte) (e *xerr.Error) {
	parsed := map[string]json.RawMessage{}
	unmarshalErr := json.Unmarshal(fileBytes, &parsed)
	if unmarshalErr != nil {
		return xerr.NewError(unmarshalErr, "parse config file", fmt.Sprintf("%d bytes", len(fileBytes)))
	}

	sectionsMu.Lock()
	sections = parsed
	sectionsMu.Unlock()
	return nil
}

/*
Section decodes the named section into a new *T.

It returns nil when the section is absent so callers can pass the result
straight into their package's InitializeConfig, which keeps defaults for nil.
*/
func Section[T any](name string) (section *T, e *xerr.Error) {
	sectionsMu.RLock()
	raw, ok := sections[name]
	sectionsMu.RUnlock()
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	section = new(T)
	unmarshalErr := json.Unmarshal(raw, section)
	if unmarshalErr != nil {
		return nil, xerr.NewError(unmarshalErr, "decode config section", name)
	}
	return section, nil
}

// GetPackageName returns the name of the package of the calling function.
func GetPackageName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return packageNameFromFuncName(fn.Name())
}

// "document-scanner/src/pkg/echo-middleware.InitializeConfig.func1" -> "echo-middleware"
func packageNameFromFuncName(funcName string) string {
	lastSlash := strings.LastIndex(funcName, "/")
	name := funcName[lastSlash+1:]
	if dot := strings.Index(name, "."); dot >= 0 {
		name = name[:dot]
	}
	return name
}
