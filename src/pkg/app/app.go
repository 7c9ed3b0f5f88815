// Package app initializes the configuration of every scanner package from one file.
package app

import (
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/config"
	"document-scanner/src/pkg/cropper"
	echomw "document-scanner/src/pkg/echo-middleware"
	"document-scanner/src/pkg/email"
	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/ocr"
	"document-scanner/src/pkg/scan"
	"document-scanner/src/pkg/store"
)

// Section names in the config file.
const (
	SectionCropper = "cropper"
	SectionFrame   = "frame"
	SectionOCR     = "ocr"
	SectionScan    = "scan"
	SectionStore   = "store"
	SectionEmail   = "email"
	SectionServer  = "server"
)

/*
InitializeConfig reads configPath and initializes every package config from
its section. Packages without a section keep their defaults. Exits on a
malformed file or section.
*/
func InitializeConfig(configPath string) {
	config.InitializeConfig(configPath)
	e := InitializePackages()
	e.QuitIf(xerr.ErrorTypeError)
}

// InitializePackages applies the sections already loaded by the config package.
func InitializePackages() (e *xerr.Error) {
	steps := []func() *xerr.Error{
		initialize(SectionCropper, cropper.InitializeConfig),
		initialize(SectionFrame, frame.InitializeConfig),
		initialize(SectionOCR, ocr.InitializeConfig),
		initialize(SectionScan, scan.InitializeConfig),
		initialize(SectionStore, store.InitializeConfig),
		initialize(SectionEmail, email.InitializeConfig),
		initialize(SectionServer, echomw.InitializeConfig),
	}
	for _, step := range steps {
		e = step()
		if e != nil {
			return e
		}
	}
	return nil
}

func initialize[T any](name string, apply func(*T)) func() *xerr.Error {
	return func() *xerr.Error {
		section, e := config.Section[T](name)
		if e != nil {
			return e
		}
		apply(section)
		return nil
	}
}
