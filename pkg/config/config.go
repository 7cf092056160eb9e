// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the qrsign configuration object. Every component
// receives the section it needs explicitly; there is no package-level state.
package config

import (
	"errors"
	"fmt"

	"github.com/Skyrant/printable-digital-signature/pkg/qr"
)

// Signing backends.
const (
	BackendGPG     = "gpg"
	BackendKeyring = "keyring"
	BackendKey     = "key"
)

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete qrsign configuration.
type Config struct {
	Signing  SigningConfig  `mapstructure:"signing" yaml:"signing"`
	Document DocumentConfig `mapstructure:"document" yaml:"document"`
	QR       QRConfig       `mapstructure:"qr" yaml:"qr"`
	Input    InputConfig    `mapstructure:"input" yaml:"input"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// SigningConfig selects and configures the signer.
type SigningConfig struct {
	// Backend is one of BackendGPG, BackendKeyring or BackendKey.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Home is the key store directory. A leading "~" is expanded.
	Home string `mapstructure:"home" yaml:"home"`
	// Clearsign embeds the readable message in the signature block.
	// When false a detached signature is produced.
	Clearsign bool `mapstructure:"clearsign" yaml:"clearsign"`
	// UseAgent leaves passphrase handling to gpg-agent.
	UseAgent bool `mapstructure:"use_agent" yaml:"use_agent"`
	// Passphrase unlocks the private key when UseAgent is false.
	Passphrase string `mapstructure:"passphrase" yaml:"passphrase"`
	// KeyID selects the signing key. Empty means the backend default.
	KeyID string `mapstructure:"key_id" yaml:"key_id"`
	// GPGBinary is the gpg executable used by the gpg backend.
	GPGBinary string `mapstructure:"gpg_binary" yaml:"gpg_binary"`
}

// DocumentConfig controls the generated PDF.
type DocumentConfig struct {
	Title   string `mapstructure:"title" yaml:"title"`
	Caption string `mapstructure:"caption" yaml:"caption"`
	// ImageSize is the rendered QR size in points.
	ImageSize float64 `mapstructure:"image_size" yaml:"image_size"`
	Compress  bool    `mapstructure:"compress" yaml:"compress"`
}

// QRConfig controls QR encoding.
type QRConfig struct {
	// Level is the error-correction level: low, medium, high or highest,
	// or the letters l, m, q and h.
	Level string `mapstructure:"level" yaml:"level"`
	// AutoLevel picks the highest level that still fits the payload.
	AutoLevel bool `mapstructure:"auto_level" yaml:"auto_level"`
	// ModulePixels is the PNG size of one QR module in pixels.
	ModulePixels int `mapstructure:"module_pixels" yaml:"module_pixels"`
}

// InputConfig names the message file.
type InputConfig struct {
	Message string `mapstructure:"message" yaml:"message"`
}

// OutputConfig names the generated artifacts. An empty QRImage keeps the
// QR code in memory only.
type OutputConfig struct {
	PDF     string `mapstructure:"pdf" yaml:"pdf"`
	QRImage string `mapstructure:"qr_image" yaml:"qr_image"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate rejects configurations no component can run with.
func (c *Config) Validate() error {
	switch c.Signing.Backend {
	case BackendGPG:
		if c.Signing.GPGBinary == "" {
			return fmt.Errorf("%w: signing.gpg_binary is empty", ErrInvalidConfig)
		}
	case BackendKeyring, BackendKey:
		if c.Signing.UseAgent {
			return fmt.Errorf("%w: signing.use_agent requires the %q backend, got %q",
				ErrInvalidConfig, BackendGPG, c.Signing.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown signing.backend %q", ErrInvalidConfig, c.Signing.Backend)
	}

	if c.Signing.Home == "" {
		return fmt.Errorf("%w: signing.home is empty", ErrInvalidConfig)
	}
	if _, err := qr.ParseLevel(c.QR.Level); err != nil {
		return fmt.Errorf("%w: qr.level: %w", ErrInvalidConfig, err)
	}
	if c.QR.ModulePixels <= 0 {
		return fmt.Errorf("%w: qr.module_pixels must be positive", ErrInvalidConfig)
	}
	if c.Document.ImageSize <= 0 {
		return fmt.Errorf("%w: document.image_size must be positive", ErrInvalidConfig)
	}
	if c.Input.Message == "" || c.Output.PDF == "" {
		return fmt.Errorf("%w: input.message and output.pdf are required", ErrInvalidConfig)
	}
	return nil
}
