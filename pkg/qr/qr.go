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

// Package qr encodes signed messages as QR code PNG images and decodes them
// back for verification.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

var (
	// ErrPayloadTooLarge is returned when the payload does not fit a
	// version 40 symbol at the requested error-correction level.
	ErrPayloadTooLarge = errors.New("payload too large for a QR code")

	// ErrEmptyPayload is returned for an empty payload.
	ErrEmptyPayload = errors.New("empty QR payload")

	// ErrNoCode is returned when an image holds no readable QR code.
	ErrNoCode = errors.New("no QR code found")
)

// Level is the error-correction level.
type Level int

const (
	Low Level = iota
	Medium
	High
	Highest
)

func (l Level) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Highest:
		return "highest"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case Medium:
		return qrcode.Medium
	case High:
		return qrcode.High
	case Highest:
		return qrcode.Highest
	default:
		return qrcode.Low
	}
}

// ParseLevel parses low, medium, high or highest.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "low", "l":
		return Low, nil
	case "medium", "m":
		return Medium, nil
	case "high", "q":
		return High, nil
	case "highest", "h":
		return Highest, nil
	}
	return Low, fmt.Errorf("unknown QR error-correction level %q", s)
}

// DefaultModulePixels is the PNG width of one module.
const DefaultModulePixels = 4

// Options controls encoding. The zero value encodes at Low with the
// smallest version that fits.
type Options struct {
	Level Level
	// AutoLevel picks the highest level that still fits, from Highest down
	// to Level.
	AutoLevel bool
	// ModulePixels is the PNG size of one module; zero means
	// DefaultModulePixels.
	ModulePixels int
}

// Code is an encoded QR symbol.
type Code struct {
	PNG     []byte
	Version int
	Level   Level
	// Modules is the symbol width in modules, without the quiet zone.
	Modules int
	// Path is where the PNG was written, empty until WriteFile.
	Path string
}

// Encode encodes payload byte for byte. The version is the smallest that
// fits; the payload is never truncated.
func Encode(payload string, opts Options) (*Code, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	px := opts.ModulePixels
	if px <= 0 {
		px = DefaultModulePixels
	}

	levels := []Level{opts.Level}
	if opts.AutoLevel {
		levels = levels[:0]
		for l := Highest; l >= opts.Level; l-- {
			levels = append(levels, l)
		}
	}

	var lastErr error
	for _, l := range levels {
		q, err := qrcode.New(payload, l.recovery())
		if err != nil {
			lastErr = err
			continue
		}
		img, err := q.PNG(-px)
		if err != nil {
			return nil, fmt.Errorf("rendering QR code: %w", err)
		}
		return &Code{
			PNG:     img,
			Version: q.VersionNumber,
			Level:   l,
			Modules: 17 + 4*q.VersionNumber,
		}, nil
	}

	if lastErr != nil && strings.Contains(lastErr.Error(), "too long") {
		return nil, fmt.Errorf("%w: %d bytes at level %s", ErrPayloadTooLarge, len(payload), opts.Level)
	}
	return nil, fmt.Errorf("encoding QR code: %w", lastErr)
}

// WriteFile writes the PNG to path and records it in c.Path.
func (c *Code) WriteFile(path string) error {
	if err := os.WriteFile(path, c.PNG, 0o644); err != nil {
		return fmt.Errorf("writing QR image %s: %w", path, err)
	}
	c.Path = path
	return nil
}

// Image decodes the PNG.
func (c *Code) Image() (image.Image, error) {
	return png.Decode(bytes.NewReader(c.PNG))
}

// Decode reads the first QR code in img.
func Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("preparing image: %w", err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
		gozxing.DecodeHintType_TRY_HARDER:    true,
	}
	res, err := zxqrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoCode, err)
	}
	return res.GetText(), nil
}

// DecodePNG decodes PNG bytes and reads the QR code in them.
func DecodePNG(data []byte) (string, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding PNG: %w", err)
	}
	return Decode(img)
}

// DecodeFile reads a PNG file and the QR code in it.
func DecodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading QR image %s: %w", path, err)
	}
	return DecodePNG(data)
}
