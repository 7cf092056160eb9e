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

package config

// Default values.
const (
	DefaultHome         = "~/.gnupg"
	DefaultTitle        = "QR code signed document"
	DefaultCaption      = "This document is signed with the QR code shown on the right. Validate it using a Barcode Scanner."
	DefaultImageSize    = 101.0
	DefaultMessagePath  = "message.txt"
	DefaultPDFPath      = "qr_code_signed.pdf"
	DefaultQRImagePath  = "qrcode.png"
	DefaultGPGBinary    = "gpg"
	DefaultQRLevel      = "low"
	DefaultModulePixels = 4
)

// DefaultConfig returns a Config populated with the defaults: clear-signed
// output through gpg-agent with gpg's default key.
func DefaultConfig() Config {
	return Config{
		Signing: SigningConfig{
			Backend:   BackendGPG,
			Home:      DefaultHome,
			Clearsign: true,
			UseAgent:  true,
			GPGBinary: DefaultGPGBinary,
		},
		Document: DocumentConfig{
			Title:     DefaultTitle,
			Caption:   DefaultCaption,
			ImageSize: DefaultImageSize,
			Compress:  true,
		},
		QR: QRConfig{
			Level:        DefaultQRLevel,
			ModulePixels: DefaultModulePixels,
		},
		Input:  InputConfig{Message: DefaultMessagePath},
		Output: OutputConfig{PDF: DefaultPDFPath, QRImage: DefaultQRImagePath},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}
