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

package options

import (
	"github.com/spf13/cobra"

	"github.com/Skyrant/printable-digital-signature/pkg/config"
)

// SignOptions are the flags of the sign action.
type SignOptions struct {
	SigningFlags
	Message      string
	PDF          string
	QRImage      string
	Title        string
	Caption      string
	ImageSize    float64
	Compress     bool
	QRLevel      string
	QRAutoLevel  bool
	ModulePixels int
}

var _ Binder = (*SignOptions)(nil)

// AddFlags adds the sign flags to the cobra command.
func (o *SignOptions) AddFlags(cmd *cobra.Command) {
	o.SigningFlags.AddFlags(cmd)

	cmd.Flags().StringVarP(&o.Message, "message", "m", config.DefaultMessagePath, "Message file to sign.")
	_ = cmd.MarkFlagFilename("message", "txt")
	cmd.Flags().StringVarP(&o.PDF, "pdf", "o", config.DefaultPDFPath, "Location of the PDF to generate.")
	_ = cmd.MarkFlagFilename("pdf", "pdf")
	cmd.Flags().StringVar(&o.QRImage, "qr-image", config.DefaultQRImagePath, "Location of the QR code PNG. Empty keeps it in memory.")
	cmd.Flags().StringVar(&o.Title, "title", config.DefaultTitle, "Document title.")
	cmd.Flags().StringVar(&o.Caption, "caption", config.DefaultCaption, "Text printed next to the QR code.")
	cmd.Flags().Float64Var(&o.ImageSize, "image-size", config.DefaultImageSize, "Rendered QR code size in points.")
	cmd.Flags().BoolVar(&o.Compress, "compress", true, "Compress PDF streams.")
	cmd.Flags().StringVar(&o.QRLevel, "qr-level", config.DefaultQRLevel, "QR error-correction level: low, medium, high or highest.")
	cmd.Flags().BoolVar(&o.QRAutoLevel, "qr-auto-level", false, "Use the highest error-correction level that fits.")
	cmd.Flags().IntVar(&o.ModulePixels, "module-pixels", config.DefaultModulePixels, "PNG pixels per QR module.")
}

// Bindings implements Binder.
func (o *SignOptions) Bindings() []Binding {
	return append(o.SigningFlags.Bindings(),
		Binding{Flag: "message", Key: "input.message"},
		Binding{Flag: "pdf", Key: "output.pdf"},
		Binding{Flag: "qr-image", Key: "output.qr_image"},
		Binding{Flag: "title", Key: "document.title"},
		Binding{Flag: "caption", Key: "document.caption"},
		Binding{Flag: "image-size", Key: "document.image_size"},
		Binding{Flag: "compress", Key: "document.compress"},
		Binding{Flag: "qr-level", Key: "qr.level"},
		Binding{Flag: "qr-auto-level", Key: "qr.auto_level"},
		Binding{Flag: "module-pixels", Key: "qr.module_pixels"},
	)
}

// KeysOptions are the flags of the keys command.
type KeysOptions struct {
	SigningFlags
}

var _ Binder = (*KeysOptions)(nil)
