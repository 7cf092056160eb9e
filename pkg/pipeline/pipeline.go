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

// Package pipeline runs the signing pipeline: load the message, list the
// available keys, sign the normalized message, encode the signed text as a
// QR code, compose the PDF and print the report. Stages run strictly in
// order and the first failure stops the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Skyrant/printable-digital-signature/pkg/config"
	"github.com/Skyrant/printable-digital-signature/pkg/document"
	"github.com/Skyrant/printable-digital-signature/pkg/logging"
	"github.com/Skyrant/printable-digital-signature/pkg/message"
	"github.com/Skyrant/printable-digital-signature/pkg/qr"
	"github.com/Skyrant/printable-digital-signature/pkg/report"
	"github.com/Skyrant/printable-digital-signature/pkg/signing"
	"github.com/Skyrant/printable-digital-signature/pkg/tracing"
	"github.com/Skyrant/printable-digital-signature/pkg/utils"
)

// Stage names, also used as span names.
const (
	StageConfigure = "qrsign.configure"
	StageLoad      = "qrsign.load"
	StageKeys      = "qrsign.keys"
	StageSign      = "qrsign.sign"
	StageEncode    = "qrsign.encode"
	StageCompose   = "qrsign.compose"
	StageReport    = "qrsign.report"
)

// Deps are the collaborators of Run. Zero values select the defaults.
type Deps struct {
	// Signer overrides the signer built from the configuration.
	Signer signing.Signer
	// Stdout receives the report; defaults to os.Stdout.
	Stdout io.Writer
	Logger logging.Logger
}

// Result holds what a successful run produced.
type Result struct {
	Keys          []signing.KeyInfo
	SignedMessage signing.SignedMessage
	QR            *qr.Code
	Document      *document.Rendered
	PDFPath       string
	// QRPath is empty when the QR image was not persisted.
	QRPath string
}

// Run executes the pipeline once. Every returned error is a *Error.
func Run(ctx context.Context, cfg config.Config, deps Deps) (*Result, error) {
	logger := logging.Component(deps.Logger, "pipeline")
	stdout := deps.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	signer, err := prepare(cfg, deps, logger)
	if err != nil {
		return nil, classify(StageConfigure, KindConfiguration, err)
	}

	res := &Result{PDFPath: cfg.Output.PDF}
	var msg *message.Message

	err = tracing.Run(ctx, StageLoad, map[string]interface{}{"path": cfg.Input.Message}, func(context.Context) error {
		var err error
		msg, err = message.Load(cfg.Input.Message)
		if err != nil {
			return err
		}
		if !msg.ValidUTF8() {
			logger.Warn("%s is not valid UTF-8; it is signed as-is", cfg.Input.Message)
		}
		logger.Info("Loaded %s (%d bytes)", cfg.Input.Message, msg.Len())
		return nil
	})
	if err != nil {
		return nil, classify(StageLoad, KindIO, err)
	}

	err = tracing.Run(ctx, StageKeys, nil, func(ctx context.Context) error {
		keys, err := signer.ListKeys(ctx)
		if err != nil {
			return err
		}
		res.Keys = keys
		return report.PrintKeys(stdout, keys)
	})
	if err != nil {
		return nil, classify(StageKeys, KindSigning, err)
	}

	err = tracing.Run(ctx, StageSign, map[string]interface{}{"backend": cfg.Signing.Backend}, func(ctx context.Context) error {
		signed, err := signer.Sign(ctx, msg.Normalized())
		if err != nil {
			return err
		}
		if !signed.Valid() {
			return signing.ErrEmptySignature
		}
		res.SignedMessage = signed
		logger.Info("Signed message (%s, %d bytes)", signed.Mode, len(signed.Text))
		return nil
	})
	if err != nil {
		return nil, classify(StageSign, KindSigning, err)
	}

	err = tracing.Run(ctx, StageEncode, nil, func(context.Context) error {
		level, err := qr.ParseLevel(cfg.QR.Level)
		if err != nil {
			return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		code, err := qr.Encode(res.SignedMessage.Text, qr.Options{
			Level:        level,
			AutoLevel:    cfg.QR.AutoLevel,
			ModulePixels: cfg.QR.ModulePixels,
		})
		if err != nil {
			return err
		}
		logger.Info("Encoded QR code version %d, level %s", code.Version, code.Level)
		res.QR = code
		if cfg.Output.QRImage == "" {
			return nil
		}
		if err := code.WriteFile(cfg.Output.QRImage); err != nil {
			return &Error{Kind: KindIO, Stage: StageEncode, Err: err}
		}
		res.QRPath = code.Path
		return nil
	})
	if err != nil {
		return nil, classify(StageEncode, KindEncoding, err)
	}

	err = tracing.Run(ctx, StageCompose, map[string]interface{}{"path": cfg.Output.PDF}, func(context.Context) error {
		rendered, err := document.WriteFile(cfg.Output.PDF, document.Layout{
			Title:     cfg.Document.Title,
			Body:      msg.Text(),
			Caption:   cfg.Document.Caption,
			QRPNG:     res.QR.PNG,
			ImageSize: cfg.Document.ImageSize,
			Compress:  cfg.Document.Compress,
		})
		if err != nil {
			return err
		}
		res.Document = rendered
		logger.Info("Wrote %s (%d pages)", cfg.Output.PDF, rendered.Pages)
		return nil
	})
	if err != nil {
		return nil, classify(StageCompose, KindIO, err)
	}

	if err := report.PrintSigned(stdout, res.SignedMessage); err != nil {
		return nil, classify(StageReport, KindIO, err)
	}
	return res, nil
}

// prepare validates the configuration, checks the output locations and
// builds the signer. Nothing is read or written before it succeeds.
func prepare(cfg config.Config, deps Deps, logger logging.Logger) (signing.Signer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateOutputPath("output.pdf", cfg.Output.PDF); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	if cfg.Output.QRImage != "" {
		if err := utils.ValidateOutputPath("output.qr_image", cfg.Output.QRImage); err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
	}
	if deps.Signer != nil {
		return deps.Signer, nil
	}
	logger.Debug("signing backend %s, home %s, passphrase %s",
		cfg.Signing.Backend, cfg.Signing.Home, utils.MaskSecret(cfg.Signing.Passphrase))
	return NewSigner(cfg.Signing, logger)
}
