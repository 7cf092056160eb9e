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

// Package verify checks a signed message produced by qrsign, read from a
// file or decoded from the QR image, against a public key.
package verify

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/Skyrant/printable-digital-signature/pkg/logging"
	"github.com/Skyrant/printable-digital-signature/pkg/message"
	"github.com/Skyrant/printable-digital-signature/pkg/qr"
	"github.com/Skyrant/printable-digital-signature/pkg/utils"
)

// Format is the detected shape of a signed message.
type Format int

const (
	FormatUnknown Format = iota
	// FormatClearsign is an OpenPGP clear-signed block.
	FormatClearsign
	// FormatDetachedPGP is an armored OpenPGP detached signature.
	FormatDetachedPGP
	// FormatDSSE is a DSSE envelope carrying the message.
	FormatDSSE
	// FormatDetachedDSSE is a base64 signature over the DSSE PAE.
	FormatDetachedDSSE
)

func (f Format) String() string {
	switch f {
	case FormatClearsign:
		return "clearsign"
	case FormatDetachedPGP:
		return "detached-pgp"
	case FormatDSSE:
		return "dsse"
	case FormatDetachedDSSE:
		return "detached-dsse"
	default:
		return "unknown"
	}
}

// Detect classifies signed text.
func Detect(signed string) Format {
	s := strings.TrimSpace(signed)
	switch {
	case strings.HasPrefix(s, "-----BEGIN PGP SIGNED MESSAGE-----"):
		return FormatClearsign
	case strings.HasPrefix(s, "-----BEGIN PGP SIGNATURE-----"):
		return FormatDetachedPGP
	case strings.HasPrefix(s, "{"):
		return FormatDSSE
	case s != "" && isBase64(s):
		return FormatDetachedDSSE
	}
	return FormatUnknown
}

func isBase64(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9',
			r == '+', r == '/', r == '=':
		default:
			return false
		}
	}
	return true
}

// Result is the outcome of a successful verification.
type Result struct {
	Verified bool
	Message  string
	// Content is the signed content, the normalized message.
	Content string
	// SignerID is the OpenPGP key id or the DSSE key hint.
	SignerID string
	Format   Format
}

// Options selects what is verified.
type Options struct {
	// SignedPath is a file holding the signed text. Exactly one of
	// SignedPath and QRPath is set.
	SignedPath string
	// QRPath is a PNG holding the QR code of the signed text.
	QRPath string
	// MessagePath is the original message. Detached signatures need it;
	// for clear-signed input the embedded content is compared with it.
	MessagePath string
	// KeyPath is an OpenPGP public keyring (armored or binary) or a PEM
	// public key.
	KeyPath string
	Logger  logging.Logger
}

// Verifier verifies one signed message.
type Verifier struct {
	opts   Options
	logger logging.Logger
}

// NewVerifier validates the options.
func NewVerifier(opts Options) (*Verifier, error) {
	if (opts.SignedPath == "") == (opts.QRPath == "") {
		return nil, NewVerificationError(ErrTypeConfiguration, "exactly one of the signed file and the QR image is required", nil)
	}
	for name, path := range map[string]string{"signed message": opts.SignedPath, "QR image": opts.QRPath, "message": opts.MessagePath} {
		if err := utils.ValidateOptionalFile(name, path); err != nil {
			return nil, NewVerificationErrorWithPath(ErrTypeFileNotFound, path, name+" is not readable", err)
		}
	}
	if err := utils.ValidateFileExists("public key", opts.KeyPath); err != nil {
		return nil, NewVerificationErrorWithPath(ErrTypeFileNotFound, opts.KeyPath, "public key is not readable", err)
	}
	return &Verifier{opts: opts, logger: logging.Component(opts.Logger, "verify")}, nil
}

// Verify reads the signed text and checks it.
func (v *Verifier) Verify(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	signed, err := v.readSigned()
	if err != nil {
		return Result{}, err
	}
	keyData, err := os.ReadFile(v.opts.KeyPath)
	if err != nil {
		return Result{}, readError(v.opts.KeyPath, err)
	}

	var normalized *string
	if v.opts.MessagePath != "" {
		m, err := message.Load(v.opts.MessagePath)
		if err != nil {
			return Result{}, readError(v.opts.MessagePath, err)
		}
		n := m.Normalized()
		normalized = &n
	}

	format := Detect(signed)
	v.logger.Debug("verifying %s signature", format)

	var res Result
	switch format {
	case FormatClearsign:
		res, err = verifyClearsigned(signed, keyData)
	case FormatDetachedPGP:
		if normalized == nil {
			return Result{}, NewVerificationError(ErrTypeConfiguration, "a detached signature needs the original message", nil)
		}
		res, err = verifyDetachedPGP(signed, *normalized, keyData)
	case FormatDSSE:
		res, err = verifyEnvelope(signed, keyData)
	case FormatDetachedDSSE:
		if normalized == nil {
			return Result{}, NewVerificationError(ErrTypeConfiguration, "a detached signature needs the original message", nil)
		}
		res, err = verifyDetachedDSSE(signed, *normalized, keyData)
	default:
		return Result{}, NewVerificationError(ErrTypeInvalidFormat, "unrecognized signed message", nil)
	}
	if err != nil {
		return Result{Message: err.Error()}, err
	}
	res.Format = format

	if normalized != nil {
		if !sameContent(format, res.Content, *normalized) {
			err := NewVerificationError(ErrTypeContentMismatch, "signed content differs from the message", nil)
			return Result{Message: err.Error()}, err
		}
		res.Content = *normalized
	}

	res.Verified = true
	res.Message = "Verification succeeded"
	v.logger.Info("Verified %s signature by %s", format, res.SignerID)
	return res, nil
}

// sameContent compares signed content with the normalized message. A
// clear-signed block does not cover its final line ending, so for that
// format the message is compared without it.
func sameContent(format Format, content, normalized string) bool {
	if format == FormatClearsign {
		return content == strings.TrimSuffix(normalized, "\n")
	}
	return content == normalized
}

func (v *Verifier) readSigned() (string, error) {
	if v.opts.QRPath != "" {
		text, err := qr.DecodeFile(v.opts.QRPath)
		if err != nil {
			return "", NewVerificationErrorWithPath(ErrTypeInvalidFormat, v.opts.QRPath, "cannot read QR code", err)
		}
		return text, nil
	}
	data, err := os.ReadFile(v.opts.SignedPath)
	if err != nil {
		return "", readError(v.opts.SignedPath, err)
	}
	return string(data), nil
}

func readError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return NewVerificationErrorWithPath(ErrTypeFileNotFound, path, "file not found", err)
	}
	return NewVerificationErrorWithPath(ErrTypeIO, path, "read failed", err)
}

// isArmoredPGP reports whether key material is OpenPGP rather than PEM.
func isArmoredPGP(data []byte) bool {
	t := bytes.TrimSpace(data)
	return bytes.HasPrefix(t, []byte("-----BEGIN PGP")) || !bytes.HasPrefix(t, []byte("-----BEGIN"))
}
