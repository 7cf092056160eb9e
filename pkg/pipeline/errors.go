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

package pipeline

import (
	"errors"
	"fmt"

	"github.com/Skyrant/printable-digital-signature/pkg/config"
	"github.com/Skyrant/printable-digital-signature/pkg/qr"
	"github.com/Skyrant/printable-digital-signature/pkg/signing"
)

// Kind classifies a pipeline failure. Every kind is fatal.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfiguration covers bad settings and a missing or unusable key
	// store.
	KindConfiguration
	// KindSigning covers a missing key, a rejected signature and empty
	// signer output.
	KindSigning
	// KindEncoding covers payloads that do not fit a QR code.
	KindEncoding
	// KindIO covers reading the message and writing artifacts.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindSigning:
		return "SigningError"
	case KindEncoding:
		return "EncodingError"
	case KindIO:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// ExitCode is the process exit status for a failure of this kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindConfiguration:
		return 2
	case KindSigning:
		return 3
	case KindEncoding:
		return 4
	case KindIO:
		return 5
	default:
		return 1
	}
}

// Error is returned by Run for every failure.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s during %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode implements the exit-code contract of cmd/qrsign.
func (e *Error) ExitCode() int {
	return e.Kind.ExitCode()
}

// classify wraps err, preferring the kind implied by known sentinels over
// the stage default.
func classify(stage string, fallback Kind, err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	kind := fallback
	switch {
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, signing.ErrKeyStore):
		kind = KindConfiguration
	case errors.Is(err, signing.ErrNoKey),
		errors.Is(err, signing.ErrSigningRejected),
		errors.Is(err, signing.ErrEmptySignature):
		kind = KindSigning
	case errors.Is(err, qr.ErrPayloadTooLarge), errors.Is(err, qr.ErrEmptyPayload):
		kind = KindEncoding
	}
	return &Error{Kind: kind, Stage: stage, Err: err}
}

// KindOf returns the kind of a pipeline error, or KindUnknown.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
