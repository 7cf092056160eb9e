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

// Package signing defines the signer contract shared by every signing
// backend and the values that flow between the signer, the QR encoder and
// the reporter.
package signing

import (
	"context"
	"time"
)

// Mode selects the shape of the produced signature.
type Mode int

const (
	// ModeClearsign embeds the readable message in the signed block.
	ModeClearsign Mode = iota
	// ModeDetached produces only the signature over the message.
	ModeDetached
)

func (m Mode) String() string {
	switch m {
	case ModeClearsign:
		return "clearsign"
	case ModeDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// ModeFor maps the clearsign setting to a Mode.
func ModeFor(clearsign bool) Mode {
	if clearsign {
		return ModeClearsign
	}
	return ModeDetached
}

// KeyInfo describes one private key visible to a signer. It is used for
// display only.
type KeyInfo struct {
	KeyID       string
	Fingerprint string
	UIDs        []string
	Algorithm   string
	Created     time.Time
}

// SignedMessage is the signer output. Text is opaque: an armored OpenPGP
// block, an armored detached signature or a DSSE envelope, depending on the
// backend and Mode.
type SignedMessage struct {
	Text    string
	Mode    Mode
	KeyID   string
	Backend string
}

// Valid reports whether the signer produced any output. A SignedMessage
// that is not valid must never reach the encoder.
func (s SignedMessage) Valid() bool {
	return s.Text != ""
}

// Signer signs text with a private key held in a key store.
type Signer interface {
	// ListKeys returns the private keys available in the key store.
	ListKeys(ctx context.Context) ([]KeyInfo, error)

	// Sign signs text with the configured key, or the store's default key
	// when none is configured.
	Sign(ctx context.Context, text string) (SignedMessage, error)
}
