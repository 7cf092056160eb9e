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

// Package keyring signs messages with OpenPGP secret keys read directly
// from the key store directory, without gpg or gpg-agent.
package keyring

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/Skyrant/printable-digital-signature/pkg/logging"
	"github.com/Skyrant/printable-digital-signature/pkg/signing"
)

// Backend is the backend name reported in SignedMessage.
const Backend = "keyring"

var _ signing.Signer = (*KeyringSigner)(nil)

// KeyringSignerOptions configures a KeyringSigner.
type KeyringSignerOptions struct {
	Home       string
	KeyID      string
	Passphrase string
	Clearsign  bool
	Logger     logging.Logger
	// Config is handed to go-crypto; nil selects its defaults.
	Config *packet.Config
}

// KeyringSigner implements signing.Signer over an OpenPGP key directory.
type KeyringSigner struct {
	opts   KeyringSignerOptions
	logger logging.Logger
}

// NewKeyringSigner validates the key store and returns a signer.
func NewKeyringSigner(opts KeyringSignerOptions) (*KeyringSigner, error) {
	if err := signing.CheckKeyStore(opts.Home); err != nil {
		return nil, err
	}
	return &KeyringSigner{
		opts:   opts,
		logger: logging.Component(opts.Logger, "keyring-signer"),
	}, nil
}

// ListKeys returns the secret keys found in the key store.
func (s *KeyringSigner) ListKeys(_ context.Context) ([]signing.KeyInfo, error) {
	entities, err := ReadKeyStore(s.opts.Home, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", signing.ErrKeyStore, err)
	}
	infos := make([]signing.KeyInfo, 0, len(entities))
	for _, e := range entities {
		infos = append(infos, EntityInfo(e))
	}
	return infos, nil
}

// Sign produces an OpenPGP clear-signed block, or an armored detached
// signature over text.
func (s *KeyringSigner) Sign(ctx context.Context, text string) (signing.SignedMessage, error) {
	if err := ctx.Err(); err != nil {
		return signing.SignedMessage{}, err
	}

	entities, err := ReadKeyStore(s.opts.Home, s.logger)
	if err != nil {
		return signing.SignedMessage{}, fmt.Errorf("%w: %w", signing.ErrKeyStore, err)
	}
	entity, err := s.pick(entities)
	if err != nil {
		return signing.SignedMessage{}, err
	}
	info := EntityInfo(entity)

	key, ok := entity.SigningKey(s.opts.Config.Now())
	if !ok || key.PrivateKey == nil {
		return signing.SignedMessage{}, fmt.Errorf("%w: key %s has no usable signing key", signing.ErrNoKey, info.KeyID)
	}
	if err := unlock(entity, s.opts.Passphrase); err != nil {
		return signing.SignedMessage{}, fmt.Errorf("%w: unlocking %s: %w", signing.ErrSigningRejected, info.KeyID, err)
	}

	s.logger.Debug("signing %d bytes with %s", len(text), info.KeyID)
	var buf bytes.Buffer
	if s.opts.Clearsign {
		w, err := clearsign.Encode(&buf, key.PrivateKey, s.opts.Config)
		if err != nil {
			return signing.SignedMessage{}, fmt.Errorf("%w: %w", signing.ErrSigningRejected, err)
		}
		if _, err := w.Write([]byte(text)); err != nil {
			return signing.SignedMessage{}, fmt.Errorf("%w: %w", signing.ErrSigningRejected, err)
		}
		if err := w.Close(); err != nil {
			return signing.SignedMessage{}, fmt.Errorf("%w: %w", signing.ErrSigningRejected, err)
		}
	} else {
		if err := openpgp.ArmoredDetachSignText(&buf, entity, strings.NewReader(text), s.opts.Config); err != nil {
			return signing.SignedMessage{}, fmt.Errorf("%w: %w", signing.ErrSigningRejected, err)
		}
	}

	if buf.Len() == 0 {
		return signing.SignedMessage{}, signing.ErrEmptySignature
	}
	return signing.SignedMessage{
		Text:    buf.String(),
		Mode:    signing.ModeFor(s.opts.Clearsign),
		KeyID:   info.KeyID,
		Backend: Backend,
	}, nil
}

func (s *KeyringSigner) pick(entities openpgp.EntityList) (*openpgp.Entity, error) {
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: no OpenPGP secret keys in %s", signing.ErrNoKey, s.opts.Home)
	}
	if s.opts.KeyID == "" {
		return entities[0], nil
	}
	for _, e := range entities {
		if matches(e, s.opts.KeyID) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: no key matches %q", signing.ErrNoKey, s.opts.KeyID)
}

// matches checks the primary key and every subkey.
func matches(e *openpgp.Entity, want string) bool {
	if signing.MatchKeyID(want, keyID(e.PrimaryKey), fingerprint(e.PrimaryKey)) {
		return true
	}
	for _, sub := range e.Subkeys {
		if signing.MatchKeyID(want, keyID(sub.PublicKey), fingerprint(sub.PublicKey)) {
			return true
		}
	}
	return false
}

// unlock decrypts the primary key and its subkeys in place.
func unlock(e *openpgp.Entity, passphrase string) error {
	if e.PrivateKey != nil && e.PrivateKey.Encrypted {
		if err := e.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
			return err
		}
	}
	for _, sub := range e.Subkeys {
		if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
			if err := sub.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return err
			}
		}
	}
	return nil
}

// EntityInfo describes an OpenPGP entity for display.
func EntityInfo(e *openpgp.Entity) signing.KeyInfo {
	uids := make([]string, 0, len(e.Identities))
	for name := range e.Identities {
		uids = append(uids, name)
	}
	sort.Strings(uids)
	return signing.KeyInfo{
		KeyID:       keyID(e.PrimaryKey),
		Fingerprint: fingerprint(e.PrimaryKey),
		UIDs:        uids,
		Algorithm:   algorithmName(e.PrimaryKey.PubKeyAlgo),
		Created:     e.PrimaryKey.CreationTime,
	}
}

func keyID(pk *packet.PublicKey) string {
	return fmt.Sprintf("%016X", pk.KeyId)
}

func fingerprint(pk *packet.PublicKey) string {
	return strings.ToUpper(hex.EncodeToString(pk.Fingerprint))
}

func algorithmName(algo packet.PublicKeyAlgorithm) string {
	switch algo {
	case packet.PubKeyAlgoRSA, packet.PubKeyAlgoRSASignOnly:
		return "rsa"
	case packet.PubKeyAlgoDSA:
		return "dsa"
	case packet.PubKeyAlgoECDSA:
		return "ecdsa"
	case packet.PubKeyAlgoEdDSA:
		return "eddsa"
	case packet.PubKeyAlgoEd25519:
		return "ed25519"
	case packet.PubKeyAlgoEd448:
		return "ed448"
	default:
		return fmt.Sprintf("algo%d", algo)
	}
}
