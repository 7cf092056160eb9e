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

// Package key signs messages with PEM private keys kept in the key store
// directory. Clear-signed output is a DSSE envelope carrying the message;
// detached output is the base64 signature over the envelope's PAE.
package key

import (
	"context"
	"crypto"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	keycrypto "github.com/Skyrant/printable-digital-signature/internal/crypto"
	"github.com/Skyrant/printable-digital-signature/pkg/dsse"
	"github.com/Skyrant/printable-digital-signature/pkg/logging"
	"github.com/Skyrant/printable-digital-signature/pkg/signing"
)

// Backend is the backend name reported in SignedMessage.
const Backend = "key"

var _ signing.Signer = (*KeySigner)(nil)

// KeySignerOptions configures a KeySigner.
type KeySignerOptions struct {
	// Home is the directory holding *.pem and *.key files.
	Home       string
	KeyID      string
	Passphrase string
	Clearsign  bool
	Logger     logging.Logger
}

// KeySigner implements signing.Signer over PEM key files.
type KeySigner struct {
	opts   KeySignerOptions
	logger logging.Logger
}

type storedKey struct {
	info   signing.KeyInfo
	path   string
	signer crypto.Signer
	err    error
}

// NewKeySigner validates the key store and returns a signer.
func NewKeySigner(opts KeySignerOptions) (*KeySigner, error) {
	if err := signing.CheckKeyStore(opts.Home); err != nil {
		return nil, err
	}
	return &KeySigner{
		opts:   opts,
		logger: logging.Component(opts.Logger, "key-signer"),
	}, nil
}

// ListKeys returns every PEM private key the passphrase unlocks.
func (s *KeySigner) ListKeys(_ context.Context) ([]signing.KeyInfo, error) {
	keys, err := s.load()
	if err != nil {
		return nil, err
	}
	infos := make([]signing.KeyInfo, 0, len(keys))
	for _, k := range keys {
		if k.err != nil {
			continue
		}
		infos = append(infos, k.info)
	}
	return infos, nil
}

// Sign signs text with the configured key, or the first key in file order.
func (s *KeySigner) Sign(ctx context.Context, text string) (signing.SignedMessage, error) {
	if err := ctx.Err(); err != nil {
		return signing.SignedMessage{}, err
	}

	keys, err := s.load()
	if err != nil {
		return signing.SignedMessage{}, err
	}
	k, err := s.pick(keys)
	if err != nil {
		return signing.SignedMessage{}, err
	}
	if k.err != nil {
		return signing.SignedMessage{}, fmt.Errorf("%w: %s: %w", signing.ErrSigningRejected, k.path, k.err)
	}

	s.logger.Debug("signing %d bytes with %s (%s)", len(text), k.info.KeyID, k.info.Algorithm)
	pae := dsse.PAE(dsse.TextPayloadType, []byte(text))
	sig, err := keycrypto.Sign(k.signer, pae)
	if err != nil {
		return signing.SignedMessage{}, fmt.Errorf("%w: %w", signing.ErrSigningRejected, err)
	}
	if len(sig) == 0 {
		return signing.SignedMessage{}, signing.ErrEmptySignature
	}

	out := signing.SignedMessage{
		Mode:    signing.ModeFor(s.opts.Clearsign),
		KeyID:   k.info.KeyID,
		Backend: Backend,
	}
	if s.opts.Clearsign {
		env, err := dsse.CreateEnvelope(dsse.TextPayloadType, []byte(text), sig, k.info.Fingerprint).Marshal()
		if err != nil {
			return signing.SignedMessage{}, fmt.Errorf("encoding envelope: %w", err)
		}
		out.Text = string(env)
	} else {
		out.Text = base64.StdEncoding.EncodeToString(sig)
	}
	return out, nil
}

func (s *KeySigner) pick(keys []storedKey) (storedKey, error) {
	infos := make([]signing.KeyInfo, len(keys))
	for i, k := range keys {
		infos[i] = k.info
	}
	i, err := signing.SelectKey(infos, s.opts.KeyID)
	if err != nil {
		return storedKey{}, fmt.Errorf("PEM keys in %s: %w", s.opts.Home, err)
	}
	return keys[i], nil
}

// load reads candidate files in lexical order. Files that are not PEM
// private keys are skipped; keys that fail to decrypt are kept with err set
// so that selecting them reports a rejected signature instead of a
// missing key.
func (s *KeySigner) load() ([]storedKey, error) {
	entries, err := os.ReadDir(s.opts.Home)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", signing.ErrKeyStore, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".pem" && ext != ".key") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var keys []storedKey
	for _, name := range names {
		path := filepath.Join(s.opts.Home, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping %s: %v", path, err)
			continue
		}
		block, _ := pem.Decode(data)
		if block == nil || !strings.Contains(block.Type, "PRIVATE KEY") {
			s.logger.Debug("skipping %s: not a PEM private key", path)
			continue
		}

		k := storedKey{
			path: path,
			info: signing.KeyInfo{
				KeyID: strings.TrimSuffix(name, filepath.Ext(name)),
				UIDs:  []string{name},
			},
		}
		if fi, err := os.Stat(path); err == nil {
			k.info.Created = fi.ModTime()
		}
		k.signer, k.err = signing.ParsePrivateKeyPEM(data, s.opts.Passphrase)
		if k.err == nil {
			k.err = describe(&k)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func describe(k *storedKey) error {
	alg, err := signing.KeyAlgorithm(k.signer.Public())
	if err != nil {
		return err
	}
	hint, err := signing.ComputeKeyHint(k.signer.Public())
	if err != nil {
		return err
	}
	k.info.Algorithm = alg
	k.info.Fingerprint = hint
	return nil
}
