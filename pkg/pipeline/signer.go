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
	"fmt"

	"github.com/Skyrant/printable-digital-signature/pkg/config"
	"github.com/Skyrant/printable-digital-signature/pkg/logging"
	"github.com/Skyrant/printable-digital-signature/pkg/signing"
	"github.com/Skyrant/printable-digital-signature/pkg/signing/gpg"
	"github.com/Skyrant/printable-digital-signature/pkg/signing/key"
	"github.com/Skyrant/printable-digital-signature/pkg/signing/keyring"
	"github.com/Skyrant/printable-digital-signature/pkg/utils"
)

// NewSigner builds the signer selected by cfg.Backend. The key store must
// exist; a leading "~" in cfg.Home is expanded.
func NewSigner(cfg config.SigningConfig, logger logging.Logger) (signing.Signer, error) {
	home, err := utils.ExpandHome(cfg.Home)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", signing.ErrKeyStore, err)
	}

	switch cfg.Backend {
	case config.BackendGPG:
		return gpg.NewGPGSigner(gpg.GPGSignerOptions{
			Binary:     cfg.GPGBinary,
			Home:       home,
			KeyID:      cfg.KeyID,
			Passphrase: cfg.Passphrase,
			UseAgent:   cfg.UseAgent,
			Clearsign:  cfg.Clearsign,
			Logger:     logger,
		})
	case config.BackendKeyring:
		if cfg.UseAgent {
			return nil, fmt.Errorf("%w: the %s backend cannot use an agent", config.ErrInvalidConfig, cfg.Backend)
		}
		return keyring.NewKeyringSigner(keyring.KeyringSignerOptions{
			Home:       home,
			KeyID:      cfg.KeyID,
			Passphrase: cfg.Passphrase,
			Clearsign:  cfg.Clearsign,
			Logger:     logger,
		})
	case config.BackendKey:
		if cfg.UseAgent {
			return nil, fmt.Errorf("%w: the %s backend cannot use an agent", config.ErrInvalidConfig, cfg.Backend)
		}
		return key.NewKeySigner(key.KeySignerOptions{
			Home:       home,
			KeyID:      cfg.KeyID,
			Passphrase: cfg.Passphrase,
			Clearsign:  cfg.Clearsign,
			Logger:     logger,
		})
	default:
		return nil, fmt.Errorf("%w: unknown signing backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}
