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

package signing

import (
	"errors"
	"fmt"

	"github.com/Skyrant/printable-digital-signature/pkg/utils"
)

var (
	// ErrKeyStore is returned when the key store is missing or unusable.
	ErrKeyStore = errors.New("key store unavailable")

	// ErrNoKey is returned when no usable private key is found, or when the
	// configured key id matches none.
	ErrNoKey = errors.New("no usable signing key")

	// ErrSigningRejected is returned when the signing tool refuses to sign,
	// for instance on a wrong passphrase.
	ErrSigningRejected = errors.New("signing rejected")

	// ErrEmptySignature is returned when signing succeeds but yields no output.
	ErrEmptySignature = errors.New("signer produced empty output")
)

// CheckKeyStore verifies that home exists and is a directory.
func CheckKeyStore(home string) error {
	if err := utils.ValidateFolderExists("key store", home); err != nil {
		return fmt.Errorf("%w: %w", ErrKeyStore, err)
	}
	return nil
}
