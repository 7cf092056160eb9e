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

package verify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"

	"github.com/Skyrant/printable-digital-signature/pkg/signing/keyring"
)

func openpgpKeys(keyData []byte) (openpgp.EntityList, error) {
	if !isArmoredPGP(keyData) {
		return nil, NewVerificationError(ErrTypeConfiguration, "an OpenPGP signature needs an OpenPGP public key", nil)
	}
	keys, err := keyring.ParseKeys(keyData)
	if err != nil {
		return nil, NewVerificationError(ErrTypeInvalidFormat, "cannot parse OpenPGP keys", err)
	}
	return keys, nil
}

func verifyClearsigned(signed string, keyData []byte) (Result, error) {
	keys, err := openpgpKeys(keyData)
	if err != nil {
		return Result{}, err
	}
	block, _ := clearsign.Decode([]byte(signed))
	if block == nil {
		return Result{}, NewVerificationError(ErrTypeInvalidFormat, "malformed clear-signed block", nil)
	}
	signer, err := openpgp.CheckDetachedSignature(keys, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body, nil)
	if err != nil {
		return Result{}, NewVerificationError(ErrTypeSignatureInvalid, "OpenPGP signature does not verify", err)
	}
	return Result{
		Content:  strings.TrimSuffix(string(block.Plaintext), "\n"),
		SignerID: keyring.EntityInfo(signer).KeyID,
	}, nil
}

func verifyDetachedPGP(signature, content string, keyData []byte) (Result, error) {
	keys, err := openpgpKeys(keyData)
	if err != nil {
		return Result{}, err
	}
	signer, err := openpgp.CheckArmoredDetachedSignature(keys, strings.NewReader(content), strings.NewReader(signature), nil)
	if err != nil {
		return Result{}, NewVerificationError(ErrTypeSignatureInvalid, fmt.Sprintf("OpenPGP detached signature does not verify over %d bytes", len(content)), err)
	}
	return Result{Content: content, SignerID: keyring.EntityInfo(signer).KeyID}, nil
}
