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
	"crypto"
	"encoding/base64"
	"strings"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	keycrypto "github.com/Skyrant/printable-digital-signature/internal/crypto"
	"github.com/Skyrant/printable-digital-signature/pkg/dsse"
	"github.com/Skyrant/printable-digital-signature/pkg/signing"
)

func pemKey(keyData []byte) (crypto.PublicKey, string, error) {
	if isArmoredPGP(keyData) {
		return nil, "", NewVerificationError(ErrTypeConfiguration, "a DSSE signature needs a PEM public key", nil)
	}
	pub, err := cryptoutils.UnmarshalPEMToPublicKey(keyData)
	if err != nil {
		return nil, "", NewVerificationError(ErrTypeInvalidFormat, "cannot parse PEM public key", err)
	}
	hint, err := signing.ComputeKeyHint(pub)
	if err != nil {
		return nil, "", NewVerificationError(ErrTypeInvalidFormat, "unsupported public key", err)
	}
	return pub, hint, nil
}

func verifyEnvelope(signed string, keyData []byte) (Result, error) {
	pub, hint, err := pemKey(keyData)
	if err != nil {
		return Result{}, err
	}
	env, err := dsse.Parse([]byte(signed))
	if err != nil {
		return Result{}, NewVerificationError(ErrTypeInvalidFormat, "malformed DSSE envelope", err)
	}
	if err := env.ValidatePayloadType(dsse.TextPayloadType); err != nil {
		return Result{}, NewVerificationError(ErrTypeInvalidFormat, "unexpected payload type", err)
	}
	payload, err := env.DecodePayload()
	if err != nil {
		return Result{}, NewVerificationError(ErrTypeInvalidFormat, "malformed DSSE payload", err)
	}
	sig, err := env.DecodeSignature()
	if err != nil {
		return Result{}, NewVerificationError(ErrTypeInvalidFormat, "malformed DSSE signature", err)
	}
	if id := env.KeyID(); id != "" && id != hint {
		return Result{}, NewVerificationError(ErrTypeSignatureInvalid, "envelope was signed by a different key ("+id+")", nil)
	}
	if err := keycrypto.Verify(pub, dsse.PAE(env.PayloadType(), payload), sig); err != nil {
		return Result{}, NewVerificationError(ErrTypeSignatureInvalid, "DSSE signature does not verify", err)
	}
	return Result{Content: string(payload), SignerID: hint}, nil
}

func verifyDetachedDSSE(signature, content string, keyData []byte) (Result, error) {
	pub, hint, err := pemKey(keyData)
	if err != nil {
		return Result{}, err
	}
	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return Result{}, NewVerificationError(ErrTypeInvalidFormat, "malformed base64 signature", err)
	}
	if err := keycrypto.Verify(pub, dsse.PAE(dsse.TextPayloadType, []byte(content)), sig); err != nil {
		return Result{}, NewVerificationError(ErrTypeSignatureInvalid, "signature does not verify", err)
	}
	return Result{Content: content, SignerID: hint}, nil
}
