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
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// KeyAlgorithm names the algorithm of a PKIX public key, e.g. "ECDSA-P-256".
func KeyAlgorithm(pubKey crypto.PublicKey) (string, error) {
	switch k := pubKey.(type) {
	case *ecdsa.PublicKey:
		return "ECDSA-" + k.Curve.Params().Name, nil
	case *rsa.PublicKey:
		return fmt.Sprintf("RSA-%d", k.N.BitLen()), nil
	case ed25519.PublicKey:
		return "ED25519", nil
	default:
		return "", fmt.Errorf("unsupported key type: %T", pubKey)
	}
}

// ComputeKeyHint returns the hex SHA-256 of the PEM-encoded public key.
func ComputeKeyHint(pubKey crypto.PublicKey) (string, error) {
	pubKeyPEM, err := cryptoutils.MarshalPublicKeyToPEM(pubKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key to PEM: %w", err)
	}

	sum := sha256.Sum256(pubKeyPEM)
	return hex.EncodeToString(sum[:]), nil
}

// ParsePrivateKeyPEM parses PKCS#8, EC, RSA and encrypted PEM private keys.
func ParsePrivateKeyPEM(pemBytes []byte, password string) (crypto.Signer, error) {
	var passFunc cryptoutils.PassFunc
	if password != "" {
		passFunc = func(_ bool) ([]byte, error) {
			return []byte(password), nil
		}
	}

	privKey, err := cryptoutils.UnmarshalPEMToPrivateKey(pemBytes, passFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	signer, ok := privKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("private key does not implement crypto.Signer")
	}
	return signer, nil
}
