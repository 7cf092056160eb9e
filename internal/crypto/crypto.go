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

// Package crypto signs and verifies raw bytes with PKIX keys. The digest
// is chosen from the key: SHA-256 for P-256 and RSA, SHA-384 for P-384,
// SHA-512 for P-521, none for Ed25519.
package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
)

// ErrVerify is wrapped by every verification failure.
var ErrVerify = errors.New("signature verification failed")

// HashFor returns the digest used with pub. crypto.Hash(0) means the
// message is signed without pre-hashing.
func HashFor(pub crypto.PublicKey) (crypto.Hash, error) {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		switch k.Curve.Params().BitSize {
		case 256:
			return crypto.SHA256, nil
		case 384:
			return crypto.SHA384, nil
		case 521:
			return crypto.SHA512, nil
		default:
			return 0, fmt.Errorf("unsupported ECDSA curve size: %d bits", k.Curve.Params().BitSize)
		}
	case *rsa.PublicKey:
		return crypto.SHA256, nil
	case ed25519.PublicKey:
		return crypto.Hash(0), nil
	default:
		return 0, fmt.Errorf("unsupported key type: %T", pub)
	}
}

func digest(h crypto.Hash, data []byte) []byte {
	if h == crypto.Hash(0) {
		return data
	}
	hasher := h.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// Sign signs data. RSA keys sign with PSS, ECDSA keys produce ASN.1 DER.
func Sign(signer crypto.Signer, data []byte) ([]byte, error) {
	h, err := HashFor(signer.Public())
	if err != nil {
		return nil, err
	}

	var opts crypto.SignerOpts = h
	if _, ok := signer.Public().(*rsa.PublicKey); ok {
		opts = &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: h}
	}

	sig, err := signer.Sign(rand.Reader, digest(h, data), opts)
	if err != nil {
		return nil, fmt.Errorf("signing with %T: %w", signer.Public(), err)
	}
	return sig, nil
}

// Verify checks sig over data. RSA signatures are accepted in PSS or
// PKCS#1 v1.5 form.
func Verify(pub crypto.PublicKey, data, sig []byte) error {
	h, err := HashFor(pub)
	if err != nil {
		return err
	}
	d := digest(h, data)

	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(k, d, sig) {
			return fmt.Errorf("%w: ECDSA", ErrVerify)
		}
	case *rsa.PublicKey:
		if err := rsa.VerifyPSS(k, h, d, sig, nil); err != nil {
			if err := rsa.VerifyPKCS1v15(k, h, d, sig); err != nil {
				return fmt.Errorf("%w: RSA: %w", ErrVerify, err)
			}
		}
	case ed25519.PublicKey:
		if !ed25519.Verify(k, d, sig) {
			return fmt.Errorf("%w: Ed25519", ErrVerify)
		}
	}
	return nil
}
