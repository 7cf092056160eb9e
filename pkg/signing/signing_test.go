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
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

func TestSignedMessageValid(t *testing.T) {
	if (SignedMessage{}).Valid() {
		t.Error("empty SignedMessage reported valid")
	}
	if !(SignedMessage{Text: "x"}).Valid() {
		t.Error("non-empty SignedMessage reported invalid")
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor(true) != ModeClearsign || ModeFor(false) != ModeDetached {
		t.Error("ModeFor mapping is wrong")
	}
	if ModeClearsign.String() != "clearsign" || ModeDetached.String() != "detached" {
		t.Error("Mode.String mapping is wrong")
	}
}

func TestMatchKeyID(t *testing.T) {
	const (
		fpr   = "0123456789ABCDEF0123456789ABCDEFDEADBEEF"
		keyID = "89ABCDEFDEADBEEF"
	)

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"fingerprint", fpr, true},
		{"fingerprint lower case", "0123456789abcdef0123456789abcdefdeadbeef", true},
		{"long id", keyID, true},
		{"long id with prefix", "0x89abcdefdeadbeef", true},
		{"short id", "DEADBEEF", true},
		{"short id with prefix", "0xdeadbeef", true},
		{"other short id", "CAFEBABE", false},
		{"prefix of fingerprint", "01234567", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchKeyID(tt.want, keyID, fpr); got != tt.ok {
				t.Errorf("MatchKeyID(%q) = %v, want %v", tt.want, got, tt.ok)
			}
		})
	}
}

func TestMatchKeyIDPlainName(t *testing.T) {
	if !MatchKeyID("Signing", "signing", "") {
		t.Error("file-named key id did not match case-insensitively")
	}
}

func TestSelectKey(t *testing.T) {
	keys := []KeyInfo{
		{KeyID: "1111111111111111"},
		{KeyID: "2222222222222222"},
	}

	if i, err := SelectKey(keys, ""); err != nil || i != 0 {
		t.Errorf("SelectKey default = %d, %v", i, err)
	}
	if i, err := SelectKey(keys, "22222222"); err != nil || i != 1 {
		t.Errorf("SelectKey short id = %d, %v", i, err)
	}
	if _, err := SelectKey(keys, "33333333"); !errors.Is(err, ErrNoKey) {
		t.Errorf("SelectKey unknown id error = %v, want ErrNoKey", err)
	}
	if _, err := SelectKey(nil, ""); !errors.Is(err, ErrNoKey) {
		t.Errorf("SelectKey empty store error = %v, want ErrNoKey", err)
	}
}

func TestCheckKeyStore(t *testing.T) {
	dir := t.TempDir()
	if err := CheckKeyStore(dir); err != nil {
		t.Errorf("CheckKeyStore(dir) = %v", err)
	}

	if err := CheckKeyStore(filepath.Join(dir, "missing")); !errors.Is(err, ErrKeyStore) {
		t.Errorf("missing dir error = %v, want ErrKeyStore", err)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := CheckKeyStore(file); !errors.Is(err, ErrKeyStore) {
		t.Errorf("file error = %v, want ErrKeyStore", err)
	}
}

func TestKeyAlgorithm(t *testing.T) {
	ec, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	edPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	if alg, err := KeyAlgorithm(ec.Public()); err != nil || alg != "ECDSA-P-256" {
		t.Errorf("KeyAlgorithm(ecdsa) = %q, %v", alg, err)
	}
	if alg, err := KeyAlgorithm(edPub); err != nil || alg != "ED25519" {
		t.Errorf("KeyAlgorithm(ed25519) = %q, %v", alg, err)
	}
	if _, err := KeyAlgorithm("nope"); err == nil {
		t.Error("KeyAlgorithm accepted an unsupported key")
	}
}

func TestParsePrivateKeyPEM(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	privPEM, err := cryptoutils.MarshalPrivateKeyToPEM(priv)
	if err != nil {
		t.Fatal(err)
	}

	signer, err := ParsePrivateKeyPEM(privPEM, "")
	if err != nil {
		t.Fatalf("ParsePrivateKeyPEM() error = %v", err)
	}
	if !priv.PublicKey.Equal(signer.Public()) {
		t.Error("parsed key does not match the generated key")
	}

	h1, err := ComputeKeyHint(priv.Public())
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := ComputeKeyHint(signer.Public())
	if h1 != h2 || len(h1) != 64 {
		t.Errorf("key hints differ or have wrong length: %q %q", h1, h2)
	}

	if _, err := ParsePrivateKeyPEM([]byte("not pem"), ""); err == nil {
		t.Error("expected error for garbage PEM")
	}
}
