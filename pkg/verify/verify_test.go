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
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skyrant/printable-digital-signature/pkg/logging"
	"github.com/Skyrant/printable-digital-signature/pkg/message"
	"github.com/Skyrant/printable-digital-signature/pkg/qr"
	"github.com/Skyrant/printable-digital-signature/pkg/signing"
	"github.com/Skyrant/printable-digital-signature/pkg/signing/key"
	"github.com/Skyrant/printable-digital-signature/pkg/signing/keyring"
)

const messageText = "Hello World\n"

type fixture struct {
	dir     string
	message string
	pgpPub  string
	pemPub  string
	entity  *openpgp.Entity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{dir: t.TempDir()}

	f.message = f.write(t, "message.txt", messageText)

	pgpHome := filepath.Join(f.dir, "gnupg")
	require.NoError(t, os.Mkdir(pgpHome, 0o700))
	e, err := openpgp.NewEntity("Alice", "", "alice@example.com", &packet.Config{Algorithm: packet.PubKeyAlgoEdDSA})
	require.NoError(t, err)
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, e.SerializePrivate(w, nil))
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(filepath.Join(pgpHome, "alice.asc"), buf.Bytes(), 0o600))
	f.entity = e
	f.pgpPub = filepath.Join(f.dir, "alice.pub.asc")
	require.NoError(t, keyring.WriteArmoredPublicKeys(f.pgpPub, openpgp.EntityList{e}))

	pemHome := filepath.Join(f.dir, "keys")
	require.NoError(t, os.Mkdir(pemHome, 0o700))
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	privPEM, err := cryptoutils.MarshalPrivateKeyToPEM(priv)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(pemHome, "signing.pem"), privPEM, 0o600))
	pubPEM, err := cryptoutils.MarshalPublicKeyToPEM(priv.Public())
	require.NoError(t, err)
	f.pemPub = f.write(t, "signing.pub", string(pubPEM))

	return f
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (f *fixture) signPGP(t *testing.T, clear bool) signing.SignedMessage {
	t.Helper()
	return f.signWith(t, f.keyringSigner(t, clear), "\nHello World")
}

func (f *fixture) signPEM(t *testing.T, clear bool) signing.SignedMessage {
	t.Helper()
	return f.signWith(t, f.keySigner(t, clear), "\nHello World")
}

func (f *fixture) keyringSigner(t *testing.T, clear bool) signing.Signer {
	t.Helper()
	s, err := keyring.NewKeyringSigner(keyring.KeyringSignerOptions{
		Home: filepath.Join(f.dir, "gnupg"), Clearsign: clear, Logger: logging.Discard(),
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) keySigner(t *testing.T, clear bool) signing.Signer {
	t.Helper()
	s, err := key.NewKeySigner(key.KeySignerOptions{
		Home: filepath.Join(f.dir, "keys"), Clearsign: clear, Logger: logging.Discard(),
	})
	require.NoError(t, err)
	return s
}

func (f *fixture) signWith(t *testing.T, s signing.Signer, text string) signing.SignedMessage {
	t.Helper()
	out, err := s.Sign(context.Background(), text)
	require.NoError(t, err)
	return out
}

func run(t *testing.T, opts Options) (Result, error) {
	t.Helper()
	opts.Logger = logging.Discard()
	v, err := NewVerifier(opts)
	require.NoError(t, err)
	return v.Verify(context.Background())
}

func TestDetect(t *testing.T) {
	assert.Equal(t, FormatClearsign, Detect("-----BEGIN PGP SIGNED MESSAGE-----\n"))
	assert.Equal(t, FormatDetachedPGP, Detect("\n-----BEGIN PGP SIGNATURE-----\n"))
	assert.Equal(t, FormatDSSE, Detect(`{"payloadType":"x"}`))
	assert.Equal(t, FormatDetachedDSSE, Detect("MEUCIQDx+/=\n"))
	assert.Equal(t, FormatUnknown, Detect("hello world"))
	assert.Equal(t, FormatUnknown, Detect(""))
}

func TestVerifyClearsigned(t *testing.T) {
	f := newFixture(t)
	signed := f.write(t, "signed.asc", f.signPGP(t, true).Text)

	res, err := run(t, Options{SignedPath: signed, KeyPath: f.pgpPub})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, "\nHello World", res.Content)
	assert.Equal(t, keyring.EntityInfo(f.entity).KeyID, res.SignerID)
	assert.Equal(t, FormatClearsign, res.Format)

	res, err = run(t, Options{SignedPath: signed, KeyPath: f.pgpPub, MessagePath: f.message})
	require.NoError(t, err)
	assert.True(t, res.Verified)

	// verification is repeatable
	_, err = run(t, Options{SignedPath: signed, KeyPath: f.pgpPub})
	assert.NoError(t, err)
}

func TestVerifyClearsignedFromQR(t *testing.T) {
	f := newFixture(t)
	code, err := qr.Encode(f.signPGP(t, true).Text, qr.Options{})
	require.NoError(t, err)
	png := filepath.Join(f.dir, "qrcode.png")
	require.NoError(t, code.WriteFile(png))

	res, err := run(t, Options{QRPath: png, KeyPath: f.pgpPub, MessagePath: f.message})
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, "\nHello World", res.Content)
}

func TestVerifyClearsignedContentMismatch(t *testing.T) {
	f := newFixture(t)
	signed := f.write(t, "signed.asc", f.signPGP(t, true).Text)
	other := f.write(t, "other.txt", "Goodbye World\n")

	res, err := run(t, Options{SignedPath: signed, KeyPath: f.pgpPub, MessagePath: other})
	assert.True(t, IsType(err, ErrTypeContentMismatch), "err = %v", err)
	assert.False(t, res.Verified)
}

func TestVerifyClearsignedTampered(t *testing.T) {
	f := newFixture(t)
	tampered := strings.Replace(f.signPGP(t, true).Text, "Hello World", "Hello Wörld", 1)
	signed := f.write(t, "signed.asc", tampered)

	_, err := run(t, Options{SignedPath: signed, KeyPath: f.pgpPub})
	assert.True(t, IsType(err, ErrTypeSignatureInvalid), "err = %v", err)
}

func TestVerifyClearsignedWrongKey(t *testing.T) {
	f := newFixture(t)
	signed := f.write(t, "signed.asc", f.signPGP(t, true).Text)

	other, err := openpgp.NewEntity("Mallory", "", "mallory@example.com", &packet.Config{Algorithm: packet.PubKeyAlgoEdDSA})
	require.NoError(t, err)
	otherPub := filepath.Join(f.dir, "mallory.asc")
	require.NoError(t, keyring.WriteArmoredPublicKeys(otherPub, openpgp.EntityList{other}))

	_, err = run(t, Options{SignedPath: signed, KeyPath: otherPub})
	assert.True(t, IsType(err, ErrTypeSignatureInvalid), "err = %v", err)

	_, err = run(t, Options{SignedPath: signed, KeyPath: f.pemPub})
	assert.True(t, IsType(err, ErrTypeConfiguration), "err = %v", err)
}

func TestVerifyDetachedPGP(t *testing.T) {
	f := newFixture(t)
	sig := f.write(t, "signed.sig", f.signPGP(t, false).Text)

	res, err := run(t, Options{SignedPath: sig, KeyPath: f.pgpPub, MessagePath: f.message})
	require.NoError(t, err)
	assert.Equal(t, FormatDetachedPGP, res.Format)
	assert.Equal(t, "\nHello World", res.Content)

	_, err = run(t, Options{SignedPath: sig, KeyPath: f.pgpPub})
	assert.True(t, IsType(err, ErrTypeConfiguration), "err = %v", err)

	other := f.write(t, "other.txt", "Goodbye")
	_, err = run(t, Options{SignedPath: sig, KeyPath: f.pgpPub, MessagePath: other})
	assert.True(t, IsType(err, ErrTypeSignatureInvalid), "err = %v", err)
}

func TestVerifyEnvelope(t *testing.T) {
	f := newFixture(t)
	signed := f.write(t, "signed.json", f.signPEM(t, true).Text)

	res, err := run(t, Options{SignedPath: signed, KeyPath: f.pemPub, MessagePath: f.message})
	require.NoError(t, err)
	assert.Equal(t, FormatDSSE, res.Format)
	assert.Equal(t, "\nHello World", res.Content)
	assert.Len(t, res.SignerID, 64)

	_, err = run(t, Options{SignedPath: signed, KeyPath: f.pgpPub})
	assert.True(t, IsType(err, ErrTypeConfiguration), "err = %v", err)
}

func TestVerifyEnvelopeWrongKey(t *testing.T) {
	f := newFixture(t)
	signed := f.write(t, "signed.json", f.signPEM(t, true).Text)

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pubPEM, err := cryptoutils.MarshalPublicKeyToPEM(priv.Public())
	require.NoError(t, err)
	otherPub := f.write(t, "other.pub", string(pubPEM))

	_, err = run(t, Options{SignedPath: signed, KeyPath: otherPub})
	assert.True(t, IsType(err, ErrTypeSignatureInvalid), "err = %v", err)
}

func TestVerifyDetachedDSSE(t *testing.T) {
	f := newFixture(t)
	sig := f.write(t, "signed.b64", f.signPEM(t, false).Text)

	res, err := run(t, Options{SignedPath: sig, KeyPath: f.pemPub, MessagePath: f.message})
	require.NoError(t, err)
	assert.Equal(t, FormatDetachedDSSE, res.Format)

	other := f.write(t, "other.txt", "Goodbye")
	_, err = run(t, Options{SignedPath: sig, KeyPath: f.pemPub, MessagePath: other})
	assert.True(t, IsType(err, ErrTypeSignatureInvalid), "err = %v", err)
}

func TestVerifyUnrecognized(t *testing.T) {
	f := newFixture(t)
	signed := f.write(t, "signed.txt", "just some text")

	_, err := run(t, Options{SignedPath: signed, KeyPath: f.pgpPub})
	assert.True(t, IsType(err, ErrTypeInvalidFormat), "err = %v", err)
}

func TestNewVerifierOptions(t *testing.T) {
	f := newFixture(t)

	_, err := NewVerifier(Options{KeyPath: f.pgpPub})
	assert.True(t, IsType(err, ErrTypeConfiguration))

	_, err = NewVerifier(Options{SignedPath: f.message, QRPath: f.message, KeyPath: f.pgpPub})
	assert.True(t, IsType(err, ErrTypeConfiguration))

	_, err = NewVerifier(Options{SignedPath: filepath.Join(f.dir, "missing"), KeyPath: f.pgpPub})
	assert.True(t, IsType(err, ErrTypeFileNotFound))

	_, err = NewVerifier(Options{SignedPath: f.message})
	assert.True(t, IsType(err, ErrTypeFileNotFound))
}

func TestVerificationErrorMessage(t *testing.T) {
	err := NewVerificationErrorWithPath(ErrTypeIO, "/tmp/x", "read failed", os.ErrPermission)
	assert.Equal(t, "IOError: read failed (path: /tmp/x): permission denied", err.Error())
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, "InvalidSignature: bad", NewVerificationError(ErrTypeSignatureInvalid, "bad", nil).Error())
}

func TestVerifyNewlineOnlyMessages(t *testing.T) {
	f := newFixture(t)

	signers := []struct {
		name   string
		signer func(*testing.T, bool) signing.Signer
		key    string
	}{
		{"keyring", f.keyringSigner, f.pgpPub},
		{"key", f.keySigner, f.pemPub},
	}
	messages := map[string]string{
		"empty":    "",
		"newlines": "\n\n\n",
		"crlf":     "\r\n",
	}

	for _, sg := range signers {
		for _, clear := range []bool{true, false} {
			for name, text := range messages {
				t.Run(fmt.Sprintf("%s/clearsign=%v/%s", sg.name, clear, name), func(t *testing.T) {
					msgPath := f.write(t, "msg-"+name+".txt", text)
					normalized := message.Normalize(text)
					require.Equal(t, "\n", normalized)

					signed := f.signWith(t, sg.signer(t, clear), normalized)
					code, err := qr.Encode(signed.Text, qr.Options{})
					require.NoError(t, err)
					png := filepath.Join(t.TempDir(), "qrcode.png")
					require.NoError(t, code.WriteFile(png))

					res, err := run(t, Options{QRPath: png, KeyPath: sg.key, MessagePath: msgPath})
					require.NoError(t, err)
					assert.True(t, res.Verified)
					assert.Equal(t, "\n", res.Content)
				})
			}
		}
	}
}

func TestVerifyClearsignedEmptyRejectsOtherMessage(t *testing.T) {
	f := newFixture(t)
	signed := f.write(t, "signed.asc", f.signWith(t, f.keyringSigner(t, true), "\n").Text)

	res, err := run(t, Options{SignedPath: signed, KeyPath: f.pgpPub, MessagePath: f.message})
	assert.True(t, IsType(err, ErrTypeContentMismatch), "err = %v", err)
	assert.False(t, res.Verified)
}
