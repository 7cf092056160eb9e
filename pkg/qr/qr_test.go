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

package qr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signedSample = `-----BEGIN PGP SIGNED MESSAGE-----
Hash: SHA512


Hello World
-----BEGIN PGP SIGNATURE-----

wnUEARYKACcFAmZ3vQkJkK3P0nSgm2X2FiEExF5nWcRfWBbzN3ZtrQ9n2Y7m1Z8A
ALr8AQC8mT5w3W+Cx7E1o1rR0k4m6F4m0c3h5I6mIl9gkQ6qXAD/fDbg7nCjv9cl
v7k3fZ5q3S1cOe5eJ6dPZ3Y2h9p7nQY=
=AbCd
-----END PGP SIGNATURE-----
`

func TestEncodeDecodeRoundTrip(t *testing.T) {
	code, err := Encode(signedSample, Options{})
	require.NoError(t, err)

	assert.Equal(t, Low, code.Level)
	assert.Greater(t, code.Version, 0)
	assert.Equal(t, 17+4*code.Version, code.Modules)
	assert.Empty(t, code.Path)

	got, err := DecodePNG(code.PNG)
	require.NoError(t, err)
	assert.Equal(t, signedSample, got)
}

func TestEncodePreservesCase(t *testing.T) {
	code, err := Encode("MiXeD case Payload", Options{})
	require.NoError(t, err)

	got, err := DecodePNG(code.PNG)
	require.NoError(t, err)
	assert.Equal(t, "MiXeD case Payload", got)
}

func TestEncodeModulePixels(t *testing.T) {
	small, err := Encode("abc", Options{ModulePixels: 2})
	require.NoError(t, err)
	large, err := Encode("abc", Options{ModulePixels: 8})
	require.NoError(t, err)

	smallImg, err := small.Image()
	require.NoError(t, err)
	largeImg, err := large.Image()
	require.NoError(t, err)
	assert.Equal(t, smallImg.Bounds().Dx()*4, largeImg.Bounds().Dx())
}

func TestEncodeAutoLevel(t *testing.T) {
	code, err := Encode("short", Options{AutoLevel: true})
	require.NoError(t, err)
	assert.Equal(t, Highest, code.Level)

	// Fits at Low only: more than the version 40 Medium byte capacity.
	big := strings.Repeat("x", 2500)
	code, err = Encode(big, Options{AutoLevel: true})
	require.NoError(t, err)
	assert.Equal(t, Low, code.Level)
	assert.Equal(t, 40, code.Version)
}

func TestEncodeTooLarge(t *testing.T) {
	_, err := Encode(strings.Repeat("x", 3000), Options{})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = Encode(strings.Repeat("x", 1500), Options{Level: Highest})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestEncodeEmpty(t *testing.T) {
	_, err := Encode("", Options{})
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestWriteFileAndDecodeFile(t *testing.T) {
	code, err := Encode("\nHello World", Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "qrcode.png")
	require.NoError(t, code.WriteFile(path))
	assert.Equal(t, path, code.Path)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, code.PNG, onDisk)

	got, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\nHello World", got)
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodePNG([]byte("not a png"))
	assert.Error(t, err)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"":        Low,
		"low":     Low,
		"Medium":  Medium,
		"HIGH":    High,
		"highest": Highest,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("extreme")
	assert.Error(t, err)
}
