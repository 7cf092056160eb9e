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

package dsse

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestPAE(t *testing.T) {
	got := PAE(TextPayloadType, []byte("\nHello World"))
	want := "DSSEv1 24 text/plain;charset=utf-8 12 \nHello World"
	if string(got) != want {
		t.Errorf("PAE() = %q, want %q", got, want)
	}
}

func TestCreateEnvelopeRoundTrip(t *testing.T) {
	payload := []byte("\nHello World")
	sig := []byte("signature-bytes")

	data, err := CreateEnvelope(TextPayloadType, payload, sig, "abc123").Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), "\"payloadType\":\"text/plain;charset=utf-8\"") {
		t.Errorf("marshaled envelope missing payloadType: %s", data)
	}

	env, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := env.ValidatePayloadType(TextPayloadType); err != nil {
		t.Errorf("ValidatePayloadType() error = %v", err)
	}
	if env.KeyID() != "abc123" {
		t.Errorf("KeyID() = %q", env.KeyID())
	}

	gotPayload, err := env.DecodePayload()
	if err != nil || !bytes.Equal(gotPayload, payload) {
		t.Errorf("DecodePayload() = %q, %v", gotPayload, err)
	}
	gotSig, err := env.DecodeSignature()
	if err != nil || !bytes.Equal(gotSig, sig) {
		t.Errorf("DecodeSignature() = %q, %v", gotSig, err)
	}
}

func TestEmptyPayload(t *testing.T) {
	env := CreateEnvelope(TextPayloadType, []byte{}, []byte("sig"), "")
	b, err := env.DecodePayload()
	if err != nil || len(b) != 0 {
		t.Errorf("DecodePayload() = %q, %v", b, err)
	}
}

func TestParseErrors(t *testing.T) {
	sig := base64.StdEncoding.EncodeToString([]byte("s"))
	tests := []struct {
		name string
		json string
	}{
		{"not json", "-----BEGIN PGP SIGNED MESSAGE-----"},
		{"no signatures", `{"payloadType":"t","payload":"","signatures":[]}`},
		{"two signatures", `{"payloadType":"t","payload":"","signatures":[{"sig":"` + sig + `"},{"sig":"` + sig + `"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.json)); !errors.Is(err, ErrMalformed) {
				t.Errorf("Parse() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	env, err := Parse([]byte(`{"payloadType":"x","payload":"%%%","signatures":[{"sig":""}]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := env.DecodePayload(); !errors.Is(err, ErrMalformed) {
		t.Errorf("DecodePayload() error = %v, want ErrMalformed", err)
	}
	if _, err := env.DecodeSignature(); !errors.Is(err, ErrMalformed) {
		t.Errorf("DecodeSignature() error = %v, want ErrMalformed", err)
	}
	if err := env.ValidatePayloadType(TextPayloadType); !errors.Is(err, ErrMalformed) {
		t.Errorf("ValidatePayloadType() error = %v, want ErrMalformed", err)
	}
}
