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

// Package dsse builds and parses DSSE envelopes carrying a signed text
// message.
package dsse

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	dsse_lib "github.com/secure-systems-lab/go-securesystemslib/dsse"
)

// TextPayloadType is the payload type of a signed text message.
const TextPayloadType = "text/plain;charset=utf-8"

// ErrMalformed is wrapped by every parse and validation failure.
var ErrMalformed = errors.New("malformed DSSE envelope")

// Envelope wraps a single-signature DSSE envelope.
type Envelope struct {
	raw *dsse_lib.Envelope
}

// PAE returns the pre-authentication encoding that is actually signed.
func PAE(payloadType string, payload []byte) []byte {
	return dsse_lib.PAE(payloadType, payload)
}

// CreateEnvelope assembles an envelope from the raw payload and signature.
func CreateEnvelope(payloadType string, payload, signature []byte, keyID string) *Envelope {
	return &Envelope{raw: &dsse_lib.Envelope{
		PayloadType: payloadType,
		Payload:     base64.StdEncoding.EncodeToString(payload),
		Signatures: []dsse_lib.Signature{{
			KeyID: keyID,
			Sig:   base64.StdEncoding.EncodeToString(signature),
		}},
	}}
}

// Parse decodes the JSON form of an envelope and checks it carries exactly
// one signature.
func Parse(data []byte) (*Envelope, error) {
	var raw dsse_lib.Envelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	e := &Envelope{raw: &raw}
	if err := e.ValidateSignatureCount(); err != nil {
		return nil, err
	}
	return e, nil
}

// Marshal returns the compact JSON form of the envelope.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e.raw)
}

// ValidateSignatureCount rejects envelopes without exactly one signature.
func (e *Envelope) ValidateSignatureCount() error {
	switch n := len(e.raw.Signatures); {
	case n == 0:
		return fmt.Errorf("%w: no signatures found", ErrMalformed)
	case n > 1:
		return fmt.Errorf("%w: multiple signatures not supported", ErrMalformed)
	}
	return nil
}

// ValidatePayloadType checks the payload type.
func (e *Envelope) ValidatePayloadType(expectedType string) error {
	if e.raw.PayloadType != expectedType {
		return fmt.Errorf("%w: expected payload type %s, got %s",
			ErrMalformed, expectedType, e.raw.PayloadType)
	}
	return nil
}

// DecodePayload returns the raw payload bytes.
func (e *Envelope) DecodePayload() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(e.raw.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrMalformed, err)
	}
	return b, nil
}

// DecodeSignature returns the raw bytes of the only signature.
func (e *Envelope) DecodeSignature() ([]byte, error) {
	if err := e.ValidateSignatureCount(); err != nil {
		return nil, err
	}
	sig := e.raw.Signatures[0].Sig
	if sig == "" {
		return nil, fmt.Errorf("%w: signature is empty", ErrMalformed)
	}
	b, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %w", ErrMalformed, err)
	}
	return b, nil
}

// KeyID returns the key id of the only signature.
func (e *Envelope) KeyID() string {
	if len(e.raw.Signatures) == 0 {
		return ""
	}
	return e.raw.Signatures[0].KeyID
}

// PayloadType returns the payload type.
func (e *Envelope) PayloadType() string {
	return e.raw.PayloadType
}
