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

// Package report prints the operator-facing output: the keys found in the
// key store and, once everything else succeeded, the signed message.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Skyrant/printable-digital-signature/pkg/signing"
)

// Separator precedes every listed key.
const Separator = "----------------------------------"

// PrintKeys writes the key list.
func PrintKeys(w io.Writer, keys []signing.KeyInfo) error {
	var b strings.Builder
	b.WriteString("valid keys with key id and emails:\n")
	for _, k := range keys {
		b.WriteString(Separator + "\n")
		fmt.Fprintf(&b, "key id: %s\n", k.KeyID)
		for _, uid := range k.UIDs {
			b.WriteString(uid + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// PrintSigned writes the signed message verbatim after three blank lines.
func PrintSigned(w io.Writer, signed signing.SignedMessage) error {
	_, err := fmt.Fprintf(w, "\n\n\nSigned Message:\n%s", signed.Text)
	if err == nil && !strings.HasSuffix(signed.Text, "\n") {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
