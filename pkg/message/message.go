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

// Package message loads the text to be signed and derives the normalized
// form that is actually covered by the signature.
package message

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Message is the text read from the input file. It is never modified after
// Load; only the normalized copy is derived from it.
type Message struct {
	Path string
	raw  []byte
}

// Load reads the whole file at path.
func Load(path string) (*Message, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading message %s: %w", path, err)
	}
	return &Message{Path: path, raw: raw}, nil
}

// Bytes returns a copy of the content as read.
func (m *Message) Bytes() []byte {
	return append([]byte(nil), m.raw...)
}

// Text returns the content as read.
func (m *Message) Text() string {
	return string(m.raw)
}

// Len returns the size of the content in bytes.
func (m *Message) Len() int {
	return len(m.raw)
}

// ValidUTF8 reports whether the content is valid UTF-8. Other encodings are
// signed as-is but may render incorrectly in the document.
func (m *Message) ValidUTF8() bool {
	return utf8.Valid(m.raw)
}

// Normalized returns the content that gets signed.
func (m *Message) Normalized() string {
	return Normalize(m.Text())
}

var lineTerminators = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")

// Normalize removes every line terminator (CRLF, LF, CR) from text and
// prepends a single newline. Only the content, not its line layout, is
// covered by the signature; the leading newline keeps the signed input
// non-empty for the signing tools, so an empty message normalizes to "\n".
func Normalize(text string) string {
	return "\n" + lineTerminators.Replace(text)
}
