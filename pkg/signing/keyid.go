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
	"fmt"
	"strings"
)

// NormalizeKeyID strips an optional 0x prefix and whitespace and upper-cases
// the remaining hex digits.
func NormalizeKeyID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 2 && (id[:2] == "0x" || id[:2] == "0X") {
		id = id[2:]
	}
	return strings.ToUpper(strings.ReplaceAll(id, " ", ""))
}

// MatchKeyID reports whether want names the key with the given long key id
// or fingerprint. want may be a full fingerprint, a long (16 hex) key id or
// a short (8 hex) key id. For keys that are not OpenPGP keys the comparison
// falls back to case-insensitive equality with keyID.
func MatchKeyID(want, keyID, fingerprint string) bool {
	w := NormalizeKeyID(want)
	if w == "" {
		return false
	}
	k := NormalizeKeyID(keyID)
	f := NormalizeKeyID(fingerprint)

	switch {
	case f != "" && w == f:
		return true
	case w == k:
		return true
	case len(w) == 8 && len(k) >= 8:
		return strings.HasSuffix(k, w)
	case len(w) == 16 && len(f) >= 16:
		return strings.HasSuffix(f, w)
	}
	return false
}

// SelectKey returns the index of the key named by want, or 0 when want is
// empty.
func SelectKey(keys []KeyInfo, want string) (int, error) {
	if len(keys) == 0 {
		return -1, ErrNoKey
	}
	if want == "" {
		return 0, nil
	}
	for i, k := range keys {
		if MatchKeyID(want, k.KeyID, k.Fingerprint) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: no key matches %q", ErrNoKey, want)
}
