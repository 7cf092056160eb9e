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

package gpg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Skyrant/printable-digital-signature/pkg/signing"
)

// Column indexes of gpg's --with-colons output.
const (
	colType     = 0
	colValidity = 1
	colAlgo     = 3
	colKeyID    = 4
	colCreated  = 5
	colUserID   = 9
)

var algorithms = map[string]string{
	"1":  "rsa",
	"2":  "rsa",
	"3":  "rsa",
	"16": "elgamal",
	"17": "dsa",
	"18": "ecdh",
	"19": "ecdsa",
	"22": "eddsa",
}

// ParseSecretKeys parses "gpg --list-secret-keys --with-colons" output.
// Revoked, expired and invalid keys are dropped, as are revoked or expired
// user ids.
func ParseSecretKeys(r io.Reader) ([]signing.KeyInfo, error) {
	var (
		keys    []signing.KeyInfo
		current *signing.KeyInfo
		skip    bool
		fprSeen bool
	)
	flush := func() {
		if current != nil && !skip {
			keys = append(keys, *current)
		}
		current = nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Split(sc.Text(), ":")
		if len(fields) <= colType {
			continue
		}
		switch fields[colType] {
		case "sec":
			flush()
			current = &signing.KeyInfo{
				KeyID:     field(fields, colKeyID),
				Algorithm: algorithms[field(fields, colAlgo)],
				Created:   parseTime(field(fields, colCreated)),
			}
			skip = unusable(field(fields, colValidity))
			fprSeen = false
		case "ssb", "sub":
			// Subkey fingerprints follow; only the primary's is kept.
			fprSeen = true
		case "fpr":
			if current != nil && !fprSeen {
				current.Fingerprint = field(fields, colUserID)
				fprSeen = true
			}
		case "uid":
			if current != nil && !unusable(field(fields, colValidity)) {
				current.UIDs = append(current.UIDs, unescape(field(fields, colUserID)))
			}
		}
	}
	flush()
	return keys, sc.Err()
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func unusable(validity string) bool {
	switch validity {
	case "r", "e", "i", "d":
		return true
	}
	return false
}

// parseTime accepts seconds since the epoch or the ISO 8601 basic form gpg
// emits with --fixed-list-mode disabled.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	if t, err := time.Parse("20060102T150405", s); err == nil {
		return t
	}
	return time.Time{}
}

// unescape decodes the \xHH escapes gpg applies to colon-listed strings.
func unescape(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && s[i+1] == 'x' {
			if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
