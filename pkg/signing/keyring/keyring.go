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

package keyring

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"

	"github.com/Skyrant/printable-digital-signature/pkg/logging"
)

// ErrNoKeyData is returned by ReadKeyFile when a file holds no OpenPGP keys.
var ErrNoKeyData = errors.New("no OpenPGP key data")

// keyFile reports whether name is read as part of the key store.
func keyFile(name string) bool {
	if name == "secring.gpg" {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".asc", ".gpg", ".key":
		return true
	}
	return false
}

// ReadKeyFile reads an armored or binary OpenPGP key file.
func ReadKeyFile(path string) (openpgp.EntityList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseKeys(data)
}

// ParseKeys parses armored or binary OpenPGP key material.
func ParseKeys(data []byte) (openpgp.EntityList, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrNoKeyData
	}
	var (
		list openpgp.EntityList
		err  error
	)
	if bytes.HasPrefix(trimmed, []byte("-----BEGIN")) {
		list, err = openpgp.ReadArmoredKeyRing(bytes.NewReader(trimmed))
	} else {
		list, err = openpgp.ReadKeyRing(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoKeyData, err)
	}
	if len(list) == 0 {
		return nil, ErrNoKeyData
	}
	return list, nil
}

// ReadKeyStore reads every key file in dir in lexical order and returns
// the entities that carry a private key. Unreadable files are logged and
// skipped.
func ReadKeyStore(dir string, logger logging.Logger) (openpgp.EntityList, error) {
	logger = logging.EnsureLogger(logger)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && keyFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out openpgp.EntityList
	for _, name := range names {
		path := filepath.Join(dir, name)
		list, err := ReadKeyFile(path)
		if err != nil {
			logger.Debug("skipping %s: %v", path, err)
			continue
		}
		for _, e := range list {
			if e.PrivateKey == nil {
				continue
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// WriteArmoredPublicKeys writes the public part of entities to path as an
// armored key block, the format verification reads.
func WriteArmoredPublicKeys(path string, entities openpgp.EntityList) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w, err := armor.Encode(f, openpgp.PublicKeyType, nil)
	if err != nil {
		return err
	}
	for _, e := range entities {
		if err := e.Serialize(w); err != nil {
			return fmt.Errorf("serializing %X: %w", e.PrimaryKey.KeyId, err)
		}
	}
	return w.Close()
}
