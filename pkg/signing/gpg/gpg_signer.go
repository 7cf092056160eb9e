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

// Package gpg signs messages by running the gpg binary against a GnuPG home
// directory. Passphrases are handled by gpg-agent unless the agent is
// disabled, in which case the passphrase is passed over stdin in loopback
// pinentry mode.
package gpg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Skyrant/printable-digital-signature/pkg/logging"
	"github.com/Skyrant/printable-digital-signature/pkg/signing"
	"github.com/Skyrant/printable-digital-signature/pkg/utils"
)

// Backend is the backend name reported in SignedMessage.
const Backend = "gpg"

var _ signing.Signer = (*GPGSigner)(nil)

// GPGSignerOptions configures a GPGSigner.
type GPGSignerOptions struct {
	// Binary is the gpg executable, looked up in PATH when not absolute.
	Binary     string
	Home       string
	KeyID      string
	Passphrase string
	UseAgent   bool
	Clearsign  bool
	Logger     logging.Logger
}

// GPGSigner implements signing.Signer by running gpg.
type GPGSigner struct {
	opts   GPGSignerOptions
	binary string
	logger logging.Logger
}

// NewGPGSigner checks the key store and resolves the gpg binary.
func NewGPGSigner(opts GPGSignerOptions) (*GPGSigner, error) {
	if err := signing.CheckKeyStore(opts.Home); err != nil {
		return nil, err
	}
	if opts.Binary == "" {
		opts.Binary = "gpg"
	}
	binary, err := exec.LookPath(opts.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", signing.ErrKeyStore, err)
	}

	logger := logging.Component(opts.Logger, "gpg-signer")
	logger.Info("Successfully set GPG directory %s", opts.Home)
	return &GPGSigner{opts: opts, binary: binary, logger: logger}, nil
}

func (s *GPGSigner) baseArgs() []string {
	return []string{"--homedir", s.opts.Home, "--no-tty"}
}

// ListKeys runs gpg --list-secret-keys --with-colons.
func (s *GPGSigner) ListKeys(ctx context.Context) ([]signing.KeyInfo, error) {
	args := append(s.baseArgs(), "--batch", "--with-colons", "--with-fingerprint", "--fixed-list-mode", "--list-secret-keys")
	stdout, stderr, err := s.run(ctx, args, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: listing keys: %w: %s", signing.ErrKeyStore, err, strings.TrimSpace(stderr))
	}
	return ParseSecretKeys(bytes.NewReader(stdout))
}

// Sign writes text to a temporary file and signs it with gpg.
func (s *GPGSigner) Sign(ctx context.Context, text string) (signing.SignedMessage, error) {
	tmp, err := os.CreateTemp("", "qrsign-message-*.txt")
	if err != nil {
		return signing.SignedMessage{}, fmt.Errorf("staging message: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return signing.SignedMessage{}, fmt.Errorf("staging message: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return signing.SignedMessage{}, fmt.Errorf("staging message: %w", err)
	}

	args, stdin := s.signArgs(filepath.Clean(tmp.Name()))
	s.logger.Debug("running %s %s", s.binary, strings.Join(args, " "))
	if stdin != nil {
		s.logger.Debug("passphrase on stdin: %s", utils.MaskSecret(s.opts.Passphrase))
	}

	stdout, stderr, err := s.run(ctx, args, stdin)
	if err != nil {
		if ctx.Err() != nil {
			return signing.SignedMessage{}, ctx.Err()
		}
		return signing.SignedMessage{}, fmt.Errorf("%w: %w: %s", signing.ErrSigningRejected, err, strings.TrimSpace(stderr))
	}
	if len(bytes.TrimSpace(stdout)) == 0 {
		return signing.SignedMessage{}, signing.ErrEmptySignature
	}

	return signing.SignedMessage{
		Text:    string(stdout),
		Mode:    signing.ModeFor(s.opts.Clearsign),
		KeyID:   s.opts.KeyID,
		Backend: Backend,
	}, nil
}

func (s *GPGSigner) signArgs(input string) ([]string, []byte) {
	args := s.baseArgs()
	var stdin []byte
	if !s.opts.UseAgent {
		args = append(args, "--batch", "--pinentry-mode", "loopback", "--passphrase-fd", "0")
		stdin = []byte(s.opts.Passphrase + "\n")
	}
	if s.opts.KeyID != "" {
		args = append(args, "--local-user", s.opts.KeyID)
	}
	if s.opts.Clearsign {
		args = append(args, "--clearsign")
	} else {
		args = append(args, "--detach-sign", "--armor")
	}
	args = append(args, "--output", "-", input)
	return args, stdin
}

func (s *GPGSigner) run(ctx context.Context, args []string, stdin []byte) ([]byte, string, error) {
	cmd := exec.CommandContext(ctx, s.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		err = fmt.Errorf("gpg exited with status %d", exitErr.ExitCode())
	}
	return stdout.Bytes(), stderr.String(), err
}
