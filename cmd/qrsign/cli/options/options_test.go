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

package options

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skyrant/printable-digital-signature/pkg/config"
)

func newCommand(t *testing.T, args ...string) (*cobra.Command, *RootOptions) {
	t.Helper()
	ro := &RootOptions{}
	so := &SignOptions{}
	cmd := &cobra.Command{Use: "test"}
	ro.AddFlags(cmd)
	so.AddFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, ro
}

func TestLoadConfigDefaults(t *testing.T) {
	cmd, ro := newCommand(t)

	cfg, err := ro.LoadConfig(cmd.Flags(), &SignOptions{})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	cmd, ro := newCommand(t,
		"--backend", "keyring", "--use-agent=false", "-u", "0xABCD1234",
		"--clearsign=false", "--title", "Letter", "--qr-level", "high",
		"-o", "letter.pdf", "--log-format", "json")

	cfg, err := ro.LoadConfig(cmd.Flags(), &SignOptions{})
	require.NoError(t, err)
	assert.Equal(t, config.BackendKeyring, cfg.Signing.Backend)
	assert.False(t, cfg.Signing.UseAgent)
	assert.False(t, cfg.Signing.Clearsign)
	assert.Equal(t, "0xABCD1234", cfg.Signing.KeyID)
	assert.Equal(t, "Letter", cfg.Document.Title)
	assert.Equal(t, "high", cfg.QR.Level)
	assert.Equal(t, "letter.pdf", cfg.Output.PDF)
	assert.Equal(t, "json", cfg.Log.Format)
	// unset flags do not override defaults
	assert.Equal(t, config.DefaultHome, cfg.Signing.Home)
}

func TestLoadConfigEnvironmentBelowFlags(t *testing.T) {
	t.Setenv("QRSIGN_DOCUMENT_TITLE", "from env")
	t.Setenv("QRSIGN_SIGNING_KEY_ID", "FEEDBEEF")

	cmd, ro := newCommand(t, "--title", "from flag")
	cfg, err := ro.LoadConfig(cmd.Flags(), &SignOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from flag", cfg.Document.Title)
	assert.Equal(t, "FEEDBEEF", cfg.Signing.KeyID)
}

func TestValidateLog(t *testing.T) {
	assert.NoError(t, ValidateLog(config.LogConfig{Level: "DEBUG", Format: "json"}))
	assert.ErrorIs(t, ValidateLog(config.LogConfig{Level: "loud", Format: "text"}), config.ErrInvalidConfig)
	assert.ErrorIs(t, ValidateLog(config.LogConfig{Level: "info", Format: "xml"}), config.ErrInvalidConfig)
}

func TestVerifyOptionsToStandardOptions(t *testing.T) {
	o := &VerifyOptions{QRPath: "qr.png", MessagePath: "m.txt", KeyPath: "k.asc"}
	opts := o.ToStandardOptions("signed.asc")
	assert.Equal(t, "signed.asc", opts.SignedPath)
	assert.Equal(t, "qr.png", opts.QRPath)
	assert.Equal(t, "m.txt", opts.MessagePath)
	assert.Equal(t, "k.asc", opts.KeyPath)
}
