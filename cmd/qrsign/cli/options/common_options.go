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
	"github.com/spf13/cobra"
)

// FlagAdder is implemented by any flag group that can register itself to a cobra command.
type FlagAdder interface {
	AddFlags(cmd *cobra.Command)
}

// Binding ties a flag name to a dotted config key.
type Binding struct {
	Flag string
	Key  string
}

// Binder is a flag group whose flags override configuration keys.
type Binder interface {
	FlagAdder
	Bindings() []Binding
}

// SigningFlags select and configure the signer.
type SigningFlags struct {
	Backend    string
	Home       string
	KeyID      string
	Passphrase string
	UseAgent   bool
	Clearsign  bool
	GPGBinary  string
}

// AddFlags adds signing flags to the cobra command.
func (o *SigningFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Backend, "backend", "gpg", "Signing backend: gpg, keyring or key.")
	cmd.Flags().StringVar(&o.Home, "homedir", "~/.gnupg", "Key store directory.")
	_ = cmd.MarkFlagDirname("homedir")
	cmd.Flags().StringVarP(&o.KeyID, "local-user", "u", "", "Key id or fingerprint to sign with. Defaults to the backend's default key.")
	cmd.Flags().StringVar(&o.Passphrase, "passphrase", "", "Passphrase for the private key when no agent is used.")
	cmd.Flags().BoolVar(&o.UseAgent, "use-agent", true, "Let gpg-agent handle the passphrase (gpg backend only).")
	cmd.Flags().BoolVar(&o.Clearsign, "clearsign", true, "Embed the message in the signature. Use --clearsign=false for a detached signature.")
	cmd.Flags().StringVar(&o.GPGBinary, "gpg-binary", "gpg", "gpg executable used by the gpg backend.")
}

// Bindings implements Binder.
func (o *SigningFlags) Bindings() []Binding {
	return []Binding{
		{Flag: "backend", Key: "signing.backend"},
		{Flag: "homedir", Key: "signing.home"},
		{Flag: "local-user", Key: "signing.key_id"},
		{Flag: "passphrase", Key: "signing.passphrase"},
		{Flag: "use-agent", Key: "signing.use_agent"},
		{Flag: "clearsign", Key: "signing.clearsign"},
		{Flag: "gpg-binary", Key: "signing.gpg_binary"},
	}
}

// AddAllFlags is a helper function to register multiple flag groups at once.
func AddAllFlags(cmd *cobra.Command, flagGroups ...FlagAdder) {
	for _, fg := range flagGroups {
		fg.AddFlags(cmd)
	}
}
