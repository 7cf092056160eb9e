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

	"github.com/Skyrant/printable-digital-signature/pkg/verify"
)

// VerifyOptions are the flags of the verify command.
type VerifyOptions struct {
	QRPath      string // --qr
	MessagePath string // --message
	KeyPath     string // --key (required)
}

var _ FlagAdder = (*VerifyOptions)(nil)

// AddFlags adds the verify flags to the cobra command.
func (o *VerifyOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.QRPath, "qr", "", "Read the signed message from a QR code PNG instead of a file.")
	_ = cmd.MarkFlagFilename("qr", "png")
	cmd.Flags().StringVarP(&o.MessagePath, "message", "m", "", "Original message. Required for detached signatures.")
	cmd.Flags().StringVar(&o.KeyPath, "key", "", "Public key: an OpenPGP keyring or a PEM public key. [required]")
	_ = cmd.MarkFlagRequired("key")
}

// ToStandardOptions converts CLI options to library options.
func (o *VerifyOptions) ToStandardOptions(signedPath string) verify.Options {
	return verify.Options{
		SignedPath:  signedPath,
		QRPath:      o.QRPath,
		MessagePath: o.MessagePath,
		KeyPath:     o.KeyPath,
	}
}
