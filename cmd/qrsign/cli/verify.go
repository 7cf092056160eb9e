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

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skyrant/printable-digital-signature/cmd/qrsign/cli/options"
	"github.com/Skyrant/printable-digital-signature/pkg/verify"
)

// Verify creates the verify command.
func Verify() *cobra.Command {
	o := &options.VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [OPTIONS] [SIGNED_FILE]",
		Short: "Verify a signed message or a QR code image.",
		Long: `Verify a signed message or a QR code image.

    The signed text is read from SIGNED_FILE or, with --qr, decoded from a QR
    code PNG. OpenPGP signatures are checked against the keyring given with
    --key; DSSE envelopes and signatures produced by the "key" backend are
    checked against a PEM public key.

    Detached signatures need the original message (--message). For
    clear-signed input --message is optional; when given, the signed content
    must equal the normalized message.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			signedPath := ""
			if len(args) == 1 {
				signedPath = args[0]
			}

			cfg, err := ro.LoadConfig(cmd.Flags())
			if err != nil {
				return configError(err)
			}
			opts := o.ToStandardOptions(signedPath)
			opts.Logger = options.NewLogger(cfg.Log)

			verifier, err := verify.NewVerifier(opts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			res, err := verifier.Verify(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Message)
			_, err = fmt.Fprintf(out, "signer: %s\nformat: %s\ncontent: %q\n", res.SignerID, res.Format, res.Content)
			return err
		},
	}

	options.AddAllFlags(cmd, o)
	return cmd
}
