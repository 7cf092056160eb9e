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

	"github.com/spf13/cobra"

	"github.com/Skyrant/printable-digital-signature/cmd/qrsign/cli/options"
	"github.com/Skyrant/printable-digital-signature/pkg/config"
	"github.com/Skyrant/printable-digital-signature/pkg/pipeline"
)

// Sign creates the sign command.
func Sign() *cobra.Command {
	o := &options.SignOptions{}

	cmd := &cobra.Command{
		Use:   "sign [OPTIONS] [MESSAGE]",
		Short: "Sign a message and write the QR code signed PDF.",
		Long: `Sign a message and write the QR code signed PDF.

    The message (MESSAGE, --message or input.message, default message.txt) is
    signed with line breaks removed and a single leading newline, the way it
    is read back from the QR code. The signed text is encoded as a QR code
    (--qr-image, default qrcode.png) and placed next to the message in a
    one-page A4 PDF (--pdf, default qr_code_signed.pdf). The available keys
    and the signed message are printed to stdout.

    --backend selects the signer: "gpg" drives the gpg binary and its agent,
    "keyring" signs in process with an OpenPGP secret keyring found under
    --homedir, "key" signs a DSSE envelope with a PEM private key.

    Settings can also come from qrsign.yaml or QRSIGN_* environment
    variables such as QRSIGN_SIGNING_KEY_ID; flags take precedence.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.LoadConfig(cmd.Flags(), o)
			if err != nil {
				return configError(err)
			}
			if len(args) == 1 {
				cfg.Input.Message = args[0]
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			_, err = pipeline.Run(ctx, cfg, pipeline.Deps{
				Stdout: cmd.OutOrStdout(),
				Logger: options.NewLogger(cfg.Log),
			})
			return err
		},
	}

	options.AddAllFlags(cmd, o)
	return cmd
}

func configError(err error) error {
	return &pipeline.Error{Kind: pipeline.KindConfiguration, Stage: pipeline.StageConfigure, Err: err}
}

// loadSigningConfig is shared by the commands that only need a signer.
func loadSigningConfig(cmd *cobra.Command, b options.Binder) (config.Config, error) {
	cfg, err := ro.LoadConfig(cmd.Flags(), b)
	if err != nil {
		return config.Config{}, configError(err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, configError(err)
	}
	return cfg, nil
}
