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
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/Skyrant/printable-digital-signature/cmd/qrsign/cli/options"
	"github.com/Skyrant/printable-digital-signature/pkg/logging"
	"github.com/Skyrant/printable-digital-signature/pkg/tracing"
)

var (
	ro = &options.RootOptions{}
)

// Execute runs the qrsign command line. The output file, the redirected
// stdout and the tracer are released after the run, also when it fails.
func Execute() error {
	cmd, finish := newRoot()
	defer finish()
	return cmd.Execute()
}

// newRoot returns the qrsign root command and the func that releases what
// its run acquired. Without a subcommand it runs sign.
func newRoot() (*cobra.Command, func()) {
	var (
		out, stdout *os.File
	)
	finish := func() {
		_ = tracing.Shutdown(context.Background())
		if out != nil {
			_ = out.Close()
			os.Stdout = stdout
			out = nil
		}
	}

	signCmd := Sign()

	cmd := &cobra.Command{
		Use:   "qrsign [OPTIONS] [MESSAGE]",
		Short: "Sign a message and print it with its signature as a QR code in a PDF.",
		Long: `Sign a message and print it with its signature as a QR code in a PDF.

    Without a subcommand qrsign runs "sign": it lists the available keys,
    signs the message, encodes the signed text as a QR code and writes a
    one-page PDF with the message and the QR code.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Args:              signCmd.Args,
		RunE:              signCmd.RunE,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if ro.OutputFile != "" {
				var err error
				out, err = os.Create(ro.OutputFile)
				if err != nil {
					return fmt.Errorf("error creating output file %s: %w", ro.OutputFile, err)
				}
				stdout = os.Stdout
				os.Stdout = out
				cmd.SetOut(out)
			}

			if err := tracing.InitFromEnv(); err != nil {
				logging.Default().Warn("tracing disabled: %v", err)
			}
			return nil
		},
	}
	ro.AddFlags(cmd)
	cmd.Flags().AddFlagSet(signCmd.Flags())

	cmd.AddCommand(signCmd)
	cmd.AddCommand(Keys())
	cmd.AddCommand(Verify())
	cmd.AddCommand(version.WithFont("starwars"))
	return cmd, finish
}
