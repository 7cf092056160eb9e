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
	"github.com/Skyrant/printable-digital-signature/pkg/pipeline"
	"github.com/Skyrant/printable-digital-signature/pkg/report"
)

// Keys creates the keys command, which lists the signing keys of the key store.
func Keys() *cobra.Command {
	o := &options.KeysOptions{}

	cmd := &cobra.Command{
		Use:   "keys [OPTIONS]",
		Short: "List the signing keys of the key store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadSigningConfig(cmd, o)
			if err != nil {
				return err
			}
			logger := options.NewLogger(cfg.Log)

			signer, err := pipeline.NewSigner(cfg.Signing, logger)
			if err != nil {
				return configError(err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			keys, err := signer.ListKeys(ctx)
			if err != nil {
				return &pipeline.Error{Kind: pipeline.KindSigning, Stage: pipeline.StageKeys, Err: err}
			}
			return report.PrintKeys(cmd.OutOrStdout(), keys)
		},
	}

	options.AddAllFlags(cmd, o)
	return cmd
}
