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

// Package options defines the command-line options and flags for the qrsign
// CLI and binds them to configuration keys.
package options

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Skyrant/printable-digital-signature/pkg/config"
	"github.com/Skyrant/printable-digital-signature/pkg/logging"
)

// RootOptions defines flags and options for the root CLI command.
// These options are available globally across all subcommands.
type RootOptions struct {
	// OutputFile specifies a file path to redirect output to instead of stdout.
	OutputFile string
	// ConfigPath is an explicit YAML config file.
	ConfigPath string
	// LogLevel sets the minimum log level (debug, info, warn, error, silent).
	LogLevel string
	// LogFormat sets the log output format (text, json).
	LogFormat string
	// Timeout sets the maximum duration for command execution.
	Timeout time.Duration
}

// DefaultTimeout specifies the default timeout duration for commands.
const DefaultTimeout = 3 * time.Minute

// ValidLogLevels lists the valid log level strings.
var ValidLogLevels = []string{"debug", "info", "warn", "error", "silent"}

// ValidLogFormats lists the valid log format strings.
var ValidLogFormats = []string{"text", "json"}

var _ FlagAdder = (*RootOptions)(nil)

// AddFlags adds root-level flags to the cobra command.
func (o *RootOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.OutputFile, "output-file", "",
		"write the report to a file instead of stdout")

	cmd.PersistentFlags().StringVar(&o.ConfigPath, "config", "",
		"config file (default ./qrsign.yaml when present)")
	_ = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")

	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "info",
		"set the minimum log level (debug, info, warn, error, silent)")

	cmd.PersistentFlags().StringVar(&o.LogFormat, "log-format", "text",
		"set the log output format (text, json)")

	cmd.PersistentFlags().DurationVarP(&o.Timeout, "timeout", "t", DefaultTimeout,
		"timeout for commands")
}

// Bindings maps the root flags to their config keys.
func (o *RootOptions) Bindings() []Binding {
	return []Binding{
		{Flag: "log-level", Key: "log.level"},
		{Flag: "log-format", Key: "log.format"},
	}
}

// LoadConfig merges defaults, the config file, the environment and the flags
// of cmd named by groups.
func (o *RootOptions) LoadConfig(flags *pflag.FlagSet, groups ...Binder) (config.Config, error) {
	loader := config.NewLoader()
	bindings := o.Bindings()
	for _, g := range groups {
		bindings = append(bindings, g.Bindings()...)
	}
	for _, b := range bindings {
		if err := loader.BindFlag(b.Key, flags.Lookup(b.Flag)); err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := loader.Load(o.ConfigPath, "")
	if err != nil {
		return config.Config{}, err
	}
	if err := ValidateLog(cfg.Log); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// ValidateLog rejects unknown log levels and formats.
func ValidateLog(cfg config.LogConfig) error {
	if !slices.Contains(ValidLogLevels, strings.ToLower(cfg.Level)) {
		return fmt.Errorf("%w: unknown log level %q", config.ErrInvalidConfig, cfg.Level)
	}
	if !slices.Contains(ValidLogFormats, strings.ToLower(cfg.Format)) {
		return fmt.Errorf("%w: unknown log format %q", config.ErrInvalidConfig, cfg.Format)
	}
	return nil
}

// NewLogger creates a logger writing to stderr from the log section.
func NewLogger(cfg config.LogConfig) logging.Logger {
	return logging.NewLoggerWithOptions(logging.LoggerOptions{
		Level:     logging.ParseLogLevel(cfg.Level),
		Format:    logging.ParseLogFormat(cfg.Format),
		ShowLevel: true,
	})
}
