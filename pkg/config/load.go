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

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ConfigBaseName is the config file name searched in the working directory.
	ConfigBaseName = "qrsign"
	// ConfigExtension is the config file type.
	ConfigExtension = "yaml"
	// EnvPrefix prefixes environment overrides, e.g. QRSIGN_SIGNING_KEY_ID.
	EnvPrefix = "QRSIGN"
)

// ErrReadConfig is wrapped by errors from reading or decoding configuration.
var ErrReadConfig = errors.New("reading configuration")

// Loader reads configuration from defaults, an optional YAML file, the
// environment and command flags, in increasing order of precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader with defaults and environment binding in place.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range flatten(DefaultConfig()) {
		v.SetDefault(key, value)
	}
	return &Loader{v: v}
}

// BindFlag binds a command flag to a config key such as "signing.key_id".
// A bound flag only overrides the lower layers when the user set it.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %s: flag not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads path if given, otherwise qrsign.yaml from dir when present, and
// decodes the merged result.
func (l *Loader) Load(path, dir string) (Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w %s: %w", ErrReadConfig, path, err)
		}
	} else {
		if dir == "" {
			dir = "."
		}
		l.v.SetConfigName(ConfigBaseName)
		l.v.SetConfigType(ConfigExtension)
		l.v.AddConfigPath(dir)
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("%w: %w", ErrReadConfig, err)
			}
		}
	}

	cfg := DefaultConfig()
	if err := l.v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.TagName = "mapstructure"
		c.WeaklyTypedInput = true
	}); err != nil {
		return Config{}, fmt.Errorf("%w: decoding: %w", ErrReadConfig, err)
	}
	return cfg, nil
}

// ConfigFileUsed returns the config file that was read, or "".
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// flatten turns a Config into dotted mapstructure keys so every key is known
// to viper. AutomaticEnv only consults keys it knows about.
func flatten(cfg Config) map[string]interface{} {
	out := map[string]interface{}{}
	var walk func(prefix string, v reflect.Value)
	walk = func(prefix string, v reflect.Value) {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get("mapstructure")
			if tag == "" || tag == "-" {
				continue
			}
			key := tag
			if prefix != "" {
				key = prefix + "." + tag
			}
			if field.Type.Kind() == reflect.Struct {
				walk(key, v.Field(i))
				continue
			}
			out[key] = v.Field(i).Interface()
		}
	}
	walk("", reflect.ValueOf(cfg))
	return out
}
