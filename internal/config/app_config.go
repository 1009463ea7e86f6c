// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// AppConfig holds process-level configuration for the logging service:
// the admin HTTP listen address, debug logging, a default log directory,
// and the default rotation/batch values used to seed a filter's WriterInfo
// when its own config table doesn't override them. DefaultLogDir is
// validated but not applied: serve opens --path as given and does not
// join it with DefaultLogDir.
type AppConfig struct {
	Listen              string  `mapstructure:"listen"`
	Debug               bool    `mapstructure:"debug"`
	DefaultLogDir       string  `mapstructure:"default_log_dir"`
	DefaultRotationSecs float64 `mapstructure:"default_rotation_interval_secs"`
	DefaultMaxRecords   int     `mapstructure:"default_batch_max_records"`
	DefaultMaxDelaySecs float64 `mapstructure:"default_batch_max_delay_secs"`
}

// Validate checks if the configuration is usable.
func (c *AppConfig) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.DefaultLogDir == "" {
		return fmt.Errorf("default_log_dir must not be empty")
	}
	if c.DefaultRotationSecs < 0 {
		return fmt.Errorf("default_rotation_interval_secs must not be negative, got %v", c.DefaultRotationSecs)
	}
	if c.DefaultMaxRecords < 0 {
		return fmt.Errorf("default_batch_max_records must not be negative, got %d", c.DefaultMaxRecords)
	}
	if c.DefaultMaxDelaySecs < 0 {
		return fmt.Errorf("default_batch_max_delay_secs must not be negative, got %v", c.DefaultMaxDelaySecs)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "localhost:28256")
	v.SetDefault("debug", false)
	v.SetDefault("default_log_dir", "./logs")
	v.SetDefault("default_rotation_interval_secs", float64(3600))
	v.SetDefault("default_batch_max_records", 0)
	v.SetDefault("default_batch_max_delay_secs", float64(1))
}

// Defaults returns an AppConfig populated with the same defaults Load
// would fall back to in the absence of a config file or environment
// overrides.
func Defaults() *AppConfig {
	v := viper.New()
	setDefaults(v)
	cfg := &AppConfig{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads process configuration from an optional YAML file at path,
// overlaid with ZEEKLOG_-prefixed environment variables, the way
// Sumatoshi-tech/codefang and basekick-labs/arc load their own process
// configuration with viper. path may be empty, in which case only
// defaults and the environment are consulted.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ZEEKLOG")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
