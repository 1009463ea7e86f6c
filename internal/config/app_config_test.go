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
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Listen != "localhost:28256" {
		t.Errorf("expected default listen address, got %q", cfg.Listen)
	}
	if cfg.DefaultMaxDelaySecs != 1 {
		t.Errorf("expected default max delay of 1s, got %v", cfg.DefaultMaxDelaySecs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults() should be valid, got error %v", err)
	}
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.DefaultLogDir != "./logs" {
		t.Errorf("expected default log dir, got %q", cfg.DefaultLogDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "listen: 0.0.0.0:9999\ndebug: true\ndefault_batch_max_records: 500\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Listen != "0.0.0.0:9999" {
		t.Errorf("expected listen from file, got %q", cfg.Listen)
	}
	if !cfg.Debug {
		t.Error("expected debug=true from file")
	}
	if cfg.DefaultMaxRecords != 500 {
		t.Errorf("expected default_batch_max_records=500, got %d", cfg.DefaultMaxRecords)
	}
}

func TestValidateRejectsEmptyListen(t *testing.T) {
	cfg := Defaults()
	cfg.Listen = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject empty listen address")
	}
}

func TestValidateRejectsNegativeValues(t *testing.T) {
	cfg := Defaults()
	cfg.DefaultRotationSecs = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject negative rotation interval")
	}
}
