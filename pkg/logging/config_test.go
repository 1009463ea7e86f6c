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

package logging

import "testing"

func TestConfigResolverPrefixedOverride(t *testing.T) {
	r := NewConfigResolver("ascii", map[string]string{"tsv": "F"}, map[string]string{
		"tsv":        "T",
		"ascii:tsv":  "F",
	})

	v, ok := r.GetConfigString("tsv")
	if !ok || v != "F" {
		t.Errorf("expected prefixed override 'F', got %q (ok=%v)", v, ok)
	}
}

func TestConfigResolverUnprefixedBeatsDefault(t *testing.T) {
	r := NewConfigResolver("ascii", map[string]string{"tsv": "F"}, map[string]string{"tsv": "T"})

	v, ok := r.GetConfigString("tsv")
	if !ok || v != "T" {
		t.Errorf("expected unprefixed config 'T', got %q (ok=%v)", v, ok)
	}
}

func TestConfigResolverFallsBackToDefault(t *testing.T) {
	r := NewConfigResolver("ascii", map[string]string{"gzip_level": "0"}, map[string]string{})

	v, ok := r.GetConfigString("gzip_level")
	if !ok || v != "0" {
		t.Errorf("expected default '0', got %q (ok=%v)", v, ok)
	}
}

func TestConfigResolverMissingKey(t *testing.T) {
	r := NewConfigResolver("ascii", nil, nil)
	if _, ok := r.GetConfigString("nope"); ok {
		t.Error("expected ok=false for missing key")
	}
}

func TestConfigResolverBool(t *testing.T) {
	r := NewConfigResolver("ascii", nil, map[string]string{"tsv": "T", "use_json": "F"})
	if !r.GetConfigBool("tsv", false) {
		t.Error("expected tsv=true")
	}
	if r.GetConfigBool("use_json", true) {
		t.Error("expected use_json=false")
	}
	if !r.GetConfigBool("missing", true) {
		t.Error("expected default true for missing key")
	}
}

func TestConfigResolverIntAndFloat(t *testing.T) {
	r := NewConfigResolver("batch", map[string]string{"batch:max_records": "0", "batch:max_delay_secs": "1"}, nil)
	if n := r.GetConfigInt("batch:max_records", -1); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
	if f := r.GetConfigFloat("batch:max_delay_secs", -1); f != 1 {
		t.Errorf("expected 1, got %v", f)
	}
	if n := r.GetConfigInt("not_a_number", 7); n != 7 {
		t.Errorf("expected fallback 7, got %d", n)
	}
}
