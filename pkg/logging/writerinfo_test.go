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

import (
	"reflect"
	"testing"
)

func TestWriterInfoRoundTrip(t *testing.T) {
	tests := []WriterInfo{
		{Path: "conn", RotationInterval: 3600, RotationBase: 0, NetworkTime: 0, Config: map[string]string{"tsv": "T"}},
		{Path: "/dev/stdout", RotationInterval: 0, RotationBase: 0, NetworkTime: 1690000000.5, Config: nil},
		{Path: "dns", RotationInterval: 86400, RotationBase: 1690000000, NetworkTime: 0, Config: map[string]string{
			"ascii:gzip_level": "6",
			"use_json":         "F",
		}},
	}

	for _, w := range tests {
		got := DecodeWriterInfo(w.Encode())
		if got.Path != w.Path || got.RotationInterval != w.RotationInterval ||
			got.RotationBase != w.RotationBase || got.NetworkTime != w.NetworkTime {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, w)
		}
		if !reflect.DeepEqual(got.Config, w.Config) && !(len(got.Config) == 0 && len(w.Config) == 0) {
			t.Errorf("round trip config mismatch: got %v, want %v", got.Config, w.Config)
		}
	}
}

func TestEncodeDoesNotAliasConfig(t *testing.T) {
	w := WriterInfo{Path: "conn", Config: map[string]string{"tsv": "T"}}
	wire := w.Encode()
	wire.Config["tsv"] = "F"
	if w.Config["tsv"] != "T" {
		t.Error("Encode() must not alias the original Config map")
	}
}
