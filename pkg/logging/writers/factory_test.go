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

package writers

import (
	"path/filepath"
	"testing"

	"github.com/bobertjmurphy/zeek/internal/logger"
)

func TestSinkFactoryCreatesStdoutForSpecialPaths(t *testing.T) {
	f := NewSinkFactory(logger.New(nil, false))

	for _, path := range []string{"", "stdout", "/dev/stdout"} {
		sink, err := f.CreateSink(path, nil)
		if err != nil {
			t.Fatalf("CreateSink(%q) error = %v", path, err)
		}
		if _, ok := sink.(*StdoutSink); !ok {
			t.Errorf("CreateSink(%q) = %T, want *StdoutSink", path, sink)
		}
	}
}

func TestSinkFactoryCreatesFileForPlainPath(t *testing.T) {
	f := NewSinkFactory(logger.New(nil, false))
	path := filepath.Join(t.TempDir(), "conn.log")

	sink, err := f.CreateSink(path, nil)
	if err != nil {
		t.Fatalf("CreateSink() error = %v", err)
	}
	defer sink.Close()
	if _, ok := sink.(*FileSink); !ok {
		t.Errorf("CreateSink(%q) = %T, want *FileSink", path, sink)
	}
}

func TestSinkFactoryRejectsMalformedWebSocketScheme(t *testing.T) {
	f := NewSinkFactory(logger.New(nil, false))
	if _, err := f.CreateSink("ws://[::1", nil); err == nil {
		t.Error("expected an error for a malformed WebSocket URL")
	}
}

func TestIsSpecialPath(t *testing.T) {
	cases := map[string]bool{
		"":                true,
		"/dev/stdout":     true,
		"debug":           true,
		"tcp://host:1234": true,
		"ws://host/path":  true,
		"/var/log/conn":   false,
	}
	for path, want := range cases {
		if got := IsSpecialPath(path); got != want {
			t.Errorf("IsSpecialPath(%q) = %v, want %v", path, got, want)
		}
	}
}
