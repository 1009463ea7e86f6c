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

import "testing"

func TestStdoutSinkName(t *testing.T) {
	if got := NewStdoutSink().Name(); got != "/dev/stdout" {
		t.Errorf("Name() = %q, want /dev/stdout", got)
	}
	if got := NewStderrSink().Name(); got != "/dev/stderr" {
		t.Errorf("Name() = %q, want /dev/stderr", got)
	}
}

func TestStdoutSinkWriteAndClose(t *testing.T) {
	s := NewStdoutSink()
	n, err := s.Write([]byte("hello\n"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 6 {
		t.Errorf("Write() n = %d, want 6", n)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
