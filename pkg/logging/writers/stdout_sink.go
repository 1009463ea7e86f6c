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

import "os"

// StdoutSink writes raw, unbuffered bytes to the process's own stdout. It
// backs Zeek's "/dev/stdout" and "/dev/stderr" special paths, which never
// rotate and are never renamed by DoRotate.
type StdoutSink struct {
	out *os.File
}

// NewStdoutSink returns a sink writing to os.Stdout.
func NewStdoutSink() *StdoutSink {
	return &StdoutSink{out: os.Stdout}
}

// NewStderrSink returns a sink writing to os.Stderr.
func NewStderrSink() *StdoutSink {
	return &StdoutSink{out: os.Stderr}
}

func (s *StdoutSink) Write(p []byte) (n int, err error) { return s.out.Write(p) }

// Close is a no-op: the process owns stdout/stderr's lifetime, not the sink.
func (s *StdoutSink) Close() error { return nil }

func (s *StdoutSink) Name() string {
	if s.out == os.Stderr {
		return "/dev/stderr"
	}
	return "/dev/stdout"
}

func (s *StdoutSink) Flush() error { return s.out.Sync() }
