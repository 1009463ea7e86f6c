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
	"strings"

	"github.com/bobertjmurphy/zeek/internal/logger"
)

// DebugSink echoes every write to the process's own structured logger
// instead of a real destination, for a filter whose path is "debug" so
// its operator can watch formatted records
// scroll by without tailing a file.
type DebugSink struct {
	logger *logger.Logger
}

// NewDebugSink wraps log so writes are echoed through it.
func NewDebugSink(log *logger.Logger) *DebugSink {
	return &DebugSink{logger: log}
}

func (s *DebugSink) Write(p []byte) (n int, err error) {
	s.logger.Debug().Msg(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func (s *DebugSink) Close() error { return nil }

func (s *DebugSink) Name() string { return "debug" }

func (s *DebugSink) Flush() error { return nil }
