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
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bobertjmurphy/zeek/internal/logger"
)

// SinkFactory creates Sink instances based on a filter's path and
// rotation configuration.
type SinkFactory struct {
	log *logger.Logger
}

// NewSinkFactory creates a new sink factory.
func NewSinkFactory(log *logger.Logger) *SinkFactory {
	return &SinkFactory{log: log}
}

// RotateConfig configures a FileSink's independent, size- or
// age-triggered rotation.
type RotateConfig struct {
	EnableSizeRotate bool
	MaxSizeMB        int
	MaxInterval      time.Duration
}

// CreateSink creates a Sink for path:
//   - "", "/dev/stdout", "stdout": stdout
//   - "/dev/stderr", "stderr": stderr
//   - "debug": the process's own structured logger
//   - "tcp://host:port": a TCP connection
//   - "ws://host:port/path", "wss://host:port/path": a WebSocket connection
//   - anything else: a local file
func (f *SinkFactory) CreateSink(path string, rotate *RotateConfig) (Sink, error) {
	switch path {
	case "", "stdout", "/dev/stdout":
		return NewStdoutSink(), nil
	case "stderr", "/dev/stderr":
		return NewStderrSink(), nil
	case "debug":
		return NewDebugSink(f.log), nil
	}

	if strings.HasPrefix(path, "tcp://") {
		return NewTcpSink(strings.TrimPrefix(path, "tcp://"), 4096)
	}

	if strings.HasPrefix(path, "ws://") || strings.HasPrefix(path, "wss://") {
		parsed, err := url.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("invalid WebSocket sink URL %s: %w", path, err)
		}
		if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
			return nil, fmt.Errorf("WebSocket sink URL must use ws:// or wss:// scheme")
		}
		return NewWebSocketSink(path)
	}

	config := FileSinkConfig{Path: path}
	if rotate != nil {
		config.EnableSizeRotate = rotate.EnableSizeRotate
		config.MaxSizeMB = rotate.MaxSizeMB
		config.MaxInterval = rotate.MaxInterval
	}
	return NewFileSink(config)
}

// IsSpecialPath reports whether path is one of Zeek's special
// destinations that DoRotate must never rename — stdout, stderr, the
// debug echo sink, or a tcp://, ws:// or wss:// network sink.
func IsSpecialPath(path string) bool {
	switch path {
	case "", "stdout", "/dev/stdout", "stderr", "/dev/stderr", "debug":
		return true
	}
	return strings.HasPrefix(path, "tcp://") || strings.HasPrefix(path, "ws://") || strings.HasPrefix(path, "wss://")
}
