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
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/bobertjmurphy/zeek/pkg/util/roratelog"
)

// FileSink writes encoded records to a local file. A plugin's own
// DoRotate remains responsible for the backend-driven rotation protocol;
// FileSinkConfig's EnableSizeRotate/MaxSizeMB/MaxInterval layer an
// independent, size- or age-triggered rotation underneath it for sinks
// that are never told to rotate explicitly (e.g. a long-running filter
// nobody ever signals).
type FileSink struct {
	file      *os.File
	rotateLog *roratelog.Logger
	buffered  *bufio.Writer
	path      string
}

// FileSinkConfig configures a FileSink.
type FileSinkConfig struct {
	Path             string
	EnableSizeRotate bool
	MaxSizeMB        int
	MaxInterval      time.Duration
	BufferSize       int
}

// NewFileSink opens path for appending and returns a sink writing to it.
func NewFileSink(config FileSinkConfig) (*FileSink, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("file sink path cannot be empty")
	}

	fs := &FileSink{path: config.Path}

	if config.EnableSizeRotate && (config.MaxSizeMB > 0 || config.MaxInterval > 0) {
		fs.rotateLog = &roratelog.Logger{
			Filename:    config.Path,
			MaxSize:     config.MaxSizeMB,
			MaxInterval: config.MaxInterval,
			LocalTime:   true,
		}
		return fs, nil
	}

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", config.Path, err)
	}
	fs.file = file

	if config.BufferSize > 0 {
		fs.buffered = bufio.NewWriterSize(file, config.BufferSize)
	}

	return fs, nil
}

func (s *FileSink) Write(p []byte) (n int, err error) {
	if s.rotateLog != nil {
		return s.rotateLog.Write(p)
	}
	if s.buffered != nil {
		return s.buffered.Write(p)
	}
	return s.file.Write(p)
}

func (s *FileSink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if s.rotateLog != nil {
		return s.rotateLog.Close()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *FileSink) Name() string {
	return fmt.Sprintf("file:%s", s.path)
}

func (s *FileSink) Flush() error {
	if s.buffered != nil {
		return s.buffered.Flush()
	}
	if s.file != nil {
		return s.file.Sync()
	}
	return nil
}

// Rotate renames the sink's current file to rotatedPath and, if open is
// true, reopens the original path for further writes. It is what a
// plugin's DoRotate calls when the destination is a plain FileSink
// rather than one of Zeek's special paths ("/dev/stdout", "/dev/stderr").
// When size/age rotation is enabled, the current file is instead moved
// aside under roratelog's timestamped backup name and a new file is always
// opened; rotatedPath and open are ignored.
func (s *FileSink) Rotate(rotatedPath string, open bool) error {
	if s.rotateLog != nil {
		return s.rotateLog.Rotate()
	}
	if err := s.Close(); err != nil {
		return err
	}
	if err := os.Rename(s.path, rotatedPath); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", s.path, rotatedPath, err)
	}
	if !open {
		s.file = nil
		return nil
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to reopen %s after rotation: %w", s.path, err)
	}
	s.file = file
	return nil
}
