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
	"net"
	"sync"
)

// TcpSink streams encoded records to a TCP listener, for filters that
// forward their output to a remote collector instead of a local file.
type TcpSink struct {
	conn     net.Conn
	buffered *bufio.Writer
	addr     string
	mu       sync.Mutex
}

// NewTcpSink dials addr and returns a sink writing to the connection.
func NewTcpSink(addr string, bufferSize int) (*TcpSink, error) {
	if addr == "" {
		return nil, fmt.Errorf("TCP sink address cannot be empty")
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TCP sink %s: %w", addr, err)
	}

	ts := &TcpSink{conn: conn, addr: addr}
	if bufferSize > 0 {
		ts.buffered = bufio.NewWriterSize(conn, bufferSize)
	}
	return ts, nil
}

func (s *TcpSink) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffered != nil {
		return s.buffered.Write(p)
	}
	return s.conn.Write(p)
}

func (s *TcpSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffered != nil {
		if err := s.buffered.Flush(); err != nil {
			return err
		}
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *TcpSink) Name() string {
	return fmt.Sprintf("tcp://%s", s.addr)
}

func (s *TcpSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffered != nil {
		return s.buffered.Flush()
	}
	return nil
}
