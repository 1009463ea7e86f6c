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
	"sync"

	"github.com/bobertjmurphy/zeek/pkg/util/ws"
)

// WebSocketSink streams encoded records to a WebSocket endpoint, for
// dashboards or browser-based tails that want a push feed of a filter's
// output rather than tailing a file.
type WebSocketSink struct {
	client *ws.Client
	addr   string
	mu     sync.Mutex
}

// NewWebSocketSink dials url and returns a sink writing to the connection.
func NewWebSocketSink(url string) (*WebSocketSink, error) {
	if url == "" {
		return nil, fmt.Errorf("WebSocket sink URL cannot be empty")
	}

	client := ws.NewClient()
	if err := client.Dial(url, "", "http://localhost"); err != nil {
		return nil, fmt.Errorf("failed to connect to WebSocket sink %s: %w", url, err)
	}

	return &WebSocketSink{client: client, addr: url}, nil
}

func (s *WebSocketSink) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Write(p)
}

func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *WebSocketSink) Name() string {
	return s.addr
}

// Flush is a no-op: every Write sends one WebSocket message immediately.
func (s *WebSocketSink) Flush() error {
	return nil
}
