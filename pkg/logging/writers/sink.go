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

// Package writers supplies the byte-level sinks a writer plugin's
// formatter writes encoded records into: a local file (with optional
// rotation), a TCP socket, a WebSocket connection, or the process's own
// stdout.
package writers

import (
	"io"
)

// Sink is the destination a writer plugin's formatter writes encoded
// records into. It separates "where the bytes go" from "how the record
// was encoded", the way the ascii/json formatter never needs to know
// whether it's writing to a rotated file or a socket.
type Sink interface {
	io.Writer
	io.Closer

	// Name returns a human-readable identity for this sink, e.g.
	// "file:/var/log/conn.log" or "tcp://127.0.0.1:9999".
	Name() string

	// Flush pushes any buffered bytes out to the destination.
	Flush() error
}
