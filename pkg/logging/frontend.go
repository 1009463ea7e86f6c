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
	"context"
	"fmt"
	"sync"

	"github.com/bobertjmurphy/zeek/internal/logger"
)

// WriteBufferSize is the number of buffered Write calls a Frontend
// accumulates before flushing them to its backend as a single batch
// message, mirroring Zeek's WRITER_BUFFER_SIZE.
const WriteBufferSize = 1000

// BackendRunner is implemented by NonBatchBackend and BatchBackend: the
// frontend only ever needs to hand a backend an Init call, batches of
// records, and lifecycle/rotation/heartbeat signals.
type BackendRunner interface {
	Init(info WriterInfo, fields []Field) error
	WriteLogs(rows []Record) error
	Flush() error
	Rotate(rotatedPath string, open, terminating bool) error
	Finish() error
	Heartbeat(networkTime, currentTime float64) error
	SetDisable()
	Disabled() bool
}

type frontendMsgKind int

const (
	msgWrite frontendMsgKind = iota
	msgFlush
	msgRotate
	msgHeartbeat
	msgFinish
)

type frontendMsg struct {
	kind    frontendMsgKind
	rows    []Record
	rotPath string
	rotOpen bool
	rotTerm bool
	netTime float64
	curTime float64
	done    chan error
}

// Frontend is the handle callers hold. It owns the write buffer described
// by spec.md's concurrency model and runs its backend on a dedicated
// goroutine, communicating over one inbound channel — the two
// unidirectional message queues of the original collapse to one, since a
// Go channel send blocks the sender exactly like MsgThread's queue push
// and responses travel back over a per-call result channel instead of a
// second queue.
type Frontend struct {
	name string
	log  *logger.Logger

	backend BackendRunner
	inbox   chan frontendMsg

	mu          sync.Mutex
	fields      []Field
	info        WriterInfo
	writeBuffer []Record
	closed      bool
	wg          sync.WaitGroup
}

// NewFrontend creates a Frontend named name, backed by backend.
func NewFrontend(name string, backend BackendRunner, log *logger.Logger) *Frontend {
	if log == nil {
		log = logger.New(nil, false)
	}
	return &Frontend{
		name:    name,
		backend: backend,
		inbox:   make(chan frontendMsg, WriteBufferSize),
		log:     log.WithComponent("logging.frontend"),
	}
}

func (f *Frontend) Name() string { return f.name }

func (f *Frontend) Fields() []Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *Frontend) Info() WriterInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info
}

func (f *Frontend) Disabled() bool { return f.backend.Disabled() }

// Stats returns the backend's cumulative counters, for the admin HTTP
// surface's per-filter /stats report. ok is false if the underlying
// backend doesn't expose statistics (never the case for NonBatchBackend
// or BatchBackend, both of which embed *Backend, so ok is always true for
// them).
func (f *Frontend) Stats() (stats BackendStats, ok bool) {
	statsBackend, ok := f.backend.(interface{ Stats() BackendStats })
	if !ok {
		return BackendStats{}, false
	}
	return statsBackend.Stats(), true
}

// Init initializes the backend synchronously, then starts its serving
// goroutine.
func (f *Frontend) Init(info WriterInfo, fields []Field) error {
	f.mu.Lock()
	f.info = info
	f.fields = fields
	f.mu.Unlock()

	if err := f.backend.Init(info, fields); err != nil {
		f.backend.SetDisable()
		return err
	}

	f.wg.Add(1)
	go f.serve()
	return nil
}

func (f *Frontend) serve() {
	defer f.wg.Done()
	for msg := range f.inbox {
		var err error
		switch msg.kind {
		case msgWrite:
			err = f.backend.WriteLogs(msg.rows)
		case msgFlush:
			err = f.backend.Flush()
		case msgRotate:
			err = f.backend.Rotate(msg.rotPath, msg.rotOpen, msg.rotTerm)
		case msgHeartbeat:
			err = f.backend.Heartbeat(msg.netTime, msg.curTime)
		case msgFinish:
			err = f.backend.Finish()
		}
		if msg.done != nil {
			msg.done <- err
		}
		if msg.kind == msgFinish {
			return
		}
	}
}

// Write appends one record to the frontend's write buffer, flushing it to
// the backend once it reaches WriteBufferSize.
func (f *Frontend) Write(row Record) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return fmt.Errorf("frontend %s is closed", f.name)
	}
	f.writeBuffer = append(f.writeBuffer, row)
	full := len(f.writeBuffer) >= WriteBufferSize
	f.mu.Unlock()

	if full {
		return f.FlushWriteBuffer()
	}
	return nil
}

// FlushWriteBuffer sends whatever is currently buffered to the backend as
// one batch, regardless of how full the buffer is.
func (f *Frontend) FlushWriteBuffer() error {
	f.mu.Lock()
	if len(f.writeBuffer) == 0 {
		f.mu.Unlock()
		return nil
	}
	rows := f.writeBuffer
	f.writeBuffer = nil
	closed := f.closed
	f.mu.Unlock()

	if closed {
		return fmt.Errorf("frontend %s is closed", f.name)
	}
	f.inbox <- frontendMsg{kind: msgWrite, rows: rows}
	return nil
}

// Flush flushes the write buffer and asks the backend to flush its
// output to stable storage, blocking until it has.
func (f *Frontend) Flush() error {
	if err := f.FlushWriteBuffer(); err != nil {
		return err
	}
	return f.send(frontendMsg{kind: msgFlush})
}

// Rotate flushes the write buffer and runs a rotation, blocking until the
// backend acknowledges it.
func (f *Frontend) Rotate(rotatedPath string, open, terminating bool) error {
	if err := f.FlushWriteBuffer(); err != nil {
		return err
	}
	return f.send(frontendMsg{kind: msgRotate, rotPath: rotatedPath, rotOpen: open, rotTerm: terminating})
}

// Heartbeat flushes the write buffer and delivers a heartbeat tick to the
// backend, blocking until it has processed it. Flushing first is what
// eventually drains records sitting below WriteBufferSize between
// explicit Flush/Rotate calls.
func (f *Frontend) Heartbeat(networkTime, currentTime float64) error {
	if err := f.FlushWriteBuffer(); err != nil {
		return err
	}
	return f.send(frontendMsg{kind: msgHeartbeat, netTime: networkTime, curTime: currentTime})
}

// Finish flushes the write buffer, asks the backend to shut down, and
// waits for its goroutine to exit or ctx to be canceled.
func (f *Frontend) Finish(ctx context.Context) error {
	if err := f.FlushWriteBuffer(); err != nil {
		return err
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	done := make(chan error, 1)
	f.inbox <- frontendMsg{kind: msgFinish, done: done}
	close(f.inbox)

	select {
	case err := <-done:
		f.wg.Wait()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Frontend) send(msg frontendMsg) error {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return fmt.Errorf("frontend %s is closed", f.name)
	}

	done := make(chan error, 1)
	msg.done = done
	f.inbox <- msg
	return <-done
}
