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
	"github.com/bobertjmurphy/zeek/internal/domain"
	"github.com/bobertjmurphy/zeek/internal/logger"
)

// RecordWriterBackend is implemented by plugins that write each record to
// their sink immediately as it arrives.
type RecordWriterBackend interface {
	WriterBackend
	DoWrite(row Record) error
}

// NonBatchBackend adapts a RecordWriterBackend to the frontend's write
// contract: every record handed to WriteLogs is written immediately, one
// DoWrite call per row, with HandleWriteErrors-style error fabrication on
// failure.
type NonBatchBackend struct {
	*Backend
	impl RecordWriterBackend
}

// NewNonBatchBackend wraps impl in the non-batch adapter.
func NewNonBatchBackend(backendName string, impl RecordWriterBackend, dispatcher domain.EventDispatcher, log *logger.Logger) *NonBatchBackend {
	return &NonBatchBackend{
		Backend: newBackend(backendName, impl, nil, dispatcher, log),
		impl:    impl,
	}
}

// WriteLogs validates rows against the writer's schema, then writes each
// one immediately, stopping at the first DoWrite failure regardless of
// whether it was fatal. The remaining rows in the batch are genuinely
// left unwritten either way.
func (n *NonBatchBackend) WriteLogs(rows []Record) error {
	if n.Disabled() {
		return nil
	}
	if err := n.ValidateRecords(rows); err != nil {
		return err
	}

	n.mu.Lock()
	n.received += uint64(len(rows))
	n.mu.Unlock()

	for i, row := range rows {
		n.mu.Lock()
		n.writeAttempts++
		n.mu.Unlock()

		err := n.impl.DoWrite(row)
		if err == nil {
			n.recordSuccess(1)
			continue
		}

		infos := n.handleWriteErrors(i, len(rows), err)
		n.reportWriteErrors(infos)
		return err
	}
	return nil
}
