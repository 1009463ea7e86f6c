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
	"testing"
	"time"
)

func TestFrontendWriteThenFlushDeliversInOrder(t *testing.T) {
	disp := &captureDispatcher{}
	impl := &fakeRecordBackend{}
	nb := NewNonBatchBackend("fake", impl, disp, nil)
	impl.backend = nb.Backend

	f := NewFrontend("conn", nb, nil)
	if err := f.Init(WriterInfo{Path: "conn"}, singleStringField); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	for _, s := range []string{"a", "b", "c"} {
		if err := f.Write(NewRecord(StringValue(s))); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := f.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if len(impl.writes) != 3 {
		t.Fatalf("expected 3 records to have reached the backend, got %d", len(impl.writes))
	}
	for i, want := range []string{"a", "b", "c"} {
		if impl.writes[i].Values[0].Str != want {
			t.Errorf("record %d: expected %q, got %q", i, want, impl.writes[i].Values[0].Str)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.Finish(ctx); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	stats, ok := f.Stats()
	if !ok {
		t.Fatal("expected Stats() to report ok for a NonBatchBackend-backed frontend")
	}
	if stats.Received != 3 || stats.WriteSucceeded != 3 {
		t.Errorf("expected 3 received and 3 succeeded, got %+v", stats)
	}
}

func TestFrontendWriteBufferAutoFlushesAtCapacity(t *testing.T) {
	disp := &captureDispatcher{}
	impl := &fakeRecordBackend{}
	nb := NewNonBatchBackend("fake", impl, disp, nil)
	impl.backend = nb.Backend

	f := NewFrontend("conn", nb, nil)
	_ = f.Init(WriterInfo{Path: "conn"}, singleIntField)

	for i := 0; i < WriteBufferSize; i++ {
		if err := f.Write(NewRecord(IntValue(int64(i)))); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	// give the backend goroutine a moment to drain the auto-flushed buffer
	deadline := time.Now().Add(time.Second)
	for len(impl.writes) < WriteBufferSize && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if len(impl.writes) != WriteBufferSize {
		t.Fatalf("expected the buffer to auto-flush at capacity, got %d writes", len(impl.writes))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = f.Finish(ctx)
}

func TestFrontendWriteAfterFinishFails(t *testing.T) {
	disp := &captureDispatcher{}
	impl := &fakeRecordBackend{}
	nb := NewNonBatchBackend("fake", impl, disp, nil)
	impl.backend = nb.Backend

	f := NewFrontend("conn", nb, nil)
	_ = f.Init(WriterInfo{Path: "conn"}, singleStringField)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.Finish(ctx); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	if err := f.Write(NewRecord(StringValue("late"))); err == nil {
		t.Error("expected Write() after Finish() to fail")
	}
	if err := f.Flush(); err == nil {
		t.Error("expected Flush() after Finish() to fail")
	}
}

func TestFrontendRotateRoundTrip(t *testing.T) {
	disp := &captureDispatcher{}
	rb := &fakeRecordBackend{}
	nb := NewNonBatchBackend("fake", rb, disp, nil)
	rb.backend = nb.Backend

	f := NewFrontend("conn", nb, nil)
	_ = f.Init(WriterInfo{Path: "conn"}, singleStringField)

	if err := f.Rotate("conn.rotated", true, false); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = f.Finish(ctx)
}

func TestFrontendHeartbeatFlushesWriteBuffer(t *testing.T) {
	disp := &captureDispatcher{}
	impl := &fakeRecordBackend{}
	nb := NewNonBatchBackend("fake", impl, disp, nil)
	impl.backend = nb.Backend

	f := NewFrontend("conn", nb, nil)
	_ = f.Init(WriterInfo{Path: "conn"}, singleStringField)

	if err := f.Write(NewRecord(StringValue("buffered"))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(impl.writes) != 0 {
		t.Fatalf("expected the record to sit in the write buffer, not reach the backend yet, got %d writes", len(impl.writes))
	}

	if err := f.Heartbeat(0, 0); err != nil {
		t.Fatalf("Heartbeat() error = %v", err)
	}
	if len(impl.writes) != 1 {
		t.Fatalf("expected Heartbeat to flush the write buffer to the backend, got %d writes", len(impl.writes))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = f.Finish(ctx)
}
