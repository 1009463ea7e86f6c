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

package ascii

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobertjmurphy/zeek/internal/domain"
	"github.com/bobertjmurphy/zeek/internal/logger"
	"github.com/bobertjmurphy/zeek/pkg/logging"
	"github.com/bobertjmurphy/zeek/pkg/logging/writers"
)

var connFields = []logging.Field{
	{Name: "ts", Type: logging.TypeTime},
	{Name: "uid", Type: logging.TypeString},
	{Name: "proto", Type: logging.TypeEnum},
}

func connRow(ts float64, uid, proto string) logging.Record {
	return logging.NewRecord(
		logging.TimeValue(ts),
		logging.StringValue(uid),
		logging.EnumValue(proto),
	)
}

// captureDispatcher records every event dispatched to it, standing in for
// the process-wide dispatcher in tests.
type captureDispatcher struct {
	events []domain.Event
}

func (d *captureDispatcher) Register(domain.EventHandler) error    { return nil }
func (d *captureDispatcher) Unregister(string) error                { return nil }
func (d *captureDispatcher) Dispatch(event domain.Event) error {
	d.events = append(d.events, event)
	return nil
}
func (d *captureDispatcher) Close() error { return nil }

func newTestBackend(t *testing.T) (*logging.BatchBackend, *Backend) {
	t.Helper()
	log := logger.New(nil, false)
	impl := &Backend{log: log, sinkFactory: writers.NewSinkFactory(log)}
	bb := logging.NewBatchBackend(BackendName, impl, nil, &captureDispatcher{}, log)
	impl.backend = bb.Backend
	return bb, impl
}

func TestDoInitWritesMetaHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conn")
	bb, _ := newTestBackend(t)

	if err := bb.Init(logging.WriterInfo{Path: path}, connFields); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := bb.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	data, err := os.ReadFile(path + ".log")
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	wantPrefixes := []string{"#separator", "#writer", "#set_separator", "#empty_field", "#unset_field", "#path", "#open", "#fields", "#types", "#close"}
	if len(lines) != len(wantPrefixes) {
		t.Fatalf("got %d header lines, want %d: %v", len(lines), len(wantPrefixes), lines)
	}
	for i, want := range wantPrefixes {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], want)
		}
	}
	if !strings.Contains(lines[7], "ts\tuid\tproto") {
		t.Errorf("fields line = %q, want it to list ts, uid, proto", lines[7])
	}
}

func TestTSVModeWritesSingleHeaderLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conn")
	bb, _ := newTestBackend(t)

	if err := bb.Init(logging.WriterInfo{Path: path, Config: map[string]string{"tsv": "T"}}, connFields); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := bb.WriteLogs([]logging.Record{connRow(1000, "abc", "tcp")}); err != nil {
		t.Fatalf("WriteLogs() error = %v", err)
	}
	if err := bb.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	data, err := os.ReadFile(path + ".log")
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (header + 1 record): %v", len(lines), lines)
	}
	if lines[0] != "ts\tuid\tproto" {
		t.Errorf("header = %q, want %q", lines[0], "ts\tuid\tproto")
	}
	if lines[1] != "1000.000000\tabc\ttcp" {
		t.Errorf("record = %q, want %q", lines[1], "1000.000000\tabc\ttcp")
	}
}

func TestJSONModeWritesNoHeaderOneObjectPerLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conn")
	bb, _ := newTestBackend(t)

	if err := bb.Init(logging.WriterInfo{Path: path, Config: map[string]string{"use_json": "T"}}, connFields); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := bb.WriteLogs([]logging.Record{connRow(1000, "abc", "tcp")}); err != nil {
		t.Fatalf("WriteLogs() error = %v", err)
	}
	if err := bb.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	data, err := os.ReadFile(path + ".log")
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want exactly 1 JSON record, no header: %v", len(lines), lines)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &obj); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if obj["uid"] != "abc" {
		t.Errorf("obj[uid] = %v, want abc", obj["uid"])
	}
}

func TestGzipModeRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conn")
	bb, _ := newTestBackend(t)

	if err := bb.Init(logging.WriterInfo{Path: path, Config: map[string]string{"gzip_level": "6", "tsv": "T"}}, connFields); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := bb.WriteLogs([]logging.Record{connRow(1000, "abc", "tcp")}); err != nil {
		t.Fatalf("WriteLogs() error = %v", err)
	}
	if err := bb.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	f, err := os.Open(path + ".log.gz")
	if err != nil {
		t.Fatalf("failed to open gzipped log file: %v", err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("failed to open gzip reader: %v", err)
	}
	defer gr.Close()

	buf := make([]byte, 4096)
	n, _ := gr.Read(buf)
	content := string(buf[:n])
	if !strings.Contains(content, "abc") {
		t.Errorf("decompressed content = %q, want it to contain the written record", content)
	}
}

func TestDoWriteBatchReportsFatalTail(t *testing.T) {
	_, impl := newTestBackend(t)
	impl.fields = connFields
	impl.leafFields = logging.Flatten(connFields)
	impl.fmt = newAsciiFormatter("\t", ",", "(empty)", "-")
	impl.out = failingWriter{}
	impl.sink = discardSink{}

	rows := []logging.Record{
		connRow(1, "a", "tcp"),
		connRow(2, "b", "tcp"),
		connRow(3, "c", "tcp"),
	}
	infos := impl.DoWriteBatch(rows)
	if len(infos) != 2 {
		t.Fatalf("got %d error infos, want 2 (failure + tail), infos=%v", len(infos), infos)
	}
	if infos[0].Index != 0 || infos[0].Count != 1 || !infos[0].Fatal {
		t.Errorf("first info = %+v, want {Index:0 Count:1 Fatal:true}", infos[0])
	}
	if infos[1].Index != 1 || infos[1].Count != 2 || infos[1].Fatal {
		t.Errorf("second info = %+v, want {Index:1 Count:2 Fatal:false}", infos[1])
	}
}

func TestDoRotateRenamesAndReopensExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conn")
	bb, _ := newTestBackend(t)

	if err := bb.Init(logging.WriterInfo{Path: path}, connFields); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := bb.WriteLogs([]logging.Record{connRow(1, "a", "tcp")}); err != nil {
		t.Fatalf("WriteLogs() error = %v", err)
	}
	if err := bb.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	rotated := filepath.Join(dir, "conn-rotated")
	if err := bb.Rotate(rotated, true, false); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}

	if _, err := os.Stat(rotated + ".log"); err != nil {
		t.Errorf("expected rotated file at %s.log: %v", rotated, err)
	}
	if _, err := os.Stat(path + ".log"); err != nil {
		t.Errorf("expected a fresh file reopened at %s.log: %v", path, err)
	}

	if err := bb.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
}

func TestDoRotateSkipsRenameForSpecialPath(t *testing.T) {
	bb, _ := newTestBackend(t)
	if err := bb.Init(logging.WriterInfo{Path: "", Config: map[string]string{"output_to_stdout": "T", "include_meta": "F"}}, connFields); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := bb.Rotate("/tmp/whatever", true, false); err != nil {
		t.Fatalf("Rotate() on a special path should not be a protocol violation, got error = %v", err)
	}
	if err := bb.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, fmt.Errorf("simulated I/O failure") }

type discardSink struct{}

func (discardSink) Write(p []byte) (int, error) { return len(p), nil }
func (discardSink) Close() error                { return nil }
func (discardSink) Name() string                { return "discard" }
func (discardSink) Flush() error                { return nil }
