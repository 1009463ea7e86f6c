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
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/bobertjmurphy/zeek/internal/domain"
	"github.com/bobertjmurphy/zeek/internal/logger"
)

// WriterBackend is the subset of plugin behavior common to both the
// non-batch and batch adapters: initialization, flush, shutdown,
// rotation, and the periodic heartbeat.
type WriterBackend interface {
	// DoInit prepares the backend to receive Write calls for the given
	// schema. A non-nil error is always treated as fatal.
	DoInit(info WriterInfo, fields []Field, resolver *ConfigResolver) error

	// DoFlush flushes any OS-buffered output to stable storage.
	DoFlush() error

	// DoFinish releases resources at shutdown. It is called at most
	// once.
	DoFinish() error

	// DoRotate closes the current output, renames it to rotatedPath
	// (unless the destination is special, e.g. /dev/stdout), and
	// reopens a new one if open is true. It must call the owning
	// Backend's FinishedRotation exactly once before returning.
	DoRotate(rotatedPath string, open, terminating bool) error

	// DoHeartbeat is called periodically so a backend can perform
	// time-based housekeeping, such as batch age checks.
	DoHeartbeat(networkTime, currentTime float64) error
}

// defaultStatsIntervalSecs is BaseWriterBackend's statistics_interval_seconds
// default: send a Log::statistics event roughly every 10 seconds of
// wall-clock heartbeat time.
const defaultStatsIntervalSecs = 10

// clampStatsInterval keeps a resolved statistics_interval_seconds inside
// the range BaseWriterBackend enforces, so a misconfigured filter can't
// busy-loop stats sends or silently disable them.
func clampStatsInterval(v float64) float64 {
	switch {
	case v < 0.001:
		return 0.001
	case v > 86400:
		return 86400
	default:
		return v
	}
}

// WriteErrorInfo describes one contiguous range of records a backend
// failed to write, mirroring the ranges HandleWriteErrors fabricates.
type WriteErrorInfo struct {
	Index   int
	Count   int
	Message string
	Fatal   bool
}

// Backend is the engine shared by every writer backend: it owns the
// rotation protocol, the statistics/heartbeat bookkeeping, and
// Log::statistics / Log::write_error event reporting, delegating the
// byte-level work to a WriterBackend implementation.
type Backend struct {
	backendName string
	impl        WriterBackend
	defaults    map[string]string
	dispatcher  domain.EventDispatcher
	log         *logger.Logger
	instanceID  uuid.UUID

	mu                sync.Mutex
	info              WriterInfo
	fields            []Field
	resolver          *ConfigResolver
	rotationCounter   int
	disabled          bool
	finished          bool
	statsIntervalSecs float64
	nextStatsAt       float64

	received       uint64
	writeAttempts  uint64
	writeSucceeded uint64
	writeErrors    uint64
}

// BackendStats is a point-in-time snapshot of a Backend's cumulative
// counters, the same values carried in its periodic StatisticsEvent.
type BackendStats struct {
	Received      uint64
	WriteAttempts uint64
	WriteSucceeded uint64
	WriteErrors   uint64
}

// Stats returns a snapshot of the backend's cumulative counters.
func (b *Backend) Stats() BackendStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BackendStats{
		Received:       b.received,
		WriteAttempts:  b.writeAttempts,
		WriteSucceeded: b.writeSucceeded,
		WriteErrors:    b.writeErrors,
	}
}

func newBackend(backendName string, impl WriterBackend, defaults map[string]string, dispatcher domain.EventDispatcher, log *logger.Logger) *Backend {
	if log == nil {
		log = logger.New(nil, false)
	}
	return &Backend{
		backendName: backendName,
		impl:        impl,
		defaults:    defaults,
		dispatcher:  dispatcher,
		log:         log.WithComponent("logging." + backendName),
		instanceID:  uuid.New(),
	}
}

// FullName reports "<path>:<backend-name>", matching
// BaseWriterBackend::FullName.
func (b *Backend) FullName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fmt.Sprintf("%s:%s", b.info.Path, b.backendName)
}

// GetBackendName returns the backend's short name, e.g. "ascii".
func (b *Backend) GetBackendName() string { return b.backendName }

// InstanceID returns the UUID generated for this Backend instance at
// construction. It is not attached to log fields, events or metric labels.
func (b *Backend) InstanceID() uuid.UUID { return b.instanceID }

// Init initializes the backend with the given filter info and schema.
func (b *Backend) Init(info WriterInfo, fields []Field) error {
	b.mu.Lock()
	b.info = info
	b.fields = fields
	b.resolver = NewConfigResolver(b.backendName, b.defaults, info.Config)
	resolver := b.resolver
	b.statsIntervalSecs = clampStatsInterval(resolver.GetConfigFloat("statistics_interval_seconds", defaultStatsIntervalSecs))
	b.mu.Unlock()

	if err := b.impl.DoInit(info, fields, resolver); err != nil {
		werr := &WriteError{
			Kind:  ErrKindFatalInit,
			Fatal: true,
			Msg:   fmt.Sprintf("failed to initialize writer backend for %q", info.Path),
			Cause: err,
		}
		b.log.Error().Err(err).Str("path", info.Path).Msg("writer backend initialization failed")
		return werr
	}
	b.log.Info().Str("path", info.Path).Str("backend", b.backendName).Msg("writer backend initialized")
	return nil
}

// SetDisable marks the backend unusable; further Write/Flush/Rotate
// calls are silently ignored, the way BaseWriterBackend::DisableFrontend
// does after a fatal error.
func (b *Backend) SetDisable() {
	b.mu.Lock()
	b.disabled = true
	b.mu.Unlock()
}

func (b *Backend) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

func (b *Backend) Flush() error {
	if b.Disabled() {
		return nil
	}
	return b.impl.DoFlush()
}

func (b *Backend) Finish() error {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return nil
	}
	b.finished = true
	b.mu.Unlock()
	return b.impl.DoFinish()
}

// Rotate runs the rotation protocol: the rotation counter is armed to 1
// before DoRotate runs and must land at exactly 0 by the time DoRotate
// returns, via exactly one call to FinishedRotation.
func (b *Backend) Rotate(rotatedPath string, open, terminating bool) error {
	if b.Disabled() {
		return nil
	}

	b.mu.Lock()
	b.rotationCounter = 1
	b.mu.Unlock()

	err := b.impl.DoRotate(rotatedPath, open, terminating)

	b.mu.Lock()
	counter := b.rotationCounter
	b.mu.Unlock()

	if counter > 0 {
		reason := fmt.Sprintf("backend %s did not call FinishedRotation after DoRotate", b.FullName())
		b.reportRotationViolation(reason)
		return &WriteError{Kind: ErrKindRotationProtocolViolation, Fatal: false, Msg: reason}
	}
	if counter < 0 {
		reason := fmt.Sprintf("backend %s called FinishedRotation more than once after DoRotate", b.FullName())
		b.reportRotationViolation(reason)
		return &WriteError{Kind: ErrKindRotationProtocolViolation, Fatal: false, Msg: reason}
	}
	return err
}

// FinishedRotation is called by a WriterBackend implementation exactly
// once per Rotate to acknowledge that rotation has completed, regardless
// of whether it succeeded.
func (b *Backend) FinishedRotation() {
	b.mu.Lock()
	b.rotationCounter--
	b.mu.Unlock()
}

// Heartbeat runs the backend's own periodic housekeeping and, once
// current_time has crossed the next scheduled instant, reports
// statistics and reschedules for current_time + statistics_interval_seconds.
func (b *Backend) Heartbeat(networkTime, currentTime float64) error {
	if b.Disabled() {
		return nil
	}
	if err := b.impl.DoHeartbeat(networkTime, currentTime); err != nil {
		return err
	}

	b.mu.Lock()
	due := currentTime >= b.nextStatsAt
	if due {
		b.nextStatsAt = currentTime + b.statsIntervalSecs
	}
	b.mu.Unlock()

	if due {
		b.sendStatistics()
	}
	return nil
}

func (b *Backend) sendStatistics() {
	if b.dispatcher == nil {
		return
	}
	b.mu.Lock()
	ev := StatisticsEvent{
		Backend:        fmt.Sprintf("%s:%s", b.info.Path, b.backendName),
		Received:       b.received,
		WriteAttempts:  b.writeAttempts,
		WriteSucceeded: b.writeSucceeded,
		WriteErrors:    b.writeErrors,
	}
	b.mu.Unlock()
	_ = b.dispatcher.Dispatch(ev)
}

// recordSuccess bumps the cumulative count of records successfully
// written, used by the non-batch and batch adapters after a write that
// didn't return an error.
func (b *Backend) recordSuccess(n int) {
	b.mu.Lock()
	b.writeSucceeded += uint64(n)
	b.mu.Unlock()
}

func (b *Backend) reportRotationViolation(reason string) {
	b.log.Error().Str("backend", b.FullName()).Str("reason", reason).Msg("rotation protocol violation")
	if b.dispatcher == nil {
		return
	}
	_ = b.dispatcher.Dispatch(WriteErrorEvent{Backend: b.FullName(), Message: reason, Fatal: false})
}

// ValidateRecords checks every row in rows against the schema fields the
// backend was initialized with. The first mismatch destroys rows before
// any of them reach the plugin: it disables the backend and returns a
// fatal schema-violation error, mirroring BaseWriterBackend::Write's
// field-count and per-position type-tag validation.
func (b *Backend) ValidateRecords(rows []Record) error {
	b.mu.Lock()
	fields := b.fields
	b.mu.Unlock()

	for _, row := range rows {
		if err := Validate(fields, row); err != nil {
			b.SetDisable()
			werr := &WriteError{
				Kind:  ErrKindSchemaViolation,
				Fatal: true,
				Msg:   fmt.Sprintf("%s: record does not match writer schema", b.FullName()),
				Cause: err,
			}
			b.log.Error().Err(err).Str("backend", b.FullName()).Msg("schema violation, disabling frontend")
			b.reportWriteErrors([]WriteErrorInfo{{
				Index:   0,
				Count:   len(rows),
				Message: werr.Error(),
				Fatal:   true,
			}})
			return werr
		}
	}
	return nil
}

// handleWriteErrors turns a write failure at index (out of total records
// in the batch) into the backend's two-range error report: the failing
// record itself, and every record after it that the caller stopped
// short of writing, reported as "not written due to previous error",
// mirroring BaseWriterBackend::HandleWriteErrors.
func (b *Backend) handleWriteErrors(index, total int, err error) []WriteErrorInfo {
	infos := []WriteErrorInfo{{Index: index, Count: 1, Message: err.Error(), Fatal: isFatal(err)}}
	if index+1 < total {
		infos = append(infos, WriteErrorInfo{
			Index:   index + 1,
			Count:   total - index - 1,
			Message: "not written due to previous error",
			Fatal:   false,
		})
	}
	return infos
}

func (b *Backend) reportWriteErrors(infos []WriteErrorInfo) {
	if len(infos) == 0 {
		return
	}
	b.mu.Lock()
	b.writeErrors += uint64(len(infos))
	full := fmt.Sprintf("%s:%s", b.info.Path, b.backendName)
	b.mu.Unlock()

	for _, info := range infos {
		b.log.Warn().
			Int("index", info.Index).
			Int("count", info.Count).
			Bool("fatal", info.Fatal).
			Msg(info.Message)
		if b.dispatcher != nil {
			_ = b.dispatcher.Dispatch(WriteErrorEvent{
				Backend: full,
				Index:   info.Index,
				Total:   info.Count,
				Message: info.Message,
				Fatal:   info.Fatal,
			})
		}
	}
}

func isFatal(err error) bool {
	var we *WriteError
	if errors.As(err, &we) {
		return we.Fatal
	}
	return false
}
