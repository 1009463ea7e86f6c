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
	"sync"
	"time"

	"github.com/bobertjmurphy/zeek/internal/domain"
	"github.com/bobertjmurphy/zeek/internal/logger"
)

// BatchRecordWriterBackend is implemented by plugins that prefer to
// receive many records at once and write them in a single underlying
// operation, such as the reference ASCII/JSON plugin.
type BatchRecordWriterBackend interface {
	WriterBackend
	DoWriteBatch(rows []Record) []WriteErrorInfo
}

// GetDefaultBatchConfigMap merges BatchBackend's own defaults
// ("batch:max_records": "0", "batch:max_delay_secs": "1") over parent, the
// leaf winning on key collisions, mirroring
// BatchWriterBackend::GetDefaultConfigMap.
func GetDefaultBatchConfigMap(parent map[string]string) map[string]string {
	merged := make(map[string]string, len(parent)+2)
	for k, v := range parent {
		merged[k] = v
	}
	merged["batch:max_records"] = "0"
	merged["batch:max_delay_secs"] = "1"
	return merged
}

// BatchBackend caches incoming records and flushes them to the plugin in
// bulk once a flush criterion is met: an explicit force on Finish, the
// cache reaching max_records, or the cache
// having been open at least max_delay_secs by wall clock.
type BatchBackend struct {
	*Backend
	impl BatchRecordWriterBackend

	cacheMu   sync.Mutex
	cache     []Record
	cacheOpen time.Time

	maxRecords   int
	maxDelaySecs float64
}

// NewBatchBackend wraps impl in the batch adapter. parentDefaults are
// merged under the batch-specific defaults the way a subclass's
// GetDefaultConfigMap merges over BatchWriterBackend's own.
func NewBatchBackend(backendName string, impl BatchRecordWriterBackend, parentDefaults map[string]string, dispatcher domain.EventDispatcher, log *logger.Logger) *BatchBackend {
	defaults := GetDefaultBatchConfigMap(parentDefaults)
	return &BatchBackend{
		Backend:      newBackend(backendName, impl, defaults, dispatcher, log),
		impl:         impl,
		maxRecords:   0,
		maxDelaySecs: 1,
	}
}

// Init initializes the underlying backend, then reads this backend's own
// batch:max_records / batch:max_delay_secs from the resolved config.
func (bb *BatchBackend) Init(info WriterInfo, fields []Field) error {
	if err := bb.Backend.Init(info, fields); err != nil {
		return err
	}
	bb.maxRecords = bb.resolver.GetConfigInt("batch:max_records", 0)
	bb.maxDelaySecs = bb.resolver.GetConfigFloat("batch:max_delay_secs", 1)
	return nil
}

// WriteLogs validates rows against the writer's schema, appends them to
// the cache (recording the wall-clock time the cache became non-empty),
// and flushes if a criterion is already met.
func (bb *BatchBackend) WriteLogs(rows []Record) error {
	if bb.Disabled() {
		return nil
	}
	if err := bb.ValidateRecords(rows); err != nil {
		return err
	}

	bb.mu.Lock()
	bb.received += uint64(len(rows))
	bb.mu.Unlock()

	bb.cacheMu.Lock()
	if len(bb.cache) == 0 {
		bb.cacheOpen = time.Now()
	}
	bb.cache = append(bb.cache, rows...)
	bb.cacheMu.Unlock()

	return bb.writeBatchIfNeeded(false)
}

// Heartbeat runs the base heartbeat (statistics reporting) and then gives
// the cache a chance to flush on age, the way
// BatchWriterBackend::RunHeartbeat does.
func (bb *BatchBackend) Heartbeat(networkTime, currentTime float64) error {
	if err := bb.Backend.Heartbeat(networkTime, currentTime); err != nil {
		return err
	}
	return bb.writeBatchIfNeeded(false)
}

// Finish force-flushes any cached records before delegating to the base
// Finish, mirroring BatchWriterBackend::OnFinish.
func (bb *BatchBackend) Finish() error {
	if err := bb.writeBatchIfNeeded(true); err != nil {
		return err
	}
	return bb.Backend.Finish()
}

// writeBatchIfNeeded flushes the cache to the plugin when force is set,
// or when max_records or max_delay_secs has been exceeded.
func (bb *BatchBackend) writeBatchIfNeeded(force bool) error {
	bb.cacheMu.Lock()
	if len(bb.cache) == 0 {
		bb.cacheMu.Unlock()
		return nil
	}

	due := force ||
		(bb.maxRecords > 0 && len(bb.cache) >= bb.maxRecords) ||
		(bb.maxDelaySecs > 0 && time.Since(bb.cacheOpen).Seconds() >= bb.maxDelaySecs)
	if !due {
		bb.cacheMu.Unlock()
		return nil
	}

	rows := bb.cache
	bb.cache = nil
	bb.cacheMu.Unlock()

	bb.mu.Lock()
	bb.writeAttempts += uint64(len(rows))
	bb.mu.Unlock()

	infos := bb.impl.DoWriteBatch(rows)
	bb.reportWriteErrors(infos)

	var failed int
	for _, info := range infos {
		failed += info.Count
	}
	if succeeded := len(rows) - failed; succeeded > 0 {
		bb.recordSuccess(succeeded)
	}
	return nil
}
