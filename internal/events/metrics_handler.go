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

package events

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bobertjmurphy/zeek/internal/domain"
	"github.com/bobertjmurphy/zeek/pkg/logging"
)

// MetricsHandler turns Log::statistics and Log::write_error events into
// Prometheus counters, scraped by the admin HTTP surface's /metrics
// route. StatisticsEvent carries cumulative totals rather than deltas, so
// the handler tracks the last-seen total per backend and only adds the
// difference, the way a Prometheus exporter bridging an external
// monotonic counter normally does.
type MetricsHandler struct {
	mu   sync.Mutex
	last map[string]logging.BackendStats

	recordsReceived *prometheus.CounterVec
	writeAttempts   *prometheus.CounterVec
	writesSucceeded *prometheus.CounterVec
	writeErrors     *prometheus.CounterVec
}

// NewMetricsHandler creates a MetricsHandler and registers its counters
// with reg. Pass prometheus.DefaultRegisterer to expose them on the
// default /metrics handler.
func NewMetricsHandler(reg prometheus.Registerer) *MetricsHandler {
	h := &MetricsHandler{
		last: make(map[string]logging.BackendStats),
		recordsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zeeklog_records_received_total",
			Help: "Records handed to a writer backend for output.",
		}, []string{"backend"}),
		writeAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zeeklog_write_attempts_total",
			Help: "Record write attempts issued to a writer backend's plugin.",
		}, []string{"backend"}),
		writesSucceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zeeklog_writes_succeeded_total",
			Help: "Record writes that completed without error.",
		}, []string{"backend"}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zeeklog_write_errors_total",
			Help: "Records reported in a write-error range, fatal or not.",
		}, []string{"backend"}),
	}
	reg.MustRegister(h.recordsReceived, h.writeAttempts, h.writesSucceeded, h.writeErrors)
	return h
}

func (h *MetricsHandler) Name() string { return "metrics" }

func (h *MetricsHandler) Handle(event domain.Event) error {
	switch ev := event.(type) {
	case logging.StatisticsEvent:
		h.observeStatistics(ev)
	case logging.WriteErrorEvent:
		h.writeErrors.WithLabelValues(ev.Backend).Add(float64(ev.Total))
	}
	return nil
}

func (h *MetricsHandler) observeStatistics(ev logging.StatisticsEvent) {
	h.mu.Lock()
	prev, seen := h.last[ev.Backend]
	h.last[ev.Backend] = logging.BackendStats{
		Received:       ev.Received,
		WriteAttempts:  ev.WriteAttempts,
		WriteSucceeded: ev.WriteSucceeded,
		WriteErrors:    ev.WriteErrors,
	}
	h.mu.Unlock()

	if !seen {
		prev = logging.BackendStats{}
	}
	h.recordsReceived.WithLabelValues(ev.Backend).Add(delta(ev.Received, prev.Received))
	h.writeAttempts.WithLabelValues(ev.Backend).Add(delta(ev.WriteAttempts, prev.WriteAttempts))
	h.writesSucceeded.WithLabelValues(ev.Backend).Add(delta(ev.WriteSucceeded, prev.WriteSucceeded))
}

// delta returns current-previous, or 0 if the counter somehow went
// backwards (a backend restart would reset it to 0).
func delta(current, previous uint64) float64 {
	if current < previous {
		return 0
	}
	return float64(current - previous)
}
