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

package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bobertjmurphy/zeek/internal/domain"
	"github.com/bobertjmurphy/zeek/internal/events"
	"github.com/bobertjmurphy/zeek/internal/logger"
)

// stdoutEventHandler logs statistics and write-error events through the
// process logger.
type stdoutEventHandler struct {
	log *logger.Logger
}

// newStdoutEventHandler creates a new stdout event handler.
func newStdoutEventHandler(log *logger.Logger) *stdoutEventHandler {
	return &stdoutEventHandler{log: log}
}

// Handle processes an event by logging it.
func (h *stdoutEventHandler) Handle(event domain.Event) error {
	if event == nil {
		return nil
	}
	h.log.Info().Str("event_type", event.Type().String()).Msg(event.String())
	return nil
}

// Name returns the handler's identifier.
func (h *stdoutEventHandler) Name() string {
	return "stdout"
}

// newEventDispatcher creates the process-wide dispatcher and registers the
// stdout handler and the Prometheus metrics handler against it.
func newEventDispatcher(log *logger.Logger, reg prometheus.Registerer) (domain.EventDispatcher, error) {
	dispatcher := events.NewDispatcher(log)

	if err := dispatcher.Register(newStdoutEventHandler(log)); err != nil {
		return nil, fmt.Errorf("failed to register stdout handler: %w", err)
	}
	if err := dispatcher.Register(events.NewMetricsHandler(reg)); err != nil {
		return nil, fmt.Errorf("failed to register metrics handler: %w", err)
	}

	return dispatcher, nil
}
