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

package domain

// EventType categorizes the in-process events the logging subsystem
// reports to registered handlers.
type EventType uint8

const (
	// EventTypeStatistics carries a backend's periodic write counters,
	// mirroring Zeek's Log::statistics event.
	EventTypeStatistics EventType = iota

	// EventTypeWriteError reports a record write failure or a rotation
	// protocol violation, mirroring Zeek's Log::write_error event.
	EventTypeWriteError
)

func (t EventType) String() string {
	switch t {
	case EventTypeStatistics:
		return "Log::statistics"
	case EventTypeWriteError:
		return "Log::write_error"
	default:
		return "unknown"
	}
}

// Event is anything the dispatcher can fan out to registered handlers.
type Event interface {
	// String returns a human-readable representation of the event.
	String() string

	// Type returns the category of this event.
	Type() EventType

	// Validate checks if the event data is valid.
	Validate() error
}

// EventHandler processes events after they are dispatched.
type EventHandler interface {
	// Handle processes an event.
	Handle(event Event) error

	// Name returns the handler's identifier.
	Name() string
}

// EventDispatcher manages event distribution to registered handlers.
type EventDispatcher interface {
	// Register adds an event handler to the dispatcher.
	Register(handler EventHandler) error

	// Unregister removes an event handler from the dispatcher.
	Unregister(handlerName string) error

	// Dispatch sends an event to all registered handlers.
	Dispatch(event Event) error

	// Close stops the dispatcher and releases resources.
	Close() error
}
