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
	"fmt"

	"github.com/bobertjmurphy/zeek/internal/domain"
)

// StatisticsEvent carries a backend's periodic write counters, the Go
// equivalent of Zeek's Log::statistics event.
type StatisticsEvent struct {
	Backend       string
	Received      uint64
	WriteAttempts uint64
	WriteSucceeded uint64
	WriteErrors   uint64
}

func (e StatisticsEvent) String() string {
	return fmt.Sprintf("Log::statistics backend=%s received=%d attempts=%d succeeded=%d errors=%d",
		e.Backend, e.Received, e.WriteAttempts, e.WriteSucceeded, e.WriteErrors)
}

func (e StatisticsEvent) Type() domain.EventType { return domain.EventTypeStatistics }

func (e StatisticsEvent) Validate() error {
	if e.Backend == "" {
		return fmt.Errorf("statistics event missing backend name")
	}
	return nil
}

// WriteErrorEvent reports a record write failure or a rotation protocol
// violation, the Go equivalent of Zeek's Log::write_error event.
type WriteErrorEvent struct {
	Backend string
	Index   int
	Total   int
	Message string
	Fatal   bool
}

func (e WriteErrorEvent) String() string {
	return fmt.Sprintf("Log::write_error backend=%s index=%d total=%d fatal=%v: %s",
		e.Backend, e.Index, e.Total, e.Fatal, e.Message)
}

func (e WriteErrorEvent) Type() domain.EventType { return domain.EventTypeWriteError }

func (e WriteErrorEvent) Validate() error {
	if e.Backend == "" {
		return fmt.Errorf("write-error event missing backend name")
	}
	return nil
}
