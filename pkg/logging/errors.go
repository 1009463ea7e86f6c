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

import "fmt"

// ErrorKind distinguishes the categories of failure a backend can report
// back to the frontend, mirroring BaseWriterBackend's own error taxonomy.
type ErrorKind int

const (
	// ErrKindFatalInit is reported when DoInit fails; the backend is
	// unusable for the lifetime of the filter.
	ErrKindFatalInit ErrorKind = iota

	// ErrKindSchemaViolation is reported when a record's shape doesn't
	// match the schema the backend was initialized with.
	ErrKindSchemaViolation

	// ErrKindRecordWrite is reported when writing one record fails; it
	// may or may not be fatal, see WriteError.Fatal.
	ErrKindRecordWrite

	// ErrKindRotationProtocolViolation is reported when a backend's
	// DoRotate implementation doesn't call FinishedRotation exactly
	// once.
	ErrKindRotationProtocolViolation
)

// WriteError is the error type Backend and its adapters return for
// writer-lifecycle failures.
type WriteError struct {
	Kind  ErrorKind
	Fatal bool
	Msg   string
	Cause error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *WriteError) Unwrap() error { return e.Cause }

// RotationProtocolViolation describes one of the two ways a backend can
// misuse FinishedRotation: calling it too few or too many times after
// DoRotate returns.
type RotationProtocolViolation struct {
	Backend string
	Reason  string
}
