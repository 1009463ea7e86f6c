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

package factory

import (
	"errors"
	"testing"

	"github.com/bobertjmurphy/zeek/internal/domain"
	"github.com/bobertjmurphy/zeek/internal/logger"
	"github.com/bobertjmurphy/zeek/pkg/logging"
)

func newTestBackend(domain.EventDispatcher, *logger.Logger) (logging.BackendRunner, error) {
	return nil, nil
}

func TestWriterFactoryRegisterAndCreate(t *testing.T) {
	f := NewWriterFactory()
	if err := f.RegisterBackendConstructor("fake", newTestBackend); err != nil {
		t.Fatalf("RegisterBackendConstructor() error = %v", err)
	}

	if _, err := f.CreateBackend("fake", nil, nil); err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}

	supported := f.GetSupportedBackends()
	if len(supported) != 1 || supported[0] != "fake" {
		t.Errorf("GetSupportedBackends() = %v, want [fake]", supported)
	}
}

func TestWriterFactoryRejectsDuplicateRegistration(t *testing.T) {
	f := NewWriterFactory()
	_ = f.RegisterBackendConstructor("fake", newTestBackend)
	if err := f.RegisterBackendConstructor("fake", newTestBackend); err == nil {
		t.Error("expected an error registering the same backend type twice")
	}
}

func TestWriterFactoryRejectsNilConstructor(t *testing.T) {
	f := NewWriterFactory()
	if err := f.RegisterBackendConstructor("fake", nil); err == nil {
		t.Error("expected an error registering a nil constructor")
	}
}

func TestWriterFactoryUnknownBackendType(t *testing.T) {
	f := NewWriterFactory()
	if _, err := f.CreateBackend("nonexistent", nil, nil); err == nil {
		t.Error("expected an error for an unregistered backend type")
	}
}

func TestWriterFactoryWrapsConstructorError(t *testing.T) {
	f := NewWriterFactory()
	_ = f.RegisterBackendConstructor("broken", func(domain.EventDispatcher, *logger.Logger) (logging.BackendRunner, error) {
		return nil, errors.New("boom")
	})

	if _, err := f.CreateBackend("broken", nil, nil); err == nil {
		t.Error("expected the constructor's error to propagate")
	}
}
