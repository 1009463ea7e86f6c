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
	"fmt"

	"github.com/bobertjmurphy/zeek/internal/domain"
	"github.com/bobertjmurphy/zeek/internal/errors"
	"github.com/bobertjmurphy/zeek/internal/logger"
	"github.com/bobertjmurphy/zeek/pkg/logging"
)

// BackendType identifies a writer plugin implementation by its
// compiled-in name, e.g. "ascii".
type BackendType string

const (
	BackendTypeASCII BackendType = "ascii"
)

// BackendConstructor builds a fresh logging.BackendRunner for one filter.
// It is called once per filter rather than once per process, since each
// filter owns its own Backend instance (and InstanceID).
type BackendConstructor func(dispatcher domain.EventDispatcher, log *logger.Logger) (logging.BackendRunner, error)

// WriterFactory creates writer backends by name.
type WriterFactory interface {
	// CreateBackend builds a new backend of the given type.
	CreateBackend(backendType BackendType, dispatcher domain.EventDispatcher, log *logger.Logger) (logging.BackendRunner, error)

	// RegisterBackendConstructor registers a constructor for a backend type.
	RegisterBackendConstructor(backendType BackendType, constructor BackendConstructor) error

	// GetSupportedBackends returns every registered backend type.
	GetSupportedBackends() []BackendType
}

type defaultFactory struct {
	constructors map[BackendType]BackendConstructor
}

// NewWriterFactory creates a new, empty writer factory.
func NewWriterFactory() WriterFactory {
	return &defaultFactory{
		constructors: make(map[BackendType]BackendConstructor),
	}
}

func (f *defaultFactory) CreateBackend(backendType BackendType, dispatcher domain.EventDispatcher, log *logger.Logger) (logging.BackendRunner, error) {
	constructor, exists := f.constructors[backendType]
	if !exists {
		return nil, errors.NewResourceNotFoundError(fmt.Sprintf("backend type: %s", backendType))
	}

	backend, err := constructor(dispatcher, log)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeWriterInit, fmt.Sprintf("failed to construct backend of type %q", backendType), err)
	}
	return backend, nil
}

func (f *defaultFactory) RegisterBackendConstructor(backendType BackendType, constructor BackendConstructor) error {
	if constructor == nil {
		return errors.New(errors.ErrCodeConfiguration, "constructor cannot be nil")
	}
	if _, exists := f.constructors[backendType]; exists {
		return errors.New(errors.ErrCodeConfiguration, fmt.Sprintf("backend type %q already registered", backendType))
	}
	f.constructors[backendType] = constructor
	return nil
}

func (f *defaultFactory) GetSupportedBackends() []BackendType {
	backends := make([]BackendType, 0, len(f.constructors))
	for backendType := range f.constructors {
		backends = append(backends, backendType)
	}
	return backends
}

// globalFactory is the process-wide registry plugins register themselves
// into from their package init, the way the ascii plugin does.
var globalFactory = NewWriterFactory()

// RegisterBackend registers a backend constructor with the global factory.
func RegisterBackend(backendType BackendType, constructor BackendConstructor) error {
	return globalFactory.RegisterBackendConstructor(backendType, constructor)
}

// CreateBackend creates a backend using the global factory.
func CreateBackend(backendType BackendType, dispatcher domain.EventDispatcher, log *logger.Logger) (logging.BackendRunner, error) {
	return globalFactory.CreateBackend(backendType, dispatcher, log)
}

// GetSupportedBackends returns supported backend types from the global factory.
func GetSupportedBackends() []BackendType {
	return globalFactory.GetSupportedBackends()
}
