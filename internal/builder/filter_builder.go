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

package builder

import (
	"github.com/bobertjmurphy/zeek/internal/errors"
	"github.com/bobertjmurphy/zeek/pkg/logging"
)

// FilterBuilder provides a fluent interface for building the WriterInfo
// one filter hands to a writer backend at Init.
type FilterBuilder struct {
	info logging.WriterInfo
}

// NewFilterBuilder creates a new FilterBuilder with default values.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		info: logging.WriterInfo{
			Config: make(map[string]string),
		},
	}
}

// WithPath sets the filter's destination path.
func (b *FilterBuilder) WithPath(path string) *FilterBuilder {
	b.info.Path = path
	return b
}

// WithRotationInterval sets the filter's periodic rotation interval, in
// seconds; 0 disables rotation.
func (b *FilterBuilder) WithRotationInterval(intervalSecs float64) *FilterBuilder {
	b.info.RotationInterval = intervalSecs
	return b
}

// WithRotationBase sets the unix time the first rotation is anchored to.
func (b *FilterBuilder) WithRotationBase(base float64) *FilterBuilder {
	b.info.RotationBase = base
	return b
}

// WithNetworkTime sets the logical/simulation time rotation is computed
// against instead of the wall clock; 0 means "use wall clock".
func (b *FilterBuilder) WithNetworkTime(networkTime float64) *FilterBuilder {
	b.info.NetworkTime = networkTime
	return b
}

// WithConfig sets one key/value pair in the filter's resolved config,
// e.g. "tsv" or "ascii:gzip_level".
func (b *FilterBuilder) WithConfig(key, value string) *FilterBuilder {
	b.info.Config[key] = value
	return b
}

// Build validates and returns the built WriterInfo.
func (b *FilterBuilder) Build() (logging.WriterInfo, error) {
	if b.info.Path == "" {
		return logging.WriterInfo{}, errors.NewConfigurationError("filter path cannot be empty", nil)
	}
	return b.info, nil
}

// MustBuild builds the WriterInfo and panics on error. Use this only
// when the path is known to be set, such as in tests.
func (b *FilterBuilder) MustBuild() logging.WriterInfo {
	info, err := b.Build()
	if err != nil {
		panic(err)
	}
	return info
}
