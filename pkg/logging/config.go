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

import "strconv"

// ConfigResolver implements the three-tier lookup BaseWriterBackend uses
// for per-backend options: a backend-name-prefixed override
// ("<backend>:key") takes precedence over the unprefixed key in the
// filter's own config table, which in turn takes precedence over the
// backend's compiled-in defaults.
type ConfigResolver struct {
	backendName string
	defaults    map[string]string
	config      map[string]string
}

// NewConfigResolver builds a resolver for backendName, composing defaults
// (the backend's own GetDefaultConfigMap, already merged with any
// superclass defaults such as BatchBackend's) with the filter's config
// table from WriterInfo.
func NewConfigResolver(backendName string, defaults, config map[string]string) *ConfigResolver {
	return &ConfigResolver{backendName: backendName, defaults: defaults, config: config}
}

// GetConfigString resolves key, returning ok=false if it is set nowhere.
func (r *ConfigResolver) GetConfigString(key string) (string, bool) {
	if v, ok := r.config[r.backendName+":"+key]; ok {
		return v, true
	}
	if v, ok := r.config[key]; ok {
		return v, true
	}
	if v, ok := r.defaults[key]; ok {
		return v, true
	}
	return "", false
}

// GetConfigBool resolves key as a boolean, treating "T"/"true"/"1" as
// true and "F"/"false"/"0" as false, the way Zeek's option strings do.
func (r *ConfigResolver) GetConfigBool(key string, def bool) bool {
	v, ok := r.GetConfigString(key)
	if !ok {
		return def
	}
	switch v {
	case "T", "t", "true", "1":
		return true
	case "F", "f", "false", "0":
		return false
	default:
		return def
	}
}

// GetConfigInt resolves key as an integer, falling back to def if unset
// or unparseable.
func (r *ConfigResolver) GetConfigInt(key string, def int) int {
	v, ok := r.GetConfigString(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetConfigFloat resolves key as a float64, falling back to def if unset
// or unparseable.
func (r *ConfigResolver) GetConfigFloat(key string, def float64) float64 {
	v, ok := r.GetConfigString(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
