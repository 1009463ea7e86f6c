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

// WriterInfo carries the per-filter configuration a Frontend hands to its
// Backend at Init time: where to write, how often to rotate, and the
// backend-specific config table (tsv, gzip_level, and so on).
type WriterInfo struct {
	Path             string
	RotationInterval float64 // seconds; 0 disables rotation
	RotationBase     float64 // unix time the first rotation is anchored to
	NetworkTime      float64 // logical/simulation time; 0 means "use wall clock"
	Config           map[string]string
}

// WireWriterInfo is the ordered encoding used to move a WriterInfo across
// the frontend/backend channel boundary, mirroring the vector order
// BaseWriterBackend::WriterInfo::ToBroker() produces: path, rotation_base,
// rotation_interval, network_time, config.
type WireWriterInfo struct {
	Path             string
	RotationBase     float64
	RotationInterval float64
	NetworkTime      float64
	Config           map[string]string
}

// Encode converts a WriterInfo to its wire form.
func (w WriterInfo) Encode() WireWriterInfo {
	cfg := make(map[string]string, len(w.Config))
	for k, v := range w.Config {
		cfg[k] = v
	}
	return WireWriterInfo{
		Path:             w.Path,
		RotationBase:     w.RotationBase,
		RotationInterval: w.RotationInterval,
		NetworkTime:      w.NetworkTime,
		Config:           cfg,
	}
}

// DecodeWriterInfo converts a wire-form WriterInfo back into its native
// representation. decode(encode(w)) == w for every WriterInfo w.
func DecodeWriterInfo(w WireWriterInfo) WriterInfo {
	cfg := make(map[string]string, len(w.Config))
	for k, v := range w.Config {
		cfg[k] = v
	}
	return WriterInfo{
		Path:             w.Path,
		RotationInterval: w.RotationInterval,
		RotationBase:     w.RotationBase,
		NetworkTime:      w.NetworkTime,
		Config:           cfg,
	}
}
