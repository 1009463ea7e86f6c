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

package ascii

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bobertjmurphy/zeek/pkg/logging"
)

const (
	tsEpoch   = "epoch"
	tsMillis  = "millis"
	tsISO8601 = "iso8601"
)

// jsonFormatter renders a record as a single JSON object keyed by the
// (already dotted) leaf field names. It never writes a header, since the
// schema travels with every line.
type jsonFormatter struct {
	timestampFormat string
}

func newJSONFormatter(timestampFormat string) *jsonFormatter {
	return &jsonFormatter{timestampFormat: timestampFormat}
}

func (f *jsonFormatter) Format(fields []logging.Field, values []logging.Value) (string, error) {
	if len(fields) != len(values) {
		return "", fmt.Errorf("%d fields but %d values", len(fields), len(values))
	}
	obj := make(map[string]interface{}, len(fields))
	for i, fld := range fields {
		v, err := f.formatValue(fld, values[i])
		if err != nil {
			return "", fmt.Errorf("field %q: %w", fld.Name, err)
		}
		if v == nil {
			continue
		}
		obj[fld.Name] = v
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f *jsonFormatter) formatValue(fld logging.Field, v logging.Value) (interface{}, error) {
	if !v.Present {
		return nil, nil
	}
	switch v.Type {
	case logging.TypeBool:
		return v.Bool, nil
	case logging.TypeInt, logging.TypeCount, logging.TypePort:
		return v.Int, nil
	case logging.TypeTime:
		return f.formatTime(v.Double), nil
	case logging.TypeDouble, logging.TypeInterval:
		return v.Double, nil
	case logging.TypeString, logging.TypeAddr, logging.TypeSubnet, logging.TypeEnum:
		return v.Str, nil
	case logging.TypeSet, logging.TypeVector, logging.TypeTable:
		out := make([]interface{}, 0, len(v.Vector))
		for _, e := range v.Vector {
			ev, err := f.formatValue(fld, e)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported field type %s", v.Type)
	}
}

func (f *jsonFormatter) formatTime(t float64) interface{} {
	switch f.timestampFormat {
	case tsMillis:
		return int64(t * 1000)
	case tsISO8601:
		return time.Unix(int64(t), 0).UTC().Format(time.RFC3339)
	default:
		return t
	}
}
