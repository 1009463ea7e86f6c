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
	"fmt"
	"strconv"
	"strings"

	"github.com/bobertjmurphy/zeek/pkg/logging"
)

// formatter renders one record's leaf values as a single output line, in
// whatever shape the configured mode (plain/TSV or JSON) calls for.
type formatter interface {
	Format(leafFields []logging.Field, leafValues []logging.Value) (string, error)
}

// flattenValues walks values in lockstep with fields, expanding nested
// Record values into their leaf values in the same order logging.Flatten
// expands their schema, so the two always line up index-for-index.
func flattenValues(fields []logging.Field, values []logging.Value) []logging.Value {
	out := make([]logging.Value, 0, len(fields))
	for i, f := range fields {
		if f.Type == logging.TypeRecord && len(f.Fields) > 0 {
			v := values[i]
			if v.Present {
				out = append(out, flattenValues(f.Fields, v.Record)...)
			} else {
				out = append(out, flattenUnset(f.Fields)...)
			}
			continue
		}
		out = append(out, values[i])
	}
	return out
}

func flattenUnset(fields []logging.Field) []logging.Value {
	out := make([]logging.Value, 0, len(fields))
	for _, f := range fields {
		if f.Type == logging.TypeRecord && len(f.Fields) > 0 {
			out = append(out, flattenUnset(f.Fields)...)
			continue
		}
		out = append(out, logging.Unset(f.Type))
	}
	return out
}

// asciiFormatter renders a record as fields joined by separator, the
// plain and TSV modes differing only in the header line written once at
// DoInit, not in how records themselves are formatted.
type asciiFormatter struct {
	separator    string
	setSeparator string
	emptyField   string
	unsetField   string
}

func newAsciiFormatter(separator, setSeparator, emptyField, unsetField string) *asciiFormatter {
	return &asciiFormatter{
		separator:    separator,
		setSeparator: setSeparator,
		emptyField:   emptyField,
		unsetField:   unsetField,
	}
}

func (f *asciiFormatter) Format(fields []logging.Field, values []logging.Value) (string, error) {
	if len(fields) != len(values) {
		return "", fmt.Errorf("%d fields but %d values", len(fields), len(values))
	}
	parts := make([]string, len(values))
	for i, v := range values {
		s, err := f.formatValue(v)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", fields[i].Name, err)
		}
		parts[i] = s
	}
	return strings.Join(parts, f.separator), nil
}

func (f *asciiFormatter) formatValue(v logging.Value) (string, error) {
	if !v.Present {
		return f.unsetField, nil
	}
	switch v.Type {
	case logging.TypeBool:
		if v.Bool {
			return "T", nil
		}
		return "F", nil
	case logging.TypeInt, logging.TypeCount, logging.TypePort:
		return strconv.FormatInt(v.Int, 10), nil
	case logging.TypeDouble, logging.TypeTime, logging.TypeInterval:
		return strconv.FormatFloat(v.Double, 'f', 6, 64), nil
	case logging.TypeString, logging.TypeAddr, logging.TypeSubnet, logging.TypeEnum:
		if v.Str == "" {
			return f.emptyField, nil
		}
		return v.Str, nil
	case logging.TypeSet, logging.TypeVector, logging.TypeTable:
		if len(v.Vector) == 0 {
			return f.emptyField, nil
		}
		elems := make([]string, len(v.Vector))
		for i, e := range v.Vector {
			s, err := f.formatValue(e)
			if err != nil {
				return "", err
			}
			elems[i] = s
		}
		return strings.Join(elems, f.setSeparator), nil
	default:
		return "", fmt.Errorf("unsupported field type %s", v.Type)
	}
}

// escapeHeaderValue renders control characters the way Zeek's ASCII
// header does, so a tab separator shows up in a log's #separator line as
// "\x09" rather than a literal tab.
func escapeHeaderValue(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			fmt.Fprintf(&sb, "\\x%02x", r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
