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

// Record is one row of typed values, positionally matching a Fields
// schema. Once handed to a Frontend's Write, a Record is considered
// moved: callers must not read or mutate it afterwards.
type Record struct {
	Values []Value
}

// NewRecord builds a Record from its values in schema order.
func NewRecord(values ...Value) Record {
	return Record{Values: values}
}

// Validate checks that row has exactly one value per field and that every
// present value's type matches its field's declared type.
func Validate(fields []Field, row Record) error {
	if len(row.Values) != len(fields) {
		return fmt.Errorf("record has %d values, schema expects %d", len(row.Values), len(fields))
	}
	for i, f := range fields {
		v := row.Values[i]
		if !v.Present {
			if !f.Optional {
				return fmt.Errorf("field %q is unset but not optional", f.Name)
			}
			continue
		}
		if v.Type != f.Type {
			return fmt.Errorf("field %q expects type %s, got %s", f.Name, f.Type, v.Type)
		}
	}
	return nil
}
