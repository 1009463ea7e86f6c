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

// Value holds one typed datum matching a Field. Present distinguishes an
// explicit unset value (Zeek's "-") from a present zero value; readers
// must check Present before trusting the payload.
type Value struct {
	Type    FieldType
	Present bool

	Bool   bool
	Int    int64
	Double float64
	Str    string

	// Vector holds the elements of a Set or Vector value, in order; a
	// Set's elements are unique by construction of the caller, not
	// enforced here.
	Vector []Value

	// Record holds the flattened leaf values of a nested Record value,
	// in schema order.
	Record []Value
}

func BoolValue(b bool) Value { return Value{Type: TypeBool, Present: true, Bool: b} }
func IntValue(i int64) Value { return Value{Type: TypeInt, Present: true, Int: i} }
func CountValue(c uint64) Value { return Value{Type: TypeCount, Present: true, Int: int64(c)} }
func DoubleValue(d float64) Value { return Value{Type: TypeDouble, Present: true, Double: d} }
func TimeValue(t float64) Value { return Value{Type: TypeTime, Present: true, Double: t} }
func IntervalValue(d float64) Value { return Value{Type: TypeInterval, Present: true, Double: d} }
func StringValue(s string) Value { return Value{Type: TypeString, Present: true, Str: s} }
func AddrValue(s string) Value { return Value{Type: TypeAddr, Present: true, Str: s} }
func SubnetValue(s string) Value { return Value{Type: TypeSubnet, Present: true, Str: s} }
func PortValue(p uint16) Value { return Value{Type: TypePort, Present: true, Int: int64(p)} }
func EnumValue(s string) Value { return Value{Type: TypeEnum, Present: true, Str: s} }

func VectorValue(elems ...Value) Value {
	return Value{Type: TypeVector, Present: true, Vector: elems}
}

func SetValue(elems ...Value) Value {
	return Value{Type: TypeSet, Present: true, Vector: elems}
}

func RecordValue(leaves ...Value) Value {
	return Value{Type: TypeRecord, Present: true, Record: leaves}
}

// TableValue builds a table-typed Value. Zeek tables are rendered on
// output the same way sets are, as a separator-joined list of their
// elements; a Value carries no distinct key/value structure to preserve.
func TableValue(elems ...Value) Value {
	return Value{Type: TypeTable, Present: true, Vector: elems}
}

// Unset returns the absent-value marker for the given type.
func Unset(t FieldType) Value {
	return Value{Type: t, Present: false}
}
