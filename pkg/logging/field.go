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

// FieldType enumerates the value types a Field can carry.
type FieldType uint8

const (
	TypeBool FieldType = iota
	TypeInt
	TypeCount
	TypeDouble
	TypeTime
	TypeInterval
	TypeString
	TypeAddr
	TypeSubnet
	TypePort
	TypeEnum
	TypeSet
	TypeVector
	TypeTable
	TypeRecord
)

func (t FieldType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeCount:
		return "count"
	case TypeDouble:
		return "double"
	case TypeTime:
		return "time"
	case TypeInterval:
		return "interval"
	case TypeString:
		return "string"
	case TypeAddr:
		return "addr"
	case TypeSubnet:
		return "subnet"
	case TypePort:
		return "port"
	case TypeEnum:
		return "enum"
	case TypeSet:
		return "set"
	case TypeVector:
		return "vector"
	case TypeTable:
		return "table"
	case TypeRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Field describes one column of a Record's schema: its name, its type,
// and — for the container types Set, Vector and Record — the structure
// of what it contains. A Record field is flattened on output into one
// column per leaf field, named "<field>.<subfield>".
type Field struct {
	Name     string
	Type     FieldType
	Optional bool
	Inner    *Field
	Fields   []Field
}

// Flatten expands a schema into the leaf columns a plugin actually
// writes, turning nested Record fields into dotted names the way Zeek's
// ascii writer does for its header line.
func Flatten(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, flattenOne(f, "")...)
	}
	return out
}

func flattenOne(f Field, prefix string) []Field {
	name := f.Name
	if prefix != "" {
		name = prefix + "." + f.Name
	}
	if f.Type != TypeRecord || len(f.Fields) == 0 {
		f.Name = name
		return []Field{f}
	}
	out := make([]Field, 0, len(f.Fields))
	for _, sub := range f.Fields {
		out = append(out, flattenOne(sub, name)...)
	}
	return out
}
