/**
 * Copyright 2024 Confluent Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package schema

// PrimitiveSchema is one of null, boolean, int, long, float, double,
// bytes or string
type PrimitiveSchema struct {
	properties
	typ Type
}

// NewPrimitive creates a primitive node. A logical type that does not apply
// to typ is ignored.
func NewPrimitive(typ Type, opts ...Option) *PrimitiveSchema {
	o := applyOptions(opts)
	if !logicalApplies(o.logical, typ, 0) {
		o.logical = NoLogical
	}
	return &PrimitiveSchema{properties: newProperties(o), typ: typ}
}

// Type returns the kind of the node
func (s *PrimitiveSchema) Type() Type {
	return s.typ
}

// String returns the type name, with the logical type if any
func (s *PrimitiveSchema) String() string {
	if s.logical != NoLogical {
		return string(s.typ) + "(" + string(s.logical) + ")"
	}
	return string(s.typ)
}

func logicalApplies(l LogicalType, typ Type, size int) bool {
	switch l {
	case NoLogical:
		return true
	case Date, TimeMillis:
		return typ == Int
	case TimeMicros, TimestampMillis, TimestampMicros:
		return typ == Long
	case UUID:
		return typ == String || (typ == Fixed && size == 16)
	}
	return false
}
