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

import "strings"

// UnionSchema is an ordered set of alternative branches
type UnionSchema struct {
	properties
	types     []Schema
	nullIndex int
}

// NewUnion creates a union node. Branches may not be unions, and may not
// repeat an unnamed kind or a named type's full name.
func NewUnion(types []Schema, opts ...Option) (*UnionSchema, error) {
	if len(types) == 0 {
		return nil, validationError("union has no branches")
	}
	seen := make(map[string]bool, len(types))
	nullIndex := -1
	for i, t := range types {
		if t == nil {
			return nil, validationError("union branch %d is nil", i)
		}
		var key string
		switch b := t.(type) {
		case *UnionSchema:
			return nil, validationError("union branch %d is a nested union", i)
		case NamedSchema:
			key = b.FullName()
		case *RefSchema:
			key = b.full
		default:
			key = string(t.Type())
		}
		if seen[key] {
			return nil, validationError("union has duplicate branch %s", key)
		}
		seen[key] = true
		if t.Type() == Null {
			nullIndex = i
		}
	}
	branches := make([]Schema, len(types))
	copy(branches, types)
	return &UnionSchema{properties: newProperties(applyOptions(opts)), types: branches, nullIndex: nullIndex}, nil
}

// Type returns Union
func (s *UnionSchema) Type() Type {
	return Union
}

// Types returns the branches in declaration order
func (s *UnionSchema) Types() []Schema {
	return s.types
}

// NullIndex returns the index of the null branch, or -1
func (s *UnionSchema) NullIndex() int {
	return s.nullIndex
}

// Nullable reports whether the union has a null branch
func (s *UnionSchema) Nullable() bool {
	return s.nullIndex >= 0
}

// String returns a short description
func (s *UnionSchema) String() string {
	parts := make([]string, len(s.types))
	for i, t := range s.types {
		parts[i] = describe(t)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
