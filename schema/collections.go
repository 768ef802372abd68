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

// ArraySchema is a sequence of Items
type ArraySchema struct {
	properties
	items Schema
}

// NewArray creates an array node
func NewArray(items Schema, opts ...Option) *ArraySchema {
	return &ArraySchema{properties: newProperties(applyOptions(opts)), items: items}
}

// Type returns Array
func (s *ArraySchema) Type() Type {
	return Array
}

// Items returns the element schema
func (s *ArraySchema) Items() Schema {
	return s.items
}

// String returns a short description
func (s *ArraySchema) String() string {
	return "array<" + describe(s.items) + ">"
}

var mapKeys = NewPrimitive(String)

// MapSchema is a string keyed map of Values
type MapSchema struct {
	properties
	values Schema
}

// NewMap creates a map node
func NewMap(values Schema, opts ...Option) *MapSchema {
	return &MapSchema{properties: newProperties(applyOptions(opts)), values: values}
}

// Type returns Map
func (s *MapSchema) Type() Type {
	return Map
}

// Keys returns the key schema, always a string
func (s *MapSchema) Keys() Schema {
	return mapKeys
}

// Values returns the value schema
func (s *MapSchema) Values() Schema {
	return s.values
}

// String returns a short description
func (s *MapSchema) String() string {
	return "map<" + describe(s.values) + ">"
}

// describe avoids recursing into named nodes
func describe(s Schema) string {
	if n, ok := s.(NamedSchema); ok {
		return n.FullName()
	}
	return s.String()
}
