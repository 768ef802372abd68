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

import "strconv"

// FixedSchema is a named sequence of exactly Size bytes
type FixedSchema struct {
	properties
	name
	size int
}

// NewFixed creates a fixed node
func NewFixed(fullName string, size int, opts ...Option) (*FixedSchema, error) {
	o := applyOptions(opts)
	n, err := newName(fullName, o)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, validationError("fixed %s has negative size %d", n.full, size)
	}
	if !logicalApplies(o.logical, Fixed, size) {
		o.logical = NoLogical
	}
	return &FixedSchema{properties: newProperties(o), name: n, size: size}, nil
}

// Type returns Fixed
func (s *FixedSchema) Type() Type {
	return Fixed
}

// Size returns the number of bytes
func (s *FixedSchema) Size() int {
	return s.size
}

// String returns a short description
func (s *FixedSchema) String() string {
	return "fixed " + s.full + "[" + strconv.Itoa(s.size) + "]"
}
