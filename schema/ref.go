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

import "sync/atomic"

// RefSchema refers to a named node by full name. It is how a record refers
// to itself or to a type defined elsewhere in the same tree. References are
// bound when the enclosing record is constructed.
type RefSchema struct {
	properties
	full   string
	target atomic.Pointer[namedBox]
}

type namedBox struct {
	s NamedSchema
}

// NewRef creates an unbound reference. A name without a namespace is also
// looked up in the namespace of the enclosing record.
func NewRef(fullName string) *RefSchema {
	return &RefSchema{properties: newProperties(&options{}), full: fullName}
}

// RefTo creates a reference already bound to s
func RefTo(s NamedSchema) *RefSchema {
	r := NewRef(s.FullName())
	r.target.Store(&namedBox{s: s})
	return r
}

// Type returns Ref
func (s *RefSchema) Type() Type {
	return Ref
}

// FullName returns the referenced name
func (s *RefSchema) FullName() string {
	return s.full
}

// Schema returns the referenced node, or nil if the reference is unbound
func (s *RefSchema) Schema() NamedSchema {
	if b := s.target.Load(); b != nil {
		return b.s
	}
	return nil
}

func (s *RefSchema) bind(target NamedSchema) {
	s.target.CompareAndSwap(nil, &namedBox{s: target})
}

// String returns a short description
func (s *RefSchema) String() string {
	return "ref " + s.full
}
