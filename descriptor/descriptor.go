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

// Package descriptor describes Go struct types as ordered lists of named
// members with precomputed accessors.
package descriptor

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/modern-go/reflect2"
)

const (
	// TagName is the struct tag holding the Avro field name. A value of
	// "-" excludes the member.
	TagName = "avro"
	// AliasesTagName is the struct tag holding comma separated aliases
	AliasesTagName = "avro_aliases"
)

// Field is a member of a struct shape
type Field struct {
	// Name is the Avro field name
	Name string
	// Aliases are alternative Avro field names
	Aliases []string
	// Type is the Go type of the member
	Type reflect.Type

	offset uintptr
	typ2   reflect2.Type
}

// Get returns the member value of the struct at ptr
func (f *Field) Get(ptr unsafe.Pointer) interface{} {
	return f.typ2.UnsafeIndirect(unsafe.Add(ptr, f.offset))
}

// Addr returns the addressable member of the struct at ptr
func (f *Field) Addr(ptr unsafe.Pointer) reflect.Value {
	return reflect.NewAt(f.Type, unsafe.Add(ptr, f.offset)).Elem()
}

// Matches reports whether name equals the field name or one of its
// aliases, ignoring case
func (f *Field) Matches(name string) bool {
	if strings.EqualFold(f.Name, name) {
		return true
	}
	for _, a := range f.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// Shape is the ordered member list of a struct type
type Shape struct {
	id     uint64
	typ    reflect.Type
	fields []*Field
}

// ID returns the identity of the shape
func (s *Shape) ID() uint64 {
	return s.id
}

// Type returns the struct type
func (s *Shape) Type() reflect.Type {
	return s.typ
}

// Fields returns the members in declaration order, embedded structs
// flattened in place
func (s *Shape) Fields() []*Field {
	return s.fields
}

// Lookup returns the member matching any of names. Exact name matches win
// over alias and case-insensitive matches.
func (s *Shape) Lookup(names ...string) (*Field, bool) {
	for _, n := range names {
		for _, f := range s.fields {
			if f.Name == n {
				return f, true
			}
		}
	}
	for _, n := range names {
		for _, f := range s.fields {
			if f.Matches(n) {
				return f, true
			}
		}
	}
	return nil, false
}

// Pointer returns a pointer to the struct held by v, which must be a value
// or a non-nil pointer of the shape's type. Struct values are copied.
func (s *Shape) Pointer(v interface{}) unsafe.Pointer {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		return rv.UnsafePointer()
	}
	box := reflect.New(s.typ)
	box.Elem().Set(rv)
	return box.UnsafePointer()
}

// Provider returns the shape of a struct type
type Provider interface {
	Shape(t reflect.Type) (*Shape, error)
}

var lastShapeID atomic.Uint64

// StructProvider builds shapes from struct tags and caches them per type.
// It is safe for concurrent use.
type StructProvider struct {
	shapes sync.Map
}

// NewStructProvider creates a StructProvider
func NewStructProvider() *StructProvider {
	return &StructProvider{}
}

// Shape returns the shape of t, a struct or pointer to struct type
func (p *StructProvider) Shape(t reflect.Type) (*Shape, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := p.shapes.Load(t); ok {
		return cached.(*Shape), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct type", t)
	}
	s := &Shape{id: lastShapeID.Add(1), typ: t}
	s.fields = collectFields(t, 0, nil)
	actual, _ := p.shapes.LoadOrStore(t, s)
	return actual.(*Shape), nil
}

func collectFields(t reflect.Type, base uintptr, fields []*Field) []*Field {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		if sf.Anonymous && tag == "" && sf.Type.Kind() == reflect.Struct {
			fields = collectFields(sf.Type, base+sf.Offset, fields)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag != "" {
			name = tag
		}
		var aliases []string
		if a := sf.Tag.Get(AliasesTagName); a != "" {
			for _, alias := range strings.Split(a, ",") {
				if alias = strings.TrimSpace(alias); alias != "" {
					aliases = append(aliases, alias)
				}
			}
		}
		fields = append(fields, &Field{
			Name:    name,
			Aliases: aliases,
			Type:    sf.Type,
			offset:  base + sf.Offset,
			typ2:    reflect2.Type2(sf.Type),
		})
	}
	return fields
}
