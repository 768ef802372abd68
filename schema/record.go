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

import (
	"errors"
	"strings"

	"github.com/confluentinc/avroconvert-go/avroerr"
)

// Field is a named member of a record
type Field struct {
	name    string
	aliases []string
	typ     Schema
	rawDef  interface{}
	def     interface{}
	hasDef  bool
	pending bool
	index   int
	doc     string
	props   map[string]interface{}
}

// FieldOption configures the construction of a Field
type FieldOption func(*Field)

// WithDefault sets the default value of a field. JSON decoded values are
// accepted and normalized to the generic value representation when the
// enclosing record is constructed.
func WithDefault(v interface{}) FieldOption {
	return func(f *Field) {
		f.rawDef = v
		f.hasDef = true
	}
}

// WithFieldAliases sets alternative names a reader matches the field by
func WithFieldAliases(aliases ...string) FieldOption {
	return func(f *Field) {
		f.aliases = aliases
	}
}

// WithFieldDoc sets the documentation of a field
func WithFieldDoc(doc string) FieldOption {
	return func(f *Field) {
		f.doc = doc
	}
}

// WithFieldProps sets custom attributes of a field
func WithFieldProps(props map[string]interface{}) FieldOption {
	return func(f *Field) {
		f.props = props
	}
}

// NewField creates a record field
func NewField(name string, typ Schema, opts ...FieldOption) (*Field, error) {
	if err := validateIdentifier(name); err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, validationError("field %s has no type", name)
	}
	f := &Field{name: name, typ: typ}
	for _, opt := range opts {
		opt(f)
	}
	for _, a := range f.aliases {
		if err := validateIdentifier(a); err != nil {
			return nil, avroerr.InField(err, name)
		}
	}
	return f, nil
}

// Name returns the field name
func (f *Field) Name() string {
	return f.name
}

// Aliases returns the field aliases
func (f *Field) Aliases() []string {
	return f.aliases
}

// Type returns the field schema
func (f *Field) Type() Schema {
	return f.typ
}

// Index returns the declaration position of the field in its record
func (f *Field) Index() int {
	return f.index
}

// Doc returns the field documentation
func (f *Field) Doc() string {
	return f.doc
}

// Prop returns a custom attribute
func (f *Field) Prop(name string) interface{} {
	if f.props == nil {
		return nil
	}
	return f.props[name]
}

// Props returns all custom attributes
func (f *Field) Props() map[string]interface{} {
	return f.props
}

// HasDefault reports whether the field declares a default. A declared null
// default counts.
func (f *Field) HasDefault() bool {
	return f.hasDef
}

// Default returns the normalized default value. The value is shared and
// must not be modified; use generic.Clone to obtain a private copy.
func (f *Field) Default() (interface{}, error) {
	if f.pending {
		return nil, validationError("default of field %s refers to an unresolved type", f.name)
	}
	return f.def, nil
}

// Matches reports whether name equals the field name or one of its aliases
func (f *Field) Matches(name string) bool {
	if f.name == name {
		return true
	}
	for _, a := range f.aliases {
		if a == name {
			return true
		}
	}
	return false
}

// RecordSchema is a named sequence of fields
type RecordSchema struct {
	properties
	name
	fields []*Field
	byName map[string]*Field
}

// NewRecord creates a record node. References inside the record tree are
// bound to the record itself, to named types nested in it, or to the names
// registry given with WithNames. Field defaults are validated once
// references are bound.
func NewRecord(fullName string, fields []*Field, opts ...Option) (*RecordSchema, error) {
	o := applyOptions(opts)
	n, err := newName(fullName, o)
	if err != nil {
		return nil, err
	}
	rec := &RecordSchema{
		properties: newProperties(o),
		name:       n,
		fields:     make([]*Field, len(fields)),
		byName:     make(map[string]*Field, len(fields)),
	}
	for i, f := range fields {
		if f == nil {
			return nil, validationError("record %s: field %d is nil", n.full, i)
		}
		if _, dup := rec.byName[f.name]; dup {
			return nil, validationError("record %s: duplicate field %s", n.full, f.name)
		}
		c := *f
		c.index = i
		c.pending = c.hasDef
		rec.fields[i] = &c
		rec.byName[c.name] = &c
	}

	named := make(map[string]NamedSchema)
	var records []*RecordSchema
	var collectErr *avroerr.Error
	walk(rec, func(s Schema) {
		ns, ok := s.(NamedSchema)
		if !ok || collectErr != nil {
			return
		}
		if r, ok := s.(*RecordSchema); ok {
			records = append(records, r)
		}
		if existing, ok := named[ns.FullName()]; ok {
			if !sameDefinition(existing, ns) {
				collectErr = validationError("name %s is defined more than once", ns.FullName())
			}
			return
		}
		named[ns.FullName()] = ns
	})
	if collectErr != nil {
		return nil, collectErr.WithSchema(rec.String())
	}
	if o.names != nil {
		for _, ns := range named {
			if err := o.names.Register(ns); err != nil {
				return nil, err
			}
		}
	}

	lookup := func(full string) (NamedSchema, bool) {
		for _, candidate := range []string{full, qualify(full, n.namespace)} {
			if ns, ok := named[candidate]; ok {
				return ns, true
			}
			if o.names != nil {
				if ns, ok := o.names.Lookup(candidate); ok {
					return ns, true
				}
			}
		}
		return nil, false
	}
	walk(rec, func(s Schema) {
		if ref, ok := s.(*RefSchema); ok && ref.Schema() == nil {
			if target, ok := lookup(ref.full); ok {
				ref.bind(target)
			}
		}
	})

	for _, r := range records {
		for _, f := range r.fields {
			if !f.pending {
				continue
			}
			def, err := normalizeDefault(f.typ, f.rawDef)
			if errors.Is(err, errUnbound) {
				continue
			}
			if err != nil {
				return nil, avroerr.InField(err, f.name)
			}
			f.def = def
			f.pending = false
		}
	}
	return rec, nil
}

// Type returns Record
func (s *RecordSchema) Type() Type {
	return Record
}

// Fields returns the fields in declaration order
func (s *RecordSchema) Fields() []*Field {
	return s.fields
}

// Field returns the field with the given name
func (s *RecordSchema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// FieldByNameOrAlias returns the field matching name, first by field name,
// then by field alias, then case-insensitively by field name
func (s *RecordSchema) FieldByNameOrAlias(name string) (*Field, bool) {
	if f, ok := s.byName[name]; ok {
		return f, true
	}
	for _, f := range s.fields {
		if f.Matches(name) {
			return f, true
		}
	}
	for _, f := range s.fields {
		if strings.EqualFold(f.name, name) {
			return f, true
		}
	}
	return nil, false
}

// String returns a short description
func (s *RecordSchema) String() string {
	return "record " + s.full
}

// walk visits every node reachable from s without following references,
// visiting each record once
func walk(s Schema, visit func(Schema)) {
	seen := make(map[*RecordSchema]bool)
	var rec func(Schema)
	rec = func(s Schema) {
		if r, ok := s.(*RecordSchema); ok {
			if seen[r] {
				return
			}
			seen[r] = true
		}
		visit(s)
		switch t := s.(type) {
		case *RecordSchema:
			for _, f := range t.fields {
				rec(f.typ)
			}
		case *ArraySchema:
			rec(t.items)
		case *MapSchema:
			rec(t.values)
		case *UnionSchema:
			for _, b := range t.types {
				rec(b)
			}
		}
	}
	rec(s)
}
