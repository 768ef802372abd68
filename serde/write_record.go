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

package serde

import (
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/binary"
	"github.com/confluentinc/avroconvert-go/descriptor"
	"github.com/confluentinc/avroconvert-go/generic"
	"github.com/confluentinc/avroconvert-go/schema"
)

// fieldWriter writes one record field. An absent value takes the default,
// else null. A nil value is written as null when the field admits it.
type fieldWriter struct {
	field    *schema.Field
	record   *schema.RecordSchema
	names    []string
	step     writeStep
	def      []byte
	hasDef   bool
	nullable bool
}

func (f *fieldWriter) encodeDefault() error {
	def, err := f.field.Default()
	if err != nil {
		return avroerr.InField(err, f.field.Name())
	}
	e := binary.NewEncoder(nil)
	if err := f.step(e, def); err != nil {
		return avroerr.Wrap(avroerr.ErrSchemaValidation, err, "default of field %s cannot be encoded", f.field.Name()).
			WithSchema(f.record.String())
	}
	f.def = e.Bytes()
	return nil
}

func (f *fieldWriter) missing() error {
	return avroerr.New(avroerr.ErrRequiredFieldMissing, "no value for field %s", f.field.Name()).
		WithSchema(f.record.String())
}

func (f *fieldWriter) write(e *binary.Encoder, v interface{}, found bool) error {
	if found && isNil(v) && f.nullable {
		return f.step(e, nil)
	}
	if !found || isNil(v) {
		if f.hasDef {
			e.WriteFixed(f.def)
			return nil
		}
		if f.nullable {
			return f.step(e, nil)
		}
		return f.missing()
	}
	return f.step(e, v)
}

// lookupField finds the value of f by name, then by alias
func lookupField(f *schema.Field, get func(string) (interface{}, bool)) (interface{}, bool) {
	if v, ok := get(f.Name()); ok {
		return v, true
	}
	for _, a := range f.Aliases() {
		if v, ok := get(a); ok {
			return v, true
		}
	}
	return nil, false
}

// lookupMap is an exact, then case-insensitive, map lookup
func lookupMap(m map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func (c *writeCompiler) compileRecord(r *schema.RecordSchema) (writeStep, error) {
	fields := make([]*fieldWriter, len(r.Fields()))
	for i, f := range r.Fields() {
		step, err := c.compile(f.Type())
		if err != nil {
			return nil, avroerr.InField(err, f.Name())
		}
		fw := &fieldWriter{
			field:    f,
			record:   r,
			names:    append([]string{f.Name()}, f.Aliases()...),
			step:     step,
			hasDef:   f.HasDefault(),
			nullable: schema.IsNullable(f.Type()),
		}
		if fw.hasDef {
			c.defaults = append(c.defaults, fw)
		}
		fields[i] = fw
	}
	c.fieldSets[r.ID()] = fields
	s := c.s

	return func(e *binary.Encoder, v interface{}) error {
		switch t := v.(type) {
		case *generic.Record:
			if t == nil {
				return mismatch(v, r)
			}
			for _, f := range fields {
				val, ok := lookupField(f.field, t.Get)
				if err := f.write(e, val, ok); err != nil {
					return avroerr.InField(err, f.field.Name())
				}
			}
			return nil
		case map[string]interface{}:
			if t == nil {
				return mismatch(v, r)
			}
			get := func(name string) (interface{}, bool) {
				return lookupMap(t, name)
			}
			for _, f := range fields {
				val, ok := lookupField(f.field, get)
				if err := f.write(e, val, ok); err != nil {
					return avroerr.InField(err, f.field.Name())
				}
			}
			return nil
		}
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				return mismatch(v, r)
			}
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return mismatch(v, r)
		}
		plan, err := s.structPlan(r, fields, rv.Type())
		if err != nil {
			return err
		}
		target := v
		if rv.CanAddr() {
			target = rv.Addr().Interface()
		}
		return plan.write(e, target)
	}, nil
}

// structPlan binds the fields of a record to the members of a struct type
type structPlan struct {
	shape     *descriptor.Shape
	fields    []*fieldWriter
	accessors []*descriptor.Field
}

func (p *structPlan) write(e *binary.Encoder, v interface{}) error {
	ptr := p.shape.Pointer(v)
	for i, f := range p.fields {
		var err error
		if acc := p.accessors[i]; acc != nil {
			err = f.write(e, acc.Get(ptr), true)
		} else {
			err = f.write(e, nil, false)
		}
		if err != nil {
			return avroerr.InField(err, f.field.Name())
		}
	}
	return nil
}

func (s *Serializer) structPlan(r *schema.RecordSchema, fields []*fieldWriter, t reflect.Type) (*structPlan, error) {
	shape, err := s.shapes.Shape(t)
	if err != nil {
		return nil, avroerr.Wrap(avroerr.ErrTypeMismatch, err, "cannot write %s as %s", t, r).WithSchema(r.String())
	}
	key := structKey{record: r.ID(), shape: shape.ID()}
	if cached, ok := s.structPlans.Get(key); ok {
		return cached.(*structPlan), nil
	}
	plan := &structPlan{shape: shape, fields: fields, accessors: make([]*descriptor.Field, len(fields))}
	for i, f := range fields {
		acc, ok := shape.Lookup(f.names...)
		if !ok && !f.hasDef && !f.nullable {
			return nil, avroerr.New(avroerr.ErrRequiredFieldMissing, "%s has no member for field %s", t, f.field.Name()).
				WithSchema(r.String())
		}
		plan.accessors[i] = acc
	}
	s.structPlans.Put(key, plan)
	s.logger.Debug("compiled struct plan", zap.Stringer("schema", r), zap.Stringer("type", t))
	return plan, nil
}
