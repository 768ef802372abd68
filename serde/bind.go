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

	"github.com/google/uuid"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/descriptor"
	"github.com/confluentinc/avroconvert-go/generic"
	"github.com/confluentinc/avroconvert-go/schema"
)

// bindStep stores a generic value in an addressable destination
type bindStep func(v interface{}, dst reflect.Value) error

type binder struct {
	s       *Deserializer
	records map[bindKey]*bindStep
}

func cannotBind(s schema.Schema, t reflect.Type) *avroerr.Error {
	return avroerr.New(avroerr.ErrTypeMismatch, "%s cannot be stored in %s", s, t).WithSchema(s.String())
}

func bindMismatch(v interface{}, s schema.Schema, t reflect.Type) *avroerr.Error {
	return avroerr.New(avroerr.ErrTypeMismatch, "cannot store %T of %s in %s", v, s, t).WithSchema(s.String())
}

func (b *binder) compile(s schema.Schema, t reflect.Type) (bindStep, error) {
	s = schema.Deref(s)
	if _, ok := s.(*schema.RefSchema); ok {
		return nil, unresolved(s)
	}

	switch t.Kind() {
	case reflect.Interface:
		return func(v interface{}, dst reflect.Value) error {
			if v == nil {
				dst.Set(reflect.Zero(t))
				return nil
			}
			rv := reflect.ValueOf(v)
			if !rv.Type().AssignableTo(t) {
				return bindMismatch(v, s, t)
			}
			dst.Set(rv)
			return nil
		}, nil
	case reflect.Ptr:
		elem, err := b.compile(s, t.Elem())
		if err != nil {
			return nil, err
		}
		return func(v interface{}, dst reflect.Value) error {
			if v == nil {
				dst.Set(reflect.Zero(t))
				return nil
			}
			p := reflect.New(t.Elem())
			if err := elem(v, p.Elem()); err != nil {
				return err
			}
			dst.Set(p)
			return nil
		}, nil
	}

	switch st := s.(type) {
	case *schema.UnionSchema:
		return b.compileUnion(st, t)
	case *schema.RecordSchema:
		key := bindKey{reader: st.ID(), typ: t}
		if p, ok := b.records[key]; ok {
			return func(v interface{}, dst reflect.Value) error {
				return (*p)(v, dst)
			}, nil
		}
		p := new(bindStep)
		b.records[key] = p
		step, err := b.compileRecord(st, t)
		if err != nil {
			delete(b.records, key)
			return nil, err
		}
		*p = step
		return step, nil
	case *schema.EnumSchema:
		return bindEnum(st, t)
	case *schema.FixedSchema:
		return bindBytes(st, t)
	case *schema.ArraySchema:
		return b.compileArray(st, t)
	case *schema.MapSchema:
		return b.compileMap(st, t)
	}

	switch s.Type() {
	case schema.Null:
		return func(_ interface{}, dst reflect.Value) error {
			dst.Set(reflect.Zero(t))
			return nil
		}, nil
	case schema.Boolean:
		if t.Kind() != reflect.Bool {
			return nil, cannotBind(s, t)
		}
		return func(v interface{}, dst reflect.Value) error {
			bv, ok := v.(bool)
			if !ok {
				return bindMismatch(v, s, t)
			}
			dst.SetBool(bv)
			return nil
		}, nil
	case schema.Int, schema.Long:
		return bindInteger(s, t)
	case schema.Float, schema.Double:
		return bindFloat(s, t)
	case schema.Bytes:
		return bindBytes(s, t)
	case schema.String:
		return bindString(s, t)
	}
	return nil, cannotBind(s, t)
}

func bindInteger(s schema.Schema, t reflect.Type) (bindStep, error) {
	logical := s.Logical()
	if t == timeType || t == durationType {
		if zero, ok := logicalTime(logical, 0); !ok || reflect.TypeOf(zero) != t {
			return nil, cannotBind(s, t)
		}
		return func(v interface{}, dst reflect.Value) error {
			n, ok := toInt64(v)
			if !ok {
				return bindMismatch(v, s, t)
			}
			tv, _ := logicalTime(logical, n)
			dst.Set(reflect.ValueOf(tv))
			return nil
		}, nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(v interface{}, dst reflect.Value) error {
			n, ok := toInt64(v)
			if !ok || dst.OverflowInt(n) {
				return bindMismatch(v, s, t)
			}
			dst.SetInt(n)
			return nil
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(v interface{}, dst reflect.Value) error {
			n, ok := toInt64(v)
			if !ok || n < 0 || dst.OverflowUint(uint64(n)) {
				return bindMismatch(v, s, t)
			}
			dst.SetUint(uint64(n))
			return nil
		}, nil
	case reflect.Float32, reflect.Float64:
		return bindFloat(s, t)
	}
	return nil, cannotBind(s, t)
}

func bindFloat(s schema.Schema, t reflect.Type) (bindStep, error) {
	if t.Kind() != reflect.Float32 && t.Kind() != reflect.Float64 {
		return nil, cannotBind(s, t)
	}
	return func(v interface{}, dst reflect.Value) error {
		f, ok := toFloat64(v)
		if !ok || (t.Kind() == reflect.Float32 && !fitsFloat32(f)) {
			return bindMismatch(v, s, t)
		}
		dst.SetFloat(f)
		return nil
	}, nil
}

func bindBytes(s schema.Schema, t reflect.Type) (bindStep, error) {
	switch {
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return func(v interface{}, dst reflect.Value) error {
			bv, ok := v.([]byte)
			if !ok {
				return bindMismatch(v, s, t)
			}
			c := reflect.MakeSlice(t, len(bv), len(bv))
			reflect.Copy(c, reflect.ValueOf(bv))
			dst.Set(c)
			return nil
		}, nil
	case t.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint8:
		return func(v interface{}, dst reflect.Value) error {
			bv, ok := v.([]byte)
			if !ok || len(bv) != t.Len() {
				return bindMismatch(v, s, t)
			}
			reflect.Copy(dst, reflect.ValueOf(bv))
			return nil
		}, nil
	case t.Kind() == reflect.String:
		return func(v interface{}, dst reflect.Value) error {
			bv, ok := v.([]byte)
			if !ok {
				return bindMismatch(v, s, t)
			}
			dst.SetString(string(bv))
			return nil
		}, nil
	}
	return nil, cannotBind(s, t)
}

func bindString(s schema.Schema, t reflect.Type) (bindStep, error) {
	switch {
	case t == uuidType:
		return func(v interface{}, dst reflect.Value) error {
			str, ok := v.(string)
			if !ok {
				return bindMismatch(v, s, t)
			}
			id, err := uuid.Parse(str)
			if err != nil {
				return avroerr.Wrap(avroerr.ErrTypeMismatch, err, "invalid uuid %q", str).WithSchema(s.String())
			}
			dst.Set(reflect.ValueOf(id))
			return nil
		}, nil
	case t.Kind() == reflect.String:
		return func(v interface{}, dst reflect.Value) error {
			str, ok := v.(string)
			if !ok {
				return bindMismatch(v, s, t)
			}
			dst.SetString(str)
			return nil
		}, nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return func(v interface{}, dst reflect.Value) error {
			str, ok := v.(string)
			if !ok {
				return bindMismatch(v, s, t)
			}
			dst.Set(reflect.ValueOf([]byte(str)).Convert(t))
			return nil
		}, nil
	}
	return nil, cannotBind(s, t)
}

func bindEnum(s *schema.EnumSchema, t reflect.Type) (bindStep, error) {
	switch {
	case t.Kind() == reflect.String:
		return func(v interface{}, dst reflect.Value) error {
			sym, ok := v.(string)
			if !ok {
				return bindMismatch(v, s, t)
			}
			dst.SetString(sym)
			return nil
		}, nil
	case isIntegerKind(t.Kind()):
		return func(v interface{}, dst reflect.Value) error {
			sym, _ := v.(string)
			i, ok := s.Index(sym)
			if !ok {
				return bindMismatch(v, s, t)
			}
			if t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uintptr {
				dst.SetUint(uint64(i))
			} else {
				dst.SetInt(int64(i))
			}
			return nil
		}, nil
	}
	return nil, cannotBind(s, t)
}

func (b *binder) compileArray(s *schema.ArraySchema, t reflect.Type) (bindStep, error) {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return nil, cannotBind(s, t)
	}
	elem, err := b.compile(s.Items(), t.Elem())
	if err != nil {
		return nil, err
	}
	return func(v interface{}, dst reflect.Value) error {
		list, ok := v.([]interface{})
		if !ok {
			return bindMismatch(v, s, t)
		}
		target := dst
		if t.Kind() == reflect.Slice {
			target = reflect.MakeSlice(t, len(list), len(list))
		} else if len(list) > t.Len() {
			return avroerr.New(avroerr.ErrTypeMismatch, "%d items do not fit in %s", len(list), t).WithSchema(s.String())
		}
		for i, item := range list {
			if err := elem(item, target.Index(i)); err != nil {
				return err
			}
		}
		if t.Kind() == reflect.Slice {
			dst.Set(target)
		}
		return nil
	}, nil
}

func (b *binder) compileMap(s *schema.MapSchema, t reflect.Type) (bindStep, error) {
	if t.Kind() != reflect.Map || t.Key().Kind() != reflect.String {
		return nil, cannotBind(s, t)
	}
	elem, err := b.compile(s.Values(), t.Elem())
	if err != nil {
		return nil, err
	}
	return func(v interface{}, dst reflect.Value) error {
		m, ok := v.(map[string]interface{})
		if !ok {
			return bindMismatch(v, s, t)
		}
		out := reflect.MakeMapWithSize(t, len(m))
		for k, item := range m {
			ev := reflect.New(t.Elem()).Elem()
			if err := elem(item, ev); err != nil {
				return avroerr.InField(err, k)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
		}
		dst.Set(out)
		return nil
	}, nil
}

type unionBranchBind struct {
	schema schema.Schema
	step   bindStep
}

// compileUnion binds the branches that fit t. The branch is picked at
// runtime from the generic value.
func (b *binder) compileUnion(s *schema.UnionSchema, t reflect.Type) (bindStep, error) {
	var branches []unionBranchBind
	var firstErr error
	for _, br := range s.Types() {
		br = schema.Deref(br)
		if br.Type() == schema.Null {
			continue
		}
		step, err := b.compile(br, t)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		branches = append(branches, unionBranchBind{schema: br, step: step})
	}
	if len(branches) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return func(_ interface{}, dst reflect.Value) error {
			dst.Set(reflect.Zero(t))
			return nil
		}, nil
	}
	return func(v interface{}, dst reflect.Value) error {
		if v == nil {
			dst.Set(reflect.Zero(t))
			return nil
		}
		if len(branches) == 1 {
			return branches[0].step(v, dst)
		}
		for _, br := range branches {
			if genericMatches(br.schema, v) {
				return br.step(v, dst)
			}
		}
		return bindMismatch(v, s, t)
	}, nil
}

// genericMatches reports whether a generic value was read as s
func genericMatches(s schema.Schema, v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return s.Type() == schema.Boolean
	case int32:
		return s.Type() == schema.Int
	case int64:
		return s.Type() == schema.Long
	case float32:
		return s.Type() == schema.Float
	case float64:
		return s.Type() == schema.Double
	case string:
		if e, ok := s.(*schema.EnumSchema); ok {
			_, known := e.Index(t)
			return known
		}
		return s.Type() == schema.String
	case []byte:
		if f, ok := s.(*schema.FixedSchema); ok {
			return len(t) == f.Size()
		}
		return s.Type() == schema.Bytes
	case []interface{}:
		return s.Type() == schema.Array
	case map[string]interface{}:
		return s.Type() == schema.Map
	case *generic.Record:
		r, ok := s.(*schema.RecordSchema)
		return ok && t.Name() == r.FullName()
	}
	return false
}

type recordMemberBind struct {
	name   string
	member *descriptor.Field
	step   bindStep
}

func (b *binder) compileRecord(s *schema.RecordSchema, t reflect.Type) (bindStep, error) {
	if t.Kind() == reflect.Map && t.Key().Kind() == reflect.String {
		return b.compileRecordMap(s, t)
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return nil, cannotBind(s, t)
	}
	shape, err := b.s.shapes.Shape(t)
	if err != nil {
		return nil, avroerr.Wrap(avroerr.ErrTypeMismatch, err, "%s cannot be stored in %s", s, t).WithSchema(s.String())
	}
	var members []recordMemberBind
	for _, f := range s.Fields() {
		member, ok := shape.Lookup(append([]string{f.Name()}, f.Aliases()...)...)
		if !ok {
			continue
		}
		step, err := b.compile(f.Type(), member.Type)
		if err != nil {
			return nil, avroerr.InField(err, f.Name())
		}
		members = append(members, recordMemberBind{name: f.Name(), member: member, step: step})
	}
	return func(v interface{}, dst reflect.Value) error {
		rec, ok := v.(*generic.Record)
		if !ok || rec == nil {
			return bindMismatch(v, s, t)
		}
		target := dst
		if !dst.CanAddr() {
			target = reflect.New(t).Elem()
		}
		ptr := target.Addr().UnsafePointer()
		for _, m := range members {
			fv, ok := rec.Get(m.name)
			if !ok {
				continue
			}
			if err := m.step(fv, m.member.Addr(ptr)); err != nil {
				return avroerr.InField(err, m.name)
			}
		}
		if !dst.CanAddr() {
			dst.Set(target)
		}
		return nil
	}, nil
}

func (b *binder) compileRecordMap(s *schema.RecordSchema, t reflect.Type) (bindStep, error) {
	steps := make([]bindStep, len(s.Fields()))
	for i, f := range s.Fields() {
		step, err := b.compile(f.Type(), t.Elem())
		if err != nil {
			return nil, avroerr.InField(err, f.Name())
		}
		steps[i] = step
	}
	fields := s.Fields()
	return func(v interface{}, dst reflect.Value) error {
		rec, ok := v.(*generic.Record)
		if !ok || rec == nil {
			return bindMismatch(v, s, t)
		}
		out := reflect.MakeMapWithSize(t, len(fields))
		for i, f := range fields {
			fv, ok := rec.Get(f.Name())
			if !ok {
				continue
			}
			ev := reflect.New(t.Elem()).Elem()
			if err := steps[i](fv, ev); err != nil {
				return avroerr.InField(err, f.Name())
			}
			out.SetMapIndex(reflect.ValueOf(f.Name()).Convert(t.Key()), ev)
		}
		dst.Set(out)
		return nil
	}, nil
}
