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
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/confluentinc/avroconvert-go/generic"
	"github.com/confluentinc/avroconvert-go/schema"
)

// matcher reports whether a union branch accepts a runtime value. Numeric
// branches accept values they can hold without loss.
type matcher func(v interface{}) bool

func (c *writeCompiler) matcher(s schema.Schema) matcher {
	s = schema.Deref(s)
	logical := s.Logical()
	switch t := s.(type) {
	case *schema.RecordSchema:
		return c.recordMatcher(t)
	case *schema.EnumSchema:
		return func(v interface{}) bool {
			sym, ok := toString(indirect(v))
			if !ok {
				return false
			}
			_, ok = t.Index(sym)
			return ok
		}
	case *schema.FixedSchema:
		return func(v interface{}) bool {
			v = indirect(v)
			if !isBytesValue(v) {
				_, isUUID := v.(uuid.UUID)
				return isUUID && t.Size() == 16
			}
			b, _ := toBytes(v)
			return len(b) == t.Size()
		}
	case *schema.ArraySchema:
		return func(v interface{}) bool {
			v = indirect(v)
			if isNullish(v) || isBytesValue(v) {
				return false
			}
			k := reflect.TypeOf(v).Kind()
			return k == reflect.Slice || k == reflect.Array
		}
	case *schema.MapSchema:
		return func(v interface{}) bool {
			v = indirect(v)
			if isNullish(v) {
				return false
			}
			rt := reflect.TypeOf(v)
			return rt.Kind() == reflect.Map && rt.Key().Kind() == reflect.String
		}
	}

	switch s.Type() {
	case schema.Null:
		return isNullish
	case schema.Boolean:
		return func(v interface{}) bool {
			v = indirect(v)
			return v != nil && reflect.TypeOf(v).Kind() == reflect.Bool
		}
	case schema.Int:
		return func(v interface{}) bool {
			v = indirect(v)
			if n, ok := logicalInt64(logical, v); ok {
				return n >= math.MinInt32 && n <= math.MaxInt32
			}
			if isTimeValue(v) {
				return false
			}
			n, ok := toInt64(v)
			return ok && n >= math.MinInt32 && n <= math.MaxInt32
		}
	case schema.Long:
		return func(v interface{}) bool {
			v = indirect(v)
			if _, ok := logicalInt64(logical, v); ok {
				return true
			}
			if isTimeValue(v) {
				return false
			}
			_, ok := toInt64(v)
			return ok
		}
	case schema.Float:
		return func(v interface{}) bool {
			return losslessFloat(indirect(v), 1<<24, func(f float64) bool {
				return math.IsNaN(f) || float64(float32(f)) == f
			})
		}
	case schema.Double:
		return func(v interface{}) bool {
			return losslessFloat(indirect(v), 1<<53, func(float64) bool { return true })
		}
	case schema.Bytes:
		return func(v interface{}) bool {
			return isBytesValue(indirect(v))
		}
	case schema.String:
		return func(v interface{}) bool {
			_, ok := toString(indirect(v))
			return ok
		}
	}
	return func(interface{}) bool { return false }
}

// losslessFloat accepts integers within ±exact and floats accepted by fits
func losslessFloat(v interface{}, exact int64, fits func(float64) bool) bool {
	if v == nil || isTimeValue(v) {
		return false
	}
	if isIntegerKind(reflect.TypeOf(v).Kind()) {
		n, ok := toInt64(v)
		return ok && n >= -exact && n <= exact
	}
	f, ok := toFloat64(v)
	return ok && fits(f)
}

func isTimeValue(v interface{}) bool {
	switch v.(type) {
	case time.Time, time.Duration:
		return true
	}
	return false
}

// recordMatcher accepts a generic record built for the same name, a map
// holding every field the record requires, or a struct the record can be
// written from
func (c *writeCompiler) recordMatcher(r *schema.RecordSchema) matcher {
	return func(v interface{}) bool {
		switch t := v.(type) {
		case *generic.Record:
			if t == nil {
				return false
			}
			if t.Name() != "" {
				return t.Name() == r.FullName() || strings.EqualFold(lastSegment(t.Name()), r.Name())
			}
			return hasRequired(r, t.Get)
		case map[string]interface{}:
			if t == nil {
				return false
			}
			return hasRequired(r, func(name string) (interface{}, bool) {
				return lookupMap(t, name)
			})
		}
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Ptr && !rv.IsNil() {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct || rv.Type() == timeType {
			return false
		}
		_, err := c.s.structPlan(r, c.fieldSets[r.ID()], rv.Type())
		return err == nil
	}
}

func hasRequired(r *schema.RecordSchema, get func(string) (interface{}, bool)) bool {
	for _, f := range r.Fields() {
		if f.HasDefault() || schema.IsNullable(f.Type()) {
			continue
		}
		if _, ok := lookupField(f, get); !ok {
			return false
		}
	}
	return true
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
