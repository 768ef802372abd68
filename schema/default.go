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
	"math"
	"reflect"
	"strconv"

	"github.com/confluentinc/avroconvert-go/generic"
)

var errUnbound = errors.New("unbound reference")

type number interface {
	String() string
}

// normalizeDefault converts a default value, typically decoded from JSON,
// into the generic representation of s
func normalizeDefault(s Schema, v interface{}) (interface{}, error) {
	switch t := s.(type) {
	case *RefSchema:
		target := t.Schema()
		if target == nil {
			return nil, errUnbound
		}
		return normalizeDefault(target, v)
	case *UnionSchema:
		var firstErr error
		for _, b := range t.types {
			d, err := normalizeDefault(b, v)
			if err == nil || errors.Is(err, errUnbound) {
				return d, err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return nil, firstErr
	case *RecordSchema:
		return normalizeRecordDefault(t, v)
	case *EnumSchema:
		sym, ok := v.(string)
		if !ok {
			return nil, defaultError(s, v)
		}
		if _, ok := t.index[sym]; !ok {
			return nil, validationError("default %q is not a symbol of %s", sym, t.full)
		}
		return sym, nil
	case *FixedSchema:
		b, ok := defaultBytes(v)
		if !ok || len(b) != t.size {
			return nil, defaultError(s, v)
		}
		return b, nil
	case *ArraySchema:
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return nil, defaultError(s, v)
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			item, err := normalizeDefault(t.items, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	case *MapSchema:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, defaultError(s, v)
		}
		out := make(map[string]interface{}, len(m))
		for k, item := range m {
			d, err := normalizeDefault(t.values, item)
			if err != nil {
				return nil, err
			}
			out[k] = d
		}
		return out, nil
	}

	switch s.Type() {
	case Null:
		if v != nil {
			return nil, defaultError(s, v)
		}
		return nil, nil
	case Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case Int:
		if i, ok := defaultInt(v); ok && i >= math.MinInt32 && i <= math.MaxInt32 {
			return int32(i), nil
		}
	case Long:
		if i, ok := defaultInt(v); ok {
			return i, nil
		}
	case Float:
		if f, ok := defaultFloat(v); ok {
			return float32(f), nil
		}
	case Double:
		if f, ok := defaultFloat(v); ok {
			return f, nil
		}
	case Bytes:
		if b, ok := defaultBytes(v); ok {
			return b, nil
		}
	case String:
		if str, ok := v.(string); ok {
			return str, nil
		}
	}
	return nil, defaultError(s, v)
}

func normalizeRecordDefault(r *RecordSchema, v interface{}) (interface{}, error) {
	get := func(string) (interface{}, bool) { return nil, false }
	switch m := v.(type) {
	case map[string]interface{}:
		get = func(name string) (interface{}, bool) {
			item, ok := m[name]
			return item, ok
		}
	case *generic.Record:
		get = m.Get
	default:
		return nil, defaultError(r, v)
	}
	out := generic.NewRecord(r.full, len(r.fields))
	for _, f := range r.fields {
		item, ok := get(f.name)
		if !ok {
			if !f.hasDef {
				return nil, validationError("default of %s has no value for field %s", r.full, f.name)
			}
			item = f.rawDef
		}
		d, err := normalizeDefault(f.typ, item)
		if err != nil {
			return nil, err
		}
		out.Append(f.name, d)
	}
	return out, nil
}

func defaultError(s Schema, v interface{}) error {
	return validationError("default value %v (%T) does not match %s", v, v, s)
}

func defaultInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return defaultInt(float64(n))
	case number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		return i, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, false
		}
		return int64(rv.Uint()), true
	}
	return 0, false
}

func defaultFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case number:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	}
	if i, ok := defaultInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// defaultBytes accepts a byte slice, or a string whose code points are the
// byte values
func defaultBytes(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		out := make([]byte, len(b))
		copy(out, b)
		return out, true
	case string:
		out := make([]byte, 0, len(b))
		for _, r := range b {
			if r > 0xff {
				return nil, false
			}
			out = append(out, byte(r))
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		out := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(out), rv)
		return out, true
	}
	return nil, false
}
