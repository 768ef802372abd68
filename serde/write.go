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
	"sort"
	"strconv"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/binary"
	"github.com/confluentinc/avroconvert-go/schema"
)

type writeStep func(e *binary.Encoder, v interface{}) error

// writeCompiler compiles the steps of one write plan. records holds the
// steps of records being compiled, so recursive references call through.
type writeCompiler struct {
	s         *Serializer
	records   map[uint64]*writeStep
	fieldSets map[uint64][]*fieldWriter
	defaults  []*fieldWriter
}

func newWriteCompiler(s *Serializer) *writeCompiler {
	return &writeCompiler{
		s:         s,
		records:   make(map[uint64]*writeStep),
		fieldSets: make(map[uint64][]*fieldWriter),
	}
}

// finish encodes the field defaults once every record step is in place
func (c *writeCompiler) finish() error {
	for _, f := range c.defaults {
		if err := f.encodeDefault(); err != nil {
			return err
		}
	}
	return nil
}

func unresolved(s schema.Schema) error {
	return avroerr.New(avroerr.ErrSchemaValidation, "unresolved reference %s", s.(*schema.RefSchema).FullName()).WithSchema(s.String())
}

func (c *writeCompiler) compile(s schema.Schema) (writeStep, error) {
	s = schema.Deref(s)
	switch t := s.(type) {
	case *schema.RefSchema:
		return nil, unresolved(t)
	case *schema.RecordSchema:
		if p, ok := c.records[t.ID()]; ok {
			return func(e *binary.Encoder, v interface{}) error {
				return (*p)(e, v)
			}, nil
		}
		p := new(writeStep)
		c.records[t.ID()] = p
		step, err := c.compileRecord(t)
		if err != nil {
			return nil, err
		}
		*p = step
		return step, nil
	case *schema.UnionSchema:
		return c.compileUnion(t)
	case *schema.ArraySchema:
		return c.compileArray(t)
	case *schema.MapSchema:
		return c.compileMap(t)
	case *schema.EnumSchema:
		return writeEnum(t), nil
	case *schema.FixedSchema:
		return writeFixed(t), nil
	case *schema.PrimitiveSchema:
		return writePrimitive(t)
	}
	return nil, avroerr.New(avroerr.ErrSchemaValidation, "unsupported schema %s", s)
}

func writePrimitive(s *schema.PrimitiveSchema) (writeStep, error) {
	logical := s.Logical()
	switch s.Type() {
	case schema.Null:
		return func(e *binary.Encoder, v interface{}) error {
			if !isNullish(v) {
				return mismatch(v, s)
			}
			return nil
		}, nil
	case schema.Boolean:
		return func(e *binary.Encoder, v interface{}) error {
			switch b := v.(type) {
			case bool:
				e.WriteBoolean(b)
				return nil
			case *bool:
				if b != nil {
					e.WriteBoolean(*b)
					return nil
				}
			}
			rv := reflect.ValueOf(indirect(v))
			if rv.Kind() != reflect.Bool {
				return mismatch(v, s)
			}
			e.WriteBoolean(rv.Bool())
			return nil
		}, nil
	case schema.Int:
		return func(e *binary.Encoder, v interface{}) error {
			if n, ok := v.(int32); ok {
				e.WriteInt(n)
				return nil
			}
			v = indirect(v)
			n, ok := logicalInt64(logical, v)
			if !ok {
				n, ok = toInt64(v)
			}
			if !ok || n < math.MinInt32 || n > math.MaxInt32 {
				return mismatch(v, s)
			}
			e.WriteInt(int32(n))
			return nil
		}, nil
	case schema.Long:
		return func(e *binary.Encoder, v interface{}) error {
			if n, ok := v.(int64); ok {
				e.WriteLong(n)
				return nil
			}
			v = indirect(v)
			n, ok := logicalInt64(logical, v)
			if !ok {
				n, ok = toInt64(v)
			}
			if !ok {
				return mismatch(v, s)
			}
			e.WriteLong(n)
			return nil
		}, nil
	case schema.Float:
		return func(e *binary.Encoder, v interface{}) error {
			if f, ok := v.(float32); ok {
				e.WriteFloat(f)
				return nil
			}
			f, ok := toFloat64(indirect(v))
			if !ok || !fitsFloat32(f) {
				return mismatch(v, s)
			}
			e.WriteFloat(float32(f))
			return nil
		}, nil
	case schema.Double:
		return func(e *binary.Encoder, v interface{}) error {
			f, ok := toFloat64(indirect(v))
			if !ok {
				return mismatch(v, s)
			}
			e.WriteDouble(f)
			return nil
		}, nil
	case schema.Bytes:
		return func(e *binary.Encoder, v interface{}) error {
			v = indirect(v)
			if b, ok := toBytes(v); ok {
				e.WriteBytes(b)
				return nil
			}
			if str, ok := v.(string); ok {
				e.WriteString(str)
				return nil
			}
			return mismatch(v, s)
		}, nil
	case schema.String:
		return func(e *binary.Encoder, v interface{}) error {
			v = indirect(v)
			if str, ok := toString(v); ok {
				e.WriteString(str)
				return nil
			}
			if b, ok := v.([]byte); ok {
				e.WriteBytes(b)
				return nil
			}
			return mismatch(v, s)
		}, nil
	}
	return nil, avroerr.New(avroerr.ErrSchemaValidation, "unknown primitive type %q", s.Type())
}

func writeEnum(s *schema.EnumSchema) writeStep {
	return func(e *binary.Encoder, v interface{}) error {
		v = indirect(v)
		if sym, ok := toString(v); ok {
			i, ok := s.Index(sym)
			if !ok {
				return avroerr.New(avroerr.ErrTypeMismatch, "%q is not a symbol of %s", sym, s.FullName()).WithSchema(s.String())
			}
			e.WriteInt(int32(i))
			return nil
		}
		if i, ok := toInt64(v); ok {
			if _, ok := s.Symbol(int(i)); ok && i <= math.MaxInt32 {
				e.WriteInt(int32(i))
				return nil
			}
			return avroerr.New(avroerr.ErrTypeMismatch, "index %d is out of range for %s", i, s.FullName()).WithSchema(s.String())
		}
		return mismatch(v, s)
	}
}

func writeFixed(s *schema.FixedSchema) writeStep {
	return func(e *binary.Encoder, v interface{}) error {
		b, ok := toBytes(indirect(v))
		if !ok {
			return mismatch(v, s)
		}
		if len(b) != s.Size() {
			return avroerr.New(avroerr.ErrTypeMismatch, "%d bytes written as %s", len(b), s).WithSchema(s.String())
		}
		e.WriteFixed(b)
		return nil
	}
}

func (c *writeCompiler) compileArray(s *schema.ArraySchema) (writeStep, error) {
	items, err := c.compile(s.Items())
	if err != nil {
		return nil, err
	}
	blockLength := c.s.Conf.BlockLength
	sized := c.s.Conf.WriteBlockSizes
	return func(e *binary.Encoder, v interface{}) error {
		if list, ok := v.([]interface{}); ok {
			return writeBlocks(e, len(list), blockLength, sized, func(i int) error {
				return items(e, list[i])
			})
		}
		rv := reflect.ValueOf(indirect(v))
		if v == nil || (rv.Kind() == reflect.Slice && rv.IsNil()) {
			e.WriteBlockEnd()
			return nil
		}
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return mismatch(v, s)
		}
		return writeBlocks(e, rv.Len(), blockLength, sized, func(i int) error {
			return items(e, rv.Index(i).Interface())
		})
	}, nil
}

// writeBlocks writes n items in blocks of at most blockLength items
func writeBlocks(e *binary.Encoder, n, blockLength int, sized bool, item func(i int) error) error {
	if blockLength <= 0 {
		blockLength = n
	}
	for start := 0; start < n; start += blockLength {
		end := start + blockLength
		if end > n {
			end = n
		}
		mark := -1
		if sized {
			mark = e.BeginBlock()
		} else {
			e.WriteBlockHeader(int64(end - start))
		}
		for i := start; i < end; i++ {
			if err := item(i); err != nil {
				return avroerr.InField(err, "["+strconv.Itoa(i)+"]")
			}
		}
		if sized {
			e.EndBlock(mark, int64(end-start), true)
		}
	}
	e.WriteBlockEnd()
	return nil
}

func (c *writeCompiler) compileMap(s *schema.MapSchema) (writeStep, error) {
	values, err := c.compile(s.Values())
	if err != nil {
		return nil, err
	}
	blockLength := c.s.Conf.BlockLength
	sized := c.s.Conf.WriteBlockSizes
	sortKeys := c.s.Conf.SortMapKeys
	return func(e *binary.Encoder, v interface{}) error {
		if m, ok := v.(map[string]interface{}); ok {
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			if sortKeys {
				sort.Strings(keys)
			}
			return writeBlocks(e, len(keys), blockLength, sized, func(i int) error {
				e.WriteString(keys[i])
				return avroerr.InField(values(e, m[keys[i]]), keys[i])
			})
		}
		rv := reflect.ValueOf(indirect(v))
		if v == nil || (rv.Kind() == reflect.Map && rv.IsNil()) {
			e.WriteBlockEnd()
			return nil
		}
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return mismatch(v, s)
		}
		keys := rv.MapKeys()
		if sortKeys {
			sort.Slice(keys, func(i, j int) bool {
				return keys[i].String() < keys[j].String()
			})
		}
		return writeBlocks(e, len(keys), blockLength, sized, func(i int) error {
			e.WriteString(keys[i].String())
			return avroerr.InField(values(e, rv.MapIndex(keys[i]).Interface()), keys[i].String())
		})
	}, nil
}

func (c *writeCompiler) compileUnion(s *schema.UnionSchema) (writeStep, error) {
	branches := s.Types()
	steps := make([]writeStep, len(branches))
	matchers := make([]matcher, len(branches))
	for i, b := range branches {
		step, err := c.compile(b)
		if err != nil {
			return nil, err
		}
		steps[i] = step
		matchers[i] = c.matcher(b)
	}
	return func(e *binary.Encoder, v interface{}) error {
		for i, m := range matchers {
			if m(v) {
				e.WriteLong(int64(i))
				return steps[i](e, v)
			}
		}
		return avroerr.New(avroerr.ErrTypeMismatch, "no branch of union %s accepts %T", s, v).WithSchema(s.String())
	}, nil
}
