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
	"errors"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/binary"
	"github.com/confluentinc/avroconvert-go/schema"
)

type readStep func(d *binary.Decoder) (interface{}, error)

// resolver compiles the steps of one read plan. records holds the steps
// of record pairs being resolved, so recursive references call through.
type resolver struct {
	s       *Deserializer
	records map[pairKey]*readStep
	skips   map[uint64]*skipStep
}

func resolutionError(w, r schema.Schema, format string, args ...interface{}) *avroerr.Error {
	return avroerr.New(avroerr.ErrSchemaResolution, format, args...).WithSchema(w.String() + " -> " + r.String())
}

func incompatible(w, r schema.Schema) *avroerr.Error {
	return resolutionError(w, r, "cannot read %s as %s", w, r)
}

func (c *resolver) resolve(w, r schema.Schema) (readStep, error) {
	w = schema.Deref(w)
	r = schema.Deref(r)
	if _, ok := w.(*schema.RefSchema); ok {
		return nil, unresolved(w)
	}
	if _, ok := r.(*schema.RefSchema); ok {
		return nil, unresolved(r)
	}

	if wu, ok := w.(*schema.UnionSchema); ok {
		return c.resolveWriterUnion(wu, r)
	}
	if ru, ok := r.(*schema.UnionSchema); ok {
		return c.resolveReaderUnion(w, ru)
	}

	switch wt := w.(type) {
	case *schema.RecordSchema:
		rt, ok := r.(*schema.RecordSchema)
		if !ok {
			return nil, incompatible(w, r)
		}
		if err := c.checkNames(wt, rt); err != nil {
			return nil, err
		}
		key := pairKey{writer: wt.ID(), reader: rt.ID()}
		if p, ok := c.records[key]; ok {
			return func(d *binary.Decoder) (interface{}, error) {
				return (*p)(d)
			}, nil
		}
		p := new(readStep)
		c.records[key] = p
		step, err := c.resolveRecord(wt, rt)
		if err != nil {
			delete(c.records, key)
			return nil, err
		}
		*p = step
		return step, nil
	case *schema.EnumSchema:
		rt, ok := r.(*schema.EnumSchema)
		if !ok {
			return nil, incompatible(w, r)
		}
		if err := c.checkNames(wt, rt); err != nil {
			return nil, err
		}
		return resolveEnum(wt, rt), nil
	case *schema.FixedSchema:
		rt, ok := r.(*schema.FixedSchema)
		if !ok {
			return nil, incompatible(w, r)
		}
		if err := c.checkNames(wt, rt); err != nil {
			return nil, err
		}
		if wt.Size() != rt.Size() {
			return nil, resolutionError(w, r, "fixed size %d cannot be read as size %d", wt.Size(), rt.Size())
		}
		size := wt.Size()
		return func(d *binary.Decoder) (interface{}, error) {
			return d.ReadFixed(size)
		}, nil
	case *schema.ArraySchema:
		rt, ok := r.(*schema.ArraySchema)
		if !ok {
			return nil, incompatible(w, r)
		}
		items, err := c.resolve(wt.Items(), rt.Items())
		if err != nil {
			return nil, err
		}
		return readArray(items, c.s.Conf.MaxCollectionItems), nil
	case *schema.MapSchema:
		rt, ok := r.(*schema.MapSchema)
		if !ok {
			return nil, incompatible(w, r)
		}
		values, err := c.resolve(wt.Values(), rt.Values())
		if err != nil {
			return nil, err
		}
		return readMap(values, c.s.Conf.MaxCollectionItems), nil
	case *schema.PrimitiveSchema:
		if _, ok := r.(*schema.PrimitiveSchema); !ok {
			return nil, incompatible(w, r)
		}
		step := promote(w.Type(), r.Type())
		if step == nil {
			return nil, incompatible(w, r)
		}
		return step, nil
	}
	return nil, incompatible(w, r)
}

func (c *resolver) checkNames(w, r schema.NamedSchema) error {
	if !c.s.Conf.StrictNames || schema.NameMatches(w, r) {
		return nil
	}
	return resolutionError(w, r, "name %s does not match %s", w.FullName(), r.FullName())
}

// resolveWriterUnion dispatches on the branch index written in the data.
// Branches the reader cannot read fail only when the data selects them.
func (c *resolver) resolveWriterUnion(w *schema.UnionSchema, r schema.Schema) (readStep, error) {
	branches := w.Types()
	steps := make([]readStep, len(branches))
	readable := 0
	var firstErr error
	for i, b := range branches {
		step, err := c.resolve(b, r)
		if err != nil {
			if !isResolutionError(err) {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
			branchErr := err
			steps[i] = func(d *binary.Decoder) (interface{}, error) {
				return nil, avroerr.Wrap(avroerr.ErrSchemaResolution, branchErr, "writer union branch %d cannot be read", i).
					WithOffset(d.Offset())
			}
			continue
		}
		readable++
		steps[i] = step
	}
	if readable == 0 {
		return nil, avroerr.Wrap(avroerr.ErrSchemaResolution, firstErr, "no branch of %s can be read as %s", w, r).
			WithSchema(w.String() + " -> " + r.String())
	}
	return func(d *binary.Decoder) (interface{}, error) {
		start := d.Offset()
		i, err := d.ReadLong()
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= int64(len(steps)) {
			return nil, binary.Malformed(start, "union index %d out of range for %d branches", i, len(steps))
		}
		return steps[i](d)
	}, nil
}

// resolveReaderUnion reads a non-union writer as the first reader branch
// of the same kind and name, else the first branch the writer promotes to
func (c *resolver) resolveReaderUnion(w schema.Schema, r *schema.UnionSchema) (readStep, error) {
	for _, b := range r.Types() {
		if sameKind(w, schema.Deref(b)) {
			step, err := c.resolve(w, b)
			if err == nil {
				return step, nil
			}
			if !isResolutionError(err) {
				return nil, err
			}
		}
	}
	for _, b := range r.Types() {
		step, err := c.resolve(w, b)
		if err == nil {
			return step, nil
		}
		if !isResolutionError(err) {
			return nil, err
		}
	}
	return nil, resolutionError(w, r, "no branch of %s can read %s", r, w)
}

func sameKind(w, r schema.Schema) bool {
	if w.Type() != r.Type() {
		return false
	}
	wn, ok := w.(schema.NamedSchema)
	if !ok {
		return true
	}
	return schema.NameMatches(wn, r.(schema.NamedSchema))
}

func isResolutionError(err error) bool {
	return errors.Is(err, avroerr.ErrSchemaResolution) || errors.Is(err, avroerr.ErrMissingDefault)
}

// promote returns the step reading primitive w as primitive r, or nil
func promote(w, r schema.Type) readStep {
	switch w {
	case schema.Null:
		if r == schema.Null {
			return func(*binary.Decoder) (interface{}, error) { return nil, nil }
		}
	case schema.Boolean:
		if r == schema.Boolean {
			return func(d *binary.Decoder) (interface{}, error) { return d.ReadBoolean() }
		}
	case schema.Int:
		switch r {
		case schema.Int:
			return func(d *binary.Decoder) (interface{}, error) { return d.ReadInt() }
		case schema.Long:
			return func(d *binary.Decoder) (interface{}, error) {
				n, err := d.ReadInt()
				return int64(n), err
			}
		case schema.Float:
			return func(d *binary.Decoder) (interface{}, error) {
				n, err := d.ReadInt()
				return float32(n), err
			}
		case schema.Double:
			return func(d *binary.Decoder) (interface{}, error) {
				n, err := d.ReadInt()
				return float64(n), err
			}
		}
	case schema.Long:
		switch r {
		case schema.Long:
			return func(d *binary.Decoder) (interface{}, error) { return d.ReadLong() }
		case schema.Float:
			return func(d *binary.Decoder) (interface{}, error) {
				n, err := d.ReadLong()
				return float32(n), err
			}
		case schema.Double:
			return func(d *binary.Decoder) (interface{}, error) {
				n, err := d.ReadLong()
				return float64(n), err
			}
		}
	case schema.Float:
		switch r {
		case schema.Float:
			return func(d *binary.Decoder) (interface{}, error) { return d.ReadFloat() }
		case schema.Double:
			return func(d *binary.Decoder) (interface{}, error) {
				f, err := d.ReadFloat()
				return float64(f), err
			}
		}
	case schema.Double:
		if r == schema.Double {
			return func(d *binary.Decoder) (interface{}, error) { return d.ReadDouble() }
		}
	case schema.String, schema.Bytes:
		switch r {
		case schema.String:
			return func(d *binary.Decoder) (interface{}, error) { return d.ReadString() }
		case schema.Bytes:
			return func(d *binary.Decoder) (interface{}, error) { return d.ReadBytes() }
		}
	}
	return nil
}

func resolveEnum(w, r *schema.EnumSchema) readStep {
	wsyms := w.Symbols()
	symbols := make([]string, len(wsyms))
	known := make([]bool, len(wsyms))
	def, hasDef := r.Default()
	for i, sym := range wsyms {
		if _, ok := r.Index(sym); ok {
			symbols[i], known[i] = sym, true
		} else if hasDef {
			symbols[i], known[i] = def, true
		}
	}
	return func(d *binary.Decoder) (interface{}, error) {
		start := d.Offset()
		i, err := d.ReadInt()
		if err != nil {
			return nil, err
		}
		if i < 0 || int(i) >= len(symbols) {
			return nil, binary.Malformed(start, "enum index %d out of range for %s", i, w.FullName())
		}
		if !known[i] {
			return nil, avroerr.New(avroerr.ErrSchemaResolution, "symbol %s of %s is not a symbol of %s",
				wsyms[i], w.FullName(), r.FullName()).WithSchema(r.String()).WithOffset(start)
		}
		return symbols[i], nil
	}
}

// addItems adds a block of count items to total, failing once a
// collection would hold more than limit items
func addItems(total *int64, count, limit int64, start int64, what string) error {
	if limit > 0 && count > limit-*total {
		return binary.Malformed(start, "%s exceeds maximum of %d items", what, limit)
	}
	*total += count
	return nil
}

func readArray(items readStep, limit int64) readStep {
	return func(d *binary.Decoder) (interface{}, error) {
		start := d.Offset()
		out := make([]interface{}, 0)
		var total int64
		for {
			count, _, err := d.ReadBlockHeader()
			if err != nil {
				return nil, err
			}
			if count == 0 {
				return out, nil
			}
			if err := addItems(&total, count, limit, start, "array"); err != nil {
				return nil, err
			}
			for i := int64(0); i < count; i++ {
				item, err := items(d)
				if err != nil {
					return nil, err
				}
				out = append(out, item)
			}
		}
	}
}

func readMap(values readStep, limit int64) readStep {
	return func(d *binary.Decoder) (interface{}, error) {
		start := d.Offset()
		out := make(map[string]interface{})
		var total int64
		for {
			count, _, err := d.ReadBlockHeader()
			if err != nil {
				return nil, err
			}
			if count == 0 {
				return out, nil
			}
			if count > int64(d.Remaining()) {
				return nil, binary.Malformed(d.Offset(), "map block count %d exceeds input", count)
			}
			if err := addItems(&total, count, limit, start, "map"); err != nil {
				return nil, err
			}
			for i := int64(0); i < count; i++ {
				k, err := d.ReadString()
				if err != nil {
					return nil, err
				}
				v, err := values(d)
				if err != nil {
					return nil, avroerr.InField(err, k)
				}
				out[k] = v
			}
		}
	}
}
