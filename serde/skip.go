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
	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/binary"
	"github.com/confluentinc/avroconvert-go/schema"
)

type skipStep func(d *binary.Decoder) error

// skip compiles a step discarding a value written with s. Sized blocks are
// skipped without decoding their items.
func (c *resolver) skip(s schema.Schema) (skipStep, error) {
	s = schema.Deref(s)
	switch t := s.(type) {
	case *schema.RefSchema:
		return nil, unresolved(t)
	case *schema.RecordSchema:
		if p, ok := c.skips[t.ID()]; ok {
			return func(d *binary.Decoder) error {
				return (*p)(d)
			}, nil
		}
		p := new(skipStep)
		c.skips[t.ID()] = p
		fields := make([]skipStep, len(t.Fields()))
		for i, f := range t.Fields() {
			step, err := c.skip(f.Type())
			if err != nil {
				return nil, avroerr.InField(err, f.Name())
			}
			fields[i] = step
		}
		*p = func(d *binary.Decoder) error {
			for _, f := range fields {
				if err := f(d); err != nil {
					return err
				}
			}
			return nil
		}
		return *p, nil
	case *schema.UnionSchema:
		branches := make([]skipStep, len(t.Types()))
		for i, b := range t.Types() {
			step, err := c.skip(b)
			if err != nil {
				return nil, err
			}
			branches[i] = step
		}
		return func(d *binary.Decoder) error {
			start := d.Offset()
			i, err := d.ReadLong()
			if err != nil {
				return err
			}
			if i < 0 || i >= int64(len(branches)) {
				return binary.Malformed(start, "union index %d out of range for %d branches", i, len(branches))
			}
			return branches[i](d)
		}, nil
	case *schema.ArraySchema:
		items, err := c.skip(t.Items())
		if err != nil {
			return nil, err
		}
		return skipBlocks(items), nil
	case *schema.MapSchema:
		values, err := c.skip(t.Values())
		if err != nil {
			return nil, err
		}
		return skipBlocks(func(d *binary.Decoder) error {
			if err := d.SkipBytes(); err != nil {
				return err
			}
			return values(d)
		}), nil
	case *schema.EnumSchema:
		return func(d *binary.Decoder) error {
			_, err := d.ReadInt()
			return err
		}, nil
	case *schema.FixedSchema:
		size := int64(t.Size())
		return func(d *binary.Decoder) error {
			return d.Skip(size)
		}, nil
	}

	switch s.Type() {
	case schema.Null:
		return func(*binary.Decoder) error { return nil }, nil
	case schema.Boolean:
		return func(d *binary.Decoder) error {
			_, err := d.ReadBoolean()
			return err
		}, nil
	case schema.Int:
		return func(d *binary.Decoder) error {
			_, err := d.ReadInt()
			return err
		}, nil
	case schema.Long:
		return func(d *binary.Decoder) error {
			_, err := d.ReadLong()
			return err
		}, nil
	case schema.Float:
		return func(d *binary.Decoder) error { return d.Skip(4) }, nil
	case schema.Double:
		return func(d *binary.Decoder) error { return d.Skip(8) }, nil
	case schema.Bytes, schema.String:
		return func(d *binary.Decoder) error { return d.SkipBytes() }, nil
	}
	return nil, avroerr.New(avroerr.ErrSchemaValidation, "unsupported schema %s", s)
}

func skipBlocks(item skipStep) skipStep {
	return func(d *binary.Decoder) error {
		for {
			count, size, err := d.ReadBlockHeader()
			if err != nil {
				return err
			}
			if count == 0 {
				return nil
			}
			if size >= 0 {
				if err := d.Skip(size); err != nil {
					return err
				}
				continue
			}
			for i := int64(0); i < count; i++ {
				if err := item(d); err != nil {
					return err
				}
			}
		}
	}
}
