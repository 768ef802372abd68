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

// Package schematext converts between JSON schema text and the schema model
package schematext

import (
	"github.com/hamba/avro/v2"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/schema"
)

// Parse parses and validates JSON schema text
func Parse(text string) (schema.Schema, error) {
	parsed, err := avro.ParseWithCache(text, "", &avro.SchemaCache{})
	if err != nil {
		return nil, avroerr.Wrap(avroerr.ErrSchemaValidation, err, "invalid schema text")
	}
	c := &converter{defined: make(map[string]schema.NamedSchema)}
	return c.convert(parsed)
}

// MustParse is like Parse but panics on error
func MustParse(text string) schema.Schema {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// converter rebuilds a parsed tree in the schema model. Named types are
// shared once defined; references to a record still being built become
// schema references bound when the enclosing record is created.
type converter struct {
	defined map[string]schema.NamedSchema
}

type documented interface {
	Doc() string
}

type propertied interface {
	Props() map[string]any
}

type logicalTyped interface {
	Logical() avro.LogicalSchema
}

func (c *converter) convert(s avro.Schema) (schema.Schema, error) {
	if n, ok := s.(avro.NamedSchema); ok {
		if d, ok := c.defined[n.FullName()]; ok {
			return d, nil
		}
	}
	switch t := s.(type) {
	case *avro.RefSchema:
		return schema.NewRef(t.Schema().FullName()), nil
	case *avro.RecordSchema:
		fields := make([]*schema.Field, 0, len(t.Fields()))
		for _, f := range t.Fields() {
			nf, err := c.convertField(f)
			if err != nil {
				return nil, err
			}
			fields = append(fields, nf)
		}
		rec, err := schema.NewRecord(t.FullName(), fields, namedOptions(t)...)
		if err != nil {
			return nil, err
		}
		c.defined[rec.FullName()] = rec
		return rec, nil
	case *avro.EnumSchema:
		opts := namedOptions(t)
		if def := t.Default(); def != "" {
			opts = append(opts, schema.WithDefaultSymbol(def))
		}
		enum, err := schema.NewEnum(t.FullName(), t.Symbols(), opts...)
		if err != nil {
			return nil, err
		}
		c.defined[enum.FullName()] = enum
		return enum, nil
	case *avro.FixedSchema:
		opts := append(namedOptions(t), schema.WithLogical(logicalOf(t)))
		fixed, err := schema.NewFixed(t.FullName(), t.Size(), opts...)
		if err != nil {
			return nil, err
		}
		c.defined[fixed.FullName()] = fixed
		return fixed, nil
	case *avro.ArraySchema:
		items, err := c.convert(t.Items())
		if err != nil {
			return nil, err
		}
		return schema.NewArray(items, schema.WithProps(t.Props())), nil
	case *avro.MapSchema:
		values, err := c.convert(t.Values())
		if err != nil {
			return nil, err
		}
		return schema.NewMap(values, schema.WithProps(t.Props())), nil
	case *avro.UnionSchema:
		types := make([]schema.Schema, 0, len(t.Types()))
		for _, b := range t.Types() {
			nb, err := c.convert(b)
			if err != nil {
				return nil, err
			}
			types = append(types, nb)
		}
		return schema.NewUnion(types)
	case *avro.NullSchema:
		return schema.NewPrimitive(schema.Null), nil
	case *avro.PrimitiveSchema:
		return schema.NewPrimitive(schema.Type(t.Type()),
			schema.WithLogical(logicalOf(t)), schema.WithProps(t.Props())), nil
	}
	return nil, avroerr.New(avroerr.ErrSchemaValidation, "unsupported schema type %q", s.Type())
}

func (c *converter) convertField(f *avro.Field) (*schema.Field, error) {
	typ, err := c.convert(f.Type())
	if err != nil {
		return nil, avroerr.InField(err, f.Name())
	}
	var opts []schema.FieldOption
	if aliases := f.Aliases(); len(aliases) > 0 {
		opts = append(opts, schema.WithFieldAliases(aliases...))
	}
	if doc := f.Doc(); doc != "" {
		opts = append(opts, schema.WithFieldDoc(doc))
	}
	if props := f.Props(); len(props) > 0 {
		opts = append(opts, schema.WithFieldProps(props))
	}
	if f.HasDefault() {
		opts = append(opts, schema.WithDefault(f.Default()))
	}
	return schema.NewField(f.Name(), typ, opts...)
}

func namedOptions(s avro.NamedSchema) []schema.Option {
	var opts []schema.Option
	if p, ok := s.(propertied); ok {
		opts = append(opts, schema.WithProps(p.Props()))
	}
	if aliases := s.Aliases(); len(aliases) > 0 {
		opts = append(opts, schema.WithAliases(aliases...))
	}
	if d, ok := s.(documented); ok && d.Doc() != "" {
		opts = append(opts, schema.WithDoc(d.Doc()))
	}
	return opts
}

// logicalOf returns the logical type of s. Types the model does not
// interpret are dropped.
func logicalOf(s logicalTyped) schema.LogicalType {
	ls := s.Logical()
	if ls == nil {
		return schema.NoLogical
	}
	return schema.LogicalType(ls.Type())
}
