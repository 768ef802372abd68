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

package schematext

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/generic"
	"github.com/confluentinc/avroconvert-go/schema"
)

// Render returns the JSON text of s. The output is deterministic: keys are
// written in a fixed order, custom properties are sorted, and each named
// type is defined at its first occurrence and referenced by full name after.
func Render(s schema.Schema) (string, error) {
	r := &renderer{seen: make(map[string]bool)}
	if err := r.schema(s); err != nil {
		return "", err
	}
	return r.buf.String(), nil
}

type renderer struct {
	buf  bytes.Buffer
	seen map[string]bool
}

type object struct {
	r *renderer
	n int
}

func (r *renderer) open() *object {
	r.buf.WriteByte('{')
	return &object{r: r}
}

func (o *object) key(k string) {
	if o.n > 0 {
		o.r.buf.WriteByte(',')
	}
	o.n++
	o.r.str(k)
	o.r.buf.WriteByte(':')
}

func (o *object) close() {
	o.r.buf.WriteByte('}')
}

func (r *renderer) str(s string) {
	b, _ := json.Marshal(s)
	r.buf.Write(b)
}

func (r *renderer) strs(list []string) {
	r.buf.WriteByte('[')
	for i, s := range list {
		if i > 0 {
			r.buf.WriteByte(',')
		}
		r.str(s)
	}
	r.buf.WriteByte(']')
}

func (r *renderer) props(o *object, props map[string]interface{}) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.key(k)
		if err := r.value(props[k]); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) named(o *object, kind string, s schema.NamedSchema) {
	r.seen[s.FullName()] = true
	o.key("type")
	r.str(kind)
	o.key("name")
	r.str(s.FullName())
	if doc := s.Doc(); doc != "" {
		o.key("doc")
		r.str(doc)
	}
	if aliases := s.Aliases(); len(aliases) > 0 {
		o.key("aliases")
		r.strs(aliases)
	}
}

func (r *renderer) schema(s schema.Schema) error {
	if ref, ok := s.(*schema.RefSchema); ok {
		target := ref.Schema()
		if target == nil || r.seen[ref.FullName()] {
			r.str(ref.FullName())
			return nil
		}
		s = target
	}
	if n, ok := s.(schema.NamedSchema); ok && r.seen[n.FullName()] {
		r.str(n.FullName())
		return nil
	}

	switch t := s.(type) {
	case *schema.RecordSchema:
		o := r.open()
		r.named(o, "record", t)
		o.key("fields")
		r.buf.WriteByte('[')
		for i, f := range t.Fields() {
			if i > 0 {
				r.buf.WriteByte(',')
			}
			if err := r.field(f); err != nil {
				return avroerr.InField(err, f.Name())
			}
		}
		r.buf.WriteByte(']')
		if err := r.props(o, t.Props()); err != nil {
			return err
		}
		o.close()
	case *schema.EnumSchema:
		o := r.open()
		r.named(o, "enum", t)
		o.key("symbols")
		r.strs(t.Symbols())
		if def, ok := t.Default(); ok {
			o.key("default")
			r.str(def)
		}
		if err := r.props(o, t.Props()); err != nil {
			return err
		}
		o.close()
	case *schema.FixedSchema:
		o := r.open()
		r.named(o, "fixed", t)
		o.key("size")
		if err := r.value(t.Size()); err != nil {
			return err
		}
		r.logical(o, t)
		if err := r.props(o, t.Props()); err != nil {
			return err
		}
		o.close()
	case *schema.ArraySchema:
		o := r.open()
		o.key("type")
		r.str("array")
		o.key("items")
		if err := r.schema(t.Items()); err != nil {
			return err
		}
		if err := r.props(o, t.Props()); err != nil {
			return err
		}
		o.close()
	case *schema.MapSchema:
		o := r.open()
		o.key("type")
		r.str("map")
		o.key("values")
		if err := r.schema(t.Values()); err != nil {
			return err
		}
		if err := r.props(o, t.Props()); err != nil {
			return err
		}
		o.close()
	case *schema.UnionSchema:
		r.buf.WriteByte('[')
		for i, b := range t.Types() {
			if i > 0 {
				r.buf.WriteByte(',')
			}
			if err := r.schema(b); err != nil {
				return err
			}
		}
		r.buf.WriteByte(']')
	case *schema.PrimitiveSchema:
		if t.Logical() == schema.NoLogical && len(t.Props()) == 0 {
			r.str(string(t.Type()))
			return nil
		}
		o := r.open()
		o.key("type")
		r.str(string(t.Type()))
		r.logical(o, t)
		if err := r.props(o, t.Props()); err != nil {
			return err
		}
		o.close()
	default:
		return avroerr.New(avroerr.ErrSchemaValidation, "cannot render %s", s)
	}
	return nil
}

func (r *renderer) logical(o *object, s schema.Schema) {
	if l := s.Logical(); l != schema.NoLogical {
		o.key("logicalType")
		r.str(string(l))
	}
}

func (r *renderer) field(f *schema.Field) error {
	o := r.open()
	o.key("name")
	r.str(f.Name())
	if doc := f.Doc(); doc != "" {
		o.key("doc")
		r.str(doc)
	}
	if aliases := f.Aliases(); len(aliases) > 0 {
		o.key("aliases")
		r.strs(aliases)
	}
	o.key("type")
	if err := r.schema(f.Type()); err != nil {
		return err
	}
	if f.HasDefault() {
		def, err := f.Default()
		if err != nil {
			return err
		}
		o.key("default")
		if err := r.value(def); err != nil {
			return err
		}
	}
	if err := r.props(o, f.Props()); err != nil {
		return err
	}
	o.close()
	return nil
}

// value writes a generic value as JSON. Byte values become strings whose
// code points are the byte values.
func (r *renderer) value(v interface{}) error {
	switch t := v.(type) {
	case []byte:
		runes := make([]rune, len(t))
		for i, b := range t {
			runes[i] = rune(b)
		}
		r.str(string(runes))
		return nil
	case *generic.Record:
		o := r.open()
		for _, e := range t.Entries() {
			o.key(e.Name)
			if err := r.value(e.Value); err != nil {
				return err
			}
		}
		o.close()
		return nil
	case map[string]interface{}:
		o := r.open()
		if err := r.props(o, t); err != nil {
			return err
		}
		o.close()
		return nil
	case []interface{}:
		r.buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				r.buf.WriteByte(',')
			}
			if err := r.value(item); err != nil {
				return err
			}
		}
		r.buf.WriteByte(']')
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return avroerr.Wrap(avroerr.ErrSchemaValidation, err, "cannot render value %v", v)
	}
	r.buf.Write(b)
	return nil
}
