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
	"github.com/confluentinc/avroconvert-go/generic"
	"github.com/confluentinc/avroconvert-go/schema"
)

// fieldAction reads one writer field into a reader position, or skips it
type fieldAction struct {
	name   string
	target int
	read   readStep
	skip   skipStep
}

type fieldDefault struct {
	set   bool
	value interface{}
}

// resolveRecord matches writer fields to reader fields by name, then by
// reader alias. Writer fields without a match are skipped and reader fields
// without a match take their default.
func (c *resolver) resolveRecord(w, r *schema.RecordSchema) (readStep, error) {
	wfields := w.Fields()
	rfields := r.Fields()
	matched := make([]bool, len(rfields))
	actions := make([]fieldAction, len(wfields))

	for i, wf := range wfields {
		actions[i] = fieldAction{name: wf.Name(), target: -1}
		if rf, ok := r.Field(wf.Name()); ok {
			actions[i].target = rf.Index()
			matched[rf.Index()] = true
		}
	}
	for i, wf := range wfields {
		if actions[i].target >= 0 {
			continue
		}
		for _, rf := range rfields {
			if matched[rf.Index()] || !hasAlias(rf, wf.Name()) {
				continue
			}
			actions[i].target = rf.Index()
			matched[rf.Index()] = true
			break
		}
	}

	for i, wf := range wfields {
		if t := actions[i].target; t >= 0 {
			step, err := c.resolve(wf.Type(), rfields[t].Type())
			if err != nil {
				return nil, avroerr.InField(err, rfields[t].Name())
			}
			actions[i].read = step
			continue
		}
		skip, err := c.skip(wf.Type())
		if err != nil {
			return nil, avroerr.InField(err, wf.Name())
		}
		actions[i].skip = skip
	}

	defaults := make([]fieldDefault, len(rfields))
	names := make([]string, len(rfields))
	for i, rf := range rfields {
		names[i] = rf.Name()
		if matched[i] {
			continue
		}
		if !rf.HasDefault() {
			err := avroerr.New(avroerr.ErrMissingDefault, "reader field %s is not written and has no default", rf.Name()).
				WithSchema(w.String() + " -> " + r.String())
			return nil, avroerr.InField(err, rf.Name())
		}
		def, err := rf.Default()
		if err != nil {
			return nil, avroerr.InField(err, rf.Name())
		}
		defaults[i] = fieldDefault{set: true, value: def}
	}

	fullName := r.FullName()
	return func(d *binary.Decoder) (interface{}, error) {
		values := make([]interface{}, len(names))
		for _, a := range actions {
			if a.read == nil {
				if err := a.skip(d); err != nil {
					return nil, avroerr.InField(err, a.name)
				}
				continue
			}
			v, err := a.read(d)
			if err != nil {
				return nil, avroerr.InField(err, names[a.target])
			}
			values[a.target] = v
		}
		rec := generic.NewRecord(fullName, len(names))
		for i, name := range names {
			if defaults[i].set {
				rec.Append(name, generic.Clone(defaults[i].value))
				continue
			}
			rec.Append(name, values[i])
		}
		return rec, nil
	}, nil
}

func hasAlias(f *schema.Field, name string) bool {
	for _, a := range f.Aliases() {
		if a == name {
			return true
		}
	}
	return false
}
