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

// Package generic holds the schema-less value model used for records that
// are not backed by a Go struct.
package generic

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// Entry is a single named value of a Record
type Entry struct {
	Name  string
	Value interface{}
}

// Record is an ordered bag of named values. Lookups by name are exact
// first, then case-insensitive.
type Record struct {
	name    string
	entries []Entry
}

// NewRecord creates an empty Record for the record schema with the given
// full name
func NewRecord(name string, capacity int) *Record {
	return &Record{name: name, entries: make([]Entry, 0, capacity)}
}

// Name returns the full name of the record schema the Record was built for
func (r *Record) Name() string {
	return r.name
}

// Len returns the number of entries
func (r *Record) Len() int {
	return len(r.entries)
}

// Entries returns the entries in insertion order. The returned slice must
// not be modified.
func (r *Record) Entries() []Entry {
	return r.entries
}

// Fields returns the entry names in insertion order
func (r *Record) Fields() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

func (r *Record) index(name string) int {
	for i := range r.entries {
		if r.entries[i].Name == name {
			return i
		}
	}
	for i := range r.entries {
		if strings.EqualFold(r.entries[i].Name, name) {
			return i
		}
	}
	return -1
}

// Get returns the value stored under name
func (r *Record) Get(name string) (interface{}, bool) {
	if i := r.index(name); i >= 0 {
		return r.entries[i].Value, true
	}
	return nil, false
}

// Set stores value under name, replacing an existing entry that matches
// case-insensitively
func (r *Record) Set(name string, value interface{}) *Record {
	if i := r.index(name); i >= 0 {
		r.entries[i].Value = value
		return r
	}
	r.entries = append(r.entries, Entry{Name: name, Value: value})
	return r
}

// Append adds an entry without checking for an existing one
func (r *Record) Append(name string, value interface{}) {
	r.entries = append(r.entries, Entry{Name: name, Value: value})
}

// Delete removes the entry stored under name
func (r *Record) Delete(name string) {
	if i := r.index(name); i >= 0 {
		r.entries = append(r.entries[:i], r.entries[i+1:]...)
	}
}

// ToMap returns the entries as a map. Nested records are converted as well.
func (r *Record) ToMap() map[string]interface{} {
	m := make(map[string]interface{}, len(r.entries))
	for _, e := range r.entries {
		m[e.Name] = toPlain(e.Value)
	}
	return m
}

func toPlain(v interface{}) interface{} {
	switch t := v.(type) {
	case *Record:
		return t.ToMap()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = toPlain(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = toPlain(item)
		}
		return out
	}
	return v
}

// MarshalJSON encodes the record as a JSON object keeping entry order
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Clone returns a deep copy of a generic value
func Clone(v interface{}) interface{} {
	switch t := v.(type) {
	case *Record:
		c := &Record{name: t.name, entries: make([]Entry, len(t.entries))}
		for i, e := range t.entries {
			c.entries[i] = Entry{Name: e.Name, Value: Clone(e.Value)}
		}
		return c
	case []interface{}:
		c := make([]interface{}, len(t))
		for i, item := range t {
			c[i] = Clone(item)
		}
		return c
	case map[string]interface{}:
		c := make(map[string]interface{}, len(t))
		for k, item := range t {
			c[k] = Clone(item)
		}
		return c
	case []byte:
		c := make([]byte, len(t))
		copy(c, t)
		return c
	}
	return v
}
