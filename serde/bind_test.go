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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/generic"
	"github.com/confluentinc/avroconvert-go/internal/testhelpers"
	"github.com/confluentinc/avroconvert-go/schema/schematext"
)

const eventSchema = `{"type": "record", "name": "Event", "fields": [
	{"name": "id", "type": {"type": "string", "logicalType": "uuid"}},
	{"name": "at", "type": {"type": "long", "logicalType": "timestamp-micros"}},
	{"name": "kind", "type": {"type": "enum", "name": "Kind", "symbols": ["CREATED", "DELETED"]}},
	{"name": "tags", "type": {"type": "array", "items": "string"}},
	{"name": "attrs", "type": {"type": "map", "values": "long"}},
	{"name": "note", "type": ["null", "string"], "default": null},
	{"name": "hash", "type": {"type": "fixed", "name": "Hash", "size": 4}},
	{"name": "score", "type": "float"}
]}`

type kind uint8

type event struct {
	ID    uuid.UUID        `avro:"id"`
	At    time.Time        `avro:"at"`
	Kind  kind             `avro:"kind"`
	Tags  []string         `avro:"tags"`
	Attrs map[string]int32 `avro:"attrs"`
	Note  *string          `avro:"note"`
	Hash  [4]byte          `avro:"hash"`
	Score float64          `avro:"score"`
}

func TestDeserializeIntoStruct(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	s := schematext.MustParse(eventSchema)
	note := "hello"
	in := event{
		ID:    uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		At:    time.Date(2024, 5, 1, 12, 0, 0, 1000, time.UTC),
		Kind:  1,
		Tags:  []string{"a", "b"},
		Attrs: map[string]int32{"n": 3},
		Note:  &note,
		Hash:  [4]byte{1, 2, 3, 4},
		Score: 0.5,
	}

	data, err := NewSerializer(nil).Serialize(s, in)
	maybeFail("serialize", err)

	var out event
	err = NewDeserializer(nil).DeserializeInto(data, s, nil, &out)
	maybeFail("deserialize", err, expect(out, in))

	in.Note = nil
	data, err = NewSerializer(nil).Serialize(s, &in)
	maybeFail("serialize nil", err)
	out = event{}
	err = NewDeserializer(nil).DeserializeInto(data, s, nil, &out)
	maybeFail("deserialize nil", err, expect(out.Note, (*string)(nil)))
}

type node struct {
	Value int64 `avro:"value"`
	Next  *node `avro:"next"`
}

func TestDeserializeIntoRecursiveStruct(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	s := schematext.MustParse(linkedList)
	in := &node{Value: 1, Next: &node{Value: 2, Next: &node{Value: 3}}}

	data, err := NewSerializer(nil).Serialize(s, in)
	maybeFail("serialize", err)

	var out *node
	err = NewDeserializer(nil).DeserializeInto(data, s, nil, &out)
	maybeFail("deserialize", err, expect(out, in))
}

func TestDeserializeIntoMapAndInterface(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	s := schematext.MustParse(`{"type": "record", "name": "R", "fields": [
		{"name": "a", "type": "int"}, {"name": "b", "type": "int"}]}`)
	data, err := NewSerializer(nil).Serialize(s, map[string]interface{}{"a": 1, "b": 2})
	maybeFail("serialize", err)

	var m map[string]int64
	err = NewDeserializer(nil).DeserializeInto(data, s, nil, &m)
	maybeFail("map", err, expect(m, map[string]int64{"a": 1, "b": 2}))

	var v interface{}
	err = NewDeserializer(nil).DeserializeInto(data, s, nil, &v)
	maybeFail("interface", err)
	rec, ok := v.(*generic.Record)
	require.True(t, ok)
	a, _ := rec.Get("a")
	maybeFail("generic", expect(a, int32(1)))
}

func TestBindRejectsIncompatibleTargets(t *testing.T) {
	de := NewDeserializer(nil)
	s := schematext.MustParse(`{"type": "record", "name": "R", "fields": [{"name": "a", "type": "long"}]}`)
	data, err := NewSerializer(nil).Serialize(s, map[string]interface{}{"a": 300})
	require.NoError(t, err)

	var narrow struct {
		A int8 `avro:"a"`
	}
	err = de.DeserializeInto(data, s, nil, &narrow)
	assert.True(t, errors.Is(err, avroerr.ErrTypeMismatch))

	var wrong struct {
		A string `avro:"a"`
	}
	err = de.DeserializeInto(data, s, nil, &wrong)
	assert.True(t, errors.Is(err, avroerr.ErrTypeMismatch))

	var notPointer struct{}
	err = de.DeserializeInto(data, s, nil, notPointer)
	assert.True(t, errors.Is(err, avroerr.ErrTypeMismatch))
}

func TestBindUnionChoosesBranchFromValue(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	s := schematext.MustParse(`["null", "int", "double"]`)
	de := NewDeserializer(nil)

	var f float64
	err := de.Bind(s, int32(2), &f)
	maybeFail("int", err, expect(f, 2.0))
	err = de.Bind(s, 2.5, &f)
	maybeFail("double", err, expect(f, 2.5))
	err = de.Bind(s, nil, &f)
	maybeFail("null", err, expect(f, 0.0))
}
