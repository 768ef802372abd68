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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/generic"
	"github.com/confluentinc/avroconvert-go/internal/testhelpers"
	"github.com/confluentinc/avroconvert-go/schema"
	"github.com/confluentinc/avroconvert-go/schema/schematext"
)

const allKinds = `{"type": "record", "name": "com.example.All", "fields": [
	{"name": "n", "type": "null"},
	{"name": "b", "type": "boolean"},
	{"name": "i", "type": "int"},
	{"name": "l", "type": "long"},
	{"name": "f", "type": "float"},
	{"name": "d", "type": "double"},
	{"name": "by", "type": "bytes"},
	{"name": "s", "type": "string"},
	{"name": "fx", "type": {"type": "fixed", "name": "F4", "size": 4}},
	{"name": "e", "type": {"type": "enum", "name": "Color", "symbols": ["RED", "GREEN"]}},
	{"name": "a", "type": {"type": "array", "items": "int"}},
	{"name": "m", "type": {"type": "map", "values": "string"}},
	{"name": "u", "type": ["null", "string"]}
]}`

func allKindsValue() *generic.Record {
	return generic.NewRecord("com.example.All", 13).
		Set("n", nil).
		Set("b", true).
		Set("i", int32(-7)).
		Set("l", int64(1)<<40).
		Set("f", float32(1.25)).
		Set("d", 3.5).
		Set("by", []byte{0, 1, 2}).
		Set("s", "hello").
		Set("fx", []byte{9, 8, 7, 6}).
		Set("e", "GREEN").
		Set("a", []interface{}{int32(1), int32(2)}).
		Set("m", map[string]interface{}{"k": "v"}).
		Set("u", "x")
}

func roundTrip(t *testing.T, writer, reader schema.Schema, v interface{}) (interface{}, error) {
	data, err := NewSerializer(nil).Serialize(writer, v)
	require.NoError(t, err)
	return NewDeserializer(nil).Deserialize(data, writer, reader)
}

func TestRoundTripAllKinds(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	s := schematext.MustParse(allKinds)

	v, err := roundTrip(t, s, nil, allKindsValue())
	maybeFail("round trip", err, expect(v, allKindsValue()))
}

func TestPromotion(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	cases := []struct {
		writer   string
		reader   string
		value    interface{}
		expected interface{}
	}{
		{`"int"`, `"long"`, 7, int64(7)},
		{`"int"`, `"float"`, 7, float32(7)},
		{`"int"`, `"double"`, 7, float64(7)},
		{`"long"`, `"double"`, int64(1) << 40, float64(1 << 40)},
		{`"float"`, `"double"`, float32(0.5), float64(0.5)},
		{`"string"`, `"bytes"`, "ab", []byte("ab")},
		{`"bytes"`, `"string"`, []byte("ab"), "ab"},
		{`"int"`, `["null", "string", "long"]`, 3, int64(3)},
		{`"long"`, `["null", "float", "long"]`, 3, int64(3)},
	}
	for _, c := range cases {
		v, err := roundTrip(t, schematext.MustParse(c.writer), schematext.MustParse(c.reader), c.value)
		maybeFail(c.writer+" -> "+c.reader, err, expect(v, c.expected))
	}

	_, err := NewDeserializer(nil).Resolve(schematext.MustParse(`"long"`), schematext.MustParse(`"int"`))
	assert.True(t, errors.Is(err, avroerr.ErrSchemaResolution))
}

func TestSchemaEvolution(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	writer := schematext.MustParse(`{"type": "record", "name": "R", "fields": [
		{"name": "a", "type": "long"},
		{"name": "b", "type": "string"}
	]}`)
	reader := schematext.MustParse(`{"type": "record", "name": "R", "fields": [
		{"name": "b", "type": "string"},
		{"name": "c", "type": "long", "default": 42}
	]}`)

	v, err := roundTrip(t, writer, reader, map[string]interface{}{"a": 1, "b": "x"})
	maybeFail("evolution", err, expect(v, generic.NewRecord("R", 2).Set("b", "x").Set("c", int64(42))))

	noDefault := schematext.MustParse(`{"type": "record", "name": "R", "fields": [
		{"name": "b", "type": "string"},
		{"name": "d", "type": "long"}
	]}`)
	_, err = NewDeserializer(nil).Resolve(writer, noDefault)
	assert.True(t, errors.Is(err, avroerr.ErrMissingDefault))
	var aerr *avroerr.Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "d", aerr.Field)
}

func TestReaderAliases(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	writer := schematext.MustParse(`{"type": "record", "name": "Old", "fields": [
		{"name": "old_name", "type": "int"}
	]}`)
	reader := schematext.MustParse(`{"type": "record", "name": "New", "aliases": ["Old"], "fields": [
		{"name": "new_name", "type": "int", "aliases": ["old_name"]}
	]}`)

	v, err := roundTrip(t, writer, reader, map[string]interface{}{"old_name": 5})
	maybeFail("alias", err, expect(v, generic.NewRecord("New", 1).Set("new_name", int32(5))))

	conf := NewDeserializerConfig()
	conf.StrictNames = true
	_, err = NewDeserializer(conf).Resolve(writer, reader)
	maybeFail("strict alias", err)

	other := schematext.MustParse(`{"type": "record", "name": "Other", "fields": [
		{"name": "new_name", "type": "int", "aliases": ["old_name"]}
	]}`)
	_, err = NewDeserializer(conf).Resolve(writer, other)
	assert.True(t, errors.Is(err, avroerr.ErrSchemaResolution))
	_, err = NewDeserializer(nil).Resolve(writer, other)
	assert.NoError(t, err)
}

func TestEnumResolution(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	writer := schematext.MustParse(`{"type": "enum", "name": "E", "symbols": ["A", "B", "C"]}`)
	withDefault := schematext.MustParse(`{"type": "enum", "name": "E", "symbols": ["A", "B"], "default": "A"}`)
	withoutDefault := schematext.MustParse(`{"type": "enum", "name": "E", "symbols": ["B", "A"]}`)

	v, err := roundTrip(t, writer, withDefault, "C")
	maybeFail("default symbol", err, expect(v, "A"))

	v, err = roundTrip(t, writer, withoutDefault, "B")
	maybeFail("reordered", err, expect(v, "B"))

	_, err = roundTrip(t, writer, withoutDefault, "C")
	assert.True(t, errors.Is(err, avroerr.ErrSchemaResolution))
}

func TestFixedSizeMismatch(t *testing.T) {
	_, err := NewDeserializer(nil).Resolve(
		schematext.MustParse(`{"type": "fixed", "name": "F", "size": 4}`),
		schematext.MustParse(`{"type": "fixed", "name": "F", "size": 8}`))
	assert.True(t, errors.Is(err, avroerr.ErrSchemaResolution))
}

func TestWriterUnionBranchFailsOnlyWhenSelected(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	writer := schematext.MustParse(`["int", "string"]`)
	reader := schematext.MustParse(`"long"`)

	_, err := NewDeserializer(nil).Resolve(writer, reader)
	maybeFail("resolve", err)

	v, err := roundTrip(t, writer, reader, 3)
	maybeFail("readable branch", err, expect(v, int64(3)))

	_, err = roundTrip(t, writer, reader, "x")
	assert.True(t, errors.Is(err, avroerr.ErrSchemaResolution))

	_, err = NewDeserializer(nil).Resolve(schematext.MustParse(`["string", "boolean"]`), reader)
	assert.True(t, errors.Is(err, avroerr.ErrSchemaResolution))
}

const linkedList = `{"type": "record", "name": "LinkedList", "fields": [
	{"name": "value", "type": "long"},
	{"name": "next", "type": ["null", "LinkedList"], "default": null}
]}`

func TestRecursiveSchema(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	s := schematext.MustParse(linkedList)
	value := map[string]interface{}{
		"value": 1,
		"next":  map[string]interface{}{"value": 2, "next": nil},
	}

	data, err := NewSerializer(nil).Serialize(s, value)
	maybeFail("serialize", err, expect(data, []byte{0x02, 0x02, 0x04, 0x00}))

	v, err := NewDeserializer(nil).Deserialize(data, s, nil)
	expected := generic.NewRecord("LinkedList", 2).
		Set("value", int64(1)).
		Set("next", generic.NewRecord("LinkedList", 2).Set("value", int64(2)).Set("next", nil))
	maybeFail("deserialize", err, expect(v, expected))
}

func TestSkippedFieldsUseBlockSizes(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	writer := schematext.MustParse(`{"type": "record", "name": "R", "fields": [
		{"name": "arr", "type": {"type": "array", "items": "long"}},
		{"name": "m", "type": {"type": "map", "values": {"type": "record", "name": "Inner", "fields": [
			{"name": "s", "type": "string"}]}}},
		{"name": "x", "type": "int"}
	]}`)
	reader := schematext.MustParse(`{"type": "record", "name": "R", "fields": [
		{"name": "x", "type": "int"}
	]}`)
	value := map[string]interface{}{
		"arr": []int64{1, 2, 3},
		"m":   map[string]interface{}{"k": map[string]interface{}{"s": "v"}},
		"x":   7,
	}

	for _, sized := range []bool{false, true} {
		conf := NewSerializerConfig()
		conf.BlockLength = 2
		conf.WriteBlockSizes = sized
		data, err := NewSerializer(conf).Serialize(writer, value)
		maybeFail("serialize", err)

		v, err := NewDeserializer(nil).Deserialize(data, writer, reader)
		maybeFail("deserialize", err, expect(v, generic.NewRecord("R", 1).Set("x", int32(7))))

		full, err := NewDeserializer(nil).Deserialize(data, writer, nil)
		maybeFail("full", err)
		arr, _ := full.(*generic.Record).Get("arr")
		maybeFail("blocks", expect(arr, []interface{}{int64(1), int64(2), int64(3)}))
	}
}

func TestMalformedData(t *testing.T) {
	de := NewDeserializer(nil)
	union := schematext.MustParse(`["null", "int"]`)

	_, err := de.Deserialize([]byte{0x06}, union, nil)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	_, err = de.Deserialize([]byte{0x80}, schematext.MustParse(`"long"`), nil)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, err = de.Deserialize([]byte{0x02}, schematext.MustParse(`"boolean"`), nil)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	_, err = de.Deserialize([]byte{0x0a, 'a'}, schematext.MustParse(`"string"`), nil)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	_, err = de.Deserialize([]byte{0x04}, schematext.MustParse(`{"type": "enum", "name": "E", "symbols": ["A"]}`), nil)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	conf := NewDeserializerConfig()
	conf.MaxBytesLength = 2
	_, err = NewDeserializer(conf).Deserialize([]byte{0x06, 'a', 'b', 'c'}, schematext.MustParse(`"bytes"`), nil)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))
}

func TestCollectionItemLimit(t *testing.T) {
	nulls := schematext.MustParse(`{"type": "array", "items": "null"}`)
	// a single block of 20,000,000 null items
	_, err := NewDeserializer(nil).Deserialize([]byte{0x80, 0xb4, 0x89, 0x13, 0x00}, nulls, nil)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	conf := NewDeserializerConfig()
	conf.MaxCollectionItems = 3
	de := NewDeserializer(conf)
	ints := schematext.MustParse(`{"type": "array", "items": "int"}`)

	v, err := de.Deserialize([]byte{0x04, 0x02, 0x04, 0x02, 0x06, 0x00}, ints, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int32(1), int32(2), int32(3)}, v)

	_, err = de.Deserialize([]byte{0x04, 0x02, 0x04, 0x04, 0x06, 0x08, 0x00}, ints, nil)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	m := schematext.MustParse(`{"type": "map", "values": "null"}`)
	conf = NewDeserializerConfig()
	conf.MaxCollectionItems = 1
	_, err = NewDeserializer(conf).Deserialize([]byte{0x04, 0x02, 'a', 0x02, 'b', 0x00}, m, nil)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	conf.MaxCollectionItems = 0
	v, err = NewDeserializer(conf).Deserialize([]byte{0x04, 0x02, 'a', 0x02, 'b', 0x00}, m, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": nil, "b": nil}, v)
}

func TestDefaultsAreNotShared(t *testing.T) {
	writer := schematext.MustParse(`{"type": "record", "name": "R", "fields": []}`)
	reader := schematext.MustParse(`{"type": "record", "name": "R", "fields": [
		{"name": "tags", "type": {"type": "array", "items": "string"}, "default": ["a"]}
	]}`)
	de := NewDeserializer(nil)

	first, err := de.Deserialize(nil, writer, reader)
	require.NoError(t, err)
	tags, _ := first.(*generic.Record).Get("tags")
	tags.([]interface{})[0] = "changed"

	second, err := de.Deserialize(nil, writer, reader)
	require.NoError(t, err)
	tags, _ = second.(*generic.Record).Get("tags")
	assert.Equal(t, []interface{}{"a"}, tags)
}
