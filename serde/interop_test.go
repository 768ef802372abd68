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

	"github.com/actgardner/gogen-avro/v10/compiler"
	"github.com/hamba/avro/v2"
	heetch "github.com/heetch/avro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/generic"
	"github.com/confluentinc/avroconvert-go/internal/testhelpers"
	"github.com/confluentinc/avroconvert-go/schema/schematext"
)

const userSchema = `{"type": "record", "name": "User", "namespace": "com.example", "fields": [
	{"name": "name", "type": "string"},
	{"name": "age", "type": "long"},
	{"name": "emails", "type": {"type": "array", "items": "string"}},
	{"name": "scores", "type": {"type": "map", "values": "double"}},
	{"name": "nick", "type": ["null", "string"]}
]}`

type user struct {
	Name   string             `avro:"name"`
	Age    int64              `avro:"age"`
	Emails []string           `avro:"emails"`
	Scores map[string]float64 `avro:"scores"`
	Nick   *string            `avro:"nick"`
}

func TestHambaInterop(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	hs, err := avro.Parse(userSchema)
	require.NoError(t, err)
	s := schematext.MustParse(userSchema)

	nick := "al"
	in := user{Name: "alice", Age: 42, Emails: []string{"a@example.com"}, Scores: map[string]float64{"x": 1.5}, Nick: &nick}

	theirs, err := avro.Marshal(hs, in)
	maybeFail("hamba marshal", err)

	// hamba writes arrays and maps as sized blocks
	conf := NewSerializerConfig()
	conf.WriteBlockSizes = true
	ours, err := NewSerializer(conf).Serialize(s, in)
	maybeFail("serialize", err, expect(ours, theirs))

	unsized, err := NewSerializer(nil).Serialize(s, in)
	maybeFail("serialize unsized", err)
	var fromUnsized user
	err = avro.Unmarshal(hs, unsized, &fromUnsized)
	maybeFail("hamba unmarshal unsized", err, expect(fromUnsized, in))

	var out user
	err = NewDeserializer(nil).DeserializeInto(theirs, s, nil, &out)
	maybeFail("deserialize hamba data", err, expect(out, in))

	var back user
	err = avro.Unmarshal(hs, ours, &back)
	maybeFail("hamba unmarshal", err, expect(back, in))
}

type heetchPoint struct {
	X int64  `json:"x"`
	Y string `json:"y"`
}

func TestHeetchInterop(t *testing.T) {
	maybeFail = testhelpers.InitFailFunc(t)
	in := heetchPoint{X: -3, Y: "why"}
	theirs, wType, err := heetch.Marshal(in)
	maybeFail("heetch marshal", err)

	s, err := schematext.Parse(wType.String())
	maybeFail("parse heetch schema", err)

	v, err := NewDeserializer(nil).Deserialize(theirs, s, nil)
	maybeFail("deserialize", err)
	rec := v.(*generic.Record)
	maybeFail("values", expect(rec.ToMap(), map[string]interface{}{"x": int64(-3), "y": "why"}))

	ours, err := NewSerializer(nil).Serialize(s, rec)
	maybeFail("serialize", err, expect(ours, theirs))

	var back heetchPoint
	_, err = heetch.Unmarshal(ours, &back, wType)
	maybeFail("heetch unmarshal", err, expect(back, in))
}

// Resolution outcomes agree with the gogen-avro compiler. gogen defers
// primitive mismatches to generated code, so only pairs it decides at
// compile time are compared here.
func TestResolutionAgreesWithGogen(t *testing.T) {
	cases := []struct {
		writer string
		reader string
	}{
		{`"int"`, `"long"`},
		{
			`{"type": "record", "name": "R", "fields": [{"name": "a", "type": "long"}, {"name": "b", "type": "string"}]}`,
			`{"type": "record", "name": "R", "fields": [{"name": "b", "type": "string"}, {"name": "c", "type": "long", "default": 42}]}`,
		},
		{
			`{"type": "record", "name": "R", "fields": [{"name": "a", "type": "long"}]}`,
			`{"type": "record", "name": "R", "fields": [{"name": "a", "type": "long"}, {"name": "c", "type": "long"}]}`,
		},
		{
			`{"type": "record", "name": "R", "fields": [{"name": "a", "type": "int"}]}`,
			`{"type": "record", "name": "R", "fields": [{"name": "a", "type": "double"}]}`,
		},
	}
	de := NewDeserializer(nil)
	for _, c := range cases {
		_, gogenErr := compiler.CompileSchemaBytes([]byte(c.writer), []byte(c.reader))
		_, err := de.Resolve(schematext.MustParse(c.writer), schematext.MustParse(c.reader))
		assert.Equal(t, gogenErr == nil, err == nil, "%s -> %s: gogen %v, ours %v", c.writer, c.reader, gogenErr, err)
	}
}

func TestIncompatiblePrimitivesFailResolve(t *testing.T) {
	de := NewDeserializer(nil)
	for _, c := range []struct {
		writer string
		reader string
	}{
		{`"long"`, `"int"`},
		{`"string"`, `"boolean"`},
		{`"double"`, `"float"`},
		{`"bytes"`, `"long"`},
	} {
		_, err := de.Resolve(schematext.MustParse(c.writer), schematext.MustParse(c.reader))
		assert.True(t, errors.Is(err, avroerr.ErrSchemaResolution), "%s -> %s: %v", c.writer, c.reader, err)
	}
}
