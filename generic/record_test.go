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

package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCaseInsensitiveLookup(t *testing.T) {
	r := NewRecord("com.example.User", 2)
	r.Set("Name", "alice").Set("age", int32(30))

	v, ok := r.Get("name")
	require.True(t, ok)
	assert.Equal(t, "alice", v)

	r.Set("AGE", int32(31))
	assert.Equal(t, 2, r.Len())
	v, _ = r.Get("age")
	assert.Equal(t, int32(31), v)
	assert.Equal(t, []string{"Name", "age"}, r.Fields())

	r.Delete("NAME")
	_, ok = r.Get("Name")
	assert.False(t, ok)
}

func TestRecordExactMatchWins(t *testing.T) {
	r := NewRecord("R", 2)
	r.Append("id", int64(1))
	r.Append("ID", int64(2))

	v, _ := r.Get("ID")
	assert.Equal(t, int64(2), v)
	v, _ = r.Get("Id")
	assert.Equal(t, int64(1), v)
}

func TestRecordMarshalJSONKeepsOrder(t *testing.T) {
	inner := NewRecord("Inner", 1).Set("z", []byte("hi"))
	r := NewRecord("Outer", 3).Set("b", int64(2)).Set("a", "x").Set("inner", inner)

	data, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":"x","inner":{"z":"aGk="}}`, string(data))
}

func TestCloneIsDeep(t *testing.T) {
	orig := NewRecord("R", 2).
		Set("list", []interface{}{int32(1), []byte{1}}).
		Set("map", map[string]interface{}{"k": NewRecord("N", 1).Set("v", "a")})

	c := Clone(orig).(*Record)
	list, _ := c.Get("list")
	list.([]interface{})[1].([]byte)[0] = 9
	m, _ := c.Get("map")
	m.(map[string]interface{})["k"].(*Record).Set("v", "b")

	origList, _ := orig.Get("list")
	assert.Equal(t, []byte{1}, origList.([]interface{})[1])
	origMap, _ := orig.Get("map")
	v, _ := origMap.(map[string]interface{})["k"].(*Record).Get("v")
	assert.Equal(t, "a", v)

	assert.Equal(t, map[string]interface{}{
		"list": []interface{}{int32(1), []byte{1}},
		"map":  map[string]interface{}{"k": map[string]interface{}{"v": "a"}},
	}, orig.ToMap())
}
