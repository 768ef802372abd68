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

package cache

import (
	"testing"
)

func TestWrongCapacity(t *testing.T) {
	for _, capacity := range []int{-1, 0} {
		_, err := NewLRUCache(capacity)
		if err == nil {
			t.Fatalf("expected \"capacity must be a positive integer\" error, not nil\n")
		}
	}
}

func TestLRUCRUD(t *testing.T) {
	c, err := NewLRUCache(2)
	if err != nil {
		t.Fatalf("expected nil error, not \"%s\"\n", err.Error())
	}

	for key, values := range map[string][]string{
		`"long"`:   {"schema-1", "schema-2"},
		`"string"`: {"schema-3", "schema-4"},
	} {
		c.Put(key, values[0])
		readValue, ok := c.Get(key)
		if !ok || readValue != values[0] {
			t.Fatalf("expected to find value \"%v\" for key %s, not \"%v\"\n", values[0], key, readValue)
		}
		c.Put(key, values[1])
		readValue, ok = c.Get(key)
		if !ok || readValue != values[1] {
			t.Fatalf("expected to find value \"%v\" for key %s, not \"%v\"\n", values[1], key, readValue)
		}
		if c.Len() != 1 {
			t.Fatalf("expected one entry, not %d\n", c.Len())
		}
		c.Delete(key)
		readValue, ok = c.Get(key)
		if ok {
			t.Fatalf("value for key %s not expected, found \"%v\"\n", key, readValue)
		}
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewLRUCache(2)
	if err != nil {
		t.Fatalf("expected nil error, not \"%s\"\n", err.Error())
	}

	c.Put(1, "a")
	c.Put(2, "b")
	if _, ok := c.Get(1); !ok {
		t.Fatalf("expected to find key 1\n")
	}
	c.Put(3, "c")

	if _, ok := c.Get(2); ok {
		t.Fatalf("not expected to find key 2\n")
	}
	for _, key := range []int{1, 3} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("expected to find key %d\n", key)
		}
	}
	m := c.ToMap()
	if len(m) != 2 || m[1] != "a" || m[3] != "c" {
		t.Fatalf("unexpected cache contents %v\n", m)
	}
	for i := 4; i < 100; i++ {
		c.Put(i, i)
	}
	if c.Len() != 2 || len(c.elements) != 2 {
		t.Fatalf("expected cache to stay at capacity, found %d entries\n", c.Len())
	}
}
