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
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestConcurrentCacheCRUD(t *testing.T) {
	c := NewConcurrentCache()
	c.Put("k", 1)
	c.Put("k", 2)
	v, ok := c.Get("k")
	if !ok || v != 2 {
		t.Fatalf("expected value 2, not %v\n", v)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one entry, not %d\n", c.Len())
	}
	c.Delete("k")
	c.Delete("k")
	if _, ok := c.Get("k"); ok || c.Len() != 0 {
		t.Fatalf("expected empty cache\n")
	}
}

func TestConcurrentCachePutGet(t *testing.T) {
	c := NewConcurrentCache()
	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 1000; i++ {
				c.Put(i%50, i%50)
				if v, ok := c.Get(i % 50); ok && v != i%50 {
					t.Errorf("unexpected value %v for key %d", v, i%50)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 50 || len(c.ToMap()) != 50 {
		t.Fatalf("expected 50 entries, not %d\n", c.Len())
	}
}

func TestGetOrLoad(t *testing.T) {
	c, err := NewLRUCache(2)
	if err != nil {
		t.Fatal(err)
	}
	loads := 0
	load := func() (interface{}, error) {
		loads++
		return "parsed", nil
	}

	v, hit, err := GetOrLoad(c, "text", load)
	if err != nil || hit || v != "parsed" {
		t.Fatalf("expected a loaded value, got %v %v %v\n", v, hit, err)
	}
	v, hit, err = GetOrLoad(c, "text", load)
	if err != nil || !hit || v != "parsed" || loads != 1 {
		t.Fatalf("expected a cached value after one load, got %v %v %v (%d loads)\n", v, hit, err, loads)
	}

	failed := errors.New("bad schema")
	_, _, err = GetOrLoad(c, "other", func() (interface{}, error) { return nil, failed })
	if !errors.Is(err, failed) {
		t.Fatalf("expected load error, got %v\n", err)
	}
	if _, ok := c.Get("other"); ok {
		t.Fatalf("failed loads must not be cached\n")
	}
}
