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
	"sync"
	"sync/atomic"
)

// ConcurrentCache is an unbounded cache for read-mostly entries. Get never
// takes a lock. Concurrent Puts of the same key are allowed; the last one
// wins.
type ConcurrentCache struct {
	entries sync.Map
	size    atomic.Int64
}

// NewConcurrentCache creates a new ConcurrentCache
func NewConcurrentCache() *ConcurrentCache {
	return &ConcurrentCache{}
}

// Get returns the cache value associated with key
//
// Parameters:
//   - `key` - the key to retrieve
//
// Returns the value associated with key and a bool that is `false`
// if the key was not found
func (c *ConcurrentCache) Get(key interface{}) (interface{}, bool) {
	return c.entries.Load(key)
}

// Put puts a value in cache associated with key
//
// Parameters:
//   - `key` - the key to put
//   - `value` - the value to put
func (c *ConcurrentCache) Put(key interface{}, value interface{}) {
	if _, loaded := c.entries.Swap(key, value); !loaded {
		c.size.Add(1)
	}
}

// Delete deletes the cache entry associated with key
//
// Parameters:
//   - `key` - the key to delete
func (c *ConcurrentCache) Delete(key interface{}) {
	if _, loaded := c.entries.LoadAndDelete(key); loaded {
		c.size.Add(-1)
	}
}

// Len returns the number of cached entries
func (c *ConcurrentCache) Len() int {
	return int(c.size.Load())
}

// ToMap returns the current cache entries copied into a map
func (c *ConcurrentCache) ToMap() map[interface{}]interface{} {
	ret := make(map[interface{}]interface{})
	c.entries.Range(func(k, v interface{}) bool {
		ret[k] = v
		return true
	})
	return ret
}
