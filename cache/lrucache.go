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
	"container/list"
	"fmt"
	"sync"
)

const maxPreallocateCapacity = 10000

type lruEntry struct {
	key   interface{}
	value interface{}
}

// LRUCache is a Least Recently Used (LRU) Cache with given capacity.
// It bounds the memory used by schemas parsed from container headers.
type LRUCache struct {
	cacheLock sync.Mutex
	capacity  int
	elements  map[interface{}]*list.Element
	lruKeys   *list.List
}

// NewLRUCache creates a new Least Recently Used (LRU) Cache
//
// Parameters:
//   - `capacity` - a positive integer indicating the max capacity of this cache
//
// Returns the new allocated LRU Cache and an error
func NewLRUCache(capacity int) (c *LRUCache, err error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be a positive integer")
	}
	c = new(LRUCache)
	c.capacity = capacity
	if capacity <= maxPreallocateCapacity {
		c.elements = make(map[interface{}]*list.Element, capacity)
	} else {
		c.elements = make(map[interface{}]*list.Element)
	}
	c.lruKeys = list.New()
	return
}

// Get returns the cache value associated with key and marks it as the
// most recently used
//
// Parameters:
//   - `key` - the key to retrieve
//
// Returns the value associated with key and a bool that is `false`
// if the key was not found
func (c *LRUCache) Get(key interface{}) (value interface{}, ok bool) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	element, ok := c.elements[key]
	if !ok {
		return nil, false
	}
	c.lruKeys.MoveToFront(element)
	return element.Value.(*lruEntry).value, true
}

// Put puts a value in cache associated with key, evicting the least
// recently used entry when the cache is full
//
// Parameters:
//   - `key` - the key to put
//   - `value` - the value to put
func (c *LRUCache) Put(key interface{}, value interface{}) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	if element, ok := c.elements[key]; ok {
		element.Value.(*lruEntry).value = value
		c.lruKeys.MoveToFront(element)
		return
	}
	// evict in advance to avoid increasing map capacity
	if c.lruKeys.Len() == c.capacity {
		if back := c.lruKeys.Back(); back != nil {
			c.lruKeys.Remove(back)
			delete(c.elements, back.Value.(*lruEntry).key)
		}
	}
	c.elements[key] = c.lruKeys.PushFront(&lruEntry{key: key, value: value})
}

// Delete deletes the cache entry associated with key
//
// Parameters:
//   - `key` - the key to delete
func (c *LRUCache) Delete(key interface{}) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	if element, ok := c.elements[key]; ok {
		c.lruKeys.Remove(element)
		delete(c.elements, key)
	}
}

// Len returns the number of cached entries
func (c *LRUCache) Len() int {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	return c.lruKeys.Len()
}

// ToMap returns the current cache entries copied into a map
func (c *LRUCache) ToMap() map[interface{}]interface{} {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	ret := make(map[interface{}]interface{}, len(c.elements))
	for k, element := range c.elements {
		ret[k] = element.Value.(*lruEntry).value
	}
	return ret
}
