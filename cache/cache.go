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

// Package cache provides the key-value caches holding parsed schemas and
// compiled plans.
package cache

// Cache maps schema or plan keys to cached values. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the value cached under key and whether it was found
	Get(key interface{}) (interface{}, bool)
	// Put caches value under key, replacing any previous value
	Put(key interface{}, value interface{})
	// Delete removes the entry cached under key
	Delete(key interface{})
	// Len returns the number of cached entries
	Len() int
	// ToMap returns the current cache entries copied into a map
	ToMap() map[interface{}]interface{}
}

// GetOrLoad returns the value cached under key, calling load and caching
// its result on a miss. Failed loads are not cached. Two goroutines missing
// the same key may both load; the last Put wins.
func GetOrLoad(c Cache, key interface{}, load func() (interface{}, error)) (value interface{}, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err := load()
	if err != nil {
		return nil, false, err
	}
	c.Put(key, v)
	return v, false, nil
}
