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

// Package compress provides the block compression codecs of container
// files, keyed by the name stored in the avro.codec header entry.
package compress

import (
	"sort"
	"sync"

	"github.com/confluentinc/avroconvert-go/avroerr"
)

// Standard avro.codec names
const (
	Null      = "null"
	Deflate   = "deflate"
	Snappy    = "snappy"
	Zstandard = "zstandard"
)

// Codec compresses and decompresses whole blocks
type Codec interface {
	// Name returns the avro.codec header value
	Name() string
	// Compress appends the compressed form of src to dst
	Compress(dst, src []byte) ([]byte, error)
	// Decompress returns the decompressed form of src
	Decompress(src []byte) ([]byte, error)
}

var (
	registryLock sync.RWMutex
	registry     = map[string]func(level int) (Codec, error){}
)

func init() {
	Register(Null, func(int) (Codec, error) { return nullCodec{}, nil })
	Register(Deflate, newDeflateCodec)
	Register(Snappy, func(int) (Codec, error) { return snappyCodec{}, nil })
	Register(Zstandard, newZstdCodec)
}

// Register makes a codec constructor available under name. The level is
// codec specific; 0 selects the codec default.
func Register(name string, factory func(level int) (Codec, error)) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[name] = factory
}

// Lookup returns the codec registered under name with the default level.
// An empty name is the null codec.
func Lookup(name string) (Codec, error) {
	return LookupLevel(name, 0)
}

// LookupLevel returns the codec registered under name with the given level
func LookupLevel(name string, level int) (Codec, error) {
	if name == "" {
		name = Null
	}
	registryLock.RLock()
	factory, ok := registry[name]
	registryLock.RUnlock()
	if !ok {
		return nil, avroerr.New(avroerr.ErrUnsupportedCodec, "unknown codec %q", name)
	}
	c, err := factory(level)
	if err != nil {
		return nil, avroerr.Wrap(avroerr.ErrUnsupportedCodec, err, "codec %s", name)
	}
	return c, nil
}

// Names returns the registered codec names, sorted
func Names() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type nullCodec struct{}

func (nullCodec) Name() string {
	return Null
}

func (nullCodec) Compress(dst, src []byte) ([]byte, error) {
	return append(dst, src...), nil
}

func (nullCodec) Decompress(src []byte) ([]byte, error) {
	return src, nil
}

func corrupt(name string, err error) error {
	return avroerr.Wrap(avroerr.ErrMalformedData, err, "%s block", name)
}
