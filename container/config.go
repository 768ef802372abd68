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

package container

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/confluentinc/avroconvert-go/avroerr"
)

// Configuration properties
const (
	// CodecKey selects the block compression codec of a Writer
	CodecKey = "avro.codec"
	// BlockSizeKey is the uncompressed block size, in bytes, at which a
	// Writer flushes a block
	BlockSizeKey = "block.size.bytes"
	// BlockMaxRecordsKey is the record count at which a Writer flushes a
	// block. 0 means unlimited.
	BlockMaxRecordsKey = "block.max.records"
	// DeflateLevelKey is the deflate compression level
	DeflateLevelKey = "deflate.level"
	// SchemaCacheSizeKey bounds the number of writer schemas a Reader keeps
	// parsed
	SchemaCacheSizeKey = "schema.cache.size"
	// ReaderSchemaKey is the schema a Reader resolves records to, either a
	// schema.Schema or schema text
	ReaderSchemaKey = "reader.schema"
	// MetadataPrefix prefixes user metadata entries written to the header
	MetadataPrefix = "metadata."
)

// Defaults
const (
	DefaultBlockSize       = 64000
	DefaultSchemaCacheSize = 1000
)

// ConfigValue supports the following types:
//
//	bool, int, string, any type with the standard String() interface
type ConfigValue interface{}

// ConfigMap is a map containing container configuration properties.
// Keys prefixed with "metadata." set user metadata on written files.
type ConfigMap map[string]ConfigValue

// SetKey sets configuration property key to value.
func (m ConfigMap) SetKey(key string, value ConfigValue) error {
	m[key] = value
	return nil
}

// Set implements flag.Set (command line argument parser) as a convenience
// for `-X key=value` config.
func (m ConfigMap) Set(kv string) error {
	i := strings.Index(kv, "=")
	if i == -1 {
		return avroerr.New(avroerr.ErrInvalidArg, "Expected key=value")
	}

	k := kv[:i]
	v := kv[i+1:]

	return m.SetKey(k, v)
}

// String implements flag.Value
func (m ConfigMap) String() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := value2string(m[k])
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

// Type implements pflag.Value
func (m ConfigMap) Type() string {
	return "key=value"
}

func value2string(v ConfigValue) (ret string, errstr string) {

	errstr = ""
	switch x := v.(type) {
	case bool:
		if x {
			ret = "true"
		} else {
			ret = "false"
		}
	case int:
		ret = fmt.Sprintf("%d", x)
	case string:
		ret = x
	case fmt.Stringer:
		ret = x.String()
	default:
		ret = ""
		errstr = fmt.Sprintf("Invalid value type %T", v)
	}

	return ret, errstr
}

// get finds key in the configmap and returns its value.
// If the key is not found defval is returned.
// If the key is found but the type is mismatched an error is returned.
func (m ConfigMap) get(key string, defval ConfigValue) (ConfigValue, error) {
	v, ok := m[key]
	if !ok {
		return defval, nil
	}

	if defval != nil && reflect.TypeOf(defval) != reflect.TypeOf(v) {
		return nil, avroerr.New(avroerr.ErrInvalidArg, "%s expects type %T, not %T", key, defval, v)
	}

	return v, nil
}

// getInt returns an integer property, accepting ints and decimal strings
// as set by Set()
func (m ConfigMap) getInt(key string, defval int) (int, error) {
	v, ok := m[key]
	if !ok {
		return defval, nil
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, avroerr.Wrap(avroerr.ErrInvalidArg, err, "%s expects an integer, not %q", key, x)
		}
		return n, nil
	}
	return 0, avroerr.New(avroerr.ErrInvalidArg, "%s expects type int, not %T", key, v)
}

// getString returns a string property
func (m ConfigMap) getString(key string, defval string) (string, error) {
	v, ok := m[key]
	if !ok {
		return defval, nil
	}
	s, errstr := value2string(v)
	if errstr != "" {
		return "", avroerr.New(avroerr.ErrInvalidArg, "%s for key %s (expected string,bool,int)", errstr, key)
	}
	return s, nil
}

// metadata returns the user metadata entries
func (m ConfigMap) metadata() (map[string][]byte, error) {
	md := make(map[string][]byte)
	for k, v := range m {
		if !strings.HasPrefix(k, MetadataPrefix) {
			continue
		}
		name := strings.TrimPrefix(k, MetadataPrefix)
		if strings.HasPrefix(name, "avro.") {
			return nil, avroerr.New(avroerr.ErrInvalidArg, "metadata key %s is reserved", name)
		}
		switch x := v.(type) {
		case []byte:
			md[name] = x
		default:
			s, errstr := value2string(v)
			if errstr != "" {
				return nil, avroerr.New(avroerr.ErrInvalidArg, "%s for key %s", errstr, k)
			}
			md[name] = []byte(s)
		}
	}
	return md, nil
}

func (m ConfigMap) clone() ConfigMap {
	m2 := make(ConfigMap)
	for k, v := range m {
		m2[k] = v
	}
	return m2
}

// Get finds the given key in the ConfigMap and returns its value.
// If the key is not found `defval` is returned.
// If the key is found but the type does not match that of `defval` (unless nil)
// an ErrInvalidArg error is returned.
func (m ConfigMap) Get(key string, defval ConfigValue) (ConfigValue, error) {
	return m.get(key, defval)
}
