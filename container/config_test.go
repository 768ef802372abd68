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
	"errors"
	"fmt"
	"testing"

	"github.com/confluentinc/avroconvert-go/avroerr"
)

// A custom type with Stringer interface to be used to test config map APIs
type levelType struct {
	Level int
}

// implements String() interface
func (l levelType) String() string {
	return fmt.Sprintf("%d", l.Level)
}

// Test config map APIs
func TestConfigMapAPIs(t *testing.T) {
	config := &ConfigMap{}

	// set a good key via SetKey()
	err := config.SetKey(CodecKey, "deflate")
	if err != nil {
		t.Errorf("Failed to set key via SetKey(). Error: %s\n", err)
	}

	// test custom Stringer type
	err = config.SetKey("metadata.level", levelType{Level: 3})
	if err != nil {
		t.Errorf("Failed to set custom Stringer type via SetKey(). Error: %s\n", err)
	}

	// test integer value
	err = config.SetKey(BlockMaxRecordsKey, 10)
	if err != nil {
		t.Errorf("Failed to set integer value via SetKey(). Error: %s\n", err)
	}

	// set a good key-value pair via Set()
	err = config.Set("block.size.bytes=4096")
	if err != nil {
		t.Errorf("Failed to set key-value pair via Set(). Error: %s\n", err)
	}

	// negative test cases
	// set a bad key-value pair via Set()
	err = config.Set("block.size.bytes:4096")
	if err == nil {
		t.Errorf("Expected failure when setting invalid key-value pair via Set()")
	}
	if !errors.Is(err, avroerr.ErrInvalidArg) {
		t.Errorf("Expected ErrInvalidArg, got %v", err)
	}

	// integers set as strings are parsed
	n, err := config.getInt(BlockSizeKey, DefaultBlockSize)
	if err != nil || n != 4096 {
		t.Errorf("Expected %s 4096, got %d (%v)", BlockSizeKey, n, err)
	}

	n, err = config.getInt(BlockMaxRecordsKey, 0)
	if err != nil || n != 10 {
		t.Errorf("Expected %s 10, got %d (%v)", BlockMaxRecordsKey, n, err)
	}

	// unset keys return the default
	n, err = config.getInt(DeflateLevelKey, 5)
	if err != nil || n != 5 {
		t.Errorf("Expected default deflate level 5, got %d (%v)", n, err)
	}

	// Get() enforces the type of the default
	v, err := config.Get(CodecKey, "null")
	if err != nil || v != "deflate" {
		t.Errorf("Expected codec deflate, got %v (%v)", v, err)
	}
	_, err = config.Get(CodecKey, 0)
	if err == nil {
		t.Errorf("Expected type mismatch for %s", CodecKey)
	}

	config.Set("block.max.records=many")
	_, err = config.getInt(BlockMaxRecordsKey, 0)
	if !errors.Is(err, avroerr.ErrInvalidArg) {
		t.Errorf("Expected ErrInvalidArg for non-integer value, got %v", err)
	}

	expected := "avro.codec=deflate,block.max.records=many,block.size.bytes=4096,metadata.level=3"
	if s := config.String(); s != expected {
		t.Errorf("Expected %q, got %q", expected, s)
	}
}

func TestConfigMapMetadata(t *testing.T) {
	config := ConfigMap{
		"metadata.origin":  "sensor-7",
		"metadata.payload": []byte{0, 1, 2},
		"metadata.retries": 3,
		CodecKey:           "snappy",
	}

	md, err := config.metadata()
	if err != nil {
		t.Fatalf("metadata() failed: %s", err)
	}
	if len(md) != 3 {
		t.Errorf("Expected 3 metadata entries, got %d: %v", len(md), md)
	}
	if string(md["origin"]) != "sensor-7" {
		t.Errorf("Expected origin sensor-7, got %q", md["origin"])
	}
	if string(md["payload"]) != "\x00\x01\x02" {
		t.Errorf("Expected raw payload bytes, got %q", md["payload"])
	}
	if string(md["retries"]) != "3" {
		t.Errorf("Expected retries 3, got %q", md["retries"])
	}

	config.SetKey("metadata.avro.schema", "\"long\"")
	if _, err = config.metadata(); !errors.Is(err, avroerr.ErrInvalidArg) {
		t.Errorf("Expected reserved metadata key to fail, got %v", err)
	}
}
