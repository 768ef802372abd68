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
	"go.uber.org/zap"

	"github.com/confluentinc/avroconvert-go/binary"
	"github.com/confluentinc/avroconvert-go/descriptor"
	"github.com/confluentinc/avroconvert-go/metrics"
)

// SerializerConfig is used to pass multiple configuration options to the serializers.
type SerializerConfig struct {
	// SortMapKeys writes map entries in key order, making the encoding of
	// a map deterministic
	SortMapKeys bool
	// BlockLength is the maximum number of items per array or map block.
	// Zero writes each array or map as a single block.
	BlockLength int
	// WriteBlockSizes writes array and map blocks with a negative count
	// followed by the byte size of the block, so readers can skip them
	WriteBlockSizes bool
}

// NewSerializerConfig returns a new configuration instance with sane defaults.
func NewSerializerConfig() *SerializerConfig {
	c := &SerializerConfig{}

	c.SortMapKeys = false
	c.BlockLength = 0
	c.WriteBlockSizes = false

	return c
}

// DefaultMaxCollectionItems bounds the items decoded into one array or map
const DefaultMaxCollectionItems = 1 << 24

// DeserializerConfig is used to pass multiple configuration options to the deserializers.
type DeserializerConfig struct {
	// MaxBytesLength bounds the length of a single bytes or string value
	MaxBytesLength int64
	// MaxCollectionItems bounds the total items of a single array or map
	// across all of its blocks. Zero disables the check.
	MaxCollectionItems int64
	// StrictNames requires named writer and reader types to match by name
	// or reader alias. By default only their kinds must match.
	StrictNames bool
}

// NewDeserializerConfig returns a new configuration instance with sane defaults.
func NewDeserializerConfig() *DeserializerConfig {
	c := &DeserializerConfig{}

	c.MaxBytesLength = binary.DefaultMaxBytesLength
	c.MaxCollectionItems = DefaultMaxCollectionItems
	c.StrictNames = false

	return c
}

type serdeOptions struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	shapes  descriptor.Provider
}

// Option configures a Serde
type Option func(*serdeOptions)

// WithLogger sets the logger used to report plan compilation
func WithLogger(logger *zap.Logger) Option {
	return func(o *serdeOptions) {
		o.logger = logger
	}
}

// WithMetrics sets the collectors recording plan cache activity
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *serdeOptions) {
		o.metrics = m
	}
}

// WithShapeProvider sets the provider describing Go struct types
func WithShapeProvider(p descriptor.Provider) Option {
	return func(o *serdeOptions) {
		o.shapes = p
	}
}
