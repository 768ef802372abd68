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
	"go.uber.org/zap"

	"github.com/confluentinc/avroconvert-go/cache"
	"github.com/confluentinc/avroconvert-go/metrics"
	"github.com/confluentinc/avroconvert-go/serde"
)

type options struct {
	logger       *zap.Logger
	metrics      *metrics.Metrics
	serializer   *serde.Serializer
	deserializer *serde.Deserializer
	schemas      cache.Cache
}

// Option configures a Writer or Reader
type Option func(*options)

// WithLogger sets the logger reporting block activity
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the collectors recording block activity
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithSerializer sets the Serializer a Writer encodes records with
func WithSerializer(s *serde.Serializer) Option {
	return func(o *options) {
		o.serializer = s
	}
}

// WithDeserializer sets the Deserializer a Reader decodes records with
func WithDeserializer(d *serde.Deserializer) Option {
	return func(o *options) {
		o.deserializer = d
	}
}

// WithSchemaCache sets the cache of parsed writer schemas, keyed by schema
// text. Readers sharing a cache share schema instances and so read plans.
func WithSchemaCache(c cache.Cache) Option {
	return func(o *options) {
		o.schemas = c
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
