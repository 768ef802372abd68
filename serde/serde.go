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

// Package serde compiles Avro schemas into reusable plans that encode Go
// values to the Avro binary format and decode them back, resolving the
// differences between the schema data was written with and the schema it
// is read with.
//
// Plans are compiled once per schema (or writer and reader schema pair)
// and cached by schema identity. A Serializer or Deserializer is safe for
// concurrent use.
package serde

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/binary"
	"github.com/confluentinc/avroconvert-go/cache"
	"github.com/confluentinc/avroconvert-go/descriptor"
	"github.com/confluentinc/avroconvert-go/metrics"
	"github.com/confluentinc/avroconvert-go/schema"
)

// Serde holds the plan caches shared by a serializer or deserializer
type Serde struct {
	logger      *zap.Logger
	metrics     *metrics.Metrics
	shapes      descriptor.Provider
	writePlans  cache.Cache
	structPlans cache.Cache
	readPlans   cache.Cache
	bindPlans   cache.Cache
}

type structKey struct {
	record uint64
	shape  uint64
}

type pairKey struct {
	writer uint64
	reader uint64
}

type bindKey struct {
	reader uint64
	typ    reflect.Type
}

func newSerde(opts []Option) *Serde {
	o := &serdeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.shapes == nil {
		o.shapes = descriptor.NewStructProvider()
	}
	return &Serde{
		logger:      o.logger,
		metrics:     o.metrics,
		shapes:      o.shapes,
		writePlans:  cache.NewConcurrentCache(),
		structPlans: cache.NewConcurrentCache(),
		readPlans:   cache.NewConcurrentCache(),
		bindPlans:   cache.NewConcurrentCache(),
	}
}

// Serializer encodes Go values
type Serializer struct {
	*Serde
	Conf *SerializerConfig
}

// Deserializer decodes Avro data into generic values or Go values
type Deserializer struct {
	*Serde
	Conf *DeserializerConfig
}

// NewSerializer creates a Serializer. A nil conf selects the defaults.
func NewSerializer(conf *SerializerConfig, opts ...Option) *Serializer {
	if conf == nil {
		conf = NewSerializerConfig()
	}
	return &Serializer{Serde: newSerde(opts), Conf: conf}
}

// NewDeserializer creates a Deserializer. A nil conf selects the defaults.
func NewDeserializer(conf *DeserializerConfig, opts ...Option) *Deserializer {
	if conf == nil {
		conf = NewDeserializerConfig()
	}
	return &Deserializer{Serde: newSerde(opts), Conf: conf}
}

// WritePlan encodes values of one schema
type WritePlan struct {
	schema schema.Schema
	step   writeStep
}

// Schema returns the schema the plan encodes
func (p *WritePlan) Schema() schema.Schema {
	return p.schema
}

// Encode appends the encoding of v to e. On error the bytes appended so far
// are discarded.
func (p *WritePlan) Encode(e *binary.Encoder, v interface{}) error {
	mark := e.Len()
	if err := p.step(e, v); err != nil {
		e.Truncate(mark)
		return err
	}
	return nil
}

// Compile returns the write plan of s
func (s *Serializer) Compile(sch schema.Schema) (*WritePlan, error) {
	if cached, ok := s.writePlans.Get(sch.ID()); ok {
		s.metrics.CacheHit(metrics.PlanWrite)
		return cached.(*WritePlan), nil
	}
	s.metrics.CacheMiss(metrics.PlanWrite)
	c := newWriteCompiler(s)
	step, err := c.compile(sch)
	if err == nil {
		err = c.finish()
	}
	if err != nil {
		s.metrics.CompileError(metrics.PlanWrite)
		return nil, err
	}
	plan := &WritePlan{schema: sch, step: step}
	s.writePlans.Put(sch.ID(), plan)
	s.logger.Debug("compiled write plan", zap.Stringer("schema", sch), zap.Uint64("id", sch.ID()))
	return plan, nil
}

// Encode appends the encoding of v as sch to e
func (s *Serializer) Encode(e *binary.Encoder, sch schema.Schema, v interface{}) error {
	plan, err := s.Compile(sch)
	if err != nil {
		return err
	}
	return plan.Encode(e, v)
}

// Serialize returns the encoding of v as sch
func (s *Serializer) Serialize(sch schema.Schema, v interface{}) ([]byte, error) {
	e := binary.NewEncoder(make([]byte, 0, 64))
	if err := s.Encode(e, sch, v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// ReadPlan decodes data written with one schema as another
type ReadPlan struct {
	writer schema.Schema
	reader schema.Schema
	step   readStep
}

// Writer returns the schema the data was written with
func (p *ReadPlan) Writer() schema.Schema {
	return p.writer
}

// Reader returns the schema the data is read as
func (p *ReadPlan) Reader() schema.Schema {
	return p.reader
}

// Decode reads one value from d
func (p *ReadPlan) Decode(d *binary.Decoder) (interface{}, error) {
	return p.step(d)
}

// Resolve returns the read plan of data written with writer and read as
// reader. A nil reader reads the data as written.
func (s *Deserializer) Resolve(writer, reader schema.Schema) (*ReadPlan, error) {
	if reader == nil {
		reader = writer
	}
	key := pairKey{writer: writer.ID(), reader: reader.ID()}
	if cached, ok := s.readPlans.Get(key); ok {
		s.metrics.CacheHit(metrics.PlanRead)
		return cached.(*ReadPlan), nil
	}
	s.metrics.CacheMiss(metrics.PlanRead)
	r := &resolver{s: s, records: make(map[pairKey]*readStep), skips: make(map[uint64]*skipStep)}
	step, err := r.resolve(writer, reader)
	if err != nil {
		s.metrics.CompileError(metrics.PlanRead)
		return nil, err
	}
	plan := &ReadPlan{writer: writer, reader: reader, step: step}
	s.readPlans.Put(key, plan)
	s.logger.Debug("resolved read plan",
		zap.Stringer("writer", writer), zap.Uint64("writerId", writer.ID()),
		zap.Stringer("reader", reader), zap.Uint64("readerId", reader.ID()))
	return plan, nil
}

// NewDecoder returns a decoder over data configured for this Deserializer
func (s *Deserializer) NewDecoder(data []byte) *binary.Decoder {
	d := binary.NewDecoder(data)
	d.MaxBytesLength = s.Conf.MaxBytesLength
	return d
}

// Deserialize decodes data written with writer as reader, returning the
// generic value representation
func (s *Deserializer) Deserialize(data []byte, writer, reader schema.Schema) (interface{}, error) {
	plan, err := s.Resolve(writer, reader)
	if err != nil {
		return nil, err
	}
	return plan.Decode(s.NewDecoder(data))
}

// DeserializeInto decodes data written with writer as reader and stores
// the result in dst, which must be a non-nil pointer
func (s *Deserializer) DeserializeInto(data []byte, writer, reader schema.Schema, dst interface{}) error {
	if reader == nil {
		reader = writer
	}
	v, err := s.Deserialize(data, writer, reader)
	if err != nil {
		return err
	}
	return s.Bind(reader, v, dst)
}

// Bind stores a generic value of schema sch in dst, which must be a
// non-nil pointer
func (s *Deserializer) Bind(sch schema.Schema, v interface{}, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return avroerr.New(avroerr.ErrTypeMismatch, "destination must be a non-nil pointer, not %T", dst)
	}
	step, err := s.compileBind(sch, rv.Type().Elem())
	if err != nil {
		return err
	}
	return step(v, rv.Elem())
}

func (s *Deserializer) compileBind(sch schema.Schema, t reflect.Type) (bindStep, error) {
	key := bindKey{reader: sch.ID(), typ: t}
	if cached, ok := s.bindPlans.Get(key); ok {
		s.metrics.CacheHit(metrics.PlanBind)
		return cached.(bindStep), nil
	}
	s.metrics.CacheMiss(metrics.PlanBind)
	b := &binder{s: s, records: make(map[bindKey]*bindStep)}
	step, err := b.compile(sch, t)
	if err != nil {
		s.metrics.CompileError(metrics.PlanBind)
		return nil, err
	}
	s.bindPlans.Put(key, step)
	return step, nil
}
