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
	"bytes"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/binary"
	"github.com/confluentinc/avroconvert-go/cache"
	"github.com/confluentinc/avroconvert-go/compress"
	"github.com/confluentinc/avroconvert-go/metrics"
	"github.com/confluentinc/avroconvert-go/schema"
	"github.com/confluentinc/avroconvert-go/schema/schematext"
	"github.com/confluentinc/avroconvert-go/serde"
)

var (
	defaultDeserializer = serde.NewDeserializer(nil)

	schemaCachesLock sync.Mutex
	schemaCaches     = map[int]*cache.LRUCache{}
)

// sharedSchemaCache returns the writer schema cache of the given capacity,
// shared by every Reader configured with it
func sharedSchemaCache(capacity int) (cache.Cache, error) {
	schemaCachesLock.Lock()
	defer schemaCachesLock.Unlock()
	if c, ok := schemaCaches[capacity]; ok {
		return c, nil
	}
	c, err := cache.NewLRUCache(capacity)
	if err != nil {
		return nil, avroerr.Wrap(avroerr.ErrInvalidArg, err, "%s", SchemaCacheSizeKey)
	}
	schemaCaches[capacity] = c
	return c, nil
}

// Stats counts what a Reader has consumed
type Stats struct {
	Blocks  int64
	Records int64
	// Bytes is the total size of block payloads as stored
	Bytes int64
}

// Reader reads records from a container file. A Reader is not safe for
// concurrent use.
type Reader struct {
	r       *binary.Reader
	header  *Header
	writer  schema.Schema
	plan    *serde.ReadPlan
	de      *serde.Deserializer
	codec   compress.Codec
	logger  *zap.Logger
	metrics *metrics.Metrics

	dec       *binary.Decoder
	remaining int64
	stats     Stats
	err       error
}

// NewReader reads the header of the container file in r. Records are read
// as the writer schema, or as the schema set with reader.schema, given as
// a schema.Schema or as schema text.
func NewReader(r io.Reader, conf *ConfigMap, opts ...Option) (*Reader, error) {
	if conf == nil {
		conf = &ConfigMap{}
	}
	c := *conf
	o := newOptions(opts)

	de := o.deserializer
	if de == nil {
		if o.metrics != nil {
			de = serde.NewDeserializer(nil, serde.WithLogger(o.logger), serde.WithMetrics(o.metrics))
		} else {
			de = defaultDeserializer
		}
	}
	schemas := o.schemas
	if schemas == nil {
		size, err := c.getInt(SchemaCacheSizeKey, DefaultSchemaCacheSize)
		if err != nil {
			return nil, err
		}
		if schemas, err = sharedSchemaCache(size); err != nil {
			return nil, err
		}
	}

	br := binary.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	codec, err := compress.Lookup(h.Codec())
	if err != nil {
		return nil, err
	}
	writer, err := parseCached(schemas, h.Schema())
	if err != nil {
		return nil, err
	}

	var readerSchema schema.Schema
	switch rs := c[ReaderSchemaKey].(type) {
	case nil:
	case schema.Schema:
		readerSchema = rs
	case string:
		if readerSchema, err = parseCached(schemas, rs); err != nil {
			return nil, err
		}
	default:
		return nil, avroerr.New(avroerr.ErrInvalidArg, "%s expects a schema or schema text, not %T", ReaderSchemaKey, rs)
	}
	plan, err := de.Resolve(writer, readerSchema)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("read container header",
		zap.String("codec", codec.Name()),
		zap.Stringer("writer", writer),
		zap.Stringer("reader", plan.Reader()))
	return &Reader{
		r:       br,
		header:  h,
		writer:  writer,
		plan:    plan,
		de:      de,
		codec:   codec,
		logger:  o.logger,
		metrics: o.metrics,
		dec:     de.NewDecoder(nil),
	}, nil
}

func parseCached(schemas cache.Cache, text string) (schema.Schema, error) {
	s, _, err := cache.GetOrLoad(schemas, text, func() (interface{}, error) {
		return schematext.Parse(text)
	})
	if err != nil {
		return nil, err
	}
	return s.(schema.Schema), nil
}

// Header returns the file header
func (r *Reader) Header() Header {
	return *r.header
}

// Schema returns the writer schema
func (r *Reader) Schema() schema.Schema {
	return r.writer
}

// ReaderSchema returns the schema records are read as
func (r *Reader) ReaderSchema() schema.Schema {
	return r.plan.Reader()
}

// Stats returns the counts of blocks and records read so far
func (r *Reader) Stats() Stats {
	return r.stats
}

// Read returns the next record in its generic representation, or io.EOF
// after the last one. Once Read fails, it keeps returning the same error.
func (r *Reader) Read() (interface{}, error) {
	if r.err != nil {
		return nil, r.err
	}
	for r.remaining == 0 {
		if r.r.AtEOF() {
			r.err = io.EOF
			return nil, r.err
		}
		if err := r.nextBlock(); err != nil {
			r.err = err
			return nil, err
		}
	}
	v, err := r.plan.Decode(r.dec)
	if err != nil {
		r.err = err
		return nil, err
	}
	r.remaining--
	r.stats.Records++
	if r.remaining == 0 && r.dec.Remaining() > 0 {
		r.err = binary.Malformed(r.dec.Offset(), "%d bytes follow the last record of the block", r.dec.Remaining())
		return nil, r.err
	}
	return v, nil
}

// ReadInto reads the next record into dst, which must be a non-nil pointer
func (r *Reader) ReadInto(dst interface{}) error {
	v, err := r.Read()
	if err != nil {
		return err
	}
	return r.de.Bind(r.plan.Reader(), v, dst)
}

func (r *Reader) nextBlock() error {
	start := r.r.Offset()
	count, err := r.r.ReadLong()
	if err != nil {
		return err
	}
	if count < 0 {
		return binary.Malformed(start, "negative block count %d", count)
	}
	sizeStart := r.r.Offset()
	size, err := r.r.ReadLong()
	if err != nil {
		return err
	}
	if size < 0 {
		return binary.Malformed(sizeStart, "negative block size %d", size)
	}
	payloadStart := r.r.Offset()
	payload, err := r.r.ReadN(size, "block")
	if err != nil {
		return err
	}
	syncStart := r.r.Offset()
	var marker [SyncSize]byte
	if err := r.r.ReadFull(marker[:], "sync marker"); err != nil {
		return err
	}
	if !bytes.Equal(marker[:], r.header.Sync[:]) {
		r.logger.Warn("sync marker mismatch", zap.Int64("offset", syncStart), zap.Int64("block", r.stats.Blocks))
		return avroerr.New(avroerr.ErrCorruptedSyncMarker, "block at offset %d is not followed by the sync marker", start).
			WithOffset(syncStart)
	}
	data, err := r.codec.Decompress(payload)
	if err != nil {
		var ae *avroerr.Error
		if errors.As(err, &ae) {
			ae.WithOffset(payloadStart)
		}
		return err
	}
	if count == 0 && len(data) > 0 {
		return binary.Malformed(payloadStart, "empty block holds %d bytes", len(data))
	}
	r.dec.Reset(data, payloadStart)
	r.remaining = count
	r.stats.Blocks++
	r.stats.Bytes += size
	r.metrics.Block(metrics.DirectionRead, count, int(size))
	r.logger.Debug("read block", zap.Int64("records", count), zap.Int64("bytes", size), zap.Int64("offset", start))
	return nil
}
