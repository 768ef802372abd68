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
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/binary"
	"github.com/confluentinc/avroconvert-go/compress"
	"github.com/confluentinc/avroconvert-go/metrics"
	"github.com/confluentinc/avroconvert-go/schema"
	"github.com/confluentinc/avroconvert-go/schema/schematext"
	"github.com/confluentinc/avroconvert-go/serde"
)

// Writer appends records to a container file. A Writer is not safe for
// concurrent use.
type Writer struct {
	w          io.Writer
	header     *Header
	plan       *serde.WritePlan
	codec      compress.Codec
	blockSize  int
	maxRecords int
	logger     *zap.Logger
	metrics    *metrics.Metrics

	block      *binary.Encoder
	count      int64
	frame      *binary.Encoder
	compressed []byte
	closed     bool
}

// NewWriter writes the header of a container file holding records of s to
// w. A nil conf selects the defaults.
func NewWriter(w io.Writer, s schema.Schema, conf *ConfigMap, opts ...Option) (*Writer, error) {
	if conf == nil {
		conf = &ConfigMap{}
	}
	c := conf.clone()
	o := newOptions(opts)

	codecName, err := c.getString(CodecKey, compress.Null)
	if err != nil {
		return nil, err
	}
	level, err := c.getInt(DeflateLevelKey, 0)
	if err != nil {
		return nil, err
	}
	codec, err := compress.LookupLevel(codecName, level)
	if err != nil {
		return nil, err
	}
	blockSize, err := c.getInt(BlockSizeKey, DefaultBlockSize)
	if err != nil {
		return nil, err
	}
	if blockSize <= 0 {
		return nil, avroerr.New(avroerr.ErrInvalidArg, "%s must be positive, not %d", BlockSizeKey, blockSize)
	}
	maxRecords, err := c.getInt(BlockMaxRecordsKey, 0)
	if err != nil {
		return nil, err
	}
	if maxRecords < 0 {
		return nil, avroerr.New(avroerr.ErrInvalidArg, "%s must not be negative, not %d", BlockMaxRecordsKey, maxRecords)
	}
	md, err := c.metadata()
	if err != nil {
		return nil, err
	}

	ser := o.serializer
	if ser == nil {
		ser = serde.NewSerializer(nil, serde.WithLogger(o.logger), serde.WithMetrics(o.metrics))
	}
	plan, err := ser.Compile(s)
	if err != nil {
		return nil, err
	}
	text, err := schematext.Render(s)
	if err != nil {
		return nil, err
	}
	marker, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	md[SchemaMetadataKey] = []byte(text)
	md[CodecMetadataKey] = []byte(codec.Name())
	h := &Header{Magic: magic, Metadata: md, Sync: marker}

	cw := &Writer{
		w:          w,
		header:     h,
		plan:       plan,
		codec:      codec,
		blockSize:  blockSize,
		maxRecords: maxRecords,
		logger:     o.logger,
		metrics:    o.metrics,
		block:      binary.NewEncoder(make([]byte, 0, blockSize)),
		frame:      binary.NewEncoder(nil),
	}
	h.encode(cw.frame)
	if _, err := w.Write(cw.frame.Bytes()); err != nil {
		return nil, err
	}
	cw.logger.Debug("wrote container header", zap.String("codec", codec.Name()), zap.Int("schemaBytes", len(text)))
	return cw, nil
}

// Header returns the file header
func (w *Writer) Header() Header {
	return *w.header
}

// Append encodes v into the current block, flushing the block once it
// reaches the configured size or record count. A value that fails to
// encode leaves the block unchanged.
func (w *Writer) Append(v interface{}) error {
	if w.closed {
		return avroerr.New(avroerr.ErrInvalidArg, "append to closed writer")
	}
	if err := w.plan.Encode(w.block, v); err != nil {
		return err
	}
	w.count++
	if w.block.Len() >= w.blockSize || (w.maxRecords > 0 && w.count >= int64(w.maxRecords)) {
		return w.Flush()
	}
	return nil
}

// Flush writes the current block, if it holds any records
func (w *Writer) Flush() error {
	if w.count == 0 {
		return nil
	}
	var err error
	w.compressed, err = w.codec.Compress(w.compressed[:0], w.block.Bytes())
	if err != nil {
		return err
	}
	w.frame.Reset()
	w.frame.WriteLong(w.count)
	w.frame.WriteBytes(w.compressed)
	w.frame.WriteFixed(w.header.Sync[:])
	if _, err := w.w.Write(w.frame.Bytes()); err != nil {
		return err
	}
	w.metrics.Block(metrics.DirectionWrite, w.count, len(w.compressed))
	w.logger.Debug("flushed block",
		zap.Int64("records", w.count),
		zap.Int("bytes", w.block.Len()),
		zap.Int("compressedBytes", len(w.compressed)))
	w.block.Reset()
	w.count = 0
	return nil
}

// Close flushes the last block. The underlying writer is not closed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	err := w.Flush()
	w.closed = true
	return err
}
