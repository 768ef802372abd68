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

// Package container reads and writes Avro object container files: a header
// holding the writer schema and codec, followed by compressed blocks of
// records, each terminated by the file's sync marker.
package container

import (
	"bytes"
	"math"
	"sort"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/binary"
)

// Reserved metadata keys
const (
	SchemaMetadataKey = "avro.schema"
	CodecMetadataKey  = "avro.codec"
)

// SyncSize is the length of a sync marker
const SyncSize = 16

var magic = [4]byte{'O', 'b', 'j', 1}

// Header is the file header of a container file
type Header struct {
	Magic    [4]byte
	Metadata map[string][]byte
	Sync     [SyncSize]byte
}

// Codec returns the codec name, "null" when absent
func (h *Header) Codec() string {
	if c, ok := h.Metadata[CodecMetadataKey]; ok && len(c) > 0 {
		return string(c)
	}
	return "null"
}

// Schema returns the writer schema text
func (h *Header) Schema() string {
	return string(h.Metadata[SchemaMetadataKey])
}

func (h *Header) encode(e *binary.Encoder) {
	e.WriteFixed(h.Magic[:])
	keys := make([]string, 0, len(h.Metadata))
	for k := range h.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		e.WriteBlockHeader(int64(len(keys)))
		for _, k := range keys {
			e.WriteString(k)
			e.WriteBytes(h.Metadata[k])
		}
	}
	e.WriteBlockEnd()
	e.WriteFixed(h.Sync[:])
}

func readHeader(r *binary.Reader) (*Header, error) {
	h := &Header{Metadata: make(map[string][]byte)}
	if err := r.ReadFull(h.Magic[:], "magic"); err != nil {
		return nil, avroerr.Wrap(avroerr.ErrInvalidFormat, err, "not a container file")
	}
	if !bytes.Equal(h.Magic[:], magic[:]) {
		return nil, avroerr.New(avroerr.ErrInvalidFormat, "not a container file: magic %q", h.Magic[:]).WithOffset(0)
	}
	for {
		start := r.Offset()
		count, err := r.ReadLong()
		if err != nil {
			return nil, err
		}
		if count == 0 {
			break
		}
		if count == math.MinInt64 {
			return nil, binary.Malformed(start, "invalid metadata block count")
		}
		if count < 0 {
			count = -count
			if _, err := r.ReadLong(); err != nil {
				return nil, err
			}
		}
		for i := int64(0); i < count; i++ {
			k, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			v, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			if _, dup := h.Metadata[k]; dup {
				return nil, avroerr.New(avroerr.ErrInvalidFormat, "duplicate metadata key %q", k).WithOffset(start)
			}
			h.Metadata[k] = v
		}
	}
	if err := r.ReadFull(h.Sync[:], "sync marker"); err != nil {
		return nil, err
	}
	if _, ok := h.Metadata[SchemaMetadataKey]; !ok {
		return nil, avroerr.New(avroerr.ErrInvalidFormat, "header has no %s", SchemaMetadataKey)
	}
	return h, nil
}
