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

// Package binary implements the Avro binary encoding of primitive values
// and block headers.
package binary

import (
	"encoding/binary"
	"math"
)

// MaxVarintLen is the maximum encoded length of a long
const MaxVarintLen = binary.MaxVarintLen64

// Encoder appends Avro encoded values to a byte buffer
type Encoder struct {
	buf []byte
}

// NewEncoder creates an Encoder appending to buf
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// Bytes returns the encoded bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of encoded bytes
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset discards the encoded bytes, keeping the buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Truncate discards the bytes encoded after n
func (e *Encoder) Truncate(n int) {
	e.buf = e.buf[:n]
}

// Write appends raw bytes
func (e *Encoder) Write(p []byte) (int, error) {
	e.buf = append(e.buf, p...)
	return len(p), nil
}

// WriteNull writes nothing
func (e *Encoder) WriteNull() {}

// WriteBoolean writes a single 0 or 1 byte
func (e *Encoder) WriteBoolean(b bool) {
	if b {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// WriteInt writes a zig-zag varint
func (e *Encoder) WriteInt(i int32) {
	e.buf = AppendLong(e.buf, int64(i))
}

// WriteLong writes a zig-zag varint
func (e *Encoder) WriteLong(i int64) {
	e.buf = AppendLong(e.buf, i)
}

// WriteFloat writes 4 little-endian bytes
func (e *Encoder) WriteFloat(f float32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(f))
}

// WriteDouble writes 8 little-endian bytes
func (e *Encoder) WriteDouble(f float64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(f))
}

// WriteBytes writes a long length followed by the bytes
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = AppendLong(e.buf, int64(len(b)))
	e.buf = append(e.buf, b...)
}

// WriteString writes a long length followed by the UTF-8 bytes
func (e *Encoder) WriteString(s string) {
	e.buf = AppendLong(e.buf, int64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteFixed writes the bytes without a length
func (e *Encoder) WriteFixed(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteBlockHeader writes the item count of an array or map block
func (e *Encoder) WriteBlockHeader(count int64) {
	e.buf = AppendLong(e.buf, count)
}

// WriteBlockEnd writes the zero count terminating an array or map
func (e *Encoder) WriteBlockEnd() {
	e.buf = append(e.buf, 0)
}

// BeginBlock returns a mark to pass to EndBlock once the items of a block
// have been written
func (e *Encoder) BeginBlock() int {
	return len(e.buf)
}

// EndBlock inserts the header of the block started at mark. With sized set
// the header is the negated count followed by the byte size of the items,
// allowing readers to skip the block.
func (e *Encoder) EndBlock(mark int, count int64, sized bool) {
	var hdr [2 * MaxVarintLen]byte
	var h []byte
	if sized {
		h = AppendLong(hdr[:0], -count)
		h = AppendLong(h, int64(len(e.buf)-mark))
	} else {
		h = AppendLong(hdr[:0], count)
	}
	n := len(e.buf)
	e.buf = append(e.buf, h...)
	copy(e.buf[mark+len(h):], e.buf[mark:n])
	copy(e.buf[mark:], h)
}

// AppendLong appends the zig-zag varint encoding of i to buf
func AppendLong(buf []byte, i int64) []byte {
	u := uint64((i << 1) ^ (i >> 63))
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}
