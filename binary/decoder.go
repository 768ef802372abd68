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

package binary

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/confluentinc/avroconvert-go/avroerr"
)

// DefaultMaxBytesLength bounds the length of a single bytes or string value
const DefaultMaxBytesLength = math.MaxInt32

const (
	maxIntGroups  = 5
	maxLongGroups = 10
)

// Decoder reads Avro encoded values from a byte slice
type Decoder struct {
	buf  []byte
	off  int
	base int64
	// MaxBytesLength bounds bytes and string lengths
	MaxBytesLength int64
}

// NewDecoder creates a Decoder over buf
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf, MaxBytesLength: DefaultMaxBytesLength}
}

// Reset makes the Decoder read buf. Reported offsets start at base.
func (d *Decoder) Reset(buf []byte, base int64) {
	d.buf = buf
	d.off = 0
	d.base = base
}

// Offset returns the absolute offset of the next byte
func (d *Decoder) Offset() int64 {
	return d.base + int64(d.off)
}

// Remaining returns the number of unread bytes
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

// Malformed returns a malformed data error positioned at off
func Malformed(off int64, format string, args ...interface{}) *avroerr.Error {
	return avroerr.New(avroerr.ErrMalformedData, format, args...).WithOffset(off)
}

func (d *Decoder) truncated(start int64, what string) error {
	return avroerr.Wrap(avroerr.ErrMalformedData, io.ErrUnexpectedEOF, "truncated %s", what).WithOffset(start)
}

func (d *Decoder) readVarint(maxGroups int, what string) (int64, error) {
	start := d.Offset()
	var u uint64
	var shift uint
	for i := 0; ; i++ {
		if i == maxGroups {
			return 0, Malformed(start, "%s varint longer than %d bytes", what, maxGroups)
		}
		if d.off >= len(d.buf) {
			return 0, d.truncated(start, what)
		}
		b := d.buf[d.off]
		d.off++
		if i == maxLongGroups-1 && b&0x7f > 1 {
			return 0, Malformed(start, "%s varint overflows 64 bits", what)
		}
		u |= uint64(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// ReadBoolean reads a 0 or 1 byte
func (d *Decoder) ReadBoolean() (bool, error) {
	if d.off >= len(d.buf) {
		return false, d.truncated(d.Offset(), "boolean")
	}
	b := d.buf[d.off]
	if b > 1 {
		return false, Malformed(d.Offset(), "invalid boolean byte 0x%02x", b)
	}
	d.off++
	return b == 1, nil
}

// ReadInt reads a zig-zag varint of at most 5 bytes
func (d *Decoder) ReadInt() (int32, error) {
	start := d.Offset()
	i, err := d.readVarint(maxIntGroups, "int")
	if err != nil {
		return 0, err
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, Malformed(start, "int value %d out of range", i)
	}
	return int32(i), nil
}

// ReadLong reads a zig-zag varint of at most 10 bytes
func (d *Decoder) ReadLong() (int64, error) {
	return d.readVarint(maxLongGroups, "long")
}

// ReadFloat reads 4 little-endian bytes
func (d *Decoder) ReadFloat() (float32, error) {
	if len(d.buf)-d.off < 4 {
		return 0, d.truncated(d.Offset(), "float")
	}
	f := math.Float32frombits(binary.LittleEndian.Uint32(d.buf[d.off:]))
	d.off += 4
	return f, nil
}

// ReadDouble reads 8 little-endian bytes
func (d *Decoder) ReadDouble() (float64, error) {
	if len(d.buf)-d.off < 8 {
		return 0, d.truncated(d.Offset(), "double")
	}
	f := math.Float64frombits(binary.LittleEndian.Uint64(d.buf[d.off:]))
	d.off += 8
	return f, nil
}

func (d *Decoder) readLength(what string) (int, error) {
	start := d.Offset()
	n, err := d.ReadLong()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, Malformed(start, "negative %s length %d", what, n)
	}
	if d.MaxBytesLength > 0 && n > d.MaxBytesLength {
		return 0, Malformed(start, "%s length %d exceeds maximum %d", what, n, d.MaxBytesLength)
	}
	if n > int64(len(d.buf)-d.off) {
		return 0, d.truncated(start, what)
	}
	return int(n), nil
}

// ReadBytes reads a length prefixed byte sequence. The result is a copy.
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.readLength("bytes")
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, d.buf[d.off:])
	d.off += n
	return b, nil
}

// ReadString reads a length prefixed UTF-8 string. The bytes are not
// validated.
func (d *Decoder) ReadString() (string, error) {
	n, err := d.readLength("string")
	if err != nil {
		return "", err
	}
	s := string(d.buf[d.off : d.off+n])
	d.off += n
	return s, nil
}

// ReadFixed reads exactly n bytes. The result is a copy.
func (d *Decoder) ReadFixed(n int) ([]byte, error) {
	if len(d.buf)-d.off < n {
		return nil, d.truncated(d.Offset(), "fixed")
	}
	b := make([]byte, n)
	copy(b, d.buf[d.off:])
	d.off += n
	return b, nil
}

// ReadBlockHeader reads the header of an array or map block. A zero count
// ends the sequence. size is the byte size of the block items, or -1 when
// the writer did not record it.
func (d *Decoder) ReadBlockHeader() (count int64, size int64, err error) {
	start := d.Offset()
	count, err = d.ReadLong()
	if err != nil {
		return 0, 0, err
	}
	if count >= 0 {
		return count, -1, nil
	}
	if count == math.MinInt64 {
		return 0, 0, Malformed(start, "invalid block count")
	}
	size, err = d.ReadLong()
	if err != nil {
		return 0, 0, err
	}
	if size < 0 {
		return 0, 0, Malformed(start, "negative block size %d", size)
	}
	return -count, size, nil
}

// Skip discards n bytes
func (d *Decoder) Skip(n int64) error {
	if n < 0 || n > int64(len(d.buf)-d.off) {
		return d.truncated(d.Offset(), "block")
	}
	d.off += int(n)
	return nil
}

// SkipBytes discards a length prefixed byte sequence
func (d *Decoder) SkipBytes() error {
	n, err := d.readLength("bytes")
	if err != nil {
		return err
	}
	d.off += n
	return nil
}
