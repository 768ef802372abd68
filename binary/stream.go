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
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/confluentinc/avroconvert-go/avroerr"
)

// Reader reads Avro encoded values from a stream, tracking the offset.
// It is used for framing, where values are not known to be in memory.
type Reader struct {
	r   *bufio.Reader
	off int64
	// MaxBytesLength bounds bytes lengths
	MaxBytesLength int64
}

// NewReader creates a Reader over r
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br, MaxBytesLength: DefaultMaxBytesLength}
}

// Offset returns the number of bytes consumed
func (r *Reader) Offset() int64 {
	return r.off
}

// AtEOF reports whether the stream has no more bytes
func (r *Reader) AtEOF() bool {
	_, err := r.r.Peek(1)
	return err != nil
}

func (r *Reader) unexpected(start int64, what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return avroerr.Wrap(avroerr.ErrMalformedData, err, "truncated %s", what).WithOffset(start)
}

// ReadLong reads a zig-zag varint of at most 10 bytes
func (r *Reader) ReadLong() (int64, error) {
	start := r.off
	var u uint64
	var shift uint
	for i := 0; ; i++ {
		if i == maxLongGroups {
			return 0, Malformed(start, "long varint longer than %d bytes", maxLongGroups)
		}
		b, err := r.r.ReadByte()
		if err != nil {
			return 0, r.unexpected(start, "long", err)
		}
		r.off++
		if i == maxLongGroups-1 && b&0x7f > 1 {
			return 0, Malformed(start, "long varint overflows 64 bits")
		}
		u |= uint64(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// ReadFull reads exactly len(p) bytes
func (r *Reader) ReadFull(p []byte, what string) error {
	start := r.off
	n, err := io.ReadFull(r.r, p)
	r.off += int64(n)
	if err != nil {
		return r.unexpected(start, what, err)
	}
	return nil
}

// ReadBytes reads a length prefixed byte sequence
func (r *Reader) ReadBytes() ([]byte, error) {
	start := r.off
	n, err := r.ReadLong()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, Malformed(start, "negative bytes length %d", n)
	}
	if r.MaxBytesLength > 0 && n > r.MaxBytesLength {
		return nil, Malformed(start, "bytes length %d exceeds maximum %d", n, r.MaxBytesLength)
	}
	return r.ReadN(n, "bytes")
}

// ReadN reads exactly n bytes. The buffer grows as data arrives, so a
// corrupt length fails on truncation rather than on allocation.
func (r *Reader) ReadN(n int64, what string) ([]byte, error) {
	start := r.off
	var buf bytes.Buffer
	if n < 64*1024 {
		buf.Grow(int(n))
	}
	m, err := io.CopyN(&buf, r.r, n)
	r.off += m
	if err != nil {
		return nil, r.unexpected(start, what, err)
	}
	return buf.Bytes(), nil
}

// ReadString reads a length prefixed string
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	return string(b), err
}
