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
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluentinc/avroconvert-go/avroerr"
)

func TestLongBoundaries(t *testing.T) {
	for _, tc := range []struct {
		v       int64
		encoded []byte
	}{
		{0, []byte{0x00}},
		{-1, []byte{0x01}},
		{1, []byte{0x02}},
		{-64, []byte{0x7f}},
		{64, []byte{0x80, 0x01}},
		{math.MaxInt64, []byte{0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
		{math.MinInt64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	} {
		e := NewEncoder(nil)
		e.WriteLong(tc.v)
		assert.Equal(t, tc.encoded, e.Bytes(), "encode %d", tc.v)

		d := NewDecoder(tc.encoded)
		v, err := d.ReadLong()
		require.NoError(t, err)
		assert.Equal(t, tc.v, v)
		assert.Equal(t, 0, d.Remaining())

		v, err = NewReader(bytes.NewReader(tc.encoded)).ReadLong()
		require.NoError(t, err)
		assert.Equal(t, tc.v, v)
	}
}

func TestIntBoundaries(t *testing.T) {
	for _, v := range []int32{0, -1, 1, math.MaxInt32, math.MinInt32} {
		e := NewEncoder(nil)
		e.WriteInt(v)
		assert.LessOrEqual(t, e.Len(), 5)
		got, err := NewDecoder(e.Bytes()).ReadInt()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestOverlongVarintIsMalformed(t *testing.T) {
	eleven := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, err := NewDecoder(eleven).ReadLong()
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))
	_, err = NewReader(bytes.NewReader(eleven)).ReadLong()
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	six := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, err = NewDecoder(six).ReadInt()
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	e := NewEncoder(nil)
	e.WriteLong(math.MaxInt32 + 1)
	_, err = NewDecoder(e.Bytes()).ReadInt()
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))
}

func TestFloatingPointIsLittleEndian(t *testing.T) {
	e := NewEncoder(nil)
	e.WriteFloat(1)
	e.WriteDouble(-2)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f, 0, 0, 0, 0, 0, 0, 0, 0xc0}, e.Bytes())

	d := NewDecoder(e.Bytes())
	f, err := d.ReadFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(1), f)
	g, err := d.ReadDouble()
	require.NoError(t, err)
	assert.Equal(t, float64(-2), g)
}

func TestBooleanMustBeZeroOrOne(t *testing.T) {
	_, err := NewDecoder([]byte{2}).ReadBoolean()
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	e := NewEncoder(nil)
	e.WriteBoolean(true)
	e.WriteBoolean(false)
	assert.Equal(t, []byte{1, 0}, e.Bytes())
}

func TestBytesAndStrings(t *testing.T) {
	e := NewEncoder(nil)
	e.WriteString("foo")
	e.WriteBytes([]byte{1, 2})
	e.WriteFixed([]byte{9, 9, 9})
	assert.Equal(t, []byte{0x06, 'f', 'o', 'o', 0x04, 1, 2, 9, 9, 9}, e.Bytes())

	d := NewDecoder(e.Bytes())
	s, err := d.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "foo", s)
	b, err := d.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)
	fx, err := d.ReadFixed(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9, 9}, fx)
}

func TestBadLengths(t *testing.T) {
	_, err := NewDecoder([]byte{0x01}).ReadBytes()
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData), "negative length")

	_, err = NewDecoder([]byte{0x08, 'a'}).ReadString()
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	d := NewDecoder([]byte{0x08, 'a', 'b', 'c', 'd'})
	d.MaxBytesLength = 2
	_, err = d.ReadBytes()
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	_, err = NewReader(bytes.NewReader([]byte{0x08, 'a'})).ReadBytes()
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestErrorsCarryOffset(t *testing.T) {
	d := NewDecoder([]byte{0x02, 0x05})
	d.Reset([]byte{0x02, 0x05}, 100)
	_, err := d.ReadLong()
	require.NoError(t, err)
	_, err = d.ReadBoolean()
	var ae *avroerr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, int64(101), ae.Offset)
}

func TestSizedBlocks(t *testing.T) {
	e := NewEncoder([]byte{0xaa})
	mark := e.BeginBlock()
	e.WriteLong(1)
	e.WriteLong(300)
	e.EndBlock(mark, 2, true)
	e.WriteBlockEnd()
	assert.Equal(t, []byte{0xaa, 0x03, 0x06, 0x02, 0xd8, 0x04, 0x00}, e.Bytes())

	d := NewDecoder(e.Bytes()[1:])
	count, size, err := d.ReadBlockHeader()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(3), size)
	require.NoError(t, d.Skip(size))
	count, _, err = d.ReadBlockHeader()
	require.NoError(t, err)
	assert.Zero(t, count)

	e = NewEncoder(nil)
	mark = e.BeginBlock()
	e.WriteLong(1)
	e.EndBlock(mark, 1, false)
	assert.Equal(t, []byte{0x02, 0x02}, e.Bytes())
}
