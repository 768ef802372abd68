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

package compress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluentinc/avroconvert-go/avroerr"
)

func TestCodecRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("avro block payload "), 200)
	for _, name := range []string{Null, Deflate, Snappy, Zstandard} {
		c, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())

		compressed, err := c.Compress([]byte{0xff}, payload)
		require.NoError(t, err, name)
		assert.Equal(t, byte(0xff), compressed[0], "%s must append to dst", name)
		if name != Null {
			assert.Less(t, len(compressed), len(payload), name)
		}

		out, err := c.Decompress(compressed[1:])
		require.NoError(t, err, name)
		assert.Equal(t, payload, out, name)
	}
}

func TestUnknownCodec(t *testing.T) {
	_, err := Lookup("lzo")
	assert.True(t, errors.Is(err, avroerr.ErrUnsupportedCodec))

	c, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, Null, c.Name())
	assert.Contains(t, Names(), Zstandard)
}

func TestDeflateLevel(t *testing.T) {
	_, err := LookupLevel(Deflate, 9)
	require.NoError(t, err)
	_, err = LookupLevel(Deflate, 42)
	assert.True(t, errors.Is(err, avroerr.ErrUnsupportedCodec))
}

func TestSnappyChecksum(t *testing.T) {
	c, err := Lookup(Snappy)
	require.NoError(t, err)
	compressed, err := c.Compress(nil, []byte("hello, hello, hello"))
	require.NoError(t, err)
	compressed[len(compressed)-1] ^= 0xff
	_, err = c.Decompress(compressed)
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))

	_, err = c.Decompress([]byte{1, 2})
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))
}

func TestCorruptDeflate(t *testing.T) {
	c, err := Lookup(Deflate)
	require.NoError(t, err)
	_, err = c.Decompress([]byte{0xff, 0xff, 0xff})
	assert.True(t, errors.Is(err, avroerr.ErrMalformedData))
}
