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
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/golang/snappy"
)

// snappyCodec writes a snappy block followed by the big-endian CRC-32 of
// the uncompressed data
type snappyCodec struct{}

func (snappyCodec) Name() string {
	return Snappy
}

func (snappyCodec) Compress(dst, src []byte) ([]byte, error) {
	enc := snappy.Encode(nil, src)
	dst = append(dst, enc...)
	return binary.BigEndian.AppendUint32(dst, crc32.ChecksumIEEE(src)), nil
}

func (snappyCodec) Decompress(src []byte) ([]byte, error) {
	if len(src) < 4 {
		return nil, corrupt(Snappy, errors.New("missing checksum"))
	}
	n := len(src) - 4
	out, err := snappy.Decode(nil, src[:n])
	if err != nil {
		return nil, corrupt(Snappy, err)
	}
	if crc32.ChecksumIEEE(out) != binary.BigEndian.Uint32(src[n:]) {
		return nil, corrupt(Snappy, errors.New("checksum mismatch"))
	}
	return out, nil
}
