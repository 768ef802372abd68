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
	"testing"

	"github.com/hamba/avro/v2/ocf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confluentinc/avroconvert-go/compress"
)

var hambaCodecs = map[string]ocf.CodecName{
	compress.Null:    ocf.Null,
	compress.Deflate: ocf.Deflate,
	compress.Snappy:  ocf.Snappy,
}

func TestReadFilesWrittenByHamba(t *testing.T) {
	values := readings(250)
	for name, codec := range hambaCodecs {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			enc, err := ocf.NewEncoder(readingSchema, &buf, ocf.WithCodec(codec))
			require.NoError(t, err)
			for _, v := range values {
				require.NoError(t, enc.Encode(v))
			}
			require.NoError(t, enc.Close())

			assert.Equal(t, values, readAll(t, buf.Bytes(), nil))
		})
	}
}

func TestHambaReadsWrittenFiles(t *testing.T) {
	values := readings(250)
	for name := range hambaCodecs {
		t.Run(name, func(t *testing.T) {
			data := writeFile(t, &ConfigMap{CodecKey: name, BlockMaxRecordsKey: 40}, values)

			dec, err := ocf.NewDecoder(bytes.NewReader(data))
			require.NoError(t, err)
			var got []reading
			for dec.HasNext() {
				var v reading
				require.NoError(t, dec.Decode(&v))
				got = append(got, v)
			}
			require.NoError(t, dec.Error())
			assert.Equal(t, values, got)
		})
	}
}
