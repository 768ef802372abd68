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

package cmd

import (
	"encoding/hex"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/confluentinc/avroconvert-go/container"
)

// fileInfo is the summary printed by the meta command
type fileInfo struct {
	Codec    string            `json:"codec"`
	Sync     string            `json:"sync"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Schema   json.RawMessage   `json:"schema"`
	Blocks   int64             `json:"blocks"`
	Records  int64             `json:"records"`
	Bytes    int64             `json:"bytes"`
}

// metaCmd represents the meta command
var metaCmd = &cobra.Command{
	Use:   "meta <file>",
	Short: "Print the header and block statistics of a container file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()
		info, err := describe(in)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(out, '\n'))
		return err
	},
}

func init() {
	rootCmd.AddCommand(metaCmd)
}

// describe reads every block of the file, so the statistics cover it whole
func describe(in io.Reader) (*fileInfo, error) {
	r, err := container.NewReader(in, nil, container.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	for {
		if _, err := r.Read(); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
	}
	h := r.Header()
	info := &fileInfo{
		Codec:  h.Codec(),
		Sync:   hex.EncodeToString(h.Sync[:]),
		Schema: json.RawMessage(h.Schema()),
	}
	for k, v := range h.Metadata {
		if k == container.SchemaMetadataKey || k == container.CodecMetadataKey {
			continue
		}
		if info.Metadata == nil {
			info.Metadata = make(map[string]string)
		}
		info.Metadata[k] = string(v)
	}
	stats := r.Stats()
	info.Blocks, info.Records, info.Bytes = stats.Blocks, stats.Records, stats.Bytes
	return info, nil
}
