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
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/confluentinc/avroconvert-go/container"
)

var recodeConf = container.ConfigMap{}

// recodeCmd represents the recode command
var recodeCmd = &cobra.Command{
	Use:   "recode <in> <out>",
	Short: "Rewrite a container file with another codec or block size",
	Long: `Rewrite a container file, keeping its schema and user metadata.

Example:
  avrocat recode -X avro.codec=zstandard -X block.max.records=1000 in.avro out.avro`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := createOutput(args[1])
		if err != nil {
			return err
		}
		n, err := recode(out, in, recodeConf)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		logger.Info("recoded file", zap.Int64("records", n), zap.String("out", args[1]))
		return nil
	},
}

func init() {
	recodeCmd.Flags().VarP(recodeConf, "config", "X", "Writer configuration property (key=value)")
	rootCmd.AddCommand(recodeCmd)
}

// recode copies the records of in to out, returning the record count.
// User metadata of in is kept unless conf overrides it.
func recode(out io.Writer, in io.Reader, conf container.ConfigMap) (int64, error) {
	r, err := container.NewReader(in, nil, container.WithLogger(logger))
	if err != nil {
		return 0, err
	}
	wconf := container.ConfigMap{}
	for k, v := range r.Header().Metadata {
		if !strings.HasPrefix(k, "avro.") {
			wconf[container.MetadataPrefix+k] = v
		}
	}
	for k, v := range conf {
		wconf[k] = v
	}
	w, err := container.NewWriter(out, r.Schema(), &wconf, container.WithLogger(logger))
	if err != nil {
		return 0, err
	}
	var n int64
	for {
		v, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if err := w.Append(v); err != nil {
			return n, err
		}
		n++
	}
	return n, w.Close()
}
