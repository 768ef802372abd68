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

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/confluentinc/avroconvert-go/container"
	"github.com/confluentinc/avroconvert-go/schema"
)

var (
	writeSchema string
	writeConf   = container.ConfigMap{}
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write <in.jsonl> <out>",
	Short: "Write JSON records to a container file",
	Long: `Write a stream of JSON objects, one record each, to a container file.

Example:
  avrocat write --schema reading.avsc -X avro.codec=deflate readings.jsonl readings.avro`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSchema(writeSchema)
		if err != nil {
			return err
		}
		in, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := createOutput(args[1])
		if err != nil {
			return err
		}
		n, err := writeJSON(out, in, s, writeConf)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		logger.Info("wrote file", zap.Int64("records", n), zap.String("out", args[1]))
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVarP(&writeSchema, "schema", "s", "", "Schema file or text of the records")
	_ = writeCmd.MarkFlagRequired("schema")
	writeCmd.Flags().VarP(writeConf, "config", "X", "Writer configuration property (key=value)")
	rootCmd.AddCommand(writeCmd)
}

// writeJSON appends each JSON value of in to a container file of schema s
func writeJSON(out io.Writer, in io.Reader, s schema.Schema, conf container.ConfigMap) (int64, error) {
	w, err := container.NewWriter(out, s, &conf, container.WithLogger(logger))
	if err != nil {
		return 0, err
	}
	dec := json.NewDecoder(in)
	dec.UseNumber()
	var n int64
	for {
		var v interface{}
		err := dec.Decode(&v)
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if err := w.Append(fromJSON(v)); err != nil {
			return n, err
		}
		n++
	}
	return n, w.Close()
}

type jsonNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// fromJSON turns decoded numbers into int64 when integral, else float64
func fromJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case jsonNumber:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]interface{}:
		for k, item := range t {
			t[k] = fromJSON(item)
		}
	case []interface{}:
		for i, item := range t {
			t[i] = fromJSON(item)
		}
	}
	return v
}
