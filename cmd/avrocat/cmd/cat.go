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
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/confluentinc/avroconvert-go/container"
	"github.com/confluentinc/avroconvert-go/generic"
)

var (
	catFormat       string
	catReaderSchema string
	catConf         = container.ConfigMap{}
)

// catCmd represents the cat command
var catCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Print the records of a container file",
	Long: `Print the records of a container file, one JSON object per line or as a
stream of YAML documents.

Example:
  avrocat cat readings.avro
  avrocat cat --reader-schema reading-v2.avsc --format yaml readings.avro`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := catConf
		if catReaderSchema != "" {
			s, err := loadSchema(catReaderSchema)
			if err != nil {
				return err
			}
			conf[container.ReaderSchemaKey] = s
		}
		in, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer in.Close()
		return catRecords(cmd.OutOrStdout(), in, &conf, catFormat)
	},
}

func init() {
	catCmd.Flags().StringVarP(&catFormat, "format", "f", "json", "Output format: json or yaml")
	catCmd.Flags().StringVarP(&catReaderSchema, "reader-schema", "r", "", "Schema file or text to read records as")
	catCmd.Flags().VarP(catConf, "config", "X", "Reader configuration property (key=value)")
	rootCmd.AddCommand(catCmd)
}

type recordPrinter func(v interface{}) error

func newPrinter(w io.Writer, format string) (recordPrinter, func() error, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		return func(v interface{}) error { return enc.Encode(v) }, func() error { return nil }, nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return func(v interface{}) error {
			n, err := yamlNode(v)
			if err != nil {
				return err
			}
			return enc.Encode(n)
		}, enc.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown format %q", format)
}

func catRecords(w io.Writer, in io.Reader, conf *container.ConfigMap, format string) error {
	r, err := container.NewReader(in, conf, container.WithLogger(logger))
	if err != nil {
		return err
	}
	out := bufio.NewWriter(w)
	emit, done, err := newPrinter(out, format)
	if err != nil {
		return err
	}
	for {
		v, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := emit(v); err != nil {
			return err
		}
	}
	if err := done(); err != nil {
		return err
	}
	return out.Flush()
}

// yamlNode builds a node keeping the field order of generic records
func yamlNode(v interface{}) (*yaml.Node, error) {
	switch t := v.(type) {
	case *generic.Record:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range t.Entries() {
			value, err := yamlNode(e.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.Name}, value)
		}
		return n, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			value, err := yamlNode(t[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, value)
		}
		return n, nil
	case []interface{}:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range t {
			value, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, value)
		}
		return n, nil
	case []byte:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(t)}, nil
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}
