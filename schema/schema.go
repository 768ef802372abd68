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

// Package schema is the in-memory Avro schema model.
//
// Schema nodes are immutable once constructed. Every node carries a process
// unique identity (ID) that the plan caches use as key; two structurally
// equal schemas built separately are distinct nodes.
package schema

import (
	"sync/atomic"

	"github.com/confluentinc/avroconvert-go/avroerr"
)

// Type is the kind of a schema node
type Type string

// Schema node kinds
const (
	Null    Type = "null"
	Boolean Type = "boolean"
	Int     Type = "int"
	Long    Type = "long"
	Float   Type = "float"
	Double  Type = "double"
	Bytes   Type = "bytes"
	String  Type = "string"
	Fixed   Type = "fixed"
	Enum    Type = "enum"
	Array   Type = "array"
	Map     Type = "map"
	Union   Type = "union"
	Record  Type = "record"
	Ref     Type = "ref"
)

// IsPrimitive reports whether t is one of the eight primitive kinds
func (t Type) IsPrimitive() bool {
	switch t {
	case Null, Boolean, Int, Long, Float, Double, Bytes, String:
		return true
	}
	return false
}

// LogicalType annotates a schema node with a higher level interpretation
type LogicalType string

// Supported logical types
const (
	NoLogical       LogicalType = ""
	Date            LogicalType = "date"
	TimeMillis      LogicalType = "time-millis"
	TimeMicros      LogicalType = "time-micros"
	TimestampMillis LogicalType = "timestamp-millis"
	TimestampMicros LogicalType = "timestamp-micros"
	UUID            LogicalType = "uuid"
)

// Schema is a node of the schema tree
type Schema interface {
	// Type returns the kind of the node
	Type() Type
	// ID returns the identity of the node
	ID() uint64
	// Logical returns the logical type annotation, or NoLogical
	Logical() LogicalType
	// Prop returns a custom attribute
	Prop(name string) interface{}
	// Props returns all custom attributes
	Props() map[string]interface{}
	// String returns a short description of the node
	String() string
}

// NamedSchema is a Record, Enum or Fixed node
type NamedSchema interface {
	Schema
	// Name returns the unqualified name
	Name() string
	// Namespace returns the namespace, possibly empty
	Namespace() string
	// FullName returns the namespace qualified name
	FullName() string
	// Aliases returns the full names this node is also known by
	Aliases() []string
	// Doc returns the documentation string
	Doc() string
}

var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}

type properties struct {
	id      uint64
	logical LogicalType
	props   map[string]interface{}
}

func newProperties(o *options) properties {
	return properties{id: nextID(), logical: o.logical, props: o.props}
}

// ID returns the identity of the node
func (p *properties) ID() uint64 {
	return p.id
}

// Logical returns the logical type annotation
func (p *properties) Logical() LogicalType {
	return p.logical
}

// Prop returns a custom attribute
func (p *properties) Prop(name string) interface{} {
	if p.props == nil {
		return nil
	}
	return p.props[name]
}

// Props returns all custom attributes
func (p *properties) Props() map[string]interface{} {
	return p.props
}

type options struct {
	namespace string
	aliases   []string
	doc       string
	logical   LogicalType
	props     map[string]interface{}
	names     *Names
	defSymbol string
	hasSymbol bool
}

// Option configures the construction of a schema node
type Option func(*options)

// WithNamespace sets the namespace of a named node
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithAliases sets the aliases of a named node
func WithAliases(aliases ...string) Option {
	return func(o *options) {
		o.aliases = aliases
	}
}

// WithDoc sets the documentation of a named node
func WithDoc(doc string) Option {
	return func(o *options) {
		o.doc = doc
	}
}

// WithLogical sets the logical type annotation
func WithLogical(l LogicalType) Option {
	return func(o *options) {
		o.logical = l
	}
}

// WithProps sets custom attributes
func WithProps(props map[string]interface{}) Option {
	return func(o *options) {
		o.props = props
	}
}

// WithNames registers the named nodes of a record tree in names, and uses
// it to resolve references
func WithNames(names *Names) Option {
	return func(o *options) {
		o.names = names
	}
}

// WithDefaultSymbol sets the symbol an enum reader falls back to for
// unknown writer symbols
func WithDefaultSymbol(symbol string) Option {
	return func(o *options) {
		o.defSymbol = symbol
		o.hasSymbol = true
	}
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func validationError(format string, args ...interface{}) *avroerr.Error {
	return avroerr.New(avroerr.ErrSchemaValidation, format, args...)
}
