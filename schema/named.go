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

package schema

import (
	"strings"
	"sync"
)

type name struct {
	name      string
	namespace string
	full      string
	aliases   []string
	doc       string
}

func newName(n string, o *options) (name, error) {
	ns := o.namespace
	if i := strings.LastIndexByte(n, '.'); i >= 0 {
		ns = n[:i]
		n = n[i+1:]
	}
	if err := validateIdentifier(n); err != nil {
		return name{}, err
	}
	if ns != "" {
		for _, part := range strings.Split(ns, ".") {
			if err := validateIdentifier(part); err != nil {
				return name{}, err
			}
		}
	}
	full := n
	if ns != "" {
		full = ns + "." + n
	}
	aliases := make([]string, 0, len(o.aliases))
	for _, a := range o.aliases {
		qualified := qualify(a, ns)
		for _, part := range strings.Split(qualified, ".") {
			if err := validateIdentifier(part); err != nil {
				return name{}, err
			}
		}
		aliases = append(aliases, qualified)
	}
	return name{name: n, namespace: ns, full: full, aliases: aliases, doc: o.doc}, nil
}

func qualify(n, ns string) string {
	if ns == "" || strings.IndexByte(n, '.') >= 0 {
		return n
	}
	return ns + "." + n
}

// Name returns the unqualified name
func (n *name) Name() string {
	return n.name
}

// Namespace returns the namespace
func (n *name) Namespace() string {
	return n.namespace
}

// FullName returns the namespace qualified name
func (n *name) FullName() string {
	return n.full
}

// Aliases returns the qualified aliases
func (n *name) Aliases() []string {
	return n.aliases
}

// Doc returns the documentation
func (n *name) Doc() string {
	return n.doc
}

func validateIdentifier(s string) error {
	if s == "" {
		return validationError("empty name")
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return validationError("invalid name %q", s)
		}
	}
	return nil
}

// Names is a registry of named schema nodes, keyed by full name. It is
// safe for concurrent use.
type Names struct {
	lock  sync.RWMutex
	named map[string]NamedSchema
}

// NewNames creates an empty registry
func NewNames() *Names {
	return &Names{named: make(map[string]NamedSchema)}
}

// Register adds s under its full name. Registering a different definition
// under an existing name is an error.
func (n *Names) Register(s NamedSchema) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	if existing, ok := n.named[s.FullName()]; ok {
		if !sameDefinition(existing, s) {
			return validationError("name %s is already defined differently", s.FullName())
		}
		return nil
	}
	n.named[s.FullName()] = s
	return nil
}

// Lookup returns the node registered under fullName
func (n *Names) Lookup(fullName string) (NamedSchema, bool) {
	n.lock.RLock()
	defer n.lock.RUnlock()
	s, ok := n.named[fullName]
	return s, ok
}

func sameDefinition(a, b NamedSchema) bool {
	if a == b {
		return true
	}
	if a.Type() != b.Type() || a.FullName() != b.FullName() {
		return false
	}
	switch x := a.(type) {
	case *FixedSchema:
		return x.size == b.(*FixedSchema).size
	case *EnumSchema:
		y := b.(*EnumSchema)
		if len(x.symbols) != len(y.symbols) {
			return false
		}
		for i := range x.symbols {
			if x.symbols[i] != y.symbols[i] {
				return false
			}
		}
		return true
	case *RecordSchema:
		y := b.(*RecordSchema)
		if len(x.fields) != len(y.fields) {
			return false
		}
		for i := range x.fields {
			if x.fields[i].name != y.fields[i].name ||
				typeKey(x.fields[i].typ) != typeKey(y.fields[i].typ) {
				return false
			}
		}
		return true
	}
	return false
}

// typeKey returns a structural key that stops at named nodes
func typeKey(s Schema) string {
	switch t := s.(type) {
	case NamedSchema:
		return t.FullName()
	case *RefSchema:
		return t.full
	case *ArraySchema:
		return "array<" + typeKey(t.items) + ">"
	case *MapSchema:
		return "map<" + typeKey(t.values) + ">"
	case *UnionSchema:
		keys := make([]string, len(t.types))
		for i, b := range t.types {
			keys[i] = typeKey(b)
		}
		return "[" + strings.Join(keys, ",") + "]"
	}
	return s.String()
}
