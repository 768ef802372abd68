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

// EnumSchema is a named set of symbols, encoded by index
type EnumSchema struct {
	properties
	name
	symbols   []string
	index     map[string]int
	def       string
	hasSymbol bool
}

// NewEnum creates an enum node. Symbols must be unique valid names, and the
// default symbol, if any, must be one of them.
func NewEnum(fullName string, symbols []string, opts ...Option) (*EnumSchema, error) {
	o := applyOptions(opts)
	n, err := newName(fullName, o)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, validationError("enum %s has no symbols", n.full)
	}
	index := make(map[string]int, len(symbols))
	for i, sym := range symbols {
		if err := validateIdentifier(sym); err != nil {
			return nil, validationError("enum %s: invalid symbol %q", n.full, sym)
		}
		if _, dup := index[sym]; dup {
			return nil, validationError("enum %s: duplicate symbol %s", n.full, sym)
		}
		index[sym] = i
	}
	if o.hasSymbol {
		if _, ok := index[o.defSymbol]; !ok {
			return nil, validationError("enum %s: default symbol %s is not a symbol", n.full, o.defSymbol)
		}
	}
	syms := make([]string, len(symbols))
	copy(syms, symbols)
	return &EnumSchema{
		properties: newProperties(o),
		name:       n,
		symbols:    syms,
		index:      index,
		def:        o.defSymbol,
		hasSymbol:  o.hasSymbol,
	}, nil
}

// Type returns Enum
func (s *EnumSchema) Type() Type {
	return Enum
}

// Symbols returns the symbols in index order
func (s *EnumSchema) Symbols() []string {
	return s.symbols
}

// Symbol returns the symbol at index i
func (s *EnumSchema) Symbol(i int) (string, bool) {
	if i < 0 || i >= len(s.symbols) {
		return "", false
	}
	return s.symbols[i], true
}

// Index returns the index of symbol
func (s *EnumSchema) Index(symbol string) (int, bool) {
	i, ok := s.index[symbol]
	return i, ok
}

// Default returns the default symbol and whether one is set
func (s *EnumSchema) Default() (string, bool) {
	return s.def, s.hasSymbol
}

// String returns a short description
func (s *EnumSchema) String() string {
	return "enum " + s.full
}
