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

// Deref returns the node a bound reference points to, or s itself
func Deref(s Schema) Schema {
	if ref, ok := s.(*RefSchema); ok {
		if target := ref.Schema(); target != nil {
			return target
		}
	}
	return s
}

// IsNullable reports whether s is null or a union with a null branch
func IsNullable(s Schema) bool {
	switch t := Deref(s).(type) {
	case *UnionSchema:
		return t.Nullable()
	case *PrimitiveSchema:
		return t.typ == Null
	}
	return false
}

// NameMatches reports whether a named reader node accepts a named writer
// node: equal full names, equal unqualified names, or a reader alias equal
// to the writer's full name
func NameMatches(writer, reader NamedSchema) bool {
	if writer.FullName() == reader.FullName() || writer.Name() == reader.Name() {
		return true
	}
	for _, a := range reader.Aliases() {
		if a == writer.FullName() {
			return true
		}
	}
	return false
}
