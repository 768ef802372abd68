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

package avroerr

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrMalformedData, "bad varint"))
	if !errors.Is(err, ErrMalformedData) {
		t.Fatalf("expected %v to match ErrMalformedData\n", err)
	}
	if errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("did not expect %v to match ErrTypeMismatch\n", err)
	}
	if CodeOf(err) != ErrMalformedData {
		t.Fatalf("expected code %v, not %v\n", ErrMalformedData, CodeOf(err))
	}
	if CodeOf(io.EOF) != 0 {
		t.Fatalf("expected no code for io.EOF\n")
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := Wrap(ErrMalformedData, io.ErrUnexpectedEOF, "truncated block").WithOffset(42)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected %v to wrap io.ErrUnexpectedEOF\n", err)
	}
	expected := "avro: malformed data: truncated block (offset 42): unexpected EOF"
	if err.Error() != expected {
		t.Fatalf("expected \"%s\", not \"%s\"\n", expected, err.Error())
	}
}

func TestInFieldBuildsPath(t *testing.T) {
	var err error = New(ErrRequiredFieldMissing, "no value").WithSchema("record com.example.Leaf")
	err = InField(err, "leaf")
	err = InField(err, "inner")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T\n", err)
	}
	if e.Field != "inner.leaf" {
		t.Fatalf("expected field path \"inner.leaf\", not \"%s\"\n", e.Field)
	}
	if e.Offset != -1 {
		t.Fatalf("expected unknown offset, not %d\n", e.Offset)
	}

	plain := InField(io.EOF, "ignored")
	if plain != io.EOF {
		t.Fatalf("expected non-avro errors to pass through unchanged\n")
	}
}
