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

// Package avroerr provides the coded error type shared by every package of
// the module. Callers match errors by code with errors.Is and extract the
// context (schema, field path, byte offset) with errors.As.
package avroerr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the category of an Error
type ErrorCode int

const (
	// ErrSchemaValidation is returned when a schema is malformed
	ErrSchemaValidation ErrorCode = iota + 1
	// ErrSchemaResolution is returned when writer and reader schemas are incompatible
	ErrSchemaResolution
	// ErrMissingDefault is returned when a reader field has no writer
	// counterpart and no default value
	ErrMissingDefault
	// ErrTypeMismatch is returned when a runtime value does not fit its schema
	ErrTypeMismatch
	// ErrRequiredFieldMissing is returned when a record value lacks a field
	// that is neither nullable nor defaulted
	ErrRequiredFieldMissing
	// ErrMalformedData is returned when encoded input is invalid or truncated
	ErrMalformedData
	// ErrCorruptedSyncMarker is returned when a container block is not
	// followed by the file's sync marker
	ErrCorruptedSyncMarker
	// ErrInvalidFormat is returned when a container file header is invalid
	ErrInvalidFormat
	// ErrUnsupportedCodec is returned for an unknown compression codec
	ErrUnsupportedCodec
	// ErrInvalidArg is returned for an invalid configuration value
	ErrInvalidArg
)

var codeNames = map[ErrorCode]string{
	ErrSchemaValidation:     "schema validation",
	ErrSchemaResolution:     "schema resolution",
	ErrMissingDefault:       "missing default",
	ErrTypeMismatch:         "type mismatch",
	ErrRequiredFieldMissing: "required field missing",
	ErrMalformedData:        "malformed data",
	ErrCorruptedSyncMarker:  "corrupted sync marker",
	ErrInvalidFormat:        "invalid format",
	ErrUnsupportedCodec:     "unsupported codec",
	ErrInvalidArg:           "invalid argument",
}

// String returns a human readable representation of an ErrorCode
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("error code %d", int(c))
}

// Error makes an ErrorCode usable as an errors.Is target
func (c ErrorCode) Error() string {
	return c.String()
}

// Error provides an Avro-specific error container
type Error struct {
	code ErrorCode
	str  string
	// Schema describes the schema node being processed, if known
	Schema string
	// Field is the dotted path of the record field being processed, if known
	Field string
	// Offset is the byte offset into the input where the problem was
	// detected, or -1
	Offset int64
	err    error
}

// New creates a new Error with a formatted message
func New(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{code: code, str: fmt.Sprintf(format, args...), Offset: -1}
}

// Wrap creates a new Error with a formatted message that wraps err
func Wrap(code ErrorCode, err error, format string, args ...interface{}) *Error {
	return &Error{code: code, str: fmt.Sprintf(format, args...), Offset: -1, err: err}
}

// Error returns a human readable representation of an Error
// Same as Error.String()
func (e *Error) Error() string {
	return e.String()
}

// String returns a human readable representation of an Error
func (e *Error) String() string {
	var sb strings.Builder
	sb.WriteString("avro: ")
	sb.WriteString(e.code.String())
	if len(e.str) > 0 {
		sb.WriteString(": ")
		sb.WriteString(e.str)
	}
	var ctx []string
	if e.Field != "" {
		ctx = append(ctx, "field "+e.Field)
	}
	if e.Schema != "" {
		ctx = append(ctx, "schema "+e.Schema)
	}
	if e.Offset >= 0 {
		ctx = append(ctx, fmt.Sprintf("offset %d", e.Offset))
	}
	if len(ctx) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(ctx, ", "))
		sb.WriteString(")")
	}
	if e.err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.err.Error())
	}
	return sb.String()
}

// Code returns the ErrorCode of an Error
func (e *Error) Code() ErrorCode {
	return e.code
}

// Message returns the message of an Error without context
func (e *Error) Message() string {
	return e.str
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is the same ErrorCode, or an *Error with the
// same code
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCode:
		return e.code == t
	case *Error:
		return e.code == t.code
	}
	return false
}

// WithSchema sets the schema description if not already set
func (e *Error) WithSchema(s string) *Error {
	if e.Schema == "" {
		e.Schema = s
	}
	return e
}

// WithOffset sets the byte offset if not already set
func (e *Error) WithOffset(off int64) *Error {
	if e.Offset < 0 {
		e.Offset = off
	}
	return e
}

// InField prefixes the field path of err with name when err is an *Error.
// Other errors are returned unchanged.
func InField(err error, name string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Field == "" {
		e.Field = name
	} else {
		e.Field = name + "." + e.Field
	}
	return err
}

// CodeOf returns the ErrorCode of err, or 0 if err is not an *Error
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return 0
}
