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

package serde

import (
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/confluentinc/avroconvert-go/avroerr"
	"github.com/confluentinc/avroconvert-go/schema"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	uuidType     = reflect.TypeOf(uuid.UUID{})
	bytesType    = reflect.TypeOf([]byte(nil))
)

const secondsPerDay = 24 * 60 * 60

func mismatch(v interface{}, s schema.Schema) *avroerr.Error {
	return avroerr.New(avroerr.ErrTypeMismatch, "cannot write %T as %s", v, s).WithSchema(s.String())
}

// isNil reports whether v is nil or a nil pointer
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// isNullish also treats nil slices and maps as null
func isNullish(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return false
}

// indirect dereferences non-nil pointers
func indirect(v interface{}) interface{} {
	for {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || rv.IsNil() {
			return v
		}
		v = rv.Elem().Interface()
	}
}

// toInt64 converts integer kinds and integral floats without loss
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case float64:
		return floatToInt64(n)
	case float32:
		return floatToInt64(float64(n))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return floatToInt64(rv.Float())
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// toFloat64 converts integer and float kinds
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	}
	return 0, false
}

func fitsFloat32(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) <= math.MaxFloat32
}

// toBytes accepts byte slices and byte arrays
func toBytes(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case uuid.UUID:
		return b[:], true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), true
		}
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return b, true
		}
	}
	return nil, false
}

func isBytesValue(v interface{}) bool {
	t := reflect.TypeOf(v)
	if t == nil || t == uuidType {
		return false
	}
	return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t.Elem().Kind() == reflect.Uint8
}

// toString accepts string kinds and UUIDs
func toString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case uuid.UUID:
		return s.String(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// logicalInt64 converts time values for logical types backed by int or long
func logicalInt64(l schema.LogicalType, v interface{}) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		switch l {
		case schema.Date:
			secs := t.Unix()
			days := secs / secondsPerDay
			if secs < 0 && secs%secondsPerDay != 0 {
				days--
			}
			return days, true
		case schema.TimestampMillis:
			return t.UnixMilli(), true
		case schema.TimestampMicros:
			return t.UnixMicro(), true
		}
	case time.Duration:
		switch l {
		case schema.TimeMillis:
			return t.Milliseconds(), true
		case schema.TimeMicros:
			return t.Microseconds(), true
		}
	}
	return 0, false
}

// logicalTime converts a decoded int or long to a time value
func logicalTime(l schema.LogicalType, n int64) (interface{}, bool) {
	switch l {
	case schema.Date:
		return time.Unix(n*secondsPerDay, 0).UTC(), true
	case schema.TimestampMillis:
		return time.UnixMilli(n).UTC(), true
	case schema.TimestampMicros:
		return time.UnixMicro(n).UTC(), true
	case schema.TimeMillis:
		return time.Duration(n) * time.Millisecond, true
	case schema.TimeMicros:
		return time.Duration(n) * time.Microsecond, true
	}
	return nil, false
}
