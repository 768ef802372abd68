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

// Package testhelpers holds assertions shared by the package tests
package testhelpers

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/confluentinc/avroconvert-go/generic"
)

// FailFunc is a function to call in case of failure
type FailFunc func(string, ...error)

// InitFailFunc returns an initial FailFunc
func InitFailFunc(t *testing.T) FailFunc {
	tester := t
	return func(msg string, errors ...error) {
		for _, err := range errors {
			if err != nil {
				pc := make([]uintptr, 1)
				runtime.Callers(2, pc)
				caller := runtime.FuncForPC(pc[0])
				_, line := caller.FileLine(caller.Entry())

				tester.Fatalf("%s:%d failed: %s %s", caller.Name(), line, msg, err)
			}
		}
	}
}

// Expect compares the actual and expected values. Empty and nil slices and
// maps compare equal; generic records compare by name and entries.
func Expect(actual, expected interface{}) error {
	if diff := cmp.Diff(expected, actual, cmpopts.EquateEmpty(), cmp.AllowUnexported(generic.Record{})); diff != "" {
		return fmt.Errorf("mismatch (-expected +actual):\n%s", diff)
	}

	return nil
}
