//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package errors

import (
	"fmt"
)

// Datum error codes 4100-4199
const (
	// E_GENERIC covers validation failures, type errors, unknown
	// pseudotypes, oversized keys, non-finite numbers and illegal
	// merges.
	E_GENERIC = ErrorCode(4100 + iota)

	// E_NON_EXISTENCE covers missing fields and out-of-bounds indexes
	// on the throwing accessor paths.
	E_NON_EXISTENCE

	// E_TOO_LARGE covers arrays exceeding the array size limit on
	// construction paths that check it.
	E_TOO_LARGE
)

func NewGenericError(format string, args ...interface{}) Error {
	return newError(E_GENERIC, "datum.generic", fmt.Sprintf(format, args...))
}

func NewTypeError(format string, args ...interface{}) Error {
	return newError(E_GENERIC, "datum.type_error", fmt.Sprintf(format, args...))
}

func NewNonExistenceError(format string, args ...interface{}) Error {
	return newError(E_NON_EXISTENCE, "datum.non_existence", fmt.Sprintf(format, args...))
}

func NewTooLargeError(format string, args ...interface{}) Error {
	return newError(E_TOO_LARGE, "datum.too_large", fmt.Sprintf(format, args...))
}
