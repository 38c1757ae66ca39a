//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package util

import (
	"unicode/utf8"
)

// UTF8Reason describes why a byte sequence failed UTF-8 validation and
// where. Position is a byte offset into the input.
type UTF8Reason struct {
	Explanation string
	Position    int
}

// ValidUTF8 checks that s is well-formed UTF-8. Overlong encodings,
// surrogate code points and truncated sequences are all rejected, with
// the offset of the offending byte reported.
func ValidUTF8(s string) (bool, UTF8Reason) {
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			exp := "invalid byte"
			switch {
			case i+1 >= len(s) || !utf8.RuneStart(s[i]):
				if utf8.RuneStart(s[i]) {
					exp = "truncated sequence"
				} else {
					exp = "unexpected continuation byte"
				}
			default:
				exp = "invalid or overlong sequence"
			}
			return false, UTF8Reason{Explanation: exp, Position: i}
		}
		i += size
	}
	return true, UTF8Reason{}
}
