//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package keys

import (
	"bytes"
	"strconv"

	"github.com/reqldb/query/errors"
	"github.com/reqldb/query/value"
)

/*
ParsePrimary decodes a primary key back into the datum it encodes.
Numbers reconstruct from the '#'-suffixed decimal rendering (that is
what the suffix is for), arrays from their NUL framing. TIME keys are
lossy (the timezone is not part of the key) and do not decode.
*/
func ParsePrimary(key StoreKey) (value.Datum, errors.Error) {
	d, rest, err := parseKeyedDatum([]byte(key), false)
	if err != nil {
		return value.Datum{}, err
	}
	if len(rest) != 0 {
		return value.Datum{}, errors.NewGenericError("Trailing bytes in primary key: %q.", rest)
	}
	return d, nil
}

/*
parseKeyedDatum consumes one encoded datum. Nested elements terminate
at a NUL separator, top-level ones at the end of the key; the caller
consumes separators for scalar elements, while arrays consume their
own terminating NUL.
*/
func parseKeyedDatum(b []byte, nested bool) (value.Datum, []byte, errors.Error) {
	if len(b) == 0 {
		return value.Datum{}, nil, errors.NewGenericError("Empty key.")
	}
	switch b[0] {
	case 'N':
		seg, rest := splitSegment(b[1:], nested)
		hash := bytes.IndexByte(seg, '#')
		if len(seg) < 17 || hash != 16 {
			return value.Datum{}, nil, errors.NewGenericError("Malformed number key `%q`.", b)
		}
		n, perr := strconv.ParseFloat(string(seg[hash+1:]), 64)
		if perr != nil {
			return value.Datum{}, nil, errors.NewGenericError("Malformed number key `%q`.", b)
		}
		d, err := value.NewNumber(n)
		return d, rest, err
	case 'S':
		seg, rest := splitSegment(b[1:], nested)
		d, err := value.NewString(string(seg))
		return d, rest, err
	case 'B':
		seg, rest := splitSegment(b[1:], nested)
		if len(seg) != 1 || (seg[0] != 't' && seg[0] != 'f') {
			return value.Datum{}, nil, errors.NewGenericError("Malformed boolean key `%q`.", b)
		}
		return value.NewBoolean(seg[0] == 't'), rest, nil
	case 'P':
		if bytes.HasPrefix(b, []byte(_BINARY_KEY_PREFIX)) {
			seg, rest := splitSegment(b[len(_BINARY_KEY_PREFIX):], nested)
			data, err := unescapeBinaryKey(seg)
			if err != nil {
				return value.Datum{}, nil, err
			}
			return value.NewBinary(data), rest, nil
		}
		if bytes.HasPrefix(b, []byte(_TIME_KEY_PREFIX)) {
			return value.Datum{}, nil, errors.NewGenericError("Time keys do not decode (the timezone is not stored).")
		}
		return value.Datum{}, nil, errors.NewGenericError("Unrecognized pseudotype key `%q`.", b)
	case 'A':
		b = b[1:]
		var elems []value.Datum
		for {
			if len(b) == 0 {
				if nested {
					return value.Datum{}, nil, errors.NewGenericError("Unterminated nested array key.")
				}
				break
			}
			if b[0] == 0x00 {
				// The parent's separator doubles as our terminator.
				b = b[1:]
				break
			}
			elem, rest, err := parseKeyedDatum(b, true)
			if err != nil {
				return value.Datum{}, nil, err
			}
			b = rest
			if elem.Type() != value.ARRAY {
				// Scalars leave their separator for us to consume.
				if len(b) == 0 || b[0] != 0x00 {
					return value.Datum{}, nil, errors.NewGenericError("Missing separator in array key.")
				}
				b = b[1:]
			}
			elems = append(elems, elem)
		}
		return value.NewArrayUnchecked(elems), b, nil
	}
	return value.Datum{}, nil, errors.NewGenericError("Unrecognized key tag %#x.", b[0])
}

// splitSegment cuts a scalar encoding at its separator without
// consuming it; at top level the segment runs to the end of the key.
func splitSegment(b []byte, nested bool) ([]byte, []byte) {
	if !nested {
		return b, nil
	}
	if i := bytes.IndexByte(b, 0x00); i >= 0 {
		return b[:i], b[i:]
	}
	return b, nil
}

func unescapeBinaryKey(b []byte) ([]byte, errors.Error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != 0x01 {
			out = append(out, b[i])
			continue
		}
		i++
		if i >= len(b) {
			return nil, errors.NewGenericError("Truncated escape in binary key.")
		}
		switch b[i] {
		case 0x01:
			out = append(out, 0x00)
		case 0x02:
			out = append(out, 0x01)
		default:
			return nil, errors.NewGenericError("Invalid escape %#x in binary key.", b[i])
		}
	}
	return out, nil
}
