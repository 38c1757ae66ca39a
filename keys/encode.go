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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/reqldb/query/errors"
	"github.com/reqldb/query/logging"
	"github.com/reqldb/query/util"
	"github.com/reqldb/query/value"
)

// Encode buffers for the secondary-key paths, which copy into the
// composed key before returning.
var _KEY_POOL = util.NewBytePool(MAX_KEY_SIZE)

const _BINARY_KEY_PREFIX = "PBINARY:"
const _TIME_KEY_PREFIX = "PTIME:"

/*
appendNumKey encodes a number as 'N', sixteen hex digits of the
sign-mangled IEEE-754 bits, and a '#'-prefixed decimal rendering.
The mangling makes memcmp order equal numeric order; the decimal tail
is fixed per value, reconstructable, and preserved on round trips.
*/
func appendNumKey(buf []byte, n float64) []byte {
	u := math.Float64bits(n)
	if u&(1<<63) != 0 {
		// A negative double: flip all the bits. Flipping the highest
		// bit puts negatives below positives; flipping the rest puts
		// more negative doubles below less negative ones.
		u = ^u
	} else {
		// A non-negative double: flip the highest bit so it sorts
		// above all the negatives.
		u ^= 1 << 63
	}
	buf = append(buf, 'N')
	buf = append(buf, fmt.Sprintf("%016x", u)...)
	buf = append(buf, '#')
	return append(buf, fmt.Sprintf("%.20g", n)...)
}

func appendStrKey(buf []byte, str value.String) []byte {
	buf = append(buf, 'S')
	b := str.Bytes()
	toAppend := MAX_KEY_SIZE - len(buf)
	if toAppend > len(b) {
		toAppend = len(b)
	}
	return append(buf, b[:toAppend]...)
}

/*
appendBinaryKey prepends "P" and a separator below [a-zA-Z] so that
the pseudotype keys sort against each other by type name. NUL bytes
escape as 0x01 0x01 and 0x01 as 0x01 0x02, so NUL stays usable as the
array separator.
*/
func appendBinaryKey(buf []byte, data value.String) []byte {
	buf = append(buf, _BINARY_KEY_PREFIX...)
	b := data.Bytes()
	toAppend := MAX_KEY_SIZE - len(buf)
	if toAppend > len(b) {
		toAppend = len(b)
	}
	for i := 0; i < toAppend; i++ {
		switch b[i] {
		case 0x00:
			buf = append(buf, 0x01, 0x01)
		case 0x01:
			buf = append(buf, 0x01, 0x02)
		default:
			buf = append(buf, b[i])
		}
	}
	return buf
}

func appendBoolKey(buf []byte, b bool) []byte {
	buf = append(buf, 'B')
	if b {
		return append(buf, 't')
	}
	return append(buf, 'f')
}

/*
appendArrayKey writes 'A' and then each element's encoding followed by
a NUL separator. The separator is emitted after every element,
including the last, so that one array is never a prefix of another.
*/
func appendArrayKey(buf []byte, d value.Datum) ([]byte, errors.Error) {
	buf = append(buf, 'A')
	size, err := d.ArraySize()
	if err != nil {
		return nil, err
	}
	for i := 0; i < size && len(buf) < MAX_KEY_SIZE; i++ {
		item, err := d.Get(i, value.THROW)
		if err != nil {
			return nil, err
		}
		switch item.Type() {
		case value.NUMBER:
			n, _ := item.AsNumber()
			buf = appendNumKey(buf, n)
		case value.STRING:
			s, _ := item.AsString()
			buf = appendStrKey(buf, s)
		case value.BINARY:
			b, _ := item.AsBinary()
			buf = appendBinaryKey(buf, b)
		case value.BOOLEAN:
			b, _ := item.AsBool()
			buf = appendBoolKey(buf, b)
		case value.ARRAY:
			if buf, err = appendArrayKey(buf, item); err != nil {
				return nil, err
			}
		case value.OBJECT:
			if item.IsPtype() {
				if buf, err = appendPtypeKey(buf, item); err != nil {
					return nil, err
				}
				break
			}
			fallthrough
		default:
			return nil, errors.NewTypeError(
				"Array keys can only contain numbers, strings, bools, pseudotypes, or arrays (got %s of type %s).",
				item.String(), item.TypeName())
		}
		buf = append(buf, 0x00)
	}
	return buf, nil
}

/*
appendPtypeKey encodes key-eligible pseudotypes. TIME uses a
fixed-width encoding of its sign-mangled epoch bits, so the memcmp
order of "PBINARY:" and "PTIME:" prefixed keys matches the modern
comparator's type-name order.
*/
func appendPtypeKey(buf []byte, d value.Datum) ([]byte, errors.Error) {
	rt, err := d.ReqlType()
	if err != nil {
		return nil, err
	}
	switch rt {
	case value.TIME_TYPE:
		epoch, err := d.GetField(value.EPOCH_TIME_FIELD, value.THROW)
		if err != nil {
			return nil, err
		}
		n, err := epoch.AsNumber()
		if err != nil {
			return nil, err
		}
		u := math.Float64bits(n)
		if u&(1<<63) != 0 {
			u = ^u
		} else {
			u ^= 1 << 63
		}
		buf = append(buf, _TIME_KEY_PREFIX...)
		return append(buf, fmt.Sprintf("%016x", u)...), nil
	case value.GEOMETRY_TYPE:
		return nil, errors.NewGenericError(
			"Cannot use a geometry value as a key value in a primary or non-geospatial secondary index.")
	default:
		return nil, errors.NewGenericError(
			"Cannot use pseudotype %s as a primary or secondary key value.", d.TypeName())
	}
}

func appendDatumKey(buf []byte, d value.Datum, kind string) ([]byte, errors.Error) {
	switch d.Type() {
	case value.NUMBER:
		n, _ := d.AsNumber()
		return appendNumKey(buf, n), nil
	case value.STRING:
		s, _ := d.AsString()
		return appendStrKey(buf, s), nil
	case value.BINARY:
		b, _ := d.AsBinary()
		return appendBinaryKey(buf, b), nil
	case value.BOOLEAN:
		b, _ := d.AsBool()
		return appendBoolKey(buf, b), nil
	case value.ARRAY:
		return appendArrayKey(buf, d)
	case value.OBJECT:
		if d.IsPtype() {
			return appendPtypeKey(buf, d)
		}
		fallthrough
	case value.NULL:
		return nil, errors.NewTypeError(
			"%s keys must be either a number, string, bool, pseudotype or array (got type %s):\n%s",
			kind, d.TypeName(), d.TruncPrint())
	default:
		return nil, errors.NewTypeError("%s keys cannot be uninitialized.", kind)
	}
}

/*
PrintPrimary encodes a datum as the document's primary key. Encodings
longer than MAX_PRIMARY_KEY_SIZE fail.
*/
func PrintPrimary(d value.Datum) (StoreKey, errors.Error) {
	buf, err := appendDatumKey(make([]byte, 0, MAX_KEY_SIZE), d, "Primary")
	if err != nil {
		return nil, err
	}
	if len(buf) > MAX_PRIMARY_KEY_SIZE {
		return nil, errors.NewGenericError("Primary key too long (max %d characters): %s",
			MAX_PRIMARY_KEY_SIZE-1, d.String())
	}
	return StoreKey(buf), nil
}

// EncodeTagNum renders a multi-index tag as its wire form: the raw
// bytes of the unsigned 64-bit value in little-endian order on every
// host.
func EncodeTagNum(tagNum uint64) []byte {
	tag := make([]byte, TAG_SIZE)
	binary.LittleEndian.PutUint64(tag, tagNum)
	return tag
}

/*
TruncSize is how much of a secondary encoding survives composition
with a primary key of the given size. The 2 accounts for the offsets
at the end of the key that let readers split out the primary key and
the tag.
*/
func TruncSize(primaryKeySize int) int {
	return MAX_KEY_SIZE - primaryKeySize - TAG_SIZE - 2
}

func MaxTruncSize() int {
	return TruncSize(MAX_PRIMARY_KEY_SIZE)
}

func mangleSecondary(secondary, primary, tag []byte) StoreKey {
	sanityCheck(len(secondary) < math.MaxUint8, "secondary key part too long to offset")
	sanityCheck(len(secondary)+len(primary) < math.MaxUint8, "secondary key parts too long to offset")

	pkOffset := byte(len(secondary))
	tagOffset := byte(len(primary)) + pkOffset

	res := make([]byte, 0, len(secondary)+len(primary)+len(tag)+2)
	res = append(res, secondary...)
	res = append(res, primary...)
	res = append(res, tag...)
	res = append(res, pkOffset, tagOffset)
	sanityCheck(len(res) <= MAX_KEY_SIZE, "composed secondary key exceeds the key size limit")
	return StoreKey(res)
}

/*
ComposeSecondary assembles a secondary index key out of an encoded
secondary value, the unescaped primary key and an optional tag. The
secondary part is truncated so that the whole key fits in
MAX_KEY_SIZE.
*/
func ComposeSecondary(secondaryKey []byte, primaryKey StoreKey, tagNum *uint64) (StoreKey, errors.Error) {
	if len(primaryKey) > MAX_PRIMARY_KEY_SIZE {
		return nil, errors.NewGenericError("Primary key too long (max %d characters): %s",
			MAX_PRIMARY_KEY_SIZE-1, string(primaryKey))
	}

	var tag []byte
	if tagNum != nil {
		tag = EncodeTagNum(*tagNum)
	}

	truncated := secondaryKey
	if len(truncated) > TruncSize(len(primaryKey)) {
		truncated = truncated[:TruncSize(len(primaryKey))]
	}
	return mangleSecondary(truncated, primaryKey, tag), nil
}

/*
PrintSecondary encodes a datum as a secondary index key for the given
document. Under version 1.14 and later a NUL terminator is appended to
the value encoding before composition, so the value part of an
untruncated key is never a prefix of a different value's encoding
("Sab\x00" against "Sabc").
*/
func PrintSecondary(version value.Version, d value.Datum, primaryKey StoreKey, tagNum *uint64) (StoreKey, errors.Error) {
	scratch := _KEY_POOL.Get()
	defer _KEY_POOL.Put(scratch)

	buf, err := appendDatumKey(scratch, d, "Secondary")
	if err != nil {
		return nil, err
	}

	switch version {
	case value.VERSION_1_13:
	case value.VERSION_1_14, value.VERSION_1_16_LATEST:
		buf = append(buf, 0x00)
	default:
		sanityCheck(false, "unhandled version %d", version)
	}

	return ComposeSecondary(buf, primaryKey, tagNum)
}

/*
TruncatedSecondary encodes a datum for searching a secondary index.
Stored entries may be truncated by an unknown amount (it depends on the
primary key length), so the search key truncates by the maximum amount
and callers filter the over-matches.
*/
func TruncatedSecondary(d value.Datum) (StoreKey, errors.Error) {
	scratch := _KEY_POOL.Get()
	defer _KEY_POOL.Put(scratch)

	buf, err := appendDatumKey(scratch, d, "Secondary")
	if err != nil {
		return nil, err
	}
	if len(buf) >= MaxTruncSize() {
		buf = buf[:MaxTruncSize()]
	}
	return StoreKey(append([]byte(nil), buf...)), nil
}

// Components is a secondary key split back into its parts.
type Components struct {
	Secondary []byte
	Primary   []byte
	TagNum    *uint64
}

/*
ParseSecondary splits a composed secondary key using the two trailing
offset bytes.
*/
func ParseSecondary(key []byte) (Components, errors.Error) {
	if len(key) < 2 {
		return Components{}, errors.NewGenericError("Secondary key too short to parse: %d bytes.", len(key))
	}
	startOfTag := int(key[len(key)-1])
	startOfPrimary := int(key[len(key)-2])

	if startOfPrimary > startOfTag || startOfTag > len(key)-2 {
		return Components{}, errors.NewGenericError("Malformed secondary key offsets (%d, %d).",
			startOfPrimary, startOfTag)
	}

	components := Components{
		Secondary: key[:startOfPrimary],
		Primary:   key[startOfPrimary:startOfTag],
	}
	tag := key[startOfTag : len(key)-2]
	if len(tag) != 0 {
		if len(tag) != TAG_SIZE {
			return Components{}, errors.NewGenericError("Malformed secondary key tag of %d bytes.", len(tag))
		}
		tagNum := binary.LittleEndian.Uint64(tag)
		components.TagNum = &tagNum
	}
	return components, nil
}

func ExtractPrimary(secondary []byte) ([]byte, errors.Error) {
	components, err := ParseSecondary(secondary)
	if err != nil {
		return nil, err
	}
	return components.Primary, nil
}

func ExtractSecondary(secondary []byte) ([]byte, errors.Error) {
	components, err := ParseSecondary(secondary)
	if err != nil {
		return nil, err
	}
	return components.Secondary, nil
}

func ExtractTag(secondary []byte) (*uint64, errors.Error) {
	components, err := ParseSecondary(secondary)
	if err != nil {
		return nil, err
	}
	return components.TagNum, nil
}

/*
KeyIsTruncated reports whether the secondary part of a composed key
was cut to fit: a truncated key is exactly MAX_KEY_SIZE long with a
tag, or MAX_KEY_SIZE - TAG_SIZE without one.
*/
func KeyIsTruncated(key StoreKey) bool {
	tag, err := ExtractTag(key)
	if err != nil {
		return false
	}
	if tag != nil {
		return len(key) == MAX_KEY_SIZE
	}
	return len(key) == MAX_KEY_SIZE-TAG_SIZE
}

func sanityCheck(cond bool, format string, args ...interface{}) {
	if !cond {
		msg := fmt.Sprintf(format, args...)
		logging.Severef("key encoding sanity violation: %s", msg)
		panic("key encoding sanity violation: " + msg)
	}
}
