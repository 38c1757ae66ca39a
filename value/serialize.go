//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package value

import (
	"encoding/binary"
	"math"

	"github.com/reqldb/query/errors"
)

/*
Serialized datum layout, shared with the storage serializer.

Every serialized datum is a one-byte type tag followed by a payload:

	NULL, FALSE, TRUE    no payload
	NUMBER               8 bytes, little-endian IEEE-754 bits
	STRING, BINARY       uvarint byte count, then the bytes
	ARRAY, OBJECT        u32 count, u32 offsets[count], elements

Container offsets are little-endian and relative to the start of the
container payload (the count field), so a window positioned on the
payload can resolve any element without touching the others. An object
element is a uvarint-prefixed key followed by a serialized value.

A buffer-backed ARRAY or OBJECT datum holds its window on the payload;
element reads decode on demand, and strings decoded from a window
borrow its bytes.
*/
const (
	_SER_ARRAY = byte(iota + 0x01)
	_SER_BINARY
	_SER_BOOLEAN_FALSE
	_SER_BOOLEAN_TRUE
	_SER_NULL
	_SER_NUMBER
	_SER_OBJECT
	_SER_STRING
)

/*
DatumFromSharedBuf wraps a serialized datum. Scalars materialize;
arrays and objects stay buffer-backed and decode elements lazily.
*/
func DatumFromSharedBuf(ref SharedBufRef) (Datum, errors.Error) {
	switch ref.byteAt(0) {
	case _SER_NULL:
		return NULL_DATUM, nil
	case _SER_BOOLEAN_FALSE:
		return FALSE_DATUM, nil
	case _SER_BOOLEAN_TRUE:
		return TRUE_DATUM, nil
	case _SER_NUMBER:
		return Datum{internal: _INTERNAL_NUMBER, n: math.Float64frombits(ref.uint64At(1))}, nil
	case _SER_STRING:
		return newStringDatum(bufString(ref.Child(1)))
	case _SER_BINARY:
		return newBinaryDatum(bufString(ref.Child(1))), nil
	case _SER_ARRAY:
		return newBufDatum(_INTERNAL_BUF_ARRAY, ref.Child(1)), nil
	case _SER_OBJECT:
		return newBufDatum(_INTERNAL_BUF_OBJECT, ref.Child(1)), nil
	}
	return Datum{}, errors.NewGenericError("Unrecognized serialized value type %#x.", ref.byteAt(0))
}

// bufString reads a uvarint-prefixed string as a borrowed window.
func bufString(ref SharedBufRef) String {
	size, n := ref.uvarintAt(0)
	return newBufString(ref, n, int(size))
}

// bufArraySize is the element (or pair) count of a container payload.
func bufArraySize(ref SharedBufRef) int {
	return int(ref.uint32At(0))
}

// bufElementOffset resolves the i'th entry of the offset table.
func bufElementOffset(ref SharedBufRef, index int) int {
	count := bufArraySize(ref)
	sanityCheck(index >= 0 && index < count, "element offset %d out of range %d", index, count)
	return int(ref.uint32At(4 + 4*index))
}

// bufDeserializeValue decodes the serialized value at offset. The blob
// was valid when written; decoding failures are fatal.
func bufDeserializeValue(ref SharedBufRef, offset int) Datum {
	d, err := DatumFromSharedBuf(ref.Child(offset))
	sanityCheck(err == nil, "corrupt serialized value: %v", err)
	return d
}

// bufDeserializePair decodes the key/value pair at offset.
func bufDeserializePair(ref SharedBufRef, offset int) Pair {
	keySize, n := ref.uvarintAt(offset)
	key := newBufString(ref, offset+n, int(keySize))
	return Pair{
		Name:  key,
		Value: bufDeserializeValue(ref, offset+n+int(keySize)),
	}
}

/*
AppendSerialized appends the serialized form of d to buf. The
uninitialized sentinel is never persisted and fails here.
*/
func AppendSerialized(buf []byte, d Datum) ([]byte, errors.Error) {
	switch d.Type() {
	case NULL:
		return append(buf, _SER_NULL), nil
	case BOOLEAN:
		if d.b {
			return append(buf, _SER_BOOLEAN_TRUE), nil
		}
		return append(buf, _SER_BOOLEAN_FALSE), nil
	case NUMBER:
		buf = append(buf, _SER_NUMBER)
		var scratch [8]byte
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(d.n))
		return append(buf, scratch[:]...), nil
	case STRING:
		return appendSerializedString(buf, _SER_STRING, d.str), nil
	case BINARY:
		return appendSerializedString(buf, _SER_BINARY, d.str), nil
	case ARRAY:
		size, err := d.ArraySize()
		if err != nil {
			return nil, err
		}
		buf = append(buf, _SER_ARRAY)
		payloadStart := len(buf)
		buf = appendOffsetTable(buf, size)
		for i := 0; i < size; i++ {
			patchOffset(buf, payloadStart, i, len(buf)-payloadStart)
			if buf, err = AppendSerialized(buf, d.uncheckedGet(i)); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case OBJECT:
		size, err := d.ObjectSize()
		if err != nil {
			return nil, err
		}
		buf = append(buf, _SER_OBJECT)
		payloadStart := len(buf)
		buf = appendOffsetTable(buf, size)
		for i := 0; i < size; i++ {
			patchOffset(buf, payloadStart, i, len(buf)-payloadStart)
			pair := d.uncheckedGetPair(i)
			buf = appendUvarintBytes(buf, pair.Name.view())
			if buf, err = AppendSerialized(buf, pair.Value); err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	return nil, errors.NewGenericError("Cannot serialize an uninitialized value.")
}

// SerializedSize is the byte count AppendSerialized would produce.
func SerializedSize(d Datum) (int, errors.Error) {
	buf, err := AppendSerialized(nil, d)
	if err != nil {
		return 0, err
	}
	return len(buf), nil
}

func appendSerializedString(buf []byte, tag byte, str String) []byte {
	buf = append(buf, tag)
	return appendUvarintBytes(buf, str.view())
}

func appendUvarintBytes(buf, b []byte) []byte {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], uint64(len(b)))
	buf = append(buf, scratch[:n]...)
	return append(buf, b...)
}

func appendOffsetTable(buf []byte, count int) []byte {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(count))
	buf = append(buf, scratch[:]...)
	for i := 0; i < count; i++ {
		buf = append(buf, 0, 0, 0, 0)
	}
	return buf
}

func patchOffset(buf []byte, payloadStart, index, offset int) {
	binary.LittleEndian.PutUint32(buf[payloadStart+4+4*index:], uint32(offset))
}
