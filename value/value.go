//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

/*
Package value represents the query-language data model: the tagged,
self-describing datum that flows through the query engine, is persisted
on disk and defines index keys. Datums are immutable after construction
and freely shareable; arrays and objects may be backed by a shared
buffer and decoded lazily.
*/
package value

import (
	"bytes"
	"math"
	"sort"
	"strconv"

	"github.com/reqldb/query/errors"
	"github.com/reqldb/query/logging"
	"github.com/reqldb/query/util"
)

type Type int

/*
The datum variants. The declaration order is load-bearing: comparisons
between distinct variants order by this value, and it must agree with
the byte order of the per-variant key tags.
*/
const (
	UNINITIALIZED = Type(iota) // No value; a default or placeholder only
	ARRAY
	BINARY
	BOOLEAN
	NULL
	NUMBER
	OBJECT
	STRING
)

var _TYPE_NAMES = []string{
	UNINITIALIZED: "UNINITIALIZED",
	ARRAY:         "ARRAY",
	BINARY:        "PTYPE<BINARY>",
	BOOLEAN:       "BOOL",
	NULL:          "NULL",
	NUMBER:        "NUMBER",
	OBJECT:        "OBJECT",
	STRING:        "STRING",
}

func (this Type) String() string {
	return _TYPE_NAMES[this]
}

type Version int

/*
Compatibility regimes. There are exactly three: a regime change alters
UTF-8 validation, variant ordering, or secondary-key framing, and any
newer regime must be added here explicitly.
*/
const (
	VERSION_1_13 = Version(iota)
	VERSION_1_14 // 1.15 behaves the same as 1.14
	VERSION_1_16_LATEST
)

/*
ThrowBool selects between failing accessors and sentinel-returning
accessors.
*/
type ThrowBool bool

const (
	NOTHROW = ThrowBool(false)
	THROW   = ThrowBool(true)
)

const DEFAULT_ARRAY_SIZE_LIMIT = 100000

/*
Limits carries the configurable size limits that construction paths
enforce. It travels as an explicit value; there is no global registry.
*/
type Limits struct {
	arraySizeLimit int
}

func NewLimits(arraySizeLimit int) Limits {
	return Limits{arraySizeLimit: arraySizeLimit}
}

func (this Limits) ArraySizeLimit() int {
	return this.arraySizeLimit
}

var DefaultLimits = Limits{arraySizeLimit: DEFAULT_ARRAY_SIZE_LIMIT}

// UnlimitedLimits is for internal paths that can never grow an array,
// such as dropping literals.
var UnlimitedLimits = Limits{arraySizeLimit: math.MaxInt}

type internalType int

const (
	_INTERNAL_UNINITIALIZED = internalType(iota)
	_INTERNAL_ARRAY
	_INTERNAL_BINARY
	_INTERNAL_BOOLEAN
	_INTERNAL_NULL
	_INTERNAL_NUMBER
	_INTERNAL_OBJECT
	_INTERNAL_STRING
	_INTERNAL_BUF_ARRAY
	_INTERNAL_BUF_OBJECT
)

/*
Pair is one object field. Objects store their pairs in ascending Name
order with no duplicates.
*/
type Pair struct {
	Name  String
	Value Datum
}

type Pairs []Pair

/*
Datum is a small value with shared immutable interior: the array and
object bodies are pointers to cells that are never mutated after the
constructor returns, and the buffer-backed forms hold a window into a
serialized blob that is decoded on demand.
*/
type Datum struct {
	internal internalType
	n        float64
	b        bool
	str      String // STRING and BINARY payload
	arr      *[]Datum
	obj      *[]Pair
	buf      SharedBufRef
}

var NULL_DATUM = Datum{internal: _INTERNAL_NULL}
var TRUE_DATUM = Datum{internal: _INTERNAL_BOOLEAN, b: true}
var FALSE_DATUM = Datum{internal: _INTERNAL_BOOLEAN, b: false}

func Null() Datum {
	return NULL_DATUM
}

func NewBoolean(b bool) Datum {
	if b {
		return TRUE_DATUM
	}
	return FALSE_DATUM
}

func NewNumber(n float64) (Datum, errors.Error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Datum{}, errors.NewGenericError("Non-finite number: %s", formatNumber(n))
	}
	return Datum{internal: _INTERNAL_NUMBER, n: n}, nil
}

// NewInt builds a NUMBER from an integer; integers are always finite.
func NewInt(i int64) Datum {
	return Datum{internal: _INTERNAL_NUMBER, n: float64(i)}
}

func NewString(s string) (Datum, errors.Error) {
	str := String{s: s}
	if err := checkStrValidity(str); err != nil {
		return Datum{}, err
	}
	return Datum{internal: _INTERNAL_STRING, str: str}, nil
}

func newStringDatum(str String) (Datum, errors.Error) {
	if err := checkStrValidity(str); err != nil {
		return Datum{}, err
	}
	return Datum{internal: _INTERNAL_STRING, str: str}, nil
}

func NewBinary(data []byte) Datum {
	return Datum{internal: _INTERNAL_BINARY, str: String{s: string(data)}}
}

func newBinaryDatum(str String) Datum {
	return Datum{internal: _INTERNAL_BINARY, str: str}
}

/*
NewArray takes ownership of elems. It fails with a TOO_LARGE error when
elems exceeds the array size limit.
*/
func NewArray(elems []Datum, limits Limits) (Datum, errors.Error) {
	if err := checkArraySize(len(elems), limits); err != nil {
		return Datum{}, err
	}
	return NewArrayUnchecked(elems), nil
}

/*
NewArrayUnchecked skips the size check. Array builders funnel through
here so that index entries written before the limit existed still load.
*/
func NewArrayUnchecked(elems []Datum) Datum {
	return Datum{internal: _INTERNAL_ARRAY, arr: &elems}
}

func EmptyArray() Datum {
	return NewArrayUnchecked(nil)
}

/*
NewObject takes ownership of fields, sorts them by name, rejects
duplicate keys, and sanitizes any pseudotype carrier against
allowedPtypes.
*/
func NewObject(fields []Pair, allowedPtypes []string) (Datum, errors.Error) {
	for i := range fields {
		if err := checkStrValidity(fields[i].Name); err != nil {
			return Datum{}, err
		}
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Name.Compare(fields[j].Name) < 0
	})
	for i := 1; i < len(fields); i++ {
		if fields[i].Name.Equal(fields[i-1].Name) {
			return Datum{}, errors.NewGenericError("Duplicate key %s in object.", fields[i].Name.ToString())
		}
	}
	return newSortedObject(fields, allowedPtypes)
}

func NewObjectFromMap(m map[string]Datum, allowedPtypes []string) (Datum, errors.Error) {
	fields := make([]Pair, 0, len(m))
	for k, v := range m {
		fields = append(fields, Pair{Name: InternString(k), Value: v})
	}
	return NewObject(fields, allowedPtypes)
}

// newSortedObject wraps pairs already sorted and deduplicated.
func newSortedObject(fields []Pair, allowedPtypes []string) (Datum, errors.Error) {
	d := Datum{internal: _INTERNAL_OBJECT, obj: &fields}
	if err := d.maybeSanitizePtype(allowedPtypes); err != nil {
		return Datum{}, err
	}
	return d, nil
}

func EmptyObject() Datum {
	return Datum{internal: _INTERNAL_OBJECT, obj: &[]Pair{}}
}

func newBufDatum(internal internalType, ref SharedBufRef) Datum {
	return Datum{internal: internal, buf: ref}
}

/*
Has reports whether this datum holds a value. The zero Datum is the
uninitialized sentinel: legal as a default or placeholder, never
persisted or compared.
*/
func (this Datum) Has() bool {
	return this.internal != _INTERNAL_UNINITIALIZED
}

func (this *Datum) Reset() {
	*this = Datum{}
}

// Type returns the logical variant; buffer-backed forms collapse to
// ARRAY and OBJECT.
func (this Datum) Type() Type {
	switch this.internal {
	case _INTERNAL_UNINITIALIZED:
		return UNINITIALIZED
	case _INTERNAL_ARRAY, _INTERNAL_BUF_ARRAY:
		return ARRAY
	case _INTERNAL_BINARY:
		return BINARY
	case _INTERNAL_BOOLEAN:
		return BOOLEAN
	case _INTERNAL_NULL:
		return NULL
	case _INTERNAL_NUMBER:
		return NUMBER
	case _INTERNAL_OBJECT, _INTERNAL_BUF_OBJECT:
		return OBJECT
	default:
		return STRING
	}
}

/*
TypeName names the type for error messages, with pseudotypes reported
as PTYPE<name>.
*/
func (this Datum) TypeName() string {
	if this.IsPtype() {
		if rt, err := this.ReqlType(); err == nil {
			return "PTYPE<" + rt + ">"
		}
	}
	return this.Type().String()
}

func (this Datum) checkType(desired Type) errors.Error {
	if this.Type() != desired {
		return errors.NewTypeError("Expected type %s but found %s.", desired, this.TypeName())
	}
	return nil
}

func (this Datum) AsBool() (bool, errors.Error) {
	if err := this.checkType(BOOLEAN); err != nil {
		return false, err
	}
	return this.b, nil
}

func (this Datum) AsNumber() (float64, errors.Error) {
	if err := this.checkType(NUMBER); err != nil {
		return 0, err
	}
	return this.n, nil
}

const _MAX_DBL_INT = int64(1) << 53
const _MIN_DBL_INT = -_MAX_DBL_INT

// NumberAsInteger reports whether d has an exact integer
// interpretation, which requires it to lie in [-2^53, 2^53].
func NumberAsInteger(d float64) (int64, bool) {
	if float64(_MIN_DBL_INT) <= d && d <= float64(_MAX_DBL_INT) {
		i := int64(d)
		if float64(i) == d {
			return i, true
		}
	}
	return 0, false
}

func (this Datum) AsInt() (int64, errors.Error) {
	n, err := this.AsNumber()
	if err != nil {
		return 0, err
	}
	if i, ok := NumberAsInteger(n); ok {
		return i, nil
	}
	suffix := ""
	if n < float64(_MIN_DBL_INT) {
		suffix = " (<-2^53)"
	} else if n > float64(_MAX_DBL_INT) {
		suffix = " (>2^53)"
	}
	return 0, errors.NewGenericError("Number not an integer%s: %s", suffix, formatNumber(n))
}

func (this Datum) AsString() (String, errors.Error) {
	if err := this.checkType(STRING); err != nil {
		return String{}, err
	}
	return this.str, nil
}

func (this Datum) AsBinary() (String, errors.Error) {
	if err := this.checkType(BINARY); err != nil {
		return String{}, err
	}
	return this.str, nil
}

func (this Datum) ArraySize() (int, errors.Error) {
	if err := this.checkType(ARRAY); err != nil {
		return 0, err
	}
	if this.internal == _INTERNAL_BUF_ARRAY {
		return bufArraySize(this.buf), nil
	}
	return len(*this.arr), nil
}

/*
Get returns the index'th element. Out of bounds yields a
NON_EXISTENCE error under THROW and the uninitialized sentinel under
NOTHROW.
*/
func (this Datum) Get(index int, throwBool ThrowBool) (Datum, errors.Error) {
	size, err := this.ArraySize()
	if err != nil {
		return Datum{}, err
	}
	if index >= 0 && index < size {
		return this.uncheckedGet(index), nil
	}
	if throwBool == THROW {
		return Datum{}, errors.NewNonExistenceError("Index out of bounds: %d", index)
	}
	return Datum{}, nil
}

func (this Datum) uncheckedGet(index int) Datum {
	if this.internal == _INTERNAL_BUF_ARRAY {
		return bufDeserializeValue(this.buf, bufElementOffset(this.buf, index))
	}
	return (*this.arr)[index]
}

func (this Datum) ObjectSize() (int, errors.Error) {
	if err := this.checkType(OBJECT); err != nil {
		return 0, err
	}
	if this.internal == _INTERNAL_BUF_OBJECT {
		return bufArraySize(this.buf), nil
	}
	return len(*this.obj), nil
}

// GetPair returns the index'th field in key order.
func (this Datum) GetPair(index int) (Pair, errors.Error) {
	size, err := this.ObjectSize()
	if err != nil {
		return Pair{}, err
	}
	if index < 0 || index >= size {
		return Pair{}, errors.NewNonExistenceError("Pair index out of bounds: %d", index)
	}
	return this.uncheckedGetPair(index), nil
}

func (this Datum) uncheckedGetPair(index int) Pair {
	if this.internal == _INTERNAL_BUF_OBJECT {
		return bufDeserializePair(this.buf, bufElementOffset(this.buf, index))
	}
	return (*this.obj)[index]
}

/*
GetField looks a key up by binary search over the sorted field vector.
A miss yields a NON_EXISTENCE error under THROW and the uninitialized
sentinel under NOTHROW.
*/
func (this Datum) GetField(key string, throwBool ThrowBool) (Datum, errors.Error) {
	size, err := this.ObjectSize()
	if err != nil {
		return Datum{}, err
	}
	rangeBeg, rangeEnd := 0, size
	for rangeBeg < rangeEnd {
		center := rangeBeg + (rangeEnd-rangeBeg)/2
		pair := this.uncheckedGetPair(center)
		cmp := pair.Name.CompareStr(key)
		if cmp == 0 {
			return pair.Value, nil
		} else if cmp > 0 {
			rangeEnd = center
		} else {
			rangeBeg = center + 1
		}
	}

	if throwBool == THROW {
		return Datum{}, errors.NewNonExistenceError("No attribute `%s` in object:\n%s", key, this.String())
	}
	return Datum{}, nil
}

/*
ReplaceField swaps the value of an existing key in place. It is only
legal during sanitization, before the datum has been shared, and only
on materialized objects.
*/
func (this *Datum) ReplaceField(key string, val Datum) errors.Error {
	if err := this.checkType(OBJECT); err != nil {
		return err
	}
	sanityCheck(val.Has(), "replacing a field with the uninitialized sentinel")
	sanityCheck(this.internal == _INTERNAL_OBJECT, "replacing a field of a buffer-backed object")

	fields := *this.obj
	i := sort.Search(len(fields), func(i int) bool {
		return fields[i].Name.CompareStr(key) >= 0
	})
	sanityCheck(i < len(fields) && fields[i].Name.EqualStr(key), "replacing a field that does not exist")
	fields[i].Value = val
	return nil
}

/*
CheckValidReplace validates a replacement document: it must carry the
primary key, and the primary key must not change from the old document.
*/
func (this Datum) CheckValidReplace(oldVal, origKey Datum, pkey string) errors.Error {
	pk, err := this.GetField(pkey, NOTHROW)
	if err != nil {
		return err
	}
	if !pk.Has() {
		return errors.NewGenericError("Inserted object must have primary key `%s`:\n%s", pkey, this.String())
	}
	if oldVal.Has() {
		oldPk := origKey
		if oldVal.Type() != NULL {
			oldPk, err = oldVal.GetField(pkey, NOTHROW)
			if err != nil {
				return err
			}
			sanityCheck(oldPk.Has(), "old value is missing its primary key")
		}
		if oldPk.Has() && !oldPk.Equals(pk) {
			return errors.NewGenericError("Primary key `%s` cannot be changed (`%s` -> `%s`).",
				pkey, oldVal.String(), this.String())
		}
	} else {
		sanityCheck(!origKey.Has(), "original key without an old value")
	}
	return nil
}

// GetBufRef exposes the shared-buffer window of a buffer-backed datum,
// or false for materialized forms.
func (this Datum) GetBufRef() (SharedBufRef, bool) {
	if this.internal == _INTERNAL_BUF_ARRAY || this.internal == _INTERNAL_BUF_OBJECT {
		return this.buf, true
	}
	return SharedBufRef{}, false
}

/*
String implements fmt.Stringer as the canonical JSON printing.
*/
func (this Datum) String() string {
	if !this.Has() {
		return "UNINITIALIZED"
	}
	b, err := this.MarshalJSON()
	if err != nil {
		// We should not get here.
		panic(_MARSHAL_ERROR)
	}
	return string(b)
}

const _TRUNC_LEN = 300

// TruncPrint bounds the canonical printing for inclusion in error
// messages.
func (this Datum) TruncPrint() string {
	s := this.String()
	if len(s) > _TRUNC_LEN {
		s = s[:_TRUNC_LEN-3] + "..."
	}
	return s
}

const _MARSHAL_ERROR = "Unexpected marshal error on valid data."

func checkArraySize(size int, limits Limits) errors.Error {
	if size > limits.ArraySizeLimit() {
		return errors.NewTooLargeError("Array over size limit `%d`.", limits.ArraySizeLimit())
	}
	return nil
}

func checkStrValidity(str String) errors.Error {
	b := str.view()
	if pos := bytes.IndexByte(b, 0); pos >= 0 {
		// We truncate because the message gets embedded in other
		// errors.
		return errors.NewGenericError("String `%.20s` (truncated) contains NULL byte at offset %d.",
			str.ToString(), pos)
	}
	return nil
}

/*
ValidateUTF8 rejects malformed UTF-8 under version 1.14 and later.
Earlier versions accepted arbitrary bytes and persisted them; their
strings still load.
*/
func ValidateUTF8(version Version, s string) errors.Error {
	switch version {
	case VERSION_1_13:
		return nil
	case VERSION_1_14, VERSION_1_16_LATEST:
		if ok, reason := util.ValidUTF8(s); !ok {
			truncated := s
			if len(truncated) > 20 {
				truncated = truncated[:20]
			}
			return errors.NewGenericError("String `%s` (truncated) is not a UTF-8 string; %s at position %d.",
				truncated, reason.Explanation, reason.Position)
		}
		return nil
	default:
		sanityCheck(false, "unhandled version %d", version)
		return nil
	}
}

// formatNumber prints a double with enough digits to reconstruct it.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', 20, 64)
}

func sanityCheck(cond bool, format string, args ...interface{}) {
	if !cond {
		logging.Severef("datum sanity violation: "+format, args...)
		panic("datum sanity violation: " + format)
	}
}
