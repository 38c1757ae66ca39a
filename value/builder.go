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
	"sort"

	"github.com/reqldb/query/errors"
)

// Result-object field protocol shared by write operations.
const (
	ERRORS_FIELD      = "errors"
	FIRST_ERROR_FIELD = "first_error"
	WARNINGS_FIELD    = "warnings"
)

/*
ObjectBuilder accumulates fields for one object datum. Builders are
owned by a single goroutine; the datum they produce is immutable and
freely shareable.
*/
type ObjectBuilder struct {
	m map[string]Datum
}

func NewObjectBuilder() *ObjectBuilder {
	return &ObjectBuilder{m: make(map[string]Datum)}
}

func NewObjectBuilderFrom(copyFrom Datum) (*ObjectBuilder, errors.Error) {
	size, err := copyFrom.ObjectSize()
	if err != nil {
		return nil, err
	}
	rv := &ObjectBuilder{m: make(map[string]Datum, size)}
	for i := 0; i < size; i++ {
		pair := copyFrom.uncheckedGetPair(i)
		rv.m[pair.Name.ToString()] = pair.Value
	}
	return rv, nil
}

/*
Add inserts a field and reports whether the key was already present; a
duplicate is not overwritten.
*/
func (this *ObjectBuilder) Add(key string, val Datum) (bool, errors.Error) {
	if err := checkStrValidity(InternString(key)); err != nil {
		return false, err
	}
	sanityCheck(val.Has(), "adding the uninitialized sentinel to an object builder")
	if _, dup := this.m[key]; dup {
		return true, nil
	}
	this.m[key] = val
	return false, nil
}

// Overwrite replaces unconditionally.
func (this *ObjectBuilder) Overwrite(key string, val Datum) errors.Error {
	if err := checkStrValidity(InternString(key)); err != nil {
		return err
	}
	sanityCheck(val.Has(), "writing the uninitialized sentinel to an object builder")
	this.m[key] = val
	return nil
}

// Delete removes a field and reports whether anything was removed.
func (this *ObjectBuilder) Delete(key string) bool {
	if _, ok := this.m[key]; !ok {
		return false
	}
	delete(this.m, key)
	return true
}

// TryGet returns the uninitialized sentinel on a miss.
func (this *ObjectBuilder) TryGet(key string) Datum {
	return this.m[key]
}

/*
AddWarning appends msg to the "warnings" array unless it is already
present. The warnings array is assumed to stay small.
*/
func (this *ObjectBuilder) AddWarning(msg string, limits Limits) errors.Error {
	warnings, ok := this.m[WARNINGS_FIELD]
	if !ok {
		w, err := NewString(msg)
		if err != nil {
			return err
		}
		this.m[WARNINGS_FIELD] = NewArrayUnchecked([]Datum{w})
		return nil
	}

	size, err := warnings.ArraySize()
	if err != nil {
		return err
	}
	for i := 0; i < size; i++ {
		str, err := warnings.uncheckedGet(i).AsString()
		if err != nil {
			return err
		}
		if str.EqualStr(msg) {
			return nil
		}
	}
	if size+1 > limits.ArraySizeLimit() {
		return errors.NewGenericError("Warnings would exceed array size limit %d; increase it to see warnings",
			limits.ArraySizeLimit())
	}
	out := make([]Datum, 0, size+1)
	for i := 0; i < size; i++ {
		out = append(out, warnings.uncheckedGet(i))
	}
	w, werr := NewString(msg)
	if werr != nil {
		return werr
	}
	this.m[WARNINGS_FIELD] = NewArrayUnchecked(append(out, w))
	return nil
}

// AddWarnings is the batch form, with the same dedup behavior.
func (this *ObjectBuilder) AddWarnings(msgs []string, limits Limits) errors.Error {
	if len(msgs) == 0 {
		return nil
	}
	if warnings, ok := this.m[WARNINGS_FIELD]; ok {
		size, err := warnings.ArraySize()
		if err != nil {
			return err
		}
		if size+len(msgs) > limits.ArraySizeLimit() {
			return errors.NewGenericError("Warnings would exceed array size limit %d; increase it to see warnings",
				limits.ArraySizeLimit())
		}
	}
	for _, msg := range msgs {
		if err := this.AddWarning(msg, limits); err != nil {
			return err
		}
	}
	return nil
}

/*
AddError bumps the "errors" counter and records "first_error" on the
first call only.
*/
func (this *ObjectBuilder) AddError(msg string) errors.Error {
	ecount := float64(0)
	if entry, ok := this.m[ERRORS_FIELD]; ok {
		n, err := entry.AsNumber()
		if err != nil {
			return err
		}
		ecount = n
	}
	this.m[ERRORS_FIELD] = Datum{internal: _INTERNAL_NUMBER, n: ecount + 1}

	if _, ok := this.m[FIRST_ERROR_FIELD]; !ok {
		first, err := NewString(msg)
		if err != nil {
			return err
		}
		this.m[FIRST_ERROR_FIELD] = first
	}
	return nil
}

/*
ToDatum consumes the builder: fields are sorted by key and the result
is sanitized against allowedPtypes.
*/
func (this *ObjectBuilder) ToDatum(allowedPtypes []string) (Datum, errors.Error) {
	fields := make([]Pair, 0, len(this.m))
	for k, v := range this.m {
		fields = append(fields, Pair{Name: InternString(k), Value: v})
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name.Compare(fields[j].Name) < 0
	})
	this.m = nil
	return newSortedObject(fields, allowedPtypes)
}

/*
ArrayBuilder accumulates elements for one array datum. Add enforces
the array size limit; Change, Insert and Splice do not, so that index
entries written before the limit existed keep loading, and ToDatum
therefore uses the unchecked constructor.
*/
type ArrayBuilder struct {
	vector []Datum
	limits Limits
}

func NewArrayBuilder(limits Limits) *ArrayBuilder {
	return &ArrayBuilder{limits: limits}
}

func NewArrayBuilderFrom(copyFrom Datum, limits Limits) (*ArrayBuilder, errors.Error) {
	size, err := copyFrom.ArraySize()
	if err != nil {
		return nil, err
	}
	rv := &ArrayBuilder{limits: limits, vector: make([]Datum, 0, size)}
	for i := 0; i < size; i++ {
		rv.vector = append(rv.vector, copyFrom.uncheckedGet(i))
	}
	if err := checkArraySize(len(rv.vector), limits); err != nil {
		return nil, err
	}
	return rv, nil
}

func (this *ArrayBuilder) Reserve(n int) {
	if cap(this.vector)-len(this.vector) < n {
		vector := make([]Datum, len(this.vector), len(this.vector)+n)
		copy(vector, this.vector)
		this.vector = vector
	}
}

func (this *ArrayBuilder) Size() int {
	return len(this.vector)
}

func (this *ArrayBuilder) Add(val Datum) errors.Error {
	this.vector = append(this.vector, val)
	return checkArraySize(len(this.vector), this.limits)
}

func (this *ArrayBuilder) Change(index int, val Datum) errors.Error {
	if index < 0 || index >= len(this.vector) {
		return errors.NewNonExistenceError("Index `%d` out of bounds for array of size: `%d`.",
			index, len(this.vector))
	}
	this.vector[index] = val
	return nil
}

func (this *ArrayBuilder) Insert(index int, val Datum) errors.Error {
	if index < 0 || index > len(this.vector) {
		return errors.NewNonExistenceError("Index `%d` out of bounds for array of size: `%d`.",
			index, len(this.vector))
	}
	this.vector = append(this.vector, Datum{})
	copy(this.vector[index+1:], this.vector[index:])
	this.vector[index] = val
	return nil
}

func (this *ArrayBuilder) Splice(index int, values Datum) errors.Error {
	if index < 0 || index > len(this.vector) {
		return errors.NewNonExistenceError("Index `%d` out of bounds for array of size: `%d`.",
			index, len(this.vector))
	}
	size, err := values.ArraySize()
	if err != nil {
		return err
	}
	arr := make([]Datum, 0, size)
	for i := 0; i < size; i++ {
		arr = append(arr, values.uncheckedGet(i))
	}
	tail := append([]Datum{}, this.vector[index:]...)
	this.vector = append(append(this.vector[:index], arr...), tail...)
	return nil
}

/*
EraseRange removes [start, end). Under the 1.13 regime start must lie
strictly inside the array; later regimes accept start == size.
*/
func (this *ArrayBuilder) EraseRange(version Version, start, end int) errors.Error {
	switch version {
	case VERSION_1_13:
		if start < 0 || start >= len(this.vector) {
			return errors.NewNonExistenceError("Index `%d` out of bounds for array of size: `%d`.",
				start, len(this.vector))
		}
	case VERSION_1_14, VERSION_1_16_LATEST:
		if start < 0 || start > len(this.vector) {
			return errors.NewNonExistenceError("Index `%d` out of bounds for array of size: `%d`.",
				start, len(this.vector))
		}
	default:
		sanityCheck(false, "unhandled version %d", version)
	}

	if end < 0 || end > len(this.vector) {
		return errors.NewNonExistenceError("Index `%d` out of bounds for array of size: `%d`.",
			end, len(this.vector))
	}
	if start > end {
		return errors.NewGenericError("Start index `%d` is greater than end index `%d`.", start, end)
	}
	this.vector = append(this.vector[:start], this.vector[end:]...)
	return nil
}

func (this *ArrayBuilder) Erase(index int) errors.Error {
	if index < 0 || index >= len(this.vector) {
		return errors.NewNonExistenceError("Index `%d` out of bounds for array of size: `%d`.",
			index, len(this.vector))
	}
	this.vector = append(this.vector[:index], this.vector[index+1:]...)
	return nil
}

/*
ToDatum consumes the builder through the non-checking constructor.
Insert and Splice do not enforce the array size limit, and entries that
exceeded it have already been written by older versions; checking here
would make them unreadable.
*/
func (this *ArrayBuilder) ToDatum() Datum {
	vector := this.vector
	this.vector = nil
	return NewArrayUnchecked(vector)
}
