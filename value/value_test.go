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
	"math"
	"strings"
	"testing"

	"github.com/reqldb/query/errors"
)

func mustString(t *testing.T, s string) Datum {
	t.Helper()
	d, err := NewString(s)
	if err != nil {
		t.Fatalf("NewString(%q): %v", s, err)
	}
	return d
}

func mustNumber(t *testing.T, n float64) Datum {
	t.Helper()
	d, err := NewNumber(n)
	if err != nil {
		t.Fatalf("NewNumber(%v): %v", n, err)
	}
	return d
}

func mustObject(t *testing.T, fields []Pair, allowed []string) Datum {
	t.Helper()
	d, err := NewObject(fields, allowed)
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	return d
}

func pair(t *testing.T, name string, val Datum) Pair {
	t.Helper()
	return Pair{Name: InternString(name), Value: val}
}

func TestNumberConstruction(t *testing.T) {
	var tests = []struct {
		input float64
		ok    bool
	}{
		{0, true},
		{-1, true},
		{1.5, true},
		{math.MaxFloat64, true},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	}

	for _, test := range tests {
		_, err := NewNumber(test.input)
		if test.ok && err != nil {
			t.Errorf("NewNumber(%v) failed: %v", test.input, err)
		}
		if !test.ok {
			if err == nil {
				t.Errorf("NewNumber(%v) should have failed", test.input)
			} else if err.Code() != errors.E_GENERIC {
				t.Errorf("NewNumber(%v) wrong error code %d", test.input, err.Code())
			}
		}
	}
}

func TestStringConstruction(t *testing.T) {
	if _, err := NewString("hello"); err != nil {
		t.Fatalf("NewString: %v", err)
	}
	_, err := NewString("he\x00llo")
	if err == nil {
		t.Fatalf("NewString accepted a NUL byte")
	}
	if !strings.Contains(err.Error(), "NULL byte at offset 2") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestAsInt(t *testing.T) {
	var tests = []struct {
		input    float64
		expected int64
		ok       bool
	}{
		{1, 1, true},
		{-1, -1, true},
		{0, 0, true},
		{9007199254740992, 1 << 53, true},
		{-9007199254740992, -(1 << 53), true},
		{1.5, 0, false},
		{1e300, 0, false},
		{-1e300, 0, false},
	}

	for _, test := range tests {
		i, err := mustNumber(t, test.input).AsInt()
		if test.ok {
			if err != nil {
				t.Errorf("AsInt(%v) failed: %v", test.input, err)
			} else if i != test.expected {
				t.Errorf("AsInt(%v) = %d, want %d", test.input, i, test.expected)
			}
		} else if err == nil {
			t.Errorf("AsInt(%v) should have failed", test.input)
		}
	}
}

func TestTypeErrors(t *testing.T) {
	d := mustNumber(t, 1)
	if _, err := d.AsBool(); err == nil {
		t.Errorf("AsBool on a number should fail")
	}
	if _, err := d.AsString(); err == nil {
		t.Errorf("AsString on a number should fail")
	}
	if _, err := d.ArraySize(); err == nil {
		t.Errorf("ArraySize on a number should fail")
	}
	if _, err := d.GetField("x", NOTHROW); err == nil {
		t.Errorf("GetField on a number should fail")
	}
	if _, err := Null().AsBool(); err == nil {
		t.Errorf("AsBool on null should fail")
	}
}

func TestObjectSortsAndSearches(t *testing.T) {
	obj := mustObject(t, []Pair{
		pair(t, "b", mustNumber(t, 2)),
		pair(t, "a", mustNumber(t, 1)),
		pair(t, "c", mustNumber(t, 3)),
	}, nil)

	size, err := obj.ObjectSize()
	if err != nil || size != 3 {
		t.Fatalf("ObjectSize = %d, %v", size, err)
	}
	expected := []string{"a", "b", "c"}
	for i, name := range expected {
		p, err := obj.GetPair(i)
		if err != nil {
			t.Fatalf("GetPair(%d): %v", i, err)
		}
		if p.Name.ToString() != name {
			t.Errorf("pair %d = %q, want %q", i, p.Name.ToString(), name)
		}
	}

	for i, name := range expected {
		f, err := obj.GetField(name, THROW)
		if err != nil {
			t.Fatalf("GetField(%q): %v", name, err)
		}
		n, _ := f.AsNumber()
		if n != float64(i+1) {
			t.Errorf("GetField(%q) = %v, want %v", name, n, i+1)
		}
	}

	missing, err := obj.GetField("d", NOTHROW)
	if err != nil || missing.Has() {
		t.Errorf("NOTHROW miss should return the uninitialized sentinel")
	}
	if _, err = obj.GetField("d", THROW); err == nil || err.Code() != errors.E_NON_EXISTENCE {
		t.Errorf("THROW miss should be NON_EXISTENCE, got %v", err)
	}
}

func TestDuplicateObjectKeys(t *testing.T) {
	_, err := NewObject([]Pair{
		pair(t, "a", mustNumber(t, 1)),
		pair(t, "a", mustNumber(t, 2)),
	}, nil)
	if err == nil {
		t.Fatalf("duplicate keys should fail construction")
	}
}

func TestArrayAccess(t *testing.T) {
	arr, err := NewArray([]Datum{mustNumber(t, 1), mustNumber(t, 2)}, DefaultLimits)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	size, _ := arr.ArraySize()
	if size != 2 {
		t.Fatalf("ArraySize = %d", size)
	}
	if d, err := arr.Get(1, THROW); err != nil {
		t.Errorf("Get(1): %v", err)
	} else if n, _ := d.AsNumber(); n != 2 {
		t.Errorf("Get(1) = %v", n)
	}
	if _, err := arr.Get(2, THROW); err == nil || err.Code() != errors.E_NON_EXISTENCE {
		t.Errorf("Get(2) under THROW should be NON_EXISTENCE")
	}
	if d, err := arr.Get(2, NOTHROW); err != nil || d.Has() {
		t.Errorf("Get(2) under NOTHROW should be the uninitialized sentinel")
	}
}

func TestArraySizeLimit(t *testing.T) {
	limits := NewLimits(2)
	_, err := NewArray([]Datum{Null(), Null(), Null()}, limits)
	if err == nil || err.Code() != errors.E_TOO_LARGE {
		t.Fatalf("oversized array should fail with TOO_LARGE, got %v", err)
	}
	if d := NewArrayUnchecked([]Datum{Null(), Null(), Null()}); !d.Has() {
		t.Fatalf("unchecked constructor should not enforce the limit")
	}
}

func TestPrint(t *testing.T) {
	var tests = []struct {
		datum    Datum
		expected string
	}{
		{Null(), "null"},
		{TRUE_DATUM, "true"},
		{FALSE_DATUM, "false"},
		{mustNumber(t, 1), "1"},
		{mustNumber(t, -1.5), "-1.5"},
		{mustString(t, "hello"), `"hello"`},
		{Datum{}, "UNINITIALIZED"},
	}

	for _, test := range tests {
		if got := test.datum.String(); got != test.expected {
			t.Errorf("print = %s, want %s", got, test.expected)
		}
	}

	obj := mustObject(t, []Pair{
		pair(t, "b", mustNumber(t, 2)),
		pair(t, "a", mustNumber(t, 1)),
	}, nil)
	if got := obj.String(); got != `{"a":1,"b":2}` {
		t.Errorf("object print = %s", got)
	}

	arr, _ := NewArray([]Datum{mustNumber(t, 1), mustString(t, "x")}, DefaultLimits)
	if got := arr.String(); got != `[1,"x"]` {
		t.Errorf("array print = %s", got)
	}
}

func TestTruncPrint(t *testing.T) {
	long := strings.Repeat("x", 1000)
	d := mustString(t, long)
	got := d.TruncPrint()
	if len(got) != _TRUNC_LEN {
		t.Errorf("TruncPrint length = %d, want %d", len(got), _TRUNC_LEN)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("TruncPrint should end in an ellipsis")
	}
}

func TestTypeNames(t *testing.T) {
	var tests = []struct {
		datum    Datum
		expected string
	}{
		{Null(), "NULL"},
		{TRUE_DATUM, "BOOL"},
		{mustNumber(t, 1), "NUMBER"},
		{mustString(t, "x"), "STRING"},
		{NewBinary([]byte("x")), "PTYPE<BINARY>"},
		{EmptyArray(), "ARRAY"},
		{EmptyObject(), "OBJECT"},
	}
	for _, test := range tests {
		if got := test.datum.TypeName(); got != test.expected {
			t.Errorf("TypeName = %s, want %s", got, test.expected)
		}
	}

	timeObj := mustObject(t, []Pair{
		pair(t, REQL_TYPE_FIELD, mustString(t, TIME_TYPE)),
		pair(t, EPOCH_TIME_FIELD, mustNumber(t, 0)),
		pair(t, TIMEZONE_FIELD, mustString(t, "+00:00")),
	}, nil)
	if got := timeObj.TypeName(); got != "PTYPE<TIME>" {
		t.Errorf("TypeName = %s, want PTYPE<TIME>", got)
	}
}

func TestReplaceField(t *testing.T) {
	obj := mustObject(t, []Pair{
		pair(t, "a", mustNumber(t, 1)),
		pair(t, "b", mustNumber(t, 2)),
	}, nil)
	if err := obj.ReplaceField("b", mustNumber(t, 20)); err != nil {
		t.Fatalf("ReplaceField: %v", err)
	}
	f, _ := obj.GetField("b", THROW)
	if n, _ := f.AsNumber(); n != 20 {
		t.Errorf("ReplaceField did not take: %v", n)
	}
}

func TestCheckValidReplace(t *testing.T) {
	oldDoc := mustObject(t, []Pair{pair(t, "id", mustNumber(t, 1))}, nil)
	newDoc := mustObject(t, []Pair{pair(t, "id", mustNumber(t, 1)), pair(t, "x", Null())}, nil)
	if err := newDoc.CheckValidReplace(oldDoc, Datum{}, "id"); err != nil {
		t.Errorf("CheckValidReplace: %v", err)
	}

	changed := mustObject(t, []Pair{pair(t, "id", mustNumber(t, 2))}, nil)
	if err := changed.CheckValidReplace(oldDoc, Datum{}, "id"); err == nil {
		t.Errorf("changing the primary key should fail")
	}

	missing := mustObject(t, []Pair{pair(t, "x", Null())}, nil)
	if err := missing.CheckValidReplace(oldDoc, Datum{}, "id"); err == nil {
		t.Errorf("a document without the primary key should fail")
	}
}
