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

	"github.com/reqldb/query/errors"
	"github.com/reqldb/query/value"
)

type BoundType int

const (
	OPEN = BoundType(iota)
	CLOSED
	NONE
)

/*
DatumRange is an interval of datums, each bound optional and open or
closed. It projects onto primary and secondary key ranges.
*/
type DatumRange struct {
	LeftBound      value.Datum
	RightBound     value.Datum
	LeftBoundType  BoundType
	RightBoundType BoundType
}

func NewDatumRange(leftBound value.Datum, leftBoundType BoundType,
	rightBound value.Datum, rightBoundType BoundType) DatumRange {
	return DatumRange{
		LeftBound:      leftBound,
		RightBound:     rightBound,
		LeftBoundType:  leftBoundType,
		RightBoundType: rightBoundType,
	}
}

// NewSingletonRange is the closed range containing exactly val.
func NewSingletonRange(val value.Datum) DatumRange {
	return DatumRange{
		LeftBound:      val,
		RightBound:     val,
		LeftBoundType:  CLOSED,
		RightBoundType: CLOSED,
	}
}

func Universe() DatumRange {
	return DatumRange{LeftBoundType: OPEN, RightBoundType: OPEN}
}

func (this DatumRange) IsUniverse() bool {
	return !this.LeftBound.Has() && !this.RightBound.Has() &&
		this.LeftBoundType == OPEN && this.RightBoundType == OPEN
}

func (this DatumRange) WithLeftBound(d value.Datum, boundType BoundType) DatumRange {
	return NewDatumRange(d, boundType, this.RightBound, this.RightBoundType)
}

func (this DatumRange) WithRightBound(d value.Datum, boundType BoundType) DatumRange {
	return NewDatumRange(this.LeftBound, this.LeftBoundType, d, boundType)
}

func (this DatumRange) Contains(version value.Version, val value.Datum) (bool, errors.Error) {
	if this.LeftBound.Has() {
		cmp, err := this.LeftBound.Compare(version, val)
		if err != nil {
			return false, err
		}
		if !(cmp < 0 || (cmp == 0 && this.LeftBoundType == CLOSED)) {
			return false, nil
		}
	}
	if this.RightBound.Has() {
		cmp, err := this.RightBound.Compare(version, val)
		if err != nil {
			return false, err
		}
		if !(cmp > 0 || (cmp == 0 && this.RightBoundType == CLOSED)) {
			return false, nil
		}
	}
	return true, nil
}

// KeyRange is an interval of store keys.
type KeyRange struct {
	Left      StoreKey
	Right     StoreKey
	LeftType  BoundType
	RightType BoundType
}

func (this DatumRange) ToPrimaryKeyRange() (KeyRange, errors.Error) {
	rv := KeyRange{
		Left:      StoreKeyMin(),
		Right:     StoreKeyMax(),
		LeftType:  this.LeftBoundType,
		RightType: this.RightBoundType,
	}
	if this.LeftBound.Has() {
		key, err := PrintPrimary(this.LeftBound)
		if err != nil {
			return KeyRange{}, err
		}
		rv.Left = key
	}
	if this.RightBound.Has() {
		key, err := PrintPrimary(this.RightBound)
		if err != nil {
			return KeyRange{}, err
		}
		rv.Right = key
	}
	return rv, nil
}

/*
ToSindexKeyRange projects onto the secondary index keyspace. Stored
entries extend the encoded value with the primary key and tag, and may
be truncated, so the range over-covers: the right bound is padded to
the maximum key and callers filter the over-matches against the datum
range itself.
*/
func (this DatumRange) ToSindexKeyRange() (KeyRange, errors.Error) {
	rv := KeyRange{
		Left:      StoreKeyMin(),
		Right:     StoreKeyMax(),
		LeftType:  CLOSED,
		RightType: CLOSED,
	}
	if this.LeftBound.Has() {
		key, err := TruncatedSecondary(this.LeftBound)
		if err != nil {
			return KeyRange{}, err
		}
		rv.Left = key
	}
	if this.RightBound.Has() {
		key, err := TruncatedSecondary(this.RightBound)
		if err != nil {
			return KeyRange{}, err
		}
		rv.Right = StoreKey(append([]byte(key), bytes.Repeat([]byte{0xff}, MAX_KEY_SIZE-len(key))...))
	}
	return rv, nil
}
