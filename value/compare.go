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
	"github.com/reqldb/query/errors"
)

/*
Compare is the total order over initialized datums, parameterized by
the compatibility version. On primary-key-encodable datums the latest
regime agrees with the byte order of the encoded keys.
*/
func (this Datum) Compare(version Version, other Datum) (int, errors.Error) {
	switch version {
	case VERSION_1_13:
		return this.v113Compare(other)
	case VERSION_1_14, VERSION_1_16_LATEST:
		return this.modernCompare(other)
	default:
		sanityCheck(false, "unhandled version %d", version)
		return 0, nil
	}
}

// Equals is equality under the latest regime. Incomparable pairs are
// unequal.
func (this Datum) Equals(other Datum) bool {
	cmp, err := this.modernCompare(other)
	return err == nil && cmp == 0
}

func (this Datum) CompareLt(version Version, other Datum) (bool, errors.Error) {
	cmp, err := this.Compare(version, other)
	return cmp < 0, err
}

func (this Datum) CompareGt(version Version, other Datum) (bool, errors.Error) {
	cmp, err := this.Compare(version, other)
	return cmp > 0, err
}

func derivedCompareInt(a, b int) int {
	if a == b {
		return 0
	} else if a < b {
		return -1
	}
	return 1
}

func derivedCompareString(a, b string) int {
	if a == b {
		return 0
	} else if a < b {
		return -1
	}
	return 1
}

func derivedCompareFloat(a, b float64) int {
	if a == b {
		return 0
	} else if a < b {
		return -1
	}
	return 1
}

func derivedCompareBool(a, b bool) int {
	if a == b {
		return 0
	} else if !a {
		return -1
	}
	return 1
}

/*
The 1.13 regime: pseudotypes sort after all plain values; everything
else orders by variant, then within the variant.
*/
func (this Datum) v113Compare(other Datum) (int, errors.Error) {
	lhsPtype := this.IsPtype()
	rhsPtype := other.IsPtype()
	if lhsPtype && !rhsPtype {
		return 1, nil
	} else if !lhsPtype && rhsPtype {
		return -1, nil
	}

	if this.Type() != other.Type() {
		return derivedCompareInt(int(this.Type()), int(other.Type())), nil
	}
	return this.sameTypeCompare(VERSION_1_13, other)
}

/*
The modern regime: pseudotypes that do not compare as objects order by
their $reql_type$ first, then by the pseudotype comparator; a
pseudotype against a plain value orders by type-name strings. Plain
values order by variant, then within the variant.
*/
func (this Datum) modernCompare(other Datum) (int, errors.Error) {
	lhsPtype := this.IsPtype() && !this.pseudoComparesAsObject()
	rhsPtype := other.IsPtype() && !other.pseudoComparesAsObject()
	if lhsPtype && rhsPtype {
		lhsType, err := this.ReqlType()
		if err != nil {
			return 0, err
		}
		rhsType, err := other.ReqlType()
		if err != nil {
			return 0, err
		}
		if lhsType != rhsType {
			return derivedCompareString(lhsType, rhsType), nil
		}
		return this.pseudoCompare(VERSION_1_16_LATEST, other)
	} else if lhsPtype || rhsPtype {
		return derivedCompareString(this.TypeName(), other.TypeName()), nil
	}

	if this.Type() != other.Type() {
		return derivedCompareInt(int(this.Type()), int(other.Type())), nil
	}
	return this.sameTypeCompare(VERSION_1_16_LATEST, other)
}

func (this Datum) sameTypeCompare(version Version, other Datum) (int, errors.Error) {
	switch this.Type() {
	case NULL:
		return 0, nil
	case BOOLEAN:
		return derivedCompareBool(this.b, other.b), nil
	case NUMBER:
		return derivedCompareFloat(this.n, other.n), nil
	case STRING:
		return this.str.Compare(other.str), nil
	case BINARY:
		return this.str.Compare(other.str), nil
	case ARRAY:
		sz, _ := this.ArraySize()
		rhsSz, _ := other.ArraySize()
		for i := 0; i < sz; i++ {
			if i >= rhsSz {
				return 1, nil
			}
			cmp, err := this.uncheckedGet(i).Compare(version, other.uncheckedGet(i))
			if cmp != 0 || err != nil {
				return cmp, err
			}
		}
		if sz == rhsSz {
			return 0, nil
		}
		return -1, nil
	case OBJECT:
		if version == VERSION_1_13 && this.IsPtype() && !this.pseudoComparesAsObject() {
			lhsType, err := this.ReqlType()
			if err != nil {
				return 0, err
			}
			rhsType, err := other.ReqlType()
			if err != nil {
				return 0, err
			}
			if lhsType != rhsType {
				return derivedCompareString(lhsType, rhsType), nil
			}
			return this.pseudoCompare(version, other)
		}

		sz, _ := this.ObjectSize()
		rhsSz, _ := other.ObjectSize()
		for i := 0; i < sz && i < rhsSz; i++ {
			pair := this.uncheckedGetPair(i)
			otherPair := other.uncheckedGetPair(i)
			if cmp := pair.Name.Compare(otherPair.Name); cmp != 0 {
				return cmp, nil
			}
			cmp, err := pair.Value.Compare(version, otherPair.Value)
			if cmp != 0 || err != nil {
				return cmp, err
			}
		}
		return derivedCompareInt(sz, rhsSz), nil
	default:
		sanityCheck(false, "comparing an uninitialized datum")
		return 0, nil
	}
}
