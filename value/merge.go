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
	"fmt"

	"github.com/reqldb/query/errors"
)

/*
Merge implements the update/replace object merge. If either side is
not an object the right side wins. Otherwise right-hand fields merge
into the left recursively, with $reql_type$ LITERAL carriers replacing
(or, when they carry no value, deleting) the left-hand subtree.
*/
func (this Datum) Merge(rhs Datum) (Datum, errors.Error) {
	if this.Type() != OBJECT || rhs.Type() != OBJECT {
		return rhs, nil
	}

	d, err := NewObjectBuilderFrom(this)
	if err != nil {
		return Datum{}, err
	}
	rhsSize, err := rhs.ObjectSize()
	if err != nil {
		return Datum{}, err
	}
	for i := 0; i < rhsSize; i++ {
		pair := rhs.uncheckedGetPair(i)
		name := pair.Name.ToString()
		subLhs := d.TryGet(name)
		isLiteral := pair.Value.IsPtypeOf(LITERAL_TYPE)

		if pair.Value.Type() == OBJECT && subLhs.Has() && !isLiteral {
			merged, err := subLhs.Merge(pair.Value)
			if err != nil {
				return Datum{}, err
			}
			if err = d.Overwrite(name, merged); err != nil {
				return Datum{}, err
			}
			continue
		}

		val := pair.Value
		if isLiteral {
			if val, err = pair.Value.GetField(VALUE_FIELD, NOTHROW); err != nil {
				return Datum{}, err
			}
		}
		if val.Has() {
			// Nested literal keywords are forbidden, so dropping
			// literals is a no-op on a literal's value.
			dropped, encounteredLiteral, err := val.DropLiterals()
			if err != nil {
				return Datum{}, err
			}
			sanityCheck(!encounteredLiteral || !isLiteral, "nested literal slipped through query validation")
			val = dropped
		}
		if val.Has() {
			if err = d.Overwrite(name, val); err != nil {
				return Datum{}, err
			}
		} else {
			sanityCheck(isLiteral, "merge dropped a non-literal value")
			d.Delete(name)
		}
	}
	return d.ToDatum(nil)
}

/*
MergeResolver decides a key collision during MergeWith. It may record
condition strings (truncations and the like) in conditions.
*/
type MergeResolver func(key string, l, r Datum, limits Limits, conditions map[string]bool) (Datum, errors.Error)

/*
MergeWith is the generic merge: on key collision the resolver decides
the stored value; fresh keys copy from the right side.
*/
func (this Datum) MergeWith(rhs Datum, f MergeResolver, limits Limits,
	conditions map[string]bool) (Datum, errors.Error) {

	d, err := NewObjectBuilderFrom(this)
	if err != nil {
		return Datum{}, err
	}
	rhsSize, err := rhs.ObjectSize()
	if err != nil {
		return Datum{}, err
	}
	for i := 0; i < rhsSize; i++ {
		pair := rhs.uncheckedGetPair(i)
		name := pair.Name.ToString()
		left, err := this.GetField(name, NOTHROW)
		if err != nil {
			return Datum{}, err
		}
		if left.Has() {
			resolved, err := f(name, left, pair.Value, limits, conditions)
			if err != nil {
				return Datum{}, err
			}
			if err = d.Overwrite(name, resolved); err != nil {
				return Datum{}, err
			}
		} else {
			dup, err := d.Add(name, pair.Value)
			if err != nil {
				return Datum{}, err
			}
			sanityCheck(!dup, "fresh key already present in merge target")
		}
	}
	return d.ToDatum(nil)
}

/*
DropLiterals walks the tree and replaces every LITERAL carrier with its
unwrapped value; carriers without a value disappear. The second return
reports whether any literal was encountered. The tree is only copied
from the first literal on.
*/
func (this Datum) DropLiterals() (Datum, bool, errors.Error) {
	// Dropping literals never grows an array beyond the existing
	// datum, so the unlimited limits are safe here.
	limits := UnlimitedLimits

	if this.IsPtypeOf(LITERAL_TYPE) {
		val, err := this.GetField(VALUE_FIELD, NOTHROW)
		if err != nil {
			return Datum{}, false, err
		}
		if val.Has() {
			dropped, encounteredLiteral, err := val.DropLiterals()
			if err != nil {
				return Datum{}, false, err
			}
			// Nested literals are caught at the query level.
			sanityCheck(!encounteredLiteral, "nested literal slipped through query validation")
			val = dropped
		}
		return val, true, nil
	}

	needToCopy := false
	var copiedResult Datum

	switch this.Type() {
	case OBJECT:
		builder := NewObjectBuilder()
		size, err := this.ObjectSize()
		if err != nil {
			return Datum{}, false, err
		}
		for i := 0; i < size; i++ {
			pair := this.uncheckedGetPair(i)
			val, encounteredLiteral, err := pair.Value.DropLiterals()
			if err != nil {
				return Datum{}, false, err
			}

			if encounteredLiteral && !needToCopy {
				// First field with a literal; copy everything before
				// it into the builder.
				needToCopy = true
				for copyI := 0; copyI < i; copyI++ {
					copyPair := this.uncheckedGetPair(copyI)
					dup, err := builder.Add(copyPair.Name.ToString(), copyPair.Value)
					if err != nil {
						return Datum{}, false, err
					}
					sanityCheck(!dup, "duplicate key while copying object fields")
				}
			}

			if needToCopy && val.Has() {
				dup, err := builder.Add(pair.Name.ToString(), val)
				if err != nil {
					return Datum{}, false, err
				}
				sanityCheck(!dup, "duplicate key while dropping literals")
			}
			// A literal without a value is simply not added.
		}
		if needToCopy {
			if copiedResult, err = builder.ToDatum(nil); err != nil {
				return Datum{}, false, err
			}
		}

	case ARRAY:
		builder := NewArrayBuilder(limits)
		size, err := this.ArraySize()
		if err != nil {
			return Datum{}, false, err
		}
		for i := 0; i < size; i++ {
			val, encounteredLiteral, err := this.uncheckedGet(i).DropLiterals()
			if err != nil {
				return Datum{}, false, err
			}

			if encounteredLiteral && !needToCopy {
				needToCopy = true
				for copyI := 0; copyI < i; copyI++ {
					if err := builder.Add(this.uncheckedGet(copyI)); err != nil {
						return Datum{}, false, err
					}
				}
			}

			if needToCopy && val.Has() {
				if err := builder.Add(val); err != nil {
					return Datum{}, false, err
				}
			}
		}
		if needToCopy {
			copiedResult = builder.ToDatum()
		}
	}

	if needToCopy {
		sanityCheck(copiedResult.Has(), "literal drop lost its copy")
		return copiedResult, true, nil
	}
	return this, false, nil
}

/*
StatsMerge is the resolver used to combine result statistics: numbers
sum, arrays concatenate (truncating to the array size limit, with a
recorded condition), and colliding strings keep the left side.
*/
func StatsMerge(key string, l, r Datum, limits Limits, conditions map[string]bool) (Datum, errors.Error) {
	if l.Type() == NUMBER && r.Type() == NUMBER {
		return NewNumber(l.n + r.n)
	} else if l.Type() == ARRAY && r.Type() == ARRAY {
		lSize, err := l.ArraySize()
		if err != nil {
			return Datum{}, err
		}
		rSize, err := r.ArraySize()
		if err != nil {
			return Datum{}, err
		}
		arr := NewArrayBuilder(limits)
		if lSize+rSize > limits.ArraySizeLimit() {
			conditions[fmt.Sprintf("Too many changes, array truncated to %d.", limits.ArraySizeLimit())] = true
			soFar := 0
			for i := 0; i < lSize && soFar < limits.ArraySizeLimit(); i, soFar = i+1, soFar+1 {
				if err := arr.Add(l.uncheckedGet(i)); err != nil {
					return Datum{}, err
				}
			}
			for i := 0; i < rSize && soFar < limits.ArraySizeLimit(); i, soFar = i+1, soFar+1 {
				if err := arr.Add(r.uncheckedGet(i)); err != nil {
					return Datum{}, err
				}
			}
			return arr.ToDatum(), nil
		}
		for i := 0; i < lSize; i++ {
			if err := arr.Add(l.uncheckedGet(i)); err != nil {
				return Datum{}, err
			}
		}
		for i := 0; i < rSize; i++ {
			if err := arr.Add(r.uncheckedGet(i)); err != nil {
				return Datum{}, err
			}
		}
		return arr.ToDatum(), nil
	}

	// Merging a string is left-preferential, which is just a no-op.
	if l.Type() == STRING && r.Type() == STRING {
		return l, nil
	}
	return Datum{}, errors.NewGenericError("Cannot merge statistics `%s` (type %s) and `%s` (type %s).",
		l.TruncPrint(), l.TypeName(), r.TruncPrint(), r.TypeName())
}
