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
	"github.com/spaolacci/murmur3"
)

/*
A couple of helper functions for using hash tables keyed by datums.
*/
func MarshalDatum(val interface{}) ([]byte, error) {
	hashVal := val.(Datum)
	return hashVal.MarshalJSON()
}

func EqualDatum(val1, val2 interface{}) bool {
	datum1 := val1.(Datum)
	datum2 := val2.(Datum)
	return datum1.Equals(datum2)
}

// DatumHash64 hashes the canonical printing, so datums that compare
// equal hash equal.
func DatumHash64(d Datum) (uint64, error) {
	b, err := d.MarshalJSON()
	if err != nil {
		return 0, err
	}
	return murmur3.Sum64(b), nil
}
