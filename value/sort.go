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

// Sorter sorts the elements of an ARRAY datum under a comparison
// version. Use with sort.Sort; check Err afterwards, since comparison
// failures cannot surface through Less.
type Sorter struct {
	version Version
	vector  []Datum
	err     errors.Error
}

func NewSorter(version Version, d Datum) (*Sorter, errors.Error) {
	size, err := d.ArraySize()
	if err != nil {
		return nil, err
	}
	vector := make([]Datum, 0, size)
	for i := 0; i < size; i++ {
		vector = append(vector, d.uncheckedGet(i))
	}
	return &Sorter{version: version, vector: vector}, nil
}

func (this *Sorter) Len() int {
	return len(this.vector)
}

func (this *Sorter) Less(i, j int) bool {
	cmp, err := this.vector[i].Compare(this.version, this.vector[j])
	if err != nil && this.err == nil {
		this.err = err
	}
	return cmp < 0
}

func (this *Sorter) Swap(i, j int) {
	this.vector[i], this.vector[j] = this.vector[j], this.vector[i]
}

func (this *Sorter) Err() errors.Error {
	return this.err
}

// Datum returns the sorted array.
func (this *Sorter) Datum() Datum {
	return NewArrayUnchecked(this.vector)
}
