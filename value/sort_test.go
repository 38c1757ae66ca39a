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
	"testing"
)

func TestSorter(t *testing.T) {
	arr := NewArrayUnchecked([]Datum{
		mustString(t, "b"),
		mustNumber(t, 3),
		Null(),
		mustNumber(t, -1),
		mustString(t, "a"),
	})

	sorter, err := NewSorter(VERSION_1_16_LATEST, arr)
	if err != nil {
		t.Fatalf("NewSorter: %v", err)
	}
	sort.Sort(sorter)
	if err := sorter.Err(); err != nil {
		t.Fatalf("sort: %v", err)
	}

	if got := sorter.Datum().String(); got != `[null,-1,3,"a","b"]` {
		t.Errorf("sorted = %s", got)
	}
}
