//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

/*
Package keys maps datums to the lexicographically ordered byte keys
used by the primary index and by secondary indexes. Key byte order
agrees with the datum comparator under the latest comparison regime.
*/
package keys

import (
	"bytes"
)

const (
	// MAX_KEY_SIZE is the storage-defined ceiling on any btree key.
	MAX_KEY_SIZE = 250

	// MAX_PRIMARY_KEY_SIZE bounds the encoded primary key; the
	// difference to MAX_KEY_SIZE leaves room for the secondary-key
	// framing.
	MAX_PRIMARY_KEY_SIZE = 128

	// TAG_SIZE is the width of the multi-index tag in a secondary key.
	TAG_SIZE = 8
)

// StoreKey is one btree key. Keys compare by memcmp.
type StoreKey []byte

func StoreKeyMin() StoreKey {
	return StoreKey{}
}

func StoreKeyMax() StoreKey {
	return bytes.Repeat([]byte{0xff}, MAX_KEY_SIZE)
}

func (this StoreKey) Compare(other StoreKey) int {
	return bytes.Compare(this, other)
}

func (this StoreKey) Equal(other StoreKey) bool {
	return bytes.Equal(this, other)
}

func (this StoreKey) Size() int {
	return len(this)
}
