//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package util

import (
	"sync"
)

type BytePool struct {
	pool sync.Pool
	size int
}

func NewBytePool(size int) *BytePool {
	rv := &BytePool{
		size: size,
	}
	rv.pool.New = func() interface{} {
		return make([]byte, 0, rv.size)
	}

	return rv
}

func (this *BytePool) Get() []byte {
	return this.pool.Get().([]byte)[:0]
}

func (this *BytePool) GetCapped(capacity int) []byte {
	if capacity > this.size {
		return make([]byte, 0, capacity)
	}
	return this.Get()
}

func (this *BytePool) Put(b []byte) {
	if cap(b) != this.size {
		return
	}
	this.pool.Put(b[:0])
}
