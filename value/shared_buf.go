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
	"encoding/binary"

	"github.com/golang/snappy"

	"github.com/reqldb/query/errors"
	"github.com/reqldb/query/logging"
)

/*
SharedBuf owns one serialized blob, typically a value block handed back
by the storage layer. The bytes are immutable for the lifetime of every
outstanding reference. Sub-windows share the backing array, so a window
stays valid after its parent reference is dropped.
*/
type SharedBuf struct {
	data []byte
}

func NewSharedBuf(data []byte) *SharedBuf {
	return &SharedBuf{data: data}
}

// NewSnappySharedBuf decompresses a snappy block and wraps the result.
// Storage blocks arrive in this form off disk.
func NewSnappySharedBuf(block []byte) (*SharedBuf, errors.Error) {
	data, err := snappy.Decode(nil, block)
	if err != nil {
		return nil, errors.NewGenericError("Corrupt compressed value block: %v", err)
	}
	return NewSharedBuf(data), nil
}

func (this *SharedBuf) Size() int {
	return len(this.data)
}

func (this *SharedBuf) Ref() SharedBufRef {
	return SharedBufRef{buf: this, offset: 0}
}

/*
SharedBufRef is a window into a SharedBuf, addressed from a fixed
offset. References are small values and are copied freely. All reads
are bounds-checked against the underlying blob; a violation means the
blob is corrupt, which is fatal.
*/
type SharedBufRef struct {
	buf    *SharedBuf
	offset int
}

func (this SharedBufRef) Has() bool {
	return this.buf != nil
}

// Child returns a reference shifted forward by off bytes.
func (this SharedBufRef) Child(off int) SharedBufRef {
	this.checkInBoundary(off, 0)
	return SharedBufRef{buf: this.buf, offset: this.offset + off}
}

func (this SharedBufRef) checkInBoundary(off, length int) {
	if off < 0 || length < 0 || this.offset+off+length > len(this.buf.data) {
		logging.Severef("shared buffer read out of boundary (offset %d, length %d, blob size %d)",
			this.offset+off, length, len(this.buf.data))
		panic("shared buffer read out of boundary")
	}
}

func (this SharedBufRef) byteAt(off int) byte {
	this.checkInBoundary(off, 1)
	return this.buf.data[this.offset+off]
}

func (this SharedBufRef) bytesAt(off, length int) []byte {
	this.checkInBoundary(off, length)
	return this.buf.data[this.offset+off : this.offset+off+length]
}

func (this SharedBufRef) uint32At(off int) uint32 {
	return binary.LittleEndian.Uint32(this.bytesAt(off, 4))
}

func (this SharedBufRef) uint64At(off int) uint64 {
	return binary.LittleEndian.Uint64(this.bytesAt(off, 8))
}

func (this SharedBufRef) uvarintAt(off int) (uint64, int) {
	this.checkInBoundary(off, 0)
	v, n := binary.Uvarint(this.buf.data[this.offset+off:])
	if n <= 0 {
		logging.Severef("shared buffer holds a malformed varint at offset %d", this.offset+off)
		panic("shared buffer holds a malformed varint")
	}
	return v, n
}
