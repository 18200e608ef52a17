/*
 * Copyright 2026 Hewlett Packard Enterprise Development LP
 * Other additional copyright holders may be indicated within.
 *
 * The entirety of this work is licensed under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 *
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package mmio provides volatile access to memory mapped device regions.
//
// Every accessor performs exactly one load or store of the requested width
// against the backing memory. The accessors are kept out of line so the
// compiler cannot merge, hoist or elide accesses that have side effects on
// the device. Multi-byte values are little endian, as on the PCI bus,
// whatever the host byte order.
package mmio

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"sync/atomic"
	"unsafe"
)

var hostLittleEndian = func() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	return b[0] == 1
}()

func le16(v uint16) uint16 {
	if hostLittleEndian {
		return v
	}
	return bits.ReverseBytes16(v)
}

func le32(v uint32) uint32 {
	if hostLittleEndian {
		return v
	}
	return bits.ReverseBytes32(v)
}

// Region is a window onto mapped device memory.
type Region struct {
	mem []byte
}

// NewRegion returns a region backed by mem. mem is normally the result of an
// mmap of a physical address range.
func NewRegion(mem []byte) *Region {
	return &Region{mem: mem}
}

// Len returns the size of the region in bytes.
func (r *Region) Len() int { return len(r.mem) }

// Sub returns the n byte region starting at off.
func (r *Region) Sub(off, n int) *Region {
	if off < 0 || n < 0 || off+n > len(r.mem) {
		panic(fmt.Sprintf("mmio: sub-region [%#x, %#x) outside of %#x byte region", off, off+n, len(r.mem)))
	}
	return &Region{mem: r.mem[off : off+n : off+n]}
}

//go:noinline
func (r *Region) Load8(off int) uint8 {
	return *(*uint8)(unsafe.Pointer(&r.mem[off]))
}

//go:noinline
func (r *Region) Store8(off int, v uint8) {
	*(*uint8)(unsafe.Pointer(&r.mem[off])) = v
}

//go:noinline
func (r *Region) Load16(off int) uint16 {
	_ = r.mem[off+1]
	return le16(*(*uint16)(unsafe.Pointer(&r.mem[off])))
}

//go:noinline
func (r *Region) Store16(off int, v uint16) {
	_ = r.mem[off+1]
	*(*uint16)(unsafe.Pointer(&r.mem[off])) = le16(v)
}

func (r *Region) Load32(off int) uint32 {
	_ = r.mem[off+3]
	return le32(atomic.LoadUint32((*uint32)(unsafe.Pointer(&r.mem[off]))))
}

func (r *Region) Store32(off int, v uint32) {
	_ = r.mem[off+3]
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&r.mem[off])), le32(v))
}

// Copy reads n bytes starting at off one byte at a time. Useful for taking
// a snapshot of a register block without issuing wide accesses.
func (r *Region) Copy(off, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = r.Load8(off + i)
	}
	return b
}

// View is a read-only window onto a Region.
type View struct {
	r *Region
}

// ReadOnly returns a view of r without store accessors.
func (r *Region) ReadOnly() *View { return &View{r: r} }

func (v *View) Len() int { return v.r.Len() }

func (v *View) Load8(off int) uint8 { return v.r.Load8(off) }

func (v *View) Load16(off int) uint16 { return v.r.Load16(off) }
