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

// Package aperture streams card memory out of a live bridge aperture.
//
// Common memory is read as little endian 16-bit words, low byte first.
// Attribute memory holds one meaningful byte per 16-bit slot, on even
// addresses, so only the low byte of each slot is emitted.
package aperture

import (
	"io"

	"github.com/sigurn/crc8"

	"github.com/NearNodeFlash/dumpcard/internal/exca"
)

// Source is read-only 16-bit access to the aperture.
type Source interface {
	Len() int
	Load16(off int) uint16
}

// Reader is a one-shot io.Reader over the aperture. Once it reaches the end
// it keeps returning io.EOF; a new Reader is needed to read again.
type Reader struct {
	src   Source
	space exca.Space
	off   int

	pending    byte
	hasPending bool
}

func NewReader(src Source, space exca.Space) *Reader {
	return &Reader{src: src, space: space}
}

func (r *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if r.hasPending {
			p[n] = r.pending
			r.hasPending = false
			n++
			continue
		}

		if r.off+2 > r.src.Len() {
			break
		}

		slot := r.src.Load16(r.off)
		r.off += 2

		p[n] = byte(slot)
		n++

		if r.space == exca.CommonMemory {
			r.pending = byte(slot >> 8)
			r.hasPending = true
		}
	}

	if n == 0 && len(p) != 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Size returns the number of bytes a full read of an aperture of length
// bytes produces.
func Size(length int, space exca.Space) int64 {
	slots := int64(length / 2)
	if space == exca.AttributeMemory {
		return slots
	}
	return 2 * slots
}

var crcTable = crc8.MakeTable(crc8.CRC8_MAXIM)

// Copy streams the whole aperture into w. It returns the number of bytes
// written and the CRC-8/MAXIM of those bytes.
func Copy(w io.Writer, src Source, space exca.Space) (int64, uint8, error) {
	cw := &crcWriter{w: w, crc: crc8.Init(crcTable)}

	n, err := io.Copy(cw, NewReader(src, space))
	return n, crc8.Complete(cw.crc, crcTable), err
}

type crcWriter struct {
	w   io.Writer
	crc uint8
}

func (c *crcWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.crc = crc8.Update(c.crc, p[:n], crcTable)
	return n, err
}
